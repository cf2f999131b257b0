// Package policy decides whether an acting user may perform an action on a
// resource. Decisions are computed from already-resolved ownership fields;
// nothing here touches the store.
package policy

import (
	"fmt"

	"github.com/oksasatya/messagely/pkg/apperror"
)

type Action int

const (
	ListUsers Action = iota + 1
	ViewUser
	SearchUsers
	ViewMessage
	SendMessage
	ListMessagesTo
	ListMessagesFrom
	MarkRead
)

func (a Action) String() string {
	switch a {
	case ListUsers:
		return "list_users"
	case ViewUser:
		return "view_user"
	case SearchUsers:
		return "search_users"
	case ViewMessage:
		return "view_message"
	case SendMessage:
		return "send_message"
	case ListMessagesTo:
		return "list_messages_to"
	case ListMessagesFrom:
		return "list_messages_from"
	case MarkRead:
		return "mark_read"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Resource carries the ownership fields an action is checked against.
// Username is the target of user-scoped actions; FromUsername and
// ToUsername are the participants of a message.
type Resource struct {
	Username     string
	FromUsername string
	ToUsername   string
}

type Decision struct {
	Allowed bool
	Reason  string
}

// Err returns nil for an allow and an unauthorized error for a deny.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperror.Unauthorized(d.Reason)
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Authorize evaluates actor performing action on res. An empty actor means
// the request carries no verified identity.
func Authorize(actor string, action Action, res Resource) Decision {
	switch action {
	case ListUsers, ViewUser, SearchUsers:
		return allow("public profiles")
	}

	if actor == "" {
		return deny("authentication required")
	}

	switch action {
	case ViewMessage:
		if actor == res.FromUsername || actor == res.ToUsername {
			return allow("participant")
		}
		return deny("not a participant of this message")
	case SendMessage:
		if res.FromUsername == actor {
			return allow("sender")
		}
		return deny("cannot send as another user")
	case ListMessagesTo, ListMessagesFrom:
		if res.Username == actor {
			return allow("own messages")
		}
		return deny("cannot list another user's messages")
	case MarkRead:
		if res.ToUsername == actor {
			return allow("recipient")
		}
		return deny("only the recipient may mark a message read")
	default:
		return deny("unknown action " + action.String())
	}
}
