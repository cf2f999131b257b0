package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/messagely/pkg/apperror"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	msg := Resource{FromUsername: "alice", ToUsername: "bob"}

	tests := []struct {
		name   string
		actor  string
		action Action
		res    Resource
		want   bool
	}{
		{"anonymous lists users", "", ListUsers, Resource{}, true},
		{"anonymous views user", "", ViewUser, Resource{Username: "bob"}, true},
		{"anonymous searches users", "", SearchUsers, Resource{}, true},

		{"sender views message", "alice", ViewMessage, msg, true},
		{"recipient views message", "bob", ViewMessage, msg, true},
		{"outsider views message", "carol", ViewMessage, msg, false},
		{"anonymous views message", "", ViewMessage, msg, false},

		{"send as self", "alice", SendMessage, Resource{FromUsername: "alice", ToUsername: "bob"}, true},
		{"send as someone else", "alice", SendMessage, Resource{FromUsername: "bob", ToUsername: "alice"}, false},
		{"anonymous send", "", SendMessage, Resource{FromUsername: "", ToUsername: "bob"}, false},

		{"own inbox", "bob", ListMessagesTo, Resource{Username: "bob"}, true},
		{"other inbox", "alice", ListMessagesTo, Resource{Username: "bob"}, false},
		{"own outbox", "alice", ListMessagesFrom, Resource{Username: "alice"}, true},
		{"other outbox", "bob", ListMessagesFrom, Resource{Username: "alice"}, false},
		{"anonymous inbox", "", ListMessagesTo, Resource{Username: ""}, false},

		{"recipient marks read", "bob", MarkRead, msg, true},
		{"sender marks read", "alice", MarkRead, msg, false},
		{"outsider marks read", "carol", MarkRead, msg, false},

		{"unknown action", "alice", Action(99), Resource{Username: "alice"}, false},
		{"zero action", "alice", Action(0), msg, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.actor, tc.action, tc.res)
			assert.Equal(t, tc.want, d.Allowed)
			assert.NotEmpty(t, d.Reason)
			if tc.want {
				assert.NoError(t, d.Err())
			} else {
				assert.ErrorIs(t, d.Err(), apperror.ErrUnauthorized)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mark_read", MarkRead.String())
	assert.Equal(t, "action(42)", Action(42).String())
}
