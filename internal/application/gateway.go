package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/domain/entity"
	"github.com/oksasatya/messagely/internal/domain/policy"
	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/helpers"
)

// TokenService issues and verifies identity tokens. *helpers.JWTManager implements it.
type TokenService interface {
	Issue(username string) (string, error)
	Verify(token string) (string, error)
}

// UserIndex is a secondary search index over public profiles.
type UserIndex interface {
	Index(ctx context.Context, p entity.Profile) error
	Search(ctx context.Context, query string, size int) ([]entity.Profile, error)
}

// Gateway is the entry point for every request: it resolves the acting
// identity, asks the policy, and only then delegates to the services.
// Audit and Index are optional.
type Gateway struct {
	Users    *UserService
	Messages *MessageService
	Tokens   TokenService
	Audit    AuditSink
	Index    UserIndex
	Logger   *logrus.Logger
}

func NewGateway(users *UserService, messages *MessageService, tokens TokenService, logger *logrus.Logger) *Gateway {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &Gateway{Users: users, Messages: messages, Tokens: tokens, Logger: logger}
}

type AuthResult struct {
	Token   string `json:"token"`
	Message string `json:"msg"`
}

// Identify verifies token and returns the username it asserts.
func (g *Gateway) Identify(token string) (string, error) {
	if token == "" {
		return "", apperror.Unauthorized("missing token")
	}
	return g.Tokens.Verify(token)
}

func (g *Gateway) authorize(ctx context.Context, actor string, action policy.Action, res policy.Resource) error {
	d := policy.Authorize(actor, action, res)
	if d.Allowed {
		return nil
	}
	metrics.Add(metricDenials, 1)
	g.Logger.WithFields(logrus.Fields{"actor": actor, "action": action.String(), "reason": d.Reason}).Info("access denied")
	g.audit(ctx, entity.AuditDenied, actor, map[string]string{"action": action.String(), "reason": d.Reason})
	return d.Err()
}

// Register creates the user and logs them in.
func (g *Gateway) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := g.Users.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	token, err := g.Tokens.Issue(u.Username)
	if err != nil {
		return nil, apperror.Internal("issue token", err)
	}
	metrics.Add(metricRegistrations, 1)
	g.audit(ctx, entity.AuditRegistered, u.Username, nil)
	g.indexUser(ctx, u.Profile)
	return &AuthResult{Token: token, Message: fmt.Sprintf("User %s created. Welcome!", u.Username)}, nil
}

// Login authenticates and returns a fresh token. Unknown usernames and wrong
// passwords produce the same error.
func (g *Gateway) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	ok, err := g.Users.Authenticate(ctx, username, password)
	if err != nil && !errors.Is(err, apperror.ErrUnknownUser) {
		return nil, err
	}
	if !ok {
		metrics.Add(metricLoginFailures, 1)
		g.audit(ctx, entity.AuditLoginFailed, username, nil)
		return nil, apperror.ErrInvalidCredentials
	}
	if err := g.Users.TouchLogin(ctx, username); err != nil {
		return nil, err
	}
	token, err := g.Tokens.Issue(username)
	if err != nil {
		return nil, apperror.Internal("issue token", err)
	}
	metrics.Add(metricLogins, 1)
	g.audit(ctx, entity.AuditLogin, username, nil)
	return &AuthResult{Token: token, Message: fmt.Sprintf("Welcome back, %s!", username)}, nil
}

func (g *Gateway) ListUsers(ctx context.Context, actor string) ([]entity.Profile, error) {
	if err := g.authorize(ctx, actor, policy.ListUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	return g.Users.ListPublic(ctx)
}

func (g *Gateway) GetUser(ctx context.Context, actor, username string) (*entity.UserDetail, error) {
	if err := g.authorize(ctx, actor, policy.ViewUser, policy.Resource{Username: username}); err != nil {
		return nil, err
	}
	return g.Users.GetPublic(ctx, username)
}

// SearchUsers queries the search index. The store listing is filtered
// instead when no index is configured, or when the index fails or has no
// hits, since it may lag behind the store.
func (g *Gateway) SearchUsers(ctx context.Context, actor, query string, size int) ([]entity.Profile, error) {
	if err := g.authorize(ctx, actor, policy.SearchUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Profile{}, nil
	}
	if g.Index != nil {
		out, err := g.Index.Search(ctx, query, size)
		switch {
		case err != nil:
			g.Logger.WithError(err).Warn("user index search failed, falling back to store")
		case len(out) > 0:
			return out, nil
		}
	}
	all, err := g.Users.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]entity.Profile, 0, size)
	for _, p := range all {
		if len(out) == size {
			break
		}
		if strings.Contains(strings.ToLower(p.Username), q) ||
			strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *Gateway) MessagesTo(ctx context.Context, actor, username string) ([]entity.InboxEntry, error) {
	if err := g.authorize(ctx, actor, policy.ListMessagesTo, policy.Resource{Username: username}); err != nil {
		return nil, err
	}
	return g.Messages.ListTo(ctx, username)
}

func (g *Gateway) MessagesFrom(ctx context.Context, actor, username string) ([]entity.OutboxEntry, error) {
	if err := g.authorize(ctx, actor, policy.ListMessagesFrom, policy.Resource{Username: username}); err != nil {
		return nil, err
	}
	return g.Messages.ListFrom(ctx, username)
}

// GetMessage returns a message to one of its participants. Anyone else gets
// an unauthorized error, not a not-found.
func (g *Gateway) GetMessage(ctx context.Context, actor string, id int64) (*entity.MessageDetail, error) {
	if actor == "" {
		return nil, g.authorize(ctx, actor, policy.ViewMessage, policy.Resource{})
	}
	d, err := g.Messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{FromUsername: d.FromUser.Username, ToUsername: d.ToUser.Username}
	if err := g.authorize(ctx, actor, policy.ViewMessage, res); err != nil {
		return nil, err
	}
	return d, nil
}

// SendMessage sends body from actor to the named recipient.
func (g *Gateway) SendMessage(ctx context.Context, actor, to, body string) (*entity.Message, error) {
	if err := g.authorize(ctx, actor, policy.SendMessage, policy.Resource{FromUsername: actor, ToUsername: to}); err != nil {
		return nil, err
	}
	m, err := g.Messages.Send(ctx, actor, to, body)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricMessagesSent, 1)
	g.audit(ctx, entity.AuditMessageSent, actor, map[string]string{"message_id": strconv.FormatInt(m.ID, 10), "to": to})
	return m, nil
}

// MarkRead marks a message read on behalf of its recipient.
func (g *Gateway) MarkRead(ctx context.Context, actor string, id int64) (*entity.ReadReceipt, error) {
	if actor == "" {
		return nil, g.authorize(ctx, actor, policy.MarkRead, policy.Resource{})
	}
	d, err := g.Messages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{FromUsername: d.FromUser.Username, ToUsername: d.ToUser.Username}
	if err := g.authorize(ctx, actor, policy.MarkRead, res); err != nil {
		return nil, err
	}
	r, err := g.Messages.MarkRead(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	metrics.Add(metricMessagesRead, 1)
	g.audit(ctx, entity.AuditMessageRead, actor, map[string]string{"message_id": strconv.FormatInt(id, 10)})
	return r, nil
}

// ReindexUsers writes every stored profile to the search index, covering
// users created before the index was enabled or outside the gateway.
// It returns how many profiles were indexed.
func (g *Gateway) ReindexUsers(ctx context.Context) (int, error) {
	if g.Index == nil {
		return 0, nil
	}
	all, err := g.Users.ListPublic(ctx)
	if err != nil {
		return 0, err
	}
	var (
		n    int
		errs []error
	)
	for _, p := range all {
		if err := g.Index.Index(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", p.Username, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (g *Gateway) indexUser(ctx context.Context, p entity.Profile) {
	if g.Index == nil {
		return
	}
	if err := g.Index.Index(ctx, p); err != nil {
		g.Logger.WithError(err).WithField("username", p.Username).Warn("user index failed")
	}
}
