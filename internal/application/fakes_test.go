package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/messagely/internal/domain/entity"
	repo "github.com/oksasatya/messagely/internal/domain/repository"
	"github.com/oksasatya/messagely/pkg/helpers"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]entity.User
	order []string
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]entity.User{}} }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return repo.ErrDuplicate
	}
	r.users[u.Username] = *u
	r.order = append(r.order, u.Username)
	return nil
}

func (r *memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return repo.ErrNotFound
	}
	u.LastLoginAt = at
	r.users[username] = u
	return nil
}

func (r *memUsers) List(context.Context) ([]entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Profile
	for _, name := range r.order {
		u := r.users[name]
		out = append(out, u.Profile())
	}
	return out, nil
}

type memMessages struct {
	mu     sync.Mutex
	users  *memUsers
	nextID int64
	msgs   map[int64]entity.Message
}

func newMemMessages(users *memUsers) *memMessages {
	return &memMessages{users: users, msgs: map[int64]entity.Message{}}
}

func (r *memMessages) profile(username string) entity.Profile {
	u, err := r.users.GetByUsername(context.Background(), username)
	if err != nil {
		return entity.Profile{Username: username}
	}
	return u.Profile()
}

func (r *memMessages) Create(_ context.Context, m *entity.Message) error {
	for _, name := range []string{m.FromUsername, m.ToUsername} {
		if _, err := r.users.GetByUsername(context.Background(), name); err != nil {
			return repo.ErrNotFound
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.msgs[m.ID] = *m
	return nil
}

func (r *memMessages) GetDetail(_ context.Context, id int64) (*entity.MessageDetail, error) {
	r.mu.Lock()
	m, ok := r.msgs[id]
	r.mu.Unlock()
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &entity.MessageDetail{
		ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt,
		FromUser: r.profile(m.FromUsername), ToUser: r.profile(m.ToUsername),
	}, nil
}

func (r *memMessages) MarkRead(_ context.Context, id int64, at time.Time) (*entity.ReadReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.msgs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if m.ReadAt == nil {
		m.ReadAt = &at
		r.msgs[id] = m
	}
	return &entity.ReadReceipt{ID: id, ReadAt: *m.ReadAt}, nil
}

func (r *memMessages) sorted(keep func(entity.Message) bool) []entity.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Message
	for _, m := range r.msgs {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memMessages) ListTo(_ context.Context, username string) ([]entity.InboxEntry, error) {
	var out []entity.InboxEntry
	for _, m := range r.sorted(func(m entity.Message) bool { return m.ToUsername == username }) {
		out = append(out, entity.InboxEntry{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, FromUser: r.profile(m.FromUsername)})
	}
	return out, nil
}

func (r *memMessages) ListFrom(_ context.Context, username string) ([]entity.OutboxEntry, error) {
	var out []entity.OutboxEntry
	for _, m := range r.sorted(func(m entity.Message) bool { return m.FromUsername == username }) {
		out = append(out, entity.OutboxEntry{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt, ToUser: r.profile(m.ToUsername)})
	}
	return out, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (s *recordingSink) PublishJSON(_ context.Context, body any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, body.(entity.AuditEvent))
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	users    *UserService
	messages *MessageService
	gateway  *Gateway
	tokens   *helpers.JWTManager
	sink     *recordingSink
}

func newFixture() *fixture {
	userRepo := newMemUsers()
	users := NewUserService(userRepo, bcrypt.MinCost, nil)
	messages := NewMessageService(newMemMessages(userRepo), users, nil)
	tokens := helpers.NewJWTManager("test-secret", 0)
	sink := &recordingSink{}
	gw := NewGateway(users, messages, tokens, nil)
	gw.Audit = sink
	return &fixture{users: users, messages: messages, gateway: gw, tokens: tokens, sink: sink}
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Password:  "pw-" + username,
		FirstName: "First",
		LastName:  "Last",
		Phone:     "+15550100",
	}
}
