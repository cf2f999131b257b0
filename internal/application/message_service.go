package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/domain/entity"
	repo "github.com/oksasatya/messagely/internal/domain/repository"
	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/helpers"
	"github.com/oksasatya/messagely/pkg/validation"
)

// Directory resolves usernames to public users. *UserService implements it.
type Directory interface {
	GetPublic(ctx context.Context, username string) (*entity.UserDetail, error)
}

// MessageService is the message ledger. Authorization happens before any
// of its methods are called.
type MessageService struct {
	Repo   repo.MessageRepository
	Users  Directory
	Logger *logrus.Logger

	now func() time.Time
}

func NewMessageService(repo repo.MessageRepository, users Directory, logger *logrus.Logger) *MessageService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &MessageService{Repo: repo, Users: users, Logger: logger, now: time.Now}
}

type SendInput struct {
	From string `json:"from_username" validate:"required"`
	To   string `json:"to_username" validate:"required"`
	Body string `json:"body" validate:"required"`
}

// Send stores a message from one existing user to another.
func (s *MessageService) Send(ctx context.Context, from, to, body string) (*entity.Message, error) {
	if err := validation.Struct(SendInput{From: from, To: to, Body: body}, "Messages need a recipient and a body"); err != nil {
		return nil, err
	}
	for _, username := range []string{from, to} {
		if err := s.ensureUser(ctx, username); err != nil {
			return nil, err
		}
	}

	m := &entity.Message{
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// A participant vanished between the check and the insert.
			return nil, apperror.UnknownUser(to)
		}
		return nil, apperror.Internal("create message", err)
	}
	s.Logger.WithFields(logrus.Fields{"message_id": m.ID, "from": from, "to": to}).Debug("message stored")
	return m, nil
}

func (s *MessageService) ensureUser(ctx context.Context, username string) error {
	if _, err := s.Users.GetPublic(ctx, username); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.UnknownUser(username)
		}
		return err
	}
	return nil
}

// Get returns the message with both participants' profiles.
func (s *MessageService) Get(ctx context.Context, id int64) (*entity.MessageDetail, error) {
	if id <= 0 {
		return nil, apperror.NotFound("No such message")
	}
	d, err := s.Repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("No such message")
		}
		return nil, apperror.Internal("load message", err)
	}
	return d, nil
}

// MarkRead sets read_at once. Later calls return the stored timestamp
// unchanged, so concurrent duplicates converge.
func (s *MessageService) MarkRead(ctx context.Context, id int64, reader string) (*entity.ReadReceipt, error) {
	if id <= 0 {
		return nil, apperror.NotFound("No such message")
	}
	r, err := s.Repo.MarkRead(ctx, id, s.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("No such message")
		}
		return nil, apperror.Internal("mark message read", err)
	}
	s.Logger.WithFields(logrus.Fields{"message_id": id, "reader": reader}).Debug("message read")
	return r, nil
}

// ListTo returns messages addressed to username, oldest first. No messages
// is an empty list, not an error.
func (s *MessageService) ListTo(ctx context.Context, username string) ([]entity.InboxEntry, error) {
	out, err := s.Repo.ListTo(ctx, username)
	if err != nil {
		return nil, apperror.Internal("list messages to user", err)
	}
	if out == nil {
		out = []entity.InboxEntry{}
	}
	return out, nil
}

// ListFrom returns messages sent by username, oldest first.
func (s *MessageService) ListFrom(ctx context.Context, username string) ([]entity.OutboxEntry, error) {
	out, err := s.Repo.ListFrom(ctx, username)
	if err != nil {
		return nil, apperror.Internal("list messages from user", err)
	}
	if out == nil {
		out = []entity.OutboxEntry{}
	}
	return out, nil
}
