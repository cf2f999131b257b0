package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/domain/entity"
	repo "github.com/oksasatya/messagely/internal/domain/repository"
	"github.com/oksasatya/messagely/pkg/apperror"
	"github.com/oksasatya/messagely/pkg/helpers"
	"github.com/oksasatya/messagely/pkg/validation"
)

const (
	msgMissingRegisterFields = "Fields must include a username, a password, your first name, your last name, and your phone number"
	msgPasswordTooLong       = "Password must be at most 72 bytes"

	// bcrypt only hashes the first 72 bytes and refuses longer input.
	maxPasswordBytes = 72
)

// UserService is the credential store: it owns password hashing and the
// public view of users. It keeps no state between calls beyond its config.
type UserService struct {
	Repo       repo.UserRepository
	BcryptCost int
	Logger     *logrus.Logger

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo repo.UserRepository, bcryptCost int, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &UserService{Repo: repo, BcryptCost: bcryptCost, Logger: logger, now: time.Now}
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

func (s *UserService) timestamp() time.Time {
	// Postgres keeps microseconds; truncating keeps returned values equal to stored ones.
	return s.now().UTC().Truncate(time.Microsecond)
}

// Register validates and stores a new user. The returned detail never
// contains the password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.UserDetail, error) {
	if err := validation.Struct(in, msgMissingRegisterFields); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperror.Validation(msgPasswordTooLong, map[string]string{"password": "must be at most 72 bytes long"})
	}
	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	now := s.timestamp()
	u := &entity.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.DuplicateUsername(in.Username)
		}
		return nil, apperror.Internal("create user", err)
	}
	s.Logger.WithField("username", u.Username).Info("user registered")
	d := u.Detail()
	return &d, nil
}

// Authenticate reports whether password matches the stored hash for username.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, apperror.Validation("Both username and password are required", nil)
	}
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Burn a comparable amount of time so absence is not observable.
			helpers.CompareHashAndPassword(s.dummy(), password)
			return false, apperror.UnknownUser(username)
		}
		return false, apperror.Internal("load user", err)
	}
	return helpers.CompareHashAndPassword(u.PasswordHash, password), nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = helpers.HashPassword("dummy-password", s.BcryptCost)
	})
	return s.dummyHash
}

// TouchLogin records a successful authentication.
func (s *UserService) TouchLogin(ctx context.Context, username string) error {
	if err := s.Repo.UpdateLastLogin(ctx, username, s.timestamp()); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperror.UnknownUser(username)
		}
		return apperror.Internal("update last login", err)
	}
	return nil
}

func (s *UserService) GetPublic(ctx context.Context, username string) (*entity.UserDetail, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("No such user exists")
		}
		return nil, apperror.Internal("load user", err)
	}
	d := u.Detail()
	return &d, nil
}

// ListPublic returns every user's profile in creation order.
func (s *UserService) ListPublic(ctx context.Context) ([]entity.Profile, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("list users", err)
	}
	if users == nil {
		users = []entity.Profile{}
	}
	return users, nil
}
