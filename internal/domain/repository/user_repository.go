package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/messagely/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u. A taken username yields ErrDuplicate; uniqueness is
	// left to the store's key constraint.
	Create(ctx context.Context, u *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	// List returns profiles in creation order.
	List(ctx context.Context) ([]entity.Profile, error)
}
