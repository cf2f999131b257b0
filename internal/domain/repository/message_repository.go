package repository

import (
	"context"
	"time"

	"github.com/oksasatya/messagely/internal/domain/entity"
)

type MessageRepository interface {
	// Create inserts m and sets m.ID.
	Create(ctx context.Context, m *entity.Message) error
	GetDetail(ctx context.Context, id int64) (*entity.MessageDetail, error)
	// MarkRead sets read_at to at unless it is already set, and returns the
	// stored value either way.
	MarkRead(ctx context.Context, id int64, at time.Time) (*entity.ReadReceipt, error)
	ListTo(ctx context.Context, username string) ([]entity.InboxEntry, error)
	ListFrom(ctx context.Context, username string) ([]entity.OutboxEntry, error)
}
