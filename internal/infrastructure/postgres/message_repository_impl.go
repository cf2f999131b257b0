package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/oksasatya/messagely/internal/domain/entity"
	"github.com/oksasatya/messagely/internal/domain/repository"
)

type MessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.FromUsername, m.ToUsername, m.Body, m.SentAt).Scan(&m.ID)
	if err != nil {
		// A missing participant surfaces as a foreign key violation.
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return mapped
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetDetail(ctx context.Context, id int64) (*entity.MessageDetail, error) {
	d := &entity.MessageDetail{}
	err := r.db.QueryRow(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
		WHERE m.id = $1
	`, id).Scan(&d.ID, &d.Body, &d.SentAt, &d.ReadAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone)
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.SentAt = d.SentAt.UTC()
	d.ReadAt = utcPtr(d.ReadAt)
	return d, nil
}

// MarkRead keeps the first read timestamp; COALESCE makes repeated and
// concurrent calls converge on it.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*entity.ReadReceipt, error) {
	rr := &entity.ReadReceipt{}
	err := r.db.QueryRow(ctx, `
		UPDATE messages
		SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING id, read_at
	`, id, at).Scan(&rr.ID, &rr.ReadAt)
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rr.ReadAt = rr.ReadAt.UTC()
	return rr, nil
}

func (r *MessageRepository) ListTo(ctx context.Context, username string) ([]entity.InboxEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = $1
		ORDER BY m.id
	`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []entity.InboxEntry{}
	for rows.Next() {
		var e entity.InboxEntry
		if err := rows.Scan(&e.ID, &e.Body, &e.SentAt, &e.ReadAt,
			&e.FromUser.Username, &e.FromUser.FirstName, &e.FromUser.LastName, &e.FromUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.SentAt = e.SentAt.UTC()
		e.ReadAt = utcPtr(e.ReadAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *MessageRepository) ListFrom(ctx context.Context, username string) ([]entity.OutboxEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = $1
		ORDER BY m.id
	`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []entity.OutboxEntry{}
	for rows.Next() {
		var e entity.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Body, &e.SentAt, &e.ReadAt,
			&e.ToUser.Username, &e.ToUser.FirstName, &e.ToUser.LastName, &e.ToUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.SentAt = e.SentAt.UTC()
		e.ReadAt = utcPtr(e.ReadAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
