package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oksasatya/messagely/internal/domain/entity"
	"github.com/oksasatya/messagely/internal/domain/repository"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (from_username, to_username, body, sent_at) VALUES (?, ?, ?, ?)`,
		m.FromUsername, m.ToUsername, m.Body, m.SentAt)
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return mapped
		}
		return fmt.Errorf("db error: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MessageRepository) GetDetail(ctx context.Context, id int64) (*entity.MessageDetail, error) {
	d := &entity.MessageDetail{}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
		WHERE m.id = ?`, id).
		Scan(&d.ID, &d.Body, &d.SentAt, &readAt,
			&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
			&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone)
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	d.SentAt = d.SentAt.UTC()
	d.ReadAt = nullTime(readAt)
	return d, nil
}

// MarkRead sets read_at only when it is still NULL, then reads back the
// stored value. Both statements run in one transaction.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*entity.ReadReceipt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ?`, at, id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rr := &entity.ReadReceipt{}
	if err := tx.QueryRowContext(ctx, `SELECT id, read_at FROM messages WHERE id = ?`, id).
		Scan(&rr.ID, &rr.ReadAt); err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	rr.ReadAt = rr.ReadAt.UTC()
	return rr, nil
}

func (r *MessageRepository) ListTo(ctx context.Context, username string) ([]entity.InboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = ?
		ORDER BY m.id`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.InboxEntry{}
	for rows.Next() {
		var e entity.InboxEntry
		var readAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Body, &e.SentAt, &readAt,
			&e.FromUser.Username, &e.FromUser.FirstName, &e.FromUser.LastName, &e.FromUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.SentAt = e.SentAt.UTC()
		e.ReadAt = nullTime(readAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *MessageRepository) ListFrom(ctx context.Context, username string) ([]entity.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = ?
		ORDER BY m.id`, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []entity.OutboxEntry{}
	for rows.Next() {
		var e entity.OutboxEntry
		var readAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Body, &e.SentAt, &readAt,
			&e.ToUser.Username, &e.ToUser.FirstName, &e.ToUser.LastName, &e.ToUser.Phone); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.SentAt = e.SentAt.UTC()
		e.ReadAt = nullTime(readAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
