package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/messagely/internal/domain/entity"
)

func TestUserRepository_DBErrorsAreWrapped(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	repo := NewUserRepository(conn)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("disk full"))
	mock.ExpectQuery(`SELECT username, first_name`).WillReturnError(errors.New("disk full"))

	err = repo.Create(context.Background(), newUser("alice", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: disk full")

	_, err = repo.List(context.Background())
	assert.Contains(t, err.Error(), "db error: disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_MarkReadRollsBackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	repo := NewMessageRepository(conn)
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE messages SET read_at`).WithArgs(at, int64(1)).WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err = repo.MarkRead(context.Background(), 1, at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_CreateDBError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	repo := NewMessageRepository(conn)

	mock.ExpectExec(`INSERT INTO messages`).WillReturnError(errors.New("io error"))

	err = repo.Create(context.Background(), &entity.Message{FromUsername: "a", ToUsername: "b", Body: "x"})
	assert.Contains(t, err.Error(), "db error: io error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
