package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/password"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "nick_name", "avatar_id", "color", "auth_level", "state",
	"last_update", "invalid_logon_tries", "salt", "password_hash",
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	user := model.User{
		NickName:   "alice",
		AvatarID:   9,
		Color:      0xFF102030,
		State:      model.UserStateNew,
		LastUpdate: now,
		Credential: password.Credential{Salt: []byte("salt")},
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (nick_name")).
		WithArgs("alice", int64(9), int64(0xFF102030), 0, 0, now, 0, []byte("salt"), []byte(nil)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	saved, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.ID)
	assert.Equal(t, "alice", saved.NickName)
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), model.User{NickName: "alice"})
	assert.ErrorContains(t, err, "failed to create user: db down")
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, nick_name, .* FROM users WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(5), "alice", int64(9), int64(0xFF102030), 2, 1, now, 3, []byte("s"), []byte("h")))

	user, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.NickName)
	assert.Equal(t, uint32(0xFF102030), user.Color)
	assert.Equal(t, model.UserStateConfirmed, user.State)
	assert.Equal(t, 3, user.InvalidLogonTries)
	assert.Equal(t, []byte("h"), user.PasswordHash)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs(int64(5), "alice", int64(0), int64(0), 0, 1, sqlmock.AnyArg(), 2, []byte(nil), []byte(nil)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), model.User{
		ID: 5, NickName: "alice", State: model.UserStateConfirmed, InvalidLogonTries: 2,
	}))

	err := repo.Update(context.Background(), model.User{ID: 6})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_ListByNickName(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE nick_name = \$1 ORDER BY id`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(1), "bob", int64(0), int64(0), 0, 1, now, 0, nil, nil).
			AddRow(int64(4), "bob", int64(0), int64(0), 0, 3, now, 0, nil, nil))

	users, err := repo.ListByNickName(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(4), users[1].ID)
	assert.Equal(t, model.UserStateDisabled, users[1].State)
}
