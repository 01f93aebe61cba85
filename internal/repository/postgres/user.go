package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, nick_name, avatar_id, color, auth_level, state, last_update, invalid_logon_tries, salt, password_hash`

type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var (
		user  model.User
		color int64
		state int
	)
	err := s.Scan(
		&user.ID, &user.NickName, &user.AvatarID, &color, &user.AuthLevel, &state,
		&user.LastUpdate, &user.InvalidLogonTries, &user.Salt, &user.PasswordHash,
	)
	if err != nil {
		return model.User{}, err
	}
	user.Color = uint32(color)
	user.State = model.UserState(state)
	user.LastUpdate = user.LastUpdate.UTC()
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `
        INSERT INTO users (nick_name, avatar_id, color, auth_level, state, last_update, invalid_logon_tries, salt, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		user.NickName, user.AvatarID, int64(user.Color), user.AuthLevel, int(user.State),
		user.LastUpdate, user.InvalidLogonTries, user.Salt, user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) error {
	const query = `
        UPDATE users
        SET nick_name = $2, avatar_id = $3, color = $4, auth_level = $5, state = $6,
            last_update = $7, invalid_logon_tries = $8, salt = $9, password_hash = $10
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.NickName, user.AvatarID, int64(user.Color), user.AuthLevel, int(user.State),
		user.LastUpdate, user.InvalidLogonTries, user.Salt, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return rowsAffected(res)
}

func (r *UserRepository) ListByNickName(ctx context.Context, nickName string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE nick_name = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, nickName)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by nick name: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
