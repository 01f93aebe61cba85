package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db database.DBTX
}

func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.UserSession) (model.UserSession, error) {
	const query = `
        INSERT INTO user_sessions (user_id, user_agent, source, expiration, flags)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		session.UserID, session.UserAgent, session.Source, session.Expiration, int64(session.Flags),
	).Scan(&session.ID)
	if err != nil {
		return model.UserSession{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (model.UserSession, error) {
	const query = `SELECT id, user_id, user_agent, source, expiration, flags FROM user_sessions WHERE id = $1`

	var (
		s     model.UserSession
		flags int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.UserID, &s.UserAgent, &s.Source, &s.Expiration, &flags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserSession{}, model.ErrNotFound
		}
		return model.UserSession{}, fmt.Errorf("failed to get session: %w", err)
	}
	s.Flags = model.UserSessionFlags(flags)
	s.Expiration = s.Expiration.UTC()
	return s, nil
}

func (r *SessionRepository) Update(ctx context.Context, session model.UserSession) error {
	const query = `
        UPDATE user_sessions
        SET user_id = $2, user_agent = $3, source = $4, expiration = $5, flags = $6
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.UserAgent, session.Source, session.Expiration, int64(session.Flags),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return rowsAffected(res)
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return rowsAffected(res)
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expiration < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
