package memory

import (
	"context"
	"time"

	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	table *Table[model.UserSession]
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		table: NewTable(
			func(s model.UserSession) int64 { return s.ID },
			func(s *model.UserSession, id int64) { s.ID = id },
		),
	}
}

func (r *SessionRepository) Create(_ context.Context, session model.UserSession) (model.UserSession, error) {
	return r.table.Insert(session), nil
}

func (r *SessionRepository) GetByID(_ context.Context, id int64) (model.UserSession, error) {
	return r.table.Get(id)
}

func (r *SessionRepository) Update(_ context.Context, session model.UserSession) error {
	return r.table.Update(session)
}

func (r *SessionRepository) Delete(_ context.Context, id int64) error {
	return r.table.Delete(id)
}

func (r *SessionRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	n := r.table.DeleteWhere(func(s model.UserSession) bool { return s.Expiration.Before(before) })
	return int64(n), nil
}
