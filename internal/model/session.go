package model

import (
	"context"
	"time"
)

// SessionStore defines persistence operations for user sessions.
type SessionStore interface {
	Create(ctx context.Context, session UserSession) (UserSession, error)
	GetByID(ctx context.Context, id int64) (UserSession, error)
	Update(ctx context.Context, session UserSession) error
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// UserSessionFlags describe a session.
type UserSessionFlags uint32

const UserSessionIsLocalhost UserSessionFlags = 1

// UserSession is an authentication context. UserID is zero for
// anonymous sessions.
type UserSession struct {
	ID         int64
	UserID     int64
	UserAgent  string
	Source     string
	Expiration time.Time
	Flags      UserSessionFlags
}

func (s UserSession) IsExpired(now time.Time) bool {
	return now.After(s.Expiration)
}

// IsValid reports whether the session has a source and user agent and
// has not expired.
func (s UserSession) IsValid(now time.Time) bool {
	return s.Source != "" && s.UserAgent != "" && !s.IsExpired(now)
}

func (s UserSession) IsAuthenticated(now time.Time) bool {
	return s.UserID > 0 && s.IsValid(now)
}
