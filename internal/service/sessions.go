package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
)

// Sessions opens and tracks user sessions.
type Sessions struct {
	sessionStore model.SessionStore
	logger       *logger.Logger
	now          func() time.Time
}

func NewSessions(sessionStore model.SessionStore, logger *logger.Logger) *Sessions {
	return &Sessions{
		sessionStore: sessionStore,
		logger:       logger,
		now:          utcNow,
	}
}

// Open starts a session for userID lasting ttl. userID is zero for
// anonymous sessions.
func (s *Sessions) Open(ctx context.Context, userID int64, source, userAgent string, ttl time.Duration) (model.UserSession, error) {
	if source == "" || userAgent == "" {
		return model.UserSession{}, fmt.Errorf("%w: session source and user agent required", model.ErrValidation)
	}
	if ttl <= 0 {
		return model.UserSession{}, fmt.Errorf("%w: session lifetime must be positive", model.ErrValidation)
	}

	session := model.UserSession{
		UserID:     userID,
		Source:     source,
		UserAgent:  userAgent,
		Expiration: s.now().Add(ttl),
	}
	if source == "127.0.0.1" || source == "::1" || source == "localhost" {
		session.Flags |= model.UserSessionIsLocalhost
	}

	session, err := s.sessionStore.Create(ctx, session)
	if err != nil {
		return model.UserSession{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Debug("Sessions service: session opened", "session_id", session.ID, "user_id", userID)

	return session, nil
}

func (s *Sessions) Get(ctx context.Context, id int64) (model.UserSession, error) {
	session, err := s.sessionStore.GetByID(ctx, id)
	if err != nil {
		return model.UserSession{}, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Extend moves the expiration of a still valid session to now+ttl.
func (s *Sessions) Extend(ctx context.Context, id int64, ttl time.Duration) (model.UserSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return model.UserSession{}, err
	}

	now := s.now()
	if !session.IsValid(now) {
		return model.UserSession{}, fmt.Errorf("%w: session expired", model.ErrUnauthorized)
	}

	session.Expiration = now.Add(ttl)
	if err := s.sessionStore.Update(ctx, session); err != nil {
		return model.UserSession{}, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

func (s *Sessions) Close(ctx context.Context, id int64) error {
	if err := s.sessionStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ReapExpired deletes sessions whose expiration has passed.
func (s *Sessions) ReapExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionStore.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("Sessions service: expired sessions removed", "count", n)
	}
	return n, nil
}
