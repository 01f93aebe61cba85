package service

import (
	"context"
	"time"

	"github.com/dtroode/licensekeeper/internal/logger"
)

// UsedCodePurger forgets consumed one-time codes that can no longer be replayed.
type UsedCodePurger interface {
	PurgeUsed(ctx context.Context) error
}

// Reaper periodically removes expired license slots, sessions and
// consumed one-time codes.
type Reaper struct {
	licenses *License
	sessions *Sessions
	codes    UsedCodePurger
	interval time.Duration
	logger   *logger.Logger
}

// NewReaper returns a Reaper. codes may be nil when one-time codes expire
// on their own.
func NewReaper(licenses *License, sessions *Sessions, codes UsedCodePurger, interval time.Duration, logger *logger.Logger) *Reaper {
	return &Reaper{
		licenses: licenses,
		sessions: sessions,
		codes:    codes,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.Sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs a single cleanup pass. Failures are logged.
func (r *Reaper) Sweep(ctx context.Context) {
	if _, err := r.licenses.ReapExpiredSlots(ctx); err != nil {
		r.logger.Error("Reaper: failed to reap license slots", "error", err.Error())
	}
	if _, err := r.sessions.ReapExpired(ctx); err != nil {
		r.logger.Error("Reaper: failed to reap sessions", "error", err.Error())
	}
	if r.codes != nil {
		if err := r.codes.PurgeUsed(ctx); err != nil {
			r.logger.Error("Reaper: failed to purge used codes", "error", err.Error())
		}
	}
}
