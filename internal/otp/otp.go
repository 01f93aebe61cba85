// Package otp implements time-based one-time passwords (RFC 6238) with
// clock-drift tolerance and replay protection.
package otp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultInterval = 30
	Digits          = 6
)

var ErrInvalidSecret = errors.New("otp: invalid secret")

// Config holds verification parameters. Interval is in seconds;
// DriftPast and DriftFuture are in steps.
type Config struct {
	Interval    int
	DriftPast   int
	DriftFuture int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// Verifier generates and checks codes. It is safe for concurrent use as
// long as its UsedCodeStore is.
type Verifier struct {
	cfg  Config
	used UsedCodeStore
	now  func() time.Time
}

// NewVerifier returns a Verifier recording consumed codes in used.
func NewVerifier(cfg Config, used UsedCodeStore, opts ...Option) *Verifier {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.DriftPast < 0 {
		cfg.DriftPast = 0
	}
	if cfg.DriftFuture < 0 {
		cfg.DriftFuture = 0
	}

	v := &Verifier{
		cfg:  cfg,
		used: used,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Step returns the time step index containing t.
func (v *Verifier) Step(t time.Time) int64 {
	return t.Unix() / int64(v.cfg.Interval)
}

// GetCode returns the code for secret at step.
func (v *Verifier) GetCode(secret string, step int64) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return code(key, step), nil
}

// CurrentCode returns the code for secret at the current step.
func (v *Verifier) CurrentCode(secret string) (string, error) {
	return v.GetCode(secret, v.Step(v.now()))
}

// CheckCode reports whether code is valid for secret within the drift
// window and has not been used before. An accepted code is recorded and
// rejected on any later call.
func (v *Verifier) CheckCode(ctx context.Context, secret, candidate string) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	candidate = strings.TrimSpace(candidate)
	if len(candidate) != Digits || !isNumeric(candidate) {
		return false, nil
	}

	current := v.Step(v.now())
	if err := v.purge(ctx, current); err != nil {
		return false, err
	}

	usedKey := consumedKey(key, candidate)
	seen, err := v.used.Contains(ctx, usedKey)
	if err != nil {
		return false, fmt.Errorf("failed to check used codes: %w", err)
	}
	if seen {
		return false, nil
	}

	for step := current - int64(v.cfg.DriftPast); step <= current+int64(v.cfg.DriftFuture); step++ {
		if subtle.ConstantTimeCompare([]byte(code(key, step)), []byte(candidate)) != 1 {
			continue
		}

		added, err := v.used.Add(ctx, usedKey, step, v.retention(step))
		if err != nil {
			return false, fmt.Errorf("failed to record used code: %w", err)
		}
		return added, nil
	}

	return false, nil
}

// PurgeUsed forgets consumed codes whose step has left the drift window.
func (v *Verifier) PurgeUsed(ctx context.Context) error {
	return v.purge(ctx, v.Step(v.now()))
}

func (v *Verifier) purge(ctx context.Context, current int64) error {
	if err := v.used.Purge(ctx, current-int64(v.cfg.DriftPast)); err != nil {
		return fmt.Errorf("failed to purge used codes: %w", err)
	}
	return nil
}

// retention is how long a code accepted at step can still fall inside
// the drift window.
func (v *Verifier) retention(step int64) time.Duration {
	end := time.Unix((step+int64(v.cfg.DriftPast)+1)*int64(v.cfg.Interval), 0)
	ttl := end.Sub(v.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func code(key []byte, step int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(step))

	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", Digits, bin%1_000_000)
}

func normalizeSecret(secret string) string {
	secret = strings.ToUpper(secret)
	secret = strings.ReplaceAll(secret, " ", "")
	return strings.TrimRight(secret, "=")
}

func decodeSecret(secret string) ([]byte, error) {
	normalized := normalizeSecret(secret)
	if normalized == "" {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return key, nil
}

// consumedKey scopes a used code to the secret it was issued for.
func consumedKey(key []byte, candidate string) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8]) + ":" + candidate
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
