package service

import (
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dtroode/licensekeeper/internal/model"
)

const (
	persistRetries = 2
	persistBackoff = 10 * time.Millisecond
)

func utcNow() time.Time {
	return time.Now().UTC()
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(persistRetries, retry.NewConstant(persistBackoff))
}

// isSafeNameChar reports whether r may appear in user names and email addresses.
func isSafeNameChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.', r == '@', r == '+':
		return true
	}
	return false
}

func validateName(value string, maxLen int, field string) error {
	if value == "" {
		return fmt.Errorf("%w: %s missing", model.ErrValidation, field)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s longer than %d characters", model.ErrValidation, field, maxLen)
	}
	for _, r := range value {
		if !isSafeNameChar(r) {
			return fmt.Errorf("%w: invalid characters at %s", model.ErrValidation, field)
		}
	}
	return nil
}
