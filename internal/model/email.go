package model

import "context"

// MaxEmailLength is the longest accepted email address.
const MaxEmailLength = 64

// EmailStore defines persistence operations for email addresses.
type EmailStore interface {
	Create(ctx context.Context, email EmailAddress) (EmailAddress, error)
	GetByID(ctx context.Context, id int64) (EmailAddress, error)
	Update(ctx context.Context, email EmailAddress) error
	Delete(ctx context.Context, id int64) error
	// ListByAddress matches address case-insensitively.
	ListByAddress(ctx context.Context, address string) ([]EmailAddress, error)
	ListVerifiedByAddress(ctx context.Context, address string) ([]EmailAddress, error)
	ListByUserID(ctx context.Context, userID int64) ([]EmailAddress, error)
	ExistsAddress(ctx context.Context, address string) (bool, error)
}

// EmailAddress belongs to exactly one user. An empty VerificationCode means
// no verification is pending.
type EmailAddress struct {
	ID               int64
	UserID           int64
	Address          string
	Verified         bool
	VerificationCode string
}
