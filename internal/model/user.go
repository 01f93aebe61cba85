package model

import (
	"context"
	"time"

	"github.com/dtroode/licensekeeper/internal/password"
)

// MaxNickNameLength is the longest accepted nick name.
const MaxNickNameLength = 42

// UserStore defines persistence operations for users.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, user User) error
	ListByNickName(ctx context.Context, nickName string) ([]User, error)
}

// UserState is the lifecycle state of an account.
type UserState int

const (
	UserStateNew UserState = iota
	UserStateConfirmed
	UserStatePasswordResetRequested
	UserStateDisabled
	UserStateDeleted
)

func (s UserState) String() string {
	switch s {
	case UserStateNew:
		return "new"
	case UserStateConfirmed:
		return "confirmed"
	case UserStatePasswordResetRequested:
		return "password_reset_requested"
	case UserStateDisabled:
		return "disabled"
	case UserStateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// User is an account. Accounts are never removed; they move to UserStateDeleted.
type User struct {
	password.Credential

	ID                int64
	NickName          string
	AvatarID          int64
	Color             uint32
	AuthLevel         int
	State             UserState
	LastUpdate        time.Time
	InvalidLogonTries int
}

// ClearPrivateFields returns a copy without credential material.
func (u User) ClearPrivateFields() User {
	u.Credential = password.Credential{}
	return u
}
