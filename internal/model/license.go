package model

import (
	"context"
	"time"
)

// LicenseStore defines persistence operations for licenses.
type LicenseStore interface {
	Create(ctx context.Context, license License) (License, error)
	GetByID(ctx context.Context, id int64) (License, error)
	Update(ctx context.Context, license License) error
	ListBySoftwareAndUser(ctx context.Context, softwareID, userID int64) ([]License, error)
	ListBySoftwareAndGroup(ctx context.Context, softwareID, groupID int64) ([]License, error)
	ListByUserID(ctx context.Context, userID int64) ([]License, error)
	ListByGroupID(ctx context.Context, groupID int64) ([]License, error)
}

// SlotStore defines persistence operations for license slots.
type SlotStore interface {
	Create(ctx context.Context, slot UserSessionLicense) (UserSessionLicense, error)
	Update(ctx context.Context, slot UserSessionLicense) error
	ListByLicenseID(ctx context.Context, licenseID int64) ([]UserSessionLicense, error)
	// DeleteExpired removes slots that expired before t and returns how many.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// License entitles a user (UserID) or a group (GroupID) to run software.
// Zero means the owner kind is unset.
type License struct {
	ID          int64
	SoftwareID  int64
	UserID      int64
	GroupID     int64
	Description string
	MaxSessions int
	MaxUsers    int
	Certificate []byte
	ValidTill   time.Time
	Components  string
}

// IsValid reports whether the license has not expired at now.
func (l License) IsValid(now time.Time) bool {
	return now.Before(l.ValidTill)
}

// UserSessionLicense is a slot binding one session of one user to a license.
type UserSessionLicense struct {
	ID            int64
	LicenseID     int64
	UserID        int64
	UserSessionID int64
	Expiration    time.Time
}
