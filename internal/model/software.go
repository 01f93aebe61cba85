package model

import (
	"context"

	"github.com/dtroode/licensekeeper/internal/password"
)

// SoftwareStore defines persistence operations for software products.
type SoftwareStore interface {
	Create(ctx context.Context, software Software) (Software, error)
	GetByID(ctx context.Context, id int64) (Software, error)
	Update(ctx context.Context, software Software) error
}

// Software is a licensed product. Its credential authenticates the
// product's own backend.
type Software struct {
	password.Credential

	ID          int64
	Name        string
	Version     string
	LicenseFree bool
	ProgramID   string
	ServerIP    string
}
