package memory

import (
	"context"
	"time"

	"github.com/dtroode/licensekeeper/internal/model"
)

var (
	_ model.LicenseStore = (*LicenseRepository)(nil)
	_ model.SlotStore    = (*SlotRepository)(nil)
)

type LicenseRepository struct {
	table *Table[model.License]
}

func NewLicenseRepository() *LicenseRepository {
	return &LicenseRepository{
		table: NewTable(
			func(l model.License) int64 { return l.ID },
			func(l *model.License, id int64) { l.ID = id },
		),
	}
}

func (r *LicenseRepository) Create(_ context.Context, license model.License) (model.License, error) {
	return r.table.Insert(license), nil
}

func (r *LicenseRepository) GetByID(_ context.Context, id int64) (model.License, error) {
	return r.table.Get(id)
}

func (r *LicenseRepository) Update(_ context.Context, license model.License) error {
	return r.table.Update(license)
}

func (r *LicenseRepository) ListBySoftwareAndUser(_ context.Context, softwareID, userID int64) ([]model.License, error) {
	return r.table.Query(And[model.License](bySoftware(softwareID), func(l model.License) bool {
		return l.UserID == userID
	})), nil
}

func (r *LicenseRepository) ListBySoftwareAndGroup(_ context.Context, softwareID, groupID int64) ([]model.License, error) {
	return r.table.Query(And[model.License](bySoftware(softwareID), func(l model.License) bool {
		return l.GroupID == groupID
	})), nil
}

func (r *LicenseRepository) ListByUserID(_ context.Context, userID int64) ([]model.License, error) {
	return r.table.Query(func(l model.License) bool { return l.UserID == userID }), nil
}

func (r *LicenseRepository) ListByGroupID(_ context.Context, groupID int64) ([]model.License, error) {
	return r.table.Query(func(l model.License) bool { return l.GroupID == groupID }), nil
}

func bySoftware(softwareID int64) Predicate[model.License] {
	return func(l model.License) bool { return l.SoftwareID == softwareID }
}

type SlotRepository struct {
	table *Table[model.UserSessionLicense]
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{
		table: NewTable(
			func(s model.UserSessionLicense) int64 { return s.ID },
			func(s *model.UserSessionLicense, id int64) { s.ID = id },
		),
	}
}

func (r *SlotRepository) Create(_ context.Context, slot model.UserSessionLicense) (model.UserSessionLicense, error) {
	return r.table.Insert(slot), nil
}

func (r *SlotRepository) Update(_ context.Context, slot model.UserSessionLicense) error {
	return r.table.Update(slot)
}

func (r *SlotRepository) ListByLicenseID(_ context.Context, licenseID int64) ([]model.UserSessionLicense, error) {
	return r.table.Query(func(s model.UserSessionLicense) bool { return s.LicenseID == licenseID }), nil
}

func (r *SlotRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	n := r.table.DeleteWhere(func(s model.UserSessionLicense) bool { return s.Expiration.Before(before) })
	return int64(n), nil
}
