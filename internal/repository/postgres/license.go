package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var (
	_ model.LicenseStore = (*LicenseRepository)(nil)
	_ model.SlotStore    = (*SlotRepository)(nil)
)

const licenseColumns = `id, software_id, user_id, group_id, description, max_sessions, max_users, certificate, valid_till, components`

type LicenseRepository struct {
	db database.DBTX
}

func NewLicenseRepository(db database.DBTX) *LicenseRepository {
	return &LicenseRepository{db: db}
}

func scanLicense(s scanner) (model.License, error) {
	var l model.License
	err := s.Scan(
		&l.ID, &l.SoftwareID, &l.UserID, &l.GroupID, &l.Description,
		&l.MaxSessions, &l.MaxUsers, &l.Certificate, &l.ValidTill, &l.Components,
	)
	l.ValidTill = l.ValidTill.UTC()
	return l, err
}

func (r *LicenseRepository) Create(ctx context.Context, license model.License) (model.License, error) {
	const query = `
        INSERT INTO licenses (software_id, user_id, group_id, description, max_sessions, max_users, certificate, valid_till, components)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		license.SoftwareID, license.UserID, license.GroupID, license.Description,
		license.MaxSessions, license.MaxUsers, license.Certificate, license.ValidTill, license.Components,
	).Scan(&license.ID)
	if err != nil {
		return model.License{}, fmt.Errorf("failed to create license: %w", err)
	}
	return license, nil
}

func (r *LicenseRepository) GetByID(ctx context.Context, id int64) (model.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id = $1`

	license, err := scanLicense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.License{}, model.ErrNotFound
		}
		return model.License{}, fmt.Errorf("failed to get license: %w", err)
	}
	return license, nil
}

func (r *LicenseRepository) Update(ctx context.Context, license model.License) error {
	const query = `
        UPDATE licenses
        SET software_id = $2, user_id = $3, group_id = $4, description = $5, max_sessions = $6,
            max_users = $7, certificate = $8, valid_till = $9, components = $10
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query,
		license.ID, license.SoftwareID, license.UserID, license.GroupID, license.Description,
		license.MaxSessions, license.MaxUsers, license.Certificate, license.ValidTill, license.Components,
	)
	if err != nil {
		return fmt.Errorf("failed to update license: %w", err)
	}
	return rowsAffected(res)
}

func (r *LicenseRepository) ListBySoftwareAndUser(ctx context.Context, softwareID, userID int64) ([]model.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE software_id = $1 AND user_id = $2 ORDER BY id`
	return r.list(ctx, query, softwareID, userID)
}

func (r *LicenseRepository) ListBySoftwareAndGroup(ctx context.Context, softwareID, groupID int64) ([]model.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE software_id = $1 AND group_id = $2 ORDER BY id`
	return r.list(ctx, query, softwareID, groupID)
}

func (r *LicenseRepository) ListByUserID(ctx context.Context, userID int64) ([]model.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

func (r *LicenseRepository) ListByGroupID(ctx context.Context, groupID int64) ([]model.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE group_id = $1 ORDER BY id`
	return r.list(ctx, query, groupID)
}

func (r *LicenseRepository) list(ctx context.Context, query string, args ...any) ([]model.License, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}
	defer rows.Close()

	var licenses []model.License
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate licenses: %w", err)
	}
	return licenses, nil
}

type SlotRepository struct {
	db database.DBTX
}

func NewSlotRepository(db database.DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) Create(ctx context.Context, slot model.UserSessionLicense) (model.UserSessionLicense, error) {
	const query = `
        INSERT INTO user_session_licenses (license_id, user_id, user_session_id, expiration)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		slot.LicenseID, slot.UserID, slot.UserSessionID, slot.Expiration,
	).Scan(&slot.ID)
	if err != nil {
		return model.UserSessionLicense{}, fmt.Errorf("failed to create license slot: %w", err)
	}
	return slot, nil
}

func (r *SlotRepository) Update(ctx context.Context, slot model.UserSessionLicense) error {
	const query = `
        UPDATE user_session_licenses
        SET license_id = $2, user_id = $3, user_session_id = $4, expiration = $5
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query, slot.ID, slot.LicenseID, slot.UserID, slot.UserSessionID, slot.Expiration)
	if err != nil {
		return fmt.Errorf("failed to update license slot: %w", err)
	}
	return rowsAffected(res)
}

func (r *SlotRepository) ListByLicenseID(ctx context.Context, licenseID int64) ([]model.UserSessionLicense, error) {
	const query = `
        SELECT id, license_id, user_id, user_session_id, expiration
        FROM user_session_licenses
        WHERE license_id = $1
        ORDER BY id
    `

	rows, err := r.db.QueryContext(ctx, query, licenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list license slots: %w", err)
	}
	defer rows.Close()

	var slots []model.UserSessionLicense
	for rows.Next() {
		var s model.UserSessionLicense
		if err := rows.Scan(&s.ID, &s.LicenseID, &s.UserID, &s.UserSessionID, &s.Expiration); err != nil {
			return nil, fmt.Errorf("failed to scan license slot: %w", err)
		}
		s.Expiration = s.Expiration.UTC()
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate license slots: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_session_licenses WHERE expiration < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired license slots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
