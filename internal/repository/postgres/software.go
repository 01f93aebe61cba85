package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.SoftwareStore = (*SoftwareRepository)(nil)

type SoftwareRepository struct {
	db database.DBTX
}

func NewSoftwareRepository(db database.DBTX) *SoftwareRepository {
	return &SoftwareRepository{db: db}
}

func (r *SoftwareRepository) Create(ctx context.Context, software model.Software) (model.Software, error) {
	const query = `
        INSERT INTO software (name, version, license_free, program_id, server_ip, salt, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		software.Name, software.Version, software.LicenseFree, software.ProgramID, software.ServerIP,
		software.Salt, software.PasswordHash,
	).Scan(&software.ID)
	if err != nil {
		return model.Software{}, fmt.Errorf("failed to create software: %w", err)
	}
	return software, nil
}

func (r *SoftwareRepository) GetByID(ctx context.Context, id int64) (model.Software, error) {
	const query = `
        SELECT id, name, version, license_free, program_id, server_ip, salt, password_hash
        FROM software WHERE id = $1
    `

	var s model.Software
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Version, &s.LicenseFree, &s.ProgramID, &s.ServerIP, &s.Salt, &s.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Software{}, model.ErrNotFound
		}
		return model.Software{}, fmt.Errorf("failed to get software: %w", err)
	}
	return s, nil
}

func (r *SoftwareRepository) Update(ctx context.Context, software model.Software) error {
	const query = `
        UPDATE software
        SET name = $2, version = $3, license_free = $4, program_id = $5, server_ip = $6, salt = $7, password_hash = $8
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query,
		software.ID, software.Name, software.Version, software.LicenseFree, software.ProgramID, software.ServerIP,
		software.Salt, software.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update software: %w", err)
	}
	return rowsAffected(res)
}
