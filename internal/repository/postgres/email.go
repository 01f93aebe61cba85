package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.EmailStore = (*EmailRepository)(nil)

const emailColumns = `id, user_id, address, verified, verification_code`

type EmailRepository struct {
	db database.DBTX
}

func NewEmailRepository(db database.DBTX) *EmailRepository {
	return &EmailRepository{db: db}
}

func scanEmail(s scanner) (model.EmailAddress, error) {
	var e model.EmailAddress
	err := s.Scan(&e.ID, &e.UserID, &e.Address, &e.Verified, &e.VerificationCode)
	return e, err
}

func (r *EmailRepository) Create(ctx context.Context, email model.EmailAddress) (model.EmailAddress, error) {
	const query = `
        INSERT INTO email_addresses (user_id, address, verified, verification_code)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		email.UserID, email.Address, email.Verified, email.VerificationCode,
	).Scan(&email.ID)
	if err != nil {
		return model.EmailAddress{}, fmt.Errorf("failed to create email address: %w", err)
	}
	return email, nil
}

func (r *EmailRepository) GetByID(ctx context.Context, id int64) (model.EmailAddress, error) {
	query := `SELECT ` + emailColumns + ` FROM email_addresses WHERE id = $1`

	email, err := scanEmail(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EmailAddress{}, model.ErrNotFound
		}
		return model.EmailAddress{}, fmt.Errorf("failed to get email address: %w", err)
	}
	return email, nil
}

func (r *EmailRepository) Update(ctx context.Context, email model.EmailAddress) error {
	const query = `
        UPDATE email_addresses
        SET user_id = $2, address = $3, verified = $4, verification_code = $5
        WHERE id = $1
    `

	res, err := r.db.ExecContext(ctx, query,
		email.ID, email.UserID, email.Address, email.Verified, email.VerificationCode,
	)
	if err != nil {
		return fmt.Errorf("failed to update email address: %w", err)
	}
	return rowsAffected(res)
}

func (r *EmailRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email address: %w", err)
	}
	return rowsAffected(res)
}

// ListByAddress matches address ignoring case.
func (r *EmailRepository) ListByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	query := `SELECT ` + emailColumns + ` FROM email_addresses WHERE lower(address) = lower($1) ORDER BY id`
	return r.list(ctx, query, address)
}

// ListVerifiedByAddress matches address exactly.
func (r *EmailRepository) ListVerifiedByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	query := `SELECT ` + emailColumns + ` FROM email_addresses WHERE address = $1 AND verified ORDER BY id`
	return r.list(ctx, query, address)
}

func (r *EmailRepository) ListByUserID(ctx context.Context, userID int64) ([]model.EmailAddress, error) {
	query := `SELECT ` + emailColumns + ` FROM email_addresses WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

func (r *EmailRepository) ExistsAddress(ctx context.Context, address string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM email_addresses WHERE lower(address) = lower($1))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, address).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email address: %w", err)
	}
	return exists, nil
}

func (r *EmailRepository) list(ctx context.Context, query string, arg any) ([]model.EmailAddress, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list email addresses: %w", err)
	}
	defer rows.Close()

	var emails []model.EmailAddress
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email address: %w", err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate email addresses: %w", err)
	}
	return emails, nil
}
