package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/licensekeeper/internal/certificate"
	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
)

// License resolves licenses for users and allocates session slots on them.
type License struct {
	licenseStore model.LicenseStore
	slotStore    model.SlotStore
	memberStore  model.GroupMemberStore
	issuer       *certificate.Issuer
	locks        *keyedMutex
	logger       *logger.Logger
	now          func() time.Time
}

func NewLicense(
	licenseStore model.LicenseStore,
	slotStore model.SlotStore,
	memberStore model.GroupMemberStore,
	issuer *certificate.Issuer,
	logger *logger.Logger,
) *License {
	return &License{
		licenseStore: licenseStore,
		slotStore:    slotStore,
		memberStore:  memberStore,
		issuer:       issuer,
		locks:        newKeyedMutex(),
		logger:       logger,
		now:          utcNow,
	}
}

// Create stores a new license.
func (l *License) Create(ctx context.Context, license model.License) (model.License, error) {
	if license.SoftwareID <= 0 {
		return model.License{}, fmt.Errorf("%w: software id required", model.ErrValidation)
	}
	if license.UserID <= 0 && license.GroupID <= 0 {
		return model.License{}, fmt.Errorf("%w: license needs a user or group owner", model.ErrValidation)
	}
	if license.MaxSessions < 0 || license.MaxUsers < 0 {
		return model.License{}, fmt.Errorf("%w: negative capacity", model.ErrValidation)
	}

	license, err := l.licenseStore.Create(ctx, license)
	if err != nil {
		return model.License{}, fmt.Errorf("failed to create license: %w", err)
	}
	return license, nil
}

// FindLicense returns a valid license of softwareID owned by userID, or
// failing that one owned by a group userID belongs to.
func (l *License) FindLicense(ctx context.Context, softwareID, userID int64) (model.License, error) {
	now := l.now()

	owned, err := l.licenseStore.ListBySoftwareAndUser(ctx, softwareID, userID)
	if err != nil {
		return model.License{}, fmt.Errorf("failed to list user licenses: %w", err)
	}
	for _, lic := range owned {
		if lic.IsValid(now) {
			return lic, nil
		}
	}

	groupIDs, err := userGroups(ctx, l.memberStore, userID)
	if err != nil {
		return model.License{}, err
	}
	for _, groupID := range groupIDs {
		shared, err := l.licenseStore.ListBySoftwareAndGroup(ctx, softwareID, groupID)
		if err != nil {
			return model.License{}, fmt.Errorf("failed to list group licenses: %w", err)
		}
		for _, lic := range shared {
			if lic.GroupID > 0 && lic.IsValid(now) {
				return lic, nil
			}
		}
	}

	return model.License{}, model.ErrNotFound
}

// UseLicense binds session to license. It reports false when the license
// has no free session or user capacity left. A session already holding a
// slot has its expiry refreshed and gets true only while the license is
// still valid.
func (l *License) UseLicense(ctx context.Context, userID int64, session model.UserSession, license model.License) (bool, error) {
	unlock := l.locks.Lock(license.ID)
	defer unlock()

	slots, err := l.slotStore.ListByLicenseID(ctx, license.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list license slots: %w", err)
	}

	for _, slot := range slots {
		if slot.UserSessionID != session.ID {
			continue
		}

		current, err := l.licenseStore.GetByID(ctx, license.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return false, fmt.Errorf("failed to get license: %w", err)
		}
		if err == nil {
			license = current
		}

		slot.Expiration = session.Expiration
		if err := l.slotStore.Update(ctx, slot); err != nil {
			return false, fmt.Errorf("failed to refresh license slot: %w", err)
		}
		return license.IsValid(l.now()), nil
	}

	if len(slots) >= license.MaxSessions {
		l.logger.Debug("License service: session limit reached",
			"license_id", license.ID,
			"max_sessions", license.MaxSessions)
		return false, nil
	}

	users := make(map[int64]struct{}, len(slots))
	for _, slot := range slots {
		users[slot.UserID] = struct{}{}
	}
	if len(users) >= license.MaxUsers {
		l.logger.Debug("License service: user limit reached",
			"license_id", license.ID,
			"max_users", license.MaxUsers)
		return false, nil
	}

	slot, err := l.slotStore.Create(ctx, model.UserSessionLicense{
		LicenseID:     license.ID,
		UserID:        userID,
		UserSessionID: session.ID,
		Expiration:    session.Expiration,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create license slot: %w", err)
	}

	l.logger.Info("License service: slot granted",
		"license_id", license.ID,
		"slot_id", slot.ID,
		"session_id", session.ID,
		"user_id", userID)

	return true, nil
}

// ActiveSlots returns all slots held on licenseID, including expired ones
// that have not been reaped yet.
func (l *License) ActiveSlots(ctx context.Context, licenseID int64) ([]model.UserSessionLicense, error) {
	slots, err := l.slotStore.ListByLicenseID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list license slots: %w", err)
	}
	return slots, nil
}

// ReapExpiredSlots deletes slots whose expiration has passed.
func (l *License) ReapExpiredSlots(ctx context.Context) (int64, error) {
	n, err := l.slotStore.DeleteExpired(ctx, l.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired slots: %w", err)
	}
	if n > 0 {
		l.logger.Info("License service: expired slots removed", "count", n)
	}
	return n, nil
}

func (l *License) GetUserLicenses(ctx context.Context, userID int64) ([]model.License, error) {
	licenses, err := l.licenseStore.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user licenses: %w", err)
	}
	return licenses, nil
}

func (l *License) GetGroupLicenses(ctx context.Context, groupIDs []int64) ([]model.License, error) {
	var out []model.License
	for _, groupID := range groupIDs {
		licenses, err := l.licenseStore.ListByGroupID(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("failed to list group licenses: %w", err)
		}
		out = append(out, licenses...)
	}
	return out, nil
}

// Certify signs licenseID's terms and stores the certificate on the license.
func (l *License) Certify(ctx context.Context, licenseID int64) (string, error) {
	license, err := l.licenseStore.GetByID(ctx, licenseID)
	if err != nil {
		return "", fmt.Errorf("failed to get license: %w", err)
	}

	cert, err := l.issuer.Issue(license)
	if err != nil {
		return "", err
	}

	license.Certificate = []byte(cert)
	if err := l.licenseStore.Update(ctx, license); err != nil {
		return "", fmt.Errorf("failed to update license: %w", err)
	}

	l.logger.Info("License service: certificate issued", "license_id", licenseID)

	return cert, nil
}

// VerifyCertificate checks a certificate and returns the terms it carries.
func (l *License) VerifyCertificate(cert string) (certificate.Claims, error) {
	claims, err := l.issuer.Verify(cert)
	if err != nil {
		return certificate.Claims{}, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}
	return claims, nil
}
