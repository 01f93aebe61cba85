package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/password"
)

// SoftwareParams describes a product to register.
type SoftwareParams struct {
	Name        string
	Version     string
	LicenseFree bool
	ProgramID   string
	ServerIP    string
	Password    string
}

// Software registers products and authenticates their backends.
type Software struct {
	softwareStore model.SoftwareStore
	hasher        *password.Hasher
	logger        *logger.Logger
}

func NewSoftware(softwareStore model.SoftwareStore, hasher *password.Hasher, logger *logger.Logger) *Software {
	return &Software{
		softwareStore: softwareStore,
		hasher:        hasher,
		logger:        logger,
	}
}

func (s *Software) Register(ctx context.Context, params SoftwareParams) (model.Software, error) {
	if params.Name == "" {
		return model.Software{}, fmt.Errorf("%w: software name missing", model.ErrValidation)
	}

	software := model.Software{
		Name:        params.Name,
		Version:     params.Version,
		LicenseFree: params.LicenseFree,
		ProgramID:   params.ProgramID,
		ServerIP:    params.ServerIP,
	}
	if params.Password != "" {
		if err := s.hasher.SetPassword(&software.Credential, params.Password); err != nil {
			return model.Software{}, err
		}
	}

	software, err := s.softwareStore.Create(ctx, software)
	if err != nil {
		return model.Software{}, fmt.Errorf("failed to create software: %w", err)
	}

	s.logger.Info("Software service: software registered", "software_id", software.ID, "name", software.Name)

	return software, nil
}

// Authenticate checks the backend password of softwareID.
func (s *Software) Authenticate(ctx context.Context, softwareID int64, plaintext string) (model.Software, error) {
	software, err := s.softwareStore.GetByID(ctx, softwareID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Software{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Software{}, fmt.Errorf("failed to get software: %w", err)
	}

	if !s.hasher.TestPassword(software.Credential, plaintext) {
		s.logger.Info("Software service: authentication failed", "software_id", softwareID)
		return model.Software{}, model.ErrInvalidCredentials
	}
	return software, nil
}
