package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/licensekeeper/internal/model"
)

// SlotStore is a mock of model.SlotStore.
type SlotStore struct {
	mock.Mock
}

func (m *SlotStore) Create(ctx context.Context, slot model.UserSessionLicense) (model.UserSessionLicense, error) {
	ret := m.Called(ctx, slot)
	return ret.Get(0).(model.UserSessionLicense), ret.Error(1)
}

func (m *SlotStore) Update(ctx context.Context, slot model.UserSessionLicense) error {
	ret := m.Called(ctx, slot)
	return ret.Error(0)
}

func (m *SlotStore) ListByLicenseID(ctx context.Context, licenseID int64) ([]model.UserSessionLicense, error) {
	ret := m.Called(ctx, licenseID)
	slots, _ := ret.Get(0).([]model.UserSessionLicense)
	return slots, ret.Error(1)
}

func (m *SlotStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	ret := m.Called(ctx, before)
	return ret.Get(0).(int64), ret.Error(1)
}
