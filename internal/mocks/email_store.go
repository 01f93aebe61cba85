package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/licensekeeper/internal/model"
)

// EmailStore is a mock of model.EmailStore.
type EmailStore struct {
	mock.Mock
}

func (m *EmailStore) Create(ctx context.Context, email model.EmailAddress) (model.EmailAddress, error) {
	ret := m.Called(ctx, email)
	return ret.Get(0).(model.EmailAddress), ret.Error(1)
}

func (m *EmailStore) GetByID(ctx context.Context, id int64) (model.EmailAddress, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(model.EmailAddress), ret.Error(1)
}

func (m *EmailStore) Update(ctx context.Context, email model.EmailAddress) error {
	ret := m.Called(ctx, email)
	return ret.Error(0)
}

func (m *EmailStore) Delete(ctx context.Context, id int64) error {
	ret := m.Called(ctx, id)
	return ret.Error(0)
}

func (m *EmailStore) ListByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	ret := m.Called(ctx, address)
	emails, _ := ret.Get(0).([]model.EmailAddress)
	return emails, ret.Error(1)
}

func (m *EmailStore) ListVerifiedByAddress(ctx context.Context, address string) ([]model.EmailAddress, error) {
	ret := m.Called(ctx, address)
	emails, _ := ret.Get(0).([]model.EmailAddress)
	return emails, ret.Error(1)
}

func (m *EmailStore) ListByUserID(ctx context.Context, userID int64) ([]model.EmailAddress, error) {
	ret := m.Called(ctx, userID)
	emails, _ := ret.Get(0).([]model.EmailAddress)
	return emails, ret.Error(1)
}

func (m *EmailStore) ExistsAddress(ctx context.Context, address string) (bool, error) {
	ret := m.Called(ctx, address)
	return ret.Bool(0), ret.Error(1)
}
