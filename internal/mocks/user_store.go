package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/licensekeeper/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	ret := m.Called(ctx, user)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id int64) (model.User, error) {
	ret := m.Called(ctx, id)
	return ret.Get(0).(model.User), ret.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) error {
	ret := m.Called(ctx, user)
	return ret.Error(0)
}

func (m *UserStore) ListByNickName(ctx context.Context, nickName string) ([]model.User, error) {
	ret := m.Called(ctx, nickName)
	users, _ := ret.Get(0).([]model.User)
	return users, ret.Error(1)
}
