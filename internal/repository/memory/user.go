package memory

import (
	"context"

	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	table *Table[model.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		table: NewTable(
			func(u model.User) int64 { return u.ID },
			func(u *model.User, id int64) { u.ID = id },
		),
	}
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	return r.table.Insert(user), nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (model.User, error) {
	return r.table.Get(id)
}

func (r *UserRepository) Update(_ context.Context, user model.User) error {
	return r.table.Update(user)
}

func (r *UserRepository) ListByNickName(_ context.Context, nickName string) ([]model.User, error) {
	return r.table.Query(func(u model.User) bool { return u.NickName == nickName }), nil
}
