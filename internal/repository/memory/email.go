package memory

import (
	"context"

	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.EmailStore = (*EmailRepository)(nil)

type EmailRepository struct {
	table *Table[model.EmailAddress]
}

func NewEmailRepository() *EmailRepository {
	return &EmailRepository{
		table: NewTable(
			func(e model.EmailAddress) int64 { return e.ID },
			func(e *model.EmailAddress, id int64) { e.ID = id },
		),
	}
}

func (r *EmailRepository) Create(_ context.Context, email model.EmailAddress) (model.EmailAddress, error) {
	return r.table.Insert(email), nil
}

func (r *EmailRepository) GetByID(_ context.Context, id int64) (model.EmailAddress, error) {
	return r.table.Get(id)
}

func (r *EmailRepository) Update(_ context.Context, email model.EmailAddress) error {
	return r.table.Update(email)
}

func (r *EmailRepository) Delete(_ context.Context, id int64) error {
	return r.table.Delete(id)
}

func (r *EmailRepository) ListByAddress(_ context.Context, address string) ([]model.EmailAddress, error) {
	return r.table.Query(addressLike(address)), nil
}

func (r *EmailRepository) ListVerifiedByAddress(_ context.Context, address string) ([]model.EmailAddress, error) {
	return r.table.Query(func(e model.EmailAddress) bool {
		return e.Address == address && e.Verified
	}), nil
}

func (r *EmailRepository) ListByUserID(_ context.Context, userID int64) ([]model.EmailAddress, error) {
	return r.table.Query(func(e model.EmailAddress) bool { return e.UserID == userID }), nil
}

func (r *EmailRepository) ExistsAddress(_ context.Context, address string) (bool, error) {
	return r.table.Exists(addressLike(address)), nil
}

func addressLike(address string) Predicate[model.EmailAddress] {
	return func(e model.EmailAddress) bool { return Like(e.Address, address) }
}
