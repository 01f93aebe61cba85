package memory

import (
	"context"

	"github.com/dtroode/licensekeeper/internal/model"
)

var _ model.SoftwareStore = (*SoftwareRepository)(nil)

type SoftwareRepository struct {
	table *Table[model.Software]
}

func NewSoftwareRepository() *SoftwareRepository {
	return &SoftwareRepository{
		table: NewTable(
			func(s model.Software) int64 { return s.ID },
			func(s *model.Software, id int64) { s.ID = id },
		),
	}
}

func (r *SoftwareRepository) Create(_ context.Context, software model.Software) (model.Software, error) {
	return r.table.Insert(software), nil
}

func (r *SoftwareRepository) GetByID(_ context.Context, id int64) (model.Software, error) {
	return r.table.Get(id)
}

func (r *SoftwareRepository) Update(_ context.Context, software model.Software) error {
	return r.table.Update(software)
}
