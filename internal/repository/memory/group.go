package memory

import (
	"context"

	"github.com/dtroode/licensekeeper/internal/model"
)

var (
	_ model.GroupStore       = (*GroupRepository)(nil)
	_ model.GroupMemberStore = (*GroupMemberRepository)(nil)
)

type GroupRepository struct {
	table *Table[model.Group]
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		table: NewTable(
			func(g model.Group) int64 { return g.ID },
			func(g *model.Group, id int64) { g.ID = id },
		),
	}
}

func (r *GroupRepository) Create(_ context.Context, group model.Group) (model.Group, error) {
	return r.table.Insert(group), nil
}

func (r *GroupRepository) GetByID(_ context.Context, id int64) (model.Group, error) {
	return r.table.Get(id)
}

type GroupMemberRepository struct {
	table *Table[model.GroupMember]
}

func NewGroupMemberRepository() *GroupMemberRepository {
	return &GroupMemberRepository{
		table: NewTable(
			func(m model.GroupMember) int64 { return m.ID },
			func(m *model.GroupMember, id int64) { m.ID = id },
		),
	}
}

// Create returns model.ErrConflict when the user is already a member.
func (r *GroupMemberRepository) Create(_ context.Context, member model.GroupMember) (model.GroupMember, error) {
	return r.table.InsertUnique(member, func(m model.GroupMember) bool {
		return m.GroupID == member.GroupID && m.UserID == member.UserID
	})
}

func (r *GroupMemberRepository) Delete(_ context.Context, id int64) error {
	return r.table.Delete(id)
}

func (r *GroupMemberRepository) ListByUserID(_ context.Context, userID int64) ([]model.GroupMember, error) {
	return r.table.Query(func(m model.GroupMember) bool { return m.UserID == userID }), nil
}

func (r *GroupMemberRepository) ListByGroupAndUser(_ context.Context, groupID, userID int64) ([]model.GroupMember, error) {
	return r.table.Query(func(m model.GroupMember) bool {
		return m.GroupID == groupID && m.UserID == userID
	}), nil
}
