package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dtroode/licensekeeper/database"
	"github.com/dtroode/licensekeeper/internal/model"
)

var (
	_ model.GroupStore       = (*GroupRepository)(nil)
	_ model.GroupMemberStore = (*GroupMemberRepository)(nil)
)

type GroupRepository struct {
	db database.DBTX
}

func NewGroupRepository(db database.DBTX) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group model.Group) (model.Group, error) {
	const query = `INSERT INTO groups (avatar_id, color, name) VALUES ($1, $2, $3) RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, group.AvatarID, int64(group.Color), group.Name).Scan(&group.ID); err != nil {
		return model.Group{}, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (model.Group, error) {
	const query = `SELECT id, avatar_id, color, name FROM groups WHERE id = $1`

	var (
		group model.Group
		color int64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&group.ID, &group.AvatarID, &color, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Group{}, model.ErrNotFound
		}
		return model.Group{}, fmt.Errorf("failed to get group: %w", err)
	}
	group.Color = uint32(color)
	return group, nil
}

const memberColumns = `id, group_id, user_id, invite_date_time, flags`

type GroupMemberRepository struct {
	db database.DBTX
}

func NewGroupMemberRepository(db database.DBTX) *GroupMemberRepository {
	return &GroupMemberRepository{db: db}
}

// Create inserts member, returning model.ErrConflict when the user
// already belongs to the group.
func (r *GroupMemberRepository) Create(ctx context.Context, member model.GroupMember) (model.GroupMember, error) {
	const query = `
        INSERT INTO group_members (group_id, user_id, invite_date_time, flags)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	err := r.db.QueryRowContext(ctx, query,
		member.GroupID, member.UserID, member.InviteDateTime, int64(member.Flags),
	).Scan(&member.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return model.GroupMember{}, model.ErrConflict
		}
		return model.GroupMember{}, fmt.Errorf("failed to create group member: %w", err)
	}
	return member, nil
}

func (r *GroupMemberRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group member: %w", err)
	}
	return rowsAffected(res)
}

func (r *GroupMemberRepository) ListByUserID(ctx context.Context, userID int64) ([]model.GroupMember, error) {
	query := `SELECT ` + memberColumns + ` FROM group_members WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

func (r *GroupMemberRepository) ListByGroupAndUser(ctx context.Context, groupID, userID int64) ([]model.GroupMember, error) {
	query := `SELECT ` + memberColumns + ` FROM group_members WHERE group_id = $1 AND user_id = $2 ORDER BY id`
	return r.list(ctx, query, groupID, userID)
}

func (r *GroupMemberRepository) list(ctx context.Context, query string, args ...any) ([]model.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []model.GroupMember
	for rows.Next() {
		var (
			m     model.GroupMember
			flags int64
		)
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.InviteDateTime, &flags); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		m.Flags = model.GroupMemberFlags(flags)
		m.InviteDateTime = m.InviteDateTime.UTC()
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}
