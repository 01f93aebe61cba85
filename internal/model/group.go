package model

import (
	"context"
	"time"
)

// GroupStore defines persistence operations for groups.
type GroupStore interface {
	Create(ctx context.Context, group Group) (Group, error)
	GetByID(ctx context.Context, id int64) (Group, error)
}

// GroupMemberStore defines persistence operations for group memberships.
type GroupMemberStore interface {
	Create(ctx context.Context, member GroupMember) (GroupMember, error)
	Delete(ctx context.Context, id int64) error
	ListByUserID(ctx context.Context, userID int64) ([]GroupMember, error)
	ListByGroupAndUser(ctx context.Context, groupID, userID int64) ([]GroupMember, error)
}

type Group struct {
	ID       int64
	AvatarID int64
	Color    uint32
	Name     string
}

// GroupMemberFlags describe a membership.
type GroupMemberFlags uint32

const (
	GroupMemberHasJoined GroupMemberFlags = 1
	GroupMemberIsAdmin   GroupMemberFlags = 0xFFFF
)

// GroupMember binds a user to a group. (GroupID, UserID) is unique.
type GroupMember struct {
	ID             int64
	GroupID        int64
	UserID         int64
	InviteDateTime time.Time
	Flags          GroupMemberFlags
}
