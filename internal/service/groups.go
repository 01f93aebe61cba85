package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/licensekeeper/internal/logger"
	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/random"
)

// Groups manages groups and their members.
type Groups struct {
	groupStore  model.GroupStore
	memberStore model.GroupMemberStore
	random      *random.Source
	logger      *logger.Logger
	now         func() time.Time
}

func NewGroups(groupStore model.GroupStore, memberStore model.GroupMemberStore, random *random.Source, logger *logger.Logger) *Groups {
	return &Groups{
		groupStore:  groupStore,
		memberStore: memberStore,
		random:      random,
		logger:      logger,
		now:         utcNow,
	}
}

func (g *Groups) CreateGroup(ctx context.Context, name string) (model.Group, error) {
	if err := validateName(name, model.MaxNickNameLength, "group name"); err != nil {
		return model.Group{}, err
	}

	avatarID, err := g.random.Int63()
	if err != nil {
		return model.Group{}, err
	}
	color, err := g.random.Color()
	if err != nil {
		return model.Group{}, err
	}

	group, err := g.groupStore.Create(ctx, model.Group{Name: name, AvatarID: avatarID, Color: color})
	if err != nil {
		return model.Group{}, fmt.Errorf("failed to create group: %w", err)
	}

	g.logger.Info("Groups service: group created", "group_id", group.ID, "name", name)

	return group, nil
}

// AddMember adds userID to groupID. It fails with model.ErrConflict when
// the user is already a member.
func (g *Groups) AddMember(ctx context.Context, groupID, userID int64, flags model.GroupMemberFlags) (model.GroupMember, error) {
	if _, err := g.groupStore.GetByID(ctx, groupID); err != nil {
		return model.GroupMember{}, fmt.Errorf("failed to get group: %w", err)
	}

	member, err := g.memberStore.Create(ctx, model.GroupMember{
		GroupID:        groupID,
		UserID:         userID,
		InviteDateTime: g.now(),
		Flags:          flags,
	})
	if errors.Is(err, model.ErrConflict) {
		return model.GroupMember{}, fmt.Errorf("%w: user %d is already a member of group %d", model.ErrConflict, userID, groupID)
	}
	if err != nil {
		return model.GroupMember{}, fmt.Errorf("failed to create group member: %w", err)
	}
	return member, nil
}

// GetGroupMembership returns the membership of userID in groupID, or
// model.ErrNotFound unless exactly one exists.
func (g *Groups) GetGroupMembership(ctx context.Context, userID, groupID int64) (model.GroupMember, error) {
	members, err := g.memberStore.ListByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return model.GroupMember{}, fmt.Errorf("failed to list group members: %w", err)
	}
	if len(members) != 1 {
		return model.GroupMember{}, model.ErrNotFound
	}
	return members[0], nil
}

// GetUserGroups returns the distinct ids of the groups userID belongs to.
func (g *Groups) GetUserGroups(ctx context.Context, userID int64) ([]int64, error) {
	return userGroups(ctx, g.memberStore, userID)
}

func userGroups(ctx context.Context, store model.GroupMemberStore, userID int64) ([]int64, error) {
	members, err := store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group memberships: %w", err)
	}

	seen := make(map[int64]struct{}, len(members))
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m.GroupID]; ok {
			continue
		}
		seen[m.GroupID] = struct{}{}
		ids = append(ids, m.GroupID)
	}
	return ids, nil
}
