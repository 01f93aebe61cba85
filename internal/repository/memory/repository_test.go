package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/licensekeeper/internal/model"
)

func TestEmailRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewEmailRepository()

	_, err := repo.Create(ctx, model.EmailAddress{UserID: 1, Address: "Alice@Example.com", Verified: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.EmailAddress{UserID: 2, Address: "alice@example.com"})
	require.NoError(t, err)

	like, err := repo.ListByAddress(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Len(t, like, 2)

	verified, err := repo.ListVerifiedByAddress(ctx, "Alice@Example.com")
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, int64(1), verified[0].UserID)

	exists, err := repo.ExistsAddress(ctx, "alice@EXAMPLE.com")
	require.NoError(t, err)
	assert.True(t, exists)

	byUser, err := repo.ListByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestGroupMemberRepository_Unique(t *testing.T) {
	ctx := context.Background()
	repo := NewGroupMemberRepository()

	_, err := repo.Create(ctx, model.GroupMember{GroupID: 1, UserID: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.GroupMember{GroupID: 1, UserID: 1})
	assert.ErrorIs(t, err, model.ErrConflict)
	_, err = repo.Create(ctx, model.GroupMember{GroupID: 2, UserID: 1})
	require.NoError(t, err)

	memberships, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, memberships, 2)
}

func TestLicenseRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := NewLicenseRepository()

	_, _ = repo.Create(ctx, model.License{SoftwareID: 1, UserID: 5})
	_, _ = repo.Create(ctx, model.License{SoftwareID: 1, GroupID: 9})
	_, _ = repo.Create(ctx, model.License{SoftwareID: 2, UserID: 5})

	byUser, err := repo.ListBySoftwareAndUser(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	byGroup, err := repo.ListBySoftwareAndGroup(ctx, 1, 9)
	require.NoError(t, err)
	assert.Len(t, byGroup, 1)

	all, err := repo.ListByUserID(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSlotRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository()
	now := time.Now()

	_, _ = repo.Create(ctx, model.UserSessionLicense{LicenseID: 1, Expiration: now.Add(-time.Minute)})
	_, _ = repo.Create(ctx, model.UserSessionLicense{LicenseID: 1, Expiration: now.Add(time.Minute)})

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.ListByLicenseID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].Expiration.After(now))
}

func TestSessionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	s, err := repo.Create(ctx, model.UserSession{UserID: 1, Source: "127.0.0.1", UserAgent: "ua"})
	require.NoError(t, err)
	assert.Positive(t, s.ID)

	s.Flags = model.UserSessionIsLocalhost
	require.NoError(t, repo.Update(ctx, s))
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserSessionIsLocalhost, got.Flags)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
