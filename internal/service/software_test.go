package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/licensekeeper/internal/model"
	"github.com/dtroode/licensekeeper/internal/repository/memory"
	"github.com/dtroode/licensekeeper/internal/testutil"
)

func TestSoftware(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := NewSoftware(store.Software, newTestHasher(), testutil.MakeNoopLogger())

	_, err := s.Register(ctx, SoftwareParams{})
	assert.ErrorIs(t, err, model.ErrValidation)

	sw, err := s.Register(ctx, SoftwareParams{Name: "editor", Version: "2.1", ProgramID: "ed", Password: "backend-key"})
	require.NoError(t, err)
	assert.True(t, sw.HasPassword())

	got, err := s.Authenticate(ctx, sw.ID, "backend-key")
	require.NoError(t, err)
	assert.Equal(t, "editor", got.Name)

	_, err = s.Authenticate(ctx, sw.ID, "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, 404, "backend-key")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	free, err := s.Register(ctx, SoftwareParams{Name: "viewer", LicenseFree: true})
	require.NoError(t, err)
	assert.False(t, free.HasPassword())

	_, err = s.Authenticate(ctx, free.ID, "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}
