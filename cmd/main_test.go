package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/licensekeeper/internal/config"
	"github.com/dtroode/licensekeeper/internal/otp"
)

func TestOpenStores_Memory(t *testing.T) {
	st, err := openStores(context.Background(), &config.Config{Storage: config.Storage{Backend: config.BackendMemory}})
	require.NoError(t, err)

	assert.NotNil(t, st.users)
	assert.NotNil(t, st.emails)
	assert.NotNil(t, st.licenses)
	assert.NotNil(t, st.slots)
	assert.NotNil(t, st.members)
	assert.NotNil(t, st.sessions)
	assert.NoError(t, st.close())
}

func TestOpenUsedCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("memory when no redis address", func(t *testing.T) {
		used, closeFn, err := openUsedCodes(ctx, &config.Config{})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &otp.MemoryUsedCodes{}, used)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		used, closeFn, err := openUsedCodes(ctx, &config.Config{Redis: config.Redis{Addr: mr.Addr()}})
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &otp.RedisUsedCodes{}, used)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := openUsedCodes(ctx, &config.Config{Redis: config.Redis{Addr: addr}})
		assert.Error(t, err)
	})
}

func TestProvisionOTP_WritesQRCode(t *testing.T) {
	verifier := otp.NewVerifier(otp.Config{Interval: 30, DriftPast: 1, DriftFuture: 1}, otp.NewMemoryUsedCodes())
	path := filepath.Join(t.TempDir(), "key.png")

	require.NoError(t, provisionOTP(verifier, "licensekeeper", "alice", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
