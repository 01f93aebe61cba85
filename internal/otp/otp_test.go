package otp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// base32 of the ASCII secret "12345678901234567890" from RFC 6238.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetCode_RFC6238Vectors(t *testing.T) {
	v := NewVerifier(Config{}, NewMemoryUsedCodes())

	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "287082"},
		{unix: 1111111109, want: "081804"},
		{unix: 1111111111, want: "050471"},
		{unix: 1234567890, want: "005924"},
		{unix: 2000000000, want: "279037"},
		{unix: 20000000000, want: "353130"},
	}

	for _, tt := range tests {
		got, err := v.GetCode(rfcSecret, v.Step(time.Unix(tt.unix, 0)))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "unix=%d", tt.unix)
	}
}

func TestGetCode_MatchesPquerna(t *testing.T) {
	v := NewVerifier(Config{}, NewMemoryUsedCodes())
	at := time.Unix(1_700_000_000, 0)

	want, err := totp.GenerateCodeCustom(rfcSecret, at, totp.ValidateOpts{
		Period:    DefaultInterval,
		Digits:    pqotp.DigitsSix,
		Algorithm: pqotp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	got, err := v.GetCode(rfcSecret, v.Step(at))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetCode_SecretCaseInsensitive(t *testing.T) {
	v := NewVerifier(Config{}, NewMemoryUsedCodes())

	upper, err := v.GetCode(rfcSecret, 42)
	require.NoError(t, err)
	lower, err := v.GetCode("gezd gnbv gy3t qojq gezd gnbv gy3t qojq", 42)
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestGetCode_InvalidSecret(t *testing.T) {
	v := NewVerifier(Config{}, NewMemoryUsedCodes())

	_, err := v.GetCode("", 1)
	assert.ErrorIs(t, err, ErrInvalidSecret)
	_, err = v.GetCode("not base32 !!", 1)
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestCheckCode_DriftWindow(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1_700_000_010, 0)
	probe := NewVerifier(Config{}, NewMemoryUsedCodes())
	n := probe.Step(base)
	codeAtN, err := probe.GetCode(rfcSecret, n)
	require.NoError(t, err)

	tests := []struct {
		name   string
		offset int64
		want   bool
	}{
		{name: "two steps before", offset: -2, want: false},
		{name: "one step before", offset: -1, want: true},
		{name: "same step", offset: 0, want: true},
		{name: "one step after", offset: 1, want: true},
		{name: "two steps after", offset: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := base.Add(time.Duration(tt.offset*DefaultInterval) * time.Second)
			v := NewVerifier(Config{Interval: 30, DriftPast: 1, DriftFuture: 1}, NewMemoryUsedCodes(), WithClock(fixedClock(now)))

			ok, err := v.CheckCode(ctx, rfcSecret, codeAtN)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheckCode_RejectsReplay(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_010, 0)
	used := NewMemoryUsedCodes()
	v := NewVerifier(Config{DriftPast: 1, DriftFuture: 1}, used, WithClock(fixedClock(now)))

	current, err := v.CurrentCode(rfcSecret)
	require.NoError(t, err)

	ok, err := v.CheckCode(ctx, rfcSecret, current)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.CheckCode(ctx, rfcSecret, current)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, used.Len())
}

func TestCheckCode_ReplayScopedToSecret(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_010, 0)
	v := NewVerifier(Config{}, NewMemoryUsedCodes(), WithClock(fixedClock(now)))
	other := "JBSWY3DPEHPK3PXP"

	c1, err := v.CurrentCode(rfcSecret)
	require.NoError(t, err)
	c2, err := v.CurrentCode(other)
	require.NoError(t, err)

	ok, err := v.CheckCode(ctx, rfcSecret, c1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = v.CheckCode(ctx, other, c2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckCode_PurgesOutsideWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_010, 0)
	used := NewMemoryUsedCodes()
	v := NewVerifier(Config{DriftPast: 1}, used, WithClock(func() time.Time { return now }))

	current, err := v.CurrentCode(rfcSecret)
	require.NoError(t, err)
	ok, err := v.CheckCode(ctx, rfcSecret, current)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(3 * DefaultInterval * time.Second)
	_, err = v.CheckCode(ctx, rfcSecret, "000000")
	require.NoError(t, err)
	assert.Equal(t, 0, used.Len())
}

func TestPurgeUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_010, 0)
	used := NewMemoryUsedCodes()
	v := NewVerifier(Config{DriftPast: 1}, used, WithClock(func() time.Time { return now }))

	current, err := v.CurrentCode(rfcSecret)
	require.NoError(t, err)
	ok, err := v.CheckCode(ctx, rfcSecret, current)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, v.PurgeUsed(ctx))
	assert.Equal(t, 1, used.Len())

	now = now.Add(2 * DefaultInterval * time.Second)
	require.NoError(t, v.PurgeUsed(ctx))
	assert.Equal(t, 0, used.Len())
}

func TestCheckCode_MalformedCandidate(t *testing.T) {
	v := NewVerifier(Config{}, NewMemoryUsedCodes())

	for _, candidate := range []string{"", "12345", "1234567", "abcdef"} {
		ok, err := v.CheckCode(context.Background(), rfcSecret, candidate)
		require.NoError(t, err)
		assert.False(t, ok, candidate)
	}
}

func TestCheckCode_ConcurrentSingleAcceptance(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_010, 0)
	v := NewVerifier(Config{DriftPast: 1, DriftFuture: 1}, NewMemoryUsedCodes(), WithClock(fixedClock(now)))
	current, err := v.CurrentCode(rfcSecret)
	require.NoError(t, err)

	var accepted atomic.Int32
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			ok, err := v.CheckCode(ctx, rfcSecret, current)
			if ok {
				accepted.Add(1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), accepted.Load())
}

func TestGenerateKey(t *testing.T) {
	now := time.Unix(1_700_000_010, 0)
	v := NewVerifier(Config{}, NewMemoryUsedCodes(), WithClock(fixedClock(now)))

	key, err := v.GenerateKey("licensekeeper", "alice@example.com", nil)
	require.NoError(t, err)
	assert.Contains(t, key.URL(), "otpauth://totp/")
	assert.Contains(t, key.URL(), "issuer=licensekeeper")

	got, err := v.CurrentCode(key.Secret())
	require.NoError(t, err)
	want, err := totp.GenerateCodeCustom(key.Secret(), now, totp.ValidateOpts{
		Period:    DefaultInterval,
		Digits:    pqotp.DigitsSix,
		Algorithm: pqotp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	png, err := key.QRCode(128)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
