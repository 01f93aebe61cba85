package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/licensekeeper/internal/password"
)

func TestUserSession_Validity(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		session       UserSession
		expired       bool
		valid         bool
		authenticated bool
	}{
		{
			name:          "authenticated",
			session:       UserSession{UserID: 7, Source: "10.0.0.1", UserAgent: "cli/1.0", Expiration: now.Add(time.Hour)},
			valid:         true,
			authenticated: true,
		},
		{
			name:    "anonymous",
			session: UserSession{Source: "10.0.0.1", UserAgent: "cli/1.0", Expiration: now.Add(time.Hour)},
			valid:   true,
		},
		{
			name:    "missing user agent",
			session: UserSession{UserID: 7, Source: "10.0.0.1", Expiration: now.Add(time.Hour)},
		},
		{
			name:    "missing source",
			session: UserSession{UserID: 7, UserAgent: "cli/1.0", Expiration: now.Add(time.Hour)},
		},
		{
			name:    "expired",
			session: UserSession{UserID: 7, Source: "10.0.0.1", UserAgent: "cli/1.0", Expiration: now.Add(-time.Second)},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.session.IsExpired(now))
			assert.Equal(t, tt.valid, tt.session.IsValid(now))
			assert.Equal(t, tt.authenticated, tt.session.IsAuthenticated(now))
		})
	}
}

func TestLicense_IsValid(t *testing.T) {
	now := time.Now()

	assert.True(t, License{ValidTill: now.Add(time.Minute)}.IsValid(now))
	assert.False(t, License{ValidTill: now}.IsValid(now))
	assert.False(t, License{ValidTill: now.Add(-time.Minute)}.IsValid(now))
}

func TestUser_ClearPrivateFields(t *testing.T) {
	u := User{
		ID:         3,
		NickName:   "alice",
		Credential: password.Credential{Salt: []byte("salt"), PasswordHash: []byte("hash")},
	}

	cleared := u.ClearPrivateFields()

	assert.Equal(t, "alice", cleared.NickName)
	assert.Nil(t, cleared.Salt)
	assert.Nil(t, cleared.PasswordHash)
	assert.NotNil(t, u.Salt)
}

func TestUserState_String(t *testing.T) {
	assert.Equal(t, "new", UserStateNew.String())
	assert.Equal(t, "password_reset_requested", UserStatePasswordResetRequested.String())
	assert.Equal(t, "deleted", UserStateDeleted.String())
	assert.Equal(t, "unknown", UserState(42).String())
}
