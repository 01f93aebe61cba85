// Package password binds plaintext passwords to salted PBKDF2 hashes.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/dtroode/licensekeeper/internal/pbkdf2"
)

const (
	DefaultSaltLength = 32
	DefaultKeyLength  = 64
)

// ErrMismatch is returned by ChangePassword when the old password does not verify.
var ErrMismatch = errors.New("password does not match")

// Credential is a salt and the hash derived from it.
// A hash is only meaningful together with the salt it was derived from.
type Credential struct {
	Salt         []byte
	PasswordHash []byte
}

// HasPassword reports whether a password hash is stored.
func (c Credential) HasPassword() bool {
	return len(c.Salt) > 0 && len(c.PasswordHash) > 0
}

// Config holds hashing parameters.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// Hasher derives and verifies credentials.
type Hasher struct {
	cfg  Config
	rand io.Reader
}

// NewHasher returns a Hasher. Zero config fields fall back to defaults.
func NewHasher(cfg Config, rand io.Reader) *Hasher {
	if cfg.Iterations == 0 {
		cfg.Iterations = pbkdf2.DefaultIterations
	}
	if cfg.SaltLength == 0 {
		cfg.SaltLength = DefaultSaltLength
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = DefaultKeyLength
	}
	return &Hasher{cfg: cfg, rand: rand}
}

// SetRandomSalt replaces the salt and drops any hash derived from the old one.
func (h *Hasher) SetRandomSalt(c *Credential) error {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	c.Salt = salt
	c.PasswordHash = nil
	return nil
}

// SetPassword derives a hash for plaintext, creating a salt if none exists.
func (h *Hasher) SetPassword(c *Credential, plaintext string) error {
	if len(c.Salt) == 0 {
		if err := h.SetRandomSalt(c); err != nil {
			return err
		}
	}

	hash, err := h.derive(c.Salt, plaintext)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

// TestPassword reports whether plaintext matches the stored hash.
func (h *Hasher) TestPassword(c Credential, plaintext string) bool {
	if !c.HasPassword() {
		return false
	}

	hash, err := h.derive(c.Salt, plaintext)
	if err != nil {
		return false
	}
	if len(hash) != len(c.PasswordHash) {
		return false
	}
	return subtle.ConstantTimeCompare(hash, c.PasswordHash) == 1
}

// ChangePassword sets newPassword if oldPassword verifies.
func (h *Hasher) ChangePassword(c *Credential, oldPassword, newPassword string) error {
	if !h.TestPassword(*c, oldPassword) {
		return ErrMismatch
	}
	return h.SetPassword(c, newPassword)
}

func (h *Hasher) derive(salt []byte, plaintext string) ([]byte, error) {
	d := pbkdf2.NewSHA512([]byte(plaintext), salt, h.cfg.Iterations)
	hash, err := d.GetBytes(h.cfg.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive password hash: %w", err)
	}
	return hash, nil
}
