// Package random provides the random values used for salts, avatars and
// verification tokens, drawn from an injectable byte source.
package random

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Source draws random values from an underlying reader.
type Source struct {
	r io.Reader
}

// New returns a Source reading from r.
func New(r io.Reader) *Source {
	return &Source{r: r}
}

// Default returns a Source backed by crypto/rand.
func Default() *Source {
	return New(rand.Reader)
}

// Read implements io.Reader.
func (s *Source) Read(p []byte) (int, error) {
	return io.ReadFull(s.r, p)
}

// Bytes returns n random bytes.
func (s *Source) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(s.r, b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// Int63 returns a non-negative random int64.
func (s *Source) Int63() (int64, error) {
	b, err := s.Bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b) &^ (1 << 63)), nil
}

// Color returns an opaque ARGB color.
func (s *Source) Color() (uint32, error) {
	b, err := s.Bytes(4)
	if err != nil {
		return 0, err
	}
	return 0xFF000000 | (binary.BigEndian.Uint32(b) & 0x00FFFFFF), nil
}

// Token returns a URL-safe token encoding 16 random bytes.
func (s *Source) Token() (string, error) {
	id, err := uuid.NewRandomFromReader(s.r)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(id[:]), nil
}
