// Package pbkdf2 implements a streaming PBKDF2 (RFC 8018) key derivation.
//
// Output is produced block by block and buffered, so consecutive GetBytes
// calls continue one derivation stream instead of restarting it.
package pbkdf2

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

const (
	// DefaultIterations is the iteration count used when none is given.
	DefaultIterations = 1000
	// MinSaltLength is the shortest salt accepted.
	MinSaltLength = 8
)

var (
	ErrAlgorithmUnset    = errors.New("pbkdf2: hash algorithm is not set")
	ErrInvalidIterations = errors.New("pbkdf2: iteration count must be at least 1")
	ErrSaltTooShort      = fmt.Errorf("pbkdf2: salt must be at least %d bytes", MinSaltLength)
	ErrInvalidLength     = errors.New("pbkdf2: requested byte count must be at least 1")
	ErrParametersLocked  = errors.New("pbkdf2: parameters cannot change after derivation started")
)

// DeriveBytes is a PBKDF2 output stream. It is not safe for concurrent use.
type DeriveBytes struct {
	newHash    func() hash.Hash
	password   []byte
	salt       []byte
	iterations int

	prf     hash.Hash
	block   uint32
	buf     []byte
	started bool
}

// New returns a stream using HMAC over the given hash constructor.
func New(h func() hash.Hash, password, salt []byte, iterations int) *DeriveBytes {
	return &DeriveBytes{
		newHash:    h,
		password:   cloneBytes(password),
		salt:       cloneBytes(salt),
		iterations: iterations,
	}
}

// NewSHA512 returns a stream using HMAC-SHA512.
func NewSHA512(password, salt []byte, iterations int) *DeriveBytes {
	return New(sha512.New, password, salt, iterations)
}

// SetPassword replaces the password.
func (d *DeriveBytes) SetPassword(password []byte) error {
	if d.started {
		return ErrParametersLocked
	}
	d.password = cloneBytes(password)
	d.prf = nil
	return nil
}

// SetSalt replaces the salt.
func (d *DeriveBytes) SetSalt(salt []byte) error {
	if d.started {
		return ErrParametersLocked
	}
	if len(salt) < MinSaltLength {
		return ErrSaltTooShort
	}
	d.salt = cloneBytes(salt)
	return nil
}

// SetIterations replaces the iteration count.
func (d *DeriveBytes) SetIterations(iterations int) error {
	if d.started {
		return ErrParametersLocked
	}
	if iterations < 1 {
		return ErrInvalidIterations
	}
	d.iterations = iterations
	return nil
}

// Iterations returns the configured iteration count.
func (d *DeriveBytes) Iterations() int {
	return d.iterations
}

// GetBytes returns the next n bytes of the stream.
func (d *DeriveBytes) GetBytes(n int) ([]byte, error) {
	if err := d.validate(n); err != nil {
		return nil, err
	}

	if d.prf == nil {
		d.prf = hmac.New(d.newHash, d.password)
	}
	d.started = true

	for len(d.buf) < n {
		d.block++
		d.buf = append(d.buf, d.computeBlock(d.block)...)
	}

	out := make([]byte, n)
	copy(out, d.buf[:n])
	d.buf = d.buf[n:]

	return out, nil
}

// Reset drops buffered output and restarts the stream from block 1.
// Parameters become mutable again.
func (d *DeriveBytes) Reset() {
	d.buf = nil
	d.block = 0
	d.started = false
}

func (d *DeriveBytes) validate(n int) error {
	switch {
	case d.newHash == nil:
		return ErrAlgorithmUnset
	case d.iterations < 1:
		return ErrInvalidIterations
	case len(d.salt) < MinSaltLength:
		return ErrSaltTooShort
	case n < 1:
		return ErrInvalidLength
	}
	return nil
}

func (d *DeriveBytes) computeBlock(index uint32) []byte {
	var counter [4]byte
	binary.BigEndian.PutUint32(counter[:], index)

	d.prf.Reset()
	d.prf.Write(d.salt)
	d.prf.Write(counter[:])
	u := d.prf.Sum(nil)

	result := make([]byte, len(u))
	copy(result, u)

	for j := 1; j < d.iterations; j++ {
		d.prf.Reset()
		d.prf.Write(u)
		u = d.prf.Sum(u[:0])
		for k := range result {
			result[k] ^= u[k]
		}
	}

	return result
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
