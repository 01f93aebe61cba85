package otp

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Key is a provisioned shared secret together with its otpauth URL.
type Key struct {
	key *pqotp.Key
}

// Secret returns the base32 secret.
func (k Key) Secret() string {
	return k.key.Secret()
}

// URL returns the otpauth:// URL for authenticator apps.
func (k Key) URL() string {
	return k.key.URL()
}

// GenerateKey creates a new secret for account, compatible with Verifier.
func (v *Verifier) GenerateKey(issuer, account string, rand io.Reader) (Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(v.cfg.Interval),
		Digits:      pqotp.DigitsSix,
		Algorithm:   pqotp.AlgorithmSHA1,
		Rand:        rand,
	})
	if err != nil {
		return Key{}, fmt.Errorf("failed to generate otp key: %w", err)
	}
	return Key{key: key}, nil
}

// QRCode renders the key URL as a size x size PNG.
func (k Key) QRCode(size int) ([]byte, error) {
	img, err := k.key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return buf.Bytes(), nil
}
