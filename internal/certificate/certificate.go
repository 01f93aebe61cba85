// Package certificate signs and verifies license certificates.
package certificate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/licensekeeper/internal/model"
)

const issuerName = "licensekeeper"

// Claims are the license terms carried by a certificate.
type Claims struct {
	jwt.RegisteredClaims
	LicenseID   int64  `json:"lic"`
	SoftwareID  int64  `json:"sw"`
	UserID      int64  `json:"uid,omitempty"`
	GroupID     int64  `json:"gid,omitempty"`
	MaxSessions int    `json:"max_sessions"`
	MaxUsers    int    `json:"max_users"`
	Components  string `json:"components,omitempty"`
}

// Issuer signs certificates with a symmetric HMAC key.
type Issuer struct {
	secretKey string
	now       func() time.Time
}

// NewIssuer creates an Issuer with the provided secret key.
func NewIssuer(secretKey string) *Issuer {
	return &Issuer{secretKey: secretKey, now: time.Now}
}

// Issue creates a certificate for license valid until its ValidTill.
func (i *Issuer) Issue(license model.License) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			Subject:   strconv.FormatInt(license.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(license.ValidTill),
		},
		LicenseID:   license.ID,
		SoftwareID:  license.SoftwareID,
		UserID:      license.UserID,
		GroupID:     license.GroupID,
		MaxSessions: license.MaxSessions,
		MaxUsers:    license.MaxUsers,
		Components:  license.Components,
	})

	tokenString, err := token.SignedString([]byte(i.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign license certificate: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and expiry of a certificate and returns its claims.
func (i *Issuer) Verify(tokenString string) (Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(i.secretKey), nil
	}, jwt.WithIssuer(issuerName), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Claims{}, fmt.Errorf("failed to parse license certificate: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("license certificate is invalid")
	}
	return *claims, nil
}
