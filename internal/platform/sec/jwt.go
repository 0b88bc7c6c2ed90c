// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, the
// role/permission model) from the domain logic. It acts as an Infrastructure
// service injected into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Codec Errors

var (
	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for any other verification failure: bad
	// signature, malformed structure, or an unexpected signing algorithm.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the principal's ID, role, and effective permissions directly
// inside the JWT, the authorization guard can make every role and permission
// decision WITHOUT querying the database on each API request. The only
// remote lookup per request is the revocation check.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	PrincipalID string   `json:"pid"`
	Role        string   `json:"rol"`
	Permissions []string `json:"prm,omitempty"`
}

// PrincipalRole returns the typed role variant carried by the claims.
func (c *AuthClaims) PrincipalRole() Role {
	return Role(c.Role)
}

// HasPermission reports whether the claims carry the required permission.
// The override role passes unconditionally.
func (c *AuthClaims) HasPermission(perm Permission) bool {
	if c.PrincipalRole().IsOverride() {
		return true
	}
	return slices.Contains(c.Permissions, string(perm))
}

// RemainingLifetime returns the duration until the token's natural expiry.
// It returns zero (never negative) for already-expired tokens.
func (c *AuthClaims) RemainingLifetime(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := c.ExpiresAt.Time.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// # Token Codec

// minSecretLength guards against weak HMAC keys slipping in via misconfiguration.
const minSecretLength = 32

// TokenCodec signs and verifies JWT tokens using HS256 with a single shared secret.
//
// # Key Management
//
// The secret is injected once at construction and never rotated at runtime —
// rotation would silently invalidate every outstanding token. There is no
// package-level key state.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a new TokenCodec.
// It rejects secrets shorter than 32 bytes.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("sec: signing secret must be at least %d bytes", minSecretLength)
	}

	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issuer returns the 'iss' claim value this codec stamps into tokens.
func (codec *TokenCodec) Issuer() string {
	return codec.issuer
}

// Sign produces a compact signed JWT string from the given claims.
func (codec *TokenCodec) Sign(claims *AuthClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Parse checks the signature and temporal validity of a JWT string.
//
// # Failure Modes
//
//   - [ErrTokenExpired] when the signature is valid but the token is past expiry.
//   - [ErrTokenInvalid] for malformed input, signature mismatch, or an
//     unexpected signing algorithm.
//
// Callers must not surface the distinction to API clients; it exists for
// diagnostics and for revocation bookkeeping only.
func (codec *TokenCodec) Parse(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
