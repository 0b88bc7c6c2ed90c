// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/pkg/uuid"
)

// # Token Errors

var (
	// ErrTokenRevoked reports a structurally valid, unexpired token whose
	// identifier has been revoked.
	ErrTokenRevoked = errors.New("auth: token has been revoked")

	// ErrRevocationUnavailable reports that the revocation store could not be
	// reached. Verification fails closed on this error: a token that cannot be
	// checked is never accepted.
	ErrRevocationUnavailable = errors.New("auth: revocation store unavailable")
)

// # Token Service

/*
TokenService is the sole authority for the session-token lifecycle.

Every token it mints carries a unique identifier (jti), and revocation is
tracked by that identifier in a shared store with a TTL equal to the token's
remaining lifetime, so revocation entries clean themselves up exactly when the
token would have expired anyway.
*/
type TokenService struct {
	codec       *sec.TokenCodec
	revocations RevocationRepository
	lifetime    time.Duration
}

/*
NewTokenService creates the token lifecycle manager.

Parameters:
  - codec: The signing/parsing codec (shared secret, issuer).
  - revocations: The revocation store. Must be shared by all verifying instances.
  - lifetime: Access token validity window. Zero or negative falls back to DefaultAccessTokenTTL.
*/
func NewTokenService(codec *sec.TokenCodec, revocations RevocationRepository, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = DefaultAccessTokenTTL
	}
	return &TokenService{
		codec:       codec,
		revocations: revocations,
		lifetime:    lifetime,
	}
}

// Lifetime returns the configured access-token validity window.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

/*
Issue mints a signed access token for the given principal.

The token embeds the principal's identifier, role, and effective permission
set, so authorization decisions during its lifetime need no database access.

Returns:
  - string: The signed compact token.
  - *sec.AuthClaims: The claims embedded in it.
  - error: Signing failure only.
*/
func (s *TokenService) Issue(principal *Principal) (string, *sec.AuthClaims, error) {
	claims := s.mint(principal.ID, principal.Role, principal.EffectivePermissions())

	token, err := s.codec.Sign(claims)
	if err != nil {
		return "", nil, fmt.Errorf("auth_token_issue_failed: %w", err)
	}
	return token, claims, nil
}

/*
Verify checks a token end to end: signature, expiry, and revocation status.

Parameters:
  - ctx: Request context, bounds the revocation store lookup.
  - tokenStr: The compact token as presented by the client.

Returns:
  - *sec.AuthClaims: The embedded claims on success.
  - error: sec.ErrTokenExpired, sec.ErrTokenInvalid, ErrTokenRevoked, or
    ErrRevocationUnavailable when the store cannot be reached (fail closed).
*/
func (s *TokenService) Verify(ctx context.Context, tokenStr string) (*sec.AuthClaims, error) {
	// 1. Structural verification: signature, issuer, expiry.
	claims, err := s.codec.Parse(tokenStr)
	if err != nil {
		return nil, err
	}

	// 2. Revocation check. An unreachable store rejects the token rather than
	// letting a possibly revoked credential through.
	revoked, err := s.revocations.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

/*
Refresh exchanges a still-valid token for a fresh one carrying the same
subject, role, and permissions but a new identifier and a later expiry.

The old token is revoked as part of the exchange, so each token can be
refreshed at most once.

Returns:
  - string: The new compact token.
  - *sec.AuthClaims: Its claims.
  - error: Any Verify error for the old token, ErrRevocationUnavailable if the
    old token could not be retired, or a signing failure.
*/
func (s *TokenService) Refresh(ctx context.Context, tokenStr string) (string, *sec.AuthClaims, error) {
	old, err := s.Verify(ctx, tokenStr)
	if err != nil {
		return "", nil, err
	}

	// Retire the old token before handing out its replacement. If the store
	// rejects the write we abort: issuing a second live token for the same
	// session without retiring the first would defeat rotation.
	ttl := old.RemainingLifetime(time.Now())
	if ttl > 0 {
		if err := s.revocations.Put(ctx, old.ID, ttl); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
		}
	}

	claims := s.mint(old.PrincipalID, old.PrincipalRole(), sec.PermissionsFromStrings(old.Permissions))

	token, err := s.codec.Sign(claims)
	if err != nil {
		return "", nil, fmt.Errorf("auth_token_refresh_failed: %w", err)
	}
	return token, claims, nil
}

/*
Revoke invalidates a token before its natural expiry.

The revocation entry lives exactly as long as the token had left, after which
the normal expiry check takes over. Revoking an already revoked or already
expired token is a successful no-op, so the operation is idempotent.

Returns:
  - error: sec.ErrTokenInvalid for a malformed or forged token,
    ErrRevocationUnavailable if the store write failed.
*/
func (s *TokenService) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := s.codec.Parse(tokenStr)
	if err != nil {
		// Expired tokens are already unusable; nothing to record.
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil
		}
		return err
	}

	ttl := claims.RemainingLifetime(time.Now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Put(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

// mint builds a fresh claim set with a new unique identifier.
func (s *TokenService) mint(principalID string, role sec.Role, permissions []sec.Permission) *sec.AuthClaims {
	now := time.Now()
	return &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   principalID,
			Issuer:    s.codec.Issuer(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		PrincipalID: principalID,
		Role:        string(role),
		Permissions: sec.PermissionStrings(permissions),
	}
}
