// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
)

const (
	testSecret = "unit-test-signing-secret-0123456789abcdef"
	testIssuer = "medora.health"
)

// memoryRevocations is an in-memory RevocationRepository for unit tests.
type memoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time // tokenID -> eviction deadline
	failing bool                 // simulates an unreachable store
	puts    int
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{entries: map[string]time.Time{}}
}

func (m *memoryRevocations) Put(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("connection refused")
	}
	m.entries[tokenID] = time.Now().Add(ttl)
	m.puts++
	return nil
}

func (m *memoryRevocations) Exists(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return false, errors.New("connection refused")
	}
	deadline, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	// Honor TTL eviction the way Redis would.
	if time.Now().After(deadline) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func newTestTokenService(t *testing.T, revocations auth.RevocationRepository, lifetime time.Duration) *auth.TokenService {
	t.Helper()
	codec, err := sec.NewTokenCodec(testSecret, testIssuer)
	require.NoError(t, err)
	return auth.NewTokenService(codec, revocations, lifetime)
}

func testPrincipal(role sec.Role) *auth.Principal {
	return &auth.Principal{
		ID:       "0191e4a0-0000-7000-8000-000000000001",
		Email:    "dr.house@medora.health",
		FullName: "Gregory House",
		Role:     role,
	}
}

/*
TestTokenService_IssueVerify_RoundTrip verifies that a freshly issued token
verifies successfully and carries the principal's identity, role, and
effective permissions.
*/
func TestTokenService_IssueVerify_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Minute)
	principal := testPrincipal(sec.RoleDoctor)

	token, issued, err := service.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, issued.ID, "every token must carry a unique identifier")

	claims, err := service.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, principal.ID, claims.PrincipalID)
	assert.Equal(t, principal.ID, claims.Subject)
	assert.Equal(t, sec.RoleDoctor, claims.PrincipalRole())
	assert.Equal(t, testIssuer, claims.Issuer)

	// Role defaults flow into the token when no override is stored.
	assert.ElementsMatch(t,
		sec.PermissionStrings(sec.Defaults(sec.RoleDoctor)),
		claims.Permissions,
	)
}

/*
TestTokenService_Issue_PermissionOverride verifies that a stored override set
replaces the role defaults entirely.
*/
func TestTokenService_Issue_PermissionOverride(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Minute)

	principal := testPrincipal(sec.RoleAdmin)
	principal.Permissions = []string{string(sec.PermDoctorList)}

	token, _, err := service.Issue(principal)
	require.NoError(t, err)

	claims, err := service.Verify(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, []string{string(sec.PermDoctorList)}, claims.Permissions)
	assert.True(t, claims.HasPermission(sec.PermDoctorList))
	assert.False(t, claims.HasPermission(sec.PermAdminCreate), "override must replace, not extend, defaults")
}

/*
TestTokenService_Verify_UniqueIdentifiers verifies that two tokens issued for
the same principal carry distinct identifiers, so revoking one never affects
the other.
*/
func TestTokenService_Verify_UniqueIdentifiers(t *testing.T) {
	store := newMemoryRevocations()
	service := newTestTokenService(t, store, time.Minute)
	principal := testPrincipal(sec.RolePatient)

	tokenA, claimsA, err := service.Issue(principal)
	require.NoError(t, err)
	tokenB, claimsB, err := service.Issue(principal)
	require.NoError(t, err)

	assert.NotEqual(t, claimsA.ID, claimsB.ID)

	// Revoke A; B must remain valid.
	require.NoError(t, service.Revoke(context.Background(), tokenA))

	_, err = service.Verify(context.Background(), tokenA)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	_, err = service.Verify(context.Background(), tokenB)
	assert.NoError(t, err)
}

/*
TestTokenService_Verify_WrongSecret verifies that a token signed with a
different secret is rejected as invalid, not expired.
*/
func TestTokenService_Verify_WrongSecret(t *testing.T) {
	serviceA := newTestTokenService(t, newMemoryRevocations(), time.Minute)

	otherCodec, err := sec.NewTokenCodec("a-completely-different-secret-value-123456", testIssuer)
	require.NoError(t, err)
	serviceB := auth.NewTokenService(otherCodec, newMemoryRevocations(), time.Minute)

	token, _, err := serviceB.Issue(testPrincipal(sec.RolePatient))
	require.NoError(t, err)

	_, err = serviceA.Verify(context.Background(), token)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_Verify_Garbage verifies that structurally broken input is
rejected without touching the revocation store.
*/
func TestTokenService_Verify_Garbage(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Minute)

	for _, tokenStr := range []string{"", "not-a-token", "aaaa.bbbb.cccc"} {
		_, err := service.Verify(context.Background(), tokenStr)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid, "input %q", tokenStr)
	}
}

/*
TestTokenService_Verify_Expired verifies the full expiry scenario: a token
issued with a one-second lifetime verifies immediately, then reports expired
— not invalid — once its lifetime elapses.
*/
func TestTokenService_Verify_Expired(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Second)

	token, _, err := service.Issue(testPrincipal(sec.RolePatient))
	require.NoError(t, err)

	_, err = service.Verify(context.Background(), token)
	require.NoError(t, err, "token must be valid within its lifetime")

	time.Sleep(1500 * time.Millisecond)

	_, err = service.Verify(context.Background(), token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_Revoke verifies the revocation lifecycle: a revoked token is
rejected with the revoked error, and re-revoking is a harmless no-op.
*/
func TestTokenService_Revoke(t *testing.T) {
	store := newMemoryRevocations()
	service := newTestTokenService(t, store, time.Minute)

	token, claims, err := service.Issue(testPrincipal(sec.RoleAdmin))
	require.NoError(t, err)

	// 1. Revoke and verify rejection.
	require.NoError(t, service.Revoke(context.Background(), token))

	_, err = service.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	// 2. Idempotency: revoking again succeeds silently.
	assert.NoError(t, service.Revoke(context.Background(), token))

	// 3. Entry is keyed by the token identifier with a bounded TTL.
	revoked, err := store.Exists(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

/*
TestTokenService_Revoke_ExpiredToken verifies that revoking an expired token
is a successful no-op: nothing is written because expiry already rejects it.
*/
func TestTokenService_Revoke_ExpiredToken(t *testing.T) {
	store := newMemoryRevocations()
	service := newTestTokenService(t, store, time.Second)

	token, _, err := service.Issue(testPrincipal(sec.RolePatient))
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	assert.NoError(t, service.Revoke(context.Background(), token))
	assert.Zero(t, store.puts, "expired tokens must not create revocation entries")
}

/*
TestTokenService_Revoke_InvalidToken verifies that a forged token cannot be
revoked.
*/
func TestTokenService_Revoke_InvalidToken(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Minute)

	err := service.Revoke(context.Background(), "garbage-token")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_Verify_FailClosed verifies that an unreachable revocation
store rejects tokens instead of accepting them unchecked.
*/
func TestTokenService_Verify_FailClosed(t *testing.T) {
	store := newMemoryRevocations()
	service := newTestTokenService(t, store, time.Minute)

	token, _, err := service.Issue(testPrincipal(sec.RolePatient))
	require.NoError(t, err)

	store.failing = true

	_, err = service.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrRevocationUnavailable)

	// Store recovers: the token is accepted again.
	store.failing = false
	_, err = service.Verify(context.Background(), token)
	assert.NoError(t, err)
}

/*
TestTokenService_Refresh verifies rotation: the replacement token carries the
same subject, role, and permissions with a strictly later expiry and a new
identifier, and the old token is dead after the exchange.
*/
func TestTokenService_Refresh(t *testing.T) {
	store := newMemoryRevocations()
	service := newTestTokenService(t, store, time.Minute)
	principal := testPrincipal(sec.RoleDoctor)

	oldToken, oldClaims, err := service.Issue(principal)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond) // Ensure a measurably later expiry.

	newToken, newClaims, err := service.Refresh(context.Background(), oldToken)
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	// Identity is preserved, the identifier is not.
	assert.Equal(t, oldClaims.PrincipalID, newClaims.PrincipalID)
	assert.Equal(t, oldClaims.Role, newClaims.Role)
	assert.ElementsMatch(t, oldClaims.Permissions, newClaims.Permissions)
	assert.NotEqual(t, oldClaims.ID, newClaims.ID)
	assert.True(t, newClaims.ExpiresAt.Time.After(oldClaims.ExpiresAt.Time))

	// The rotated-out token is revoked; the new one verifies.
	_, err = service.Verify(context.Background(), oldToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	_, err = service.Verify(context.Background(), newToken)
	assert.NoError(t, err)
}

/*
TestTokenService_Refresh_RevokedToken verifies that a revoked token cannot be
used to obtain a replacement.
*/
func TestTokenService_Refresh_RevokedToken(t *testing.T) {
	service := newTestTokenService(t, newMemoryRevocations(), time.Minute)

	token, _, err := service.Issue(testPrincipal(sec.RolePatient))
	require.NoError(t, err)
	require.NoError(t, service.Revoke(context.Background(), token))

	_, _, err = service.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}
