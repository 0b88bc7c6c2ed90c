// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

// memoryPrincipals is an in-memory PrincipalRepository for unit tests.
type memoryPrincipals struct {
	byID    map[string]*auth.Principal
	byEmail map[string]*auth.Principal
}

func newMemoryPrincipals() *memoryPrincipals {
	return &memoryPrincipals{
		byID:    map[string]*auth.Principal{},
		byEmail: map[string]*auth.Principal{},
	}
}

func (m *memoryPrincipals) Create(_ context.Context, principal *auth.Principal) error {
	if _, exists := m.byEmail[principal.Email]; exists {
		return dberr.ErrDuplicate
	}
	principal.CreatedAt = time.Now()
	principal.UpdatedAt = principal.CreatedAt
	m.byID[principal.ID] = principal
	m.byEmail[principal.Email] = principal
	return nil
}

func (m *memoryPrincipals) FindByID(_ context.Context, id string) (*auth.Principal, error) {
	principal, ok := m.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return principal, nil
}

func (m *memoryPrincipals) FindByEmail(_ context.Context, email string) (*auth.Principal, error) {
	principal, ok := m.byEmail[email]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return principal, nil
}

func (m *memoryPrincipals) ListByRole(_ context.Context, role string, _ pagination.Params) ([]*auth.Principal, int64, error) {
	var out []*auth.Principal
	for _, principal := range m.byID {
		if string(principal.Role) == role {
			out = append(out, principal)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryPrincipals) Update(_ context.Context, principal *auth.Principal) error {
	m.byID[principal.ID] = principal
	m.byEmail[principal.Email] = principal
	return nil
}

func (m *memoryPrincipals) UpdatePassword(_ context.Context, id, passwordHash string) error {
	principal, ok := m.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	principal.PasswordHash = passwordHash
	return nil
}

func (m *memoryPrincipals) SetApproved(_ context.Context, id string, approved bool) error {
	principal, ok := m.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	principal.IsApproved = approved
	return nil
}

func (m *memoryPrincipals) SetPermissions(_ context.Context, id string, permissions []string) error {
	principal, ok := m.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	principal.Permissions = permissions
	return nil
}

func (m *memoryPrincipals) Delete(_ context.Context, id string) error {
	principal, ok := m.byID[id]
	if !ok {
		return dberr.ErrNotFound
	}
	delete(m.byEmail, principal.Email)
	delete(m.byID, id)
	return nil
}

func newTestService(t *testing.T) (*auth.Service, *memoryPrincipals, *memoryRevocations) {
	t.Helper()
	principals := newMemoryPrincipals()
	revocations := newMemoryRevocations()
	tokens := newTestTokenService(t, revocations, time.Minute)
	return auth.NewService(principals, tokens), principals, revocations
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.HTTPStatus
}

/*
TestService_RegisterPatient verifies patient enrollment: the account is active
immediately, the password is stored hashed, and the email is normalized.
*/
func TestService_RegisterPatient(t *testing.T) {
	service, principals, _ := newTestService(t)

	principal, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "  Jane.Doe@Medora.Health ",
		Password: "correct-horse-battery",
		FullName: "Jane Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@medora.health", principal.Email)
	assert.Equal(t, sec.RolePatient, principal.Role)
	assert.True(t, principal.IsApproved)
	assert.NotEmpty(t, principal.ID)

	stored, err := principals.FindByEmail(context.Background(), "jane.doe@medora.health")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", stored.PasswordHash, "password must never be stored in plain text")
	assert.True(t, sec.CheckPasswordHash("correct-horse-battery", stored.PasswordHash))
}

/*
TestService_Register_DuplicateEmail verifies that the same email cannot be
registered twice, even across principal kinds.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	input := auth.RegisterInput{
		Email:    "shared@medora.health",
		Password: "password-one",
		FullName: "First Owner",
	}
	_, err := service.RegisterPatient(context.Background(), input)
	require.NoError(t, err)

	// A doctor registration with the same address must also be rejected.
	_, err = service.RegisterDoctor(context.Background(), auth.RegisterInput{
		Email:    "SHARED@medora.health",
		Password: "password-two",
		FullName: "Second Owner",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

/*
TestService_Login verifies the credential flow: a valid login yields a session
whose token verifies and carries the principal's role.
*/
func TestService_Login(t *testing.T) {
	service, _, _ := newTestService(t)

	registered, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "patient@medora.health",
		Password: "a-strong-password",
		FullName: "Pat Ient",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "patient@medora.health",
		Password: "a-strong-password",
	})
	require.NoError(t, err)

	assert.Equal(t, auth.TokenTypeBearer, session.TokenType)
	assert.EqualValues(t, 60, session.ExpiresIn)
	require.NotNil(t, session.Principal)
	assert.Equal(t, registered.ID, session.Principal.ID)

	claims, err := service.Tokens().Verify(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.PrincipalID)
	assert.Equal(t, sec.RolePatient, claims.PrincipalRole())
}

/*
TestService_Login_BadCredentials verifies that a wrong password and an unknown
email both produce the same generic 401, preventing account enumeration.
*/
func TestService_Login_BadCredentials(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "known@medora.health",
		Password: "the-real-password",
		FullName: "Known User",
	})
	require.NoError(t, err)

	_, wrongPassword := service.Login(context.Background(), auth.LoginInput{
		Email:    "known@medora.health",
		Password: "not-the-password",
	})
	_, unknownEmail := service.Login(context.Background(), auth.LoginInput{
		Email:    "ghost@medora.health",
		Password: "anything",
	})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, wrongPassword))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, unknownEmail))

	// Identical client-facing messages.
	wrongErr := apperr.As(wrongPassword)
	unknownErr := apperr.As(unknownEmail)
	assert.Equal(t, wrongErr.Message, unknownErr.Message)
}

/*
TestService_Login_UnapprovedDoctor verifies the approval gate: a doctor with
correct credentials is rejected with 403 until approved.
*/
func TestService_Login_UnapprovedDoctor(t *testing.T) {
	service, principals, _ := newTestService(t)

	doctor, err := service.RegisterDoctor(context.Background(), auth.RegisterInput{
		Email:    "doctor@medora.health",
		Password: "stethoscope-secret",
		FullName: "Doc Tor",
	})
	require.NoError(t, err)
	assert.False(t, doctor.IsApproved)

	credentials := auth.LoginInput{
		Email:    "doctor@medora.health",
		Password: "stethoscope-secret",
	}

	_, err = service.Login(context.Background(), credentials)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	// Approval unlocks the account.
	require.NoError(t, principals.SetApproved(context.Background(), doctor.ID, true))

	session, err := service.Login(context.Background(), credentials)
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
}

/*
TestService_Logout verifies that logout revokes the session token and that a
second logout with the same token still succeeds.
*/
func TestService_Logout(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "leaver@medora.health",
		Password: "goodbye-password",
		FullName: "Lea Ver",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "leaver@medora.health",
		Password: "goodbye-password",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.AccessToken))

	_, err = service.Tokens().Verify(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	// Idempotent: repeating the logout is still a success.
	assert.NoError(t, service.Logout(context.Background(), session.AccessToken))

	// A malformed token logs out "successfully" as well.
	assert.NoError(t, service.Logout(context.Background(), "garbage"))
}

/*
TestService_Logout_StoreDown verifies that logout surfaces 503 when the
revocation entry cannot be recorded.
*/
func TestService_Logout_StoreDown(t *testing.T) {
	service, _, revocations := newTestService(t)

	_, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "stranded@medora.health",
		Password: "cannot-leave",
		FullName: "Stran Ded",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "stranded@medora.health",
		Password: "cannot-leave",
	})
	require.NoError(t, err)

	revocations.failing = true

	err = service.Logout(context.Background(), session.AccessToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

/*
TestService_RefreshSession verifies rotation through the service layer: the
old token dies, the new one works, and reusing the old token is rejected.
*/
func TestService_RefreshSession(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "rotator@medora.health",
		Password: "spin-me-round",
		FullName: "Ro Tator",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "rotator@medora.health",
		Password: "spin-me-round",
	})
	require.NoError(t, err)

	refreshed, err := service.RefreshSession(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.AccessToken, refreshed.AccessToken)

	// The old token was rotated out and cannot be refreshed again.
	_, err = service.RefreshSession(context.Background(), session.AccessToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = service.Tokens().Verify(context.Background(), refreshed.AccessToken)
	assert.NoError(t, err)
}

/*
TestService_ChangePassword verifies the password change flow: wrong current
password is rejected, a successful change revokes the presented token, and
only the new password logs in afterwards.
*/
func TestService_ChangePassword(t *testing.T) {
	service, _, _ := newTestService(t)

	registered, err := service.RegisterPatient(context.Background(), auth.RegisterInput{
		Email:    "changer@medora.health",
		Password: "old-password-123",
		FullName: "Chan Ger",
	})
	require.NoError(t, err)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "changer@medora.health",
		Password: "old-password-123",
	})
	require.NoError(t, err)

	// 1. Wrong current password.
	err = service.ChangePassword(context.Background(), registered.ID, "wrong-password", "new-password-456", session.AccessToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// 2. Successful change.
	err = service.ChangePassword(context.Background(), registered.ID, "old-password-123", "new-password-456", session.AccessToken)
	require.NoError(t, err)

	// The presented token was revoked as a security side effect.
	_, err = service.Tokens().Verify(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	// 3. Old password no longer works; new one does.
	_, err = service.Login(context.Background(), auth.LoginInput{
		Email:    "changer@medora.health",
		Password: "old-password-123",
	})
	require.Error(t, err)

	_, err = service.Login(context.Background(), auth.LoginInput{
		Email:    "changer@medora.health",
		Password: "new-password-456",
	})
	assert.NoError(t, err)
}

/*
TestService_EnsureSuperAdmin covers the startup bootstrap path.

The owner account is seeded once from configuration; repeat boots and an
empty email are both no-ops.
*/
func TestService_EnsureSuperAdmin(t *testing.T) {
	service, principals, _ := newTestService(t)

	// Disabled when no email is configured.
	require.NoError(t, service.EnsureSuperAdmin(context.Background(), "", "unused"))
	assert.Empty(t, principals.byID)

	require.NoError(t, service.EnsureSuperAdmin(context.Background(), "Owner@Medora.Health", "owner-password-123"))

	owner, err := principals.FindByEmail(context.Background(), "owner@medora.health")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleSuperAdmin, owner.Role)
	assert.True(t, owner.IsApproved)

	// Second boot finds the account and changes nothing.
	require.NoError(t, service.EnsureSuperAdmin(context.Background(), "owner@medora.health", "different-password"))
	assert.Len(t, principals.byID, 1)

	session, err := service.Login(context.Background(), auth.LoginInput{
		Email:    "owner@medora.health",
		Password: "owner-password-123",
	})
	require.NoError(t, err)

	claims, err := service.Tokens().Verify(context.Background(), session.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.PrincipalRole().IsOverride())
}
