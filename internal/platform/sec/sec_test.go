// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trankieu/medora/internal/platform/sec"
)

/*
TestRole_Satisfies verifies the exact-match role model with the single
override exception for super_admin.
*/
func TestRole_Satisfies(t *testing.T) {
	// Exact matches pass.
	assert.True(t, sec.RoleAdmin.Satisfies(sec.RoleAdmin))
	assert.True(t, sec.RoleDoctor.Satisfies(sec.RoleDoctor))

	// No hierarchy: admin is not a doctor and a doctor is not a patient.
	assert.False(t, sec.RoleAdmin.Satisfies(sec.RoleDoctor))
	assert.False(t, sec.RoleDoctor.Satisfies(sec.RolePatient))
	assert.False(t, sec.RolePatient.Satisfies(sec.RoleAdmin))

	// The override role passes every check.
	assert.True(t, sec.RoleSuperAdmin.Satisfies(sec.RoleAdmin))
	assert.True(t, sec.RoleSuperAdmin.Satisfies(sec.RoleDoctor))
	assert.True(t, sec.RoleSuperAdmin.Satisfies(sec.RolePatient))
	assert.True(t, sec.RoleSuperAdmin.Satisfies(sec.RoleSuperAdmin))
}

/*
TestRole_IsValid verifies the closed role set: unknown strings never parse
into a usable role.
*/
func TestRole_IsValid(t *testing.T) {
	for _, role := range []sec.Role{sec.RoleSuperAdmin, sec.RoleAdmin, sec.RoleDoctor, sec.RolePatient} {
		assert.True(t, role.IsValid(), "role %q", role)
	}

	assert.False(t, sec.Role("root").IsValid())
	assert.False(t, sec.Role("").IsValid())
	assert.False(t, sec.Role("Admin").IsValid(), "role matching is case-sensitive")
}

/*
TestPermission_Defaults verifies the catalog contents per role and that
returned slices are defensive copies.
*/
func TestPermission_Defaults(t *testing.T) {
	doctor := sec.Defaults(sec.RoleDoctor)
	assert.ElementsMatch(t, []sec.Permission{sec.PermAppointmentManage, sec.PermAppointmentList}, doctor)

	patient := sec.Defaults(sec.RolePatient)
	assert.Contains(t, patient, sec.PermAppointmentBook)
	assert.Contains(t, patient, sec.PermPaymentCreate)
	assert.NotContains(t, patient, sec.PermAppointmentManage)

	// super_admin bypasses the catalog entirely.
	assert.Empty(t, sec.Defaults(sec.RoleSuperAdmin))

	// Mutating the returned slice must not poison the catalog.
	doctor[0] = sec.Permission("tampered")
	assert.ElementsMatch(t, []sec.Permission{sec.PermAppointmentManage, sec.PermAppointmentList}, sec.Defaults(sec.RoleDoctor))
}

/*
TestPermission_Effective verifies override resolution: a non-empty override
set replaces the defaults entirely, an empty one restores them.
*/
func TestPermission_Effective(t *testing.T) {
	override := []sec.Permission{sec.PermDoctorList}

	assert.Equal(t, override, sec.Effective(sec.RoleAdmin, override))
	assert.ElementsMatch(t, sec.Defaults(sec.RoleAdmin), sec.Effective(sec.RoleAdmin, nil))
	assert.ElementsMatch(t, sec.Defaults(sec.RoleAdmin), sec.Effective(sec.RoleAdmin, []sec.Permission{}))
}

/*
TestPermission_Conversions verifies the string round-trip used between the
permissions column and the typed catalog, including nil passthrough.
*/
func TestPermission_Conversions(t *testing.T) {
	perms := []sec.Permission{sec.PermAdminCreate, sec.PermDoctorList}

	values := sec.PermissionStrings(perms)
	assert.Equal(t, []string{"admin:create", "doctor:list"}, values)
	assert.Equal(t, perms, sec.PermissionsFromStrings(values))

	assert.Nil(t, sec.PermissionStrings(nil))
	assert.Nil(t, sec.PermissionsFromStrings(nil))
}

/*
TestAuthClaims_HasPermission verifies claim-local permission checks,
including the unconditional override role pass.
*/
func TestAuthClaims_HasPermission(t *testing.T) {
	claims := &sec.AuthClaims{
		Role:        string(sec.RoleAdmin),
		Permissions: []string{string(sec.PermDoctorList)},
	}

	assert.True(t, claims.HasPermission(sec.PermDoctorList))
	assert.False(t, claims.HasPermission(sec.PermAdminCreate))

	owner := &sec.AuthClaims{Role: string(sec.RoleSuperAdmin)}
	assert.True(t, owner.HasPermission(sec.PermAdminCreate), "override role needs no explicit grants")
}

/*
TestAuthClaims_RemainingLifetime verifies the clamp to zero for expired and
claim-less tokens.
*/
func TestAuthClaims_RemainingLifetime(t *testing.T) {
	now := time.Now()

	live := &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))},
	}
	assert.InDelta(t, time.Minute, live.RemainingLifetime(now), float64(time.Second))

	expired := &sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
	}
	assert.Zero(t, expired.RemainingLifetime(now))

	assert.Zero(t, (&sec.AuthClaims{}).RemainingLifetime(now))
}

/*
TestTokenCodec_SecretLength verifies that weak signing secrets are rejected
at construction.
*/
func TestTokenCodec_SecretLength(t *testing.T) {
	_, err := sec.NewTokenCodec("too-short", "medora.health")
	require.Error(t, err)

	codec, err := sec.NewTokenCodec("0123456789abcdef0123456789abcdef", "medora.health")
	require.NoError(t, err)
	assert.Equal(t, "medora.health", codec.Issuer())
}

/*
TestPasswordHashing verifies the bcrypt round trip and mismatch rejection.
*/
func TestPasswordHashing(t *testing.T) {
	hash, err := sec.HashPassword("hunter2-but-longer")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2-but-longer", hash)

	assert.True(t, sec.CheckPasswordHash("hunter2-but-longer", hash))
	assert.False(t, sec.CheckPasswordHash("hunter2", hash))
}
