// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package doctor_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trankieu/medora/internal/clinic/doctor"
	"github.com/trankieu/medora/internal/platform/apperr"
	"github.com/trankieu/medora/internal/platform/dberr"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

const (
	doctorID  = "0191e4a0-0000-7000-8000-00000000d0c1"
	patientID = "0191e4a0-0000-7000-8000-00000000beef"
)

// memoryProfiles is an in-memory ProfileRepository for unit tests.
type memoryProfiles struct {
	byPrincipal map[string]*doctor.Doctor
	bySlug      map[string]*doctor.Doctor
	principals  *memoryPrincipals
}

func newMemoryProfiles(principals *memoryPrincipals) *memoryProfiles {
	return &memoryProfiles{
		byPrincipal: map[string]*doctor.Doctor{},
		bySlug:      map[string]*doctor.Doctor{},
		principals:  principals,
	}
}

func (m *memoryProfiles) Upsert(_ context.Context, profile *doctor.Profile) error {
	entry, exists := m.byPrincipal[profile.PrincipalID]
	if !exists {
		entry = &doctor.Doctor{Profile: *profile}
		entry.CreatedAt = time.Now()
		m.bySlug[profile.Slug] = entry
	} else {
		// Slug is write-once: updates never move a published link.
		profile.Slug = entry.Slug
		entry.Profile = *profile
	}
	entry.UpdatedAt = time.Now()

	if principal, ok := m.principals.byID[profile.PrincipalID]; ok {
		entry.FullName = principal.FullName
		entry.Email = principal.Email
		entry.IsApproved = principal.IsApproved
	}
	m.byPrincipal[profile.PrincipalID] = entry
	return nil
}

func (m *memoryProfiles) FindByPrincipalID(_ context.Context, principalID string) (*doctor.Doctor, error) {
	entry, ok := m.byPrincipal[principalID]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return entry, nil
}

func (m *memoryProfiles) FindBySlug(_ context.Context, slug string) (*doctor.Doctor, error) {
	entry, ok := m.bySlug[slug]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	if principal, ok := m.principals.byID[entry.PrincipalID]; ok {
		entry.IsApproved = principal.IsApproved
	}
	return entry, nil
}

func (m *memoryProfiles) ListApproved(_ context.Context, specialty string, _ pagination.Params) ([]*doctor.Doctor, int64, error) {
	var out []*doctor.Doctor
	for _, entry := range m.byPrincipal {
		if principal, ok := m.principals.byID[entry.PrincipalID]; !ok || !principal.IsApproved {
			continue
		}
		if specialty != "" && entry.Specialty != specialty {
			continue
		}
		out = append(out, entry)
	}
	return out, int64(len(out)), nil
}

func (m *memoryProfiles) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := m.bySlug[slug]
	return ok, nil
}

// memoryPrincipals is a minimal auth.PrincipalRepository for roster tests.
type memoryPrincipals struct {
	byID map[string]*auth.Principal
}

func newMemoryPrincipals() *memoryPrincipals {
	return &memoryPrincipals{byID: map[string]*auth.Principal{}}
}

func (m *memoryPrincipals) Create(_ context.Context, principal *auth.Principal) error {
	m.byID[principal.ID] = principal
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
	for _, principal := range m.byID {
		if principal.Email == email {
			return principal, nil
		}
	}
	return nil, dberr.ErrNotFound
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
	if _, ok := m.byID[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newTestService(t *testing.T) (*doctor.Service, *memoryPrincipals, *memoryProfiles) {
	t.Helper()
	principals := newMemoryPrincipals()
	profiles := newMemoryProfiles(principals)
	principals.byID[doctorID] = &auth.Principal{
		ID:         doctorID,
		Email:      "grace.wong@clinic.test",
		FullName:   "Grace Wong",
		Role:       sec.RoleDoctor,
		IsApproved: false,
	}
	principals.byID[patientID] = &auth.Principal{
		ID:       patientID,
		Email:    "omar.farouk@example.test",
		FullName: "Omar Farouk",
		Role:     sec.RolePatient,
	}
	return doctor.NewService(profiles, principals), principals, profiles
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	return appErr.HTTPStatus
}

/*
TestService_UpsertProfile verifies slug minting and slug stability.

The slug is derived from the name and specialty once; later updates to
the bio or fee must not move the published link.
*/
func TestService_UpsertProfile(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := service.UpsertProfile(ctx, doctorID, doctor.ProfileInput{
		Specialty:       "Cardiology",
		Bio:             "Consultant cardiologist.",
		ConsultationFee: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, "grace-wong-cardiology", profile.Slug)

	updated, err := service.UpsertProfile(ctx, doctorID, doctor.ProfileInput{
		Specialty:       "Interventional Cardiology",
		Bio:             "Updated bio.",
		ConsultationFee: 30000,
	})
	require.NoError(t, err)
	assert.Equal(t, profile.Slug, updated.Slug, "slug must stay stable across updates")
	assert.Equal(t, int64(30000), updated.ConsultationFee)
}

// TestService_UpsertProfile_RoleGuard rejects non-doctor principals.
func TestService_UpsertProfile_RoleGuard(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.UpsertProfile(context.Background(), patientID, doctor.ProfileInput{
		Specialty: "Cardiology",
	})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = service.UpsertProfile(context.Background(), "0191e4a0-0000-7000-8000-000000000bad", doctor.ProfileInput{})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

// TestService_SlugCollision appends a numeric suffix when the base is taken.
func TestService_SlugCollision(t *testing.T) {
	service, principals, _ := newTestService(t)
	ctx := context.Background()

	twinID := "0191e4a0-0000-7000-8000-00000000d0c2"
	principals.byID[twinID] = &auth.Principal{
		ID:       twinID,
		Email:    "grace.wong.2@clinic.test",
		FullName: "Grace Wong",
		Role:     sec.RoleDoctor,
	}

	first, err := service.UpsertProfile(ctx, doctorID, doctor.ProfileInput{Specialty: "Cardiology"})
	require.NoError(t, err)

	second, err := service.UpsertProfile(ctx, twinID, doctor.ProfileInput{Specialty: "Cardiology"})
	require.NoError(t, err)

	assert.Equal(t, "grace-wong-cardiology", first.Slug)
	assert.Equal(t, "grace-wong-cardiology-2", second.Slug)
}

/*
TestService_ApprovalFlow walks a registration from pending to public.

An unapproved doctor is invisible on the roster and by slug; approval
makes both visible.
*/
func TestService_ApprovalFlow(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := service.UpsertProfile(ctx, doctorID, doctor.ProfileInput{Specialty: "Cardiology"})
	require.NoError(t, err)

	// Invisible while pending.
	_, err = service.FindBySlug(ctx, profile.Slug)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	roster, _, err := service.ListApproved(ctx, "", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, roster)

	pending, _, err := service.ListPending(ctx, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, doctorID, pending[0].ID)

	approved, err := service.Approve(ctx, doctorID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	// Visible after approval.
	found, err := service.FindBySlug(ctx, profile.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Grace Wong", found.FullName)

	roster, total, err := service.ListApproved(ctx, "Cardiology", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Equal(t, int64(1), total)
}

// TestService_Approve_RoleGuard refuses to approve non-doctor accounts.
func TestService_Approve_RoleGuard(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Approve(context.Background(), patientID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

// TestService_Remove retires the account so the profile disappears.
func TestService_Remove(t *testing.T) {
	service, principals, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.UpsertProfile(ctx, doctorID, doctor.ProfileInput{Specialty: "Cardiology"})
	require.NoError(t, err)

	require.NoError(t, service.Remove(ctx, doctorID))
	_, ok := principals.byID[doctorID]
	assert.False(t, ok)

	err = service.Remove(ctx, doctorID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
