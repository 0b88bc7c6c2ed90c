// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trankieu/medora/internal/platform/ctxutil"
	"github.com/trankieu/medora/internal/platform/sec"
	"github.com/trankieu/medora/internal/users/admin"
	"github.com/trankieu/medora/internal/users/auth"
	"github.com/trankieu/medora/pkg/pagination"
)

// rosterStub satisfies only the roster lookup; the gating tests below never
// reach any other repository method.
type rosterStub struct {
	auth.PrincipalRepository
}

func (rosterStub) ListByRole(_ context.Context, _ string, _ pagination.Params) ([]*auth.Principal, int64, error) {
	return nil, 0, nil
}

/*
TestHandler_PermissionGating verifies the per-permission route guards: an
admin widened with an admin:* override grant is authorized, a default admin
is not, and the override role passes everything.
*/
func TestHandler_PermissionGating(t *testing.T) {
	router := admin.NewHandler(admin.NewService(rosterStub{})).Routes()

	claimsFor := func(role sec.Role, perms ...sec.Permission) *sec.AuthClaims {
		return &sec.AuthClaims{
			PrincipalID: "0191e4a0-0000-7000-8000-000000000001",
			Role:        string(role),
			Permissions: sec.PermissionStrings(perms),
		}
	}

	tests := []struct {
		name       string
		method     string
		target     string
		claims     *sec.AuthClaims
		wantStatus int
	}{
		{"widened admin lists", http.MethodGet, "/", claimsFor(sec.RoleAdmin, sec.PermAdminList), http.StatusOK},
		{"default admin blocked", http.MethodGet, "/", claimsFor(sec.RoleAdmin), http.StatusForbidden},
		{"list grant does not create", http.MethodPost, "/", claimsFor(sec.RoleAdmin, sec.PermAdminList), http.StatusForbidden},
		{"no update grant", http.MethodPut, "/some-id", claimsFor(sec.RoleAdmin, sec.PermAdminList), http.StatusForbidden},
		{"no delete grant", http.MethodDelete, "/some-id", claimsFor(sec.RoleAdmin, sec.PermAdminCreate), http.StatusForbidden},
		{"owner passes", http.MethodGet, "/", claimsFor(sec.RoleSuperAdmin), http.StatusOK},
		{"anonymous", http.MethodGet, "/", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.claims != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), tt.claims))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
