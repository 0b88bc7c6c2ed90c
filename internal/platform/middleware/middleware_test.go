// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trankieu/medora/internal/platform/middleware"
)

// stubAppConfig feeds the CORS middleware a fixed environment and allow-list.
type stubAppConfig struct {
	development  bool
	extraOrigins []string
}

func (s stubAppConfig) IsDevelopment() bool      { return s.development }
func (s stubAppConfig) AllowedOrigins() []string { return s.extraOrigins }

/*
TestCORS verifies origin authorization: first-party medora.health domains and
configured extra origins are allowed in production, everything else is not,
and development allows any origin.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         stubAppConfig
		origin      string
		wantAllowed bool
	}{
		{"first party", stubAppConfig{}, "https://app.medora.health", true},
		{"configured extra origin", stubAppConfig{extraOrigins: []string{"https://staging.example.test"}}, "https://staging.example.test", true},
		{"unknown origin", stubAppConfig{extraOrigins: []string{"https://staging.example.test"}}, "https://evil.example.com", false},
		{"dev allows anything", stubAppConfig{development: true}, "https://localhost:3000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Origin", tt.origin)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			allowed := recorder.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllowed {
				assert.Equal(t, tt.origin, allowed)
			} else {
				assert.Empty(t, allowed)
			}
		})
	}
}

/*
TestCORS_Preflight verifies that OPTIONS requests short-circuit with 204
without reaching the inner handler.
*/
func TestCORS_Preflight(t *testing.T) {
	reached := false
	handler := middleware.CORS(stubAppConfig{})(okHandler(&reached))

	request := httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://app.medora.health")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.False(t, reached)
	assert.Equal(t, "https://app.medora.health", recorder.Header().Get("Access-Control-Allow-Origin"))
}
