// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import "time"

// # Credential Rules

const (
	// PasswordMinLength is the minimum accepted password length at registration
	// and password change.
	PasswordMinLength = 8

	// PasswordMaxLength guards bcrypt's 72-byte input limit.
	PasswordMaxLength = 72

	// FullNameMaxLength bounds display names.
	FullNameMaxLength = 120

	// EmailMaxLength bounds stored addresses.
	EmailMaxLength = 254
)

// # Token Defaults

const (
	// DefaultAccessTokenTTL is used when the deployment does not configure
	// ACCESS_TOKEN_TTL explicitly.
	DefaultAccessTokenTTL = 15 * time.Minute

	// TokenTypeBearer is the token_type value returned in session payloads.
	TokenTypeBearer = "Bearer"
)
