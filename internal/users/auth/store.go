// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/trankieu/medora/pkg/pagination"
)

// # Repository Contracts

// PrincipalRepository is the persistence contract for credential records.
//
// Implementations must return dberr.ErrNotFound for missing rows and
// dberr.ErrDuplicate for email uniqueness violations so the service layer can
// translate them without driver knowledge.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *Principal) error
	FindByID(ctx context.Context, id string) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	ListByRole(ctx context.Context, role string, params pagination.Params) ([]*Principal, int64, error)
	Update(ctx context.Context, principal *Principal) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetApproved(ctx context.Context, id string, approved bool) error
	SetPermissions(ctx context.Context, id string, permissions []string) error
	Delete(ctx context.Context, id string) error
}

// RevocationRepository tracks revoked token identifiers until their natural
// expiry. Entries are keyed by the token's unique identifier (jti) and must
// disappear on their own once the supplied TTL elapses.
type RevocationRepository interface {
	// Put marks a token identifier revoked for the given duration.
	// Re-putting an already revoked identifier is a successful no-op.
	Put(ctx context.Context, tokenID string, ttl time.Duration) error

	// Exists reports whether a token identifier is currently revoked.
	Exists(ctx context.Context, tokenID string) (bool, error)
}
