// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package doctor

import (
	"context"

	"github.com/trankieu/medora/pkg/pagination"
)

// # Repository Contract

// ProfileRepository is the persistence contract for doctor profiles.
//
// Implementations must return dberr.ErrNotFound for missing rows and
// dberr.ErrDuplicate for slug collisions.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *Profile) error
	FindByPrincipalID(ctx context.Context, principalID string) (*Doctor, error)
	FindBySlug(ctx context.Context, slug string) (*Doctor, error)
	// ListApproved returns only doctors whose accounts have been approved;
	// pending registrations never appear in the public roster.
	ListApproved(ctx context.Context, specialty string, params pagination.Params) ([]*Doctor, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}
