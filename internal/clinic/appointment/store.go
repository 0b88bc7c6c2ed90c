// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package appointment

import (
	"context"
	"time"

	"github.com/trankieu/medora/pkg/pagination"
)

// # Repository Contract

// Filter narrows appointment listings. Zero values match everything.
type Filter struct {
	DoctorID  string
	PatientID string
	Status    Status
}

// Repository is the persistence contract for appointments.
type Repository interface {
	Create(ctx context.Context, appointment *Appointment) error
	FindByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter Filter, params pagination.Params) ([]*Appointment, int64, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// HasOverlap reports whether the doctor already has a pending or
	// confirmed appointment intersecting the [start, end) window.
	HasOverlap(ctx context.Context, doctorID string, start, end time.Time) (bool, error)
}
