// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package sec

import "github.com/trankieu/medora/pkg/slice"

// # Permission Identifiers

// Permission is a named capability in "resource:action" form.
type Permission string

const (
	PermAdminList   Permission = "admin:list"
	PermAdminCreate Permission = "admin:create"
	PermAdminUpdate Permission = "admin:update"
	PermAdminDelete Permission = "admin:delete"

	PermDoctorList    Permission = "doctor:list"
	PermDoctorApprove Permission = "doctor:approve"
	PermDoctorDelete  Permission = "doctor:delete"

	PermPatientList   Permission = "patient:list"
	PermPatientDelete Permission = "patient:delete"

	PermAppointmentBook   Permission = "appointment:book"
	PermAppointmentManage Permission = "appointment:manage"
	PermAppointmentList   Permission = "appointment:list"

	PermPaymentCreate Permission = "payment:create"
	PermPaymentList   Permission = "payment:list"
)

// # Permission Catalog

// catalog is the static mapping from role to default capabilities.
//
// RoleSuperAdmin is intentionally absent: the override role never consults
// the catalog, so enumerating its rights here would only invite drift.
var catalog = map[Role][]Permission{
	RoleAdmin: {
		PermAdminList,
		PermDoctorList,
		PermDoctorApprove,
		PermDoctorDelete,
		PermPatientList,
		PermPatientDelete,
		PermAppointmentList,
		PermPaymentList,
	},
	RoleDoctor: {
		PermAppointmentManage,
		PermAppointmentList,
	},
	RolePatient: {
		PermAppointmentBook,
		PermAppointmentList,
		PermPaymentCreate,
		PermPaymentList,
	},
}

// Defaults returns a copy of the catalog's permission set for the role.
//
// A copy is returned so callers can never mutate the shared catalog.
func Defaults(role Role) []Permission {
	defaults, ok := catalog[role]
	if !ok {
		return nil
	}

	out := make([]Permission, len(defaults))
	copy(out, defaults)
	return out
}

// Effective resolves the permission set a token should carry for a principal.
//
// # Resolution
//
// If the principal stores a non-empty override set, it replaces the role
// defaults entirely — a single admin's rights can be narrowed or widened
// without touching the catalog. Otherwise the catalog defaults apply.
func Effective(role Role, overrides []Permission) []Permission {
	if len(overrides) > 0 {
		out := make([]Permission, len(overrides))
		copy(out, overrides)
		return out
	}
	return Defaults(role)
}

// PermissionStrings converts a permission slice to its wire representation.
func PermissionStrings(perms []Permission) []string {
	return slice.Map(perms, func(p Permission) string { return string(p) })
}

// PermissionsFromStrings converts stored string values back into typed permissions.
func PermissionsFromStrings(values []string) []Permission {
	return slice.Map(values, func(v string) Permission { return Permission(v) })
}
