// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package sec

// # Principal Roles

// Role represents the authorization level granted to a principal.
//
// The set is closed: every credential record carries exactly one of these
// variants, and authorization decisions never compare free-form strings.
type Role string

const (
	// Universal override. Passes every role and permission check.
	RoleSuperAdmin Role = "super_admin"

	// Operational staff. Rights come from the permission catalog, optionally
	// narrowed or widened by a per-principal override set.
	RoleAdmin Role = "admin"

	// Clinical staff. Must be approved by an admin before logging in.
	RoleDoctor Role = "doctor"

	// Default role for self-registered members
	RolePatient Role = "patient"
)

// # Role Predicates

// IsOverride reports whether the role bypasses all role and permission checks.
func (r Role) IsOverride() bool {
	return r == RoleSuperAdmin
}

// IsValid reports whether the role is one of the closed set of variants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDoctor, RolePatient:
		return true
	default:
		return false
	}
}

// Satisfies reports whether the role passes a guard requiring target.
//
// The check is exact equality, except that the override role passes
// unconditionally. There is no role hierarchy: an admin does not imply
// doctor, and vice versa.
func (r Role) Satisfies(target Role) bool {
	if r.IsOverride() {
		return true
	}
	return r == target
}
