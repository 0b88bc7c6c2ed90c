// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

// Package schema centralizes table and column identifiers for the Medora database.
//
// Keeping identifiers here prevents typo'd column names from scattering across
// the repository layer.
package schema

// UsersPrincipalTable represents the 'users.principal' table
type UsersPrincipalTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Permissions  string
	IsApproved   string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// UsersPrincipal is the schema definition for users.principal.
//
// All principal kinds (super_admin, admin, doctor, patient) share this table,
// which is what enforces global email uniqueness across kinds.
var UsersPrincipal = UsersPrincipalTable{
	Table:        "users.principal",
	ID:           "id",
	Email:        "email",
	PasswordHash: "passwordhash",
	FullName:     "fullname",
	Role:         "role",
	Permissions:  "permissions",
	IsApproved:   "isapproved",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}
