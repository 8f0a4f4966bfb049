// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package roles defines the canonical role enum for the portal and the
// hierarchy relations used for account administration.
//
// Historically the portal compared raw role strings at every call site, with
// inconsistent spellings ("super_admin", "Client", "TRAINER") scattered across
// handlers. Normalize is the single point where arbitrary spellings collapse
// into the canonical enum; everything downstream operates on Role values only.
package roles

import "strings"

// Role is the canonical privilege tier of a principal.
type Role string

const (
	// RoleUnknown is the sentinel for unrecognized role strings.
	// It carries no privilege anywhere in the system.
	RoleUnknown Role = ""

	// RoleMember is the non-staff leaf tier ("client" is an accepted alias).
	RoleMember Role = "member"

	// RoleTrainer is the lowest staff tier.
	RoleTrainer Role = "trainer"

	// RoleManager supervises trainers and club operations.
	RoleManager Role = "manager"

	// RoleAdmin administers a club installation.
	RoleAdmin Role = "admin"

	// RoleSuperAdmin is the platform-operator tier. It cannot be assigned
	// through the user-administration API.
	RoleSuperAdmin Role = "super-admin"
)

// rank orders roles by general trust. RoleUnknown is absent and ranks below
// everything.
var rank = map[Role]int{
	RoleMember:     0,
	RoleTrainer:    1,
	RoleManager:    2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Normalize maps an arbitrary role spelling to its canonical Role.
//
// Input is trimmed, lower-cased, and underscore separators are replaced with
// hyphens before matching. "client" is a legacy alias for member. Unrecognized
// input yields RoleUnknown; Normalize never fails. Normalize is idempotent:
// re-normalizing a canonical value returns it unchanged.
func Normalize(raw string) Role {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")

	switch s {
	case "member", "client":
		return RoleMember
	case "trainer":
		return RoleTrainer
	case "manager":
		return RoleManager
	case "admin":
		return RoleAdmin
	case "super-admin":
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// String returns the canonical string form of the role.
func (r Role) String() string {
	return string(r)
}

// Known reports whether r is one of the five canonical roles.
func (r Role) Known() bool {
	_, ok := rank[r]
	return ok
}

// IsStaff reports whether r is a staff tier (trainer or above).
func (r Role) IsStaff() bool {
	return r.Known() && rank[r] >= rank[RoleTrainer]
}

// Rank returns the role's position in the trust order, or -1 for RoleUnknown.
func (r Role) Rank() int {
	if v, ok := rank[r]; ok {
		return v
	}
	return -1
}

// All returns the five canonical roles in ascending trust order.
func All() []Role {
	return []Role{RoleMember, RoleTrainer, RoleManager, RoleAdmin, RoleSuperAdmin}
}
