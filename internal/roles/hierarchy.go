// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package roles

// CanCreateRole reports whether an actor may create an account with the
// target role.
//
// The relation is strict and irreflexive: the actor must outrank the target,
// so no role can create accounts of its own tier. The super-admin tier is
// unassignable through account creation regardless of actor rank. Unknown
// roles on either side always deny.
func CanCreateRole(actor, target Role) bool {
	if !actor.Known() || !target.Known() {
		return false
	}
	if target == RoleSuperAdmin {
		return false
	}
	return actor.Rank() > target.Rank()
}

// CanManageUser reports whether an actor may manage (modify, delete, act on
// behalf of) an account with the target role.
//
// Strict outranking is required; peers may not manage each other. The single
// exception is super-admin, which manages every account including other
// super-admins. Raising an actor's rank can only add management rights.
func CanManageUser(actor, target Role) bool {
	if !actor.Known() || !target.Known() {
		return false
	}
	if actor == RoleSuperAdmin {
		return true
	}
	return actor.Rank() > target.Rank()
}
