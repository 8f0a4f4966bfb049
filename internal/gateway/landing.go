// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package gateway

import "github.com/clubworks/gymgate/internal/roles"

// LandingPath maps a canonical role to its post-login destination. It is
// total: staff tiers without a dedicated dashboard land on the generic staff
// landing page, and anything else lands on the member area.
func LandingPath(role roles.Role) string {
	switch role {
	case roles.RoleMember:
		return "/member"
	case roles.RoleTrainer:
		return "/dashboard/trainer"
	case roles.RoleManager:
		return "/dashboard/manager"
	case roles.RoleAdmin, roles.RoleSuperAdmin:
		return "/dashboard/admin"
	default:
		if role.IsStaff() {
			return "/dashboard"
		}
		return "/member"
	}
}
