// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

package routes

// Tables enumerates the route lists the classifier is compiled from.
// These are configuration data, not behavior: deployments override them via
// the routes section of the config file.
type Tables struct {
	// PublicExact lists paths reachable without a credential, matched exactly.
	PublicExact []string `koanf:"public_exact"`

	// PublicTemplates lists public detail-page patterns with single dynamic
	// segments, e.g. "/programs/{slug}".
	PublicTemplates []string `koanf:"public_templates"`

	// MemberPrefixes lists prefixes of the member area.
	MemberPrefixes []string `koanf:"member_prefixes"`

	// MemberTemplates lists multi-segment booking patterns inside the member
	// area, e.g. "/member/bookings/{date}/{slot}".
	MemberTemplates []string `koanf:"member_templates"`

	// StaffPrefixes lists prefixes of the staff area.
	StaffPrefixes []string `koanf:"staff_prefixes"`
}

// DefaultTables returns the route tables of the stock portal.
func DefaultTables() Tables {
	return Tables{
		PublicExact: []string{
			"/",
			"/about",
			"/contact",
			"/pricing",
			"/programs",
			"/trainers",
			"/shop",
			"/schedule",
			"/register",
			"/login",
			"/staff-login",
		},
		PublicTemplates: []string{
			"/programs/{slug}",
			"/trainers/{id}",
			"/shop/{id}",
		},
		MemberPrefixes: []string{
			"/member",
		},
		MemberTemplates: []string{
			"/member/bookings/{date}/{slot}",
			"/member/classes/{id}/book",
		},
		StaffPrefixes: []string{
			"/dashboard",
			"/admin",
			"/manage",
		},
	}
}
