// GymGate - Fitness Club Management Portal Gateway
// Copyright 2026 ClubWorks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clubworks/gymgate

// Package routes classifies request paths into access-control tiers.
//
// Classification is static configuration: it depends only on the path, never
// on the caller's identity. The tables are compiled once at startup and are
// immutable afterwards. Static assets and /api paths are filtered upstream
// and never reach the classifier.
package routes

import (
	"path"
	"strings"
)

// Class is the access-control tier of a request path.
type Class int

const (
	// Public paths are reachable without any credential.
	Public Class = iota

	// MemberOnly paths require an authenticated member.
	MemberOnly

	// StaffOnly paths require an authenticated staff-tier principal.
	StaffOnly

	// ProtectedDefault covers every path not otherwise classified:
	// any authenticated principal may pass.
	ProtectedDefault
)

// String returns a human-readable class name for logging and metrics.
func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case MemberOnly:
		return "member_only"
	case StaffOnly:
		return "staff_only"
	case ProtectedDefault:
		return "protected_default"
	default:
		return "unknown"
	}
}

// Classifier assigns a Class to request paths. Construct with NewClassifier;
// a zero Classifier classifies everything as ProtectedDefault.
type Classifier struct {
	publicExact     map[string]struct{}
	publicTemplates []template
	memberPrefixes  []string
	memberTemplates []template
	staffPrefixes   []string
}

// NewClassifier compiles the route tables into a classifier.
func NewClassifier(t Tables) *Classifier {
	c := &Classifier{
		publicExact:    make(map[string]struct{}, len(t.PublicExact)),
		memberPrefixes: append([]string(nil), t.MemberPrefixes...),
		staffPrefixes:  append([]string(nil), t.StaffPrefixes...),
	}
	for _, p := range t.PublicExact {
		c.publicExact[normalizePath(p)] = struct{}{}
	}
	for _, p := range t.PublicTemplates {
		c.publicTemplates = append(c.publicTemplates, compileTemplate(p))
	}
	for _, p := range t.MemberTemplates {
		c.memberTemplates = append(c.memberTemplates, compileTemplate(p))
	}
	return c
}

// Classify returns the access-control tier for a path.
//
// Evaluation order is fixed: public exact match, public templates, member
// prefixes and booking templates, staff prefixes, then ProtectedDefault.
// A path under a restricted prefix can only be public via an exact or
// template match, never via prefix overlap.
func (c *Classifier) Classify(path string) Class {
	path = normalizePath(path)

	if _, ok := c.publicExact[path]; ok {
		return Public
	}
	for _, t := range c.publicTemplates {
		if t.match(path) {
			return Public
		}
	}
	for _, t := range c.memberTemplates {
		if t.match(path) {
			return MemberOnly
		}
	}
	for _, p := range c.memberPrefixes {
		if hasPathPrefix(path, p) {
			return MemberOnly
		}
	}
	for _, p := range c.staffPrefixes {
		if hasPathPrefix(path, p) {
			return StaffOnly
		}
	}
	return ProtectedDefault
}

// template is a compiled path pattern where "{name}" segments match exactly
// one non-empty path segment.
type template struct {
	segments []string
}

func compileTemplate(pattern string) template {
	return template{segments: splitPath(normalizePath(pattern))}
}

func (t template) match(path string) bool {
	segs := splitPath(path)
	if len(segs) != len(t.segments) {
		return false
	}
	for i, want := range t.segments {
		if isParam(want) {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if segs[i] != want {
			return false
		}
	}
	return true
}

func isParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// hasPathPrefix matches whole segments only: "/member" covers "/member" and
// "/member/bookings" but not "/membership".
func hasPathPrefix(path, prefix string) bool {
	prefix = normalizePath(prefix)
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// normalizePath canonicalizes a path before classification: leading slash,
// no trailing slash, and dot-segments resolved. Resolving "." and ".." here
// is load-bearing: upstreams normalize dot-segments too, so "/x/../admin"
// must classify as what the upstream will actually serve ("/admin"), not
// fall through to ProtectedDefault.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
