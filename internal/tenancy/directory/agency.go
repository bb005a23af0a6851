// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package directory implements the tenant directory: the authoritative registry
of subscribing agencies keyed by a stable id with an optional human-chosen
slug used for subdomain routing.

# Core Responsibility

  - Identity: Defines the [Agency] entity, the unit of data isolation.
  - Resolution: Maps an id-or-slug from the request's host label to exactly
    one agency record, degrading to a placeholder instead of failing.
  - Provisioning: Creates new directory entries with a first owner email.

This layer is the "Truth" about which agencies exist. Membership computation
and record authorization build on top of it.
*/
package directory

import "time"

// # Subscription States

// SubscriptionStatus represents the billing state of an agency.
//
// Billing-provider integration lives outside this core; the status field is
// the only thing that crosses the boundary.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "ACTIVE"
	StatusCancelled SubscriptionStatus = "CANCELLED"
	StatusPastDue   SubscriptionStatus = "PAST_DUE"
	StatusSuspended SubscriptionStatus = "SUSPENDED"
)

// IsValid reports whether the status is one of the known states.
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusPastDue, StatusSuspended:
		return true
	}
	return false
}

// # Core Entity

// Agency represents one subscribing agency — the unit of tenant isolation.
//
// # Identity
//
// ID is assigned at provisioning time and immutable. Slug is the mutable,
// user-chosen subdomain alias; it defaults to ID when unset and is globally
// unique across the directory.
type Agency struct {
	ID   string `json:"id"` // UUIDv7, immutable
	Slug string `json:"slug"`
	Name string `json:"name"`

	// OwnerEmail is always implicitly a member (third membership signal).
	OwnerEmail string `json:"owner_email"`

	Status SubscriptionStatus `json:"status"`

	// AuthorizedEmails grants membership by exact address (first signal).
	AuthorizedEmails []string `json:"authorized_emails"`

	// AuthorizedDomains grants membership by email domain (second signal).
	// Public consumer provider domains are never honored here; the
	// membership index enforces the denylist before querying.
	AuthorizedDomains []string `json:"authorized_domains"`

	// Exists is synthetic: true only when a directory row was actually
	// found. Placeholder records carry false so callers never branch on a
	// nil agency.
	Exists bool `json:"exists"`

	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicProfile is the branding subset safe to expose on the unauthenticated
// intake form shell. Authorization lists and the owner email never leave the
// authenticated surface.
type PublicProfile struct {
	ID     string             `json:"id"`
	Slug   string             `json:"slug"`
	Name   string             `json:"name"`
	Status SubscriptionStatus `json:"status"`
	Exists bool               `json:"exists"`
}

// Public returns the branding subset of the agency.
func (a *Agency) Public() PublicProfile {
	return PublicProfile{
		ID:     a.ID,
		Slug:   a.Slug,
		Name:   a.Name,
		Status: a.Status,
		Exists: a.Exists,
	}
}

// # Field Identifiers

const (
	FieldName       = "name"
	FieldOwnerEmail = "owner_email"
	FieldSlug       = "slug"
	FieldEmails     = "authorized_emails"
	FieldDomains    = "authorized_domains"
)
