// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package directory

import "context"

// # Agency Data Access

// Repository defines the data access contract for directory entries.
type Repository interface {

	/*
		FindByID returns the agency with the given stable id.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Agency: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Agency, error)

	/*
		FindBySlug returns the agency with the given subdomain alias.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Agency: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Agency, error)

	/*
		Create persists a brand-new agency to the directory.

		Parameters:
		  - context: context.Context
		  - agency: *Agency

		Returns:
		  - error: Unique-constraint or persistence failures
	*/
	Create(context context.Context, agency *Agency) error

	/*
		UpdateSlug replaces only the agency's subdomain alias.

		Parameters:
		  - context: context.Context
		  - id: string
		  - slug: string

		Returns:
		  - error: Unique-constraint or persistence failures
	*/
	UpdateSlug(context context.Context, id, slug string) error

	/*
		UpdateAccessLists replaces the membership signal lists.

		Parameters:
		  - context: context.Context
		  - id: string
		  - emails: []string (exact-address allow-list, pre-normalized)
		  - domains: []string (domain allow-list, pre-normalized)

		Returns:
		  - error: Persistence failures
	*/
	UpdateAccessLists(context context.Context, id string, emails, domains []string) error

	/*
		TouchLastActive refreshes the agency's last-active timestamp.

		Called fire-and-forget from the session resolver; failures are
		logged by the caller and never surface to the request path.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastActive(context context.Context, id string) error
}
