// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package membership computes which agencies a verified email belongs to.

Membership is derived, never stored: there is no join table. An email belongs
to an agency when any of three signals on the agency row matches — the email
appears in authorizedemails, the email's domain appears in authorizeddomains,
or the email equals the owner email. The index unions the three signal
queries and deduplicates by agency id.
*/
package membership

import (
	"context"

	"github.com/taibuivan/refera/internal/tenancy/directory"
)

// # Repository Interface

// Repository defines the per-signal agency lookups backing the index.
type Repository interface {

	/*
		FindByAuthorizedEmail returns agencies whose authorizedemails list
		contains the exact address.

		Parameters:
		  - ctx: context.Context
		  - email: string (already normalized)

		Returns:
		  - []*directory.Agency: Matching agencies, possibly empty
		  - error: Database errors
	*/
	FindByAuthorizedEmail(ctx context.Context, email string) ([]*directory.Agency, error)

	/*
		FindByAuthorizedDomain returns agencies whose authorizeddomains list
		contains the domain.

		Parameters:
		  - ctx: context.Context
		  - domain: string (already normalized, no leading "@")

		Returns:
		  - []*directory.Agency: Matching agencies, possibly empty
		  - error: Database errors
	*/
	FindByAuthorizedDomain(ctx context.Context, domain string) ([]*directory.Agency, error)

	/*
		FindByOwnerEmail returns agencies owned by the exact address.

		Parameters:
		  - ctx: context.Context
		  - email: string (already normalized)

		Returns:
		  - []*directory.Agency: Matching agencies, possibly empty
		  - error: Database errors
	*/
	FindByOwnerEmail(ctx context.Context, email string) ([]*directory.Agency, error)
}
