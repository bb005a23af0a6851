// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package referral

import "context"

// # Repository Interface

// Repository defines the persistence contract for referral records. Every
// read and write except FindStatus is keyed by (agencyID, id) so a record
// can never be reached from outside its owning tenant.
type Repository interface {

	/*
		Create persists a new referral.

		Parameters:
		  - ctx: context.Context
		  - referral: *Referral

		Returns:
		  - error: Persistence failures
	*/
	Create(ctx context.Context, referral *Referral) error

	/*
		FindByID retrieves one referral within an agency.

		Parameters:
		  - ctx: context.Context
		  - agencyID: string
		  - id: string

		Returns:
		  - *Referral: Hydrated entity
		  - error: dberr.ErrNotFound or database errors
	*/
	FindByID(ctx context.Context, agencyID, id string) (*Referral, error)

	/*
		FindStatus retrieves the public status projection of one referral.

		Parameters:
		  - ctx: context.Context
		  - agencyID: string
		  - id: string

		Returns:
		  - *StatusView: Projection without client fields
		  - error: dberr.ErrNotFound or database errors
	*/
	FindStatus(ctx context.Context, agencyID, id string) (*StatusView, error)

	/*
		ListByAgency retrieves a page of referrals for an agency, newest first.

		Parameters:
		  - ctx: context.Context
		  - agencyID: string
		  - filter: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Referral: Page of records
		  - int: Total matching count for pagination
		  - error: Database errors
	*/
	ListByAgency(ctx context.Context, agencyID string, filter Filter, limit, offset int) ([]*Referral, int, error)

	/*
		UpdateStatus changes a referral's workflow state and note.

		Parameters:
		  - ctx: context.Context
		  - agencyID: string
		  - id: string
		  - status: Status
		  - note: string

		Returns:
		  - error: dberr.ErrNotFound or execution errors
	*/
	UpdateStatus(ctx context.Context, agencyID, id string, status Status, note string) error

	/*
		Delete removes a referral.

		Parameters:
		  - ctx: context.Context
		  - agencyID: string
		  - id: string

		Returns:
		  - error: dberr.ErrNotFound or execution errors
	*/
	Delete(ctx context.Context, agencyID, id string) error
}
