// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package referral manages client referral records: the public intake that
creates them and the authenticated workflow that processes them.

Every record is pinned to exactly one agency at creation and never moves.
All authenticated access flows through the record authorizer; the public
surface exposes only submission and an exact-id status lookup that reveals
no client-identifying data.
*/
package referral

import "time"

// Status is the processing state of a referral.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusInReview Status = "IN_REVIEW"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusClosed   Status = "CLOSED"
)

// IsValid checks if the status is one of the allowed workflow states.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusAccepted, StatusDeclined, StatusClosed:
		return true
	}
	return false
}

// Referral is a single client referral owned by one agency.
type Referral struct {
	ID string `json:"id"` // UUIDv7, doubles as the public status handle

	// AgencyID is immutable after creation. There is no transfer operation.
	AgencyID string `json:"agency_id"`

	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone,omitempty"`
	Summary     string `json:"summary"`

	Status Status `json:"status"`

	// Note is internal workflow commentary, never exposed publicly.
	Note string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusView is the public lookup projection. No client fields: knowing a
// referral id must reveal progress, not identity.
type StatusView struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows authenticated listing.
type Filter struct {
	Status Status
	Query  string
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldClientName  = "client_name"
	FieldClientEmail = "client_email"
	FieldClientPhone = "client_phone"
	FieldSummary     = "summary"
	FieldStatus      = "status"
	FieldNote        = "note"
)
