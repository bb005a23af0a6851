// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit records security-relevant events: authorization denials,
sensitive reads, and session lifecycle.

Recording is fire-and-forget. The hot request path hands an event to a
buffered recorder and moves on; persistence happens on a background worker.
A full buffer drops the event with a warning rather than blocking or failing
the request that produced it.
*/
package audit

import (
	"context"
	"time"

	"github.com/taibuivan/refera/pkg/uuidv7"
)

// Canonical action names. Dotted, lower-case, subject-first.
const (
	ActionAccessDenied   = "authz.access_denied"
	ActionSensitiveRead  = "record.sensitive_read"
	ActionSessionCreated = "session.created"
	ActionSessionRevoked = "session.revoked"
)

// Event is a single audit log entry.
type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actor_id"`
	TenantID   string    `json:"tenant_id"`
	ResourceID string    `json:"resource_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEvent stamps an id and timestamp onto a new entry.
func NewEvent(action, actorID, tenantID string) Event {
	return Event{
		ID:        uuidv7.New(),
		Action:    action,
		ActorID:   actorID,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
	}
}

// Sink accepts events for asynchronous persistence.
type Sink interface {
	// Record never blocks and never fails the caller.
	Record(event Event)
}

// Store persists events. Implementations may batch.
type Store interface {
	Insert(ctx context.Context, event Event) error
}
