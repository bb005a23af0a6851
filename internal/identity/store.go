// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"time"
)

// # Session Registry Interface

// SessionRegistry tracks which session ids are live. A session artifact is
// only honored while its id is present here, which is what makes revocation
// effective before the artifact's own expiry.
type SessionRegistry interface {

	/*
		Put registers a session id for the given subject with a TTL.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string
		  - subjectID: string
		  - ttl: time.Duration

		Returns:
		  - error: Execution errors
	*/
	Put(ctx context.Context, sessionID, subjectID string, ttl time.Duration) error

	/*
		IsActive reports whether the session id is still registered.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - bool: true while registered and unexpired
		  - error: Connectivity errors only; absence is (false, nil)
	*/
	IsActive(ctx context.Context, sessionID string) (bool, error)

	/*
		Revoke removes the session id. Removing an absent id is not an error.

		Parameters:
		  - ctx: context.Context
		  - sessionID: string

		Returns:
		  - error: Execution errors
	*/
	Revoke(ctx context.Context, sessionID string) error
}
