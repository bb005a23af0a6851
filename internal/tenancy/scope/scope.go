// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scope derives the active tenant id for a request from its host label.

The edge layer terminates wildcard DNS (*.refera.app) and forwards the
subdomain label in a header; this package only normalizes that pre-derived
label. It never parses raw Host headers and never consults a session — the
scope is a pure function of the request, combined with the acting principal
only later by the record authorizer.

# Sentinel Normalization

Three equivalent "no tenant selected" forms arrive from the edge: a missing
header, the literal string "undefined", and the literal string "null" (both
literals are artifacts of the edge middleware serializing an unset value).
All three normalize to [constants.RootTenantID].
*/
package scope

import (
	"strings"

	"github.com/taibuivan/refera/internal/platform/constants"
)

// FromHost maps an edge-provided host label to a tenant id.
//
// Pure function: no storage access, no session. The returned value is an
// id-or-slug; callers resolve it through the tenant directory.
func FromHost(hostLabel string) string {
	label := strings.ToLower(strings.TrimSpace(hostLabel))

	switch label {
	case "", "undefined", "null":
		return constants.RootTenantID
	}

	return label
}

// IsRoot reports whether tenantID is the unscoped/root sentinel.
func IsRoot(tenantID string) bool {
	return tenantID == constants.RootTenantID
}
