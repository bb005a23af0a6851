// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/refera/internal/platform/constants"
	"github.com/taibuivan/refera/internal/tenancy/scope"
)

/*
TestFromHost_Sentinels verifies that all "no tenant selected" edge forms
collapse to the root sentinel.
*/
func TestFromHost_Sentinels(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{"missing", ""},
		{"undefined_literal", "undefined"},
		{"null_literal", "null"},
		{"undefined_mixed_case", "UnDeFiNeD"},
		{"null_padded", "  null  "},
		{"whitespace_only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, constants.RootTenantID, scope.FromHost(tt.label))
		})
	}
}

/*
TestFromHost_Labels verifies normalization of real subdomain labels.
*/
func TestFromHost_Labels(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"plain_slug", "acme", "acme"},
		{"upper_case", "ACME", "acme"},
		{"padded", "  acme  ", "acme"},
		{"uuid_label", "0190cafe-0000-7000-8000-000000000001", "0190cafe-0000-7000-8000-000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scope.FromHost(tt.label))
		})
	}
}

/*
TestFromHost_Idempotent verifies that re-normalizing an already-normalized
value is a no-op, including the sentinel itself.
*/
func TestFromHost_Idempotent(t *testing.T) {
	for _, label := range []string{"acme", "ACME", "", "undefined"} {
		once := scope.FromHost(label)
		assert.Equal(t, once, scope.FromHost(once))
	}

	assert.True(t, scope.IsRoot(scope.FromHost(constants.RootTenantID)))
}
