// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/refera/pkg/slug"
)

/*
TestFrom covers the slug pipeline against agency-name shapes.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Acme", "acme"},
		{"spaces", "Riverside Care Network", "riverside-care-network"},
		{"accents", "Café Santé", "cafe-sante"},
		{"punctuation", "Acme & Sons, Inc.", "acme-sons-inc"},
		{"multiple_hyphens", "a --- b", "a-b"},
		{"leading_trailing", "  Acme  ", "acme"},
		{"digits", "Agency 42", "agency-42"},
		{"only_symbols", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
