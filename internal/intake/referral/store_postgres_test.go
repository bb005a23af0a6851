// Copyright (c) 2026 Refera. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package referral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestEscapeLike verifies that search text containing LIKE metacharacters is
neutralized, so a user typing "%" searches for a literal percent sign instead
of widening the pattern to match every record.
*/
func TestEscapeLike(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "kim lee", "kim lee"},
		{"percent", "100%", `100\%`},
		{"lone wildcard", "%", `\%`},
		{"underscore", "kim_lee", `kim\_lee`},
		{"backslash first", `a\%b`, `a\\\%b`},
		{"empty", "", ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, escapeLike(c.input))
		})
	}
}
