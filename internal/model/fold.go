// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the canonical case-folded form of s used for all name
// and email comparisons. Unicode folding, not ToLower: guest names
// are not ASCII-only. A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
