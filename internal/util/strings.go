package util

import "strings"

// OnlyDigits strips everything but 0-9, so formatted CNPJs
// ("12.345.678/0001-99") and bare ones compare equal.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
