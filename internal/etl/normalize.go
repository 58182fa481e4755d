package etl

import (
	"strings"
	"time"
)

// Tokens the feed uses where a date is simply absent. Anything else that
// fails the strict parse gets one more chance with the permissive layouts.
var absentDateTokens = map[string]struct{}{
	"":     {},
	"None": {},
	"none": {},
	"nan":  {},
	"NaN":  {},
	"<NA>": {},
	"NaT":  {},
}

var permissiveDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// CleanString trims the raw field and maps empty-after-trim to absent.
func CleanString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeDate turns the feed's inconsistent date tokens into canonical
// YYYY-MM-DD. Strict YYYYMMDD first, then the permissive layouts for
// stragglers, with years outside [1900, 2100] rejected as sentinel noise.
func NormalizeDate(s string) *string {
	s = strings.TrimSpace(s)

	if t, err := time.Parse("20060102", s); err == nil {
		return dateInRange(t)
	}
	if _, absent := absentDateTokens[s]; absent {
		return nil
	}
	for _, layout := range permissiveDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateInRange(t)
		}
	}
	return nil
}

func dateInRange(t time.Time) *string {
	if t.Year() < 1900 || t.Year() > 2100 {
		return nil
	}
	out := t.Format("2006-01-02")
	return &out
}

// PadCNPJBasico restores leading zeros lost in the text export. A value
// still not exactly 8 characters after padding is rejected, never kept.
func PadCNPJBasico(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) < 8 {
		s = strings.Repeat("0", 8-len(s)) + s
	}
	if len(s) != 8 {
		return nil
	}
	return &s
}

// ZeroSentinel cleans the field and additionally maps the all-zero
// placeholder the tax-regime feed uses for "no regime" to absent.
func ZeroSentinel(s string) *string {
	v := CleanString(s)
	if v == nil || *v == "00000000" {
		return nil
	}
	return v
}
