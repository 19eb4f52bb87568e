// Package analytics implements the filter and aggregation pipeline over the
// loaded testimony table. Every request recomputes filter+aggregate from the
// immutable table; all functions here are pure and total over valid input.
package analytics

import (
	"strings"
	"time"

	"github.com/jsamuelsen/witness-archive/internal/domain"
)

// URLFilter narrows rows by their source-link status.
type URLFilter string

const (
	// URLFilterAll keeps every row regardless of link status.
	URLFilterAll URLFilter = "all"

	// URLFilterOriginal keeps rows that carry a real source link.
	URLFilterOriginal URLFilter = "original"

	// URLFilterMissing keeps rows whose link is absent or a dummy.
	URLFilterMissing URLFilter = "missing"
)

// Filter holds the user-selected constraints for each dimension.
// The zero value matches everything. Within a dimension the selected values
// are OR-combined; across dimensions the constraints are AND-combined.
type Filter struct {
	// Emotions restricts to rows whose emotion tag is in the set.
	Emotions []string

	// Themes restricts to rows whose theme tag is in the set.
	Themes []string

	// Sources restricts to rows whose source label is in the set.
	Sources []string

	// URLStatus restricts by link status. Empty means URLFilterAll.
	URLStatus URLFilter

	// From, when non-zero, excludes rows published before it (inclusive).
	From time.Time

	// To, when non-zero, excludes rows published after it (inclusive).
	To time.Time
}

// IsEmpty reports whether the filter imposes no constraints.
func (f Filter) IsEmpty() bool {
	return len(f.Emotions) == 0 &&
		len(f.Themes) == 0 &&
		len(f.Sources) == 0 &&
		(f.URLStatus == "" || f.URLStatus == URLFilterAll) &&
		f.From.IsZero() &&
		f.To.IsZero()
}

// Apply returns the rows matching every constraint, preserving input order.
// An empty result is valid; callers render it as a "no results" state.
func Apply(rows []domain.Testimony, f Filter) []domain.Testimony {
	if f.IsEmpty() {
		return rows
	}

	emotions := toLowerSet(f.Emotions)
	themes := toLowerSet(f.Themes)
	sources := toLowerSet(f.Sources)

	out := make([]domain.Testimony, 0, len(rows))
	for _, row := range rows {
		if !matchSet(emotions, row.EmotionOrUnknown()) {
			continue
		}
		if !matchSet(themes, row.ThemeOrUnknown()) {
			continue
		}
		if !matchSet(sources, row.Source) {
			continue
		}
		if !matchURLStatus(f.URLStatus, row) {
			continue
		}
		if !matchDateRange(f.From, f.To, row.PublishedAt) {
			continue
		}
		out = append(out, row)
	}

	return out
}

// matchSet reports whether value passes a dimension constraint.
// A nil set means the dimension is unconstrained.
func matchSet(set map[string]bool, value string) bool {
	if set == nil {
		return true
	}
	return set[strings.ToLower(value)]
}

func matchURLStatus(f URLFilter, row domain.Testimony) bool {
	switch f {
	case URLFilterOriginal:
		return row.URLStatus == domain.URLStatusOriginal
	case URLFilterMissing:
		return row.URLStatus == domain.URLStatusMissing
	default:
		return true
	}
}

// matchDateRange checks the inclusive [from, to] window at day granularity.
func matchDateRange(from, to, published time.Time) bool {
	day := published.Truncate(24 * time.Hour)
	if !from.IsZero() && day.Before(from.Truncate(24*time.Hour)) {
		return false
	}
	if !to.IsZero() && day.After(to.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// toLowerSet converts a string slice to a lowercase lookup set.
// Returns nil for an empty slice so callers can treat nil as "no constraint".
func toLowerSet(items []string) map[string]bool {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
