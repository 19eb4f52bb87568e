package analytics

import (
	"sort"
	"time"

	"github.com/jsamuelsen/witness-archive/internal/domain"
)

// Group is one aggregated bucket: a dimension value and its row count.
type Group struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dimension selects which tag a breakdown groups by.
type Dimension string

const (
	// DimensionEmotion groups by the emotion tag.
	DimensionEmotion Dimension = "emotion"

	// DimensionTheme groups by the theme tag.
	DimensionTheme Dimension = "theme"

	// DimensionSource groups by the source label.
	DimensionSource Dimension = "source"
)

// Breakdown counts rows per value of the given dimension and returns groups
// sorted by count descending, ties broken alphabetically. Unset tags are
// counted under domain.UnknownTag. Empty input yields nil.
func Breakdown(rows []domain.Testimony, dim Dimension) []Group {
	if len(rows) == 0 {
		return nil
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, row := range rows {
		key := dimensionValue(row, dim)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{Key: key, Label: key, Count: counts[key]})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})

	return groups
}

func dimensionValue(row domain.Testimony, dim Dimension) string {
	switch dim {
	case DimensionEmotion:
		return row.EmotionOrUnknown()
	case DimensionTheme:
		return row.ThemeOrUnknown()
	case DimensionSource:
		if row.Source == "" {
			return domain.UnknownTag
		}
		return row.Source
	default:
		return domain.UnknownTag
	}
}

// TimelinePoint is the testimony count for one publication day.
type TimelinePoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Timeline counts rows per publication day, chronologically ascending.
// Empty input yields nil.
func Timeline(rows []domain.Testimony) []TimelinePoint {
	if len(rows) == 0 {
		return nil
	}

	counts := make(map[time.Time]int)
	for _, row := range rows {
		day := row.PublishedAt.Truncate(24 * time.Hour)
		counts[day]++
	}

	points := make([]TimelinePoint, 0, len(counts))
	for day, n := range counts {
		points = append(points, TimelinePoint{Date: day, Count: n})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return points
}

// UniqueValues returns the distinct values of a dimension in first-seen
// order, then sorted alphabetically. Used to populate selector widgets.
func UniqueValues(rows []domain.Testimony, dim Dimension) []string {
	seen := make(map[string]bool)
	var values []string
	for _, row := range rows {
		v := dimensionValue(row, dim)
		if v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	sort.Strings(values)

	return values
}

// DateBounds returns the earliest and latest publication dates in the table.
// ok is false for an empty table.
func DateBounds(rows []domain.Testimony) (min, max time.Time, ok bool) {
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false
	}

	min, max = rows[0].PublishedAt, rows[0].PublishedAt
	for _, row := range rows[1:] {
		if row.PublishedAt.Before(min) {
			min = row.PublishedAt
		}
		if row.PublishedAt.After(max) {
			max = row.PublishedAt
		}
	}

	return min, max, true
}

// CountOriginalURLs returns how many rows carry a real source link.
func CountOriginalURLs(rows []domain.Testimony) int {
	n := 0
	for _, row := range rows {
		if row.URLStatus == domain.URLStatusOriginal {
			n++
		}
	}
	return n
}
