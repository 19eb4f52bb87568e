// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jsamuelsen/witness-archive/internal/analytics"
	"github.com/jsamuelsen/witness-archive/internal/domain"
	"github.com/jsamuelsen/witness-archive/internal/platform/logging"
	"github.com/jsamuelsen/witness-archive/internal/ports"
)

// ArchiveService orchestrates the dashboard use cases: overview metrics,
// filtered testimony listing, and chart-ready aggregations. Every call
// recomputes from the immutable table; there is no cached derived state.
type ArchiveService struct {
	repo   ports.TestimonyRepository
	logger *slog.Logger
}

// ArchiveServiceConfig contains configuration for the archive service.
type ArchiveServiceConfig struct {
	Repository ports.TestimonyRepository
	Logger     *slog.Logger
}

// NewArchiveService creates the archive service.
// Panics if Repository is nil. Defaults logger to slog.Default() if nil.
func NewArchiveService(cfg ArchiveServiceConfig) *ArchiveService {
	if cfg.Repository == nil {
		panic("ArchiveService: Repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ArchiveService{
		repo:   cfg.Repository,
		logger: logger.With(slog.String("component", "app.ArchiveService")),
	}
}

// Overview holds the dashboard headline metrics.
type Overview struct {
	TotalRows    int
	FilteredRows int
	OriginalURLs int
}

// Overview computes headline counts for the current filter selection.
func (s *ArchiveService) Overview(ctx context.Context, filter analytics.Filter) (*Overview, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := analytics.Apply(rows, filter)

	return &Overview{
		TotalRows:    len(rows),
		FilteredRows: len(filtered),
		OriginalURLs: analytics.CountOriginalURLs(rows),
	}, nil
}

// ListQuery describes a page of the filtered testimony list.
// AfterTime/AfterID position the cursor; zero values mean the first page.
type ListQuery struct {
	Filter    analytics.Filter
	AfterTime time.Time
	AfterID   string
	Limit     int
}

// ListResult is one page of filtered testimonies, newest first.
type ListResult struct {
	Items         []domain.Testimony
	FilteredTotal int
	HasMore       bool
}

// ListTestimonies returns a page of the filtered table sorted newest-first
// (ties broken by ID so cursors are stable). An empty page is a valid
// result, not an error.
func (s *ArchiveService) ListTestimonies(ctx context.Context, q ListQuery) (*ListResult, error) {
	logger := logging.FromContext(ctx)

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := analytics.Apply(rows, q.Filter)

	// Sort a copy; the repository slice is shared and read-only.
	sorted := make([]domain.Testimony, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	start := 0
	if !q.AfterTime.IsZero() {
		start = cursorPosition(sorted, q.AfterTime, q.AfterID)
	}

	end := len(sorted)
	hasMore := false
	if q.Limit > 0 && start+q.Limit < len(sorted) {
		end = start + q.Limit
		hasMore = true
	}

	logger.DebugContext(ctx, "listed testimonies",
		slog.Int("filtered", len(sorted)),
		slog.Int("page_size", end-start),
		slog.Bool("has_more", hasMore),
	)

	return &ListResult{
		Items:         sorted[start:end],
		FilteredTotal: len(sorted),
		HasMore:       hasMore,
	}, nil
}

// cursorPosition finds the index of the first row strictly after the cursor
// in (PublishedAt desc, ID asc) order.
func cursorPosition(sorted []domain.Testimony, afterTime time.Time, afterID string) int {
	for i, row := range sorted {
		if row.PublishedAt.Before(afterTime) {
			return i
		}
		if row.PublishedAt.Equal(afterTime) && row.ID > afterID {
			return i
		}
	}
	return len(sorted)
}

// GetTestimony retrieves a single testimony by ID.
func (s *ArchiveService) GetTestimony(ctx context.Context, id string) (*domain.Testimony, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "cannot be empty")
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return row, nil
}

// ChartResult pairs a render-ready chart with the matched row count.
// Chart is nil when no rows match; handlers render that as "no results".
type ChartResult struct {
	Matches int
	Groups  []analytics.Group
	Chart   *analytics.ChartConfig
}

// EmotionBreakdown aggregates the filtered rows per emotion tag.
// chartType selects "bar" (default) or "pie" rendering.
func (s *ArchiveService) EmotionBreakdown(ctx context.Context, filter analytics.Filter, chartType string) (*ChartResult, error) {
	return s.breakdown(ctx, filter, analytics.DimensionEmotion, chartType, "Emotion distribution")
}

// ThemeBreakdown aggregates the filtered rows per theme tag.
func (s *ArchiveService) ThemeBreakdown(ctx context.Context, filter analytics.Filter, chartType string) (*ChartResult, error) {
	return s.breakdown(ctx, filter, analytics.DimensionTheme, chartType, "Theme distribution")
}

func (s *ArchiveService) breakdown(ctx context.Context, filter analytics.Filter, dim analytics.Dimension, chartType, title string) (*ChartResult, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := analytics.Apply(rows, filter)
	groups := analytics.Breakdown(filtered, dim)

	var chart *analytics.ChartConfig
	if chartType == "pie" {
		chart = analytics.BuildPieChart(title, groups)
	} else {
		chart = analytics.BuildBarChart(title, xAxisLabel(dim), groups)
	}

	return &ChartResult{Matches: len(filtered), Groups: groups, Chart: chart}, nil
}

func xAxisLabel(dim analytics.Dimension) string {
	switch dim {
	case analytics.DimensionEmotion:
		return "Emotion"
	case analytics.DimensionTheme:
		return "Theme"
	case analytics.DimensionSource:
		return "Source"
	default:
		return ""
	}
}

// Timeline aggregates the filtered rows per publication day.
func (s *ArchiveService) Timeline(ctx context.Context, filter analytics.Filter) (*ChartResult, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := analytics.Apply(rows, filter)
	points := analytics.Timeline(filtered)
	chart := analytics.BuildLineChart("Testimonies over time", points)

	return &ChartResult{Matches: len(filtered), Chart: chart}, nil
}

// FilterOptions holds the selectable values for each filter dimension,
// used by the frontend to populate its selector widgets.
type FilterOptions struct {
	Emotions    []string
	Themes      []string
	Sources     []string
	URLStatuses []string
	DateFrom    time.Time
	DateTo      time.Time
}

// FilterOptions returns the distinct values per dimension and the date
// bounds of the full table.
func (s *ArchiveService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	min, max, _ := analytics.DateBounds(rows)

	return &FilterOptions{
		Emotions: analytics.UniqueValues(rows, analytics.DimensionEmotion),
		Themes:   analytics.UniqueValues(rows, analytics.DimensionTheme),
		Sources:  analytics.UniqueValues(rows, analytics.DimensionSource),
		URLStatuses: []string{
			string(analytics.URLFilterAll),
			string(analytics.URLFilterOriginal),
			string(analytics.URLFilterMissing),
		},
		DateFrom: min,
		DateTo:   max,
	}, nil
}
