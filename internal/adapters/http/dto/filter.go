package dto

import (
	"time"

	"github.com/jsamuelsen/witness-archive/internal/analytics"
	"github.com/jsamuelsen/witness-archive/internal/domain"
)

// filterDateLayout is the wire format for filter date bounds.
const filterDateLayout = "2006-01-02"

// FilterRequest carries the filter dimensions from query parameters.
// Every field is optional; an empty request selects the whole table.
// Dimension parameters repeat for multi-select (?emotion=fear&emotion=grief).
type FilterRequest struct {
	Emotions  []string `form:"emotion"    json:"emotion"`
	Themes    []string `form:"theme"      json:"theme"`
	Sources   []string `form:"source"     json:"source"`
	URLStatus string   `form:"url_status" json:"url_status" validate:"omitempty,oneof=all original missing"`
	From      string   `form:"from"       json:"from"       validate:"omitempty,datetime=2006-01-02"`
	To        string   `form:"to"         json:"to"         validate:"omitempty,datetime=2006-01-02"`
}

// ToFilter converts the request into the analytics filter.
// Assumes the request already passed validation; date fields that fail to
// parse are treated as unset rather than erroring.
func (r *FilterRequest) ToFilter() analytics.Filter {
	f := analytics.Filter{
		Emotions:  r.Emotions,
		Themes:    r.Themes,
		Sources:   r.Sources,
		URLStatus: analytics.URLFilter(r.URLStatus),
	}

	if t, err := time.Parse(filterDateLayout, r.From); err == nil {
		f.From = t
	}

	if t, err := time.Parse(filterDateLayout, r.To); err == nil {
		f.To = t
	}

	return f
}

// ListTestimoniesRequest combines filter and pagination query parameters
// for the testimony list endpoint.
type ListTestimoniesRequest struct {
	FilterRequest
	PaginationRequest
}

// TestimonyResponse is the HTTP representation of one testimony.
type TestimonyResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Narrative   string `json:"narrative"`
	Emotion     string `json:"emotion"`
	Theme       string `json:"theme"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url,omitempty"`
	URLStatus   string `json:"urlStatus"`
}

// ToTestimonyResponse converts a domain testimony to its HTTP shape.
func ToTestimonyResponse(t *domain.Testimony) *TestimonyResponse {
	return &TestimonyResponse{
		ID:          t.ID,
		Title:       t.Title,
		Narrative:   t.Narrative,
		Emotion:     t.EmotionOrUnknown(),
		Theme:       t.ThemeOrUnknown(),
		Source:      t.Source,
		PublishedAt: t.PublishedAt.Format(filterDateLayout),
		URL:         t.URL,
		URLStatus:   string(t.URLStatus),
	}
}

// OverviewResponse carries the dashboard headline metrics.
type OverviewResponse struct {
	TotalRows    int `json:"totalRows"`
	FilteredRows int `json:"filteredRows"`
	OriginalURLs int `json:"originalUrls"`
}

// ChartResponse wraps a render-ready chart payload. Matches is the filtered
// row count behind the chart; a zero count ships an empty series list so the
// frontend renders a "no results" state instead of failing.
type ChartResponse struct {
	Matches int                    `json:"matches"`
	Groups  []analytics.Group      `json:"groups,omitempty"`
	Chart   *analytics.ChartConfig `json:"chart,omitempty"`
	Empty   bool                   `json:"empty"`
}

// NewChartResponse builds the chart envelope from an aggregation result.
func NewChartResponse(matches int, groups []analytics.Group, chart *analytics.ChartConfig) *ChartResponse {
	return &ChartResponse{
		Matches: matches,
		Groups:  groups,
		Chart:   chart,
		Empty:   chart == nil,
	}
}

// FilterOptionsResponse lists the selectable values per filter dimension,
// used by the frontend to populate its selector widgets.
type FilterOptionsResponse struct {
	Emotions    []string `json:"emotions"`
	Themes      []string `json:"themes"`
	Sources     []string `json:"sources"`
	URLStatuses []string `json:"urlStatuses"`
	DateFrom    string   `json:"dateFrom,omitempty"`
	DateTo      string   `json:"dateTo,omitempty"`
}
