package analytics

// Render-ready chart payloads. The shapes mirror what charting frontends
// consume directly: a chart type, axis labels, and one or more series of
// label/value points. The service never renders pixels itself.

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// dateLabel is the label format for timeline points.
const dateLabel = "2006-01-02"

// BuildBarChart produces a bar chart from aggregated groups.
// Returns nil for empty input; handlers map nil to a "no results" payload.
func BuildBarChart(title, xAxis string, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	return &ChartConfig{
		ChartType:  "bar",
		Title:      title,
		XAxis:      xAxis,
		YAxis:      "Count",
		Series:     []ChartSeries{{Name: "Count", Data: groupPoints(groups)}},
		Colors:     assignColors(1),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildPieChart produces a pie chart from aggregated groups.
func BuildPieChart(title string, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	return &ChartConfig{
		ChartType:  "pie",
		Title:      title,
		Series:     []ChartSeries{{Name: title, Data: groupPoints(groups)}},
		Colors:     assignColors(len(groups)),
		ShowLegend: true,
		ShowGrid:   false,
	}
}

// BuildLineChart produces a timeline line chart from per-day counts.
func BuildLineChart(title string, points []TimelinePoint) *ChartConfig {
	if len(points) == 0 {
		return nil
	}

	data := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		data = append(data, ChartPoint{
			Label: p.Date.Format(dateLabel),
			Value: float64(p.Count),
		})
	}

	return &ChartConfig{
		ChartType:  "line",
		Title:      title,
		XAxis:      "Publication Date",
		YAxis:      "Count",
		Series:     []ChartSeries{{Name: "Testimonies", Data: data}},
		Colors:     assignColors(1),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func groupPoints(groups []Group) []ChartPoint {
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{Label: g.Label, Value: float64(g.Count)})
	}
	return points
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
