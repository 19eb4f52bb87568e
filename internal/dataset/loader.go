// Package dataset loads the testimony table from its flat CSV source.
// Loading happens once at startup; the resulting table is immutable.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jsamuelsen/witness-archive/internal/domain"
)

// Date layouts tried in order when parsing the publication date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Report summarizes a completed load. Dropped rows are not an error: rows
// missing a narrative or carrying an unparseable date are excluded from the
// table but counted here so the gap is visible.
type Report struct {
	Source       string
	TotalRows    int
	LoadedRows   int
	DroppedRows  int
	OriginalURLs int
}

// Loader parses CSV data into the in-memory testimony table.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger defaults to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset.Loader"))}
}

// LoadFile reads and parses the CSV file at path.
// Returns a domain.LoadError if the file is missing or malformed.
func (l *Loader) LoadFile(path string) ([]domain.Testimony, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, domain.NewLoadError(path, "opening file", err)
	}
	defer func() { _ = f.Close() }()

	return l.Parse(f, path)
}

// Parse reads CSV data from r. The source string identifies the input in
// errors and logs (file path or URL).
//
// Failure conditions (all domain.LoadError): unreadable header, missing
// required columns, zero usable rows. Individual rows with an empty
// narrative or unparseable date are dropped and counted in the Report.
func (l *Loader) Parse(r io.Reader, source string) ([]domain.Testimony, *Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows tolerated; short rows read as empty cells

	header, err := reader.Read()
	if err != nil {
		return nil, nil, domain.NewLoadError(source, "reading CSV header", err)
	}

	cols := resolveColumns(header)
	if missing := cols.missingRequired(); len(missing) > 0 {
		return nil, nil, domain.NewLoadError(source,
			"missing required column(s): "+strings.Join(missing, "; "), nil)
	}

	report := &Report{Source: source}
	var rows []domain.Testimony

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, domain.NewLoadError(source, "reading CSV row", err)
		}

		report.TotalRows++

		row, ok := l.parseRow(record, cols, report.TotalRows)
		if !ok {
			report.DroppedRows++
			continue
		}

		if row.URLStatus == domain.URLStatusOriginal {
			report.OriginalURLs++
		}
		rows = append(rows, row)
	}

	report.LoadedRows = len(rows)

	if report.LoadedRows == 0 {
		return nil, nil, domain.NewLoadError(source, "no usable rows in dataset", nil)
	}

	l.logger.Info("dataset loaded",
		slog.String("source", source),
		slog.Int("rows", report.LoadedRows),
		slog.Int("dropped", report.DroppedRows),
		slog.Int("original_urls", report.OriginalURLs),
	)

	return rows, report, nil
}

// parseRow converts one CSV record into a Testimony.
// Returns ok=false when the row cannot satisfy the table invariants
// (non-empty narrative, valid date).
func (l *Loader) parseRow(record []string, cols columnIndex, rowNum int) (domain.Testimony, bool) {
	narrative := cell(record, cols.narrative)
	if narrative == "" {
		l.logger.Debug("dropping row with empty narrative", slog.Int("row", rowNum))
		return domain.Testimony{}, false
	}

	published, ok := parseDate(cell(record, cols.date))
	if !ok {
		l.logger.Debug("dropping row with unparseable date",
			slog.Int("row", rowNum),
			slog.String("value", cell(record, cols.date)),
		)
		return domain.Testimony{}, false
	}

	id := cell(record, cols.id)
	if id == "" {
		id = fmt.Sprintf("t-%d", rowNum)
	}

	url := cell(record, cols.url)

	return domain.Testimony{
		ID:          id,
		Title:       cell(record, cols.title),
		Narrative:   narrative,
		Emotion:     normalizeTag(cell(record, cols.emotion)),
		Theme:       normalizeTag(cell(record, cols.theme)),
		Source:      normalizeTag(cell(record, cols.source)),
		PublishedAt: published,
		URL:         url,
		URLStatus:   classifyURL(url),
	}, true
}

// parseDate tries each known layout against the raw value.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// classifyURL flags a link as original only when it is a real http(s) URL.
// Anything else (empty, "N/A", bare domains) counts as missing/dummy.
func classifyURL(url string) domain.URLStatus {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return domain.URLStatusOriginal
	}
	return domain.URLStatusMissing
}

// normalizeTag maps empty tag cells to the unknown marker.
func normalizeTag(v string) string {
	if v == "" {
		return domain.UnknownTag
	}
	return v
}
