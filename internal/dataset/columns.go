package dataset

import "strings"

// Column aliases accepted in the CSV header. Source files come from several
// scraping passes with inconsistent headers, so each logical column resolves
// to the first alias present, checked in order.
var (
	narrativeAliases = []string{
		"Quote", "Excerpt", "Snippet", "Summary", "Full Text", "Text",
		"Narrative", "Content",
	}

	urlAliases = []string{"URL", "Url", "url", "Link", "Article URL"}

	dateAliases = []string{"Publication Date", "Date", "Published"}

	titleAliases   = []string{"Title", "Headline"}
	emotionAliases = []string{"Emotion"}
	themeAliases   = []string{"Theme"}
	sourceAliases  = []string{"Source", "Outlet", "Publication"}
	idAliases      = []string{"ID", "Id", "id"}
)

// columnIndex maps each logical field to its position in the CSV header.
// A value of -1 means the column is absent.
type columnIndex struct {
	id        int
	title     int
	narrative int
	emotion   int
	theme     int
	source    int
	date      int
	url       int
}

// resolveColumns matches the header row against the known aliases.
func resolveColumns(header []string) columnIndex {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.TrimSpace(h)] = i
	}

	find := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				return i
			}
		}
		return -1
	}

	return columnIndex{
		id:        find(idAliases),
		title:     find(titleAliases),
		narrative: find(narrativeAliases),
		emotion:   find(emotionAliases),
		theme:     find(themeAliases),
		source:    find(sourceAliases),
		date:      find(dateAliases),
		url:       find(urlAliases),
	}
}

// missingRequired names the required columns absent from the header.
// Narrative and publication date are required; tags and URL are optional.
func (c columnIndex) missingRequired() []string {
	var missing []string
	if c.narrative < 0 {
		missing = append(missing, "narrative (one of "+strings.Join(narrativeAliases, ", ")+")")
	}
	if c.date < 0 {
		missing = append(missing, "publication date (one of "+strings.Join(dateAliases, ", ")+")")
	}
	return missing
}

// cell returns the trimmed value at index i, or "" when the column is absent
// or the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
