// Package domain contains core business entities and rules.
package domain

import "time"

// URLStatus classifies the source link attached to a testimony.
type URLStatus string

const (
	// URLStatusOriginal means the row carries a real http(s) source link.
	URLStatusOriginal URLStatus = "original"

	// URLStatusMissing means the link is absent or a dummy placeholder.
	URLStatusMissing URLStatus = "missing"
)

// UnknownTag is the value assigned to emotion/theme/source tags that are
// absent in the source data. Tags are optional; narrative and date are not.
const UnknownTag = "unknown"

// Testimony is one recorded narrative entry with its metadata tags.
// Instances are immutable after the dataset load.
type Testimony struct {
	// ID uniquely identifies the testimony within the loaded dataset.
	ID string

	// Title is a short headline for the entry. May be empty.
	Title string

	// Narrative is the free-text account. Always non-empty.
	Narrative string

	// Emotion is the emotion tag, or UnknownTag when unset.
	Emotion string

	// Theme is the theme tag, or UnknownTag when unset.
	Theme string

	// Source labels where the testimony was published, or UnknownTag.
	Source string

	// PublishedAt is the publication date. Always valid.
	PublishedAt time.Time

	// URL is the public source link, empty when missing.
	URL string

	// URLStatus flags whether URL is a real link or missing/dummy.
	URLStatus URLStatus
}

// HasOriginalURL reports whether the testimony links to a real source.
func (t *Testimony) HasOriginalURL() bool {
	return t.URLStatus == URLStatusOriginal
}

// EmotionOrUnknown returns the emotion tag, mapping empty to UnknownTag.
func (t *Testimony) EmotionOrUnknown() string {
	if t.Emotion == "" {
		return UnknownTag
	}
	return t.Emotion
}

// ThemeOrUnknown returns the theme tag, mapping empty to UnknownTag.
func (t *Testimony) ThemeOrUnknown() string {
	if t.Theme == "" {
		return UnknownTag
	}
	return t.Theme
}
