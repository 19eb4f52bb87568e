package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestimony_HasOriginalURL(t *testing.T) {
	original := Testimony{URL: "https://news.example.org/a/1", URLStatus: URLStatusOriginal}
	missing := Testimony{URLStatus: URLStatusMissing}

	assert.True(t, original.HasOriginalURL())
	assert.False(t, missing.HasOriginalURL())
}

func TestTestimony_UnknownTagFallbacks(t *testing.T) {
	tagged := Testimony{
		Narrative:   "They came at dawn.",
		Emotion:     "fear",
		Theme:       "family separation",
		PublishedAt: time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
	}
	untagged := Testimony{Narrative: "No one would say where he was taken."}

	assert.Equal(t, "fear", tagged.EmotionOrUnknown())
	assert.Equal(t, "family separation", tagged.ThemeOrUnknown())
	assert.Equal(t, UnknownTag, untagged.EmotionOrUnknown())
	assert.Equal(t, UnknownTag, untagged.ThemeOrUnknown())
}
