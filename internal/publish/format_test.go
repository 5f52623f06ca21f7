// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/journal-club/pkg/types"
)

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{authors: nil, want: "Unknown"},
		{authors: []string{"X"}, want: "X"},
		{authors: []string{"X", "Y"}, want: "X, Y"},
		{authors: []string{"X", "Y", "Z"}, want: "X, Y, Z"},
		{authors: []string{"X", "Y", "Z", "W"}, want: "X et al."},
		{authors: []string{"X", "Y", "Z", "W", "V"}, want: "X et al."},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAuthors(tt.authors))
		})
	}
}

func TestHeader(t *testing.T) {
	h := Header(types.InterestingPaper{
		ID:              "2501.00001",
		Title:           "Dark photons at colliders",
		Authors:         []string{"X", "Y"},
		PrimaryCategory: "hep-ph",
		ReasonEN:        "New collider bound.",
		ReasonJA:        "新しい制限。",
	})
	assert.Equal(t, "*Dark photons at colliders*\nhep-ph | X, Y\nhttps://arxiv.org/abs/2501.00001\nNew collider bound.\n新しい制限。", h)
}

func TestSegmentsOrder(t *testing.T) {
	segs := Segments(types.BilingualDiscussion{
		Original:   types.PaperDiscussion{DetailedSummary: "os", Criticize: "oc", Answer: "oa"},
		Translated: types.PaperDiscussion{DetailedSummary: "ts", Criticize: "tc", Answer: "ta"},
	})
	assert.Len(t, segs, 7)
	assert.Equal(t, LanguageNotice, segs[0])
	for i, suffix := range []string{"ts", "tc", "ta", "os", "oc", "oa"} {
		assert.Regexp(t, "\n"+suffix+"$", segs[i+1])
	}
}

func TestBatchHeaderAndNotice(t *testing.T) {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Contains(t, BatchHeader("hep-ph", day, 3), "2025-01-02")
	assert.Contains(t, BatchHeader("hep-ph", day, 3), "3 papers")
	assert.Equal(t, "Error processing 2501.00001: paper not found", Notice("2501.00001", "paper not found"))
	assert.Equal(t, "hep-ph_0101001-discussion.md", TranscriptFilename("hep-ph/0101001"))
}
