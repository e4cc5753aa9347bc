package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Overlaps(t *testing.T) {
	tests := []struct {
		name               string
		aLo, aHi, bLo, bHi int
		want               bool
	}{
		{name: "disjoint before", aLo: 0, aHi: 1, bLo: 2, bHi: 5, want: false},
		{name: "disjoint after", aLo: 6, aHi: 9, bLo: 2, bHi: 5, want: false},
		{name: "identical", aLo: 2, aHi: 5, bLo: 2, bHi: 5, want: true},
		{name: "partial overlap", aLo: 4, aHi: 7, bLo: 2, bHi: 5, want: true},
		{name: "contained", aLo: 3, aHi: 4, bLo: 2, bHi: 5, want: true},
		{name: "touching endpoints", aLo: 5, aHi: 8, bLo: 2, bHi: 5, want: true},
		{name: "reversed endpoints normalize", aLo: 7, aHi: 4, bLo: 5, bHi: 2, want: true},
		{name: "single index disjoint", aLo: 1, aHi: 1, bLo: 2, bHi: 2, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aLo, tt.aHi, tt.bLo, tt.bHi))
			// symmetric
			assert.Equal(t, tt.want, Overlaps(tt.bLo, tt.bHi, tt.aLo, tt.aHi))
		})
	}
}

func Test_findChapter(t *testing.T) {
	chapters := []Chapter{
		{ID: "a", StartIndex: 2, EndIndex: 5},
		{ID: "b", StartIndex: 6, EndIndex: 9},
	}

	// exact match wins
	ch, ok := findChapter(chapters, 2, 5)
	if assert.True(t, ok) {
		assert.Equal(t, "a", ch.ID)
	}

	// fully contained range falls back to its chapter
	ch, ok = findChapter(chapters, 7, 8)
	if assert.True(t, ok) {
		assert.Equal(t, "b", ch.ID)
	}

	// straddling two chapters matches neither
	_, ok = findChapter(chapters, 4, 7)
	assert.False(t, ok)

	_, ok = findChapter(chapters, 0, 1)
	assert.False(t, ok)
}

func Test_Chapter_note(t *testing.T) {
	ch := &Chapter{Note: "Fractions\nredo 12 and 15\nask about 18"}
	assert.Equal(t, "Fractions", ch.Title())
	assert.Equal(t, "redo 12 and 15\nask about 18", ch.Body())
	assert.Equal(t, "Fractions", ch.DisplayTitle())

	// title only (no newline)
	ch = &Chapter{Note: "Geometry"}
	assert.Equal(t, "Geometry", ch.Title())
	assert.Equal(t, "", ch.Body())

	// empty first line: title renders as a placeholder, body survives
	ch = &Chapter{Note: "\nonly a remark"}
	assert.Equal(t, "", ch.Title())
	assert.Equal(t, "only a remark", ch.Body())
	assert.Equal(t, "(untitled)", ch.DisplayTitle())

	assert.Equal(t, "a\nb", JoinNote("a", "b"))
	assert.Equal(t, "a", JoinNote("a", ""))
	assert.Equal(t, "\nb", JoinNote("", "b"))
}

func Test_OverlapError(t *testing.T) {
	err := &OverlapError{
		Conflict: Chapter{StartIndex: 2, EndIndex: 5, Note: "Fractions\nnotes"},
		Range:    "3〜6",
	}
	assert.EqualError(t, err, `range overlaps existing chapter "Fractions" (3〜6)`)

	err = &OverlapError{Conflict: Chapter{StartIndex: 0, EndIndex: 0}, Range: "1"}
	assert.EqualError(t, err, `range overlaps existing chapter "(untitled)" (1)`)
}
