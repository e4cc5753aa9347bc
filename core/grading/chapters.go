package grading

import "fmt"

// Overlaps reports whether the two closed intervals intersect. Each interval
// is normalized first, so endpoint order does not matter.
func Overlaps(aLo, aHi, bLo, bHi int) bool {
	if aLo > aHi {
		aLo, aHi = aHi, aLo
	}
	if bLo > bHi {
		bLo, bHi = bHi, bLo
	}
	return !(aHi < bLo || bHi < aLo)
}

// findConflict returns the first existing chapter intersecting [lo, hi].
func findConflict(chapters []Chapter, lo, hi int) (Chapter, bool) {
	for _, ch := range chapters {
		if Overlaps(ch.StartIndex, ch.EndIndex, lo, hi) {
			return ch, true
		}
	}
	return Chapter{}, false
}

// findChapter locates the chapter addressed by the normalized range [lo, hi]:
// an exact interval match wins; failing that, the chapter fully containing
// the range (at most one exists, chapters never overlap).
func findChapter(chapters []Chapter, lo, hi int) (Chapter, bool) {
	for _, ch := range chapters {
		if ch.StartIndex == lo && ch.EndIndex == hi {
			return ch, true
		}
	}
	for _, ch := range chapters {
		if ch.StartIndex <= lo && hi <= ch.EndIndex {
			return ch, true
		}
	}
	return Chapter{}, false
}

// OverlapError rejects a chapter creation that intersects an existing
// chapter. Range is the conflicting chapter's label-formatted range, so the
// caller can tell the user what to adjust.
type OverlapError struct {
	Conflict Chapter
	Range    string
}

func (err *OverlapError) Error() string {
	return fmt.Sprintf("range overlaps existing chapter %q (%s)", err.Conflict.DisplayTitle(), err.Range)
}
