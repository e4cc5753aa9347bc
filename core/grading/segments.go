package grading

import "sort"

// BuildSegments partitions [0, problemCount-1] into alternating chapter and
// free segments: chapters are laid out in (start, end) order and the gaps
// between them are filled with free segments. Every index lands in exactly
// one segment. The partition is always recomputed from scratch; it is linear
// in the chapter count and recomputation sidesteps incremental-update bugs.
func BuildSegments(problemCount int, chapters []Chapter) []Segment {
	if problemCount <= 0 {
		return nil
	}

	sorted := make([]Chapter, len(chapters))
	copy(sorted, chapters)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartIndex != sorted[j].StartIndex {
			return sorted[i].StartIndex < sorted[j].StartIndex
		}
		return sorted[i].EndIndex < sorted[j].EndIndex
	})

	last := problemCount - 1
	segments := make([]Segment, 0, 2*len(sorted)+1)
	cursor := 0
	for i := range sorted {
		ch := &sorted[i]
		lo, hi := ch.StartIndex, ch.EndIndex
		if lo < 0 {
			lo = 0
		}
		if hi > last {
			hi = last
		}
		if lo > hi || lo < cursor {
			continue
		}
		if cursor <= lo-1 {
			segments = append(segments, Segment{Kind: SegmentFree, StartIndex: cursor, EndIndex: lo - 1})
		}
		segments = append(segments, Segment{Kind: SegmentChapter, StartIndex: lo, EndIndex: hi, Chapter: ch})
		cursor = hi + 1
	}
	if cursor <= last {
		segments = append(segments, Segment{Kind: SegmentFree, StartIndex: cursor, EndIndex: last})
	}
	return segments
}
