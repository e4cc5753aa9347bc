package grading

// SetMark replaces the mark at index i. Out-of-range indexes are dropped
// here; callers wanting an error must bounds-check first.
func (wb *Workbook) SetMark(i int, m Mark) {
	if i < 0 || i >= len(wb.Marks) {
		return
	}
	wb.Marks[i] = m
}

// CycleMark advances the mark at index i one step through the cycle and
// returns the new value.
func (wb *Workbook) CycleMark(i int) Mark {
	if i < 0 || i >= len(wb.Marks) {
		return MarkNone
	}
	next := wb.Marks[i].Cycle()
	wb.Marks[i] = next
	return next
}

// ApplyRange sets every mark in the normalized closed range [lo, hi] to m,
// clipped to the workbook's bounds. This is a direct set, not a cycle;
// MarkNone clears.
func (wb *Workbook) ApplyRange(lo, hi int, m Mark) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if last := len(wb.Marks) - 1; hi > last {
		hi = last
	}
	for i := lo; i <= hi; i++ {
		wb.Marks[i] = m
	}
}
