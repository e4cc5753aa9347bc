package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Mark_Cycle(t *testing.T) {
	order := []Mark{MarkNone, MarkCorrect, MarkIncorrect, MarkPartial}
	for i, m := range order {
		assert.Equal(t, order[(i+1)%len(order)], m.Cycle())
	}

	// four steps always land back on the start
	for _, m := range order {
		got := m
		for i := 0; i < 4; i++ {
			got = got.Cycle()
		}
		assert.Equal(t, m, got)
	}
}

func Test_Workbook_SetMark(t *testing.T) {
	wb := &Workbook{ProblemCount: 3, Marks: NewMarks(3)}

	wb.SetMark(1, MarkCorrect)
	assert.Equal(t, []Mark{MarkNone, MarkCorrect, MarkNone}, wb.Marks)

	// out-of-range indexes are dropped
	wb.SetMark(-1, MarkPartial)
	wb.SetMark(3, MarkPartial)
	assert.Equal(t, []Mark{MarkNone, MarkCorrect, MarkNone}, wb.Marks)
}

func Test_Workbook_CycleMark(t *testing.T) {
	wb := &Workbook{ProblemCount: 2, Marks: NewMarks(2)}

	assert.Equal(t, MarkCorrect, wb.CycleMark(0))
	assert.Equal(t, MarkIncorrect, wb.CycleMark(0))
	assert.Equal(t, MarkPartial, wb.CycleMark(0))
	assert.Equal(t, MarkNone, wb.CycleMark(0))
	assert.Equal(t, MarkNone, wb.Marks[1]) // untouched
}

func Test_Workbook_ApplyRange(t *testing.T) {
	wb := &Workbook{ProblemCount: 10, Marks: NewMarks(10)}

	wb.ApplyRange(2, 5, MarkCorrect)
	want := NewMarks(10)
	for i := 2; i <= 5; i++ {
		want[i] = MarkCorrect
	}
	assert.Equal(t, want, wb.Marks)

	// idempotent: applying the same range twice changes nothing more
	wb.ApplyRange(2, 5, MarkCorrect)
	assert.Equal(t, want, wb.Marks)

	// reversed endpoints are normalized
	wb.ApplyRange(8, 6, MarkPartial)
	for i := 6; i <= 8; i++ {
		want[i] = MarkPartial
	}
	assert.Equal(t, want, wb.Marks)

	// none clears
	wb.ApplyRange(2, 5, MarkNone)
	wb.ApplyRange(6, 8, MarkNone)
	assert.Equal(t, NewMarks(10), wb.Marks)

	// out-of-bounds endpoints are clipped
	wb.ApplyRange(-3, 12, MarkIncorrect)
	for i := range want {
		want[i] = MarkIncorrect
	}
	assert.Equal(t, want, wb.Marks)
}
