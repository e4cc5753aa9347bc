package grading

import (
	"strconv"
	"strings"
	"time"

	"github.com/mwalimu/alama/core"
)

// Marks
const (
	MarkNone      Mark = "none"
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
	MarkPartial   Mark = "partial"
)

// MaxProblemCount bounds the size of a workbook at creation time.
const MaxProblemCount = 1000

const untitledChapter = "(untitled)"

// Mark is the recorded outcome for a single problem of a workbook.
type Mark string

// Cycle advances through none → correct → incorrect → partial → none.
func (m Mark) Cycle() Mark {
	switch m {
	case MarkNone:
		return MarkCorrect
	case MarkCorrect:
		return MarkIncorrect
	case MarkIncorrect:
		return MarkPartial
	default:
		return MarkNone
	}
}

func (m Mark) IsValid() bool {
	switch m {
	case MarkNone, MarkCorrect, MarkIncorrect, MarkPartial:
		return true
	}
	return false
}

// Workbook is one grade sheet: a fixed-length run of per-problem marks,
// owned by a student and annotated with chapters.
type Workbook struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	ProblemCount int       `json:"problem_count"`
	Marks        []Mark    `json:"marks"`
	Labels       []string  `json:"labels,omitempty"` // nil: problems labelled by 1-based position
	UpdatedAt    time.Time `json:"updated_at"`       // UTC
}

// NewMarks returns a fresh all-none mark run of length n.
func NewMarks(n int) []Mark {
	marks := make([]Mark, n)
	for i := range marks {
		marks[i] = MarkNone
	}
	return marks
}

// Label returns the display label of the problem at index i.
func (wb *Workbook) Label(i int) string {
	if wb.Labels != nil && i >= 0 && i < len(wb.Labels) {
		return wb.Labels[i]
	}
	return strconv.Itoa(i + 1)
}

// LabelRange formats a closed index range with the workbook's labels, e.g. "3〜12".
func (wb *Workbook) LabelRange(lo, hi int) string {
	if lo == hi {
		return wb.Label(lo)
	}
	return wb.Label(lo) + "〜" + wb.Label(hi)
}

// Chapter is a named annotation over a contiguous, non-overlapping slice of a
// workbook's problems. Note is a single text blob: its first line is the
// chapter's title, the remaining lines are the free-form remark body.
type Chapter struct {
	ID         string    `json:"id"`
	WorkbookID string    `json:"workbook_id"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"` // inclusive
	Note       string    `json:"note"`
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (ch *Chapter) Title() string {
	if i := strings.IndexByte(ch.Note, '\n'); i >= 0 {
		return ch.Note[:i]
	}
	return ch.Note
}

func (ch *Chapter) Body() string {
	if i := strings.IndexByte(ch.Note, '\n'); i >= 0 {
		return ch.Note[i+1:]
	}
	return ""
}

// DisplayTitle substitutes a placeholder when the note's first line is empty.
func (ch *Chapter) DisplayTitle() string {
	if t := ch.Title(); t != "" {
		return t
	}
	return untitledChapter
}

// JoinNote encodes an explicit (title, body) pair back into the stored
// first-line-title note blob.
func JoinNote(title, body string) string {
	if body == "" {
		return title
	}
	return title + "\n" + body
}

// Segments
const (
	SegmentFree    SegmentKind = "free"
	SegmentChapter SegmentKind = "chapter"
)

type SegmentKind string

// Segment is one element of the derived display partition of a workbook's
// index range; never persisted.
type Segment struct {
	Kind       SegmentKind `json:"kind"`
	StartIndex int         `json:"start_index"`
	EndIndex   int         `json:"end_index"` // inclusive
	Chapter    *Chapter    `json:"chapter,omitempty"`
}

// WorkbookView is what the grades screens render: the workbook, its chapters
// and the derived segment partition, plus the current autosave status.
type WorkbookView struct {
	Workbook   Workbook  `json:"workbook"`
	Chapters   []Chapter `json:"chapters"`
	Segments   []Segment `json:"segments"`
	SaveStatus string    `json:"save_status,omitempty"`
}

// NewWorkbook contains information needed to create a new Workbook.
type NewWorkbook struct {
	Title        string   `json:"title" validate:"required"`
	ProblemCount int      `json:"problem_count" validate:"required,min=1,max=1000"`
	Labels       []string `json:"labels,omitempty"`
}

func (nw *NewWorkbook) Validate() error {
	nw.Title = core.CleanString(nw.Title)
	if err := core.Validate.Struct(nw); err != nil {
		return err
	}
	if nw.Labels != nil && len(nw.Labels) != nw.ProblemCount {
		return core.NewValidationError(nil, core.FieldError{Field: "labels", Error: errLabelCountText})
	}
	return nil
}

// NewChapter carries a chapter creation request: range endpoints as
// user-typed tokens plus an explicit (title, remark) pair.
type NewChapter struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Title  string `json:"title"`
	Remark string `json:"remark"`
}

func (nc *NewChapter) Validate() error {
	nc.From = core.CleanString(nc.From)
	nc.To = core.CleanString(nc.To)
	nc.Title = core.CleanString(nc.Title)
	return core.Validate.Struct(nc)
}

// ChapterRange addresses an existing chapter by a user-typed range.
type ChapterRange struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (cr *ChapterRange) Validate() error {
	cr.From = core.CleanString(cr.From)
	cr.To = core.CleanString(cr.To)
	return core.Validate.Struct(cr)
}

// RangeMarks sets every problem within a user-typed range to one mark.
// MarkNone clears the range.
type RangeMarks struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
	Mark Mark   `json:"mark" validate:"mark"`
}

func (rm *RangeMarks) Validate() error {
	rm.From = core.CleanString(rm.From)
	rm.To = core.CleanString(rm.To)
	return core.Validate.Struct(rm)
}

// SetMark replaces the mark of a single problem.
type SetMark struct {
	Mark Mark `json:"mark" validate:"mark"`
}

func (sm *SetMark) Validate() error { return core.Validate.Struct(sm) }

// UpdateNote carries a note edit as an explicit (title, remark) pair.
// An empty title is allowed; it renders as a placeholder.
type UpdateNote struct {
	Title  string `json:"title"`
	Remark string `json:"remark"`
}
