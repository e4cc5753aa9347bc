package grading

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwalimu/alama/core"
)

var (
	// errors
	ErrNotFound        = errors.New("workbook not found")
	ErrChapterNotFound = errors.New("no chapter matches this range")

	errNoSuchProblem = "no problem matches this position or label"
)

// SaveFailedStatus is surfaced when a background save fails; the in-memory
// state is kept as-is and remains the source of truth for the next retry.
const SaveFailedStatus = "autosave failed — save manually"

type (
	// Repository persists workbooks and chapters in the remote store.
	// Deleting a workbook cascades to its chapters.
	Repository interface {
		QueryWorkbooksByOwner(ownerID string) ([]Workbook, error)
		GetWorkbookByID(id string) (Workbook, error)
		CreateWorkbook(wb Workbook) (Workbook, error)
		DeleteWorkbook(id string) error
		SaveWorkbookMarks(id string, marks []Mark) error
		QueryChaptersByWorkbook(workbookIDs ...string) ([]Chapter, error)
		CreateChapter(ch Chapter) (Chapter, error)
		DeleteChapter(id string) error
		UpdateChapterNote(id, note string) error
	}

	// Service owns the in-memory working copies of the grade sheets a session
	// is editing. Mark and note mutations land on the working copy first and
	// are persisted on a debounce; chapter create/remove and workbook
	// create/delete hit the store immediately. Failed saves never roll the
	// working copy back.
	Service struct {
		repo Repository
		log  core.Logger

		mu         sync.Mutex
		workbooks  map[string]*Workbook
		chapters   map[string]*Chapter            // chapter id -> chapter
		byWorkbook map[string]map[string]*Chapter // workbook id -> chapter id -> chapter
		statuses   map[string]string              // workbook/chapter id -> last save status

		// independent keyspaces: a marks save and a note save never block
		// or cancel each other
		markSaves *Autosave
		noteSaves *Autosave
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return newService(repo, log, core.Conf.AutosaveDelay)
}

func newService(repo Repository, log core.Logger, delay time.Duration) *Service {
	svc := &Service{
		repo:       repo,
		log:        log,
		workbooks:  make(map[string]*Workbook),
		chapters:   make(map[string]*Chapter),
		byWorkbook: make(map[string]map[string]*Chapter),
		statuses:   make(map[string]string),
	}
	svc.markSaves = NewAutosave(delay, svc.saveMarks, svc.reportSaveErr)
	svc.noteSaves = NewAutosave(delay, svc.saveNote, svc.reportSaveErr)
	return svc
}

// Close cancels all pending autosaves; called at session teardown.
func (svc *Service) Close() {
	svc.markSaves.Stop()
	svc.noteSaves.Stop()
}

// OwnerOverview loads all of a student's workbooks with their chapters and
// derived segments, replacing the session's working copies.
func (svc *Service) OwnerOverview(ownerID string) ([]WorkbookView, error) {
	wbs, err := svc.repo.QueryWorkbooksByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(wbs))
	for _, wb := range wbs {
		ids = append(ids, wb.ID)
	}
	var chapters []Chapter
	if len(ids) > 0 {
		if chapters, err = svc.repo.QueryChaptersByWorkbook(ids...); err != nil {
			return nil, err
		}
	}

	svc.mu.Lock()
	for i := range wbs {
		svc.cacheWorkbook(&wbs[i])
	}
	for i := range chapters {
		svc.cacheChapter(&chapters[i])
	}
	views := make([]WorkbookView, 0, len(wbs))
	for _, wb := range wbs {
		views = append(views, svc.view(wb.ID))
	}
	svc.mu.Unlock()
	return views, nil
}

// Overview returns one workbook with its chapters, segments and save status.
func (svc *Service) Overview(workbookID string) (WorkbookView, error) {
	if _, err := svc.workbook(workbookID); err != nil {
		return WorkbookView{}, err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.view(workbookID), nil
}

// Create validates and persists a new workbook with all marks at none.
func (svc *Service) Create(ownerID string, nw NewWorkbook) (Workbook, error) {
	if err := nw.Validate(); err != nil {
		return Workbook{}, err
	}
	now := time.Now().UTC()
	wb := Workbook{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        nw.Title,
		ProblemCount: nw.ProblemCount,
		Marks:        NewMarks(nw.ProblemCount),
		Labels:       nw.Labels,
		UpdatedAt:    now,
	}
	wb, err := svc.repo.CreateWorkbook(wb)
	if err != nil {
		return Workbook{}, err
	}
	svc.mu.Lock()
	svc.cacheWorkbook(&wb)
	svc.mu.Unlock()
	return wb, nil
}

// Delete destroys a workbook and, with it, all of its chapters. Any pending
// autosaves for the workbook or its chapters are dropped.
func (svc *Service) Delete(workbookID string) error {
	if err := svc.repo.DeleteWorkbook(workbookID); err != nil {
		return err
	}
	svc.markSaves.Cancel(workbookID)

	svc.mu.Lock()
	delete(svc.workbooks, workbookID)
	delete(svc.statuses, workbookID)
	chapterIDs := make([]string, 0, len(svc.byWorkbook[workbookID]))
	for id := range svc.byWorkbook[workbookID] {
		chapterIDs = append(chapterIDs, id)
		delete(svc.chapters, id)
		delete(svc.statuses, id)
	}
	delete(svc.byWorkbook, workbookID)
	svc.mu.Unlock()

	for _, id := range chapterIDs {
		svc.noteSaves.Cancel(id)
	}
	return nil
}

// SetProblemMark replaces the mark of the problem at index (0-based) and
// schedules a debounced save of the whole mark run.
func (svc *Service) SetProblemMark(workbookID string, index int, sm SetMark) error {
	if err := sm.Validate(); err != nil {
		return err
	}
	wb, err := svc.workbook(workbookID)
	if err != nil {
		return err
	}

	svc.mu.Lock()
	if index < 0 || index >= wb.ProblemCount {
		svc.mu.Unlock()
		return core.NewValidationError(nil, core.FieldError{Field: "index", Error: errNoSuchProblem})
	}
	wb.SetMark(index, sm.Mark)
	svc.mu.Unlock()

	svc.markSaves.Schedule(workbookID)
	return nil
}

// CycleProblemMark advances the mark at index one step through the cycle and
// returns the new value; used for single-click toggling.
func (svc *Service) CycleProblemMark(workbookID string, index int) (Mark, error) {
	wb, err := svc.workbook(workbookID)
	if err != nil {
		return MarkNone, err
	}

	svc.mu.Lock()
	if index < 0 || index >= wb.ProblemCount {
		svc.mu.Unlock()
		return MarkNone, core.NewValidationError(nil, core.FieldError{Field: "index", Error: errNoSuchProblem})
	}
	next := wb.CycleMark(index)
	svc.mu.Unlock()

	svc.markSaves.Schedule(workbookID)
	return next, nil
}

// ApplyRangeMarks sets every problem in a user-typed range to one mark.
// Both endpoints must resolve or the whole operation is rejected.
func (svc *Service) ApplyRangeMarks(workbookID string, rm RangeMarks) error {
	if err := rm.Validate(); err != nil {
		return err
	}
	wb, err := svc.workbook(workbookID)
	if err != nil {
		return err
	}

	svc.mu.Lock()
	lo, hi, err := resolveRange(wb, rm.From, rm.To)
	if err != nil {
		svc.mu.Unlock()
		return err
	}
	wb.ApplyRange(lo, hi, rm.Mark)
	svc.mu.Unlock()

	svc.markSaves.Schedule(workbookID)
	return nil
}

// SaveMarks persists a workbook's marks immediately (manual save).
func (svc *Service) SaveMarks(workbookID string) error {
	if err := svc.markSaves.Flush(workbookID); err != nil {
		svc.setStatus(workbookID, SaveFailedStatus)
		return err
	}
	return nil
}

// CreateChapter carves a new chapter out of the workbook's free range. The
// request is rejected when either endpoint does not resolve or when the range
// intersects an existing chapter; the conflict carries the existing chapter's
// title and label-formatted range.
func (svc *Service) CreateChapter(workbookID string, nc NewChapter) (Chapter, error) {
	if err := nc.Validate(); err != nil {
		return Chapter{}, err
	}
	wb, err := svc.workbook(workbookID)
	if err != nil {
		return Chapter{}, err
	}

	svc.mu.Lock()
	lo, hi, err := resolveRange(wb, nc.From, nc.To)
	if err != nil {
		svc.mu.Unlock()
		return Chapter{}, err
	}
	if conflict, ok := findConflict(svc.workbookChapters(workbookID), lo, hi); ok {
		rng := wb.LabelRange(conflict.StartIndex, conflict.EndIndex)
		svc.mu.Unlock()
		return Chapter{}, &OverlapError{Conflict: conflict, Range: rng}
	}
	svc.mu.Unlock()

	ch := Chapter{
		ID:         uuid.New().String(),
		WorkbookID: workbookID,
		StartIndex: lo,
		EndIndex:   hi,
		Note:       JoinNote(nc.Title, nc.Remark),
		UpdatedAt:  time.Now().UTC(),
	}
	ch, err = svc.repo.CreateChapter(ch)
	if err != nil {
		return Chapter{}, err
	}
	svc.mu.Lock()
	svc.cacheChapter(&ch)
	svc.mu.Unlock()
	return ch, nil
}

// RemoveChapter deletes the chapter addressed by a user-typed range: an exact
// interval match first, else the single chapter fully containing the range.
func (svc *Service) RemoveChapter(workbookID string, cr ChapterRange) (Chapter, error) {
	if err := cr.Validate(); err != nil {
		return Chapter{}, err
	}
	wb, err := svc.workbook(workbookID)
	if err != nil {
		return Chapter{}, err
	}

	svc.mu.Lock()
	lo, hi, err := resolveRange(wb, cr.From, cr.To)
	if err != nil {
		svc.mu.Unlock()
		return Chapter{}, err
	}
	ch, ok := findChapter(svc.workbookChapters(workbookID), lo, hi)
	svc.mu.Unlock()
	if !ok {
		return Chapter{}, ErrChapterNotFound
	}

	if err := svc.repo.DeleteChapter(ch.ID); err != nil {
		return Chapter{}, err
	}
	svc.noteSaves.Cancel(ch.ID)

	svc.mu.Lock()
	delete(svc.chapters, ch.ID)
	delete(svc.statuses, ch.ID)
	if m, ok := svc.byWorkbook[workbookID]; ok {
		delete(m, ch.ID)
	}
	svc.mu.Unlock()
	return ch, nil
}

// EditNote replaces a chapter's note from an explicit (title, remark) pair
// and schedules a debounced save. The interval is never changed here.
func (svc *Service) EditNote(chapterID string, un UpdateNote) error {
	svc.mu.Lock()
	ch, ok := svc.chapters[chapterID]
	if !ok {
		svc.mu.Unlock()
		return ErrChapterNotFound
	}
	ch.Note = JoinNote(un.Title, un.Remark)
	svc.mu.Unlock()

	svc.noteSaves.Schedule(chapterID)
	return nil
}

// SaveNote persists a chapter's note immediately (manual save).
func (svc *Service) SaveNote(chapterID string) error {
	if err := svc.noteSaves.Flush(chapterID); err != nil {
		svc.setStatus(chapterID, SaveFailedStatus)
		return err
	}
	return nil
}

// Status returns the last save status for a workbook or chapter id; empty
// when the last save went through.
func (svc *Service) Status(id string) string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.statuses[id]
}

// internals

// workbook returns the session's working copy, loading it (and its chapters)
// from the store on first access.
func (svc *Service) workbook(id string) (*Workbook, error) {
	svc.mu.Lock()
	if wb, ok := svc.workbooks[id]; ok {
		svc.mu.Unlock()
		return wb, nil
	}
	svc.mu.Unlock()

	wb, err := svc.repo.GetWorkbookByID(id)
	if err != nil {
		return nil, err
	}
	chapters, err := svc.repo.QueryChaptersByWorkbook(id)
	if err != nil {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if cached, ok := svc.workbooks[id]; ok { // lost the race; keep the live copy
		return cached, nil
	}
	svc.cacheWorkbook(&wb)
	for i := range chapters {
		svc.cacheChapter(&chapters[i])
	}
	return &wb, nil
}

// cacheWorkbook and cacheChapter require svc.mu to be held.
func (svc *Service) cacheWorkbook(wb *Workbook) {
	svc.workbooks[wb.ID] = wb
	if _, ok := svc.byWorkbook[wb.ID]; !ok {
		svc.byWorkbook[wb.ID] = make(map[string]*Chapter)
	}
}

func (svc *Service) cacheChapter(ch *Chapter) {
	svc.chapters[ch.ID] = ch
	m, ok := svc.byWorkbook[ch.WorkbookID]
	if !ok {
		m = make(map[string]*Chapter)
		svc.byWorkbook[ch.WorkbookID] = m
	}
	m[ch.ID] = ch
}

// workbookChapters snapshots a workbook's chapters; requires svc.mu held.
func (svc *Service) workbookChapters(workbookID string) []Chapter {
	m := svc.byWorkbook[workbookID]
	chapters := make([]Chapter, 0, len(m))
	for _, ch := range m {
		chapters = append(chapters, *ch)
	}
	return chapters
}

// view assembles a WorkbookView from the working copies; requires svc.mu held.
func (svc *Service) view(workbookID string) WorkbookView {
	wb := svc.workbooks[workbookID]
	chapters := svc.workbookChapters(workbookID)
	segments := BuildSegments(wb.ProblemCount, chapters)
	return WorkbookView{
		Workbook:   *wb,
		Chapters:   chapters,
		Segments:   segments,
		SaveStatus: svc.statuses[workbookID],
	}
}

// resolveRange resolves both user-typed endpoints independently and
// normalizes the result; either endpoint failing rejects the whole range.
func resolveRange(wb *Workbook, from, to string) (int, int, error) {
	var fldErrs []core.FieldError
	lo, ok := wb.ResolveIndex(from)
	if !ok {
		fldErrs = append(fldErrs, core.FieldError{Field: "from", Error: errNoSuchProblem})
	}
	hi, ok := wb.ResolveIndex(to)
	if !ok {
		fldErrs = append(fldErrs, core.FieldError{Field: "to", Error: errNoSuchProblem})
	}
	if fldErrs != nil {
		return 0, 0, core.NewValidationError(nil, fldErrs...)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// saveMarks is the autosave target for the workbook keyspace.
func (svc *Service) saveMarks(id string) error {
	svc.mu.Lock()
	wb, ok := svc.workbooks[id]
	var marks []Mark
	if ok {
		marks = append([]Mark(nil), wb.Marks...)
	}
	svc.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if err := svc.repo.SaveWorkbookMarks(id, marks); err != nil {
		return err
	}
	svc.clearStatus(id)
	return nil
}

// saveNote is the autosave target for the chapter keyspace.
func (svc *Service) saveNote(id string) error {
	svc.mu.Lock()
	ch, ok := svc.chapters[id]
	var note string
	if ok {
		note = ch.Note
	}
	svc.mu.Unlock()
	if !ok {
		return ErrChapterNotFound
	}
	if err := svc.repo.UpdateChapterNote(id, note); err != nil {
		return err
	}
	svc.clearStatus(id)
	return nil
}

// reportSaveErr runs when a background save fails: local state stays as-is,
// the status is flagged for the next screen refresh and the failure is shipped
// to error reporting. No automatic retry.
func (svc *Service) reportSaveErr(id string, err error) {
	svc.setStatus(id, SaveFailedStatus)
	if svc.log != nil {
		svc.log.Error(fmt.Sprintf("autosave failed for %s", id), err)
	}
}

func (svc *Service) setStatus(id, status string) {
	svc.mu.Lock()
	svc.statuses[id] = status
	svc.mu.Unlock()
}

func (svc *Service) clearStatus(id string) {
	svc.mu.Lock()
	delete(svc.statuses, id)
	svc.mu.Unlock()
}
