package dummydb

import (
	"sort"
	"time"

	"github.com/mwalimu/alama/core/grading"
)

type gradingRepository struct {
	db *DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *DB) *gradingRepository {
	return &gradingRepository{db: db}
}

func (repo *gradingRepository) QueryWorkbooksByOwner(ownerID string) ([]grading.Workbook, error) {
	repo.db.workbook.RLock()
	defer repo.db.workbook.RUnlock()

	wbs := make([]grading.Workbook, 0)
	for _, wb := range repo.db.workbook.table {
		if wb.OwnerID == ownerID {
			wbs = append(wbs, copyWorkbook(wb))
		}
	}
	sort.Slice(wbs, func(i, j int) bool { return wbs[i].Title < wbs[j].Title })
	return wbs, nil
}

func (repo *gradingRepository) GetWorkbookByID(id string) (grading.Workbook, error) {
	repo.db.workbook.RLock()
	defer repo.db.workbook.RUnlock()

	wb, ok := repo.db.workbook.table[id]
	if !ok {
		return grading.Workbook{}, grading.ErrNotFound
	}
	return copyWorkbook(wb), nil
}

func (repo *gradingRepository) CreateWorkbook(wb grading.Workbook) (grading.Workbook, error) {
	if repo.db.SaveErr != nil {
		return grading.Workbook{}, repo.db.SaveErr
	}
	repo.db.workbook.Lock()
	defer repo.db.workbook.Unlock()

	stored := copyWorkbook(&wb)
	repo.db.workbook.table[wb.ID] = &stored
	return wb, nil
}

func (repo *gradingRepository) DeleteWorkbook(id string) error {
	if repo.db.SaveErr != nil {
		return repo.db.SaveErr
	}
	repo.db.workbook.Lock()
	if _, ok := repo.db.workbook.table[id]; !ok {
		repo.db.workbook.Unlock()
		return grading.ErrNotFound
	}
	delete(repo.db.workbook.table, id)
	repo.db.workbook.Unlock()

	// cascade
	repo.db.chapter.Lock()
	for chID, ch := range repo.db.chapter.table {
		if ch.WorkbookID == id {
			delete(repo.db.chapter.table, chID)
		}
	}
	repo.db.chapter.Unlock()
	return nil
}

func (repo *gradingRepository) SaveWorkbookMarks(id string, marks []grading.Mark) error {
	if repo.db.SaveErr != nil {
		return repo.db.SaveErr
	}
	repo.db.workbook.Lock()
	defer repo.db.workbook.Unlock()

	wb, ok := repo.db.workbook.table[id]
	if !ok {
		return grading.ErrNotFound
	}
	wb.Marks = append([]grading.Mark(nil), marks...)
	wb.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *gradingRepository) QueryChaptersByWorkbook(workbookIDs ...string) ([]grading.Chapter, error) {
	repo.db.chapter.RLock()
	defer repo.db.chapter.RUnlock()

	wanted := make(map[string]bool, len(workbookIDs))
	for _, id := range workbookIDs {
		wanted[id] = true
	}
	chapters := make([]grading.Chapter, 0)
	for _, ch := range repo.db.chapter.table {
		if wanted[ch.WorkbookID] {
			chapters = append(chapters, *ch)
		}
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].StartIndex < chapters[j].StartIndex })
	return chapters, nil
}

func (repo *gradingRepository) CreateChapter(ch grading.Chapter) (grading.Chapter, error) {
	if repo.db.SaveErr != nil {
		return grading.Chapter{}, repo.db.SaveErr
	}
	repo.db.chapter.Lock()
	defer repo.db.chapter.Unlock()

	stored := ch
	repo.db.chapter.table[ch.ID] = &stored
	return ch, nil
}

func (repo *gradingRepository) DeleteChapter(id string) error {
	if repo.db.SaveErr != nil {
		return repo.db.SaveErr
	}
	repo.db.chapter.Lock()
	defer repo.db.chapter.Unlock()

	if _, ok := repo.db.chapter.table[id]; !ok {
		return grading.ErrChapterNotFound
	}
	delete(repo.db.chapter.table, id)
	return nil
}

func (repo *gradingRepository) UpdateChapterNote(id, note string) error {
	if repo.db.SaveErr != nil {
		return repo.db.SaveErr
	}
	repo.db.chapter.Lock()
	defer repo.db.chapter.Unlock()

	ch, ok := repo.db.chapter.table[id]
	if !ok {
		return grading.ErrChapterNotFound
	}
	ch.Note = note
	ch.UpdatedAt = time.Now().UTC()
	return nil
}

func copyWorkbook(wb *grading.Workbook) grading.Workbook {
	cp := *wb
	cp.Marks = append([]grading.Mark(nil), wb.Marks...)
	if wb.Labels != nil {
		cp.Labels = append([]string(nil), wb.Labels...)
	}
	return cp
}
