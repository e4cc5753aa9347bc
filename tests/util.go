package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mwalimu/alama/core/grading"
)

func CreateWorkbook(
	t *testing.T,
	repo grading.Repository,
	ownerID, title string,
	problemCount int,
	labels ...string,
) grading.Workbook {
	t.Helper()
	wb := grading.Workbook{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        title,
		ProblemCount: problemCount,
		Marks:        grading.NewMarks(problemCount),
		UpdatedAt:    time.Now().UTC(),
	}
	if len(labels) > 0 {
		wb.Labels = labels
	}
	wb, err := repo.CreateWorkbook(wb)
	if err != nil {
		t.Fatalf("CreateWorkbook() failed: %v", err)
	}
	return wb
}

func CreateChapter(
	t *testing.T,
	repo grading.Repository,
	workbookID string,
	startIndex, endIndex int,
	note string,
) grading.Chapter {
	t.Helper()
	ch := grading.Chapter{
		ID:         uuid.New().String(),
		WorkbookID: workbookID,
		StartIndex: startIndex,
		EndIndex:   endIndex,
		Note:       note,
		UpdatedAt:  time.Now().UTC(),
	}
	ch, err := repo.CreateChapter(ch)
	if err != nil {
		t.Fatalf("CreateChapter() failed: %v", err)
	}
	return ch
}
