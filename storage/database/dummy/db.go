package dummydb

import (
	"sync"

	"github.com/mwalimu/alama/core/grading"
)

type (
	// DB is an in-memory stand-in for the hosted store; used in tests and
	// local development.
	DB struct {
		workbook *workbookTable
		chapter  *chapterTable

		// SaveErr, when set, makes every write fail with it; lets tests
		// exercise the no-rollback save-failure path.
		SaveErr error
	}

	workbookTable struct {
		sync.RWMutex
		table map[string]*grading.Workbook
	}

	chapterTable struct {
		sync.RWMutex
		table map[string]*grading.Chapter
	}
)

func Open() (*DB, error) {
	db := &DB{
		workbook: &workbookTable{table: make(map[string]*grading.Workbook)},
		chapter:  &chapterTable{table: make(map[string]*grading.Chapter)},
	}
	return db, nil
}
