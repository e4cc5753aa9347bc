package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mwalimu/alama/core/grading"
)

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil) // interface compliance check

func NewGradingRepository(db *sql.DB) *gradingRepository {
	return &gradingRepository{db: sqlx.NewDb(db, "postgres")}
}

type workbookRow struct {
	ID           string     `db:"id"`
	OwnerID      string     `db:"owner_id"`
	Title        string     `db:"title"`
	ProblemCount int        `db:"problem_count"`
	Marks        []byte     `db:"marks"`
	Labels       null.Bytes `db:"labels"` // NULL: default 1-based labels
	UpdatedAt    time.Time  `db:"updated_at"`
}

type chapterRow struct {
	ID         string    `db:"id"`
	WorkbookID string    `db:"workbook_id"`
	StartIndex int       `db:"start_index"`
	EndIndex   int       `db:"end_index"`
	Note       string    `db:"note"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (repo gradingRepository) pack(wb grading.Workbook) (workbookRow, error) {
	marks, err := json.Marshal(wb.Marks)
	if err != nil {
		return workbookRow{}, errors.Wrap(err, "encoding marks")
	}
	row := workbookRow{
		ID:           wb.ID,
		OwnerID:      wb.OwnerID,
		Title:        wb.Title,
		ProblemCount: wb.ProblemCount,
		Marks:        marks,
		UpdatedAt:    wb.UpdatedAt.UTC(),
	}
	if wb.Labels != nil {
		labels, err := json.Marshal(wb.Labels)
		if err != nil {
			return workbookRow{}, errors.Wrap(err, "encoding labels")
		}
		row.Labels = null.BytesFrom(labels)
	}
	return row, nil
}

func (repo gradingRepository) unpack(row workbookRow) (grading.Workbook, error) {
	wb := grading.Workbook{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		Title:        row.Title,
		ProblemCount: row.ProblemCount,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Marks, &wb.Marks); err != nil {
		return grading.Workbook{}, errors.Wrap(err, "decoding marks")
	}
	if row.Labels.Valid {
		if err := json.Unmarshal(row.Labels.Bytes, &wb.Labels); err != nil {
			return grading.Workbook{}, errors.Wrap(err, "decoding labels")
		}
	}
	return wb, nil
}

func (repo gradingRepository) unpackChapter(row chapterRow) grading.Chapter {
	return grading.Chapter{
		ID:         row.ID,
		WorkbookID: row.WorkbookID,
		StartIndex: row.StartIndex,
		EndIndex:   row.EndIndex,
		Note:       row.Note,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (repo gradingRepository) QueryWorkbooksByOwner(ownerID string) ([]grading.Workbook, error) {
	var rows []workbookRow
	err := repo.db.Select(
		&rows,
		`SELECT id, owner_id, title, problem_count, marks, labels, updated_at
		 FROM workbook WHERE owner_id = $1 ORDER BY title`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying workbooks")
	}
	wbs := make([]grading.Workbook, 0, len(rows))
	for _, row := range rows {
		wb, err := repo.unpack(row)
		if err != nil {
			return nil, err
		}
		wbs = append(wbs, wb)
	}
	return wbs, nil
}

func (repo gradingRepository) GetWorkbookByID(id string) (grading.Workbook, error) {
	var row workbookRow
	err := repo.db.Get(
		&row,
		`SELECT id, owner_id, title, problem_count, marks, labels, updated_at
		 FROM workbook WHERE id = $1`,
		id,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return grading.Workbook{}, grading.ErrNotFound
		}
		return grading.Workbook{}, errors.Wrap(err, "getting workbook")
	}
	return repo.unpack(row)
}

func (repo gradingRepository) CreateWorkbook(wb grading.Workbook) (grading.Workbook, error) {
	row, err := repo.pack(wb)
	if err != nil {
		return grading.Workbook{}, err
	}
	_, err = repo.db.NamedExec(
		`INSERT INTO workbook (id, owner_id, title, problem_count, marks, labels, updated_at)
		 VALUES (:id, :owner_id, :title, :problem_count, :marks, :labels, :updated_at)`,
		row,
	)
	if err != nil {
		return grading.Workbook{}, errors.Wrap(err, "creating workbook")
	}
	return wb, nil
}

func (repo gradingRepository) DeleteWorkbook(id string) error {
	// chapters go with it (FK ON DELETE CASCADE)
	res, err := repo.db.Exec(`DELETE FROM workbook WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting workbook")
	}
	return repo.trapMissing(res, grading.ErrNotFound, "deleting workbook")
}

func (repo gradingRepository) SaveWorkbookMarks(id string, marks []grading.Mark) error {
	data, err := json.Marshal(marks)
	if err != nil {
		return errors.Wrap(err, "encoding marks")
	}
	res, err := repo.db.Exec(
		`UPDATE workbook SET marks = $1, updated_at = now() WHERE id = $2`,
		data, id,
	)
	if err != nil {
		return errors.Wrap(err, "saving marks")
	}
	return repo.trapMissing(res, grading.ErrNotFound, "saving marks")
}

func (repo gradingRepository) QueryChaptersByWorkbook(workbookIDs ...string) ([]grading.Chapter, error) {
	if len(workbookIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, workbook_id, start_index, end_index, note, updated_at
		 FROM chapter WHERE workbook_id IN (?) ORDER BY workbook_id, start_index`,
		workbookIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building chapters query")
	}
	var rows []chapterRow
	if err = repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying chapters")
	}
	chapters := make([]grading.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, repo.unpackChapter(row))
	}
	return chapters, nil
}

func (repo gradingRepository) CreateChapter(ch grading.Chapter) (grading.Chapter, error) {
	_, err := repo.db.Exec(
		`INSERT INTO chapter (id, workbook_id, start_index, end_index, note, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ch.ID, ch.WorkbookID, ch.StartIndex, ch.EndIndex, ch.Note, ch.UpdatedAt.UTC(),
	)
	if err != nil {
		return grading.Chapter{}, errors.Wrap(err, "creating chapter")
	}
	return ch, nil
}

func (repo gradingRepository) DeleteChapter(id string) error {
	res, err := repo.db.Exec(`DELETE FROM chapter WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting chapter")
	}
	return repo.trapMissing(res, grading.ErrChapterNotFound, "deleting chapter")
}

func (repo gradingRepository) UpdateChapterNote(id, note string) error {
	res, err := repo.db.Exec(
		`UPDATE chapter SET note = $1, updated_at = now() WHERE id = $2`,
		note, id,
	)
	if err != nil {
		return errors.Wrap(err, "updating chapter note")
	}
	return repo.trapMissing(res, grading.ErrChapterNotFound, "updating chapter note")
}

// trapMissing maps a no-op write to the domain's not-found error.
func (repo gradingRepository) trapMissing(res sql.Result, missing error, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return missing
	}
	return nil
}
