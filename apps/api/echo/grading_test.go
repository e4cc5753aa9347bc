package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mwalimu/alama/core/grading"
	"github.com/mwalimu/alama/storage/database/dummy"
	"github.com/mwalimu/alama/tests"
)

const ownerID = "1d8236b2-8873-47e7-a32a-0b9a3bb9ce7a"

func setup(t *testing.T) (*gradingApi, *dummydb.DB) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	svc := grading.NewService(dummydb.NewGradingRepository(db), nil)
	t.Cleanup(svc.Close)
	return &gradingApi{svc: svc}, db
}

func newRequest(e *echo.Echo, method, path string, data ...[]byte) (echo.Context, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return ctx, rec
}

func marshal(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal() failed: %v", err)
	}
	return data
}

func Test_gradingApi_create(t *testing.T) {
	api, _ := setup(t)
	e := echo.New()

	body := marshal(t, grading.NewWorkbook{Title: "Algebra I", ProblemCount: 10})
	ctx, rec := newRequest(e, http.MethodPost, "/v1/students/"+ownerID+"/workbooks", body)
	ctx.SetParamNames("ownerID")
	ctx.SetParamValues(ownerID)

	if assert.NoError(t, api.create(ctx)) {
		assert.Equal(t, http.StatusCreated, rec.Code)

		var wb grading.Workbook
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wb))
		assert.Equal(t, ownerID, wb.OwnerID)
		assert.Equal(t, "Algebra I", wb.Title)
		assert.Equal(t, grading.NewMarks(10), wb.Marks)
	}

	// invalid problem count is rejected before anything is stored
	body = marshal(t, grading.NewWorkbook{Title: "Broken", ProblemCount: 0})
	ctx, _ = newRequest(e, http.MethodPost, "/v1/students/"+ownerID+"/workbooks", body)
	ctx.SetParamNames("ownerID")
	ctx.SetParamValues(ownerID)
	assert.Error(t, api.create(ctx))
}

func Test_gradingApi_retrieve(t *testing.T) {
	api, db := setup(t)
	e := echo.New()

	repo := dummydb.NewGradingRepository(db)
	wb := testutil.CreateWorkbook(t, repo, ownerID, "Algebra I", 10)
	testutil.CreateChapter(t, repo, wb.ID, 2, 5, "Fractions\nredo 12")

	ctx, rec := newRequest(e, http.MethodGet, "/v1/workbooks/"+wb.ID)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)

	if assert.NoError(t, api.retrieve(ctx)) {
		assert.Equal(t, http.StatusOK, rec.Code)

		var view grading.WorkbookView
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Len(t, view.Chapters, 1)
		if assert.Len(t, view.Segments, 3) {
			assert.Equal(t, grading.SegmentFree, view.Segments[0].Kind)
			assert.Equal(t, grading.SegmentChapter, view.Segments[1].Kind)
			assert.Equal(t, 2, view.Segments[1].StartIndex)
			assert.Equal(t, 5, view.Segments[1].EndIndex)
			assert.Equal(t, grading.SegmentFree, view.Segments[2].Kind)
		}
	}

	// unknown workbook
	ctx, _ = newRequest(e, http.MethodGet, "/v1/workbooks/nope")
	ctx.SetParamNames("id")
	ctx.SetParamValues("nope")
	assert.Equal(t, grading.ErrNotFound, errors.Cause(api.retrieve(ctx)))
}

func Test_gradingApi_marks(t *testing.T) {
	api, db := setup(t)
	e := echo.New()

	wb := testutil.CreateWorkbook(t, dummydb.NewGradingRepository(db), ownerID, "Algebra I", 10)

	// direct set
	body := marshal(t, grading.SetMark{Mark: grading.MarkIncorrect})
	ctx, rec := newRequest(e, http.MethodPut, "/v1/workbooks/"+wb.ID+"/marks/3", body)
	ctx.SetParamNames("id", "index")
	ctx.SetParamValues(wb.ID, "3")
	if assert.NoError(t, api.setMark(ctx)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// cycle: incorrect -> partial
	ctx, rec = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/marks/3/cycle")
	ctx.SetParamNames("id", "index")
	ctx.SetParamValues(wb.ID, "3")
	if assert.NoError(t, api.cycleMark(ctx)) {
		var resp markResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, grading.MarkPartial, resp.Mark)
	}

	// non-numeric index
	ctx, _ = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/marks/abc/cycle")
	ctx.SetParamNames("id", "index")
	ctx.SetParamValues(wb.ID, "abc")
	assert.Error(t, api.cycleMark(ctx))

	// range apply, then manual save persists it
	body = marshal(t, grading.RangeMarks{From: "1", To: "10", Mark: grading.MarkCorrect})
	ctx, _ = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/marks/range", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	assert.NoError(t, api.rangeMarks(ctx))

	ctx, rec = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/save")
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	if assert.NoError(t, api.saveMarks(ctx)) {
		var resp saveResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Saved)
	}

	stored, err := dummydb.NewGradingRepository(db).GetWorkbookByID(wb.ID)
	assert.NoError(t, err)
	for _, m := range stored.Marks {
		assert.Equal(t, grading.MarkCorrect, m)
	}
}

func Test_gradingApi_chapters(t *testing.T) {
	api, _ := setup(t)
	e := echo.New()

	body := marshal(t, grading.NewWorkbook{Title: "Algebra I", ProblemCount: 10})
	ctx, rec := newRequest(e, http.MethodPost, "/v1/students/"+ownerID+"/workbooks", body)
	ctx.SetParamNames("ownerID")
	ctx.SetParamValues(ownerID)
	assert.NoError(t, api.create(ctx))
	var wb grading.Workbook
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wb))

	// create [2,5]
	body = marshal(t, grading.NewChapter{From: "3", To: "6", Title: "Fractions", Remark: "redo 12"})
	ctx, rec = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/chapters", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	var fractions grading.Chapter
	if assert.NoError(t, api.createChapter(ctx)) {
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fractions))
		assert.Equal(t, "Fractions", fractions.Title())
	}

	// overlapping create is rejected with the conflicting chapter
	body = marshal(t, grading.NewChapter{From: "5", To: "8", Title: "Decimals"})
	ctx, _ = newRequest(e, http.MethodPost, "/v1/workbooks/"+wb.ID+"/chapters", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	err := api.createChapter(ctx)
	var overlapErr *grading.OverlapError
	if assert.True(t, errors.As(err, &overlapErr)) {
		assert.Equal(t, fractions.ID, overlapErr.Conflict.ID)
	}

	// remove by exact range
	body = marshal(t, grading.ChapterRange{From: "3", To: "6"})
	ctx, rec = newRequest(e, http.MethodDelete, "/v1/workbooks/"+wb.ID+"/chapters", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	if assert.NoError(t, api.removeChapter(ctx)) {
		var removed grading.Chapter
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
		assert.Equal(t, fractions.ID, removed.ID)
	}

	// nothing matches anymore
	body = marshal(t, grading.ChapterRange{From: "3", To: "6"})
	ctx, _ = newRequest(e, http.MethodDelete, "/v1/workbooks/"+wb.ID+"/chapters", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	assert.Equal(t, grading.ErrChapterNotFound, errors.Cause(api.removeChapter(ctx)))
}

func Test_gradingApi_notes(t *testing.T) {
	api, db := setup(t)
	e := echo.New()

	repo := dummydb.NewGradingRepository(db)
	wb := testutil.CreateWorkbook(t, repo, ownerID, "Algebra I", 10)
	ch := testutil.CreateChapter(t, repo, wb.ID, 0, 3, "Intro\nskim")

	// the session has to hold the workbook before editing its notes
	ctx, _ := newRequest(e, http.MethodGet, "/v1/workbooks/"+wb.ID)
	ctx.SetParamNames("id")
	ctx.SetParamValues(wb.ID)
	assert.NoError(t, api.retrieve(ctx))

	body := marshal(t, grading.UpdateNote{Title: "Intro", Remark: "read twice"})
	ctx, _ = newRequest(e, http.MethodPut, "/v1/chapters/"+ch.ID+"/note", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues(ch.ID)
	assert.NoError(t, api.updateNote(ctx))

	ctx, rec := newRequest(e, http.MethodPost, "/v1/chapters/"+ch.ID+"/save")
	ctx.SetParamNames("id")
	ctx.SetParamValues(ch.ID)
	assert.NoError(t, api.saveNote(ctx))
	var resp saveResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Saved)

	chapters, err := repo.QueryChaptersByWorkbook(wb.ID)
	assert.NoError(t, err)
	if assert.Len(t, chapters, 1) {
		assert.Equal(t, "Intro\nread twice", chapters[0].Note)
	}
}
