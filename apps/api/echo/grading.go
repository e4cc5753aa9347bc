package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/alama/core"
	"github.com/mwalimu/alama/core/grading"
)

const errBadIndexText = "index must be a 0-based problem position"

type gradingApi struct {
	svc *grading.Service
}

func registerGradingAPI(g *echo.Group, svc *grading.Service) {
	api := gradingApi{svc: svc}

	sg := g.Group("/students/:ownerID/workbooks")
	sg.GET("", api.query)
	sg.POST("", api.create)

	wg := g.Group("/workbooks/:id")
	wg.GET("", api.retrieve)
	wg.DELETE("", api.destroy)
	wg.PUT("/marks/:index", api.setMark)
	wg.POST("/marks/:index/cycle", api.cycleMark)
	wg.POST("/marks/range", api.rangeMarks)
	wg.POST("/save", api.saveMarks)
	wg.POST("/chapters", api.createChapter)
	wg.DELETE("/chapters", api.removeChapter)

	cg := g.Group("/chapters/:id")
	cg.PUT("/note", api.updateNote)
	cg.POST("/save", api.saveNote)
}

type (
	markResponse struct {
		Mark grading.Mark `json:"mark"`
	}

	saveResponse struct {
		Saved  bool   `json:"saved"`
		Status string `json:"status,omitempty"`
	}
)

// Handlers

func (api *gradingApi) query(ctx echo.Context) error {
	views, err := api.svc.OwnerOverview(ctx.Param("ownerID"))
	if err != nil {
		return errors.Wrap(err, "loading workbooks")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *gradingApi) create(ctx echo.Context) error {
	var data grading.NewWorkbook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWorkbook")
	}
	wb, err := api.svc.Create(ctx.Param("ownerID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, wb)
}

func (api *gradingApi) retrieve(ctx echo.Context) error {
	view, err := api.svc.Overview(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *gradingApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradingApi) setMark(ctx echo.Context) error {
	index, err := pathIndex(ctx)
	if err != nil {
		return err
	}
	var data grading.SetMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetMark")
	}
	if err := api.svc.SetProblemMark(ctx.Param("id"), index, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, markResponse{Mark: data.Mark})
}

func (api *gradingApi) cycleMark(ctx echo.Context) error {
	index, err := pathIndex(ctx)
	if err != nil {
		return err
	}
	mark, err := api.svc.CycleProblemMark(ctx.Param("id"), index)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, markResponse{Mark: mark})
}

func (api *gradingApi) rangeMarks(ctx echo.Context) error {
	var data grading.RangeMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RangeMarks")
	}
	if err := api.svc.ApplyRangeMarks(ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, markResponse{Mark: data.Mark})
}

func (api *gradingApi) saveMarks(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.SaveMarks(id); err != nil {
		return ctx.JSON(http.StatusBadGateway, saveResponse{Status: api.svc.Status(id)})
	}
	return ctx.JSON(http.StatusOK, saveResponse{Saved: true})
}

func (api *gradingApi) createChapter(ctx echo.Context) error {
	var data grading.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	ch, err := api.svc.CreateChapter(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ch)
}

func (api *gradingApi) removeChapter(ctx echo.Context) error {
	var data grading.ChapterRange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChapterRange")
	}
	ch, err := api.svc.RemoveChapter(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ch)
}

func (api *gradingApi) updateNote(ctx echo.Context) error {
	var data grading.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err := api.svc.EditNote(ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradingApi) saveNote(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.svc.SaveNote(id); err != nil {
		return ctx.JSON(http.StatusBadGateway, saveResponse{Status: api.svc.Status(id)})
	}
	return ctx.JSON(http.StatusOK, saveResponse{Saved: true})
}

func pathIndex(ctx echo.Context) (int, error) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "index", Error: errBadIndexText})
	}
	return index, nil
}
