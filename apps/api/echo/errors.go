package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/alama/core"
	"github.com/mwalimu/alama/core/grading"
)

// appHTTPErrorHandler maps the engine's error taxonomy onto HTTP statuses:
// validation errors to 400, unresolved workbooks/chapters to 404, chapter
// overlap conflicts to 409 (with the conflicting chapter's title and range),
// anything else to 500.
func appHTTPErrorHandler(err error, c echo.Context) {
	var code int
	var message interface{}

	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause.Internal != nil {
			if herr, ok := cause.Internal.(*echo.HTTPError); ok {
				cause = herr
			}
		}
		code = cause.Code
		message = cause.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string)
		for _, vErr := range cause {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if cause.Fields != nil {
			fldErrs := make(map[string]string)
			for _, fErr := range cause.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = cause.Error()
		}
		code = http.StatusBadRequest
	case *grading.OverlapError:
		code = http.StatusConflict
		message = echo.Map{
			"error": cause.Error(),
			"conflict": echo.Map{
				"title": cause.Conflict.DisplayTitle(),
				"range": cause.Range,
			},
		}
	default:
		switch errors.Cause(err) {
		case grading.ErrNotFound, grading.ErrChapterNotFound:
			code = http.StatusNotFound
			message = errors.Cause(err).Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)
		}
	}

	if c.Echo().Debug {
		message = err.Error()
	} else if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead { // Issue #608
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
