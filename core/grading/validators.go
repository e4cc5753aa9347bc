package grading

import (
	"github.com/go-playground/validator/v10"

	"github.com/mwalimu/alama/core"
)

// custom validation tags & texts
var (
	markTag  = "mark"
	markText = "mark must be one of: none, correct, incorrect, partial"

	errLabelCountText = "labels must have exactly one entry per problem"
)

func init() {
	_ = core.Validate.RegisterValidation(markTag, markValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, markTag, markText)
}

// markValidation only allows the four known mark values.
func markValidation(fl validator.FieldLevel) bool {
	return Mark(fl.Field().String()).IsValid()
}
