package core

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when user-supplied input is rejected before any
// state change happens. Fields, when set, carries per-field details.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		return "invalid input"
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}
