package report

import (
	"errors"
	"strings"
)

var (
	// ErrUpload marks failures of the file store. Test with errors.Is.
	ErrUpload = errors.New("upload failed")
	// ErrStore marks failures of the tabular store. Test with errors.Is.
	ErrStore = errors.New("store operation failed")

	errInvalidReport = errors.New("report is invalid")
)

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError carries every user-fixable problem found in a submission.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) *ValidationError {
	return &ValidationError{Err: err, Fields: flds}
}

func (err *ValidationError) Error() string {
	if len(err.Fields) == 0 {
		if err.Err == nil {
			return ""
		}
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

// FieldMap returns the field errors keyed by field name. Messages for the same
// field are joined.
func (err *ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		if prev, ok := m[f.Field]; ok {
			m[f.Field] = prev + "; " + f.Error
			continue
		}
		m[f.Field] = f.Error
	}
	return m
}

// Merge combines validation errors into one, ignoring nils. A non-validation
// error is returned as is.
func Merge(errs ...error) error {
	var fields []FieldError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			fields = append(fields, vErr.Fields...)
			continue
		}
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return NewValidationError(errInvalidReport, fields...)
}
