package model

import (
	"fmt"

	"github.com/robotalks/uvk5.go/pkg/framework"
)

// ValidationError reports a value the radio doesn't accept.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v %s", e.Field, e.Value, e.Reason)
}

func invalid(field string, value interface{}, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// ValidationErrors extracts every ValidationError from err, which may be a
// single error or an aggregate.
func ValidationErrors(err error) []*ValidationError {
	var errs []*ValidationError
	switch e := err.(type) {
	case *ValidationError:
		errs = append(errs, e)
	case *framework.AggregatedError:
		for _, err := range e.Errors {
			errs = append(errs, ValidationErrors(err)...)
		}
	}
	return errs
}
