package layout

import "fmt"

// BoundsError reports a field or array access outside the image.
// It indicates a defect in a schema or caller, not a runtime fault.
type BoundsError struct {
	Field  string
	Offset int
	Size   int
	Limit  int
}

// Error implements error.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("layout: %s at 0x%04x+%d outside %d bytes", e.name(), e.Offset, e.Size, e.Limit)
}

func (e *BoundsError) name() string {
	if e.Field == "" {
		return "access"
	}
	return e.Field
}

// RangeError reports a value that the field cannot represent.
type RangeError struct {
	Field  string
	Value  interface{}
	Reason string
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("layout: %s: value %v %s", e.Field, e.Value, e.Reason)
}

// KindError reports a codec call that doesn't match the field kind.
type KindError struct {
	Field string
	Want  Kind
	Got   Kind
}

// Error implements error.
func (e *KindError) Error() string {
	return fmt.Sprintf("layout: %s is %s, not %s", e.Field, e.Got, e.Want)
}

// OverlapError reports two specs claiming the same bit.
type OverlapError struct {
	Field  string
	Other  string
	Offset int
	Bit    int
}

// Error implements error.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("layout: %s overlaps %s at 0x%04x bit %d", e.Field, e.Other, e.Offset, e.Bit)
}

// SpecError reports a malformed FieldSpec.
type SpecError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *SpecError) Error() string {
	return fmt.Sprintf("layout: %s: %s", e.Field, e.Reason)
}
