package gram

import (
	"errors"
	"fmt"

	"github.com/syfxie/Blend/internal/tensor"
)

// Common errors. Every error returned by this package wraps one of them.
var (
	ErrShape = errors.New("incompatible tensor shape")
	ErrType  = errors.New("unsupported tensor dtype")
)

// ShapeError reports an input whose rank or dimensions do not fit the
// expected layout.
type ShapeError struct {
	Op    string       // Operation that rejected the input (e.g. "gram.Normalized")
	Shape tensor.Shape // Offending shape
	Want  string       // Expected layout
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v %v: want %s", e.Op, ErrShape, e.Shape, e.Want)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// TypeError reports an input that is not a real floating-point tensor.
type TypeError struct {
	Op    string
	DType tensor.DataType
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %v %s: want float32 or float64", e.Op, ErrType, e.DType)
}

// Unwrap returns ErrType.
func (e *TypeError) Unwrap() error {
	return ErrType
}
