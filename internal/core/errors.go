package core

import "errors"

// Grid precondition failures. Callers wrap these with the offending values and
// match them with errors.Is.
var (
	// ErrInvalidDimension reports non-positive or too-small grid extents.
	ErrInvalidDimension = errors.New("core: invalid grid dimension")
	// ErrDimensionMismatch reports a value slice whose length disagrees with rows*cols.
	ErrDimensionMismatch = errors.New("core: value count does not match dimensions")
	// ErrShapeMismatch reports elementwise operands with different shapes.
	ErrShapeMismatch = errors.New("core: grid shapes differ")
	// ErrIndexOutOfRange reports an access or slice outside the grid bounds.
	ErrIndexOutOfRange = errors.New("core: index out of range")
)
