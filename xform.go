package xform

import (
	"errors"
	"fmt"
)

// Standard widths.
const (
	Width8  = 8
	Width16 = 16
	Width32 = 32
	Width64 = 64
)

var (
	ErrInvalidBitness = errors.New("invalid bitness")
)

// InvariantError is the panic value raised when an expression violates a
// structural invariant, such as an operator with the wrong arity or a cast
// to an unparsable type. It indicates a bug in the producer of the tree.
type InvariantError struct {
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return "xform: invariant violation: " + e.Message
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
	}
}
