package scope

import "fmt"

// InternalError is the only panic value the core raises. Every condition it
// wraps is a programmer error - an invalid event sequence, a missing
// builder, an out-of-table state transition - that cannot occur on a
// well-formed AST traversal. It is never raised in response to a JS-level
// semantic error; those are left for the downstream emitter to report (see
// package doc).
type InternalError struct {
	msg string
}

func (e *InternalError) Error() string { return "scope: " + e.msg }

func fail(format string, args ...interface{}) {
	panic(&InternalError{msg: fmt.Sprintf(format, args...)})
}
