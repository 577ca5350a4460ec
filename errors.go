package gocas

import (
	"errors"
	"fmt"
)

// Error kinds reported by the engine. Every failure returned by an Engine
// method wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrUnsupportedOperator means an operation met a node it has no rule for,
	// such as differentiating an uninterpreted function of the variable.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrNoClosedForm means no strategy produced a closed-form result.
	ErrNoClosedForm = errors.New("no closed form")

	// ErrLimitDoesNotExist means one-sided limits differ or the expression oscillates.
	ErrLimitDoesNotExist = errors.New("limit does not exist")

	// ErrUnsolvable means the equation is outside the solvable classes.
	ErrUnsolvable = errors.New("unsolvable")

	// ErrInvalidArgument means an argument is malformed, e.g. a bound that
	// depends on the integration variable.
	ErrInvalidArgument = errors.New("invalid argument")
)

// OpError describes a failed engine operation.
type OpError struct {
	// Op is the operation name, e.g. "integrate".
	Op string

	// Expr is the rendered expression the operation failed on, if any.
	Expr string

	// Msg gives detail beyond the error kind.
	Msg string

	// Err is one of the Err* kinds.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	s := e.Op + ": " + e.Err.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Expr != "" {
		s += " (" + e.Expr + ")"
	}
	return s
}

// Unwrap returns the error kind.
func (e *OpError) Unwrap() error { return e.Err }

// ErrorKind returns a stable snake_case name for the kind wrapped by err,
// or "internal" when err is not an engine error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedOperator):
		return "unsupported_operator"
	case errors.Is(err, ErrNoClosedForm):
		return "no_closed_form"
	case errors.Is(err, ErrLimitDoesNotExist):
		return "limit_does_not_exist"
	case errors.Is(err, ErrUnsolvable):
		return "unsolvable"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	}
	return "internal"
}

// IsEngineError reports whether err carries one of the engine error kinds.
func IsEngineError(err error) bool {
	var oe *OpError
	return errors.As(err, &oe)
}

func (e *Engine) fail(op string, kind error, x Expr, format string, args ...any) error {
	oe := &OpError{Op: op, Err: kind, Msg: fmt.Sprintf(format, args...)}
	if x != 0 {
		oe.Expr = e.String(x)
	}
	return oe
}

func opErr(op string, kind error, format string, args ...any) error {
	return &OpError{Op: op, Err: kind, Msg: fmt.Sprintf(format, args...)}
}
