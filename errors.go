package magicurl

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrPattern     = errors.New("invalid pattern")
	ErrOutOfRange  = errors.New("operation exceeds document length")
	ErrInvalidOp   = errors.New("invalid operation")
	ErrConfigParse = errors.New("failed to parse options")
)

// PatternError reports a configured pattern that could not be compiled or evaluated.
// It is returned the first time the pattern is used, not when the config is built.
type PatternError struct {
	Name string // configuration key, e.g. "urlRegularExpression"
	Expr string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrPattern, e.Name, e.Expr, e.Err)
}

func (e *PatternError) Unwrap() []error {
	return []error{ErrPattern, e.Err}
}
