package filter

import "fmt"

// CompilationError is returned by Compile. Column is 1-based and zero when
// the failure has no source location.
type CompilationError struct {
	Expr    string
	Column  int
	Message string
	Err     error
}

func (e *CompilationError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("filter %q: %s (column %d)", e.Expr, e.Message, e.Column)
	}
	return fmt.Sprintf("filter %q: %s", e.Expr, e.Message)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError is returned when a compiled filter fails on one record,
// identified by its license plate.
type EvaluationError struct {
	Expr  string
	Plate string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("filter %q failed on %s: %v", e.Expr, e.Plate, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
