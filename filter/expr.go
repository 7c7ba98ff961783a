package filter

import (
	"errors"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"
)

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache enables program caching with the specified size
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithClock sets the time source used for `now` and the time helpers
func WithClock(now func() time.Time) CompilerOption {
	return func(c *Compiler) {
		if now != nil {
			c.now = now
		}
	}
}

// Compiler turns filter expressions into programs evaluated against
// reservations and favorites. It is safe for concurrent use.
type Compiler struct {
	cache *programCache
	now   func() time.Time
}

// NewCompiler creates a compiler. Caching is off unless WithCache is given.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program is a compiled filter expression
type Program struct {
	expression string
	program    *vm.Program
	now        func() time.Time
}

// Compile compiles a boolean expression. Unknown identifiers and
// non-boolean results are compile errors.
func (c *Compiler) Compile(expression string) (*Program, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expr: expression, Message: "empty expression"}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// The zero record yields an environment with the runtime value types
	program, err := expr.Compile(expression,
		expr.Env(environment(record{}, time.Time{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, compilationError(expression, err)
	}

	p := &Program{
		expression: expression,
		program:    program,
		now:        c.now,
	}

	if c.cache != nil {
		c.cache.Put(expression, p)
	}

	return p, nil
}

// CacheSize returns the number of cached programs
func (c *Compiler) CacheSize() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// ClearCache removes all cached programs
func (c *Compiler) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Expression returns the source of the program
func (p *Program) Expression() string {
	return p.expression
}

func (p *Program) run(rec record) (bool, error) {
	result, err := expr.Run(p.program, environment(rec, p.now()))
	if err != nil {
		return false, &EvaluationError{Expr: p.expression, Plate: rec.plate, Err: err}
	}

	// AsBool guarantees the result type
	return result.(bool), nil
}

func compilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{Expr: expression, Message: err.Error(), Err: err}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ce.Message = fileErr.Message
		ce.Column = fileErr.Column + 1
	}
	return ce
}
