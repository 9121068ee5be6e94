// Package cods is the facade tying every pipeline stage together: lex,
// group, check, evaluate, one source string at a time or as a batch. A
// Context is the single long-lived object owning the identifier interner
// and accumulated diagnostics; each run identity is a uuid so concurrent
// batches can be told apart downstream.
package cods

import (
	"bytes"
	gocontext "context"
	"io"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/checker"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/eval"
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/lexer"
	"github.com/funvibe/cods/internal/symbol"
	"github.com/funvibe/cods/internal/token"
	"github.com/funvibe/cods/internal/value"
)

// Result is the outcome of running one source through the full pipeline.
type Result struct {
	Program  *ast.Asts
	Value    value.Val
	Errors   []*errors.Error
	Warnings []*errors.Warning
}

// Ok reports whether the source lexed, grouped, checked, and ran without
// a fatal error.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

// Context is one independent run of the language. It owns the identifier
// interner and the accumulated diagnostics; Clear resets the diagnostics
// but keeps the interner's handles alive, so re-running a source against
// the same Context resolves names to the same ids.
type Context struct {
	id       uuid.UUID
	out      io.Writer
	interner *symbol.Interner
	errs     []*errors.Error
	warns    []*errors.Warning
}

// New creates a Context that sends print/println/spill output to out.
func New(out io.Writer) *Context {
	return &Context{id: uuid.New(), out: out, interner: symbol.NewInterner()}
}

// ID returns this Context's run identity.
func (c *Context) ID() uuid.UUID { return c.id }

// Errors returns every fatal diagnostic accumulated since the last Clear.
func (c *Context) Errors() []*errors.Error { return c.errs }

// Warnings returns every recoverable diagnostic accumulated since the
// last Clear.
func (c *Context) Warnings() []*errors.Warning { return c.warns }

// Clear drops accumulated diagnostics. Interned identifier handles are
// deliberately kept.
func (c *Context) Clear() {
	c.errs = nil
	c.warns = nil
}

// Lex tokenizes one source string, accumulating recoverable diagnostics
// on the Context.
func (c *Context) Lex(src string) ([]token.Token, *errors.Error) {
	toks, err, warns := lexer.Lex(src)
	c.warns = append(c.warns, warns...)
	if err != nil {
		c.errs = append(c.errs, err)
	}
	return toks, err
}

// Parse groups and checks a token stream, returning the checked program
// and the first fatal error, with every diagnostic accumulated on the
// Context.
func (c *Context) Parse(toks []token.Token) (*ast.Asts, *errors.Error) {
	items, groupErr, groupWarns := grouper.GroupTokens(toks)
	c.warns = append(c.warns, groupWarns...)
	if groupErr != nil {
		c.errs = append(c.errs, groupErr)
		return nil, groupErr
	}

	prog, checkErrs, checkWarns := checker.CheckWith(c.interner, items)
	c.warns = append(c.warns, checkWarns...)
	c.errs = append(c.errs, checkErrs...)
	if len(checkErrs) > 0 {
		return prog, checkErrs[0]
	}
	return prog, nil
}

// EvalAll evaluates a checked program against the Context's sink. The
// returned pointer is nil when the program's last expression has type
// Unit, mirroring the "no value" outcome.
func (c *Context) EvalAll(prog *ast.Asts) (*value.Val, *errors.Error) {
	val, runErr := eval.New(c.out).Run(prog)
	if runErr != nil {
		c.errs = append(c.errs, runErr)
		return nil, runErr
	}
	if val.Kind == value.Unit {
		return nil, nil
	}
	return &val, nil
}

// ParseAndEval lexes, groups, checks, and evaluates one source string.
// Each stage's warnings are preserved even when a later stage fails, so a
// caller always sees every recoverable diagnostic up to the first fatal
// one.
func (c *Context) ParseAndEval(src string) Result {
	errStart, warnStart := len(c.errs), len(c.warns)
	collect := func(prog *ast.Asts, val value.Val) Result {
		return Result{
			Program:  prog,
			Value:    val,
			Errors:   c.errs[errStart:],
			Warnings: c.warns[warnStart:],
		}
	}

	toks, lexErr := c.Lex(src)
	if lexErr != nil {
		return collect(nil, value.UnitVal())
	}

	prog, parseErr := c.Parse(toks)
	if parseErr != nil {
		return collect(prog, value.UnitVal())
	}

	val, runErr := c.EvalAll(prog)
	if runErr != nil {
		return collect(prog, value.UnitVal())
	}
	if val == nil {
		return collect(prog, value.UnitVal())
	}
	return collect(prog, *val)
}

// ParseAndEvalAll runs every source concurrently, one goroutine per
// source via errgroup, each against its own private Context and output
// buffer so no evaluator frame stack or interner is ever touched from
// more than one goroutine at a time. Buffered output is flushed to the
// parent Context's sink in input order once every source has finished,
// keeping output deterministic regardless of completion order.
func (c *Context) ParseAndEvalAll(ctx gocontext.Context, sources []string) ([]Result, error) {
	results := make([]Result, len(sources))
	buffers := make([]bytes.Buffer, len(sources))

	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			child := New(&buffers[i])
			child.id = c.id
			results[i] = child.ParseAndEval(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range buffers {
		if _, err := io.Copy(c.out, &buffers[i]); err != nil {
			return results, err
		}
	}
	return results, nil
}
