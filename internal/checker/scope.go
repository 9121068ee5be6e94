// Scope management: a stack of lexical scopes with function barriers.
// Every variable gets a dense stack-frame slot at declaration time, so
// the evaluator never does a hash lookup per access.
package checker

import (
	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/symbol"
	"github.com/funvibe/cods/internal/value"
)

// varEntry records everything the checker needs about one declared
// variable.
type varEntry struct {
	slot      int
	mutable   bool
	declType  value.DataType
	declSpan  span.Span
}

// funEntry records a declared function, including its forward-declaration
// span so a later redefinition can be reported with both locations.
type funEntry struct {
	fun      *ast.Fun
	declSpan span.Span
}

// lexicalScope is one entry in the scope stack. Variables and functions
// are keyed by their interned symbol id, never by name string; the name
// is only recovered (via the interner) when a diagnostic needs it.
type lexicalScope struct {
	isFunctionBarrier bool
	vars              map[symbol.ID]*varEntry
	varOrder          []symbol.ID
	funs              map[symbol.ID]*funEntry
	nextSlot          int
}

func newScope(barrier bool, startSlot int) *lexicalScope {
	return &lexicalScope{
		isFunctionBarrier: barrier,
		vars:              make(map[symbol.ID]*varEntry),
		funs:              make(map[symbol.ID]*funEntry),
		nextSlot:          startSlot,
	}
}

// scopeStack tracks scopes for the program currently being checked, plus
// the running max frame size for globals and for the function currently
// being checked.
type scopeStack struct {
	scopes []*lexicalScope

	// frameSizes[i] is the running-maximum frame size for the i-th
	// function barrier on the stack (frameSizes[0] is globals).
	frameSizes []int
}

func newScopeStack() *scopeStack {
	s := &scopeStack{}
	s.scopes = append(s.scopes, newScope(true, 0))
	s.frameSizes = append(s.frameSizes, 0)
	return s
}

// pushBlock enters a new non-function scope (if/while/for/block bodies).
// It shares slot allocation with its enclosing function: next_slot
// continues from the parent scope's current value within the same
// function, and the function's running-max frame size is updated as
// slots are allocated.
func (s *scopeStack) pushBlock() {
	parent := s.scopes[len(s.scopes)-1]
	s.scopes = append(s.scopes, newScope(false, parent.nextSlot))
}

func (s *scopeStack) popBlock() {
	child := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	// Sibling blocks within the same function reuse slot numbers (the
	// checker has already ensured no collisions across siblings since
	// each starts counting from the parent's nextSlot); record the high
	// watermark for the enclosing function.
	s.bumpFrameSize(child.nextSlot)
}

// pushFunction enters a new function scope barrier, resetting slot
// allocation to 0 for this function's frame.
func (s *scopeStack) pushFunction() {
	s.scopes = append(s.scopes, newScope(true, 0))
	s.frameSizes = append(s.frameSizes, 0)
}

// popFunction leaves a function scope, returning its final frame size.
func (s *scopeStack) popFunction() int {
	s.bumpFrameSize(s.scopes[len(s.scopes)-1].nextSlot)
	size := s.frameSizes[len(s.frameSizes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.frameSizes = s.frameSizes[:len(s.frameSizes)-1]
	return size
}

func (s *scopeStack) bumpFrameSize(n int) {
	i := len(s.frameSizes) - 1
	if n > s.frameSizes[i] {
		s.frameSizes[i] = n
	}
}

// globalFrameSize reports the running-max frame size for the outermost
// (global) frame. Valid once the whole program has been checked.
func (s *scopeStack) globalFrameSize() int {
	return s.frameSizes[0]
}

// declare allocates a fresh slot for name in the current scope. If name
// is already declared in this exact scope it allocates nothing and
// returns the existing entry as its second result (the caller reports
// RedefinedVar).
func (s *scopeStack) declare(name symbol.ID, mutable bool, declType value.DataType, at span.Span) (*varEntry, *varEntry) {
	cur := s.scopes[len(s.scopes)-1]
	if existing, ok := cur.vars[name]; ok {
		return nil, existing
	}
	e := &varEntry{slot: cur.nextSlot, mutable: mutable, declType: declType, declSpan: at}
	cur.vars[name] = e
	cur.varOrder = append(cur.varOrder, name)
	cur.nextSlot++
	s.bumpFrameSize(cur.nextSlot)
	return e, nil
}

// depthResult describes a successful lookup: how many function barriers
// were crossed (0 = same function) and the resolved entry. isGlobal
// reports whether the variable was declared in the outermost (global)
// scope, which may always be referenced regardless of how many function
// barriers separate the reference from it. Only a capture of a
// *non-global* enclosing function's local is illegal.
type depthResult struct {
	entry    *varEntry
	depth    int
	isGlobal bool
}

// lookup walks the scope stack outward from the innermost scope,
// counting how many function barriers are crossed.
func (s *scopeStack) lookup(name symbol.ID) (*depthResult, bool) {
	depth := 0
	for i := len(s.scopes) - 1; i >= 0; i-- {
		sc := s.scopes[i]
		if e, ok := sc.vars[name]; ok {
			return &depthResult{entry: e, depth: depth, isGlobal: i == 0}, true
		}
		if sc.isFunctionBarrier {
			depth++
		}
	}
	return nil, false
}

// isIllegalCapture reports whether a resolved reference crosses a
// function barrier to reach a variable that is not in the global frame.
// Such a variable's frame is not guaranteed live relative to the
// referencing function's activation; global access and same-function
// access are always legal.
func (r *depthResult) isIllegalCapture() bool {
	return r.depth > 0 && !r.isGlobal
}

// atGlobalScope reports whether the current (innermost) scope is the
// single outermost global scope.
func (s *scopeStack) atGlobalScope() bool {
	return len(s.scopes) == 1
}

// declareFun registers a forward-declared function header in the current
// scope. It returns the existing entry if name is already declared here.
func (s *scopeStack) declareFun(name symbol.ID, fun *ast.Fun, at span.Span) *funEntry {
	cur := s.scopes[len(s.scopes)-1]
	if existing, ok := cur.funs[name]; ok {
		return existing
	}
	e := &funEntry{fun: fun, declSpan: at}
	cur.funs[name] = e
	return nil
}

// lookupFun walks the scope stack outward looking for a declared function.
// Functions are resolved statically to a *ast.Fun pointer baked directly
// into the call site, so no frame depth/slot bookkeeping is needed here.
func (s *scopeStack) lookupFun(name symbol.ID) (*ast.Fun, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if e, ok := s.scopes[i].funs[name]; ok {
			return e.fun, true
		}
	}
	return nil, false
}
