// Package checker implements the parse/check stage: it consumes the
// grouper's Item tree and produces a checked ast.Asts, resolving every
// name to a frame slot, monomorphizing every operator and builtin call,
// and assigning each function a dense, pre-sized frame.
//
// Functions are registered in two passes per block (headers before
// bodies) so forward references and mutual recursion resolve without
// declaration-order gymnastics.
package checker

import (
	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/symbol"
	"github.com/funvibe/cods/internal/token"
	"github.com/funvibe/cods/internal/value"
)

// Checker walks a grouper.Item tree, accumulating diagnostics instead of
// aborting on the first one.
type Checker struct {
	interner *symbol.Interner
	scopes   *scopeStack
	errs     []*errors.Error
	warns    []*errors.Warning

	// retTypes is the stack of declared return types for the functions
	// currently being checked; empty at global scope.
	retTypes []value.DataType
}

// New creates a Checker with a fresh global scope, interning names into
// in. Pass the owning Context's interner so identifier handles survive
// across runs.
func New(in *symbol.Interner) *Checker {
	return &Checker{interner: in, scopes: newScopeStack()}
}

// Check runs a full parse/check pass over a top-level item tree with a
// private interner. Callers that hold a Context should use CheckWith so
// identifier handles are shared.
func Check(items []grouper.Item) (*ast.Asts, []*errors.Error, []*errors.Warning) {
	return CheckWith(symbol.NewInterner(), items)
}

// CheckWith runs a full parse/check pass over a top-level item tree (as
// produced by grouper.GroupTokens) and returns the checked program alongside
// any errors and warnings accumulated along the way.
func CheckWith(in *symbol.Interner, items []grouper.Item) (*ast.Asts, []*errors.Error, []*errors.Warning) {
	c := New(in)
	segs := grouper.StatementsOf(items)
	body := c.checkBlock(segs, true)
	return &ast.Asts{Asts: body, GlobalFrameSize: c.scopes.globalFrameSize()}, c.errs, c.warns
}

func (c *Checker) err(e *errors.Error)    { c.errs = append(c.errs, e) }
func (c *Checker) warn(w *errors.Warning) { c.warns = append(c.warns, w) }

// pendingFun is a function header registered during a block's first pass,
// awaiting its body check during the second pass.
type pendingFun struct {
	fun        *ast.Fun
	paramNames []symbol.ID
	body       *grouper.Group
}

// checkBlock checks one sequence of statement segments in two passes:
// every `fun` header in this block is registered before any body (the
// block's own or a sibling fun's) is checked, so functions may call each
// other regardless of declaration order. Callers are responsible for
// pushing/popping the scope this block checks into.
func (c *Checker) checkBlock(segs [][]grouper.Item, isGlobal bool) []ast.Ast {
	pending := make(map[int]*pendingFun)
	for i, seg := range segs {
		cur := newCursor(seg)
		if cur.peekIs(token.FUN) {
			if fun, names, body := c.checkFunHeader(cur); fun != nil {
				pending[i] = &pendingFun{fun: fun, paramNames: names, body: body}
			}
		}
	}

	var out []ast.Ast
	for i, seg := range segs {
		if pf, ok := pending[i]; ok {
			c.checkFunBody(pf)
			continue // a fun declaration has no runtime effect of its own
		}
		out = append(out, c.checkStatement(seg))
	}
	return out
}

func (c *Checker) checkFunHeader(cur *cursor) (*ast.Fun, []symbol.ID, *grouper.Group) {
	cur.advance() // `fun`
	nameTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return nil, nil, nil
	}
	it, ok := cur.advance()
	if !ok || it.Group == nil || it.Group.Shape != grouper.Round {
		c.err(errors.NewMissingFunctionParentheses(nameTok.Lexeme, nameTok.Span))
		return nil, nil, nil
	}

	var paramNames []symbol.ID
	var paramTypes []value.DataType
	for _, seg := range it.Group.Arguments() {
		pc := newCursor(seg)
		pnTok, ok := pc.matchTok(token.IDENT)
		if !ok {
			continue
		}
		pt := value.AnyType
		if _, ok := pc.matchTok(token.COLON); ok {
			if t, ok2 := c.parseTypeName(pc); ok2 {
				pt = t
			}
		}
		paramNames = append(paramNames, c.interner.Intern(pnTok.Lexeme))
		paramTypes = append(paramTypes, pt)
	}

	retType := value.Unit
	if _, ok := cur.matchTok(token.ARROW); ok {
		if t, ok2 := c.parseTypeName(cur); ok2 {
			retType = t
		}
	}

	bodyItem, ok := cur.advance()
	if !ok || bodyItem.Group == nil || bodyItem.Group.Shape != grouper.Curly {
		c.err(errors.NewMissingExpr())
		return nil, nil, nil
	}

	fun := &ast.Fun{
		Name:       nameTok.Lexeme,
		ParamTypes: paramTypes,
		ReturnType: retType,
		Params:     make([]ast.VarRef, len(paramNames)),
	}
	if existing := c.scopes.declareFun(c.interner.Intern(nameTok.Lexeme), fun, nameTok.Span); existing != nil {
		c.err(errors.NewRedefinedFun(nameTok.Lexeme, existing.declSpan, nameTok.Span))
	}
	return fun, paramNames, bodyItem.Group
}

func (c *Checker) checkFunBody(pf *pendingFun) {
	c.scopes.pushFunction()
	c.retTypes = append(c.retTypes, pf.fun.ReturnType)
	for i, name := range pf.paramNames {
		entry, existing := c.scopes.declare(name, true, pf.fun.ParamTypes[i], pf.body.Span())
		if existing != nil {
			c.err(errors.NewRedefinedVar(c.interner.Name(name), existing.declSpan, pf.body.Span()))
			continue
		}
		pf.fun.Params[i] = ast.VarRef{Depth: 0, Slot: entry.slot}
	}
	body := c.checkBlock(pf.body.Statements(), false)
	body = c.checkBodyResult(body, pf.fun.ReturnType, pf.body.Span())
	c.retTypes = c.retTypes[:len(c.retTypes)-1]
	frameSize := c.scopes.popFunction()
	pf.fun.Install(body, frameSize)
}

// checkBodyResult validates a function body that falls off its end: the
// last expression's type must equal the declared return type, with an
// Int value widening into a Float return.
func (c *Checker) checkBodyResult(body []ast.Ast, want value.DataType, bodySpan span.Span) []ast.Ast {
	if want == value.Unit || blockReturns(body) {
		return body
	}
	if len(body) == 0 {
		c.err(errors.NewTypeMismatch(want.String(), value.Unit.String(), bodySpan))
		return body
	}
	last := body[len(body)-1]
	got := value.Unit
	if last.DataType != nil {
		got = *last.DataType
	}
	if got == want {
		return body
	}
	if want == value.FloatType && got == value.IntType {
		body[len(body)-1] = c.widenToFloat(last)
		return body
	}
	c.err(errors.NewTypeMismatch(want.String(), got.String(), last.Span))
	return body
}

func (c *Checker) checkNestedBlock(g *grouper.Group) []ast.Ast {
	c.scopes.pushBlock()
	out := c.checkBlock(g.Statements(), false)
	c.scopes.popBlock()
	return out
}

// checkStatement checks a single statement segment (already split at
// `;`/newline by the grouper or the program-level StatementsOf call).
// Anything left unconsumed after the statement's own grammar is a
// missing-operator error: two adjacent expressions never merge silently.
func (c *Checker) checkStatement(items []grouper.Item) ast.Ast {
	cur := newCursor(items)
	a := c.checkStatementInner(cur)
	if !cur.atEnd() {
		it, _ := cur.peek()
		c.err(errors.NewMissingOperator(itemSpan(it)))
	}
	return a
}

func (c *Checker) checkStatementInner(cur *cursor) ast.Ast {
	if tok, ok := cur.peekTok(); ok {
		switch tok.Type {
		case token.VAL:
			cur.advance()
			return c.checkVarDecl(cur, false, tok.Span)
		case token.VAR:
			cur.advance()
			return c.checkVarDecl(cur, true, tok.Span)
		case token.RETURN:
			cur.advance()
			return c.checkReturn(cur, tok.Span)
		}
	}
	if a, ok := c.tryAssignment(cur); ok {
		return a
	}
	return c.checkExpr(cur, precLowest)
}

func (c *Checker) checkVarDecl(cur *cursor, mutable bool, kwSpan span.Span) ast.Ast {
	nameTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return errAstAt(kwSpan)
	}

	var declType *value.DataType
	if _, ok := cur.matchTok(token.COLON); ok {
		if dt, ok2 := c.parseTypeName(cur); ok2 {
			declType = &dt
		}
	}

	if _, ok := cur.matchTok(token.ASSIGN); !ok {
		c.err(errors.NewMissingOperator(cur.endSpan()))
		return errAstAt(kwSpan)
	}

	val := c.checkExpr(cur, precLowest)
	if declType != nil && val.DataType != nil && *declType != *val.DataType {
		if *declType == value.FloatType && *val.DataType == value.IntType {
			val = c.widenToFloat(val)
		} else {
			c.err(errors.NewTypeMismatch(declType.String(), val.DataType.String(), val.Span))
		}
	}

	dt := value.Unit
	if declType != nil {
		dt = *declType
	} else if val.DataType != nil {
		dt = *val.DataType
	}
	entry, existing := c.scopes.declare(c.interner.Intern(nameTok.Lexeme), mutable, dt, nameTok.Span)
	if existing != nil {
		c.err(errors.NewRedefinedVar(nameTok.Lexeme, existing.declSpan, nameTok.Span))
		return errAstAt(kwSpan.To(val.Span))
	}

	ref := ast.VarRef{Depth: 0, Slot: entry.slot}
	return ast.Stmt(ast.VarAssignData{Ref: ref, Val: val}, val.Returns, kwSpan.To(val.Span))
}

// tryAssignment speculatively consumes `IDENT (= | += | -= | *= | /=) expr`.
// It restores the cursor and reports false when the lookahead doesn't
// match, so the caller can fall through to general expression parsing.
func (c *Checker) tryAssignment(cur *cursor) (ast.Ast, bool) {
	save := cur.pos
	nameTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		cur.pos = save
		return ast.Ast{}, false
	}

	var opTok token.Token
	hasOp := false
	for _, t := range []token.Type{token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.ASTERISK_ASSIGN, token.SLASH_ASSIGN} {
		if tk, ok2 := cur.matchTok(t); ok2 {
			opTok, hasOp = tk, true
			break
		}
	}
	if !hasOp {
		cur.pos = save
		return ast.Ast{}, false
	}

	res, found := c.scopes.lookup(c.interner.Intern(nameTok.Lexeme))
	if !found {
		c.err(errors.NewUndefinedVar(nameTok.Lexeme, nameTok.Span))
		rhs := c.checkExpr(cur, precLowest)
		return errAstAt(nameTok.Span.To(rhs.Span)), true
	}
	if !res.entry.mutable {
		c.err(errors.NewImmutableAssign(nameTok.Lexeme, res.entry.declSpan, nameTok.Span))
	}
	if res.isIllegalCapture() {
		c.err(errors.NewCapturingFromDynamicScope(res.entry.declSpan, nameTok.Span))
	}

	ref := ast.VarRef{Depth: res.depth, Slot: res.entry.slot}
	rhs := c.checkExpr(cur, precLowest)
	val := rhs

	if opTok.Type != token.ASSIGN {
		if op, ok := compoundOp(opTok.Type, res.entry.declType); ok {
			lhs := ast.Expr(ast.VarData{Ref: ref}, res.entry.declType, false, nameTok.Span)
			if res.entry.declType == value.FloatType {
				rhs = c.widenToFloat(rhs)
			}
			val = ast.Expr(ast.OpData{Op: op, Args: []ast.Ast{lhs, rhs}}, res.entry.declType, rhs.Returns, rhs.Span)
		} else {
			c.err(errors.NewTypeMismatch(res.entry.declType.String(), safeTypeName(rhs.DataType), rhs.Span))
		}
	} else if rhs.DataType != nil && *rhs.DataType != res.entry.declType {
		if res.entry.declType == value.FloatType && *rhs.DataType == value.IntType {
			val = c.widenToFloat(rhs)
		} else {
			c.err(errors.NewTypeMismatch(res.entry.declType.String(), rhs.DataType.String(), rhs.Span))
		}
	}

	return ast.Stmt(ast.VarAssignData{Ref: ref, Val: val}, val.Returns, nameTok.Span.To(val.Span)), true
}

func compoundOp(t token.Type, dt value.DataType) (ast.Op, bool) {
	isFloat := dt == value.FloatType
	isInt := dt == value.IntType
	switch t {
	case token.PLUS_ASSIGN:
		if isInt {
			return ast.AddInt, true
		}
		if isFloat {
			return ast.AddFloat, true
		}
	case token.MINUS_ASSIGN:
		if isInt {
			return ast.SubInt, true
		}
		if isFloat {
			return ast.SubFloat, true
		}
	case token.ASTERISK_ASSIGN:
		if isInt {
			return ast.MulInt, true
		}
		if isFloat {
			return ast.MulFloat, true
		}
	case token.SLASH_ASSIGN:
		if isInt {
			return ast.DivInt, true
		}
		if isFloat {
			return ast.DivFloat, true
		}
	}
	return 0, false
}

func (c *Checker) checkReturn(cur *cursor, kwSpan span.Span) ast.Ast {
	if len(c.retTypes) == 0 {
		c.err(errors.NewUnexpectedOperator("return", kwSpan))
	}
	want := value.Unit
	if len(c.retTypes) > 0 {
		want = c.retTypes[len(c.retTypes)-1]
	}

	if cur.atEnd() {
		if want != value.Unit {
			c.err(errors.NewTypeMismatch(want.String(), value.Unit.String(), kwSpan))
		}
		return ast.Stmt(ast.ReturnData{Expr: ast.Expr(ast.UnitData{}, value.Unit, false, kwSpan)}, true, kwSpan)
	}
	e := c.checkExpr(cur, precLowest)
	if e.DataType != nil && *e.DataType != want {
		if want == value.FloatType && *e.DataType == value.IntType {
			e = c.widenToFloat(e)
		} else {
			c.err(errors.NewTypeMismatch(want.String(), e.DataType.String(), e.Span))
		}
	}
	return ast.Stmt(ast.ReturnData{Expr: e}, true, kwSpan.To(e.Span))
}

func (c *Checker) parseTypeName(cur *cursor) (value.DataType, bool) {
	tok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return value.Unit, false
	}
	dt, ok2 := typeFromName(tok.Lexeme)
	if !ok2 {
		c.err(errors.NewTypeMismatch("type name", tok.Lexeme, tok.Span))
		return value.Unit, false
	}
	return dt, true
}

// typeFromName resolves a type annotation identifier. Type names are
// spelled lowercase, matching DataType.String()'s rendering; no other
// spelling is accepted.
func typeFromName(name string) (value.DataType, bool) {
	switch name {
	case "int":
		return value.IntType, true
	case "float":
		return value.FloatType, true
	case "bool":
		return value.BoolType, true
	case "char":
		return value.CharType, true
	case "str":
		return value.StrType, true
	case "range":
		return value.RangeType, true
	case "unit":
		return value.Unit, true
	case "any":
		return value.AnyType, true
	}
	return value.Unit, false
}

func safeTypeName(dt *value.DataType) string {
	if dt == nil {
		return "?"
	}
	return dt.String()
}

func mismatchDesc(a, b ast.Ast) string {
	return safeTypeName(a.DataType) + " and " + safeTypeName(b.DataType)
}

func errAstAt(sp span.Span) ast.Ast {
	return ast.Expr(ast.ErrorData{}, value.Unit, false, sp)
}

func anyReturns(args []ast.Ast) bool {
	for _, a := range args {
		if a.Returns {
			return true
		}
	}
	return false
}

// widenToFloat wraps a statically Int-typed expression in an explicit
// Int->Float cast node. Every implicit widening outside builtin calls
// funnels through here so the evaluator's Float-monomorphized operators
// always receive a Float-kind value; builtin Float parameters take Int
// arguments as they are and read them through value.Val.AsF64.
func (c *Checker) widenToFloat(a ast.Ast) ast.Ast {
	if a.DataType == nil || *a.DataType != value.IntType {
		return a
	}
	return ast.Expr(ast.CastData{Expr: a, Type: value.FloatType}, value.FloatType, a.Returns, a.Span)
}
