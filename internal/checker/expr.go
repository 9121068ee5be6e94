// Pratt expression parser over a flat []grouper.Item: a precedence climb
// with a prefix/infix split keyed by token type, recursing into nested
// Round groups for parenthesized expressions and call arguments instead
// of re-entering a token stream.
package checker

import (
	"sort"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/symbol"
	"github.com/funvibe/cods/internal/token"
	"github.com/funvibe/cods/internal/value"
)

const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precRange
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func infixPrec(t token.Type) (prec int, ok bool) {
	switch t {
	case token.OR:
		return precOr, true
	case token.AND:
		return precAnd, true
	case token.EQ, token.NOT_EQ:
		return precEquality, true
	case token.LT, token.GT, token.LTE, token.GTE:
		return precCompare, true
	case token.PIPE:
		return precBitOr, true
	case token.CARET:
		return precBitXor, true
	case token.AMPERSAND:
		return precBitAnd, true
	case token.LSHIFT, token.RSHIFT:
		return precShift, true
	case token.DOT_DOT, token.DOT_DOT_EQ:
		return precRange, true
	case token.PLUS, token.MINUS:
		return precAdditive, true
	case token.ASTERISK, token.SLASH, token.PERCENT, token.DIV, token.MOD:
		return precMultiplicative, true
	}
	return 0, false
}

// checkExpr parses and checks one expression, stopping at the first
// operator whose precedence is below minPrec.
func (c *Checker) checkExpr(cur *cursor, minPrec int) ast.Ast {
	left := c.parseUnaryPostfix(cur)
	for {
		tok, ok := cur.peekTok()
		if !ok {
			break
		}
		switch tok.Type {
		case token.QUESTION_IS:
			if precEquality < minPrec {
				return left
			}
			cur.advance()
			left = c.buildIs(cur, left)
			continue
		case token.AS:
			if precUnary < minPrec {
				return left
			}
			cur.advance()
			left = c.buildCast(cur, left)
			continue
		}
		prec, ok2 := infixPrec(tok.Type)
		if !ok2 || prec < minPrec {
			break
		}
		cur.advance()
		right := c.checkExpr(cur, prec+1)
		left = c.buildBinary(tok, left, right)
	}
	return left
}

// buildIs checks the `expr is type` form, a runtime type test.
func (c *Checker) buildIs(cur *cursor, left ast.Ast) ast.Ast {
	typeTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return left
	}
	dt, ok2 := typeFromName(typeTok.Lexeme)
	if !ok2 {
		c.err(errors.NewTypeMismatch("type name", typeTok.Lexeme, typeTok.Span))
	}
	return ast.Expr(ast.IsData{Expr: left, Type: dt}, value.BoolType, left.Returns, left.Span.To(typeTok.Span))
}

// buildCast checks the `expr as type` form. Only the numeric conversions
// Int<->Float are meaningful; any other target is rejected.
func (c *Checker) buildCast(cur *cursor, left ast.Ast) ast.Ast {
	typeTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return left
	}
	dt, ok2 := typeFromName(typeTok.Lexeme)
	if !ok2 {
		c.err(errors.NewTypeMismatch("type name", typeTok.Lexeme, typeTok.Span))
		return left
	}
	sp := left.Span.To(typeTok.Span)
	if dt != value.IntType && dt != value.FloatType {
		c.err(errors.NewExpectedNumber(typeTok.Span))
		return errAstAt(sp)
	}
	if !isNumericType(left.DataType) {
		c.err(errors.NewExpectedNumber(left.Span))
		return errAstAt(sp)
	}
	return ast.Expr(ast.CastData{Expr: left, Type: dt}, dt, left.Returns, sp)
}

func (c *Checker) parseUnaryPostfix(cur *cursor) ast.Ast {
	e := c.parsePrimary(cur)
	for {
		bangTok, ok := cur.matchTok(token.BANG)
		if !ok {
			break
		}
		if e.DataType == nil || *e.DataType != value.IntType {
			c.err(errors.NewFractionFactorial(bangTok.Span))
		}
		e = ast.Expr(ast.OpData{Op: ast.FactorialInt, Args: []ast.Ast{e}}, value.IntType, e.Returns, e.Span.To(bangTok.Span))
	}
	return e
}

func (c *Checker) parsePrimary(cur *cursor) ast.Ast {
	it, ok := cur.peek()
	if !ok {
		c.err(errors.NewMissingExpr())
		return errAstAt(cur.endSpan())
	}

	if it.Group != nil {
		switch it.Group.Shape {
		case grouper.Round:
			cur.advance()
			segs := it.Group.Statements()
			if len(segs) != 1 {
				c.err(errors.NewMissingExpr())
				return errAstAt(it.Group.Span())
			}
			inner := c.checkExpr(newCursor(segs[0]), precLowest)
			return ast.Ast{Data: inner.Data, DataType: inner.DataType, Returns: inner.Returns, Span: it.Group.Span()}
		case grouper.Curly:
			cur.advance()
			return c.checkBlockExpr(it.Group)
		default:
			c.err(errors.NewUnexpectedSeparator("[", it.Group.Open))
			cur.advance()
			return errAstAt(it.Group.Span())
		}
	}

	tok := it.Tok
	switch tok.Type {
	case token.INT:
		cur.advance()
		return ast.Expr(ast.ValData{Val: value.Int(tok.Literal.(int64))}, value.IntType, false, tok.Span)
	case token.FLOAT:
		cur.advance()
		return ast.Expr(ast.ValData{Val: value.Float(tok.Literal.(float64))}, value.FloatType, false, tok.Span)
	case token.STRING:
		cur.advance()
		return ast.Expr(ast.ValData{Val: value.Str(tok.Literal.(string))}, value.StrType, false, tok.Span)
	case token.CHAR:
		cur.advance()
		return ast.Expr(ast.ValData{Val: value.Char(tok.Literal.(rune))}, value.CharType, false, tok.Span)
	case token.TRUE, token.FALSE:
		cur.advance()
		return ast.Expr(ast.ValData{Val: value.Bool(tok.Literal.(bool))}, value.BoolType, false, tok.Span)
	case token.MINUS:
		cur.advance()
		operand := c.checkExpr(cur, precUnary)
		return c.negate(tok.Span, operand)
	case token.BANG:
		cur.advance()
		operand := c.checkExpr(cur, precUnary)
		return c.notOp(tok.Span, operand)
	case token.IDENT:
		return c.checkIdentExpr(cur)
	case token.IF:
		return c.checkIfExpr(cur)
	case token.WHILE:
		return c.checkWhileExpr(cur)
	case token.FOR:
		return c.checkForExpr(cur)
	default:
		c.err(errors.NewMissingExpr())
		cur.advance()
		return errAstAt(tok.Span)
	}
}

// checkBlockExpr checks a braced block in expression/statement position.
// The block's type and value are those of its last statement.
func (c *Checker) checkBlockExpr(g *grouper.Group) ast.Ast {
	c.scopes.pushBlock()
	body := c.checkBlock(g.Statements(), false)
	c.scopes.popBlock()
	return ast.Expr(ast.BlockData{Seq: body}, blockType(body), blockReturns(body), g.Span())
}

// blockType is the static type of a statement sequence in value position:
// its last statement's type, or Unit for an empty block.
func blockType(block []ast.Ast) value.DataType {
	if len(block) == 0 || block[len(block)-1].DataType == nil {
		return value.Unit
	}
	return *block[len(block)-1].DataType
}

// blockReturns reports whether control is guaranteed to leave the
// enclosing function through this statement sequence: an explicit return
// anywhere makes everything after it dead.
func blockReturns(block []ast.Ast) bool {
	for _, a := range block {
		if a.Returns {
			return true
		}
	}
	return false
}

func (c *Checker) negate(opSpan span.Span, operand ast.Ast) ast.Ast {
	sp := opSpan.To(operand.Span)
	if operand.DataType == nil {
		return errAstAt(sp)
	}
	switch *operand.DataType {
	case value.IntType:
		return ast.Expr(ast.OpData{Op: ast.NegInt, Args: []ast.Ast{operand}}, value.IntType, operand.Returns, sp)
	case value.FloatType:
		return ast.Expr(ast.OpData{Op: ast.NegFloat, Args: []ast.Ast{operand}}, value.FloatType, operand.Returns, sp)
	default:
		c.err(errors.NewExpectedNumber(operand.Span))
		return ast.Expr(ast.OpData{Op: ast.NegInt, Args: []ast.Ast{operand}}, value.IntType, operand.Returns, sp)
	}
}

func (c *Checker) notOp(opSpan span.Span, operand ast.Ast) ast.Ast {
	sp := opSpan.To(operand.Span)
	if operand.DataType == nil || *operand.DataType != value.BoolType {
		c.err(errors.NewExpectedBool(operand.Span))
	}
	return ast.Expr(ast.OpData{Op: ast.Not, Args: []ast.Ast{operand}}, value.BoolType, operand.Returns, sp)
}

func isNumericType(dt *value.DataType) bool {
	return dt != nil && (*dt == value.IntType || *dt == value.FloatType)
}

func (c *Checker) buildBinary(tok token.Token, left, right ast.Ast) ast.Ast {
	sp := left.Span.To(right.Span)
	returns := left.Returns || right.Returns
	both := func(dt value.DataType) bool {
		return left.DataType != nil && right.DataType != nil && *left.DataType == dt && *right.DataType == dt
	}
	bothNumeric := isNumericType(left.DataType) && isNumericType(right.DataType)
	mk := func(op ast.Op, dt value.DataType) ast.Ast {
		return ast.Expr(ast.OpData{Op: op, Args: []ast.Ast{left, right}}, dt, returns, sp)
	}
	// arith picks the Int variant for Int operands and otherwise promotes
	// both sides to Float; non-numeric operands are an error.
	arith := func(intOp, floatOp ast.Op) ast.Ast {
		if both(value.IntType) {
			return mk(intOp, value.IntType)
		}
		if bothNumeric {
			left, right = c.widenToFloat(left), c.widenToFloat(right)
			return mk(floatOp, value.FloatType)
		}
		c.err(errors.NewExpectedNumber(sp))
		return mk(intOp, value.IntType)
	}
	compare := func(intOp, floatOp ast.Op) ast.Ast {
		if both(value.IntType) {
			return mk(intOp, value.BoolType)
		}
		if bothNumeric {
			left, right = c.widenToFloat(left), c.widenToFloat(right)
			return mk(floatOp, value.BoolType)
		}
		c.err(errors.NewExpectedNumber(sp))
		return mk(intOp, value.BoolType)
	}

	switch tok.Type {
	case token.PLUS:
		return arith(ast.AddInt, ast.AddFloat)
	case token.MINUS:
		return arith(ast.SubInt, ast.SubFloat)
	case token.ASTERISK:
		return arith(ast.MulInt, ast.MulFloat)
	case token.SLASH:
		return arith(ast.DivInt, ast.DivFloat)
	case token.PERCENT:
		return arith(ast.RemInt, ast.RemFloat)
	case token.DIV:
		if both(value.IntType) {
			return mk(ast.DivInt, value.IntType)
		}
		c.err(errors.NewFractionEuclidDiv(sp))
		return mk(ast.DivInt, value.IntType)
	case token.MOD:
		if both(value.IntType) {
			return mk(ast.RemInt, value.IntType)
		}
		c.err(errors.NewFractionRemainder(sp))
		return mk(ast.RemInt, value.IntType)
	case token.EQ, token.NOT_EQ:
		sameType := left.DataType != nil && right.DataType != nil && *left.DataType == *right.DataType
		if !sameType && !bothNumeric {
			c.err(errors.NewTypeMismatch(safeTypeName(left.DataType), safeTypeName(right.DataType), sp))
		}
		if tok.Type == token.EQ {
			return mk(ast.Eq, value.BoolType)
		}
		return mk(ast.Ne, value.BoolType)
	case token.LT:
		return compare(ast.LtInt, ast.LtFloat)
	case token.GT:
		return compare(ast.GtInt, ast.GtFloat)
	case token.LTE:
		return compare(ast.LeInt, ast.LeFloat)
	case token.GTE:
		return compare(ast.GeInt, ast.GeFloat)
	case token.AND:
		if !both(value.BoolType) {
			c.err(errors.NewExpectedBool(sp))
		}
		return mk(ast.And, value.BoolType)
	case token.OR:
		if !both(value.BoolType) {
			c.err(errors.NewExpectedBool(sp))
		}
		return mk(ast.Or, value.BoolType)
	case token.PIPE:
		if both(value.IntType) {
			return mk(ast.BwOrInt, value.IntType)
		}
		if both(value.BoolType) {
			return mk(ast.BwOrBool, value.BoolType)
		}
		c.err(errors.NewInvalidBwOr(left.Span, right.Span))
		return mk(ast.BwOrInt, value.IntType)
	case token.CARET:
		if both(value.IntType) {
			return mk(ast.BwXorInt, value.IntType)
		}
		if both(value.BoolType) {
			return mk(ast.BwXorBool, value.BoolType)
		}
		c.err(errors.NewTypeMismatch("int and int, or bool and bool", mismatchDesc(left, right), sp))
		return mk(ast.BwXorInt, value.IntType)
	case token.AMPERSAND:
		if both(value.IntType) {
			return mk(ast.BwAndInt, value.IntType)
		}
		if both(value.BoolType) {
			return mk(ast.BwAndBool, value.BoolType)
		}
		c.err(errors.NewInvalidBwAnd(left.Span, right.Span))
		return mk(ast.BwAndInt, value.IntType)
	case token.LSHIFT:
		if !both(value.IntType) {
			c.err(errors.NewTypeMismatch("int and int", mismatchDesc(left, right), sp))
		}
		return mk(ast.ShlInt, value.IntType)
	case token.RSHIFT:
		if !both(value.IntType) {
			c.err(errors.NewTypeMismatch("int and int", mismatchDesc(left, right), sp))
		}
		return mk(ast.ShrInt, value.IntType)
	case token.DOT_DOT:
		if !both(value.IntType) {
			c.err(errors.NewTypeMismatch("int and int", mismatchDesc(left, right), sp))
		}
		return mk(ast.RangeEx, value.RangeType)
	case token.DOT_DOT_EQ:
		if !both(value.IntType) {
			c.err(errors.NewTypeMismatch("int and int", mismatchDesc(left, right), sp))
		}
		return mk(ast.RangeIn, value.RangeType)
	}
	return errAstAt(sp)
}

// checkIdentExpr handles every identifier-led primary: a named constant, a
// spill command, a builtin or user function call, or a plain variable
// reference.
func (c *Checker) checkIdentExpr(cur *cursor) ast.Ast {
	tok, _ := cur.matchTok(token.IDENT)
	name := tok.Lexeme

	if cval, ok := builtinConstants[name]; ok {
		return ast.Expr(ast.ValData{Val: cval}, cval.DataType(), false, tok.Span)
	}
	if name == "spill" || name == "spill_local" {
		sp := tok.Span
		if it, ok := cur.peek(); ok && it.Group != nil && it.Group.Shape == grouper.Round {
			cur.advance()
			if args := it.Group.Arguments(); len(args) > 0 {
				c.err(errors.NewUnexpectedFunctionArguments(name, 0, len(args), it.Group.Span()))
			}
			sp = tok.Span.To(it.Group.Span())
		}
		return c.checkSpill(name, sp)
	}

	if it, ok := cur.peek(); ok && it.Group != nil && it.Group.Shape == grouper.Round {
		cur.advance()
		argSegs := it.Group.Arguments()
		callSpan := tok.Span.To(it.Group.Span())
		if sigs, isBuiltin := builtinTable[name]; isBuiltin {
			return c.checkBuiltinCall(name, sigs, argSegs, callSpan)
		}
		if fun, ok := c.scopes.lookupFun(c.interner.Intern(name)); ok {
			return c.checkFunCall(fun, argSegs, callSpan)
		}
		c.err(errors.NewUndefinedVar(name, tok.Span))
		for _, seg := range argSegs {
			c.checkExpr(newCursor(seg), precLowest)
		}
		return errAstAt(callSpan)
	}

	if _, isBuiltin := builtinTable[name]; isBuiltin {
		c.err(errors.NewMissingFunctionParentheses(name, tok.Span))
		return errAstAt(tok.Span)
	}
	if _, ok := c.scopes.lookupFun(c.interner.Intern(name)); ok {
		c.err(errors.NewMissingFunctionParentheses(name, tok.Span))
		return errAstAt(tok.Span)
	}

	res, found := c.scopes.lookup(c.interner.Intern(name))
	if !found {
		c.err(errors.NewUndefinedVar(name, tok.Span))
		return errAstAt(tok.Span)
	}
	if res.isIllegalCapture() {
		c.err(errors.NewCapturingFromDynamicScope(res.entry.declSpan, tok.Span))
	}
	ref := ast.VarRef{Depth: res.depth, Slot: res.entry.slot}
	return ast.Expr(ast.VarData{Ref: ref}, res.entry.declType, false, tok.Span)
}

// checkSpill gathers every variable currently in scope (or, for
// spill_local, every variable in the current function's own frame) into a
// SpillData node. It bypasses the builtin signature table entirely since
// it needs direct access to the scope chain rather than argument values.
// Output order is outermost scope first, declaration order within a
// scope; a shadowed name is reported once, as its innermost binding.
func (c *Checker) checkSpill(name string, sp span.Span) ast.Ast {
	local := name == "spill_local"

	var vars []ast.SpillVar
	seen := make(map[symbol.ID]bool)
	depth := 0
	for i := len(c.scopes.scopes) - 1; i >= 0; i-- {
		sc := c.scopes.scopes[i]
		for _, id := range sc.varOrder {
			if seen[id] {
				continue
			}
			seen[id] = true
			vars = append(vars, ast.SpillVar{
				Name: c.interner.Name(id),
				Ref:  ast.VarRef{Depth: depth, Slot: sc.vars[id].slot},
			})
		}
		if sc.isFunctionBarrier {
			if local {
				break
			}
			depth++
		}
	}
	sortSpillStable(vars)
	return ast.Expr(ast.SpillData{Vars: vars, Local: local}, value.Unit, false, sp)
}

// sortSpillStable keeps spill output deterministic across runs even if
// collection order ever changes: outer frames first, then slot order.
func sortSpillStable(vars []ast.SpillVar) {
	sort.SliceStable(vars, func(i, j int) bool {
		if vars[i].Ref.Depth != vars[j].Ref.Depth {
			return vars[i].Ref.Depth > vars[j].Ref.Depth
		}
		return vars[i].Ref.Slot < vars[j].Ref.Slot
	})
}

func (c *Checker) checkIfExpr(cur *cursor) ast.Ast {
	kw, _ := cur.advance()
	start := kw.Tok.Span
	var cases []ast.CondBlock
	var elseBlock []ast.Ast
	hasElse := false

	for {
		cond := c.checkExpr(cur, precLowest)
		if cond.DataType != nil && *cond.DataType != value.BoolType {
			c.err(errors.NewExpectedBool(cond.Span))
		}
		it, ok := cur.advance()
		if !ok || it.Group == nil || it.Group.Shape != grouper.Curly {
			c.err(errors.NewMissingExpr())
			break
		}
		cases = append(cases, ast.CondBlock{Cond: cond, Block: c.checkNestedBlock(it.Group)})

		if _, ok := cur.matchTok(token.ELSE); !ok {
			break
		}
		if cur.peekIs(token.IF) {
			cur.advance()
			continue
		}
		it2, ok2 := cur.advance()
		if ok2 && it2.Group != nil && it2.Group.Shape == grouper.Curly {
			hasElse = true
			elseBlock = c.checkNestedBlock(it2.Group)
		}
		break
	}

	// Only returns unconditionally if every branch, including a
	// mandatory else, returns.
	returns := hasElse && blockReturns(elseBlock)
	for _, cb := range cases {
		returns = returns && blockReturns(cb.Block)
	}
	return ast.Expr(ast.IfExprData{Cases: cases, Else: elseBlock}, c.ifType(cases, elseBlock, hasElse), returns, start)
}

// ifType unifies an if-expression's branches: when an else is present and
// every branch's value has the same type, the whole if has that type;
// otherwise it is a statement and yields Unit. A branch that returns
// never produces the if's value, so it does not constrain the type.
func (c *Checker) ifType(cases []ast.CondBlock, elseBlock []ast.Ast, hasElse bool) value.DataType {
	if !hasElse {
		return value.Unit
	}
	unified := value.Unit
	first := true
	consider := func(block []ast.Ast) bool {
		if blockReturns(block) {
			return true
		}
		t := blockType(block)
		if first {
			unified = t
			first = false
			return true
		}
		return t == unified
	}
	for _, cb := range cases {
		if !consider(cb.Block) {
			return value.Unit
		}
	}
	if !consider(elseBlock) {
		return value.Unit
	}
	return unified
}

func (c *Checker) checkWhileExpr(cur *cursor) ast.Ast {
	kw, _ := cur.advance()
	cond := c.checkExpr(cur, precLowest)
	if cond.DataType != nil && *cond.DataType != value.BoolType {
		c.err(errors.NewExpectedBool(cond.Span))
	}
	it, ok := cur.advance()
	if !ok || it.Group == nil || it.Group.Shape != grouper.Curly {
		c.err(errors.NewMissingExpr())
		return errAstAt(kw.Tok.Span)
	}
	block := c.checkNestedBlock(it.Group)
	return ast.Expr(ast.WhileLoopData{Cond: cond, Block: block}, value.Unit, false, kw.Tok.Span.To(it.Group.Span()))
}

func (c *Checker) checkForExpr(cur *cursor) ast.Ast {
	kw, _ := cur.advance()
	nameTok, ok := cur.matchTok(token.IDENT)
	if !ok {
		c.err(errors.NewMissingOperand(cur.endSpan()))
		return errAstAt(kw.Tok.Span)
	}
	if _, ok := cur.matchTok(token.IN); !ok {
		c.err(errors.NewMissingOperator(cur.endSpan()))
	}
	iter := c.checkExpr(cur, precLowest)
	if iter.DataType == nil || *iter.DataType != value.RangeType {
		c.err(errors.NewTypeMismatch("range", safeTypeName(iter.DataType), iter.Span))
	}
	it, ok := cur.advance()
	if !ok || it.Group == nil || it.Group.Shape != grouper.Curly {
		c.err(errors.NewMissingExpr())
		return errAstAt(kw.Tok.Span)
	}

	c.scopes.pushBlock()
	var ref ast.VarRef
	if entry, existing := c.scopes.declare(c.interner.Intern(nameTok.Lexeme), false, value.IntType, nameTok.Span); existing != nil {
		c.err(errors.NewRedefinedVar(nameTok.Lexeme, existing.declSpan, nameTok.Span))
	} else {
		ref = ast.VarRef{Depth: 0, Slot: entry.slot}
	}
	block := c.checkBlock(it.Group.Statements(), false)
	c.scopes.popBlock()

	return ast.Expr(ast.ForLoopData{Var: ref, Iter: iter, Block: block}, value.Unit, false, kw.Tok.Span.To(it.Group.Span()))
}
