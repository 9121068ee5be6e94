// Builtin-call signature resolution: for each call, every candidate
// signature registered under the callee's name in builtin.Table is tried
// in order and the first whose arity and argument types match wins.
package checker

import (
	"strings"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/builtin"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/value"
)

var builtinTable = builtin.Table
var builtinConstants = builtin.Constants

func (c *Checker) checkBuiltinCall(name string, sigs []builtin.Signature, argSegs [][]grouper.Item, sp span.Span) ast.Ast {
	args := make([]ast.Ast, len(argSegs))
	for i, seg := range argSegs {
		args[i] = c.checkExpr(newCursor(seg), precLowest)
	}

	for _, sig := range sigs {
		if matchSig(sig, args) {
			return ast.Expr(ast.BuiltinFunCallData{Which: sig.Which, Args: args}, sig.Return, anyReturns(args), sp)
		}
	}

	candidates := make([]string, len(sigs))
	for i, sig := range sigs {
		candidates[i] = sigString(name, sig)
	}
	argTypes := make([]string, len(args))
	for i, a := range args {
		argTypes[i] = safeTypeName(a.DataType)
	}
	c.err(errors.NewNoMatchingBuiltinSignature(name, candidates, argTypes, sp))
	return errAstAt(sp)
}

func (c *Checker) checkFunCall(fun *ast.Fun, argSegs [][]grouper.Item, sp span.Span) ast.Ast {
	args := make([]ast.Ast, len(argSegs))
	for i, seg := range argSegs {
		args[i] = c.checkExpr(newCursor(seg), precLowest)
	}

	switch {
	case len(args) < len(fun.ParamTypes):
		c.err(errors.NewMissingFunctionArguments(fun.Name, len(fun.ParamTypes), len(args), sp))
	case len(args) > len(fun.ParamTypes):
		extra := make([]span.Span, 0, len(args)-len(fun.ParamTypes))
		for _, a := range args[len(fun.ParamTypes):] {
			extra = append(extra, a.Span)
		}
		c.err(errors.NewUnexpectedFunctionArguments(fun.Name, len(fun.ParamTypes), len(args), extra...))
	default:
		for i, pt := range fun.ParamTypes {
			if !typeMatches(pt, args[i].DataType) {
				c.err(errors.NewTypeMismatch(pt.String(), safeTypeName(args[i].DataType), args[i].Span))
				continue
			}
			if pt == value.FloatType {
				args[i] = c.widenToFloat(args[i])
			}
		}
	}
	return ast.Expr(ast.FunCallData{Fun: fun, Args: args}, fun.ReturnType, anyReturns(args), sp)
}

func matchSig(sig builtin.Signature, args []ast.Ast) bool {
	n := len(sig.Params)
	if n == 0 {
		return len(args) == 0
	}
	fixed := sig.Params[:n-1]
	last := sig.Params[n-1]

	switch sig.Repetition {
	case builtin.One:
		if len(args) != n {
			return false
		}
		for i, p := range sig.Params {
			if !typeMatches(p, args[i].DataType) {
				return false
			}
		}
		return true
	case builtin.OneOrMore:
		if len(args) < n {
			return false
		}
	case builtin.ZeroOrMore:
		if len(args) < n-1 {
			return false
		}
	}
	for i, p := range fixed {
		if !typeMatches(p, args[i].DataType) {
			return false
		}
	}
	for i := len(fixed); i < len(args); i++ {
		if !typeMatches(last, args[i].DataType) {
			return false
		}
	}
	return true
}

// typeMatches implements the builtin table's one implicit conversion: an
// Int argument satisfies a Float parameter (value.Val.AsF64 widens either
// kind at evaluation time, so no cast node is required).
func typeMatches(param value.DataType, arg *value.DataType) bool {
	if param == value.AnyType {
		return true
	}
	if arg == nil {
		return false
	}
	if *arg == param {
		return true
	}
	return param == value.FloatType && *arg == value.IntType
}

// sigString renders a candidate signature as "name(t1,t2,t3)->ret", the
// format NoMatchingBuiltinSignature candidate lists use.
func sigString(name string, sig builtin.Signature) string {
	parts := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		parts[i] = p.String()
	}
	if len(parts) > 0 {
		switch sig.Repetition {
		case builtin.ZeroOrMore:
			parts[len(parts)-1] += "*"
		case builtin.OneOrMore:
			parts[len(parts)-1] += "+"
		}
	}
	return name + "(" + strings.Join(parts, ",") + ")->" + sig.Return.String()
}
