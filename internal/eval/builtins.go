// Builtin dispatch: one case per monomorphized builtin.Which, matching
// the checker's signature resolution one-to-one.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/builtin"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/value"
)

func (e *Evaluator) evalBuiltin(node ast.Ast, d ast.BuiltinFunCallData) (evalResult, *errors.Error) {
	args := make([]value.Val, len(d.Args))
	for i, a := range d.Args {
		r, err := e.evalOne(a)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		args[i] = r.val
	}
	argSpan := func(i int) span.Span {
		if i < len(d.Args) {
			return d.Args[i].Span
		}
		return node.Span
	}

	switch d.Which {
	case builtin.PowInt:
		return intPow(args[0].I, args[1].I, node.Span)
	case builtin.PowFloat:
		return evalResult{val: value.NormalizeFloat(value.Float(math.Pow(args[0].AsF64(), args[1].AsF64())))}, nil
	case builtin.Ln:
		return evalResult{val: value.NormalizeFloat(value.Float(math.Log(args[0].AsF64())))}, nil
	case builtin.Log:
		return evalResult{val: value.NormalizeFloat(value.Float(math.Log(args[1].AsF64()) / math.Log(args[0].AsF64())))}, nil
	case builtin.Sqrt:
		return evalResult{val: value.NormalizeFloat(value.Float(math.Sqrt(args[0].AsF64())))}, nil
	case builtin.Ncr:
		return ncr(args[0].I, args[1].I, node.Span)
	case builtin.ToDeg:
		return evalResult{val: value.Float(args[0].AsF64() * 180 / math.Pi)}, nil
	case builtin.ToRad:
		return evalResult{val: value.Float(args[0].AsF64() * math.Pi / 180)}, nil
	case builtin.Sin:
		return evalResult{val: value.Float(math.Sin(args[0].AsF64()))}, nil
	case builtin.Cos:
		return evalResult{val: value.Float(math.Cos(args[0].AsF64()))}, nil
	case builtin.Tan:
		return evalResult{val: value.Float(math.Tan(args[0].AsF64()))}, nil
	case builtin.Asin:
		return evalResult{val: value.Float(math.Asin(args[0].AsF64()))}, nil
	case builtin.Acos:
		return evalResult{val: value.Float(math.Acos(args[0].AsF64()))}, nil
	case builtin.Atan:
		return evalResult{val: value.Float(math.Atan(args[0].AsF64()))}, nil
	case builtin.Gcd:
		return gcd(args[0].I, args[1].I), nil
	case builtin.MinInt:
		m := args[0].I
		for _, v := range args[1:] {
			if v.I < m {
				m = v.I
			}
		}
		return evalResult{val: value.Int(m)}, nil
	case builtin.MinFloat:
		m := args[0].AsF64()
		for _, v := range args[1:] {
			if v.AsF64() < m {
				m = v.AsF64()
			}
		}
		return evalResult{val: value.Float(m)}, nil
	case builtin.MaxInt:
		m := args[0].I
		for _, v := range args[1:] {
			if v.I > m {
				m = v.I
			}
		}
		return evalResult{val: value.Int(m)}, nil
	case builtin.MaxFloat:
		m := args[0].AsF64()
		for _, v := range args[1:] {
			if v.AsF64() > m {
				m = v.AsF64()
			}
		}
		return evalResult{val: value.Float(m)}, nil
	case builtin.ClampInt:
		v, lo, hi := args[0].I, args[1].I, args[2].I
		if lo > hi {
			return evalResult{}, errors.NewInvalidClampBounds(argSpan(1), argSpan(2))
		}
		return evalResult{val: value.Int(clampInt(v, lo, hi))}, nil
	case builtin.ClampFloat:
		v, lo, hi := args[0].AsF64(), args[1].AsF64(), args[2].AsF64()
		if lo > hi {
			return evalResult{}, errors.NewInvalidClampBounds(argSpan(1), argSpan(2))
		}
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		return evalResult{val: value.Float(v)}, nil
	case builtin.AbsInt:
		n := args[0].I
		if n == math.MinInt64 {
			return evalResult{}, errors.NewSubOverflow(0, n, node.Span)
		}
		if n < 0 {
			n = -n
		}
		return evalResult{val: value.Int(n)}, nil
	case builtin.AbsFloat:
		return evalResult{val: value.Float(math.Abs(args[0].AsF64()))}, nil
	case builtin.Print:
		parts := make([]string, len(args))
		for i, v := range args {
			parts[i] = v.String()
		}
		fmt.Fprint(e.out, strings.Join(parts, " "))
		return evalResult{val: value.UnitVal()}, nil
	case builtin.Println:
		parts := make([]string, len(args))
		for i, v := range args {
			parts[i] = v.String()
		}
		fmt.Fprintln(e.out, strings.Join(parts, " "))
		return evalResult{val: value.UnitVal()}, nil
	case builtin.Assert:
		if !args[0].B {
			return evalResult{}, errors.NewAssertFailed(node.Span)
		}
		return evalResult{val: value.UnitVal()}, nil
	case builtin.AssertEq:
		if !value.Eq(args[0], args[1]) {
			return evalResult{}, errors.NewAssertEqFailed(args[0].String(), args[1].String(), argSpan(0), argSpan(1))
		}
		return evalResult{val: value.UnitVal()}, nil
	}
	return evalResult{val: value.UnitVal()}, nil
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func intPow(base, exp int64, sp span.Span) (evalResult, *errors.Error) {
	if exp < 0 {
		return evalResult{}, errors.NewPowOverflow(base, exp, sp)
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		if base != 0 && result != 0 {
			prod := result * base
			if prod/base != result {
				return evalResult{}, errors.NewPowOverflow(base, exp, sp)
			}
			result = prod
		} else {
			result = 0
		}
	}
	return evalResult{val: value.Int(result)}, nil
}

// ncr computes n-choose-r using the symmetric, smaller-side iterative
// form so intermediate products stay as small as possible.
func ncr(n, r int64, sp span.Span) (evalResult, *errors.Error) {
	if r < 0 {
		return evalResult{}, errors.NewNegativeNcr(r, sp)
	}
	if n < r {
		return evalResult{}, errors.NewInvalidNcr(n, r, sp)
	}
	k := r
	if n-r < k {
		k = n - r
	}
	result := int64(1)
	for i := int64(0); i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return evalResult{val: value.Int(result)}, nil
}

func gcd(a, b int64) evalResult {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return evalResult{val: value.Int(a)}
}
