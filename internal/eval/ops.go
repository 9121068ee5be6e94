// Monomorphized operator evaluation: checked int64 arithmetic with
// overflow detection, a float-widening fallback for the case where a
// statically Int-typed operand carries a runtime Float value, and the
// handful of float operators that can never overflow.
//
// Int division does not truncate: when the dividend isn't evenly
// divisible the quotient widens to a true float. That is why
// AddInt/SubInt/MulInt/DivInt all check the operands' runtime Kind
// instead of trusting the static Int type the checker assigned: a DivInt
// result earlier in the same expression may already have widened to
// Float, and the surrounding arithmetic must carry that forward instead
// of silently reading a zeroed Val.I field.
package eval

import (
	"math"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/value"
)

func (e *Evaluator) evalOp(a ast.Ast, d ast.OpData) (evalResult, *errors.Error) {
	// && and || decide on the left operand alone whenever they can; the
	// right operand must not run at all in that case.
	if d.Op == ast.And || d.Op == ast.Or {
		return e.evalShortCircuit(d)
	}

	vals := make([]value.Val, len(d.Args))
	for i, arg := range d.Args {
		r, err := e.evalOne(arg)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		vals[i] = r.val
	}

	switch d.Op {
	case ast.Not:
		return evalResult{val: value.Bool(!vals[0].B)}, nil
	case ast.NegInt:
		if vals[0].I == math.MinInt64 {
			return evalResult{}, errors.NewSubOverflow(0, vals[0].I, a.Span)
		}
		return evalResult{val: value.Int(-vals[0].I)}, nil
	case ast.NegFloat:
		return evalResult{val: value.Float(-vals[0].F)}, nil
	case ast.FactorialInt:
		return factorial(vals[0].I, a.Span)
	case ast.AddInt:
		if vals[0].Kind == value.IntType && vals[1].Kind == value.IntType {
			return checkedAdd(vals[0].I, vals[1].I, a.Span)
		}
		return evalResult{val: value.NormalizeFloat(value.Float(vals[0].AsF64() + vals[1].AsF64()))}, nil
	case ast.AddFloat:
		return evalResult{val: value.Float(vals[0].F + vals[1].F)}, nil
	case ast.SubInt:
		if vals[0].Kind == value.IntType && vals[1].Kind == value.IntType {
			return checkedSub(vals[0].I, vals[1].I, a.Span)
		}
		return evalResult{val: value.NormalizeFloat(value.Float(vals[0].AsF64() - vals[1].AsF64()))}, nil
	case ast.SubFloat:
		return evalResult{val: value.Float(vals[0].F - vals[1].F)}, nil
	case ast.MulInt:
		if vals[0].Kind == value.IntType && vals[1].Kind == value.IntType {
			return checkedMul(vals[0].I, vals[1].I, a.Span)
		}
		return evalResult{val: value.NormalizeFloat(value.Float(vals[0].AsF64() * vals[1].AsF64()))}, nil
	case ast.MulFloat:
		return evalResult{val: value.Float(vals[0].F * vals[1].F)}, nil
	case ast.DivInt:
		if vals[0].Kind == value.IntType && vals[1].Kind == value.IntType {
			if vals[1].I == 0 {
				return evalResult{}, errors.NewDivideByZero(a.Span)
			}
			if vals[0].I%vals[1].I == 0 {
				return evalResult{val: value.Int(vals[0].I / vals[1].I)}, nil
			}
			return evalResult{val: value.Float(float64(vals[0].I) / float64(vals[1].I))}, nil
		}
		if vals[1].AsF64() == 0 {
			return evalResult{}, errors.NewDivideByZero(a.Span)
		}
		return evalResult{val: value.NormalizeFloat(value.Float(vals[0].AsF64() / vals[1].AsF64()))}, nil
	case ast.DivFloat:
		return evalResult{val: value.Float(vals[0].F / vals[1].F)}, nil
	case ast.RemInt:
		if vals[1].I == 0 {
			return evalResult{}, errors.NewRemainderByZero(a.Span)
		}
		return evalResult{val: value.Int(euclidMod(vals[0].I, vals[1].I))}, nil
	case ast.RemFloat:
		return evalResult{val: value.Float(math.Mod(vals[0].F, vals[1].F))}, nil
	case ast.RangeEx:
		return evalResult{val: value.Range(value.Exclusive, vals[0].I, vals[1].I)}, nil
	case ast.RangeIn:
		return evalResult{val: value.Range(value.Inclusive, vals[0].I, vals[1].I)}, nil
	case ast.Eq:
		return evalResult{val: value.Bool(value.Eq(vals[0], vals[1]))}, nil
	case ast.Ne:
		return evalResult{val: value.Bool(!value.Eq(vals[0], vals[1]))}, nil
	case ast.LtInt:
		return evalResult{val: value.Bool(vals[0].AsF64() < vals[1].AsF64())}, nil
	case ast.LtFloat:
		return evalResult{val: value.Bool(vals[0].F < vals[1].F)}, nil
	case ast.LeInt:
		return evalResult{val: value.Bool(vals[0].AsF64() <= vals[1].AsF64())}, nil
	case ast.LeFloat:
		return evalResult{val: value.Bool(vals[0].F <= vals[1].F)}, nil
	case ast.GtInt:
		return evalResult{val: value.Bool(vals[0].AsF64() > vals[1].AsF64())}, nil
	case ast.GtFloat:
		return evalResult{val: value.Bool(vals[0].F > vals[1].F)}, nil
	case ast.GeInt:
		return evalResult{val: value.Bool(vals[0].AsF64() >= vals[1].AsF64())}, nil
	case ast.GeFloat:
		return evalResult{val: value.Bool(vals[0].F >= vals[1].F)}, nil
	case ast.BwOrInt:
		return evalResult{val: value.Int(vals[0].I | vals[1].I)}, nil
	case ast.BwOrBool:
		return evalResult{val: value.Bool(vals[0].B || vals[1].B)}, nil
	case ast.BwAndInt:
		return evalResult{val: value.Int(vals[0].I & vals[1].I)}, nil
	case ast.BwAndBool:
		return evalResult{val: value.Bool(vals[0].B && vals[1].B)}, nil
	case ast.BwXorInt:
		return evalResult{val: value.Int(vals[0].I ^ vals[1].I)}, nil
	case ast.BwXorBool:
		return evalResult{val: value.Bool(vals[0].B != vals[1].B)}, nil
	case ast.ShlInt:
		return evalResult{val: value.Int(vals[0].I << uint(vals[1].I))}, nil
	case ast.ShrInt:
		return evalResult{val: value.Int(vals[0].I >> uint(vals[1].I))}, nil
	}
	return evalResult{val: value.UnitVal()}, nil
}

func (e *Evaluator) evalShortCircuit(d ast.OpData) (evalResult, *errors.Error) {
	left, err := e.evalOne(d.Args[0])
	if err != nil {
		return evalResult{}, err
	}
	if left.ctrl == ctrlReturn {
		return left, nil
	}
	if d.Op == ast.And && !left.val.B {
		return evalResult{val: value.Bool(false)}, nil
	}
	if d.Op == ast.Or && left.val.B {
		return evalResult{val: value.Bool(true)}, nil
	}
	right, err := e.evalOne(d.Args[1])
	if err != nil {
		return evalResult{}, err
	}
	if right.ctrl == ctrlReturn {
		return right, nil
	}
	return evalResult{val: value.Bool(right.val.B)}, nil
}

func checkedAdd(a, b int64, sp span.Span) (evalResult, *errors.Error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return evalResult{}, errors.NewAddOverflow(a, b, sp)
	}
	return evalResult{val: value.Int(sum)}, nil
}

func checkedSub(a, b int64, sp span.Span) (evalResult, *errors.Error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return evalResult{}, errors.NewSubOverflow(a, b, sp)
	}
	return evalResult{val: value.Int(diff)}, nil
}

func checkedMul(a, b int64, sp span.Span) (evalResult, *errors.Error) {
	if a == 0 || b == 0 {
		return evalResult{val: value.Int(0)}, nil
	}
	prod := a * b
	if prod/b != a {
		return evalResult{}, errors.NewMulOverflow(a, b, sp)
	}
	return evalResult{val: value.Int(prod)}, nil
}

// euclidMod implements Euclidean remainder: the result always has the
// same sign as the divisor.
func euclidMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func factorial(n int64, sp span.Span) (evalResult, *errors.Error) {
	if n < 0 {
		return evalResult{}, errors.NewNegativeFactorial(n, sp)
	}
	result := int64(1)
	for i := int64(2); i <= n; i++ {
		prod := result * i
		if prod/i != result {
			return evalResult{}, errors.NewFactorialOverflow(n, sp)
		}
		result = prod
	}
	return evalResult{val: value.Int(result)}, nil
}
