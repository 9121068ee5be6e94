// Package eval walks a checked ast.Asts and produces its runtime effects
// (mutating frame slots, writing to the configured sink, returning a
// final value). A single-method tree-walker switches on node kind and
// threads errors back up through every recursive call; variables live in
// a dense, pre-sized frame stack, so every ast.VarRef resolves by simple
// slice indexing with no name lookup at run time.
package eval

import (
	"fmt"
	"io"

	"github.com/funvibe/cods/internal/ast"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/value"
)

// ctrl signals non-local control flow threaded back up through evalOne.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
)

// evalResult is the outcome of evaluating one Ast node.
type evalResult struct {
	val  value.Val
	ctrl ctrl
}

// frame is one function activation's dense slot array. Depth 0 in a
// VarRef always means "the frame currently on top of this stack"; a
// function can only be called from code lexically inside the scope that
// declared it, so whatever frame a VarRef's outer depth refers to is
// guaranteed to still be on the stack (there are no closures to escape
// that guarantee).
type frame struct {
	slots []value.Val
}

// Evaluator runs one program against a single output sink.
type Evaluator struct {
	frames []*frame
	out    io.Writer
}

// New creates an Evaluator that writes print/println/spill output to out.
func New(out io.Writer) *Evaluator {
	return &Evaluator{out: out}
}

// Run evaluates a full checked program and returns its last value.
func (e *Evaluator) Run(prog *ast.Asts) (value.Val, *errors.Error) {
	e.frames = []*frame{{slots: make([]value.Val, prog.GlobalFrameSize)}}
	r, err := e.evalBlock(prog.Asts)
	if err != nil {
		return value.UnitVal(), err
	}
	return r.val, nil
}

func (e *Evaluator) evalBlock(asts []ast.Ast) (evalResult, *errors.Error) {
	last := evalResult{val: value.UnitVal()}
	for _, a := range asts {
		r, err := e.evalOne(a)
		if err != nil {
			return evalResult{}, err
		}
		last = r
		if r.ctrl == ctrlReturn {
			return last, nil
		}
	}
	return last, nil
}

func (e *Evaluator) getVar(ref ast.VarRef) value.Val {
	f := e.frames[len(e.frames)-1-ref.Depth]
	return f.slots[ref.Slot]
}

func (e *Evaluator) setVar(ref ast.VarRef, v value.Val) {
	f := e.frames[len(e.frames)-1-ref.Depth]
	f.slots[ref.Slot] = v
}

func (e *Evaluator) evalOne(a ast.Ast) (evalResult, *errors.Error) {
	switch d := a.Data.(type) {
	case ast.ErrorData:
		return evalResult{val: value.UnitVal()}, nil
	case ast.ValData:
		return evalResult{val: d.Val}, nil
	case ast.UnitData:
		return evalResult{val: value.UnitVal()}, nil
	case ast.VarData:
		return evalResult{val: e.getVar(d.Ref)}, nil
	case ast.VarAssignData:
		r, err := e.evalOne(d.Val)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		e.setVar(d.Ref, r.val)
		return evalResult{val: value.UnitVal()}, nil
	case ast.OpData:
		return e.evalOp(a, d)
	case ast.IsData:
		r, err := e.evalOne(d.Expr)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		return evalResult{val: value.Bool(r.val.DataType() == d.Type)}, nil
	case ast.CastData:
		r, err := e.evalOne(d.Expr)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		return evalResult{val: castTo(r.val, d.Type)}, nil
	case ast.BlockData:
		return e.evalBlock(d.Seq)
	case ast.IfExprData:
		return e.evalIf(d)
	case ast.WhileLoopData:
		return e.evalWhile(d)
	case ast.ForLoopData:
		return e.evalFor(d)
	case ast.FunCallData:
		return e.evalFunCall(d)
	case ast.BuiltinFunCallData:
		return e.evalBuiltin(a, d)
	case ast.SpillData:
		return e.evalSpill(d)
	case ast.ReturnData:
		r, err := e.evalOne(d.Expr)
		if err != nil {
			return evalResult{}, err
		}
		return evalResult{val: r.val, ctrl: ctrlReturn}, nil
	}
	return evalResult{val: value.UnitVal()}, nil
}

// castTo widens/narrows a value for an explicit cast expression. Only
// Int<->Float conversions are meaningful; anything else is a checker bug
// and passes the value through unchanged.
func castTo(v value.Val, to value.DataType) value.Val {
	switch to {
	case value.IntType:
		if v.Kind == value.FloatType {
			return value.Int(int64(v.F))
		}
	case value.FloatType:
		if v.Kind == value.IntType {
			return value.Float(float64(v.I))
		}
	}
	return v
}

func (e *Evaluator) evalIf(d ast.IfExprData) (evalResult, *errors.Error) {
	for _, cb := range d.Cases {
		cond, err := e.evalOne(cb.Cond)
		if err != nil {
			return evalResult{}, err
		}
		if cond.ctrl == ctrlReturn {
			return cond, nil
		}
		if cond.val.B {
			return e.evalBlock(cb.Block)
		}
	}
	if d.Else != nil {
		return e.evalBlock(d.Else)
	}
	return evalResult{val: value.UnitVal()}, nil
}

func (e *Evaluator) evalWhile(d ast.WhileLoopData) (evalResult, *errors.Error) {
	for {
		cond, err := e.evalOne(d.Cond)
		if err != nil {
			return evalResult{}, err
		}
		if cond.ctrl == ctrlReturn {
			return cond, nil
		}
		if !cond.val.B {
			break
		}
		r, err := e.evalBlock(d.Block)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
	}
	return evalResult{val: value.UnitVal()}, nil
}

func (e *Evaluator) evalFor(d ast.ForLoopData) (evalResult, *errors.Error) {
	iter, err := e.evalOne(d.Iter)
	if err != nil {
		return evalResult{}, err
	}
	if iter.ctrl == ctrlReturn {
		return iter, nil
	}
	lo, hi := iter.val.RLo, iter.val.RHi
	if iter.val.RKind == value.Exclusive {
		if lo >= hi {
			return evalResult{val: value.UnitVal()}, nil
		}
		hi--
	} else if lo > hi {
		return evalResult{val: value.UnitVal()}, nil
	}
	// hi is now the inclusive upper bound; the loop structure below never
	// computes hi+1, so a range ending at the maximum int iterates cleanly.
	for i := lo; ; i++ {
		e.setVar(d.Var, value.Int(i))
		r, err := e.evalBlock(d.Block)
		if err != nil {
			return evalResult{}, err
		}
		if r.ctrl == ctrlReturn {
			return r, nil
		}
		if i == hi {
			break
		}
	}
	return evalResult{val: value.UnitVal()}, nil
}

func (e *Evaluator) evalFunCall(d ast.FunCallData) (evalResult, *errors.Error) {
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

	f := &frame{slots: make([]value.Val, d.Fun.FrameSize)}
	for i, ref := range d.Fun.Params {
		f.slots[ref.Slot] = args[i]
	}
	e.frames = append(e.frames, f)
	r, err := e.evalBlock(d.Fun.Body)
	e.frames = e.frames[:len(e.frames)-1]
	if err != nil {
		return evalResult{}, err
	}
	return evalResult{val: r.val}, nil
}

func (e *Evaluator) evalSpill(d ast.SpillData) (evalResult, *errors.Error) {
	for _, v := range d.Vars {
		fmt.Fprintf(e.out, "%s = %s\n", v.Name, e.getVar(v.Ref).String())
	}
	return evalResult{val: value.UnitVal()}, nil
}
