// Package ast defines the checked syntax tree produced by the checker and
// walked by the evaluator: a marker interface plus one concrete struct
// per node kind, each carrying its own span for diagnostics. The node
// set is small enough that a plain type switch in the checker/evaluator
// reads cleaner than a Visitor threaded through every stage.
package ast

import (
	"github.com/funvibe/cods/internal/builtin"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/value"
)

// VarRef identifies a variable as a (depth, slot) pair: depth counts
// frames above the innermost one, slot indexes into that frame's dense
// value array.
type VarRef struct {
	Depth int
	Slot  int
}

// Op is a monomorphized operator, chosen once by the checker; the
// evaluator never redispatches on operand type.
type Op int

const (
	Not Op = iota
	NegInt
	NegFloat
	RangeIn
	RangeEx
	AddInt
	AddFloat
	SubInt
	SubFloat
	MulInt
	MulFloat
	DivInt
	DivFloat
	RemInt
	RemFloat
	FactorialInt
	Eq
	Ne
	LtInt
	LtFloat
	LeInt
	LeFloat
	GtInt
	GtFloat
	GeInt
	GeFloat
	Or
	And
	BwOrInt
	BwOrBool
	BwAndInt
	BwAndBool
	BwXorInt
	BwXorBool
	ShlInt
	ShrInt
)

// Data is the payload of an Ast node; one concrete type per node kind.
type Data interface{ astData() }

type ErrorData struct{}

func (ErrorData) astData() {}

type VarData struct{ Ref VarRef }

func (VarData) astData() {}

type ValData struct{ Val value.Val }

func (ValData) astData() {}

type OpData struct {
	Op   Op
	Args []Ast
}

func (OpData) astData() {}

type IsData struct {
	Expr Ast
	Type value.DataType
}

func (IsData) astData() {}

type CastData struct {
	Expr Ast
	Type value.DataType
}

func (CastData) astData() {}

type UnitData struct{}

func (UnitData) astData() {}

type BlockData struct{ Seq []Ast }

func (BlockData) astData() {}

// CondBlock is one `if`/`else if` arm.
type CondBlock struct {
	Cond  Ast
	Block []Ast
}

type IfExprData struct {
	Cases []CondBlock
	Else  []Ast // nil if there is no else block
}

func (IfExprData) astData() {}

type WhileLoopData struct {
	Cond  Ast
	Block []Ast
}

func (WhileLoopData) astData() {}

type ForLoopData struct {
	Var   VarRef
	Iter  Ast
	Block []Ast
}

func (ForLoopData) astData() {}

type VarAssignData struct {
	Ref VarRef
	Val Ast
}

func (VarAssignData) astData() {}

// Fun is an immutable function record. The header is declared first so
// forward references resolve; the body is installed exactly once after
// it is checked.
type Fun struct {
	Name       string
	Params     []VarRef
	ParamTypes []value.DataType
	ReturnType value.DataType
	Body       []Ast
	FrameSize  int
	installed  bool
}

// Install fills in a Fun's body exactly once. A second call panics: it
// would indicate a checker bug (double installation of a forward-declared
// function), not a recoverable user error.
func (f *Fun) Install(body []Ast, frameSize int) {
	if f.installed {
		panic("ast: Fun.Install called twice for " + f.Name)
	}
	f.Body = body
	f.FrameSize = frameSize
	f.installed = true
}

type FunCallData struct {
	Fun  *Fun
	Args []Ast
}

func (FunCallData) astData() {}

type ReturnData struct{ Expr Ast }

func (ReturnData) astData() {}

type BuiltinFunCallData struct {
	Which builtin.Which
	Args  []Ast
}

func (BuiltinFunCallData) astData() {}

// SpillVar names one variable captured by a Spill node.
type SpillVar struct {
	Name string
	Ref  VarRef
}

type SpillData struct {
	Vars  []SpillVar
	Local bool // true for spill_local: only the current function's frame
}

func (SpillData) astData() {}

// Ast is a single checked syntax tree node.
type Ast struct {
	Data     Data
	DataType *value.DataType // nil means "statement, no expression type"
	Returns  bool
	Span     span.Span
}

// Expr builds an expression node with a known type.
func Expr(data Data, dt value.DataType, returns bool, sp span.Span) Ast {
	t := dt
	return Ast{Data: data, DataType: &t, Returns: returns, Span: sp}
}

// Stmt builds a statement node (no expression type).
func Stmt(data Data, returns bool, sp span.Span) Ast {
	return Ast{Data: data, Returns: returns, Span: sp}
}

// Asts is the checker's final output: the checked program plus the
// global frame's size.
type Asts struct {
	Asts            []Ast
	GlobalFrameSize int
}
