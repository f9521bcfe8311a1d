// Package ir models the target intermediate representation the code
// generator emits against: functions of basic blocks holding typed
// instructions, serializable as LLVM assembly. Control flow is phi-free;
// locals live in explicit stack slots.
package ir

import (
	"fmt"

	"github.com/google/uuid"
)

// TypeKind discriminates IR types.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindInt           // iN, signless like LLVM's
	KindFloat         // f32 or f64
	KindPtr
)

// Type is an IR value type.
type Type struct {
	Kind TypeKind
	Bits uint
	Elem *Type // pointee for KindPtr
}

func VoidType() Type          { return Type{Kind: KindVoid} }
func IntType(bits uint) Type  { return Type{Kind: KindInt, Bits: bits} }
func FloatType(bits uint) Type { return Type{Kind: KindFloat, Bits: bits} }
func PtrType(elem Type) Type  { e := elem; return Type{Kind: KindPtr, Elem: &e} }

func (t Type) IsVoid() bool  { return t.Kind == KindVoid }
func (t Type) IsInt() bool   { return t.Kind == KindInt }
func (t Type) IsFloat() bool { return t.Kind == KindFloat }
func (t Type) IsPtr() bool   { return t.Kind == KindPtr }

func (t Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		if t.Bits == 32 {
			return "float"
		}
		return "double"
	case KindPtr:
		return "ptr"
	}
	return "?"
}

func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Bits != other.Bits {
		return false
	}
	if t.Kind == KindPtr {
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}
		return t.Elem.Equal(*other.Elem)
	}
	return true
}

// Value is an SSA value: a register, a function parameter or a constant.
type Value struct {
	Name       string
	Type       Type
	IsConst    bool
	ConstInt   uint64
	ConstFloat float64
}

func ConstInt(t Type, v uint64) *Value {
	return &Value{Type: t, IsConst: true, ConstInt: v}
}

func ConstFloat(t Type, v float64) *Value {
	return &Value{Type: t, IsConst: true, ConstFloat: v}
}

func ConstBool(v bool) *Value {
	var raw uint64
	if v {
		raw = 1
	}
	return ConstInt(IntType(1), raw)
}

// Op is an instruction opcode.
type Op string

const (
	OpAlloca Op = "alloca"
	OpLoad   Op = "load"
	OpStore  Op = "store"

	OpAdd  Op = "add"
	OpSub  Op = "sub"
	OpMul  Op = "mul"
	OpSDiv Op = "sdiv"
	OpUDiv Op = "udiv"
	OpSRem Op = "srem"
	OpURem Op = "urem"

	OpFAdd Op = "fadd"
	OpFSub Op = "fsub"
	OpFMul Op = "fmul"
	OpFDiv Op = "fdiv"
	OpFRem Op = "frem"

	OpAnd  Op = "and"
	OpOr   Op = "or"
	OpXor  Op = "xor"
	OpShl  Op = "shl"
	OpLShr Op = "lshr"
	OpAShr Op = "ashr"

	OpICmp Op = "icmp"
	OpFCmp Op = "fcmp"

	OpTrunc    Op = "trunc"
	OpZExt     Op = "zext"
	OpSExt     Op = "sext"
	OpFPTrunc  Op = "fptrunc"
	OpFPExt    Op = "fpext"
	OpFPToSI   Op = "fptosi"
	OpFPToUI   Op = "fptoui"
	OpSIToFP   Op = "sitofp"
	OpUIToFP   Op = "uitofp"
	OpPtrToInt Op = "ptrtoint"
	OpIntToPtr Op = "inttoptr"
	OpBitcast  Op = "bitcast"

	OpCall Op = "call"

	OpRet     Op = "ret"
	OpRetVoid Op = "ret void"
	OpBr      Op = "br"
	OpCondBr  Op = "condbr"
)

// Instr is one instruction. Result is nil for stores and terminators.
type Instr struct {
	Op     Op
	Result *Value
	Args   []*Value
	Type   Type   // result or operand type where the op needs one
	Pred   string // icmp/fcmp predicate
	Callee string // call target symbol
	Then   *Block // br target / condbr true edge
	Else   *Block // condbr false edge
}

// Block is a basic block. Term is the single terminator; a block without
// one is still open for emission.
type Block struct {
	Name   string
	Instrs []*Instr
	Term   *Instr
	preds  int
}

func (b *Block) Terminated() bool { return b.Term != nil }

func (b *Block) Preds() int { return b.preds }

// Func is a function definition.
type Func struct {
	Name    string
	Params  []*Value
	RetType Type
	Blocks  []*Block

	nextReg   int
	nextBlock int
}

// Module is a translation unit's worth of IR.
type Module struct {
	ID     string
	Name   string
	Funcs  []*Func
	extern map[string]Type // runtime intrinsics: name -> return type
}

func NewModule(name string) *Module {
	return &Module{
		ID:     uuid.NewString(),
		Name:   name,
		extern: make(map[string]Type),
	}
}

// DeclareExtern records an external function symbol (runtime intrinsics
// such as forge.pow.f64) so serialization can emit its declaration.
func (m *Module) DeclareExtern(name string, ret Type) {
	m.extern[name] = ret
}

func (m *Module) NewFunc(name string, ret Type, params []*Value) *Func {
	f := &Func{Name: name, RetType: ret, Params: params}
	m.Funcs = append(m.Funcs, f)
	return f
}

func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// NewBlock appends a fresh block named after hint.
func (f *Func) NewBlock(hint string) *Block {
	b := &Block{Name: fmt.Sprintf("%s%d", hint, f.nextBlock)}
	f.nextBlock++
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewReg allocates a fresh register of the given type.
func (f *Func) NewReg(t Type) *Value {
	f.nextReg++
	return &Value{Name: fmt.Sprintf("t%d", f.nextReg), Type: t}
}

// RemoveBlock drops an unreachable block from the function.
func (f *Func) RemoveBlock(target *Block) {
	for i, b := range f.Blocks {
		if b == target {
			f.Blocks = append(f.Blocks[:i], f.Blocks[i+1:]...)
			return
		}
	}
}

// Append adds a non-terminator instruction to the block.
func (b *Block) Append(instr *Instr) {
	if b.Terminated() {
		panic(fmt.Sprintf("forge internal error [ir]: emit into terminated block %q", b.Name))
	}
	b.Instrs = append(b.Instrs, instr)
}

// SetTerm installs the block's terminator and records edge predecessors.
func (b *Block) SetTerm(instr *Instr) {
	if b.Terminated() {
		panic(fmt.Sprintf("forge internal error [ir]: block %q already terminated", b.Name))
	}
	b.Term = instr
	if instr.Then != nil {
		instr.Then.preds++
	}
	if instr.Else != nil {
		instr.Else.preds++
	}
}
