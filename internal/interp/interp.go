// Package interp executes IR modules directly. It is the embeddable
// execution host behind `forge jit`: the same module the LLVM-text emitter
// serializes is run in-process, instruction by instruction.
package interp

import (
	"fmt"
	"math"

	"github.com/forge-lang/forge/internal/ir"
)

// Value is a runtime value. I holds integer bit patterns (including i1),
// F holds floats, P holds the storage cell a pointer refers to; ptrtoint and
// inttoptr only retype a value and keep its cell.
type Value struct {
	Type ir.Type
	I    uint64
	F    float64
	P    *Cell
}

// Cell is one storage slot created by alloca.
type Cell struct {
	V Value
}

// Machine runs functions of one module.
type Machine struct {
	module *ir.Module
}

func New(module *ir.Module) *Machine {
	return &Machine{module: module}
}

// Run executes the named function with the given arguments.
func (m *Machine) Run(name string, args ...Value) (Value, error) {
	f := m.module.Func(name)
	if f == nil {
		return Value{}, fmt.Errorf("interp: no function named %q", name)
	}
	if len(args) != len(f.Params) {
		return Value{}, fmt.Errorf("interp: %q expects %d arguments, got %d", name, len(f.Params), len(args))
	}
	return m.call(f, args)
}

func (m *Machine) call(f *ir.Func, args []Value) (Value, error) {
	regs := make(map[*ir.Value]Value)
	for i, p := range f.Params {
		regs[p] = args[i]
	}

	if len(f.Blocks) == 0 {
		return Value{}, fmt.Errorf("interp: function %q has no body", f.Name)
	}

	block := f.Blocks[0]
	for steps := 0; ; steps++ {
		if steps > 1<<24 {
			return Value{}, fmt.Errorf("interp: %q exceeded the step budget", f.Name)
		}

		for _, instr := range block.Instrs {
			if err := m.exec(f, regs, instr); err != nil {
				return Value{}, err
			}
		}

		term := block.Term
		if term == nil {
			return Value{}, fmt.Errorf("interp: block %q has no terminator", block.Name)
		}

		switch term.Op {
		case ir.OpRetVoid:
			return Value{Type: ir.VoidType()}, nil
		case ir.OpRet:
			return m.operand(regs, term.Args[0]), nil
		case ir.OpBr:
			block = term.Then
		case ir.OpCondBr:
			if m.operand(regs, term.Args[0]).I != 0 {
				block = term.Then
			} else {
				block = term.Else
			}
		default:
			return Value{}, fmt.Errorf("interp: unexpected terminator %q", term.Op)
		}
	}
}

func (m *Machine) operand(regs map[*ir.Value]Value, v *ir.Value) Value {
	if v.IsConst {
		if v.Type.IsFloat() {
			return Value{Type: v.Type, F: v.ConstFloat}
		}
		return Value{Type: v.Type, I: truncate(v.ConstInt, v.Type.Bits)}
	}
	return regs[v]
}

func truncate(raw uint64, bits uint) uint64 {
	if bits == 0 || bits >= 64 {
		return raw
	}
	return raw & ((uint64(1) << bits) - 1)
}

func signOf(raw uint64, bits uint) int64 {
	if bits == 0 || bits >= 64 {
		return int64(raw)
	}
	shift := 64 - bits
	return int64(raw<<shift) >> shift
}

func (m *Machine) exec(f *ir.Func, regs map[*ir.Value]Value, instr *ir.Instr) error {
	set := func(v Value) {
		if instr.Result != nil {
			regs[instr.Result] = v
		}
	}

	switch instr.Op {
	case ir.OpAlloca:
		set(Value{Type: instr.Result.Type, P: &Cell{}})

	case ir.OpLoad:
		ptr := m.operand(regs, instr.Args[0])
		if ptr.P == nil {
			return fmt.Errorf("interp: load through nil pointer")
		}
		loaded := ptr.P.V
		loaded.Type = instr.Result.Type
		set(loaded)

	case ir.OpStore:
		value := m.operand(regs, instr.Args[0])
		ptr := m.operand(regs, instr.Args[1])
		if ptr.P == nil {
			return fmt.Errorf("interp: store through nil pointer")
		}
		ptr.P.V = value

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpSDiv, ir.OpUDiv, ir.OpSRem, ir.OpURem,
		ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpLShr, ir.OpAShr:
		lhs := m.operand(regs, instr.Args[0])
		rhs := m.operand(regs, instr.Args[1])
		result, err := intBinary(instr.Op, lhs, rhs)
		if err != nil {
			return err
		}
		set(result)

	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv, ir.OpFRem:
		lhs := m.operand(regs, instr.Args[0])
		rhs := m.operand(regs, instr.Args[1])
		set(floatBinary(instr.Op, lhs, rhs))

	case ir.OpICmp:
		lhs := m.operand(regs, instr.Args[0])
		rhs := m.operand(regs, instr.Args[1])
		set(boolValue(intCompare(instr.Pred, lhs, rhs)))

	case ir.OpFCmp:
		lhs := m.operand(regs, instr.Args[0])
		rhs := m.operand(regs, instr.Args[1])
		set(boolValue(floatCompare(instr.Pred, lhs.F, rhs.F)))

	case ir.OpTrunc, ir.OpZExt:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, I: truncate(v.I, instr.Result.Type.Bits)})
	case ir.OpSExt:
		v := m.operand(regs, instr.Args[0])
		extended := uint64(signOf(v.I, v.Type.Bits))
		set(Value{Type: instr.Result.Type, I: truncate(extended, instr.Result.Type.Bits)})
	case ir.OpFPTrunc:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, F: float64(float32(v.F))})
	case ir.OpFPExt:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, F: v.F})
	case ir.OpSIToFP:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, F: float64(signOf(v.I, v.Type.Bits))})
	case ir.OpUIToFP:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, F: float64(v.I)})
	case ir.OpFPToSI:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, I: truncate(uint64(int64(v.F)), instr.Result.Type.Bits)})
	case ir.OpFPToUI:
		v := m.operand(regs, instr.Args[0])
		set(Value{Type: instr.Result.Type, I: truncate(uint64(v.F), instr.Result.Type.Bits)})
	case ir.OpPtrToInt, ir.OpIntToPtr, ir.OpBitcast:
		v := m.operand(regs, instr.Args[0])
		v.Type = instr.Result.Type
		set(v)

	case ir.OpCall:
		return m.execCall(regs, instr, set)

	default:
		return fmt.Errorf("interp: unexpected instruction %q", instr.Op)
	}

	return nil
}

func (m *Machine) execCall(regs map[*ir.Value]Value, instr *ir.Instr, set func(Value)) error {
	args := make([]Value, len(instr.Args))
	for i, a := range instr.Args {
		args[i] = m.operand(regs, a)
	}

	switch instr.Callee {
	case "forge.pow.f64", "forge.pow.f32":
		result := math.Pow(args[0].F, args[1].F)
		t := ir.FloatType(64)
		if instr.Callee == "forge.pow.f32" {
			t = ir.FloatType(32)
			result = float64(float32(result))
		}
		set(Value{Type: t, F: result})
		return nil
	}

	callee := m.module.Func(instr.Callee)
	if callee == nil {
		return fmt.Errorf("interp: call to unknown function %q", instr.Callee)
	}
	result, err := m.call(callee, args)
	if err != nil {
		return err
	}
	set(result)
	return nil
}

func boolValue(b bool) Value {
	var raw uint64
	if b {
		raw = 1
	}
	return Value{Type: ir.IntType(1), I: raw}
}

func intBinary(op ir.Op, lhs, rhs Value) (Value, error) {
	bits := lhs.Type.Bits
	var result uint64

	switch op {
	case ir.OpAdd:
		result = lhs.I + rhs.I
	case ir.OpSub:
		result = lhs.I - rhs.I
	case ir.OpMul:
		result = lhs.I * rhs.I
	case ir.OpSDiv:
		if rhs.I == 0 {
			return Value{}, fmt.Errorf("interp: integer division by zero")
		}
		result = uint64(signOf(lhs.I, bits) / signOf(rhs.I, bits))
	case ir.OpUDiv:
		if rhs.I == 0 {
			return Value{}, fmt.Errorf("interp: integer division by zero")
		}
		result = lhs.I / rhs.I
	case ir.OpSRem:
		if rhs.I == 0 {
			return Value{}, fmt.Errorf("interp: integer division by zero")
		}
		result = uint64(signOf(lhs.I, bits) % signOf(rhs.I, bits))
	case ir.OpURem:
		if rhs.I == 0 {
			return Value{}, fmt.Errorf("interp: integer division by zero")
		}
		result = lhs.I % rhs.I
	case ir.OpAnd:
		result = lhs.I & rhs.I
	case ir.OpOr:
		result = lhs.I | rhs.I
	case ir.OpXor:
		result = lhs.I ^ rhs.I
	case ir.OpShl:
		result = lhs.I << (rhs.I % 64)
	case ir.OpLShr:
		result = lhs.I >> (rhs.I % 64)
	case ir.OpAShr:
		result = uint64(signOf(lhs.I, bits) >> (rhs.I % 64))
	}

	return Value{Type: lhs.Type, I: truncate(result, bits)}, nil
}

func floatBinary(op ir.Op, lhs, rhs Value) Value {
	var result float64
	switch op {
	case ir.OpFAdd:
		result = lhs.F + rhs.F
	case ir.OpFSub:
		result = lhs.F - rhs.F
	case ir.OpFMul:
		result = lhs.F * rhs.F
	case ir.OpFDiv:
		result = lhs.F / rhs.F
	case ir.OpFRem:
		result = math.Mod(lhs.F, rhs.F)
	}
	if lhs.Type.Bits == 32 {
		result = float64(float32(result))
	}
	return Value{Type: lhs.Type, F: result}
}

func intCompare(pred string, lhs, rhs Value) bool {
	bits := lhs.Type.Bits
	switch pred {
	case "eq":
		return lhs.I == rhs.I
	case "ne":
		return lhs.I != rhs.I
	case "slt":
		return signOf(lhs.I, bits) < signOf(rhs.I, bits)
	case "sle":
		return signOf(lhs.I, bits) <= signOf(rhs.I, bits)
	case "sgt":
		return signOf(lhs.I, bits) > signOf(rhs.I, bits)
	case "sge":
		return signOf(lhs.I, bits) >= signOf(rhs.I, bits)
	case "ult":
		return lhs.I < rhs.I
	case "ule":
		return lhs.I <= rhs.I
	case "ugt":
		return lhs.I > rhs.I
	case "uge":
		return lhs.I >= rhs.I
	}
	return false
}

func floatCompare(pred string, lhs, rhs float64) bool {
	switch pred {
	case "oeq":
		return lhs == rhs
	case "one":
		return lhs != rhs
	case "olt":
		return lhs < rhs
	case "ole":
		return lhs <= rhs
	case "ogt":
		return lhs > rhs
	case "oge":
		return lhs >= rhs
	}
	return false
}
