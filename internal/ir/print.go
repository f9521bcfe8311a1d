package ir

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// String serializes the module as LLVM assembly.
func (m *Module) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.ID)
	fmt.Fprintf(&sb, "source_filename = %q\n", m.Name)

	if len(m.extern) > 0 {
		sb.WriteString("\n")
		for _, name := range externNames(m.extern) {
			ret := m.extern[name]
			fmt.Fprintf(&sb, "declare %s @%s(%s, %s)\n", ret, name, ret, ret)
		}
	}

	for _, f := range m.Funcs {
		sb.WriteString("\n")
		sb.WriteString(f.String())
	}

	return sb.String()
}

func externNames(extern map[string]Type) []string {
	names := make([]string, 0, len(extern))
	for name := range extern {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Func) String() string {
	var sb strings.Builder

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Type, p.Name)
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.RetType, f.Name, strings.Join(params, ", "))

	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "%s:\n", b.Name)
		for _, instr := range b.Instrs {
			fmt.Fprintf(&sb, "  %s\n", instr)
		}
		if b.Term != nil {
			fmt.Fprintf(&sb, "  %s\n", b.Term)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func operand(v *Value) string {
	if v == nil {
		return "<nil>"
	}
	if !v.IsConst {
		return "%" + v.Name
	}
	switch v.Type.Kind {
	case KindFloat:
		return fmt.Sprintf("0x%016X", math.Float64bits(v.ConstFloat))
	default:
		if v.Type.Kind == KindInt && v.Type.Bits < 64 {
			// render as the signed value of the truncated width
			return fmt.Sprintf("%d", signExtend(v.ConstInt, v.Type.Bits))
		}
		return fmt.Sprintf("%d", int64(v.ConstInt))
	}
}

func signExtend(raw uint64, bits uint) int64 {
	if bits == 0 || bits >= 64 {
		return int64(raw)
	}
	shift := 64 - bits
	return int64(raw<<shift) >> shift
}

func typedOperand(v *Value) string {
	return fmt.Sprintf("%s %s", v.Type, operand(v))
}

func (i *Instr) String() string {
	switch i.Op {
	case OpAlloca:
		return fmt.Sprintf("%%%s = alloca %s", i.Result.Name, i.Type)
	case OpLoad:
		return fmt.Sprintf("%%%s = load %s, ptr %s", i.Result.Name, i.Result.Type, operand(i.Args[0]))
	case OpStore:
		return fmt.Sprintf("store %s, ptr %s", typedOperand(i.Args[0]), operand(i.Args[1]))

	case OpAdd, OpSub, OpMul, OpSDiv, OpUDiv, OpSRem, OpURem,
		OpFAdd, OpFSub, OpFMul, OpFDiv, OpFRem,
		OpAnd, OpOr, OpXor, OpShl, OpLShr, OpAShr:
		return fmt.Sprintf("%%%s = %s %s %s, %s",
			i.Result.Name, i.Op, i.Args[0].Type, operand(i.Args[0]), operand(i.Args[1]))

	case OpICmp:
		return fmt.Sprintf("%%%s = icmp %s %s %s, %s",
			i.Result.Name, i.Pred, i.Args[0].Type, operand(i.Args[0]), operand(i.Args[1]))
	case OpFCmp:
		return fmt.Sprintf("%%%s = fcmp %s %s %s, %s",
			i.Result.Name, i.Pred, i.Args[0].Type, operand(i.Args[0]), operand(i.Args[1]))

	case OpTrunc, OpZExt, OpSExt, OpFPTrunc, OpFPExt,
		OpFPToSI, OpFPToUI, OpSIToFP, OpUIToFP,
		OpPtrToInt, OpIntToPtr, OpBitcast:
		return fmt.Sprintf("%%%s = %s %s to %s",
			i.Result.Name, i.Op, typedOperand(i.Args[0]), i.Result.Type)

	case OpCall:
		args := make([]string, len(i.Args))
		for idx, a := range i.Args {
			args[idx] = typedOperand(a)
		}
		if i.Result == nil {
			return fmt.Sprintf("call void @%s(%s)", i.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%%%s = call %s @%s(%s)",
			i.Result.Name, i.Result.Type, i.Callee, strings.Join(args, ", "))

	case OpRet:
		return fmt.Sprintf("ret %s", typedOperand(i.Args[0]))
	case OpRetVoid:
		return "ret void"
	case OpBr:
		return fmt.Sprintf("br label %%%s", i.Then.Name)
	case OpCondBr:
		return fmt.Sprintf("br i1 %s, label %%%s, label %%%s",
			operand(i.Args[0]), i.Then.Name, i.Else.Name)
	}
	return string(i.Op)
}
