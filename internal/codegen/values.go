package codegen

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/ir"
	"github.com/forge-lang/forge/internal/typesystem"
)

func (g *Generator) genValue(f *ir.Func, b *ir.Block, v ast.Value) *ir.Value {
	switch n := v.(type) {
	case *ast.ValueLiteralBool:
		return ir.ConstBool(n.Value)

	case *ast.ValueLiteralNumber:
		t := g.typeOf(n.Type)
		if t.IsFloat() {
			return ir.ConstFloat(t, n.Value.F)
		}
		return ir.ConstInt(t, n.Value.U)

	case *ast.ValueSymbol:
		return g.genSymbolLoad(f, b, n)

	case *ast.ValueUnary:
		return g.genUnary(f, b, n)

	case *ast.ValueBinary:
		return g.genBinary(f, b, n)

	case *ast.ValueCall:
		return g.genCall(f, b, n)

	case *ast.ValueCast:
		value := g.genValue(f, b, n.Value)
		return g.emitCast(f, b, value, n.Value.ResolvedType(), n.Type)
	}

	diagnostics.Abort("codegen", "no lowering for value kind %q", v.Kind())
	return nil
}

func (g *Generator) genSymbolLoad(f *ir.Func, b *ir.Block, n *ast.ValueSymbol) *ir.Value {
	variable, ok := n.ReferencedDeclaration.(*ast.DeclarationVariable)
	if !ok {
		diagnostics.Abort("codegen", "symbol %q does not name a variable", n.Name)
	}
	slot, ok := variable.CodegenValue.(*ir.Value)
	if !ok || slot == nil {
		diagnostics.Abort("codegen", "variable %q has no storage slot", n.Name)
	}

	result := f.NewReg(g.typeOf(n.ResolvedType()))
	b.Append(&ir.Instr{Op: ir.OpLoad, Result: result, Args: []*ir.Value{slot}})
	return result
}

// lvalueSlot returns the storage address an l-value denotes.
func (g *Generator) lvalueSlot(f *ir.Func, b *ir.Block, v ast.Value) *ir.Value {
	switch n := v.(type) {
	case *ast.ValueSymbol:
		variable, ok := n.ReferencedDeclaration.(*ast.DeclarationVariable)
		if !ok {
			diagnostics.Abort("codegen", "symbol %q does not name a variable", n.Name)
		}
		slot, ok := variable.CodegenValue.(*ir.Value)
		if !ok || slot == nil {
			diagnostics.Abort("codegen", "variable %q has no storage slot", n.Name)
		}
		return slot
	case *ast.ValueUnary:
		if n.Operator == ast.UnaryDeref {
			return g.genValue(f, b, n.Operand)
		}
	case *ast.ValueBinary:
		if n.Operator == ast.BinaryMemberAccess {
			// TODO: needs aggregate types in the IR before member slots can
			// be addressed.
			diagnostics.Abort("codegen", "member access lowering is not implemented")
		}
	}
	diagnostics.Abort("codegen", "value kind %q is not an l-value", v.Kind())
	return nil
}

func (g *Generator) genUnary(f *ir.Func, b *ir.Block, n *ast.ValueUnary) *ir.Value {
	switch n.Operator {
	case ast.UnaryGetAddr:
		return g.lvalueSlot(f, b, n.Operand)
	case ast.UnaryDeref:
		ptr := g.genValue(f, b, n.Operand)
		result := f.NewReg(g.typeOf(n.ResolvedType()))
		b.Append(&ir.Instr{Op: ir.OpLoad, Result: result, Args: []*ir.Value{ptr}})
		return result
	}

	operand := g.genValue(f, b, n.Operand)

	switch n.Operator {
	case ast.UnaryBoolNot:
		result := f.NewReg(operand.Type)
		b.Append(&ir.Instr{Op: ir.OpXor, Result: result, Args: []*ir.Value{operand, ir.ConstInt(operand.Type, 1)}})
		return result

	case ast.UnaryBitNot:
		result := f.NewReg(operand.Type)
		b.Append(&ir.Instr{Op: ir.OpXor, Result: result, Args: []*ir.Value{operand, allOnes(operand.Type)}})
		return result

	case ast.UnaryPos:
		return operand

	case ast.UnaryNeg:
		result := f.NewReg(operand.Type)
		op := ir.OpSub
		zero := ir.ConstInt(operand.Type, 0)
		if operand.Type.IsFloat() {
			op = ir.OpFSub
			zero = ir.ConstFloat(operand.Type, 0)
		}
		b.Append(&ir.Instr{Op: op, Result: result, Args: []*ir.Value{zero, operand}})
		return result
	}

	diagnostics.Abort("codegen", "no lowering for unary operator %s", n.Operator)
	return nil
}

func allOnes(t ir.Type) *ir.Value {
	raw := ^uint64(0)
	if t.Bits < 64 {
		raw = (uint64(1) << t.Bits) - 1
	}
	return ir.ConstInt(t, raw)
}

func (g *Generator) genBinary(f *ir.Func, b *ir.Block, n *ast.ValueBinary) *ir.Value {
	switch {
	case n.Operator == ast.BinaryMemberAccess:
		// TODO: blocked on aggregate IR types, same as lvalueSlot.
		diagnostics.Abort("codegen", "member access lowering is not implemented")

	case n.Operator.IsAssignment():
		return g.genAssign(f, b, n)

	case n.Operator == ast.BinaryBoolAnd || n.Operator == ast.BinaryBoolOr:
		lhs := g.genValue(f, b, n.LHS)
		rhs := g.genValue(f, b, n.RHS)
		op := ir.OpAnd
		if n.Operator == ast.BinaryBoolOr {
			op = ir.OpOr
		}
		result := f.NewReg(ir.IntType(1))
		b.Append(&ir.Instr{Op: op, Result: result, Args: []*ir.Value{lhs, rhs}})
		return result

	case n.Operator == ast.BinaryShl || n.Operator == ast.BinaryShr:
		lhs := g.genValue(f, b, n.LHS)
		rhs := g.genValue(f, b, n.RHS)
		rhs = g.emitCast(f, b, rhs, n.RHS.ResolvedType(), n.LHS.ResolvedType())
		op := ir.OpShl
		if n.Operator == ast.BinaryShr {
			op = ir.OpLShr
			if signed, _ := typesystem.IntegerSignedness(n.LHS.ResolvedType()); signed {
				op = ir.OpAShr
			}
		}
		result := f.NewReg(lhs.Type)
		b.Append(&ir.Instr{Op: op, Result: result, Args: []*ir.Value{lhs, rhs}})
		return result

	case n.Operator.IsComparison():
		return g.genComparison(f, b, n)

	default:
		return g.genArithmetic(f, b, n, n.Operator)
	}
	return nil
}

// genComparison casts both sides to their arithmetic containing type and
// compares there, producing i1.
func (g *Generator) genComparison(f *ir.Func, b *ir.Block, n *ast.ValueBinary) *ir.Value {
	containing, _ := typesystem.ArithmeticContainingType(g.target, n.LHS.ResolvedType(), n.RHS.ResolvedType())
	if containing == nil {
		diagnostics.Abort("codegen", "comparison operands are not numeric; was type validation run?")
	}

	lhs := g.emitCast(f, b, g.genValue(f, b, n.LHS), n.LHS.ResolvedType(), containing)
	rhs := g.emitCast(f, b, g.genValue(f, b, n.RHS), n.RHS.ResolvedType(), containing)

	isFloat := typesystem.IsFloat(containing)
	signed, _ := typesystem.IntegerSignedness(containing)

	result := f.NewReg(ir.IntType(1))
	if isFloat {
		b.Append(&ir.Instr{Op: ir.OpFCmp, Pred: floatPred(n.Operator), Result: result, Args: []*ir.Value{lhs, rhs}})
	} else {
		b.Append(&ir.Instr{Op: ir.OpICmp, Pred: intPred(n.Operator, signed), Result: result, Args: []*ir.Value{lhs, rhs}})
	}
	return result
}

func floatPred(op ast.BinaryOperator) string {
	switch op {
	case ast.BinaryEq:
		return "oeq"
	case ast.BinaryNe:
		return "one"
	case ast.BinaryLt:
		return "olt"
	case ast.BinaryLe:
		return "ole"
	case ast.BinaryGt:
		return "ogt"
	case ast.BinaryGe:
		return "oge"
	}
	return "?"
}

func intPred(op ast.BinaryOperator, signed bool) string {
	switch op {
	case ast.BinaryEq:
		return "eq"
	case ast.BinaryNe:
		return "ne"
	case ast.BinaryLt:
		if signed {
			return "slt"
		}
		return "ult"
	case ast.BinaryLe:
		if signed {
			return "sle"
		}
		return "ule"
	case ast.BinaryGt:
		if signed {
			return "sgt"
		}
		return "ugt"
	case ast.BinaryGe:
		if signed {
			return "sge"
		}
		return "uge"
	}
	return "?"
}

// genArithmetic handles the arithmetic and bitwise operators: both sides
// are cast to the arithmetic containing type and dispatched on
// (is_float, is_signed).
func (g *Generator) genArithmetic(f *ir.Func, b *ir.Block, n *ast.ValueBinary, op ast.BinaryOperator) *ir.Value {
	containing, _ := typesystem.ArithmeticContainingType(g.target, n.LHS.ResolvedType(), n.RHS.ResolvedType())
	if containing == nil {
		diagnostics.Abort("codegen", "operands of %s are not numeric; was type validation run?", op)
	}

	lhs := g.emitCast(f, b, g.genValue(f, b, n.LHS), n.LHS.ResolvedType(), containing)
	rhs := g.emitCast(f, b, g.genValue(f, b, n.RHS), n.RHS.ResolvedType(), containing)

	if op == ast.BinaryExp {
		return g.emitPow(f, b, lhs, rhs, containing)
	}

	isFloat := typesystem.IsFloat(containing)
	signed, _ := typesystem.IntegerSignedness(containing)

	irOp, ok := arithmeticOp(op, isFloat, signed)
	if !ok {
		diagnostics.Abort("codegen", "no dispatch entry for binary operator %s", op)
	}

	result := f.NewReg(lhs.Type)
	b.Append(&ir.Instr{Op: irOp, Result: result, Args: []*ir.Value{lhs, rhs}})
	return result
}

func arithmeticOp(op ast.BinaryOperator, isFloat, signed bool) (ir.Op, bool) {
	switch op {
	case ast.BinaryAdd:
		if isFloat {
			return ir.OpFAdd, true
		}
		return ir.OpAdd, true
	case ast.BinarySub:
		if isFloat {
			return ir.OpFSub, true
		}
		return ir.OpSub, true
	case ast.BinaryMul:
		if isFloat {
			return ir.OpFMul, true
		}
		return ir.OpMul, true
	case ast.BinaryDiv:
		switch {
		case isFloat:
			return ir.OpFDiv, true
		case signed:
			return ir.OpSDiv, true
		default:
			return ir.OpUDiv, true
		}
	case ast.BinaryMod:
		switch {
		case isFloat:
			return ir.OpFRem, true
		case signed:
			return ir.OpSRem, true
		default:
			return ir.OpURem, true
		}
	case ast.BinaryBitAnd:
		return ir.OpAnd, true
	case ast.BinaryBitOr:
		return ir.OpOr, true
	case ast.BinaryBitXor:
		return ir.OpXor, true
	}
	return "", false
}

// emitPow lowers `**` to the forge.pow runtime intrinsics. Integer
// exponentiation routes through double and converts back.
func (g *Generator) emitPow(f *ir.Func, b *ir.Block, lhs, rhs *ir.Value, containing ast.Type) *ir.Value {
	if typesystem.IsFloat(containing) {
		callee := "forge.pow.f64"
		if lhs.Type.Bits == 32 {
			callee = "forge.pow.f32"
		}
		g.module.DeclareExtern(callee, lhs.Type)
		result := f.NewReg(lhs.Type)
		b.Append(&ir.Instr{Op: ir.OpCall, Callee: callee, Result: result, Args: []*ir.Value{lhs, rhs}})
		return result
	}

	signed, _ := typesystem.IntegerSignedness(containing)
	double := ir.FloatType(64)

	toFP := ir.Op(ir.OpUIToFP)
	fromFP := ir.Op(ir.OpFPToUI)
	if signed {
		toFP, fromFP = ir.OpSIToFP, ir.OpFPToSI
	}

	lhsFP := f.NewReg(double)
	b.Append(&ir.Instr{Op: toFP, Result: lhsFP, Args: []*ir.Value{lhs}})
	rhsFP := f.NewReg(double)
	b.Append(&ir.Instr{Op: toFP, Result: rhsFP, Args: []*ir.Value{rhs}})

	g.module.DeclareExtern("forge.pow.f64", double)
	powed := f.NewReg(double)
	b.Append(&ir.Instr{Op: ir.OpCall, Callee: "forge.pow.f64", Result: powed, Args: []*ir.Value{lhsFP, rhsFP}})

	result := f.NewReg(lhs.Type)
	b.Append(&ir.Instr{Op: fromFP, Result: result, Args: []*ir.Value{powed}})
	return result
}

// genAssign stores through the l-value's slot and yields the stored value.
// Compound forms load, combine in the l-value's type, then write back.
func (g *Generator) genAssign(f *ir.Func, b *ir.Block, n *ast.ValueBinary) *ir.Value {
	slot := g.lvalueSlot(f, b, n.LHS)
	rhs := g.genValue(f, b, n.RHS)
	rhs = g.emitCast(f, b, rhs, n.RHS.ResolvedType(), n.LHS.ResolvedType())

	value := rhs
	if inner, isCompound := n.Operator.ArithmeticOperation(); isCompound {
		lhsType := g.typeOf(n.LHS.ResolvedType())
		loaded := f.NewReg(lhsType)
		b.Append(&ir.Instr{Op: ir.OpLoad, Result: loaded, Args: []*ir.Value{slot}})

		if inner == ast.BinaryExp {
			value = g.emitPow(f, b, loaded, rhs, n.LHS.ResolvedType())
		} else {
			isFloat := typesystem.IsFloat(n.LHS.ResolvedType())
			signed, _ := typesystem.IntegerSignedness(n.LHS.ResolvedType())

			var irOp ir.Op
			switch inner {
			case ast.BinaryShl:
				irOp = ir.OpShl
			case ast.BinaryShr:
				irOp = ir.OpLShr
				if signed {
					irOp = ir.OpAShr
				}
			default:
				op, ok := arithmeticOp(inner, isFloat, signed)
				if !ok {
					diagnostics.Abort("codegen", "no dispatch entry for compound operator %s", n.Operator)
				}
				irOp = op
			}

			result := f.NewReg(lhsType)
			b.Append(&ir.Instr{Op: irOp, Result: result, Args: []*ir.Value{loaded, rhs}})
			value = result
		}
	}

	b.Append(&ir.Instr{Op: ir.OpStore, Args: []*ir.Value{value, slot}})
	return value
}

func (g *Generator) genCall(f *ir.Func, b *ir.Block, n *ast.ValueCall) *ir.Value {
	fnDecl := calleeDeclaration(n.Callee)
	if fnDecl == nil {
		diagnostics.Abort("codegen", "callee is not a declared function; was type validation run?")
	}
	irFunc, ok := fnDecl.CodegenValue.(*ir.Func)
	if !ok || irFunc == nil {
		diagnostics.Abort("codegen", "function %q has not been emitted", fnDecl.Name)
	}

	fnType, ok := typesystem.AsFunction(fnDecl.ResolvedType())
	if !ok {
		diagnostics.Abort("codegen", "function %q has no function type", fnDecl.Name)
	}

	args := make([]*ir.Value, len(n.Args))
	for i, arg := range n.Args {
		value := g.genValue(f, b, arg)
		args[i] = g.emitCast(f, b, value, arg.ResolvedType(), fnType.ArgTypes[i])
	}

	instr := &ir.Instr{Op: ir.OpCall, Callee: irFunc.Name, Args: args}
	if !irFunc.RetType.IsVoid() {
		instr.Result = f.NewReg(irFunc.RetType)
	}
	b.Append(instr)
	return instr.Result
}

// calleeDeclaration digs the function declaration out of a callee
// expression: a plain symbol or a namespace-qualified chain.
func calleeDeclaration(callee ast.Value) *ast.DeclarationFunction {
	switch n := callee.(type) {
	case *ast.ValueSymbol:
		fn, _ := n.ReferencedDeclaration.(*ast.DeclarationFunction)
		return fn
	case *ast.ValueBinary:
		if n.Operator != ast.BinaryMemberAccess {
			return nil
		}
		if rhs, ok := n.RHS.(*ast.ValueSymbol); ok {
			fn, _ := rhs.ReferencedDeclaration.(*ast.DeclarationFunction)
			return fn
		}
	}
	return nil
}

// emitCast converts value from src to dst using the same mode table the
// validator consulted; an identical conversion is a no-op.
func (g *Generator) emitCast(f *ir.Func, b *ir.Block, value *ir.Value, src, dst ast.Type) *ir.Value {
	if src == nil || dst == nil {
		return value
	}

	srcIR, dstIR := g.typeOf(src), g.typeOf(dst)
	if srcIR.Equal(dstIR) {
		return value
	}

	srcFloat, dstFloat := typesystem.IsFloat(src), typesystem.IsFloat(dst)
	srcSigned, _ := typesystem.IntegerSignedness(src)
	dstSigned, _ := typesystem.IntegerSignedness(dst)

	var op ir.Op
	switch {
	case srcIR.IsInt() && dstIR.IsInt():
		switch {
		case dstIR.Bits < srcIR.Bits:
			op = ir.OpTrunc
		case srcSigned:
			op = ir.OpSExt
		default:
			op = ir.OpZExt
		}
	case srcFloat && dstFloat:
		if dstIR.Bits < srcIR.Bits {
			op = ir.OpFPTrunc
		} else {
			op = ir.OpFPExt
		}
	case srcIR.IsInt() && dstFloat:
		if srcSigned {
			op = ir.OpSIToFP
		} else {
			op = ir.OpUIToFP
		}
	case srcFloat && dstIR.IsInt():
		if dstSigned {
			op = ir.OpFPToSI
		} else {
			op = ir.OpFPToUI
		}
	case srcIR.IsPtr() && dstIR.IsPtr():
		op = ir.OpBitcast
	case srcIR.IsPtr() && dstIR.IsInt():
		op = ir.OpPtrToInt
	case srcIR.IsInt() && dstIR.IsPtr():
		op = ir.OpIntToPtr
	default:
		diagnostics.Abort("codegen", "no cast lowering from %s to %s",
			ast.FormatType(src), ast.FormatType(dst))
	}

	result := f.NewReg(dstIR)
	b.Append(&ir.Instr{Op: op, Result: result, Args: []*ir.Value{value}})
	return result
}

// implicitCast is the cast codegen performs at implicit positions (returns,
// initializers, arguments). Legality was already validated; the lowering is
// shared with explicit casts.
func (g *Generator) implicitCast(f *ir.Func, b *ir.Block, value *ir.Value, src, dst ast.Type) *ir.Value {
	return g.emitCast(f, b, value, src, dst)
}
