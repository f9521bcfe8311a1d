package analyzer

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pass"
	"github.com/forge-lang/forge/internal/token"
	"github.com/forge-lang/forge/internal/typesystem"
)

// TypeValidationHandler enforces the operator, return, argument and cast
// typing rules over the resolved tree. Expressions whose types are missing
// because of earlier diagnostics are skipped, not re-reported.
type TypeValidationHandler struct {
	pass.BaseHandler
}

func (h *TypeValidationHandler) OnLeave(in *pass.Input) pass.Output {
	switch n := in.Node.(type) {
	case *ast.TypeUnary:
		if n.UnaryKind == ast.TypeUnaryPointer {
			if typesystem.IsVoid(n.OperandType) {
				in.Emit(diagnostics.NewError(diagnostics.ErrETY002, n.OperandType.GetToken(),
					"pointers to void are not allowed"))
			} else if _, isFunc := n.OperandType.(*ast.TypeFunction); isFunc {
				in.Emit(diagnostics.NewError(diagnostics.ErrETY003, n.OperandType.GetToken(),
					"pointers to functions are not allowed"))
			}
		} else {
			diagnostics.Abort("type-validation", "unexpected unary type kind %d", n.UnaryKind)
		}

	case *ast.TypeFunction:
		for _, argType := range n.ArgTypes {
			if argType != nil && typesystem.IsVoid(argType) {
				h.unexpectedType(in, argType.GetToken(), "non-void type")
			}
		}

	case *ast.ValueSymbol:
		h.validateSymbol(in, n)

	case *ast.ValueUnary:
		h.validateUnary(in, n)

	case *ast.ValueBinary:
		h.validateBinary(in, n)

	case *ast.ValueCall:
		h.validateCall(in, n)

	case *ast.ValueCast:
		if n.Value.ResolvedType() == nil {
			break
		}
		if typesystem.GetCastingMode(in.Ctx.Target, n.Value.ResolvedType(), n.Type) == typesystem.CastingModeIllegal {
			in.Emit(diagnostics.NewError(diagnostics.ErrETY006, n.Token,
				fmt.Sprintf("cannot cast from %s to %s",
					ast.FormatType(n.Value.ResolvedType()), ast.FormatType(n.Type))))
		}

	case *ast.StatementBasic:
		h.validateStatementBasic(in, n)

	case *ast.StatementValue:
		h.validateStatementValue(in, n)

	case *ast.StatementIf:
		if ct := n.Condition.ResolvedType(); ct != nil && !typesystem.IsBool(ct) {
			h.unexpectedType(in, n.Condition.GetToken(), "bool")
		}

	case *ast.StatementWhile:
		if ct := n.Condition.ResolvedType(); ct != nil && !typesystem.IsBool(ct) {
			h.unexpectedType(in, n.Condition.GetToken(), "bool")
		}

	case *ast.DeclarationVariable:
		h.validateVariable(in, n)

	case *ast.DeclarationStructuredType:
		for _, member := range n.Members {
			if _, isNamespace := member.(*ast.DeclarationNamespace); isNamespace {
				h.unexpectedType(in, member.GetToken(), "non-namespace member")
			}
		}
	}

	return pass.Output{}
}

func (h *TypeValidationHandler) unexpectedType(in *pass.Input, tok token.Token, expected string) {
	in.Emit(diagnostics.NewError(diagnostics.ErrETY004, tok,
		fmt.Sprintf("expected %s", expected)))
}

func (h *TypeValidationHandler) validateSymbol(in *pass.Input, n *ast.ValueSymbol) {
	// Either side of a member access follows qualified-name rules instead.
	if parent, ok := in.Parent().(*ast.ValueBinary); ok && parent.Operator == ast.BinaryMemberAccess {
		return
	}

	if _, isNamespace := n.ReferencedDeclaration.(*ast.DeclarationNamespace); isNamespace {
		h.unexpectedType(in, n.Token, "a value, not a namespace")
		return
	}

	if n.ResolvedType() != nil && typesystem.IsVoid(n.ResolvedType()) {
		h.unexpectedType(in, n.Token, "non-void type")
	}
}

func (h *TypeValidationHandler) validateUnary(in *pass.Input, n *ast.ValueUnary) {
	operandType := n.Operand.ResolvedType()

	switch n.Operator {
	case ast.UnaryBoolNot:
		if operandType != nil && !typesystem.IsBool(operandType) {
			h.unexpectedType(in, n.Operand.GetToken(), "bool")
		}

	case ast.UnaryBitNot:
		if operandType != nil && !typesystem.IsInteger(operandType) {
			h.unexpectedType(in, n.Operand.GetToken(), "integer type")
		}

	case ast.UnaryPos:
		if operandType != nil && !typesystem.IsNumber(operandType) {
			h.unexpectedType(in, n.Operand.GetToken(), "numeric type")
		}

	case ast.UnaryNeg:
		if operandType != nil && !typesystem.IsNumber(operandType) {
			h.unexpectedType(in, n.Operand.GetToken(), "numeric type")
		}
		if signed, ok := typesystem.IntegerSignedness(operandType); ok && !signed {
			in.Emit(diagnostics.NewWarning(diagnostics.ErrETY004, n.Operand.GetToken(),
				"expected signed integer type"))
		}

	case ast.UnaryDeref:
		if operandType != nil && !typesystem.IsPointer(operandType) {
			h.unexpectedType(in, n.Operand.GetToken(), "pointer type")
		}

	case ast.UnaryGetAddr:
		if !ast.IsLValue(n.Operand) {
			h.unexpectedType(in, n.Operand.GetToken(), "l-value reference")
		}
	}
}

func (h *TypeValidationHandler) validateBinary(in *pass.Input, n *ast.ValueBinary) {
	lhsType, rhsType := n.LHS.ResolvedType(), n.RHS.ResolvedType()

	switch {
	case n.Operator == ast.BinaryBoolAnd || n.Operator == ast.BinaryBoolOr:
		if lhsType != nil && !typesystem.IsBool(lhsType) {
			h.unexpectedType(in, n.LHS.GetToken(), "bool")
		}
		if rhsType != nil && !typesystem.IsBool(rhsType) {
			h.unexpectedType(in, n.RHS.GetToken(), "bool")
		}

	case n.Operator == ast.BinaryBitAnd || n.Operator == ast.BinaryBitOr ||
		n.Operator == ast.BinaryBitXor || n.Operator == ast.BinaryShl ||
		n.Operator == ast.BinaryShr:
		if lhsType != nil && !typesystem.IsInteger(lhsType) {
			h.unexpectedType(in, n.LHS.GetToken(), "integer type")
		}
		if rhsType != nil && !typesystem.IsInteger(rhsType) {
			h.unexpectedType(in, n.RHS.GetToken(), "integer type")
		}

	case n.Operator == ast.BinaryAdd || n.Operator == ast.BinarySub ||
		n.Operator == ast.BinaryMul || n.Operator == ast.BinaryDiv ||
		n.Operator == ast.BinaryMod || n.Operator == ast.BinaryExp ||
		n.Operator.IsComparison():
		if lhsType != nil && !typesystem.IsNumber(lhsType) {
			h.unexpectedType(in, n.LHS.GetToken(), "numeric type")
		}
		if rhsType != nil && !typesystem.IsNumber(rhsType) {
			h.unexpectedType(in, n.RHS.GetToken(), "numeric type")
		}

	case n.Operator.IsAssignment():
		if !ast.IsLValue(n.LHS) {
			h.unexpectedType(in, n.LHS.GetToken(), "l-value reference")
			return
		}
		if lhsType == nil || rhsType == nil {
			return
		}
		if typesystem.GetCastingMode(in.Ctx.Target, rhsType, lhsType) != typesystem.CastingModeImplicit {
			h.implicitCastError(in, n.RHS.GetToken(), rhsType, lhsType)
		}

	case n.Operator == ast.BinaryMemberAccess:
		// Checked during type resolution.
	}
}

func (h *TypeValidationHandler) validateCall(in *pass.Input, n *ast.ValueCall) {
	calleeType := n.Callee.ResolvedType()
	if calleeType == nil {
		return
	}

	fnType, ok := typesystem.AsFunction(calleeType)
	if !ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY008, n.Callee.GetToken(),
			fmt.Sprintf("cannot call a value of type %s", ast.FormatType(calleeType))))
		return
	}

	if len(n.Args) != len(fnType.ArgTypes) {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY007, n.Token,
			fmt.Sprintf("expected %d arguments, got %d", len(fnType.ArgTypes), len(n.Args))))
		return
	}

	for i, arg := range n.Args {
		if arg.ResolvedType() == nil || fnType.ArgTypes[i] == nil {
			continue
		}
		if typesystem.GetCastingMode(in.Ctx.Target, arg.ResolvedType(), fnType.ArgTypes[i]) != typesystem.CastingModeImplicit {
			h.implicitCastError(in, arg.GetToken(), arg.ResolvedType(), fnType.ArgTypes[i])
		}
	}
}

func (h *TypeValidationHandler) validateStatementBasic(in *pass.Input, n *ast.StatementBasic) {
	if n.BasicKind != ast.StatementReturnVoid {
		return
	}

	fn, ok := pass.Nearest[*ast.DeclarationFunction](in)
	if !ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrISY000, n.Token,
			"return statement cannot be used outside of the context of a function declaration"))
		return
	}

	if fn.ReturnType != nil && !typesystem.IsVoid(fn.ReturnType) {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY009, n.Token,
			"non-void function must return a value"))
	}
}

func (h *TypeValidationHandler) validateStatementValue(in *pass.Input, n *ast.StatementValue) {
	if n.ValueKind != ast.StatementReturn {
		return
	}

	fn, ok := pass.Nearest[*ast.DeclarationFunction](in)
	if !ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrISY000, n.Token,
			"return statement cannot be used outside of the context of a function declaration"))
		return
	}

	if fn.ReturnType == nil {
		return
	}

	if typesystem.IsVoid(fn.ReturnType) {
		// The value itself is deliberately not checked further.
		in.Emit(diagnostics.NewError(diagnostics.ErrETY010, n.Token,
			"void function cannot return a value"))
		return
	}

	if n.Value.ResolvedType() == nil {
		return
	}
	if typesystem.GetCastingMode(in.Ctx.Target, n.Value.ResolvedType(), fn.ReturnType) != typesystem.CastingModeImplicit {
		h.implicitCastError(in, n.Value.GetToken(), n.Value.ResolvedType(), fn.ReturnType)
	}
}

func (h *TypeValidationHandler) validateVariable(in *pass.Input, n *ast.DeclarationVariable) {
	if n.Type != nil && typesystem.IsVoid(n.Type) {
		h.unexpectedType(in, n.Type.GetToken(), "non-void type")
	}

	// Functions are only first-class as callees.
	if n.Type != nil && typesystem.IsFunction(n.Type) {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY003, n.Type.GetToken(),
			"variables and arguments cannot have function types"))
	}

	if n.InitialValue == nil || n.InitialValue.ResolvedType() == nil || n.ResolvedType() == nil {
		return
	}
	if typesystem.GetCastingMode(in.Ctx.Target, n.InitialValue.ResolvedType(), n.ResolvedType()) != typesystem.CastingModeImplicit {
		h.implicitCastError(in, n.InitialValue.GetToken(), n.InitialValue.ResolvedType(), n.ResolvedType())
	}
}

func (h *TypeValidationHandler) implicitCastError(in *pass.Input, tok token.Token, from, to ast.Type) {
	err := diagnostics.NewError(diagnostics.ErrETY005, tok,
		fmt.Sprintf("unable to implicitly cast from %s to %s",
			ast.FormatType(from), ast.FormatType(to)))
	err.WithSuggestion("use `as` to cast between types")
	in.Emit(err)
}
