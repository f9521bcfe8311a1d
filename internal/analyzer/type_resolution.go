package analyzer

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pass"
	"github.com/forge-lang/forge/internal/typesystem"
)

// TypeResolutionHandler computes resolved types bottom-up. Every value and
// declaration leaves the pass with a freshly-cloned type annotation, except
// where an earlier diagnostic already explains the gap.
type TypeResolutionHandler struct {
	pass.BaseHandler
}

func (h *TypeResolutionHandler) OnLeave(in *pass.Input) pass.Output {
	switch n := in.Node.(type) {
	case *ast.ValueLiteralBool:
		n.SetResolvedType(&ast.TypeBasic{Token: n.Token, BasicKind: ast.TypeBasicBool})

	case *ast.ValueLiteralNumber:
		if n.Type == nil {
			diagnostics.Abort("type-resolution",
				"value literal number has no type; was the well-formed pass run?")
		}
		n.SetResolvedType(ast.CloneType(n.Type))

	case *ast.ValueSymbol:
		if n.ReferencedDeclaration != nil && n.ReferencedDeclaration.ResolvedType() != nil {
			n.SetResolvedType(ast.CloneType(n.ReferencedDeclaration.ResolvedType()))
		}

	case *ast.ValueUnary:
		h.resolveUnary(in, n)

	case *ast.ValueBinary:
		h.resolveBinary(in, n)

	case *ast.ValueCall:
		if n.Callee == nil || n.Callee.ResolvedType() == nil {
			break
		}
		if fnType, ok := typesystem.AsFunction(n.Callee.ResolvedType()); ok {
			n.SetResolvedType(ast.CloneType(fnType.ReturnType))
		}

	case *ast.ValueCast:
		n.SetResolvedType(ast.CloneType(n.Type))

	case *ast.DeclarationVariable:
		h.resolveVariable(in, n)

	case *ast.DeclarationFunction:
		h.resolveFunction(in, n)

	case *ast.DeclarationTypeAlias:
		n.SetResolvedType(ast.CloneType(n.Type))

	case *ast.DeclarationStructuredType:
		h.resolveStructuredType(in, n)
	}

	return pass.Output{}
}

func (h *TypeResolutionHandler) resolveUnary(in *pass.Input, n *ast.ValueUnary) {
	operandType := n.Operand.ResolvedType()

	switch n.Operator {
	case ast.UnaryBoolNot:
		n.SetResolvedType(&ast.TypeBasic{Token: n.Token, BasicKind: ast.TypeBasicBool})
	case ast.UnaryBitNot, ast.UnaryPos, ast.UnaryNeg:
		n.SetResolvedType(ast.CloneType(operandType))
	case ast.UnaryDeref:
		if operandType != nil {
			if elem, ok := typesystem.PointerElement(operandType); ok {
				n.SetResolvedType(ast.CloneType(elem))
			}
		}
	case ast.UnaryGetAddr:
		if operandType != nil {
			n.SetResolvedType(&ast.TypeUnary{
				Token:       n.Token,
				UnaryKind:   ast.TypeUnaryPointer,
				OperandType: ast.CloneType(operandType),
			})
		}
	}
}

func (h *TypeResolutionHandler) resolveBinary(in *pass.Input, n *ast.ValueBinary) {
	switch {
	case n.Operator == ast.BinaryBoolAnd || n.Operator == ast.BinaryBoolOr || n.Operator.IsComparison():
		n.SetResolvedType(&ast.TypeBasic{Token: n.Token, BasicKind: ast.TypeBasicBool})

	case n.Operator == ast.BinaryAdd || n.Operator == ast.BinarySub ||
		n.Operator == ast.BinaryMul || n.Operator == ast.BinaryDiv ||
		n.Operator == ast.BinaryMod ||
		n.Operator == ast.BinaryBitAnd || n.Operator == ast.BinaryBitOr ||
		n.Operator == ast.BinaryBitXor:
		lhsType, rhsType := n.LHS.ResolvedType(), n.RHS.ResolvedType()
		if lhsType == nil || rhsType == nil {
			break
		}
		result, lossy := typesystem.ArithmeticContainingType(in.Ctx.Target, lhsType, rhsType)
		if result == nil {
			// Operands are not numeric; validation reports it and codegen
			// still needs a best guess.
			n.SetResolvedType(ast.CloneType(lhsType))
			break
		}
		if lossy {
			in.Emit(diagnostics.NewWarning(diagnostics.WarnWTY001, n.Token,
				fmt.Sprintf("mixing %s and %s loses precision in 64 bits",
					ast.FormatType(lhsType), ast.FormatType(rhsType))))
		}
		n.SetResolvedType(result)

	case n.Operator == ast.BinaryMemberAccess:
		h.resolveMemberAccess(in, n)

	case n.Operator.IsAssignment() || n.Operator == ast.BinaryExp ||
		n.Operator == ast.BinaryShl || n.Operator == ast.BinaryShr:
		n.SetResolvedType(ast.CloneType(n.LHS.ResolvedType()))
	}
}

// resolveMemberAccess handles qualified names. The left side is either a
// namespace reference, resolved against the namespace's members, or a
// structured value, resolved against the record's member set.
func (h *TypeResolutionHandler) resolveMemberAccess(in *pass.Input, n *ast.ValueBinary) {
	rhs, ok := n.RHS.(*ast.ValueSymbol)
	if !ok {
		diagnostics.Abort("type-resolution",
			"member access rhs is not a value symbol; was the well-formed pass run?")
	}

	if ns, ok := namespaceOf(n.LHS); ok {
		for _, member := range ns.Members {
			if member != nil && member.DeclName() == rhs.Name {
				rhs.ReferencedDeclaration = member
				if member.ResolvedType() != nil {
					resolved := ast.CloneType(member.ResolvedType())
					rhs.SetResolvedType(ast.CloneType(member.ResolvedType()))
					n.SetResolvedType(resolved)
				}
				return
			}
		}
		in.Emit(diagnostics.NewError(diagnostics.ErrETY011, rhs.Token,
			fmt.Sprintf("namespace %q has no member named %q", ns.Name, rhs.Name)))
		return
	}

	lhsType := n.LHS.ResolvedType()
	if lhsType == nil {
		return
	}

	structured, ok := typesystem.AsStructured(lhsType)
	if !ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY004, n.LHS.GetToken(),
			"expected structured type"))
		return
	}

	for _, member := range structured.Members {
		if member != nil && member.DeclName() == rhs.Name {
			rhs.ReferencedDeclaration = member
			resolved := ast.CloneType(member.ResolvedType())
			rhs.SetResolvedType(ast.CloneType(member.ResolvedType()))
			n.SetResolvedType(resolved)
			return
		}
	}

	in.Emit(diagnostics.NewError(diagnostics.ErrETY011, rhs.Token,
		fmt.Sprintf("no member named %q", rhs.Name)))
}

// namespaceOf unwraps a value that names a namespace, directly or through
// nested member access (a.b.c).
func namespaceOf(v ast.Value) (*ast.DeclarationNamespace, bool) {
	switch vv := v.(type) {
	case *ast.ValueSymbol:
		ns, ok := vv.ReferencedDeclaration.(*ast.DeclarationNamespace)
		return ns, ok && ns != nil
	case *ast.ValueBinary:
		if vv.Operator != ast.BinaryMemberAccess {
			return nil, false
		}
		if rhs, ok := vv.RHS.(*ast.ValueSymbol); ok {
			ns, ok := rhs.ReferencedDeclaration.(*ast.DeclarationNamespace)
			return ns, ok && ns != nil
		}
	}
	return nil, false
}

func (h *TypeResolutionHandler) resolveVariable(in *pass.Input, n *ast.DeclarationVariable) {
	if n.Type != nil {
		n.SetResolvedType(ast.CloneType(n.Type))
		return
	}
	if n.InitialValue != nil && n.InitialValue.ResolvedType() != nil {
		n.SetResolvedType(ast.CloneType(n.InitialValue.ResolvedType()))
		return
	}
	if n.ResolvedType() == nil {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY001, n.Token,
			"neither a type nor an initial value is provided"))
	}
}

func (h *TypeResolutionHandler) resolveFunction(in *pass.Input, n *ast.DeclarationFunction) {
	if n.ReturnType == nil {
		in.Emit(diagnostics.NewError(diagnostics.ErrETY001, n.Token,
			"function return type is not provided"))
		return
	}

	resolved := &ast.TypeFunction{
		Token:      n.Token,
		ReturnType: ast.CloneType(n.ReturnType),
	}

	for _, arg := range n.Args {
		if arg == nil {
			diagnostics.Abort("type-resolution",
				"function argument is null; was the well-formed pass run?")
		}
		argType := ast.CloneType(arg.ResolvedType())
		if argType == nil {
			in.Emit(diagnostics.NewError(diagnostics.ErrETY001, arg.Token,
				"function argument type cannot be resolved"))
		}
		resolved.ArgTypes = append(resolved.ArgTypes, argType)
	}

	n.SetResolvedType(resolved)
}

// resolveStructuredType merges inherited member sets with the directly
// declared members. Sibling parents are unordered; any duplicate name is an
// error.
func (h *TypeResolutionHandler) resolveStructuredType(in *pass.Input, n *ast.DeclarationStructuredType) {
	seen := make(map[string]bool)
	var members []ast.Declaration

	for _, parent := range n.Inherits {
		if parent == nil {
			continue
		}
		parentDecl, ok := parent.ReferencedDeclaration.(*ast.DeclarationStructuredType)
		if !ok || parentDecl == nil {
			continue
		}
		parentType, ok := typesystem.AsStructured(parentDecl.ResolvedType())
		if !ok {
			continue
		}
		for _, member := range parentType.Members {
			if member == nil {
				continue
			}
			if seen[member.DeclName()] {
				in.Emit(diagnostics.NewError(diagnostics.ErrESC002, parent.Token,
					fmt.Sprintf("member %q is inherited more than once", member.DeclName())))
				continue
			}
			seen[member.DeclName()] = true
			members = append(members, ast.CloneMember(member))
		}
	}

	for _, member := range n.Members {
		if member == nil {
			continue
		}
		if seen[member.DeclName()] {
			in.Emit(diagnostics.NewError(diagnostics.ErrESC002, member.GetToken(),
				fmt.Sprintf("member %q shadows an inherited member", member.DeclName())))
			continue
		}
		seen[member.DeclName()] = true
		members = append(members, ast.CloneMember(member))
	}

	n.SetResolvedType(&ast.TypeStructured{Token: n.Token, Members: members})
}
