package analyzer

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pass"
)

// WellFormedHandler checks the structural invariants later passes rely on:
// no null required children, non-empty names, legal bit widths. It knows
// nothing about types or scopes.
type WellFormedHandler struct {
	pass.BaseHandler
}

func (h *WellFormedHandler) OnLeave(in *pass.Input) pass.Output {
	switch n := in.Node.(type) {
	case *ast.TranslationUnit:
		return h.vectorNotNil(in, "declarations", declsToNodes(n.Declarations))

	case *ast.TypeWithBitWidth:
		return h.checkBitWidth(in, n)
	case *ast.TypeSymbol:
		return h.nameNotEmpty(in, n.Name)
	case *ast.TypeUnary:
		if out := h.childNotNil(in, "operand_type", n.OperandType); out.Status != pass.Continue {
			return out
		}
		if _, isFunc := n.OperandType.(*ast.TypeFunction); isFunc {
			in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
				"unary type cannot have function operand type"))
			return pass.Output{Status: pass.HaltTraversal}
		}
		return pass.Output{}
	case *ast.TypeFunction:
		if out := h.childNotNil(in, "return_type", n.ReturnType); out.Status != pass.Continue {
			return out
		}
		return h.vectorNotNil(in, "arg_types", typesToNodes(n.ArgTypes))
	case *ast.TypeStructured:
		return h.vectorNotNil(in, "members", declsToNodes(n.Members))

	case *ast.ValueLiteralNumber:
		return h.childNotNil(in, "type", n.Type)
	case *ast.ValueSymbol:
		return h.nameNotEmpty(in, n.Name)
	case *ast.ValueUnary:
		return h.childNotNil(in, "operand", n.Operand)
	case *ast.ValueBinary:
		if out := h.childNotNil(in, "lhs", n.LHS); out.Status != pass.Continue {
			return out
		}
		if out := h.childNotNil(in, "rhs", n.RHS); out.Status != pass.Continue {
			return out
		}
		if n.Operator == ast.BinaryMemberAccess {
			if _, ok := n.RHS.(*ast.ValueSymbol); !ok {
				in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
					"member access operator must have a symbol on the right"))
				return pass.Output{Status: pass.HaltTraversal}
			}
		}
		return pass.Output{}
	case *ast.ValueCall:
		if out := h.childNotNil(in, "callee", n.Callee); out.Status != pass.Continue {
			return out
		}
		return h.vectorNotNil(in, "args", valuesToNodes(n.Args))
	case *ast.ValueCast:
		if out := h.childNotNil(in, "value", n.Value); out.Status != pass.Continue {
			return out
		}
		return h.childNotNil(in, "type", n.Type)

	case *ast.StatementValue:
		return h.childNotNil(in, "value", n.Value)
	case *ast.StatementDeclaration:
		if out := h.childNotNil(in, "declaration", n.Declaration); out.Status != pass.Continue {
			return out
		}
		if _, ok := n.Declaration.(*ast.DeclarationVariable); !ok {
			in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
				"only variable declarations may appear as statements"))
			return pass.Output{Status: pass.HaltTraversal}
		}
		return pass.Output{}
	case *ast.StatementBlock:
		return h.vectorNotNil(in, "statements", statementsToNodes(n.Statements))
	case *ast.StatementIf:
		if out := h.childNotNil(in, "condition", n.Condition); out.Status != pass.Continue {
			return out
		}
		if out := h.childNotNil(in, "then", n.Then); out.Status != pass.Continue {
			return out
		}
		if n.Else != nil {
			switch n.Else.(type) {
			case *ast.StatementBlock, *ast.StatementIf:
			default:
				in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
					"if statement else block must be a block or another if"))
				return pass.Output{Status: pass.HaltTraversal}
			}
		}
		return pass.Output{}
	case *ast.StatementWhile:
		if out := h.childNotNil(in, "condition", n.Condition); out.Status != pass.Continue {
			return out
		}
		return h.childNotNil(in, "body", n.Body)

	case *ast.DeclarationVariable:
		return h.nameNotEmpty(in, n.Name)
	case *ast.DeclarationFunction:
		if out := h.nameNotEmpty(in, n.Name); out.Status != pass.Continue {
			return out
		}
		for _, arg := range n.Args {
			if arg == nil {
				return h.emitNullField(in, "args")
			}
		}
		return pass.Output{}
	case *ast.DeclarationTypeAlias:
		if out := h.nameNotEmpty(in, n.Name); out.Status != pass.Continue {
			return out
		}
		return h.childNotNil(in, "type", n.Type)
	case *ast.DeclarationStructuredType:
		if out := h.nameNotEmpty(in, n.Name); out.Status != pass.Continue {
			return out
		}
		if out := h.vectorNotNil(in, "members", declsToNodes(n.Members)); out.Status != pass.Continue {
			return out
		}
		for _, parent := range n.Inherits {
			if parent == nil {
				return h.emitNullField(in, "inherits")
			}
		}
		return pass.Output{}
	case *ast.DeclarationNamespace:
		if out := h.nameNotEmpty(in, n.Name); out.Status != pass.Continue {
			return out
		}
		return h.vectorNotNil(in, "members", declsToNodes(n.Members))
	}

	return pass.Output{}
}

func (h *WellFormedHandler) checkBitWidth(in *pass.Input, n *ast.TypeWithBitWidth) pass.Output {
	switch n.NumericKind {
	case ast.NumericSignedInt, ast.NumericUnsignedInt:
		switch n.BitWidth {
		case 8, 16, 32, 64:
			return pass.Output{}
		}
		err := diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
			fmt.Sprintf("invalid bit width for integer: %d", n.BitWidth))
		err.WithNote("valid are 8, 16, 32, and 64")
		in.Emit(err)
		return pass.Output{Status: pass.HaltTraversal}
	case ast.NumericFloat:
		switch n.BitWidth {
		case 32, 64:
			return pass.Output{}
		}
		err := diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
			fmt.Sprintf("invalid bit width for float: %d", n.BitWidth))
		err.WithNote("valid are 32 and 64")
		in.Emit(err)
		return pass.Output{Status: pass.HaltTraversal}
	}
	diagnostics.Abort("well-formed", "unsupported numeric kind %d", n.NumericKind)
	return pass.Output{}
}

func (h *WellFormedHandler) childNotNil(in *pass.Input, field string, child ast.Node) pass.Output {
	if child == nil || isNilChild(child) {
		return h.emitNullField(in, field)
	}
	return pass.Output{}
}

func (h *WellFormedHandler) vectorNotNil(in *pass.Input, field string, children []ast.Node) pass.Output {
	for _, child := range children {
		if child == nil || isNilChild(child) {
			return h.emitNullField(in, field)
		}
	}
	return pass.Output{}
}

func (h *WellFormedHandler) emitNullField(in *pass.Input, field string) pass.Output {
	in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
		fmt.Sprintf("%s %q must not be null", in.Node.Kind(), field)))
	return pass.Output{Status: pass.HaltTraversal}
}

func (h *WellFormedHandler) nameNotEmpty(in *pass.Input, name string) pass.Output {
	if name == "" {
		in.Emit(diagnostics.NewError(diagnostics.ErrISY000, in.Node.GetToken(),
			fmt.Sprintf("%s \"name\" must not be empty", in.Node.Kind())))
		return pass.Output{Status: pass.HaltTraversal}
	}
	return pass.Output{}
}
