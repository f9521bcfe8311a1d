package pass

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/pipeline"
)

type walker struct {
	pass  *Pass
	ctx   *pipeline.PipelineContext
	stack []ast.Node
}

// walk visits node: OnEnter for each handler in registration order, then
// children in declared field order, then OnLeave for each handler.
func (w *walker) walk(node ast.Node) Status {
	if node == nil || isNilNode(node) {
		return Continue
	}

	in := &Input{Node: node, Stack: w.stack, Ctx: w.ctx}

	skipChildren := false
	for _, h := range w.pass.handlers {
		switch h.OnEnter(in).Status {
		case SkipChildren:
			skipChildren = true
		case HaltTraversal:
			return HaltTraversal
		}
	}

	if !skipChildren {
		w.stack = append(w.stack, node)
		halted := false
		for _, child := range children(node) {
			if w.walk(child) == HaltTraversal {
				halted = true
				break
			}
		}
		w.stack = w.stack[:len(w.stack)-1]
		if halted {
			return HaltTraversal
		}
	}

	for _, h := range w.pass.handlers {
		if h.OnLeave(in).Status == HaltTraversal {
			return HaltTraversal
		}
	}

	return Continue
}

// children returns node's child nodes in the declared order of the node's
// fields. Nil entries are preserved so that positions stay stable; walk
// skips them.
func children(node ast.Node) []ast.Node {
	switch n := node.(type) {
	case *ast.TranslationUnit:
		out := make([]ast.Node, 0, len(n.Declarations))
		for _, d := range n.Declarations {
			out = append(out, d)
		}
		return out

	// Types
	case *ast.TypeBasic, *ast.TypeWithBitWidth, *ast.TypeSymbol:
		return nil
	case *ast.TypeUnary:
		return []ast.Node{n.OperandType}
	case *ast.TypeFunction:
		out := []ast.Node{n.ReturnType}
		for _, a := range n.ArgTypes {
			out = append(out, a)
		}
		return out
	case *ast.TypeStructured:
		out := make([]ast.Node, 0, len(n.Members))
		for _, m := range n.Members {
			out = append(out, m)
		}
		return out

	// Values
	case *ast.ValueLiteralBool:
		return nil
	case *ast.ValueLiteralNumber:
		return []ast.Node{n.Type}
	case *ast.ValueSymbol:
		return nil
	case *ast.ValueUnary:
		return []ast.Node{n.Operand}
	case *ast.ValueBinary:
		return []ast.Node{n.LHS, n.RHS}
	case *ast.ValueCall:
		out := []ast.Node{n.Callee}
		for _, a := range n.Args {
			out = append(out, a)
		}
		return out
	case *ast.ValueCast:
		return []ast.Node{n.Value, n.Type}

	// Statements
	case *ast.StatementBasic:
		return nil
	case *ast.StatementValue:
		return []ast.Node{n.Value}
	case *ast.StatementDeclaration:
		return []ast.Node{n.Declaration}
	case *ast.StatementBlock:
		out := make([]ast.Node, 0, len(n.Statements))
		for _, s := range n.Statements {
			out = append(out, s)
		}
		return out
	case *ast.StatementIf:
		return []ast.Node{n.Condition, n.Then, n.Else}
	case *ast.StatementWhile:
		return []ast.Node{n.Condition, n.Body}

	// Declarations
	case *ast.DeclarationVariable:
		return []ast.Node{n.Type, n.InitialValue}
	case *ast.DeclarationFunction:
		out := make([]ast.Node, 0, len(n.Args)+2)
		for _, a := range n.Args {
			out = append(out, a)
		}
		out = append(out, n.ReturnType, n.Body)
		return out
	case *ast.DeclarationTypeAlias:
		return []ast.Node{n.Type}
	case *ast.DeclarationStructuredType:
		out := make([]ast.Node, 0, len(n.Inherits)+len(n.Members))
		for _, p := range n.Inherits {
			out = append(out, p)
		}
		for _, m := range n.Members {
			out = append(out, m)
		}
		return out
	case *ast.DeclarationNamespace:
		out := make([]ast.Node, 0, len(n.Members))
		for _, m := range n.Members {
			out = append(out, m)
		}
		return out
	}

	return nil
}

// isNilNode detects typed-nil interface values, which occur for optional
// children like a missing else branch.
func isNilNode(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.TranslationUnit:
		return n == nil
	case *ast.TypeBasic:
		return n == nil
	case *ast.TypeWithBitWidth:
		return n == nil
	case *ast.TypeSymbol:
		return n == nil
	case *ast.TypeUnary:
		return n == nil
	case *ast.TypeFunction:
		return n == nil
	case *ast.TypeStructured:
		return n == nil
	case *ast.ValueLiteralBool:
		return n == nil
	case *ast.ValueLiteralNumber:
		return n == nil
	case *ast.ValueSymbol:
		return n == nil
	case *ast.ValueUnary:
		return n == nil
	case *ast.ValueBinary:
		return n == nil
	case *ast.ValueCall:
		return n == nil
	case *ast.ValueCast:
		return n == nil
	case *ast.StatementBasic:
		return n == nil
	case *ast.StatementValue:
		return n == nil
	case *ast.StatementDeclaration:
		return n == nil
	case *ast.StatementBlock:
		return n == nil
	case *ast.StatementIf:
		return n == nil
	case *ast.StatementWhile:
		return n == nil
	case *ast.DeclarationVariable:
		return n == nil
	case *ast.DeclarationFunction:
		return n == nil
	case *ast.DeclarationTypeAlias:
		return n == nil
	case *ast.DeclarationStructuredType:
		return n == nil
	case *ast.DeclarationNamespace:
		return n == nil
	}
	return false
}

// BaseHandler is a no-op Handler for embedding; passes override only the
// callback they need.
type BaseHandler struct{}

func (BaseHandler) OnEnter(*Input) Output { return Output{} }
func (BaseHandler) OnLeave(*Input) Output { return Output{} }

var _ Handler = BaseHandler{}
