package analyzer

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pass"
	"github.com/forge-lang/forge/internal/scope"
)

// SymbolResolutionHandler binds type and value symbols to declarations in
// two sub-phases driven by the walk: declarations are collected into scopes
// on enter, references are resolved against the scope chain on leave.
//
// Qualified names (member access on namespaces and structured types) need
// type information and are resolved by the type resolution pass instead.
type SymbolResolutionHandler struct {
	pass.BaseHandler
	stack []*scope.Scope
}

func NewSymbolResolutionHandler() *SymbolResolutionHandler {
	return &SymbolResolutionHandler{}
}

func (h *SymbolResolutionHandler) current() *scope.Scope {
	if len(h.stack) == 0 {
		return nil
	}
	return h.stack[len(h.stack)-1]
}

func (h *SymbolResolutionHandler) OnEnter(in *pass.Input) pass.Output {
	switch n := in.Node.(type) {
	case *ast.TranslationUnit:
		s, ok := n.Scope.(*scope.Scope)
		if !ok || s == nil {
			s = scope.New(scope.KindTranslationUnit)
			n.Scope = s
		}
		h.stack = append(h.stack, s)

	case *ast.StatementBlock:
		parentScope := h.current()

		// The outermost block of a function chains through a synthetic
		// scope holding the argument declarations.
		if fn, ok := in.Parent().(*ast.DeclarationFunction); ok {
			args := scope.NewEnclosed(parentScope, scope.KindFunctionArgs)
			for _, arg := range fn.Args {
				if arg == nil {
					continue
				}
				h.add(in, args, arg.Name, arg)
			}
			parentScope = args
		}

		s, ok := n.Scope.(*scope.Scope)
		if !ok || s == nil {
			s = scope.NewEnclosed(parentScope, scope.KindBlock)
			n.Scope = s
		} else {
			s.SetParent(parentScope)
		}
		h.stack = append(h.stack, s)

	case ast.Declaration:
		switch in.Parent().(type) {
		case *ast.TranslationUnit, *ast.StatementDeclaration:
			if cur := h.current(); cur != nil {
				h.add(in, cur, n.DeclName(), n)
			}
		}
	}

	return pass.Output{}
}

func (h *SymbolResolutionHandler) OnLeave(in *pass.Input) pass.Output {
	switch n := in.Node.(type) {
	case *ast.TranslationUnit, *ast.StatementBlock:
		h.stack = h.stack[:len(h.stack)-1]

	case *ast.TypeSymbol:
		if n.ReferencedDeclaration != nil {
			break
		}
		h.resolve(in, n.Name, func(decl ast.Declaration) { n.ReferencedDeclaration = decl })

	case *ast.ValueSymbol:
		if n.ReferencedDeclaration != nil {
			break
		}
		// The right side of a member access is not a lexical reference; it
		// names a member and is resolved with the owner's type.
		if parent, ok := in.Parent().(*ast.ValueBinary); ok &&
			parent.Operator == ast.BinaryMemberAccess && parent.RHS == ast.Value(n) {
			break
		}
		h.resolve(in, n.Name, func(decl ast.Declaration) { n.ReferencedDeclaration = decl })
	}

	return pass.Output{}
}

// add records name -> decl, reporting redeclarations and shadowing. An
// entry that already points at decl is left alone so a second resolution
// run stays silent.
func (h *SymbolResolutionHandler) add(in *pass.Input, s *scope.Scope, name string, decl ast.Declaration) {
	if prev, ok := s.GetLocal(name); ok && prev == decl {
		return
	}

	result := s.Add(name, decl)
	if !result.Ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrESC003, decl.GetToken(),
			fmt.Sprintf("%q is already declared in this scope", name)))
		return
	}

	if result.Shadowing == scope.ShadowFunctionArg {
		in.Emit(diagnostics.NewWarning(diagnostics.WarnWSC001, decl.GetToken(),
			fmt.Sprintf("%q shadows a function argument", name)))
	}

	decl.SetScopeBackRef(s)
}

func (h *SymbolResolutionHandler) resolve(in *pass.Input, name string, bind func(ast.Declaration)) {
	cur := h.current()
	if cur == nil {
		return
	}
	decl, ok := cur.Get(name)
	if !ok {
		in.Emit(diagnostics.NewError(diagnostics.ErrESC001, in.Node.GetToken(),
			fmt.Sprintf("symbol %q is not declared", name)))
		return
	}
	bind(decl)
}
