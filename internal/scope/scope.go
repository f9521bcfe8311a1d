// Package scope implements lexical scopes: name to declaration maps chained
// by parent pointers. Scopes are owned by their scope-defining node (a block
// or a translation unit) and referenced by children through non-owning
// parent handles.
package scope

import (
	"github.com/forge-lang/forge/internal/ast"
)

// Kind describes what construct owns a scope.
type Kind int

const (
	KindTranslationUnit Kind = iota
	KindFunctionArgs
	KindBlock
)

// ShadowKind classifies what an added name collides with.
type ShadowKind int

const (
	ShadowNone        ShadowKind = iota
	ShadowSameScope              // redeclaration within one scope
	ShadowFunctionArg            // hides a function argument
	ShadowOuter                  // hides a name from an enclosing scope
)

// AddResult reports the outcome of Scope.Add. Ok is false only for
// same-scope redeclarations; the previous entry is kept in that case.
type AddResult struct {
	Ok        bool
	Shadowing ShadowKind
	Previous  ast.Declaration
}

// Scope maps names to declarations.
type Scope struct {
	kind   Kind
	names  map[string]ast.Declaration
	parent *Scope
}

func New(kind Kind) *Scope {
	return &Scope{kind: kind, names: make(map[string]ast.Declaration)}
}

func NewEnclosed(parent *Scope, kind Kind) *Scope {
	s := New(kind)
	s.parent = parent
	return s
}

func (s *Scope) Kind() Kind { return s.kind }

func (s *Scope) Parent() *Scope { return s.parent }

func (s *Scope) SetParent(parent *Scope) { s.parent = parent }

// Add records name -> decl in this scope, detecting collisions. A collision
// in the same scope keeps the original declaration and reports !Ok; a
// collision with an ancestor scope succeeds but reports the shadowing kind.
func (s *Scope) Add(name string, decl ast.Declaration) AddResult {
	if prev, ok := s.names[name]; ok {
		return AddResult{Ok: false, Shadowing: ShadowSameScope, Previous: prev}
	}

	result := AddResult{Ok: true}
	for ancestor := s.parent; ancestor != nil; ancestor = ancestor.parent {
		if prev, ok := ancestor.names[name]; ok {
			result.Previous = prev
			if ancestor.kind == KindFunctionArgs {
				result.Shadowing = ShadowFunctionArg
			} else {
				result.Shadowing = ShadowOuter
			}
			break
		}
	}

	s.names[name] = decl
	return result
}

// Get searches this scope, then the parent chain.
func (s *Scope) Get(name string) (ast.Declaration, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if decl, ok := cur.names[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

// GetLocal searches only this scope.
func (s *Scope) GetLocal(name string) (ast.Declaration, bool) {
	decl, ok := s.names[name]
	return decl, ok
}

// Lookup implements ast.SymbolScope.
func (s *Scope) Lookup(name string) ast.Declaration {
	decl, _ := s.Get(name)
	return decl
}

// Names returns the number of names defined directly in this scope.
func (s *Scope) Names() int { return len(s.names) }
