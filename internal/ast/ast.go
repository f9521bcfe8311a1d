package ast

import (
	"github.com/forge-lang/forge/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
	Kind() string
}

// Type is a Node that represents a Forge type.
type Type interface {
	Node
	typeNode()
	ConstQualified() bool
}

// Value is a Node that represents an expression.
type Value interface {
	Node
	valueNode()
	ResolvedType() Type
	SetResolvedType(Type)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Declaration is a Node that declares a named entity.
type Declaration interface {
	Node
	declarationNode()
	DeclName() string
	ResolvedType() Type
	SetResolvedType(Type)
	ScopeBackRef() SymbolScope
	SetScopeBackRef(SymbolScope)
}

// SymbolScope is the lookup surface of a lexical scope as seen from the
// tree. The concrete implementation lives in the scope package; blocks and
// translation units hold it through this interface so the tree stays the
// single owner of its scopes.
type SymbolScope interface {
	Lookup(name string) Declaration
}

// typedNode carries the resolved type annotation shared by all values and
// declarations. Resolution attaches a freshly-cloned type tree; each node
// owns its copy.
type typedNode struct {
	resolved Type
}

func (t *typedNode) ResolvedType() Type     { return t.resolved }
func (t *typedNode) SetResolvedType(r Type) { t.resolved = r }

// scopedNode carries the non-owning back-reference from a declaration to
// the scope it was registered in.
type scopedNode struct {
	scopeRef SymbolScope
}

func (s *scopedNode) ScopeBackRef() SymbolScope       { return s.scopeRef }
func (s *scopedNode) SetScopeBackRef(ref SymbolScope) { s.scopeRef = ref }

// TranslationUnit is the root node for a single source file.
type TranslationUnit struct {
	Token        token.Token
	File         string
	Declarations []Declaration
	Scope        SymbolScope
}

func (tu *TranslationUnit) Kind() string { return "translation_unit" }
func (tu *TranslationUnit) GetToken() token.Token {
	if tu == nil {
		return token.Token{}
	}
	return tu.Token
}
