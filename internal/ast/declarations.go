package ast

import (
	"github.com/forge-lang/forge/internal/token"
)

// DeclarationVariable declares a variable, function argument or structured
// type member. Type may be nil when an initial value provides it.
// CodegenValue is an opaque handle for the storage slot allocated by the
// code generator.
type DeclarationVariable struct {
	Token        token.Token
	Name         string
	Type         Type
	InitialValue Value
	CodegenValue interface{}
	typedNode
	scopedNode
}

func (d *DeclarationVariable) declarationNode() {}
func (d *DeclarationVariable) Kind() string     { return "declaration_variable" }
func (d *DeclarationVariable) DeclName() string { return d.Name }
func (d *DeclarationVariable) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// DeclarationFunction declares a function with a body.
type DeclarationFunction struct {
	Token        token.Token
	Name         string
	Args         []*DeclarationVariable
	ReturnType   Type
	Body         *StatementBlock
	CodegenValue interface{}
	typedNode
	scopedNode
}

func (d *DeclarationFunction) declarationNode() {}
func (d *DeclarationFunction) Kind() string     { return "declaration_function" }
func (d *DeclarationFunction) DeclName() string { return d.Name }
func (d *DeclarationFunction) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// DeclarationTypeAlias declares a named alias for a type.
type DeclarationTypeAlias struct {
	Token token.Token
	Name  string
	Type  Type
	typedNode
	scopedNode
}

func (d *DeclarationTypeAlias) declarationNode() {}
func (d *DeclarationTypeAlias) Kind() string     { return "declaration_type_alias" }
func (d *DeclarationTypeAlias) DeclName() string { return d.Name }
func (d *DeclarationTypeAlias) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// DeclarationStructuredType declares a struct or interface. Inherits lists
// parent type symbols whose members are merged in by type resolution.
type DeclarationStructuredType struct {
	Token    token.Token
	Name     string
	Members  []Declaration
	Inherits []*TypeSymbol
	typedNode
	scopedNode
}

func (d *DeclarationStructuredType) declarationNode() {}
func (d *DeclarationStructuredType) Kind() string     { return "declaration_structured_type" }
func (d *DeclarationStructuredType) DeclName() string { return d.Name }
func (d *DeclarationStructuredType) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// DeclarationNamespace declares a namespace of member declarations.
type DeclarationNamespace struct {
	Token   token.Token
	Name    string
	Members []Declaration
	typedNode
	scopedNode
}

func (d *DeclarationNamespace) declarationNode() {}
func (d *DeclarationNamespace) Kind() string     { return "declaration_namespace" }
func (d *DeclarationNamespace) DeclName() string { return d.Name }
func (d *DeclarationNamespace) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}
