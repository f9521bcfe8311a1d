package ast

import (
	"github.com/forge-lang/forge/internal/token"
)

// StatementBasicKind enumerates statements with no children.
type StatementBasicKind int

const (
	StatementContinue StatementBasicKind = iota
	StatementBreak
	StatementReturnVoid
)

func (k StatementBasicKind) String() string {
	switch k {
	case StatementContinue:
		return "continue"
	case StatementBreak:
		return "break"
	case StatementReturnVoid:
		return "return"
	}
	return "unknown"
}

// StatementBasic is continue, break or a bare return.
type StatementBasic struct {
	Token     token.Token
	BasicKind StatementBasicKind
}

func (s *StatementBasic) statementNode() {}
func (s *StatementBasic) Kind() string   { return "statement_basic" }
func (s *StatementBasic) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// StatementValueKind enumerates statements carrying one value.
type StatementValueKind int

const (
	StatementExecute StatementValueKind = iota // expression statement, result discarded
	StatementReturn                            // return with a value
)

// StatementValue is an expression statement or a valued return.
type StatementValue struct {
	Token     token.Token
	ValueKind StatementValueKind
	Value     Value
}

func (s *StatementValue) statementNode() {}
func (s *StatementValue) Kind() string   { return "statement_value" }
func (s *StatementValue) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// StatementDeclaration wraps a variable declaration appearing as a statement.
type StatementDeclaration struct {
	Token       token.Token
	Declaration Declaration
}

func (s *StatementDeclaration) statementNode() {}
func (s *StatementDeclaration) Kind() string   { return "statement_declaration" }
func (s *StatementDeclaration) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// StatementBlock is a braced statement sequence. Its Scope is attached by
// symbol resolution.
type StatementBlock struct {
	Token      token.Token
	Statements []Statement
	Scope      SymbolScope
}

func (s *StatementBlock) statementNode() {}
func (s *StatementBlock) Kind() string   { return "statement_block" }
func (s *StatementBlock) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// StatementIf is a conditional. Else, if present, is a StatementBlock or
// another StatementIf (for else-if chains).
type StatementIf struct {
	Token     token.Token
	Condition Value
	Then      Statement
	Else      Statement
}

func (s *StatementIf) statementNode() {}
func (s *StatementIf) Kind() string   { return "statement_if" }
func (s *StatementIf) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}

// StatementWhile is a while or do-while loop.
type StatementWhile struct {
	Token     token.Token
	Condition Value
	Body      Statement
	IsDoWhile bool
}

func (s *StatementWhile) statementNode() {}
func (s *StatementWhile) Kind() string   { return "statement_while" }
func (s *StatementWhile) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}
