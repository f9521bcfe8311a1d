package parser

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/token"
)

// parseDeclaration parses one top-level or namespace-level declaration.
// Returns nil on a syntax error; the caller resynchronizes.
func (p *Parser) parseDeclaration() ast.Declaration {
	switch p.cur().Type {
	case token.LET:
		decl := p.parseVariableDeclaration()
		if decl == nil {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return decl
	case token.FUNC:
		return p.parseFunctionDeclaration()
	case token.STRUCT, token.INTERFACE:
		return p.parseStructuredTypeDeclaration()
	case token.TYPE:
		return p.parseTypeAliasDeclaration()
	case token.NAMESPACE:
		return p.parseNamespaceDeclaration()
	}
	p.errorf("expected a declaration, found %q", p.cur().Lexeme)
	return nil
}

// parseVariableDeclaration parses `let NAME [: TYPE] [= EXPR]` without the
// trailing semicolon.
func (p *Parser) parseVariableDeclaration() *ast.DeclarationVariable {
	letTok, ok := p.expect(token.LET)
	if !ok {
		return nil
	}

	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	decl := &ast.DeclarationVariable{Token: letTok, Name: name.Lexeme}

	if p.match(token.COLON) {
		decl.Type = p.parseType()
		if decl.Type == nil {
			return nil
		}
	}

	if p.match(token.ASSIGN) {
		decl.InitialValue = p.parseExpression()
		if decl.InitialValue == nil {
			return nil
		}
	}

	if decl.Type == nil && decl.InitialValue == nil {
		p.errorf("variable %q needs a type or an initial value", decl.Name)
		return nil
	}

	return decl
}

// parseFunctionDeclaration parses
// `func NAME(ARG: TYPE, ...) [-> TYPE] { ... }`.
// An omitted return type means void.
func (p *Parser) parseFunctionDeclaration() ast.Declaration {
	funcTok, ok := p.expect(token.FUNC)
	if !ok {
		return nil
	}

	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}

	decl := &ast.DeclarationFunction{Token: funcTok, Name: name.Lexeme}

	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		argName, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		if _, ok := p.expect(token.COLON); !ok {
			return nil
		}
		argType := p.parseType()
		if argType == nil {
			return nil
		}
		decl.Args = append(decl.Args, &ast.DeclarationVariable{
			Token: argName,
			Name:  argName.Lexeme,
			Type:  argType,
		})
		if !p.match(token.COMMA) {
			break
		}
	}

	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	if p.match(token.ARROW) {
		decl.ReturnType = p.parseType()
		if decl.ReturnType == nil {
			return nil
		}
	} else {
		decl.ReturnType = &ast.TypeBasic{Token: funcTok, BasicKind: ast.TypeBasicVoid}
	}

	decl.Body = p.parseBlock()
	if decl.Body == nil {
		return nil
	}

	return decl
}

// parseStructuredTypeDeclaration parses
// `struct NAME [inherits A, B] { MEMBER; ... }`; `interface` is accepted
// with the same shape.
func (p *Parser) parseStructuredTypeDeclaration() ast.Declaration {
	structTok := p.advance() // struct or interface

	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	decl := &ast.DeclarationStructuredType{Token: structTok, Name: name.Lexeme}

	if p.match(token.INHERITS) {
		for {
			parent, ok := p.expect(token.IDENT)
			if !ok {
				return nil
			}
			decl.Inherits = append(decl.Inherits, &ast.TypeSymbol{
				Token: parent,
				Name:  parent.Lexeme,
			})
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		return nil
	}

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		member := p.parseMemberDeclaration()
		if member == nil {
			p.synchronize()
			continue
		}
		decl.Members = append(decl.Members, member)
	}

	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}

	return decl
}

// parseMemberDeclaration parses one structured type member: a bare
// `NAME: TYPE;` field or any nested declaration form.
func (p *Parser) parseMemberDeclaration() ast.Declaration {
	if p.curIs(token.IDENT) {
		name := p.advance()
		if _, ok := p.expect(token.COLON); !ok {
			return nil
		}
		memberType := p.parseType()
		if memberType == nil {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.DeclarationVariable{Token: name, Name: name.Lexeme, Type: memberType}
	}
	return p.parseDeclaration()
}

// parseTypeAliasDeclaration parses `type NAME = TYPE;`.
func (p *Parser) parseTypeAliasDeclaration() ast.Declaration {
	typeTok, ok := p.expect(token.TYPE)
	if !ok {
		return nil
	}

	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.ASSIGN); !ok {
		return nil
	}

	aliased := p.parseType()
	if aliased == nil {
		return nil
	}

	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	return &ast.DeclarationTypeAlias{Token: typeTok, Name: name.Lexeme, Type: aliased}
}

// parseNamespaceDeclaration parses `namespace NAME { DECL... }`.
func (p *Parser) parseNamespaceDeclaration() ast.Declaration {
	nsTok, ok := p.expect(token.NAMESPACE)
	if !ok {
		return nil
	}

	name, ok := p.expect(token.IDENT)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		return nil
	}

	decl := &ast.DeclarationNamespace{Token: nsTok, Name: name.Lexeme}

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		member := p.parseDeclaration()
		if member == nil {
			p.synchronize()
			continue
		}
		decl.Members = append(decl.Members, member)
	}

	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}

	return decl
}
