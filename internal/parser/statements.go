package parser

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/token"
)

// parseBlock parses `{ STATEMENT... }`.
func (p *Parser) parseBlock() *ast.StatementBlock {
	lbrace, ok := p.expect(token.LBRACE)
	if !ok {
		return nil
	}

	block := &ast.StatementBlock{Token: lbrace}

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt == nil {
			p.synchronize()
			continue
		}
		block.Statements = append(block.Statements, stmt)
	}

	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}

	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LBRACE:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil

	case token.LET:
		letTok := p.cur()
		decl := p.parseVariableDeclaration()
		if decl == nil {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.StatementDeclaration{Token: letTok, Declaration: decl}

	case token.IF:
		return p.parseIf()

	case token.WHILE:
		return p.parseWhile()

	case token.DO:
		return p.parseDoWhile()

	case token.RETURN:
		retTok := p.advance()
		if p.match(token.SEMICOLON) {
			return &ast.StatementBasic{Token: retTok, BasicKind: ast.StatementReturnVoid}
		}
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.StatementValue{Token: retTok, ValueKind: ast.StatementReturn, Value: value}

	case token.BREAK:
		tok := p.advance()
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.StatementBasic{Token: tok, BasicKind: ast.StatementBreak}

	case token.CONTINUE:
		tok := p.advance()
		if _, ok := p.expect(token.SEMICOLON); !ok {
			return nil
		}
		return &ast.StatementBasic{Token: tok, BasicKind: ast.StatementContinue}
	}

	tok := p.cur()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}
	return &ast.StatementValue{Token: tok, ValueKind: ast.StatementExecute, Value: value}
}

// parseIf parses `if (COND) { ... } [else (if ... | { ... })]`.
func (p *Parser) parseIf() ast.Statement {
	ifTok, ok := p.expect(token.IF)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	then := p.parseBlock()
	if then == nil {
		return nil
	}

	stmt := &ast.StatementIf{Token: ifTok, Condition: cond, Then: then}

	if p.match(token.ELSE) {
		if p.curIs(token.IF) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
		if stmt.Else == nil {
			return nil
		}
	}

	return stmt
}

// parseWhile parses `while (COND) { ... }`.
func (p *Parser) parseWhile() ast.Statement {
	whileTok, ok := p.expect(token.WHILE)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.StatementWhile{Token: whileTok, Condition: cond, Body: body}
}

// parseDoWhile parses `do { ... } while (COND);`.
func (p *Parser) parseDoWhile() ast.Statement {
	doTok, ok := p.expect(token.DO)
	if !ok {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	if _, ok := p.expect(token.WHILE); !ok {
		return nil
	}
	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON); !ok {
		return nil
	}

	return &ast.StatementWhile{Token: doTok, Condition: cond, Body: body, IsDoWhile: true}
}
