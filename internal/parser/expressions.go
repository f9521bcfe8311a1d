package parser

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/token"
)

var assignOperators = map[token.Type]ast.BinaryOperator{
	token.ASSIGN:          ast.BinaryAssign,
	token.PLUS_ASSIGN:     ast.BinaryAddAssign,
	token.MINUS_ASSIGN:    ast.BinarySubAssign,
	token.ASTERISK_ASSIGN: ast.BinaryMulAssign,
	token.SLASH_ASSIGN:    ast.BinaryDivAssign,
	token.PERCENT_ASSIGN:  ast.BinaryModAssign,
	token.POWER_ASSIGN:    ast.BinaryExpAssign,
	token.LSHIFT_ASSIGN:   ast.BinaryShlAssign,
	token.RSHIFT_ASSIGN:   ast.BinaryShrAssign,
	token.AMP_ASSIGN:      ast.BinaryBitAndAssign,
	token.PIPE_ASSIGN:     ast.BinaryBitOrAssign,
	token.CARET_ASSIGN:    ast.BinaryBitXorAssign,
}

func (p *Parser) parseExpression() ast.Value {
	return p.parseAssignment()
}

// parseAssignment handles `=` and the compound assigns, right associative.
func (p *Parser) parseAssignment() ast.Value {
	lhs := p.parseBoolOr()
	if lhs == nil {
		return nil
	}

	op, ok := assignOperators[p.cur().Type]
	if !ok {
		return lhs
	}
	opTok := p.advance()

	rhs := p.parseAssignment()
	if rhs == nil {
		return nil
	}

	return &ast.ValueBinary{Token: opTok, Operator: op, LHS: lhs, RHS: rhs}
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() ast.Value, ops map[token.Type]ast.BinaryOperator) ast.Value {
	lhs := next()
	if lhs == nil {
		return nil
	}

	for {
		op, ok := ops[p.cur().Type]
		if !ok {
			return lhs
		}
		opTok := p.advance()

		rhs := next()
		if rhs == nil {
			return nil
		}
		lhs = &ast.ValueBinary{Token: opTok, Operator: op, LHS: lhs, RHS: rhs}
	}
}

func (p *Parser) parseBoolOr() ast.Value {
	return p.binaryLevel(p.parseBoolAnd, map[token.Type]ast.BinaryOperator{
		token.OR: ast.BinaryBoolOr,
	})
}

func (p *Parser) parseBoolAnd() ast.Value {
	return p.binaryLevel(p.parseBitOr, map[token.Type]ast.BinaryOperator{
		token.AND: ast.BinaryBoolAnd,
	})
}

func (p *Parser) parseBitOr() ast.Value {
	return p.binaryLevel(p.parseBitXor, map[token.Type]ast.BinaryOperator{
		token.PIPE: ast.BinaryBitOr,
	})
}

func (p *Parser) parseBitXor() ast.Value {
	return p.binaryLevel(p.parseBitAnd, map[token.Type]ast.BinaryOperator{
		token.CARET: ast.BinaryBitXor,
	})
}

func (p *Parser) parseBitAnd() ast.Value {
	return p.binaryLevel(p.parseEquality, map[token.Type]ast.BinaryOperator{
		token.AMP: ast.BinaryBitAnd,
	})
}

func (p *Parser) parseEquality() ast.Value {
	return p.binaryLevel(p.parseRelational, map[token.Type]ast.BinaryOperator{
		token.EQ:     ast.BinaryEq,
		token.NOT_EQ: ast.BinaryNe,
	})
}

func (p *Parser) parseRelational() ast.Value {
	return p.binaryLevel(p.parseShift, map[token.Type]ast.BinaryOperator{
		token.LT:  ast.BinaryLt,
		token.LTE: ast.BinaryLe,
		token.GT:  ast.BinaryGt,
		token.GTE: ast.BinaryGe,
	})
}

func (p *Parser) parseShift() ast.Value {
	return p.binaryLevel(p.parseAdditive, map[token.Type]ast.BinaryOperator{
		token.LSHIFT: ast.BinaryShl,
		token.RSHIFT: ast.BinaryShr,
	})
}

func (p *Parser) parseAdditive() ast.Value {
	return p.binaryLevel(p.parseMultiplicative, map[token.Type]ast.BinaryOperator{
		token.PLUS:  ast.BinaryAdd,
		token.MINUS: ast.BinarySub,
	})
}

func (p *Parser) parseMultiplicative() ast.Value {
	return p.binaryLevel(p.parseExponent, map[token.Type]ast.BinaryOperator{
		token.ASTERISK: ast.BinaryMul,
		token.SLASH:    ast.BinaryDiv,
		token.PERCENT:  ast.BinaryMod,
	})
}

// parseExponent handles `**`, right associative.
func (p *Parser) parseExponent() ast.Value {
	lhs := p.parseCast()
	if lhs == nil {
		return nil
	}

	if !p.curIs(token.POWER) {
		return lhs
	}
	opTok := p.advance()

	rhs := p.parseExponent()
	if rhs == nil {
		return nil
	}

	return &ast.ValueBinary{Token: opTok, Operator: ast.BinaryExp, LHS: lhs, RHS: rhs}
}

// parseCast handles postfix `as TYPE`, which may chain.
func (p *Parser) parseCast() ast.Value {
	value := p.parseUnary()
	if value == nil {
		return nil
	}

	for p.curIs(token.AS) {
		asTok := p.advance()
		castType := p.parseType()
		if castType == nil {
			return nil
		}
		value = &ast.ValueCast{Token: asTok, Value: value, Type: castType}
	}

	return value
}

var prefixOperators = map[token.Type]ast.UnaryOperator{
	token.BANG:     ast.UnaryBoolNot,
	token.TILDE:    ast.UnaryBitNot,
	token.PLUS:     ast.UnaryPos,
	token.MINUS:    ast.UnaryNeg,
	token.ASTERISK: ast.UnaryDeref,
	token.AMP:      ast.UnaryGetAddr,
}

func (p *Parser) parseUnary() ast.Value {
	op, ok := prefixOperators[p.cur().Type]
	if !ok {
		return p.parsePostfix()
	}
	opTok := p.advance()

	// A minus directly before a numeric literal is part of the literal, so
	// that the value is range-checked with its sign.
	if op == ast.UnaryNeg && p.curIs(token.NUMBER) {
		return p.parseNumberLiteral(true)
	}

	operand := p.parseUnary()
	if operand == nil {
		return nil
	}

	return &ast.ValueUnary{Token: opTok, Operator: op, Operand: operand}
}

func (p *Parser) parsePostfix() ast.Value {
	value := p.parsePrimary()
	if value == nil {
		return nil
	}

	for {
		switch p.cur().Type {
		case token.LPAREN:
			callTok := p.advance()
			call := &ast.ValueCall{Token: callTok, Callee: value}
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				arg := p.parseExpression()
				if arg == nil {
					return nil
				}
				call.Args = append(call.Args, arg)
				if !p.match(token.COMMA) {
					break
				}
			}
			if _, ok := p.expect(token.RPAREN); !ok {
				return nil
			}
			value = call

		case token.DOT:
			dotTok := p.advance()
			member, ok := p.expect(token.IDENT)
			if !ok {
				return nil
			}
			value = &ast.ValueBinary{
				Token:    dotTok,
				Operator: ast.BinaryMemberAccess,
				LHS:      value,
				RHS:      &ast.ValueSymbol{Token: member, Name: member.Lexeme},
			}

		default:
			return value
		}
	}
}

func (p *Parser) parsePrimary() ast.Value {
	tok := p.cur()

	switch tok.Type {
	case token.TRUE:
		p.advance()
		return &ast.ValueLiteralBool{Token: tok, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.ValueLiteralBool{Token: tok, Value: false}
	case token.NUMBER:
		return p.parseNumberLiteral(false)
	case token.IDENT:
		p.advance()
		return &ast.ValueSymbol{Token: tok, Name: tok.Lexeme}
	case token.SELF:
		p.advance()
		return &ast.ValueSymbol{Token: tok, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return nil
		}
		return inner
	}

	p.errorf("expected an expression, found %q", tok.Lexeme)
	return nil
}
