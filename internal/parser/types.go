package parser

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/token"
)

// parseType parses a type: an optional `const` qualifier followed by a
// pointer, function, primitive or named type.
func (p *Parser) parseType() ast.Type {
	isConst := p.match(token.CONST)

	t := p.parseTypeInner()
	if t == nil {
		return nil
	}

	if isConst {
		setConst(t)
	}
	return t
}

func setConst(t ast.Type) {
	switch tt := t.(type) {
	case *ast.TypeBasic:
		tt.Const = true
	case *ast.TypeWithBitWidth:
		tt.Const = true
	case *ast.TypeSymbol:
		tt.Const = true
	case *ast.TypeUnary:
		tt.Const = true
	case *ast.TypeFunction:
		tt.Const = true
	case *ast.TypeStructured:
		tt.Const = true
	}
}

func (p *Parser) parseTypeInner() ast.Type {
	tok := p.cur()

	switch tok.Type {
	case token.ASTERISK:
		p.advance()
		operand := p.parseType()
		if operand == nil {
			return nil
		}
		return &ast.TypeUnary{Token: tok, UnaryKind: ast.TypeUnaryPointer, OperandType: operand}

	case token.BOOL:
		p.advance()
		return &ast.TypeBasic{Token: tok, BasicKind: ast.TypeBasicBool}
	case token.VOID:
		p.advance()
		return &ast.TypeBasic{Token: tok, BasicKind: ast.TypeBasicVoid}
	case token.ISIZE:
		p.advance()
		return &ast.TypeBasic{Token: tok, BasicKind: ast.TypeBasicISize}
	case token.USIZE:
		p.advance()
		return &ast.TypeBasic{Token: tok, BasicKind: ast.TypeBasicUSize}

	case token.I8, token.I16, token.I32, token.I64,
		token.U8, token.U16, token.U32, token.U64,
		token.F32, token.F64:
		p.advance()
		return sizedType(tok)

	case token.FUNC:
		return p.parseFunctionType()

	case token.IDENT:
		p.advance()
		return &ast.TypeSymbol{Token: tok, Name: tok.Lexeme}
	}

	p.errorf("expected a type, found %q", tok.Lexeme)
	return nil
}

func sizedType(tok token.Token) *ast.TypeWithBitWidth {
	var kind ast.NumericKind
	var bits uint

	switch tok.Type {
	case token.I8:
		kind, bits = ast.NumericSignedInt, 8
	case token.I16:
		kind, bits = ast.NumericSignedInt, 16
	case token.I32:
		kind, bits = ast.NumericSignedInt, 32
	case token.I64:
		kind, bits = ast.NumericSignedInt, 64
	case token.U8:
		kind, bits = ast.NumericUnsignedInt, 8
	case token.U16:
		kind, bits = ast.NumericUnsignedInt, 16
	case token.U32:
		kind, bits = ast.NumericUnsignedInt, 32
	case token.U64:
		kind, bits = ast.NumericUnsignedInt, 64
	case token.F32:
		kind, bits = ast.NumericFloat, 32
	case token.F64:
		kind, bits = ast.NumericFloat, 64
	}

	return &ast.TypeWithBitWidth{Token: tok, NumericKind: kind, BitWidth: bits}
}

// parseFunctionType parses `func(TYPE, ...) [-> TYPE]`. Only usable in type
// position for diagnostics; function values are rejected later.
func (p *Parser) parseFunctionType() ast.Type {
	funcTok, ok := p.expect(token.FUNC)
	if !ok {
		return nil
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil
	}

	t := &ast.TypeFunction{Token: funcTok}

	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		arg := p.parseType()
		if arg == nil {
			return nil
		}
		t.ArgTypes = append(t.ArgTypes, arg)
		if !p.match(token.COMMA) {
			break
		}
	}

	if _, ok := p.expect(token.RPAREN); !ok {
		return nil
	}

	if p.match(token.ARROW) {
		t.ReturnType = p.parseType()
		if t.ReturnType == nil {
			return nil
		}
	} else {
		t.ReturnType = &ast.TypeBasic{Token: funcTok, BasicKind: ast.TypeBasicVoid}
	}

	return t
}
