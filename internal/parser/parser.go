package parser

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pipeline"
	"github.com/forge-lang/forge/internal/token"
)

// Parser is a recursive-descent parser over a token stream. It recovers at
// statement and declaration boundaries so one run reports as many syntax
// errors as possible.
type Parser struct {
	tokens   []token.Token
	position int
	ctx      *pipeline.PipelineContext
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	if len(tokens) == 0 {
		tokens = []token.Token{{Type: token.EOF}}
	}
	return &Parser{tokens: tokens, ctx: ctx}
}

func (p *Parser) cur() token.Token {
	if p.position >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.position]
}

func (p *Parser) peek() token.Token {
	if p.position+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.position+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.position < len(p.tokens)-1 {
		p.position++
	}
	return t
}

func (p *Parser) curIs(t token.Type) bool { return p.cur().Type == t }

func (p *Parser) match(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t token.Type) (token.Token, bool) {
	if p.curIs(t) {
		return p.advance(), true
	}
	p.errorf("expected %q, found %q", string(t), p.cur().Lexeme)
	return p.cur(), false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.ctx.AddError(diagnostics.NewError(
		diagnostics.ErrESY003, p.cur(), fmt.Sprintf(format, args...)))
}

// synchronize skips tokens until a likely statement or declaration start,
// so one syntax error does not cascade.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.match(token.SEMICOLON) {
			return
		}
		switch p.cur().Type {
		case token.LET, token.FUNC, token.STRUCT, token.INTERFACE, token.TYPE,
			token.NAMESPACE, token.IF, token.WHILE, token.DO, token.RETURN,
			token.BREAK, token.CONTINUE, token.RBRACE:
			return
		}
		p.advance()
	}
}

// ParseTranslationUnit parses a whole source file.
func (p *Parser) ParseTranslationUnit() *ast.TranslationUnit {
	tu := &ast.TranslationUnit{Token: p.cur(), File: p.ctx.FilePath}

	for !p.curIs(token.EOF) {
		decl := p.parseDeclaration()
		if decl == nil {
			p.synchronize()
			continue
		}
		tu.Declarations = append(tu.Declarations, decl)
	}

	return tu
}
