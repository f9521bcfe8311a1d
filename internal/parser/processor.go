package parser

import (
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pipeline"
	"github.com/forge-lang/forge/internal/token"
)

// Processor adapts the parser to the compilation pipeline.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// Safeguard; the lexer stage always runs first.
		ctx.AddError(diagnostics.NewError(
			diagnostics.ErrESY003, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	p := New(ctx.TokenStream, ctx)
	ctx.AstRoot = p.ParseTranslationUnit()

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}

	return ctx
}
