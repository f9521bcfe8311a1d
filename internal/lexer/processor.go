package lexer

import (
	"github.com/forge-lang/forge/internal/pipeline"
)

// Processor adapts the lexer to the compilation pipeline.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := New(ctx.Source, ctx.FilePath)
	ctx.TokenStream = l.Tokenize()
	for _, err := range l.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
