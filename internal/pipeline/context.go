package pipeline

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/token"
	"github.com/forge-lang/forge/internal/typesystem"
)

// Processor is a single compilation stage. Stages annotate the context in
// place; within a stage, work continues past errors so one run collects as
// many diagnostics as the stage can produce.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline chains compilation stages over one context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. A stage that leaves error-severity
// diagnostics behind stops the chain: later stages assume the invariants
// the failed one could not establish. Warnings do not stop anything.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.HasErrors() {
			break
		}
	}
	return ctx
}

// PipelineContext threads one source file through the stage chain.
type PipelineContext struct {
	FilePath string
	Source   string
	Target   typesystem.Target

	TokenStream []token.Token
	AstRoot     ast.Node

	// IRText is the serialized target IR, set by the codegen stage.
	IRText string
	// IRModule holds the in-memory IR module (*ir.Module); typed loosely so
	// early stages need no knowledge of the backend.
	IRModule interface{}

	Errors []*diagnostics.DiagnosticError
}

func NewContext(filePath, source string) *PipelineContext {
	return &PipelineContext{
		FilePath: filePath,
		Source:   source,
		Target:   typesystem.DefaultTarget(),
	}
}

// AddError appends a diagnostic, stamping the file path when missing.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// HasErrors reports whether any collected diagnostic is error severity.
func (ctx *PipelineContext) HasErrors() bool {
	return diagnostics.HasErrors(ctx.Errors)
}
