// Package analyzer implements the semantic passes that take a freshly
// parsed tree to a fully annotated, type-checked one: well-formedness,
// symbol resolution, type resolution and type validation, in that order.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pass"
	"github.com/forge-lang/forge/internal/pipeline"
)

// Analyzer runs the semantic pass chain over a translation unit.
type Analyzer struct {
	passes []*pass.Pass
}

func New() *Analyzer {
	resolver := NewSymbolResolutionHandler()
	return &Analyzer{
		passes: []*pass.Pass{
			pass.New("well-formed", &WellFormedHandler{}),
			pass.New("symbol-resolution", resolver),
			pass.New("type-resolution", &TypeResolutionHandler{}),
			pass.New("type-validation", &TypeValidationHandler{}),
		},
	}
}

// Analyze runs every pass over ctx.AstRoot. A pass that halts (a
// well-formedness failure) stops the chain; later passes rely on the
// structural invariants it checks.
func (a *Analyzer) Analyze(ctx *pipeline.PipelineContext) {
	if ctx.AstRoot == nil {
		return
	}
	for _, p := range a.passes {
		if p.Run(ctx, ctx.AstRoot) == pass.HaltTraversal {
			break
		}
	}
	ctx.Errors = dedupAndSort(ctx.Errors)
}

// dedupAndSort drops diagnostics repeated at the same position with the
// same code and orders the rest by position for deterministic output.
func dedupAndSort(errs []*diagnostics.DiagnosticError) []*diagnostics.DiagnosticError {
	seen := make(map[string]bool, len(errs))
	result := make([]*diagnostics.DiagnosticError, 0, len(errs))
	for _, err := range errs {
		key := fmt.Sprintf("%s:%d:%d:%s", err.File, err.Token.Line, err.Token.Column, err.Code)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		if result[i].Token.Line != result[j].Token.Line {
			return result[i].Token.Line < result[j].Token.Line
		}
		return result[i].Token.Column < result[j].Token.Column
	})

	return result
}

// Processor adapts the analyzer to the compilation pipeline.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	New().Analyze(ctx)
	return ctx
}
