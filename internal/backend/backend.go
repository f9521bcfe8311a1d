// Package backend provides an interface for what happens after codegen.
// This allows switching between emitting LLVM assembly and running the
// module in the embedded interpreter.
package backend

import (
	"fmt"

	"github.com/forge-lang/forge/internal/ir"
	"github.com/forge-lang/forge/internal/pipeline"
)

// Backend consumes the IR module a pipeline produced.
type Backend interface {
	// Run processes the compiled module from the pipeline context.
	Run(ctx *pipeline.PipelineContext) (string, error)

	// Name returns the backend name for display.
	Name() string
}

func moduleOf(ctx *pipeline.PipelineContext) (*ir.Module, error) {
	module, ok := ctx.IRModule.(*ir.Module)
	if !ok || module == nil {
		return nil, fmt.Errorf("backend: pipeline did not produce an IR module")
	}
	return module, nil
}
