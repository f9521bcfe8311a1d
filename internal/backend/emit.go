package backend

import (
	"github.com/forge-lang/forge/internal/pipeline"
)

// EmitBackend serializes the module as LLVM assembly text.
type EmitBackend struct{}

func (b *EmitBackend) Name() string { return "emit" }

func (b *EmitBackend) Run(ctx *pipeline.PipelineContext) (string, error) {
	module, err := moduleOf(ctx)
	if err != nil {
		return "", err
	}
	return module.String(), nil
}
