package backend

import (
	"fmt"

	"github.com/forge-lang/forge/internal/interp"
	"github.com/forge-lang/forge/internal/pipeline"
)

// JITBackend runs the module's main function in the embedded interpreter.
type JITBackend struct {
	// Entry is the function to run; defaults to "main".
	Entry string
}

func (b *JITBackend) Name() string { return "jit" }

// Exec runs the entry function and returns its result value.
func (b *JITBackend) Exec(ctx *pipeline.PipelineContext) (interp.Value, error) {
	module, err := moduleOf(ctx)
	if err != nil {
		return interp.Value{}, err
	}

	entry := b.Entry
	if entry == "" {
		entry = "main"
	}

	return interp.New(module).Run(entry)
}

func (b *JITBackend) Run(ctx *pipeline.PipelineContext) (string, error) {
	result, err := b.Exec(ctx)
	if err != nil {
		return "", err
	}
	return FormatValue(result), nil
}

// FormatValue renders an interpreter result for display. Void results
// render as the empty string.
func FormatValue(v interp.Value) string {
	switch {
	case v.Type.IsVoid():
		return ""
	case v.Type.IsFloat():
		return fmt.Sprintf("%g", v.F)
	default:
		return fmt.Sprintf("%d", signedValue(v))
	}
}

// ExitCode maps a result to the process exit code: a truthy (non-zero)
// value exits 1, zero and void exit 0.
func ExitCode(v interp.Value) int {
	if v.Type.IsVoid() {
		return 0
	}
	if v.Type.IsFloat() {
		if v.F != 0 {
			return 1
		}
		return 0
	}
	if v.I != 0 {
		return 1
	}
	return 0
}

func signedValue(v interp.Value) int64 {
	bits := v.Type.Bits
	if bits == 0 || bits >= 64 {
		return int64(v.I)
	}
	shift := 64 - bits
	return int64(v.I<<shift) >> shift
}
