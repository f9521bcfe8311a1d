// Package cli implements the driver behind the forge binary: it wires
// source files through the compilation pipeline, renders diagnostics, and
// talks to the build cache and the execution backends.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/forge-lang/forge/internal/analyzer"
	"github.com/forge-lang/forge/internal/backend"
	"github.com/forge-lang/forge/internal/buildcache"
	"github.com/forge-lang/forge/internal/codegen"
	"github.com/forge-lang/forge/internal/config"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/lexer"
	"github.com/forge-lang/forge/internal/parser"
	"github.com/forge-lang/forge/internal/pipeline"
	"github.com/forge-lang/forge/internal/prettyprinter"
	"github.com/forge-lang/forge/internal/typesystem"
)

// Options configure one driver invocation.
type Options struct {
	Out    io.Writer
	ErrOut io.Writer

	// NoCache bypasses the build cache.
	NoCache bool
	// WarningsAsErrors makes any warning fail the run.
	WarningsAsErrors bool
	// OutputPath overrides where compile writes its .ll; by default it goes
	// next to the source.
	OutputPath string
}

func (o *Options) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.ErrOut == nil {
		o.ErrOut = os.Stderr
	}
}

// newPipeline builds the standard stage chain.
func newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&analyzer.Processor{},
		&codegen.Processor{},
	)
}

// runPipeline compiles one file's source under the project configuration.
func runPipeline(path, source string, project config.Project) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(path, source)
	ctx.Target = typesystem.Target{PointerBits: project.PointerBits}
	return newPipeline().Run(ctx)
}

// ExpandTargets resolves file arguments, applying doublestar glob patterns
// and filtering to Forge sources.
func ExpandTargets(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, arg := range args {
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		if matches == nil {
			matches = []string{arg}
		}

		for _, match := range matches {
			if !config.HasSourceExt(match) {
				continue
			}
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no Forge source files matched")
	}
	return files, nil
}

func failed(errs []*diagnostics.DiagnosticError, werror bool) bool {
	if diagnostics.HasErrors(errs) {
		return true
	}
	if !werror {
		return false
	}
	for _, e := range errs {
		if e.Severity == diagnostics.SeverityWarning {
			return true
		}
	}
	return false
}

// Compile compiles every target, writing .ll files next to the sources.
// Returns the process exit code.
func Compile(args []string, opts Options) int {
	opts.defaults()
	renderer := diagnostics.NewRenderer(opts.ErrOut)

	files, err := ExpandTargets(args)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	exitCode := 0
	for _, path := range files {
		if !compileOne(path, opts, renderer) {
			exitCode = 1
		}
	}
	return exitCode
}

func compileOne(path string, opts Options, renderer *diagnostics.Renderer) bool {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return false
	}

	project, err := config.LoadProject(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return false
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = config.TrimSourceExt(path) + ".ll"
	}

	var cache *buildcache.Cache
	hash := buildcache.HashSource(string(source))
	if project.Cache && !opts.NoCache {
		dir := project.CacheDir
		if dir == "" {
			dir = buildcache.DefaultDir()
		}
		if opened, err := buildcache.Open(dir); err == nil {
			cache = opened
			defer cache.Close()

			if cached, ok, err := cache.Get(hash); err == nil && ok {
				return os.WriteFile(outPath, []byte(cached), 0o644) == nil
			}
		}
	}

	ctx := runPipeline(path, string(source), project)
	renderer.Render(ctx.Errors)

	if failed(ctx.Errors, opts.WarningsAsErrors || project.WarningsAsErrors) {
		return false
	}

	emit := &backend.EmitBackend{}
	irText, err := emit.Run(ctx)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return false
	}

	if err := os.WriteFile(outPath, []byte(irText), 0o644); err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return false
	}

	if cache != nil {
		// Cache failures only cost the next run time.
		_ = cache.Put(path, hash, irText)
	}

	return true
}

// JIT compiles a single file and runs its main function in the embedded
// interpreter. Returns the process exit code.
func JIT(path string, opts Options) int {
	opts.defaults()
	renderer := diagnostics.NewRenderer(opts.ErrOut)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	project, err := config.LoadProject(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	ctx := runPipeline(path, string(source), project)
	renderer.Render(ctx.Errors)

	if failed(ctx.Errors, opts.WarningsAsErrors || project.WarningsAsErrors) {
		return 1
	}

	jit := &backend.JITBackend{}
	result, err := jit.Exec(ctx)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}
	if rendered := backend.FormatValue(result); rendered != "" {
		fmt.Fprintln(opts.Out, rendered)
	}
	// main's truthiness is the process exit code
	return backend.ExitCode(result)
}

// DumpAST compiles a file through the semantic passes and prints the
// annotated tree. Returns the process exit code.
func DumpAST(path string, opts Options) int {
	opts.defaults()
	renderer := diagnostics.NewRenderer(opts.ErrOut)

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	project, err := config.LoadProject(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	ctx := runPipeline(path, string(source), project)
	renderer.Render(ctx.Errors)

	if ctx.AstRoot == nil {
		return 1
	}

	printer := prettyprinter.New()
	printer.ShowTypes = true
	fmt.Fprint(opts.Out, printer.Print(ctx.AstRoot))

	if diagnostics.HasErrors(ctx.Errors) {
		return 1
	}
	return 0
}

// CacheClear empties the build cache. Returns the process exit code.
func CacheClear(opts Options) int {
	opts.defaults()
	cache, err := buildcache.Open(buildcache.DefaultDir())
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}
	defer cache.Close()

	if err := cache.Clear(); err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}
	return 0
}

// CacheStats prints build cache statistics. Returns the process exit code.
func CacheStats(opts Options) int {
	opts.defaults()
	cache, err := buildcache.Open(buildcache.DefaultDir())
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}
	defer cache.Close()

	stats, err := cache.Stats()
	if err != nil {
		fmt.Fprintf(opts.ErrOut, "forge: %v\n", err)
		return 1
	}

	fmt.Fprintf(opts.Out, "entries: %d\n", stats.Entries)
	if stats.Entries > 0 {
		fmt.Fprintf(opts.Out, "oldest:  %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(opts.Out, "newest:  %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
	}
	return 0
}
