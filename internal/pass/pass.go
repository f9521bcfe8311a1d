// Package pass implements the tree traversal framework the semantic passes
// are built on. A Pass walks an AST depth-first, invoking an ordered list of
// handlers on the way in and out of every node. Traversal is synchronous and
// single-threaded; handlers may mutate the current node but never its
// ancestors.
package pass

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/pipeline"
)

// Status controls how a traversal proceeds after a handler callback.
type Status int

const (
	// Continue visits children and siblings normally.
	Continue Status = iota
	// SkipChildren visits siblings but not the current node's children.
	SkipChildren
	// HaltTraversal stops the walk; remaining siblings at every level are
	// skipped and the pass returns.
	HaltTraversal
)

// Output is returned from handler callbacks.
type Output struct {
	Status Status
}

// Input is handed to every handler callback. Stack holds the ancestors of
// Node, root first, immediate parent last. The slice is borrowed: handlers
// must not retain it past the callback.
type Input struct {
	Node  ast.Node
	Stack []ast.Node
	Ctx   *pipeline.PipelineContext
}

// Parent returns the immediate parent, or nil at the root.
func (in *Input) Parent() ast.Node {
	if len(in.Stack) == 0 {
		return nil
	}
	return in.Stack[len(in.Stack)-1]
}

// Emit forwards a diagnostic to the pass's message sink.
func (in *Input) Emit(err *diagnostics.DiagnosticError) {
	in.Ctx.AddError(err)
}

// Nearest walks the ancestor stack upward for the closest ancestor of type
// T, e.g. the function declaration enclosing a return statement.
func Nearest[T ast.Node](in *Input) (T, bool) {
	for i := len(in.Stack) - 1; i >= 0; i-- {
		if n, ok := in.Stack[i].(T); ok {
			return n, true
		}
	}
	var zero T
	return zero, false
}

// Handler observes every node of a traversal. Implementations typically
// type-switch on in.Node and ignore kinds they do not care about.
type Handler interface {
	OnEnter(in *Input) Output
	OnLeave(in *Input) Output
}

// Pass is one complete traversal of an AST with an ordered handler list.
// When two handlers mutate the same field of a node, registration order
// decides.
type Pass struct {
	name     string
	handlers []Handler
}

func New(name string, handlers ...Handler) *Pass {
	return &Pass{name: name, handlers: handlers}
}

func (p *Pass) Name() string { return p.name }

// Run walks root, returning the final traversal status.
func (p *Pass) Run(ctx *pipeline.PipelineContext, root ast.Node) Status {
	if root == nil {
		return Continue
	}
	w := &walker{pass: p, ctx: ctx}
	return w.walk(root)
}
