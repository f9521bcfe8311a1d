// Package codegen lowers a fully-analyzed translation unit to the target
// IR. It relies on the guarantees of the semantic passes: every value
// carries a resolved type and every reachable symbol is bound.
package codegen

import (
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/ir"
	"github.com/forge-lang/forge/internal/pipeline"
	"github.com/forge-lang/forge/internal/typesystem"
)

// Generator translates one translation unit into an IR module.
type Generator struct {
	ctx    *pipeline.PipelineContext
	target typesystem.Target
	module *ir.Module

	// innermost loop's re-test and exit blocks, for continue/break
	loopTest  *ir.Block
	loopAfter *ir.Block
}

func New(ctx *pipeline.PipelineContext) *Generator {
	return &Generator{ctx: ctx, target: ctx.Target}
}

// Generate emits every function in the unit. Namespace members are emitted
// with their qualified name.
func (g *Generator) Generate(tu *ast.TranslationUnit) *ir.Module {
	g.module = ir.NewModule(tu.File)

	g.genDeclarations("", tu.Declarations)

	return g.module
}

func (g *Generator) genDeclarations(prefix string, decls []ast.Declaration) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.DeclarationFunction:
			g.genFunction(prefix+d.Name, d)
		case *ast.DeclarationNamespace:
			g.genDeclarations(prefix+d.Name+".", d.Members)
		}
	}
}

// typeOf maps a resolved AST type to an IR type.
func (g *Generator) typeOf(t ast.Type) ir.Type {
	t = typesystem.Underlying(t)

	switch tt := t.(type) {
	case *ast.TypeBasic:
		switch tt.BasicKind {
		case ast.TypeBasicBool:
			return ir.IntType(1)
		case ast.TypeBasicVoid:
			return ir.VoidType()
		case ast.TypeBasicISize, ast.TypeBasicUSize:
			return ir.IntType(g.target.PointerBits)
		}
	case *ast.TypeWithBitWidth:
		if tt.NumericKind == ast.NumericFloat {
			return ir.FloatType(tt.BitWidth)
		}
		return ir.IntType(tt.BitWidth)
	case *ast.TypeUnary:
		if tt.UnaryKind == ast.TypeUnaryPointer {
			return ir.PtrType(g.typeOf(tt.OperandType))
		}
	}

	diagnostics.Abort("codegen", "no IR lowering for type kind %q", t.Kind())
	return ir.VoidType()
}

func (g *Generator) genFunction(name string, fn *ast.DeclarationFunction) {
	params := make([]*ir.Value, len(fn.Args))
	for i, arg := range fn.Args {
		params[i] = &ir.Value{Name: arg.Name, Type: g.typeOf(arg.ResolvedType())}
	}

	f := g.module.NewFunc(name, g.typeOf(fn.ReturnType), params)
	fn.CodegenValue = f

	entry := f.NewBlock("entry")

	// Every argument gets a stack slot so it behaves like any other
	// variable.
	for i, arg := range fn.Args {
		slot := f.NewReg(ir.PtrType(params[i].Type))
		entry.Append(&ir.Instr{Op: ir.OpAlloca, Result: slot, Type: params[i].Type})
		entry.Append(&ir.Instr{Op: ir.OpStore, Args: []*ir.Value{params[i], slot}})
		arg.CodegenValue = slot
	}

	end := g.genBlock(f, entry, fn, fn.Body)

	// An open block at the end of the body falls off the function.
	if end != nil {
		if f.RetType.IsVoid() {
			end.SetTerm(&ir.Instr{Op: ir.OpRetVoid})
		} else {
			end.SetTerm(&ir.Instr{Op: ir.OpRet, Args: []*ir.Value{zeroValue(f.RetType)}})
		}
	}
}

func zeroValue(t ir.Type) *ir.Value {
	if t.IsFloat() {
		return ir.ConstFloat(t, 0)
	}
	return ir.ConstInt(t, 0)
}

// Processor adapts the generator to the compilation pipeline. Codegen only
// runs on clean input; it assumes the analyzer's postconditions.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() {
		return ctx
	}
	tu, ok := ctx.AstRoot.(*ast.TranslationUnit)
	if !ok || tu == nil {
		return ctx
	}

	module := New(ctx).Generate(tu)
	ctx.IRModule = module
	ctx.IRText = module.String()
	return ctx
}
