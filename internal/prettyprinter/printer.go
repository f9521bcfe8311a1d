// Package prettyprinter renders a (possibly annotated) AST as an indented
// tree for the dump-ast command and parser goldens.
package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/forge-lang/forge/internal/ast"
)

type Printer struct {
	buf    bytes.Buffer
	indent int
	// ShowTypes includes resolved types in the dump.
	ShowTypes bool
}

func New() *Printer {
	return &Printer{}
}

// Print renders node and returns the accumulated text.
func (p *Printer) Print(node ast.Node) string {
	p.buf.Reset()
	p.node(node)
	return p.buf.String()
}

func (p *Printer) line(format string, args ...interface{}) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *Printer) nested(fn func()) {
	p.indent++
	fn()
	p.indent--
}

func (p *Printer) typeSuffix(v ast.Value) string {
	if !p.ShowTypes || v.ResolvedType() == nil {
		return ""
	}
	return " :: " + ast.FormatType(v.ResolvedType())
}

func (p *Printer) node(node ast.Node) {
	switch n := node.(type) {
	case nil:
		p.line("<nil>")

	case *ast.TranslationUnit:
		p.line("translation_unit %q", n.File)
		p.nested(func() {
			for _, d := range n.Declarations {
				p.node(d)
			}
		})

	case *ast.DeclarationVariable:
		p.line("let %s: %s", n.Name, ast.FormatType(declaredType(n)))
		if n.InitialValue != nil {
			p.nested(func() { p.node(n.InitialValue) })
		}

	case *ast.DeclarationFunction:
		p.line("func %s -> %s", n.Name, ast.FormatType(n.ReturnType))
		p.nested(func() {
			for _, arg := range n.Args {
				p.line("arg %s: %s", arg.Name, ast.FormatType(arg.Type))
			}
			p.node(n.Body)
		})

	case *ast.DeclarationTypeAlias:
		p.line("type %s = %s", n.Name, ast.FormatType(n.Type))

	case *ast.DeclarationStructuredType:
		p.line("struct %s", n.Name)
		p.nested(func() {
			for _, parent := range n.Inherits {
				p.line("inherits %s", parent.Name)
			}
			for _, m := range n.Members {
				p.node(m)
			}
		})

	case *ast.DeclarationNamespace:
		p.line("namespace %s", n.Name)
		p.nested(func() {
			for _, m := range n.Members {
				p.node(m)
			}
		})

	case *ast.StatementBlock:
		p.line("block")
		p.nested(func() {
			for _, s := range n.Statements {
				p.node(s)
			}
		})

	case *ast.StatementBasic:
		p.line("%s", n.BasicKind)

	case *ast.StatementValue:
		if n.ValueKind == ast.StatementReturn {
			p.line("return")
		} else {
			p.line("execute")
		}
		p.nested(func() { p.node(n.Value) })

	case *ast.StatementDeclaration:
		p.node(n.Declaration)

	case *ast.StatementIf:
		p.line("if")
		p.nested(func() {
			p.node(n.Condition)
			p.node(n.Then)
			if n.Else != nil {
				p.line("else")
				p.nested(func() { p.node(n.Else) })
			}
		})

	case *ast.StatementWhile:
		if n.IsDoWhile {
			p.line("do-while")
		} else {
			p.line("while")
		}
		p.nested(func() {
			p.node(n.Condition)
			p.node(n.Body)
		})

	case *ast.ValueLiteralBool:
		p.line("%t%s", n.Value, p.typeSuffix(n))

	case *ast.ValueLiteralNumber:
		if n.Type != nil && n.Type.NumericKind == ast.NumericFloat {
			p.line("%s%s", strconv.FormatFloat(n.Value.F, 'g', -1, 64), p.typeSuffix(n))
		} else {
			p.line("%d%s", n.Value.U, p.typeSuffix(n))
		}

	case *ast.ValueSymbol:
		p.line("%s%s", n.Name, p.typeSuffix(n))

	case *ast.ValueUnary:
		p.line("unary %s%s", n.Operator, p.typeSuffix(n))
		p.nested(func() { p.node(n.Operand) })

	case *ast.ValueBinary:
		p.line("binary %s%s", n.Operator, p.typeSuffix(n))
		p.nested(func() {
			p.node(n.LHS)
			p.node(n.RHS)
		})

	case *ast.ValueCall:
		p.line("call%s", p.typeSuffix(n))
		p.nested(func() {
			p.node(n.Callee)
			for _, arg := range n.Args {
				p.node(arg)
			}
		})

	case *ast.ValueCast:
		p.line("cast as %s%s", ast.FormatType(n.Type), p.typeSuffix(n))
		p.nested(func() { p.node(n.Value) })

	default:
		p.line("<%s>", node.Kind())
	}
}

func declaredType(d *ast.DeclarationVariable) ast.Type {
	if d.Type != nil {
		return d.Type
	}
	return d.ResolvedType()
}
