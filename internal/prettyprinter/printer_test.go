package prettyprinter

import (
	"strings"
	"testing"

	"github.com/forge-lang/forge/internal/ast"
)

func TestPrintFunction(t *testing.T) {
	fn := &ast.DeclarationFunction{
		Name: "abs",
		Args: []*ast.DeclarationVariable{{
			Name: "x",
			Type: &ast.TypeWithBitWidth{NumericKind: ast.NumericSignedInt, BitWidth: 32},
		}},
		ReturnType: &ast.TypeWithBitWidth{NumericKind: ast.NumericSignedInt, BitWidth: 32},
		Body: &ast.StatementBlock{
			Statements: []ast.Statement{
				&ast.StatementValue{
					ValueKind: ast.StatementReturn,
					Value:     &ast.ValueSymbol{Name: "x"},
				},
			},
		},
	}
	tu := &ast.TranslationUnit{File: "abs.fg", Declarations: []ast.Declaration{fn}}

	out := New().Print(tu)

	for _, want := range []string{
		`translation_unit "abs.fg"`,
		"func abs -> i32",
		"arg x: i32",
		"block",
		"return",
		"x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestShowTypes(t *testing.T) {
	sym := &ast.ValueSymbol{Name: "x"}
	sym.SetResolvedType(&ast.TypeWithBitWidth{NumericKind: ast.NumericUnsignedInt, BitWidth: 8})

	p := New()
	p.ShowTypes = true
	out := p.Print(sym)
	if !strings.Contains(out, "x :: u8") {
		t.Errorf("expected type annotation, got %q", out)
	}

	p.ShowTypes = false
	out = p.Print(sym)
	if strings.Contains(out, "::") {
		t.Errorf("did not expect type annotation, got %q", out)
	}
}

func TestIndentationNesting(t *testing.T) {
	inner := &ast.ValueBinary{
		Operator: ast.BinaryAdd,
		LHS:      &ast.ValueSymbol{Name: "a"},
		RHS:      &ast.ValueSymbol{Name: "b"},
	}
	out := New().Print(inner)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	if !strings.HasPrefix(lines[1], "  ") {
		t.Errorf("children should be indented: %q", lines[1])
	}
}
