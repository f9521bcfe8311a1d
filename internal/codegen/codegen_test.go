package codegen

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/forge-lang/forge/internal/analyzer"
	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/interp"
	"github.com/forge-lang/forge/internal/ir"
	"github.com/forge-lang/forge/internal/lexer"
	"github.com/forge-lang/forge/internal/parser"
	"github.com/forge-lang/forge/internal/pipeline"
)

// compile runs the full pipeline and returns the IR module.
func compile(t *testing.T, input string) (*ir.Module, *pipeline.PipelineContext) {
	t.Helper()
	ctx := pipeline.NewContext("test.fg", input)
	l := lexer.New(input, "test.fg")
	ctx.TokenStream = l.Tokenize()
	for _, err := range l.Errors() {
		ctx.AddError(err)
	}
	p := parser.New(ctx.TokenStream, ctx)
	ctx.AstRoot = p.ParseTranslationUnit()
	analyzer.New().Analyze(ctx)

	if ctx.HasErrors() {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("input does not compile:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}

	tu := ctx.AstRoot.(*ast.TranslationUnit)
	module := New(ctx).Generate(tu)
	ctx.IRModule = module
	ctx.IRText = module.String()
	return module, ctx
}

// run executes a compiled function in the interpreter.
func run(t *testing.T, module *ir.Module, name string, args ...interp.Value) interp.Value {
	t.Helper()
	result, err := interp.New(module).Run(name, args...)
	if err != nil {
		t.Fatalf("running %s: %v", name, err)
	}
	return result
}

func i32Arg(v int32) interp.Value {
	return interp.Value{Type: ir.IntType(32), I: uint64(uint32(v))}
}

func u8Arg(v uint8) interp.Value {
	return interp.Value{Type: ir.IntType(8), I: uint64(v)}
}

func signedResult(v interp.Value) int64 {
	bits := v.Type.Bits
	if bits == 0 || bits >= 64 {
		return int64(v.I)
	}
	shift := 64 - bits
	return int64(v.I<<shift) >> shift
}

// requireContains fails the test with a unified diff when the emitted IR
// does not contain want.
func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if strings.Contains(got, want) {
		return
	}
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want-fragment",
		ToFile:   "emitted",
		Context:  2,
	})
	t.Errorf("emitted IR is missing %q:\n%s", want, text)
}

func TestIdentityFunction(t *testing.T) {
	module, ctx := compile(t, `func f(a: u8) -> u8 { return a; }`)

	f := module.Func("f")
	if f == nil {
		t.Fatal("expected a function named f")
	}
	if len(f.Params) != 1 || !f.Params[0].Type.Equal(ir.IntType(8)) {
		t.Errorf("expected one i8 parameter")
	}
	if !f.RetType.Equal(ir.IntType(8)) {
		t.Errorf("expected i8 return type")
	}

	requireContains(t, ctx.IRText, "define i8 @f(i8 %a)")
	requireContains(t, ctx.IRText, "ret i8")

	result := run(t, module, "f", u8Arg(42))
	if result.I != 42 {
		t.Errorf("f(42) = %d, want 42", result.I)
	}
}

func TestImplicitWideningZeroExtends(t *testing.T) {
	module, ctx := compile(t, `func f(a: u8) -> u16 { return a; }`)

	requireContains(t, ctx.IRText, "zext i8")
	requireContains(t, ctx.IRText, "to i16")

	result := run(t, module, "f", u8Arg(200))
	if result.I != 200 {
		t.Errorf("f(200) = %d, want 200", result.I)
	}
}

func TestSignedWideningSignExtends(t *testing.T) {
	_, ctx := compile(t, `func f(a: i8) -> i32 { return a; }`)
	requireContains(t, ctx.IRText, "sext i8")
}

func TestAbsPrunesAfterBlock(t *testing.T) {
	module, _ := compile(t, `
func abs(x: i32) -> i32 {
	if (x < 0) { return -x; } else { return x; }
}
`)

	f := module.Func("abs")
	for _, b := range f.Blocks {
		if strings.HasPrefix(b.Name, "after") {
			t.Errorf("the after block should have been pruned, found %q", b.Name)
		}
		if b.Term == nil {
			t.Errorf("block %q has no terminator", b.Name)
		}
	}

	if got := signedResult(run(t, module, "abs", i32Arg(-5))); got != 5 {
		t.Errorf("abs(-5) = %d, want 5", got)
	}
	if got := signedResult(run(t, module, "abs", i32Arg(7))); got != 7 {
		t.Errorf("abs(7) = %d, want 7", got)
	}
}

func TestIfWithoutElseFallsThrough(t *testing.T) {
	module, _ := compile(t, `
func clamp(x: i32) -> i32 {
	if (x < 0) { return 0; }
	return x;
}
`)
	if got := signedResult(run(t, module, "clamp", i32Arg(-3))); got != 0 {
		t.Errorf("clamp(-3) = %d, want 0", got)
	}
	if got := signedResult(run(t, module, "clamp", i32Arg(9))); got != 9 {
		t.Errorf("clamp(9) = %d, want 9", got)
	}
}

func TestWhileLoop(t *testing.T) {
	module, _ := compile(t, `
func sum(n: i32) -> i32 {
	let total = 0;
	let i = 0;
	while (i < n) {
		i = i + 1;
		total = total + i;
	}
	return total;
}
`)
	if got := signedResult(run(t, module, "sum", i32Arg(4))); got != 10 {
		t.Errorf("sum(4) = %d, want 10", got)
	}
	if got := signedResult(run(t, module, "sum", i32Arg(0))); got != 0 {
		t.Errorf("sum(0) = %d, want 0", got)
	}
}

func TestDoWhileRunsBodyOnce(t *testing.T) {
	module, _ := compile(t, `
func once() -> i32 {
	let n = 0;
	do {
		n = n + 1;
	} while (false);
	return n;
}
`)
	if got := signedResult(run(t, module, "once")); got != 1 {
		t.Errorf("once() = %d, want 1", got)
	}
}

func TestBreakAndContinue(t *testing.T) {
	module, _ := compile(t, `
func evensum(n: i32) -> i32 {
	let total = 0;
	let i = 0;
	while (true) {
		i = i + 1;
		if (i > n) { break; }
		if (i % 2 == 1) { continue; }
		total = total + i;
	}
	return total;
}
`)
	// 2 + 4 + 6 = 12
	if got := signedResult(run(t, module, "evensum", i32Arg(6))); got != 12 {
		t.Errorf("evensum(6) = %d, want 12", got)
	}
}

func TestCompoundAssignment(t *testing.T) {
	module, _ := compile(t, `
func twice(x: i32) -> i32 {
	let y = x;
	y += x;
	return y;
}
`)
	if got := signedResult(run(t, module, "twice", i32Arg(21))); got != 42 {
		t.Errorf("twice(21) = %d, want 42", got)
	}
}

func TestCallBetweenFunctions(t *testing.T) {
	module, _ := compile(t, `
func double(x: i32) -> i32 { return x * 2; }
func quad(x: i32) -> i32 { return double(double(x)); }
`)
	if got := signedResult(run(t, module, "quad", i32Arg(3))); got != 12 {
		t.Errorf("quad(3) = %d, want 12", got)
	}
}

func TestNamespaceFunctionsGetQualifiedNames(t *testing.T) {
	module, ctx := compile(t, `
namespace math {
	func add(a: i32, b: i32) -> i32 { return a + b; }
}
func f() -> i32 { return math.add(20, 22); }
`)
	requireContains(t, ctx.IRText, "@math.add")
	if got := signedResult(run(t, module, "f")); got != 42 {
		t.Errorf("f() = %d, want 42", got)
	}
}

func TestExplicitCast(t *testing.T) {
	module, _ := compile(t, `
func low(x: i32) -> u8 { return x as u8; }
`)
	if got := run(t, module, "low", i32Arg(0x1FF)); got.I != 0xFF {
		t.Errorf("low(0x1FF) = %d, want 255", got.I)
	}
}

func TestMixedSignComparisonUsesContainingType(t *testing.T) {
	module, ctx := compile(t, `
func less(a: i8, b: u8) -> bool { return a < b; }
`)
	// i8 vs u8 compare in i16, signed
	requireContains(t, ctx.IRText, "icmp slt i16")

	negOne := int8(-1)
	if got := run(t, module, "less",
		interp.Value{Type: ir.IntType(8), I: uint64(uint8(negOne))},
		interp.Value{Type: ir.IntType(8), I: 200}); got.I != 1 {
		t.Error("less(-1, 200) should be true")
	}
}

func TestPowLowersToIntrinsic(t *testing.T) {
	module, ctx := compile(t, `
func cube(x: i32) -> i32 { return x ** 3; }
`)
	requireContains(t, ctx.IRText, "@forge.pow.f64")

	if got := signedResult(run(t, module, "cube", i32Arg(4))); got != 64 {
		t.Errorf("cube(4) = %d, want 64", got)
	}
}

func TestFloatArithmetic(t *testing.T) {
	module, _ := compile(t, `
func mean(a: f64, b: f64) -> f64 { return (a + b) / 2.0; }
`)
	got := run(t, module, "mean",
		interp.Value{Type: ir.FloatType(64), F: 3},
		interp.Value{Type: ir.FloatType(64), F: 5})
	if got.F != 4 {
		t.Errorf("mean(3, 5) = %g, want 4", got.F)
	}
}

func TestPointerRoundTrip(t *testing.T) {
	module, _ := compile(t, `
func set(x: i32) -> i32 {
	let v = 0;
	let p = &v;
	*p = x;
	return v;
}
`)
	if got := signedResult(run(t, module, "set", i32Arg(11))); got != 11 {
		t.Errorf("set(11) = %d, want 11", got)
	}
}

func TestUnreachableStatementReported(t *testing.T) {
	ctx := pipeline.NewContext("test.fg", "")
	input := `
func f() -> i32 {
	return 1;
	return 2;
}
`
	l := lexer.New(input, "test.fg")
	ctx.TokenStream = l.Tokenize()
	p := parser.New(ctx.TokenStream, ctx)
	ctx.AstRoot = p.ParseTranslationUnit()
	analyzer.New().Analyze(ctx)
	if ctx.HasErrors() {
		t.Fatalf("analysis should be clean, codegen reports the violation")
	}

	tu := ctx.AstRoot.(*ast.TranslationUnit)
	New(ctx).Generate(tu)
	if !ctx.HasErrors() {
		t.Fatal("expected codegen to report the unreachable statement")
	}
}

func TestVoidFunction(t *testing.T) {
	module, ctx := compile(t, `func noop() { }`)
	requireContains(t, ctx.IRText, "define void @noop()")
	requireContains(t, ctx.IRText, "ret void")

	result := run(t, module, "noop")
	if !result.Type.IsVoid() {
		t.Errorf("expected a void result")
	}
}
