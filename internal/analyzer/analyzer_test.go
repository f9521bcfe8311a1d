package analyzer

import (
	"strings"
	"testing"

	"github.com/forge-lang/forge/internal/ast"
	"github.com/forge-lang/forge/internal/diagnostics"
	"github.com/forge-lang/forge/internal/lexer"
	"github.com/forge-lang/forge/internal/parser"
	"github.com/forge-lang/forge/internal/pipeline"
)

// analyzeSource lexes, parses and analyzes input, returning the final
// pipeline context with all diagnostics.
func analyzeSource(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := pipeline.NewContext("test.fg", input)
	l := lexer.New(input, "test.fg")
	ctx.TokenStream = l.Tokenize()
	for _, err := range l.Errors() {
		ctx.AddError(err)
	}
	p := parser.New(ctx.TokenStream, ctx)
	ctx.AstRoot = p.ParseTranslationUnit()
	New().Analyze(ctx)
	return ctx
}

func errorMessages(ctx *pipeline.PipelineContext) string {
	var msgs []string
	for _, e := range ctx.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// expectDiagnostic asserts at least one diagnostic with the given code.
func expectDiagnostic(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	ctx := analyzeSource(t, input)
	for _, e := range ctx.Errors {
		if e.Code == code {
			return e
		}
	}
	t.Fatalf("expected diagnostic %s, got:\n%s\ninput: %s", code, errorMessages(ctx), input)
	return nil
}

func expectClean(t *testing.T, input string) *pipeline.PipelineContext {
	t.Helper()
	ctx := analyzeSource(t, input)
	if len(ctx.Errors) > 0 {
		t.Fatalf("expected no diagnostics, got:\n%s\ninput: %s", errorMessages(ctx), input)
	}
	return ctx
}

func firstFunction(t *testing.T, ctx *pipeline.PipelineContext) *ast.DeclarationFunction {
	t.Helper()
	tu := ctx.AstRoot.(*ast.TranslationUnit)
	for _, d := range tu.Declarations {
		if fn, ok := d.(*ast.DeclarationFunction); ok {
			return fn
		}
	}
	t.Fatal("no function declaration in test input")
	return nil
}

// ---------------------------------------------------------------------------
// End-to-end scenarios
// ---------------------------------------------------------------------------

func TestScenarioIdentityFunction(t *testing.T) {
	ctx := expectClean(t, `func f(a: u8) -> u8 { return a; }`)
	fn := firstFunction(t, ctx)

	fnType, ok := fn.ResolvedType().(*ast.TypeFunction)
	if !ok {
		t.Fatalf("expected a resolved function type, got %s", ast.FormatType(fn.ResolvedType()))
	}
	if ast.FormatType(fnType.ReturnType) != "u8" {
		t.Errorf("expected u8 return, got %s", ast.FormatType(fnType.ReturnType))
	}
	if len(fnType.ArgTypes) != 1 || ast.FormatType(fnType.ArgTypes[0]) != "u8" {
		t.Errorf("expected [u8] args, got %s", ast.FormatType(fnType))
	}
}

func TestScenarioImplicitWidening(t *testing.T) {
	ctx := expectClean(t, `func f(a: u8) -> u16 { return a; }`)
	fn := firstFunction(t, ctx)

	// the return value itself keeps its own type; widening is codegen's job
	ret := fn.Body.Statements[0].(*ast.StatementValue)
	if ast.FormatType(ret.Value.ResolvedType()) != "u8" {
		t.Errorf("expected the returned value to stay u8, got %s",
			ast.FormatType(ret.Value.ResolvedType()))
	}
}

func TestScenarioSignednessMismatch(t *testing.T) {
	ctx := analyzeSource(t, `func f(a: u8) -> i8 { return a; }`)
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected exactly one diagnostic, got:\n%s", errorMessages(ctx))
	}
	err := ctx.Errors[0]
	if err.Code != diagnostics.ErrETY005 {
		t.Fatalf("expected %s, got %s", diagnostics.ErrETY005, err.Code)
	}
	suggested := false
	for _, note := range err.Notes {
		if note.Severity == diagnostics.SeveritySuggestion &&
			strings.Contains(note.Message, "use `as` to cast between types") {
			suggested = true
		}
	}
	if !suggested {
		t.Errorf("expected the cast suggestion, got: %s", err.Error())
	}
}

func TestScenarioBitwiseOnFloats(t *testing.T) {
	ctx := analyzeSource(t, `func f(a: f32, b: f32) -> f32 { return a & b; }`)
	if len(ctx.Errors) != 2 {
		t.Fatalf("expected exactly two diagnostics, got:\n%s", errorMessages(ctx))
	}
	for _, err := range ctx.Errors {
		if err.Code != diagnostics.ErrETY004 {
			t.Errorf("expected %s, got %s", diagnostics.ErrETY004, err.Code)
		}
		if !strings.Contains(err.Message, "integer type") {
			t.Errorf("expected 'integer type' in message, got %q", err.Message)
		}
	}
	if ctx.Errors[0].Token.Column == ctx.Errors[1].Token.Column {
		t.Error("expected one diagnostic per operand")
	}
}

func TestScenarioAbs(t *testing.T) {
	expectClean(t, `
func abs(x: i32) -> i32 {
	if (x < 0) { return -x; } else { return x; }
}
`)
}

// ---------------------------------------------------------------------------
// Well-formedness
// ---------------------------------------------------------------------------

func runWellFormed(ctx *pipeline.PipelineContext, root ast.Node) *pipeline.PipelineContext {
	ctx.AstRoot = root
	New().Analyze(ctx)
	return ctx
}

func TestWellFormedNullChild(t *testing.T) {
	root := &ast.TranslationUnit{
		Declarations: []ast.Declaration{
			&ast.DeclarationFunction{
				Name:       "f",
				ReturnType: &ast.TypeBasic{BasicKind: ast.TypeBasicVoid},
				Body: &ast.StatementBlock{
					Statements: []ast.Statement{
						&ast.StatementValue{ValueKind: ast.StatementReturn, Value: nil},
					},
				},
			},
		},
	}
	ctx := runWellFormed(pipeline.NewContext("test.fg", ""), root)

	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrISY000 {
		t.Fatalf("expected %s, got:\n%s", diagnostics.ErrISY000, errorMessages(ctx))
	}
	if !strings.Contains(ctx.Errors[0].Message, "value") {
		t.Errorf("expected the offending field name, got %q", ctx.Errors[0].Message)
	}
}

func TestWellFormedBitWidth(t *testing.T) {
	root := &ast.TranslationUnit{
		Declarations: []ast.Declaration{
			&ast.DeclarationVariable{
				Name: "x",
				Type: &ast.TypeWithBitWidth{NumericKind: ast.NumericSignedInt, BitWidth: 7},
			},
		},
	}
	ctx := runWellFormed(pipeline.NewContext("test.fg", ""), root)

	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrISY000 {
		t.Fatalf("expected %s, got:\n%s", diagnostics.ErrISY000, errorMessages(ctx))
	}
	if !strings.Contains(ctx.Errors[0].Message, "invalid bit width for integer: 7") {
		t.Errorf("unexpected message: %q", ctx.Errors[0].Message)
	}
}

func TestWellFormedEmptyName(t *testing.T) {
	root := &ast.TranslationUnit{
		Declarations: []ast.Declaration{&ast.DeclarationVariable{
			Name: "",
			Type: &ast.TypeBasic{BasicKind: ast.TypeBasicBool},
		}},
	}
	ctx := runWellFormed(pipeline.NewContext("test.fg", ""), root)
	if len(ctx.Errors) == 0 || ctx.Errors[0].Code != diagnostics.ErrISY000 {
		t.Fatalf("expected %s, got:\n%s", diagnostics.ErrISY000, errorMessages(ctx))
	}
}

// P2: a clean well-formedness run means later passes never report ISY000.
func TestWellFormednessDominance(t *testing.T) {
	ctx := analyzeSource(t, `
func f(a: u8) -> i8 { return a; }
func g() -> bool { return 1 && true; }
`)
	for _, err := range ctx.Errors {
		if err.Code == diagnostics.ErrISY000 {
			t.Errorf("parser output must never be ill-formed: %s", err.Error())
		}
	}
}

// ---------------------------------------------------------------------------
// Symbol resolution
// ---------------------------------------------------------------------------

func TestUnknownSymbol(t *testing.T) {
	err := expectDiagnostic(t, `func f() -> i32 { return nope; }`, diagnostics.ErrESC001)
	if !strings.Contains(err.Message, "nope") {
		t.Errorf("expected the symbol name in the message, got %q", err.Message)
	}
}

func TestUnknownTypeSymbol(t *testing.T) {
	expectDiagnostic(t, `let x: Missing;`, diagnostics.ErrESC001)
}

func TestDuplicateDeclaration(t *testing.T) {
	expectDiagnostic(t, `
func f() {
	let x = 1;
	let x = 2;
}
`, diagnostics.ErrESC003)
}

func TestShadowingFunctionArgWarns(t *testing.T) {
	err := expectDiagnostic(t, `
func f(a: i32) -> i32 {
	let a = 2;
	return a;
}
`, diagnostics.WarnWSC001)
	if err.Severity != diagnostics.SeverityWarning {
		t.Errorf("expected warning severity, got %s", err.Severity)
	}
}

func TestBlockScopeShadowingOuterIsSilent(t *testing.T) {
	expectClean(t, `
let g: i32 = 1;
func f() -> i32 {
	let g: i32 = 2;
	return g;
}
`)
}

func TestUseBeforeDeclarationInBlock(t *testing.T) {
	expectDiagnostic(t, `
func f() -> i32 {
	let a = b;
	let b = 2;
	return a;
}
`, diagnostics.ErrESC001)
}

// P5: a resolved symbol is findable from its innermost enclosing scope.
func TestScopeChaining(t *testing.T) {
	ctx := expectClean(t, `
func f(a: i32) -> i32 {
	let b = a;
	{
		let c = b;
		return c;
	}
}
`)
	fn := firstFunction(t, ctx)
	inner := fn.Body.Statements[1].(*ast.StatementBlock)

	ret := inner.Statements[1].(*ast.StatementValue)
	symbol := ret.Value.(*ast.ValueSymbol)
	if symbol.ReferencedDeclaration == nil {
		t.Fatal("expected c to be resolved")
	}
	if inner.Scope == nil {
		t.Fatal("expected the inner block to own a scope")
	}
	if inner.Scope.Lookup("c") != symbol.ReferencedDeclaration {
		t.Error("the innermost scope must find the same declaration")
	}
	if inner.Scope.Lookup("a") == nil || inner.Scope.Lookup("b") == nil {
		t.Error("outer names must be reachable through the scope chain")
	}
}

// ---------------------------------------------------------------------------
// Type resolution
// ---------------------------------------------------------------------------

func TestVariableTypeFromInitializer(t *testing.T) {
	ctx := expectClean(t, `func f() { let x = 5u16; }`)
	fn := firstFunction(t, ctx)
	decl := fn.Body.Statements[0].(*ast.StatementDeclaration).Declaration
	if ast.FormatType(decl.ResolvedType()) != "u16" {
		t.Errorf("expected u16 from the initializer, got %s", ast.FormatType(decl.ResolvedType()))
	}
}

func TestArithmeticResultTypes(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"1u8 + 2u8", "u8"},
		{"1u8 + 2u16", "u16"},
		{"1i8 + 2u8", "i16"},
		{"1.0 + 2.0", "f64"},
		{"1u8 + 2.0f32", "f32"},
		{"1 < 2", "bool"},
		{"true && false", "bool"},
	}
	for _, tc := range cases {
		ctx := expectClean(t, "func f() { let r = "+tc.expr+"; }")
		fn := firstFunction(t, ctx)
		decl := fn.Body.Statements[0].(*ast.StatementDeclaration).Declaration
		if got := ast.FormatType(decl.ResolvedType()); got != tc.want {
			t.Errorf("%q: expected %s, got %s", tc.expr, tc.want, got)
		}
	}
}

func TestDerefAndGetAddrTypes(t *testing.T) {
	ctx := expectClean(t, `
func f(p: *i32) -> i32 {
	let addr = &p;
	return *p;
}
`)
	fn := firstFunction(t, ctx)
	decl := fn.Body.Statements[0].(*ast.StatementDeclaration).Declaration
	if got := ast.FormatType(decl.ResolvedType()); got != "**i32" {
		t.Errorf("expected **i32 for &p, got %s", got)
	}
	ret := fn.Body.Statements[1].(*ast.StatementValue)
	if got := ast.FormatType(ret.Value.ResolvedType()); got != "i32" {
		t.Errorf("expected i32 for *p, got %s", got)
	}
}

func TestCallResultType(t *testing.T) {
	ctx := expectClean(t, `
func g() -> u16 { return 1u16; }
func f() -> u16 { return g(); }
`)
	// f is the second declaration; its return value is the call g()
	fn := ctx.AstRoot.(*ast.TranslationUnit).Declarations[1].(*ast.DeclarationFunction)
	ret := fn.Body.Statements[0].(*ast.StatementValue)
	if got := ast.FormatType(ret.Value.ResolvedType()); got != "u16" {
		t.Errorf("expected u16, got %s", got)
	}
}

func TestTypeAliasResolution(t *testing.T) {
	expectClean(t, `
type Byte = u8;
func f(b: Byte) -> u16 { return b; }
`)
}

func TestStructuredTypeMembers(t *testing.T) {
	ctx := expectClean(t, `
struct Point {
	x: i32;
	y: i32;
}
struct Point3 inherits Point {
	z: i32;
}
`)
	tu := ctx.AstRoot.(*ast.TranslationUnit)
	point3 := tu.Declarations[1].(*ast.DeclarationStructuredType)
	structured, ok := point3.ResolvedType().(*ast.TypeStructured)
	if !ok {
		t.Fatalf("expected a structured type, got %s", ast.FormatType(point3.ResolvedType()))
	}
	if len(structured.Members) != 3 {
		t.Errorf("expected 3 merged members, got %d", len(structured.Members))
	}
}

func TestMemberShadowsInherited(t *testing.T) {
	expectDiagnostic(t, `
struct Point {
	x: i32;
}
struct Bad inherits Point {
	x: i32;
}
`, diagnostics.ErrESC002)
}

func TestSiblingDuplicateMembersError(t *testing.T) {
	expectDiagnostic(t, `
struct A {
	v: i32;
}
struct B {
	v: i32;
}
struct Bad inherits A, B {
}
`, diagnostics.ErrESC002)
}

func TestMemberAccessType(t *testing.T) {
	ctx := expectClean(t, `
struct Point {
	x: i32;
	y: i32;
}
func f(p: Point) -> i32 { return p.x; }
`)
	fn := firstFunction(t, ctx)
	ret := fn.Body.Statements[0].(*ast.StatementValue)
	if got := ast.FormatType(ret.Value.ResolvedType()); got != "i32" {
		t.Errorf("expected i32 for p.x, got %s", got)
	}
}

func TestMissingMember(t *testing.T) {
	expectDiagnostic(t, `
struct Point {
	x: i32;
}
func f(p: Point) -> i32 { return p.z; }
`, diagnostics.ErrETY011)
}

func TestNamespaceQualifiedCall(t *testing.T) {
	expectClean(t, `
namespace math {
	func add(a: i32, b: i32) -> i32 { return a + b; }
}
func f() -> i32 { return math.add(1, 2); }
`)
}

func TestNamespaceMissingMember(t *testing.T) {
	expectDiagnostic(t, `
namespace math {
	func add(a: i32, b: i32) -> i32 { return a + b; }
}
func f() -> i32 { return math.sub(1, 2); }
`, diagnostics.ErrETY011)
}

// ---------------------------------------------------------------------------
// Type validation
// ---------------------------------------------------------------------------

func TestBoolOperatorRules(t *testing.T) {
	expectDiagnostic(t, `func f(a: i32) -> bool { return !a; }`, diagnostics.ErrETY004)
	expectDiagnostic(t, `func f(a: i32) -> bool { return a && true; }`, diagnostics.ErrETY004)
	expectClean(t, `func f(a: bool) -> bool { return !a && true; }`)
}

func TestBitNotRequiresInteger(t *testing.T) {
	expectDiagnostic(t, `func f(a: f64) -> f64 { return ~a; }`, diagnostics.ErrETY004)
	expectClean(t, `func f(a: u8) -> u8 { return ~a; }`)
}

func TestNegOnUnsignedWarns(t *testing.T) {
	ctx := analyzeSource(t, `func f(a: u8) -> u8 { return -a; }`)
	var warned bool
	for _, err := range ctx.Errors {
		if err.Code == diagnostics.ErrETY004 && err.Severity == diagnostics.SeverityWarning {
			warned = true
		}
		if err.Severity == diagnostics.SeverityError {
			t.Errorf("expected no errors, got %s", err.Error())
		}
	}
	if !warned {
		t.Error("expected a warning for negating an unsigned value")
	}
}

func TestDerefRequiresPointer(t *testing.T) {
	expectDiagnostic(t, `func f(a: i32) -> i32 { return *a; }`, diagnostics.ErrETY004)
}

func TestGetAddrRequiresLValue(t *testing.T) {
	expectDiagnostic(t, `func f() { let p = &3; }`, diagnostics.ErrETY004)
	expectClean(t, `func f(a: i32) { let p = &a; }`)
}

func TestAssignmentRequiresLValue(t *testing.T) {
	expectDiagnostic(t, `func f() { 3 = 4; }`, diagnostics.ErrETY004)
	expectDiagnostic(t, `func f(a: i32) { (a + 1) += 2; }`, diagnostics.ErrETY004)
	expectClean(t, `func f(a: i32) { a += 2; }`)
}

func TestAssignmentRequiresImplicitCast(t *testing.T) {
	expectDiagnostic(t, `func f(a: u8) { a = 1i32; }`, diagnostics.ErrETY005)
	expectClean(t, `func f(a: u16) { a = 1u8; }`)
}

func TestCallValidation(t *testing.T) {
	expectDiagnostic(t, `func f(a: i32) -> i32 { return a(); }`, diagnostics.ErrETY008)
	expectDiagnostic(t, `
func g(a: i32) -> i32 { return a; }
func f() -> i32 { return g(); }
`, diagnostics.ErrETY007)
	expectDiagnostic(t, `
func g(a: u8) -> u8 { return a; }
func f() -> u8 { return g(1i32); }
`, diagnostics.ErrETY005)
	expectClean(t, `
func g(a: u16) -> u16 { return a; }
func f() -> u16 { return g(1u8); }
`)
}

func TestCastValidation(t *testing.T) {
	expectClean(t, `func f(a: u8) -> i8 { return a as i8; }`)
	expectDiagnostic(t, `func f(a: bool) -> i8 { return a as i8; }`, diagnostics.ErrETY006)
}

func TestReturnRules(t *testing.T) {
	expectDiagnostic(t, `func f() -> i32 { return; }`, diagnostics.ErrETY009)
	expectDiagnostic(t, `func f() { return 1; }`, diagnostics.ErrETY010)
	expectClean(t, `func f() { return; }`)
}

func TestConditionMustBeBool(t *testing.T) {
	expectDiagnostic(t, `func f(a: i32) { if (a) { } }`, diagnostics.ErrETY004)
	expectDiagnostic(t, `func f(a: i32) { while (a) { } }`, diagnostics.ErrETY004)
	expectClean(t, `func f(a: bool) { while (a) { } }`)
}

func TestVoidVariableRejected(t *testing.T) {
	expectDiagnostic(t, `func f() { let x: void; }`, diagnostics.ErrETY004)
}

func TestVoidPointerRejected(t *testing.T) {
	expectDiagnostic(t, `func f(p: *void) { }`, diagnostics.ErrETY002)
}

func TestNamespaceMemberInStructRejected(t *testing.T) {
	expectDiagnostic(t, `
struct S {
	namespace inner { }
}
`, diagnostics.ErrETY004)
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// P1: re-running resolution over an already-resolved tree is silent and
// stable.
func TestResolutionIdempotence(t *testing.T) {
	input := `
type Byte = u8;
func add(a: i32, b: i32) -> i32 { return a + b; }
func f(x: Byte) -> i32 {
	let y = add(x as i32, 2);
	return y;
}
`
	ctx := expectClean(t, input)
	fn := firstFunction(t, ctx)
	firstType := ast.FormatType(fn.ResolvedType())

	New().Analyze(ctx)
	if len(ctx.Errors) != 0 {
		t.Fatalf("second run produced diagnostics:\n%s", errorMessages(ctx))
	}
	if got := ast.FormatType(fn.ResolvedType()); got != firstType {
		t.Errorf("resolved type changed across runs: %s vs %s", firstType, got)
	}
}

func TestUnknownSymbolSkipsDownstreamTypeWork(t *testing.T) {
	// exactly one diagnostic: the unknown symbol; no cascading type errors
	ctx := analyzeSource(t, `func f() -> i32 { return nope + 1; }`)
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected exactly one diagnostic, got:\n%s", errorMessages(ctx))
	}
	if ctx.Errors[0].Code != diagnostics.ErrESC001 {
		t.Errorf("expected %s, got %s", diagnostics.ErrESC001, ctx.Errors[0].Code)
	}
}
