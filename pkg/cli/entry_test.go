package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// projectWithoutCache keeps tests away from the user-level cache dir.
func projectWithoutCache(t *testing.T, dir string) {
	t.Helper()
	writeSource(t, dir, "forge.yaml", "cache: false\n")
}

func TestCompileWritesLL(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "id.fg", "func f(a: u8) -> u8 { return a; }\n")

	var out, errOut bytes.Buffer
	code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\nstderr: %s", code, errOut.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "id.ll"))
	if err != nil {
		t.Fatalf("expected id.ll to be written: %v", err)
	}
	if !strings.Contains(string(data), "define i8 @f(i8 %a)") {
		t.Errorf("unexpected IR:\n%s", data)
	}
}

func TestCompileReportsErrors(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "bad.fg", "func f(a: u8) -> i8 { return a; }\n")

	var out, errOut bytes.Buffer
	code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), "ETY005") {
		t.Errorf("expected ETY005 on stderr, got:\n%s", errOut.String())
	}
}

func TestWarningsDoNotFailWithoutWerror(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "warn.fg", "func f() -> u8 { return 256u8; }\n")

	var out, errOut bytes.Buffer
	if code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut}); code != 0 {
		t.Fatalf("expected exit 0, got %d\nstderr: %s", code, errOut.String())
	}
	if !strings.Contains(errOut.String(), "WSY001") {
		t.Errorf("expected the warning to be rendered, got:\n%s", errOut.String())
	}

	var errOut2 bytes.Buffer
	code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut2, WarningsAsErrors: true, NoCache: true})
	if code != 1 {
		t.Fatalf("expected exit 1 with -Werror, got %d", code)
	}
}

func TestJITRunsMain(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "main.fg", `
func main() -> i32 {
	let n = 6;
	let target = n * 7;
	return target - 42;
}
`)

	var out, errOut bytes.Buffer
	code := JIT(path, Options{Out: &out, ErrOut: &errOut})
	if code != 0 {
		t.Fatalf("expected exit 0 for a zero result, got %d\nstderr: %s", code, errOut.String())
	}
	if strings.TrimSpace(out.String()) != "0" {
		t.Errorf("expected 0 on stdout, got %q", out.String())
	}
}

func TestJITExitCodeIsMainTruthiness(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "truthy.fg", `
func main() -> i32 {
	return 42;
}
`)

	var out, errOut bytes.Buffer
	code := JIT(path, Options{Out: &out, ErrOut: &errOut})
	if code != 1 {
		t.Fatalf("expected exit 1 for a truthy result, got %d", code)
	}
	if strings.TrimSpace(out.String()) != "42" {
		t.Errorf("expected 42 on stdout, got %q", out.String())
	}

	void := writeSource(t, dir, "void.fg", `func main() { }`)
	var out2 bytes.Buffer
	if code := JIT(void, Options{Out: &out2, ErrOut: &errOut}); code != 0 {
		t.Fatalf("expected exit 0 for a void main, got %d", code)
	}
}

func TestDumpAST(t *testing.T) {
	dir := t.TempDir()
	projectWithoutCache(t, dir)
	path := writeSource(t, dir, "dump.fg", "func f(a: i32) -> i32 { return a; }\n")

	var out, errOut bytes.Buffer
	code := DumpAST(path, Options{Out: &out, ErrOut: &errOut})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\nstderr: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "func f -> i32") {
		t.Errorf("unexpected dump:\n%s", out.String())
	}
	if !strings.Contains(out.String(), ":: i32") {
		t.Errorf("expected resolved types in the dump:\n%s", out.String())
	}
}

func TestExpandTargets(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.fg", "")
	writeSource(t, dir, "b.fg", "")
	writeSource(t, dir, "ignored.go", "")

	files, err := ExpandTargets([]string{filepath.Join(dir, "*.fg")})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}

	if _, err := ExpandTargets([]string{filepath.Join(dir, "*.go")}); err == nil {
		t.Error("expected an error when nothing matches")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	writeSource(t, dir, "forge.yaml", "cache: true\ncache_dir: "+cacheDir+"\n")
	path := writeSource(t, dir, "c.fg", "func f() -> i32 { return 1; }\n")

	var out, errOut bytes.Buffer
	if code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut}); code != 0 {
		t.Fatalf("first compile failed: %s", errOut.String())
	}
	first, err := os.ReadFile(filepath.Join(dir, "c.ll"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "c.ll")); err != nil {
		t.Fatal(err)
	}

	// second compile is served from the cache and rewrites the output
	if code := Compile([]string{path}, Options{Out: &out, ErrOut: &errOut}); code != 0 {
		t.Fatalf("second compile failed: %s", errOut.String())
	}
	second, err := os.ReadFile(filepath.Join(dir, "c.ll"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("expected the cached IR to round-trip unchanged")
	}
}
