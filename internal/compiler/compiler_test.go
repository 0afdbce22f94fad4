package compiler

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lhaig/hulkc/internal/layout"
	"github.com/lhaig/hulkc/internal/linter"
)

const validProgram = `type Point(x: Number, y: Number) {
    x = x;
    y = y;
    norm(): Number => sqrt(self.x ^ 2 + self.y ^ 2);
}

function describe(p: Point): String => "norm: " @ p.norm();

print(describe(new Point(3, 4)));`

func TestCompileValidProgram(t *testing.T) {
	res := Compile(validProgram, Options{})
	if !res.OK() {
		t.Fatalf("Expected no errors, got:\n%s", res.Diagnostics.Format("test"))
	}
	if res.Check == nil {
		t.Fatal("Expected check result")
	}
	if res.Layout == nil {
		t.Fatal("Expected type layout")
	}
	point, ok := res.Layout.Lookup("Point")
	if !ok {
		t.Fatal("Expected layout for Point")
	}
	if len(point.Fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(point.Fields))
	}
}

func TestCompileParseError(t *testing.T) {
	res := Compile(`function f( => 1;`, Options{})
	if res.OK() {
		t.Error("Expected parse errors")
	}
	if res.Check != nil {
		t.Error("Expected no check result on parse error")
	}
	if res.Layout != nil {
		t.Error("Expected no layout on parse error")
	}
}

func TestCompileCheckError(t *testing.T) {
	res := Compile(`function f(): Number => x;`, Options{})
	if res.OK() {
		t.Error("Expected check errors")
	}
	if res.Check == nil {
		t.Error("Expected check result")
	}
	if res.Layout != nil {
		t.Error("Expected no layout on check error")
	}
}

func TestCompileMaxErrors(t *testing.T) {
	res := Compile(`{ a; b; c; d; };`, Options{MaxErrors: 2})
	if res.Diagnostics.ErrorCount() != 2 {
		t.Errorf("Expected 2 errors, got %d", res.Diagnostics.ErrorCount())
	}
	if res.Dropped != 2 {
		t.Errorf("Expected 2 dropped, got %d", res.Dropped)
	}
}

func TestCompileWithLint(t *testing.T) {
	src := `function Bad(x: Number): Number => 1; Bad(2);`

	res := Compile(src, Options{})
	if res.Warnings.Count() != 0 {
		t.Errorf("Expected no lint without Lint option, got %d", res.Warnings.Count())
	}

	res = Compile(src, Options{Lint: true})
	if !res.OK() {
		t.Fatalf("lint warnings must not reject the program: %s", res.Diagnostics.Format("test"))
	}
	if res.Warnings.WarningCount() != 2 {
		t.Errorf("Expected 2 warnings, got:\n%s", res.Warnings.Format("test"))
	}

	res = Compile(src, Options{Lint: true, LintRule: func(rule string) bool { return rule != linter.RuleNaming }})
	if res.Warnings.WarningCount() != 1 {
		t.Errorf("Expected 1 warning, got:\n%s", res.Warnings.Format("test"))
	}
}

func TestCompileLogsPhases(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Compile(validProgram, Options{Logger: logger, Lint: true})
	out := buf.String()
	for _, phase := range []string{"phase=parse", "phase=lint", "phase=check", "phase=layout"} {
		if !strings.Contains(out, phase) {
			t.Errorf("Expected log to contain %q, got:\n%s", phase, out)
		}
	}
}

func TestCheckValidProgram(t *testing.T) {
	diags := Check(validProgram)
	if diags.HasErrors() {
		t.Errorf("Expected no errors, got:\n%s", diags.Format("test"))
	}
}

func TestCheckInvalidProgram(t *testing.T) {
	diags := Check(`let x: Bool = 5 in x;`)
	if !diags.HasErrors() {
		t.Fatal("Expected errors")
	}
	if !strings.Contains(diags.Format("test"), "cannot bind Number to 'x' declared as Bool") {
		t.Errorf("Unexpected diagnostics:\n%s", diags.Format("test"))
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.hulk")
	if err := os.WriteFile(path, []byte(validProgram), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := CompileFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.File != path || res.Source != validProgram {
		t.Error("Expected file and source to be recorded")
	}
	if !res.OK() {
		t.Errorf("Expected no errors, got:\n%s", res.Diagnostics.Format(path))
	}

	if _, err := CompileFile(filepath.Join(dir, "missing.hulk"), Options{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestEmitLayout(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layout.yaml")
	if err := EmitLayout(validProgram, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, err := layout.Load(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.Types) != 1 || l.Types[0].Name != "Point" {
		t.Errorf("Unexpected layout: %+v", l.Types)
	}

	err = EmitLayout(`1 + "a";`, out)
	if err == nil || !strings.Contains(err.Error(), "compilation errors") {
		t.Errorf("Expected compilation error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	out, diags := Format(`print( 1+2 )`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %s", diags.Format("test"))
	}
	if out != "print(1 + 2);\n" {
		t.Errorf("unexpected output: %q", out)
	}

	bad := `print(1 +`
	out, diags = Format(bad)
	if !diags.HasErrors() || out != bad {
		t.Errorf("expected source back with errors, got %q", out)
	}
}
