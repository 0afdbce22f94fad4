package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lhaig/hulkc/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, command, file string, cfg *config.Config) (int, string, string) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
		cfg.Color = false
	}
	var stdout, stderr bytes.Buffer
	code := run(command, invocation{file: file, cfg: cfg}, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunCheck(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `let x = 1 in x + 2;`)
	code, out, _ := runCommand(t, "check", file, nil)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Program type: Number") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRunCheckErrors(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", "let x: Bool = 5 in\n  y;")
	code, _, errOut := runCommand(t, "check", file, nil)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	for _, want := range []string{"error[type-mismatch]", "error[undefined]", "main.hulk:2:3", "2 error(s) found."} {
		if !strings.Contains(errOut, want) {
			t.Errorf("expected %q in:\n%s", want, errOut)
		}
	}
}

func TestRunMaxErrors(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `{ a; b; c; };`)
	cfg := config.Default()
	cfg.Color = false
	cfg.MaxErrors = 1
	_, _, errOut := runCommand(t, "check", file, cfg)
	if !strings.Contains(errOut, "... 2 more diagnostic(s) not shown") {
		t.Errorf("expected truncation note, got:\n%s", errOut)
	}
	if !strings.Contains(errOut, "3 error(s) found.") {
		t.Errorf("expected total count, got:\n%s", errOut)
	}
}

func TestRunTypesToStdout(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `type Box(v: Number) { v = v; } new Box(1);`)
	code, out, _ := runCommand(t, "types", file, nil)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "name: Box") || !strings.Contains(out, "offset: 0") {
		t.Errorf("unexpected layout:\n%s", out)
	}
}

func TestRunTypesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, config.FileName, "layout_out: layout.yaml\ncolor: false\n")
	file := writeFile(t, dir, "main.hulk", `type Box { v = 1; } new Box();`)

	cfg, err := config.Find(file)
	if err != nil {
		t.Fatal(err)
	}
	code, out, _ := runCommand(t, "types", file, cfg)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	want := filepath.Join(dir, "layout.yaml")
	if !strings.Contains(out, "Wrote "+want) {
		t.Errorf("unexpected output: %s", out)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("layout not written: %v", err)
	}
}

func TestRunAST(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `print("hi");`)
	code, out, _ := runCommand(t, "ast", file, nil)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(out, "Program") || !strings.Contains(out, "Object") {
		t.Errorf("unexpected tree:\n%s", out)
	}
}

func TestRunLint(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "main.hulk", `function Bad(x: Number): Number => 1; Bad(1);`)
	code, out, _ := runCommand(t, "lint", file, nil)
	if code != 0 {
		t.Fatalf("lint warnings must not fail the run, got %d", code)
	}
	if !strings.Contains(out, "warning[style]") || !strings.Contains(out, "2 warning(s) found.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	cfg := config.Default()
	cfg.Color = false
	cfg.Lint = map[string]bool{"naming": false, "unused-param": false}
	_, out, _ = runCommand(t, "lint", file, cfg)
	if !strings.Contains(out, "No lint warnings.") {
		t.Errorf("expected disabled rules to be silent, got:\n%s", out)
	}
}

func TestRunVerboseLogsPhases(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `1;`)
	cfg := config.Default()
	cfg.Color = false
	cfg.Verbose = true
	_, _, errOut := runCommand(t, "check", file, cfg)
	if !strings.Contains(errOut, "phase=check") {
		t.Errorf("expected phase log, got:\n%s", errOut)
	}
}

func TestRunMissingFile(t *testing.T) {
	code, _, errOut := runCommand(t, "check", filepath.Join(t.TempDir(), "nope.hulk"), nil)
	if code != 1 || !strings.Contains(errOut, "Error reading file") {
		t.Errorf("expected read error, got %d: %s", code, errOut)
	}
}

func TestRunFormat(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `print( 1+2 )`)
	code, out, _ := runCommand(t, "fmt", file, nil)
	if code != 0 || out != "print(1 + 2);\n" {
		t.Errorf("unexpected result %d: %q", code, out)
	}

	cfg := config.Default()
	var stdout, stderr bytes.Buffer
	code = run("fmt", invocation{file: file, cfg: cfg, write: true}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "print(1 + 2);\n" {
		t.Errorf("file not rewritten: %q", data)
	}
}

func TestRunFormatSyntaxError(t *testing.T) {
	file := writeFile(t, t.TempDir(), "main.hulk", `print(1 +`)
	code, _, errOut := runCommand(t, "fmt", file, nil)
	if code != 1 || !strings.Contains(errOut, "error[syntax]") {
		t.Errorf("expected syntax error, got %d: %s", code, errOut)
	}
}
