package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/checker"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/formatter"
	"github.com/lhaig/hulkc/internal/layout"
	"github.com/lhaig/hulkc/internal/linter"
	"github.com/lhaig/hulkc/internal/parser"
)

// Options control a compilation
type Options struct {
	Logger    *slog.Logger           // phase tracing; nil discards
	MaxErrors int                    // 0 keeps every diagnostic
	Lint      bool                   // run the linter after parsing
	LintRule  func(rule string) bool // nil enables every rule
}

// Result holds the output of a compilation
type Result struct {
	File        string
	Source      string
	Program     *ast.Program
	Check       *checker.Result // nil when parsing failed
	Layout      *layout.Layout  // nil unless the program was accepted
	Diagnostics *diagnostic.Diagnostics
	Warnings    *diagnostic.Diagnostics // lint findings
	Dropped     int                     // diagnostics cut by MaxErrors
}

// OK reports whether the program was accepted
func (r *Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Compile runs the full pipeline: parse -> register -> check -> layout.
// Code generation only ever sees programs without diagnostics.
func Compile(source string, opts Options) *Result {
	log := opts.Logger
	if log == nil {
		log = discard
	}
	res := &Result{Source: source, Warnings: diagnostic.New()}

	// Parse
	start := time.Now()
	p := parser.New(source)
	prog := p.Parse()
	res.Program = prog
	logPhase(log, "parse", start, p.Diagnostics())

	if p.Diagnostics().HasErrors() {
		res.Diagnostics = p.Diagnostics()
		res.limit(opts.MaxErrors)
		return res
	}

	if opts.Lint {
		start = time.Now()
		enabled := opts.LintRule
		if enabled == nil {
			enabled = func(string) bool { return true }
		}
		res.Warnings = linter.LintWith(prog, enabled)
		logPhase(log, "lint", start, res.Warnings)
	}

	// Register and check
	start = time.Now()
	res.Check = checker.CheckWithResult(prog)
	res.Diagnostics = res.Check.Diagnostics
	logPhase(log, "check", start, res.Diagnostics)

	if res.Diagnostics.HasErrors() {
		res.limit(opts.MaxErrors)
		return res
	}

	// Layout for code generation
	start = time.Now()
	l, err := layout.Build(res.Check)
	if err != nil {
		panic("internal error: layout of accepted program: " + err.Error())
	}
	res.Layout = l
	log.Debug("phase done", "phase", "layout", "duration", time.Since(start), "types", len(l.Types))

	return res
}

func (r *Result) limit(max int) {
	if max > 0 {
		r.Dropped = r.Diagnostics.Truncate(max)
	}
}

func logPhase(log *slog.Logger, phase string, start time.Time, diags *diagnostic.Diagnostics) {
	log.LogAttrs(context.Background(), slog.LevelDebug, "phase done",
		slog.String("phase", phase),
		slog.Duration("duration", time.Since(start)),
		slog.Int("errors", diags.ErrorCount()),
		slog.Int("warnings", diags.WarningCount()),
	)
}

// CompileFile reads path and compiles it
func CompileFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res := Compile(string(data), opts)
	res.File = path
	return res, nil
}

// Check runs parse + check only (no layout).
func Check(source string) *diagnostic.Diagnostics {
	p := parser.New(source)
	prog := p.Parse()

	if p.Diagnostics().HasErrors() {
		return p.Diagnostics()
	}

	return checker.Check(prog)
}

// Format parses source and returns it in canonical form. Programs with
// syntax errors are returned unchanged along with the diagnostics.
func Format(source string) (string, *diagnostic.Diagnostics) {
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		return source, p.Diagnostics()
	}
	return formatter.Format(prog), p.Diagnostics()
}

// EmitLayout runs the full pipeline and writes the YAML type layout to
// outPath.
func EmitLayout(source, outPath string) error {
	res := Compile(source, Options{})
	if !res.OK() {
		return fmt.Errorf("compilation errors:\n%s", res.Diagnostics.Format("input"))
	}
	return res.Layout.Save(outPath)
}
