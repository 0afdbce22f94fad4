package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/compiler"
	"github.com/lhaig/hulkc/internal/config"
	"github.com/lhaig/hulkc/internal/diagnostic"
	"github.com/lhaig/hulkc/internal/linter"
)

const usage = `hulkc - The HULK semantic checker

Usage:
  hulkc check [options] <file.hulk>    Parse and type-check only
  hulkc types [options] <file.hulk>    Check and print the type layout as YAML
  hulkc ast [options] <file.hulk>      Check and print the typed syntax tree
  hulkc lint [options] <file.hulk>     Run lint checks for style/best practices
  hulkc fmt [--write] <file.hulk>      Print the file in canonical form

Options:
  --verbose          Log compiler phases to stderr
  --max-errors N     Stop reporting after N diagnostics
  --no-color         Disable colored diagnostics
  --write            fmt: rewrite the file in place

Configuration:
  A hulk.yaml next to the input file sets defaults for these options,
  toggles lint rules and names the file 'types' writes its layout to.

Examples:
  hulkc check main.hulk                Check for errors
  hulkc types main.hulk                Print the type layout
  hulkc lint --no-color main.hulk      Lint without colors
`

type invocation struct {
	file  string
	cfg   *config.Config
	write bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "check", "types", "ast", "lint", "fmt":
		inv := parseArgs(os.Args[2:])
		os.Exit(run(command, inv, os.Stdout, os.Stderr))
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// parseArgs reads the input file and flags. Flags override hulk.yaml.
func parseArgs(args []string) invocation {
	var (
		filePath  string
		verbose   bool
		noColor   bool
		write     bool
		maxErrors = -1
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--verbose":
			verbose = true
		case "--no-color":
			noColor = true
		case "--write":
			write = true
		case "--max-errors":
			if i+1 >= len(args) {
				fatalf("Error: --max-errors needs a value\n")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 {
				fatalf("Error: invalid --max-errors value: %s\n", args[i])
			}
			maxErrors = n
		default:
			if strings.HasPrefix(arg, "-") {
				fatalf("Unknown option: %s\n", arg)
			}
			filePath = arg
		}
	}

	if filePath == "" {
		fatalf("Error: no input file specified\n")
	}

	cfg, err := config.Find(filePath)
	if err != nil {
		fatalf("Error: %s\n", err)
	}
	if err := linter.ValidateRules(cfg.Lint); err != nil {
		fatalf("Error: %s: %s\n", cfg.Path, err)
	}

	if verbose {
		cfg.Verbose = true
	}
	if noColor {
		cfg.Color = false
	}
	if maxErrors >= 0 {
		cfg.MaxErrors = maxErrors
	}
	return invocation{file: filePath, cfg: cfg, write: write}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// run executes one command and returns the exit code
func run(command string, inv invocation, stdout, stderr io.Writer) int {
	if command == "fmt" {
		return runFormat(inv, stdout, stderr)
	}

	level := slog.LevelWarn
	if inv.cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	res, err := compiler.CompileFile(inv.file, compiler.Options{
		Logger:    logger,
		MaxErrors: inv.cfg.MaxErrors,
		Lint:      command == "lint",
		LintRule:  inv.cfg.RuleEnabled,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %s\n", err)
		return 1
	}

	if !res.OK() {
		diagnostic.NewRenderer(stderr, inv.file, res.Source, inv.cfg.Color).RenderAll(res.Diagnostics)
		if res.Dropped > 0 {
			fmt.Fprintf(stderr, "... %d more diagnostic(s) not shown\n", res.Dropped)
		}
		fmt.Fprintf(stderr, "%d error(s) found.\n", res.Diagnostics.ErrorCount()+res.Dropped)
		return 1
	}

	switch command {
	case "check":
		fmt.Fprintf(stdout, "No errors found. Program type: %s\n", res.Check.Types.Name(res.Program.Type()))
	case "types":
		return writeLayout(res, inv.cfg, stdout, stderr)
	case "ast":
		fmt.Fprint(stdout, ast.PrintTyped(res.Program, res.Check.Types.Name))
	case "lint":
		if res.Warnings.Count() == 0 {
			fmt.Fprintln(stdout, "No lint warnings.")
			return 0
		}
		diagnostic.NewRenderer(stdout, inv.file, res.Source, inv.cfg.Color).RenderAll(res.Warnings)
		fmt.Fprintf(stdout, "%d warning(s) found.\n", res.Warnings.Count())
	}
	return 0
}

func writeLayout(res *compiler.Result, cfg *config.Config, stdout, stderr io.Writer) int {
	out := cfg.LayoutPath()
	if out == "" {
		if err := res.Layout.WriteYAML(stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		return 0
	}
	if err := res.Layout.Save(out); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", out)
	return 0
}

func runFormat(inv invocation, stdout, stderr io.Writer) int {
	source, err := os.ReadFile(inv.file)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading file: %s\n", err)
		return 1
	}

	out, diags := compiler.Format(string(source))
	if diags.HasErrors() {
		diagnostic.NewRenderer(stderr, inv.file, string(source), inv.cfg.Color).RenderAll(diags)
		return 1
	}

	if !inv.write {
		fmt.Fprint(stdout, out)
		return 0
	}
	if out == string(source) {
		return 0
	}
	if err := os.WriteFile(inv.file, []byte(out), 0644); err != nil {
		fmt.Fprintf(stderr, "Error writing file: %s\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Formatted %s\n", inv.file)
	return 0
}
