// Package casebook extracts checker test cases from Markdown documents.
//
// A case starts at a heading of the form "Test: name" and holds one hulk
// input fence followed by one or more assertion fences:
//
//	## Test: let binding
//	```hulk
//	let x = 5 in x + x;
//	```
//	```type
//	Number
//	```
package casebook

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language of a case's source program
const InputFence = "hulk"

const headingPrefix = "Test: "

// AssertionType represents the kind of an assertion fence
type AssertionType string

const (
	AssertionTypeType   AssertionType = "type"   // type of the global expression
	AssertionTypeAST    AssertionType = "ast"    // typed tree dump
	AssertionTypeErrors AssertionType = "errors" // one "kind: message" per line
)

// Assertion is a single assertion fence of a case
type Assertion struct {
	Type    AssertionType
	Content string
	Line    int
}

// Lines returns the non-blank lines of the assertion, trimmed
func (a Assertion) Lines() []string {
	var out []string
	for _, l := range strings.Split(a.Content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Case is one test case extracted from a document
type Case struct {
	Name       string
	Input      string
	Line       int // line of the input fence
	Assertions []Assertion
}

// Assertion returns the first assertion of the given type
func (c *Case) Assertion(typ AssertionType) (Assertion, bool) {
	for _, a := range c.Assertions {
		if a.Type == typ {
			return a, true
		}
	}
	return Assertion{}, false
}

// ExtractFile reads path and extracts its cases
func ExtractFile(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Extract(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order
func Extract(markdown string) ([]Case, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, headingPrefix) {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &Case{Name: strings.TrimPrefix(heading, headingPrefix)}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := strings.TrimRight(fenceContent(n, source), "\n")
			line := lineNumber(n, source)

			if current == nil {
				if language != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, language)
				}
				return ast.WalkContinue, nil
			}

			switch {
			case language == InputFence:
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = content
				current.Line = line
			case isAssertion(language):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(language),
					Content: content,
					Line:    line,
				})
			case language != "":
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown: %w", err)
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isAssertion(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeType, AssertionTypeAST, AssertionTypeErrors:
		return true
	}
	return false
}

// validate ensures a case has an input and at least one assertion
func validate(c *Case) error {
	if c.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", c.Name)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineNumber returns the 1-based line of the first content line of node
func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
