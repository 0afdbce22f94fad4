package diagnostic

import (
	"fmt"
	"io"
	"strings"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorBold   = "\033[1m"
)

// Renderer prints diagnostics with the offending source line and a caret
// under the reported column:
//
//	error[undefined]: undefined variable 'y'
//	  --> main.hulk:2:5
//	   |
//	 2 | x + y;
//	   |     ^
type Renderer struct {
	w     io.Writer
	file  string
	lines []string
	color bool
}

// NewRenderer creates a renderer over source for the given file name
func NewRenderer(w io.Writer, file, source string, color bool) *Renderer {
	return &Renderer{
		w:     w,
		file:  file,
		lines: strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n"),
		color: color,
	}
}

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + colorReset
}

// Render writes one diagnostic
func (r *Renderer) Render(d Diagnostic) {
	sevColor := colorRed
	if d.Severity != Error {
		sevColor = colorYellow
	}
	header := r.paint(colorBold+sevColor, fmt.Sprintf("%s[%s]", d.Severity, d.Kind))
	fmt.Fprintf(r.w, "%s: %s\n", header, d.Message)

	file := r.file
	if d.File != "" {
		file = d.File
	}
	width := len(fmt.Sprintf("%d", d.Line))
	pad := strings.Repeat(" ", width)
	fmt.Fprintf(r.w, "%s%s %s:%d:%d\n", pad, r.paint(colorBlue, "-->"), file, d.Line, d.Column)

	if d.Line > 0 && d.Line <= len(r.lines) {
		gutter := r.paint(colorBlue, "|")
		src := r.lines[d.Line-1]
		fmt.Fprintf(r.w, "%s %s\n", pad, gutter)
		fmt.Fprintf(r.w, "%s %s %s\n", r.paint(colorBlue, fmt.Sprintf("%*d", width, d.Line)), gutter, src)
		col := d.Column
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(r.w, "%s %s %s%s\n", pad, gutter, caretIndent(src, col-1), r.paint(sevColor, "^"))
	}

	if d.Hint != "" {
		fmt.Fprintf(r.w, "%s = hint: %s\n", pad, d.Hint)
	}
}

// RenderAll writes every diagnostic followed by a blank line
func (r *Renderer) RenderAll(diags *Diagnostics) {
	for _, d := range diags.All() {
		r.Render(d)
		fmt.Fprintln(r.w)
	}
}

// RenderWithSource renders all diagnostics into a string without color
func RenderWithSource(diags *Diagnostics, file, source string) string {
	var sb strings.Builder
	NewRenderer(&sb, file, source, false).RenderAll(diags)
	return sb.String()
}

// caretIndent keeps tabs from the source line so the caret lines up
func caretIndent(src string, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i < len(src) && src[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
