package formatter

import (
	"strings"
	"testing"

	"github.com/lhaig/hulkc/internal/ast"
	"github.com/lhaig/hulkc/internal/parser"
)

// helper: parse source, format, return formatted string
func formatSource(t *testing.T, source string) string {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parse error: %s", p.Diagnostics().Format("<test>"))
	}
	return Format(prog)
}

// --- Per-construct tests ---

func TestFormatInlineFunction(t *testing.T) {
	got := formatSource(t, `function   add(a:Number,b:Number):Number=>a+b;`)
	want := "function add(a: Number, b: Number): Number => a + b;\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatBlockFunction(t *testing.T) {
	got := formatSource(t, `function loop(n: Number) { let i = 0 in while (i < n) { print(i); i := i + 1; }; }`)
	want := `function loop(n: Number) {
    let i = 0 in while (i < n) {
        print(i);
        i := i + 1;
    };
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTypeDef(t *testing.T) {
	src := `type Dog(name: String) inherits Animal(name) { tricks: Number = 0; speak(): String => "woof"; learn(n: Number) { self.tricks := self.tricks + n; } }
type Animal(name: String) { name = name; }
type Marker {}`
	want := `type Dog(name: String) inherits Animal(name) {
    tricks: Number = 0;

    speak(): String => "woof";

    learn(n: Number) {
        self.tricks := self.tricks + n;
    }
}

type Animal(name: String) {
    name = name;
}

type Marker {}
`
	if got := formatSource(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatGlobalExpression(t *testing.T) {
	got := formatSource(t, `print(new Point(1,2).norm())`)
	if got != "print(new Point(1, 2).norm());\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestFormatElif(t *testing.T) {
	got := formatSource(t, `if (a) 1 elif (b) 2 else if (c) 3 else 4;`)
	want := "if (a) 1 elif (b) 2 elif (c) 3 else 4;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatStringEscapes(t *testing.T) {
	got := formatSource(t, `print("say \"hi\"\n\tand \\ go");`)
	want := `print("say \"hi\"\n\tand \\ go");` + "\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOperatorSpacing(t *testing.T) {
	got := formatSource(t, `a@b@@c|d&!e;`)
	want := "a @ b @@ c | d & !e;\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrecedenceParens(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(a + b) * c;", "(a + b) * c;\n"},
		{"a - (b - c);", "a - (b - c);\n"},
		{"(a ^ b) ^ c;", "(a ^ b) ^ c;\n"},
		{"a ^ (b ^ c);", "a ^ b ^ c;\n"},
		{"-(a + b);", "-(a + b);\n"},
		{"-a ^ 2;", "-a ^ 2;\n"},
		{"(a + b).len();", "(a + b).len();\n"},
		{"1 + (let x = 2 in x);", "1 + (let x = 2 in x);\n"},
		{"(x := 1) + 2;", "(x := 1) + 2;\n"},
		{"x := y := 3;", "x := y := 3;\n"},
	}
	for _, tt := range tests {
		if got := formatSource(t, tt.src); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestNoPrecedenceParensWhenUnnecessary(t *testing.T) {
	got := formatSource(t, `((a * b)) + (c);`)
	if got != "a * b + c;\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDanglingElseKeepsParens(t *testing.T) {
	got := formatSource(t, `if (a) (if (b) 1) else 2;`)
	if got != "if (a) (if (b) 1) else 2;\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestTrailingNewline(t *testing.T) {
	got := formatSource(t, `function f() => 1;`)
	if !strings.HasSuffix(got, ";\n") || strings.HasSuffix(got, "\n\n") {
		t.Errorf("expected exactly one trailing newline, got %q", got)
	}
	if formatSource(t, ``) != "" {
		t.Error("expected empty output for an empty program")
	}
}

// --- Stability ---

const sample = `type Point(x: Number, y: Number) {
    x = x;
    y = y;
    norm(): Number => sqrt(self.x ^ 2 + self.y ^ 2);
}
type Point3(x: Number, y: Number, z: Number) inherits Point(x, y) {
    z = z;
    norm(): Number => sqrt(self.x ^ 2 + self.y ^ 2 + self.z ^ 2);
}
function describe(p: Point): String => if (p.norm() > 10) "far" elif (p.norm() > 1) "near" else "here";
{
    let p = new Point3(1, 2, 3), label: String = describe(p) in print(label @@ "!");
    while (false) { print(-1); };
}`

func TestIdempotency(t *testing.T) {
	first := formatSource(t, sample)
	second := formatSource(t, first)
	if first != second {
		t.Errorf("formatting is not idempotent\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestRoundTrip(t *testing.T) {
	p := parser.New(sample)
	before := ast.Print(p.Parse())

	q := parser.New(formatSource(t, sample))
	prog := q.Parse()
	if q.Diagnostics().HasErrors() {
		t.Fatalf("formatted output does not parse: %s", q.Diagnostics().Format("<test>"))
	}
	if after := ast.Print(prog); after != before {
		t.Errorf("tree changed\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestCanonicalOrdering(t *testing.T) {
	got := formatSource(t, `function f() => 1; type T {} f();`)
	typeIdx := strings.Index(got, "type T")
	fnIdx := strings.Index(got, "function f")
	exprIdx := strings.Index(got, "f();")
	if typeIdx < 0 || fnIdx < typeIdx || exprIdx < fnIdx {
		t.Errorf("expected types, functions, then the global expression:\n%s", got)
	}
}
