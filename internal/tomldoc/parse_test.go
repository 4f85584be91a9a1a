package tomldoc

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

const pyproject = `# Project settings
[tool.poetry]
name = "demo"   # package name
version = '0.1.0'
authors = ["Jane <jane@example.com>"]

dependencies = [
    "requests",  # http
    # pinned below
    "rich",
]

[tool.poetry.scripts]
demo = { reference = "demo.cli:main", type = "console" }

[tool.black]
line-length = 1_000
target.version = "py312"

[[tool.mypy.overrides]]
module = "tests.*"
strict = false

[[tool.mypy.overrides]]
"quoted key" = 0x1F

# trailing notes
`

func TestParseRenderRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"pyproject":   pyproject,
		"empty":       "",
		"blank lines": "\n\na = 1\n\n\nb = 2\n\n",
		"comments":    "# one\n# two\n\n# three\na = 1 # trailing\n",
		"dotted":      "a.b = 1\na.c.d = \"x\"\n\n[t]\nx.y = true\n",
		"implicit":    "[a.b.c]\nx = 1\n\n[a.b.d]\ny = 2\n",
		"indented":    "[t]\n  a = 1\n  b = [ 1, 2 ]\n",
		"crlf":        "# keep\r\n[tool.black]\r\nline-length = 100\r\n\r\ndeps = [\r\n  \"a\", # first\r\n]\r\n",
		"datetimes":   "odt = 1979-05-27T07:32:00Z\nldt = 1979-05-27T07:32:00\nld = 1979-05-27\nlt = 07:32:00\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := doc.String(); got != input {
				t.Fatalf("round trip mismatch\n got: %q\nwant: %q", got, input)
			}
		})
	}
}

func TestParseAddsFinalNewline(t *testing.T) {
	doc, err := Parse([]byte("a = 1"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.String(); got != "a = 1\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParseStructure(t *testing.T) {
	doc, err := Parse([]byte(pyproject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tool, ok := doc.Root().Get("tool").(*Table)
	if !ok {
		t.Fatalf("expected tool table, got %T", doc.Root().Get("tool"))
	}
	if tool.Style() != TableImplicit {
		t.Fatalf("expected implicit tool table, got %v", tool.Style())
	}
	if got := tool.Keys(); len(got) != 3 || got[0] != "poetry" || got[1] != "black" || got[2] != "mypy" {
		t.Fatalf("unexpected tool keys %v", got)
	}

	poetry := tool.Get("poetry").(*Table)
	if poetry.Style() != TableHeader {
		t.Fatalf("expected header style, got %v", poetry.Style())
	}
	deps := poetry.Get("dependencies").(*Array)
	if deps.Style() != ArrayMultiline || deps.Len() != 2 {
		t.Fatalf("unexpected dependencies array: style=%v len=%d", deps.Style(), deps.Len())
	}

	scripts := poetry.Get("scripts").(*Table)
	demo := scripts.Get("demo").(*Table)
	if demo.Style() != TableInline || demo.Get("type").Unwrap() != "console" {
		t.Fatalf("unexpected inline table %v", demo.Unwrap())
	}

	black := tool.Get("black").(*Table)
	if got := black.Get("line-length").Unwrap(); got != int64(1000) {
		t.Fatalf("line-length = %v", got)
	}
	target := black.Get("target").(*Table)
	if target.Style() != TableDotted {
		t.Fatalf("expected dotted table, got %v", target.Style())
	}

	overrides := tool.Get("mypy").(*Table).Get("overrides").(*Array)
	if overrides.Kind() != KindArrayOfTables || overrides.Len() != 2 {
		t.Fatalf("unexpected overrides kind=%v len=%d", overrides.Kind(), overrides.Len())
	}
	second := overrides.At(1).(*Table)
	if got := second.Get("quoted key").Unwrap(); got != int64(31) {
		t.Fatalf("quoted key = %v", got)
	}
}

func TestParseScalarKinds(t *testing.T) {
	input := `s = "text"
lit = 'C:\path'
i = -17
hex = 0xff
f = 6.5e-3
under = 1_000.5
pinf = +inf
nan = nan
b = true
odt = 1979-05-27T00:32:00.5-07:00
ldt = 1979-05-27 07:32:00
ld = 1979-05-27
lt = 07:32:00
`
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := doc.Root()

	kinds := map[string]Kind{
		"s": KindString, "lit": KindString, "i": KindInteger, "hex": KindInteger,
		"f": KindFloat, "under": KindFloat, "pinf": KindFloat, "nan": KindFloat,
		"b": KindBool, "odt": KindOffsetDateTime, "ldt": KindLocalDateTime,
		"ld": KindLocalDate, "lt": KindLocalTime,
	}
	for key, want := range kinds {
		if got := root.Get(key).Kind(); got != want {
			t.Fatalf("%s: kind %v, want %v", key, got, want)
		}
	}

	if got := root.Get("lit").Unwrap(); got != `C:\path` {
		t.Fatalf("lit = %q", got)
	}
	if got := root.Get("hex").Unwrap(); got != int64(255) {
		t.Fatalf("hex = %v", got)
	}
	if got := root.Get("under").Unwrap(); got != 1000.5 {
		t.Fatalf("under = %v", got)
	}
	if got := root.Get("pinf").Unwrap().(float64); !math.IsInf(got, 1) {
		t.Fatalf("pinf = %v", got)
	}
	if got := root.Get("nan").Unwrap().(float64); !math.IsNaN(got) {
		t.Fatalf("nan = %v", got)
	}

	odt := root.Get("odt").Unwrap().(time.Time)
	want := time.Date(1979, 5, 27, 7, 32, 0, 500000000, time.UTC)
	if !odt.Equal(want) {
		t.Fatalf("odt = %v, want %v", odt, want)
	}
	if got := root.Get("ld").Unwrap(); got != (toml.LocalDate{Year: 1979, Month: 5, Day: 27}) {
		t.Fatalf("ld = %v", got)
	}
	if got := root.Get("s").(*Scalar).Raw(); got != `"text"` {
		t.Fatalf("raw = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		line  int
	}{
		{name: "duplicate key", input: "a = 1\na = 2\n", line: 2},
		{name: "duplicate table", input: "[a]\nx = 1\n\n[a]\n", line: 4},
		{name: "header after dotted", input: "[a]\nb.c = 1\n[a.b]\n", line: 3},
		{name: "static array extended", input: "a = [1]\n[[a]]\n", line: 2},
		{name: "inline table extended", input: "a = { b = 1 }\n[a.c]\n", line: 2},
		{name: "key redefined as table", input: "a = 1\n[a.b]\n", line: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if perr.Line != tc.line {
				t.Fatalf("line = %d, want %d (%v)", perr.Line, tc.line, perr)
			}
		})
	}
}

func TestParseSyntaxErrorWrapsParserError(t *testing.T) {
	_, err := Parse([]byte("a = 1\nb = tru\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Fatalf("line = %d, want 2", perr.Line)
	}
	var uerr *unstable.ParserError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected wrapped *unstable.ParserError, got %T", perr.Err)
	}
}
