package tomldoc

import (
	"testing"

	"github.com/spf13/afero"
)

func mustParse(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return doc
}

func assertRender(t *testing.T, doc *Document, want string) {
	t.Helper()
	if got := doc.String(); got != want {
		t.Fatalf("render mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderAppendInlineArrayKeepsComment(t *testing.T) {
	doc := mustParse(t, "name = 'x'\ndeps = ['a'] # keep\n")
	doc.Root().Get("deps").(*Array).Append(NewString("b"))

	assertRender(t, doc, "name = 'x'\ndeps = ['a', \"b\"]  # keep\n")
}

func TestRenderAppendMultilineArrayKeepsIndent(t *testing.T) {
	doc := mustParse(t, "deps = [\n  \"a\", # first\n]\nafter = 1\n")
	doc.Root().Get("deps").(*Array).Append(NewString("b"))

	assertRender(t, doc, "deps = [\n  \"a\",  # first\n  \"b\",\n]\nafter = 1\n")
}

func TestRenderInsertedTable(t *testing.T) {
	doc := mustParse(t, "[tool.poetry]\nname = \"x\"\n")
	black := NewTable()
	black.Set("line-length", NewInteger(88))
	doc.Root().Get("tool").(*Table).Set("black", black)

	assertRender(t, doc, "[tool.poetry]\nname = \"x\"\n\n[tool.black]\nline-length = 88\n")
}

func TestRenderKeepsCRLFLineEndings(t *testing.T) {
	doc := mustParse(t, "# keep\r\n[tool.black]\r\nline-length = 100\r\ndeps = [\r\n  \"a\",\r\n]\r\n")
	black := doc.Root().Get("tool").(*Table).Get("black").(*Table)
	black.Set("target-version", NewString("py311"))
	black.Get("deps").(*Array).Append(NewString("b"))
	isort := NewTable()
	isort.Set("profile", NewString("black"))
	doc.Root().Get("tool").(*Table).Set("isort", isort)

	assertRender(t, doc, "# keep\r\n[tool.black]\r\nline-length = 100\r\ndeps = [\r\n  \"a\",\r\n  \"b\",\r\n]\r\n"+
		"target-version = \"py311\"\r\n\r\n[tool.isort]\r\nprofile = \"black\"\r\n")
}

func TestRenderRootValueBeforeFirstTable(t *testing.T) {
	doc := mustParse(t, "title = \"a\"\n\n[t]\nx = 1\n")
	doc.Root().Set("enabled", NewBool(true))

	assertRender(t, doc, "title = \"a\"\nenabled = true\n\n[t]\nx = 1\n")
}

func TestRenderReplacedValueKeepsPositionAndComment(t *testing.T) {
	doc := mustParse(t, "# lead\na = 1 # note\nb = 2\n")
	doc.Root().Set("a", NewInteger(5))

	assertRender(t, doc, "# lead\na = 5  # note\nb = 2\n")
}

func TestRenderDottedAndInlineTables(t *testing.T) {
	doc := mustParse(t, "a.b = 1\np = { x = 1 }\n")
	doc.Root().Get("a").(*Table).Set("c", NewInteger(2))
	doc.Root().Get("p").(*Table).Set("y", NewString("z"))

	assertRender(t, doc, "a.b = 1\na.c = 2\np = { x = 1, y = \"z\" }\n")
}

func TestRenderImplicitTableGainsHeader(t *testing.T) {
	doc := mustParse(t, "[a.b]\nx = 1\n")
	doc.Root().Get("a").(*Table).Set("y", NewInteger(2))

	assertRender(t, doc, "[a]\ny = 2\n[a.b]\nx = 1\n")
}

func TestRenderArrayOfTablesAppend(t *testing.T) {
	doc := mustParse(t, "[[srcs]]\nname = \"a\"\n")
	elem := NewTable()
	elem.Set("name", NewString("b"))
	doc.Root().Get("srcs").(*Array).Append(elem)

	assertRender(t, doc, "[[srcs]]\nname = \"a\"\n\n[[srcs]]\nname = \"b\"\n")
}

func TestRenderAdoptCarriesTemplateComments(t *testing.T) {
	target := mustParse(t, "a = 1\n")
	source := mustParse(t, "# formatter settings\nline = 88 # max width\n")

	target.Root().Adopt("line", source.Root())

	assertRender(t, target, "a = 1\n# formatter settings\nline = 88  # max width\n")
	assertRender(t, source, "# formatter settings\nline = 88 # max width\n")
}

func TestRenderBuiltDocument(t *testing.T) {
	doc := New()
	doc.Root().Set("key with space", NewFloat(1))
	sub := NewTable()
	sub.Set("list", NewArray(NewInteger(1), NewInteger(2)))
	doc.Root().Set("section", sub)

	assertRender(t, doc, "\"key with space\" = 1.0\n\n[section]\nlist = [1, 2]\n")
}

func TestLoadAndWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/pyproject.toml", []byte("a = 1 # c\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadFile(fs, "/p/pyproject.toml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	doc.Root().Set("b", NewInteger(2))
	if err := WriteFile(fs, "/p/pyproject.toml", doc); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := afero.ReadFile(fs, "/p/pyproject.toml")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a = 1 # c\nb = 2\n" {
		t.Fatalf("unexpected file content %q", got)
	}

	if _, err := LoadFile(fs, "/p/missing.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
