package tomldoc

import (
	"math"
	"testing"
	"time"
)

func TestEqual(t *testing.T) {
	tableAB := NewInlineTable()
	tableAB.Set("a", NewInteger(1))
	tableAB.Set("b", NewString("x"))
	tableBA := NewTable()
	tableBA.Set("b", NewString("x"))
	tableBA.Set("a", NewInteger(1))

	utc := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	shifted := utc.In(time.FixedZone("", 2*3600))

	cases := []struct {
		name string
		a, b Node
		want bool
	}{
		{name: "nil nil", want: true},
		{name: "nil scalar", b: NewInteger(1), want: false},
		{name: "same string", a: NewString("x"), b: NewString("x"), want: true},
		{name: "int vs float", a: NewInteger(1), b: NewFloat(1), want: false},
		{name: "int vs string", a: NewInteger(1), b: NewString("1"), want: false},
		{name: "nan", a: NewFloat(math.NaN()), b: NewFloat(math.NaN()), want: true},
		{name: "same instant", a: NewOffsetDateTime(utc), b: NewOffsetDateTime(shifted), want: true},
		{name: "table key order", a: tableAB, b: tableBA, want: true},
		{name: "array order", a: NewArray(NewInteger(1), NewInteger(2)), b: NewArray(NewInteger(2), NewInteger(1)), want: false},
		{name: "array vs array of tables", a: NewArray(), b: NewArrayOfTables(), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEqualIgnoresSpelling(t *testing.T) {
	a := mustParse(t, "v = 0xff\ns = 'lit'\n").Root()
	b := mustParse(t, "v = 255\ns = \"lit\"\n").Root()
	if !Equal(a, b) {
		t.Fatal("expected documents with different spelling to be equal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := mustParse(t, "[t]\nlist = [1]\n")
	orig := doc.Root().Get("t").(*Table)

	clone := orig.Clone().(*Table)
	clone.Get("list").(*Array).Append(NewInteger(2))
	clone.Set("new", NewBool(true))

	if orig.Has("new") || orig.Get("list").(*Array).Len() != 1 {
		t.Fatalf("clone mutation leaked into original: %v", orig.Unwrap())
	}
	assertRender(t, doc, "[t]\nlist = [1]\n")
}

func TestFormatPath(t *testing.T) {
	if got := FormatPath("tool", "poetry", "group.dev", "a b"); got != `tool.poetry."group.dev"."a b"` {
		t.Fatalf("FormatPath = %s", got)
	}
	if got := FormatKey("tab\there"); got != `"tab\there"` {
		t.Fatalf("FormatKey = %s", got)
	}
}
