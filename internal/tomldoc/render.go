package tomldoc

import (
	"slices"
	"strings"
)

const defaultIndent = "    "

// Render writes the document back as TOML. Entries that were not changed
// since parsing are emitted exactly as read; changed and inserted entries are
// written canonically in the position the tree gives them.
func (d *Document) Render() []byte {
	r := &renderer{nl: d.newline}
	if r.nl == "" {
		r.nl = "\n"
	}
	r.body(d.root, nil)
	r.sections(d.root, nil)
	r.lines(d.footer)
	return []byte(r.b.String())
}

type renderer struct {
	b  strings.Builder
	nl string
}

func (r *renderer) line(s string) {
	r.b.WriteString(s)
	r.b.WriteString(r.nl)
}

func (r *renderer) lines(lines []string) {
	for _, l := range lines {
		r.line(l)
	}
}

// separate puts a blank line before a section that has no spelling of its
// own, unless the output already ends with one.
func (r *renderer) separate() {
	out := r.b.String()
	if out == "" || strings.HasSuffix(out, r.nl+r.nl) {
		return
	}
	r.b.WriteString(r.nl)
}

// isValueEntry reports whether n is written as a key = value line inside its
// table, as opposed to a [section] of its own.
func isValueEntry(n Node) bool {
	switch v := n.(type) {
	case *Table:
		return v.style == TableInline || v.style == TableDotted
	case *Array:
		return !v.isTableArray()
	}
	return true
}

func (r *renderer) body(t *Table, prefix []string) {
	for _, e := range t.entries {
		if !isValueEntry(e.value) {
			continue
		}
		key := slices.Concat(prefix, []string{e.key})
		if sub, ok := e.value.(*Table); ok && sub.style == TableDotted {
			r.lines(e.leading)
			r.body(sub, key)
			continue
		}

		r.lines(e.leading)
		path := FormatPath(key...)
		if e.raw != "" && e.rawKey == path && !e.value.modified() {
			r.line(e.raw)
			continue
		}
		line := e.indent + path + " = " + r.value(e.value, e.indent)
		if e.comment != "" {
			line += "  " + e.comment
		}
		r.line(line)
	}
}

func (r *renderer) sections(t *Table, path []string) {
	for _, e := range t.entries {
		key := slices.Concat(path, []string{e.key})
		switch v := e.value.(type) {
		case *Table:
			switch v.style {
			case TableHeader, TableImplicit:
				r.section(v, key)
			case TableDotted:
				r.sections(v, key)
			}
		case *Array:
			if !v.isTableArray() {
				continue
			}
			for _, item := range v.items {
				elem := item.node.(*Table)
				r.header(elem, key, true)
				r.body(elem, nil)
				r.sections(elem, key)
			}
		}
	}
}

func (r *renderer) section(t *Table, path []string) {
	if t.style == TableHeader || t.hasValues() {
		r.header(t, path, false)
		r.body(t, nil)
	}
	r.sections(t, path)
}

func (r *renderer) header(t *Table, path []string, array bool) {
	key := FormatPath(path...)
	if t.header != "" && t.headerKey == key {
		r.lines(t.leading)
		r.line(t.header)
		return
	}
	if len(t.leading) == 0 || t.leading[0] != "" {
		r.separate()
	}
	r.lines(t.leading)
	line := "[" + key + "]"
	if array {
		line = "[[" + key + "]]"
	}
	if t.comment != "" {
		line += "  " + t.comment
	}
	r.line(line)
}

func (r *renderer) value(n Node, indent string) string {
	switch v := n.(type) {
	case *Scalar:
		return v.Text()
	case *Table:
		return r.inlineTable(v)
	case *Array:
		if v.style == ArrayMultiline && (len(v.items) > 0 || len(v.footer) > 0) {
			return r.multilineArray(v, indent)
		}
		return r.inlineArray(v)
	}
	return ""
}

func (r *renderer) inlineArray(a *Array) string {
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = r.inlineValue(item.node)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r *renderer) inlineTable(t *Table) string {
	var parts []string
	r.inlineEntries(t, nil, &parts)
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (r *renderer) inlineEntries(t *Table, prefix []string, parts *[]string) {
	for _, e := range t.entries {
		key := slices.Concat(prefix, []string{e.key})
		if sub, ok := e.value.(*Table); ok && sub.style == TableDotted {
			r.inlineEntries(sub, key, parts)
			continue
		}
		*parts = append(*parts, FormatPath(key...)+" = "+r.inlineValue(e.value))
	}
}

// inlineValue renders n on a single line regardless of its style.
func (r *renderer) inlineValue(n Node) string {
	switch v := n.(type) {
	case *Table:
		return r.inlineTable(v)
	case *Array:
		return r.inlineArray(v)
	}
	return r.value(n, "")
}

func (r *renderer) multilineArray(a *Array, indent string) string {
	inner := a.indent
	if inner == "" {
		inner = indent + defaultIndent
	}

	var b strings.Builder
	b.WriteString("[" + r.nl)
	for _, item := range a.items {
		for _, c := range item.leading {
			b.WriteString(inner + c + r.nl)
		}
		b.WriteString(inner + r.value(item.node, inner) + ",")
		if item.comment != "" {
			b.WriteString("  " + item.comment)
		}
		b.WriteString(r.nl)
	}
	for _, c := range a.footer {
		b.WriteString(inner + c + r.nl)
	}
	b.WriteString(indent + "]")
	return b.String()
}

// Inline renders n as a single-line TOML value.
func Inline(n Node) string {
	if n == nil {
		return ""
	}
	return (&renderer{nl: "\n"}).inlineValue(n)
}
