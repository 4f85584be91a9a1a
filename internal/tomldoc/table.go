package tomldoc

import "iter"

// TableStyle controls how a table is written. It never affects its data.
type TableStyle int

const (
	// TableHeader is a table introduced by a [header] line.
	TableHeader TableStyle = iota
	// TableImplicit is a super-table that only exists because a deeper
	// header or dotted key names it.
	TableImplicit
	// TableInline is an inline {key = value} table.
	TableInline
	// TableDotted is a table created by dotted keys such as a.b = 1.
	TableDotted
)

type entry struct {
	key     string
	value   Node
	leading []string
	comment string
	indent  string
	raw     string
	rawKey  string
}

// Table is an ordered mapping from keys to nodes.
type Table struct {
	style   TableStyle
	entries []*entry
	index   map[string]int

	leading   []string
	header    string
	headerKey string
	comment   string
	dirty     bool
}

// NewTable returns an empty table written with a [header].
func NewTable() *Table {
	return newTable(TableHeader)
}

// NewInlineTable returns an empty inline table.
func NewInlineTable() *Table {
	return newTable(TableInline)
}

func newTable(style TableStyle) *Table {
	return &Table{style: style, index: make(map[string]int)}
}

func (t *Table) Kind() Kind { return KindTable }

func (t *Table) Unwrap() any {
	out := make(map[string]any, len(t.entries))
	for _, e := range t.entries {
		out[e.key] = e.value.Unwrap()
	}
	return out
}

func (t *Table) Clone() Node {
	clone := &Table{
		style:     t.style,
		entries:   make([]*entry, 0, len(t.entries)),
		index:     make(map[string]int, len(t.entries)),
		leading:   cloneLines(t.leading),
		header:    t.header,
		headerKey: t.headerKey,
		comment:   t.comment,
		dirty:     t.dirty,
	}
	for _, e := range t.entries {
		clone.appendEntry(e.clone())
	}
	return clone
}

func (t *Table) modified() bool {
	if t.dirty {
		return true
	}
	for _, e := range t.entries {
		if e.value.modified() {
			return true
		}
	}
	return false
}

// Style reports how the table is written.
func (t *Table) Style() TableStyle { return t.style }

// Len returns the number of keys in the table.
func (t *Table) Len() int { return len(t.entries) }

// Get returns the node stored under key, or nil when the key is absent.
func (t *Table) Get(key string) Node {
	if i, ok := t.index[key]; ok {
		return t.entries[i].value
	}
	return nil
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Keys returns the keys in document order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates over key/value pairs in document order.
func (t *Table) All() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, e := range t.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Set stores value under key. An existing key keeps its position and its
// comments; a new key is appended after every existing key.
func (t *Table) Set(key string, value Node) {
	t.dirty = true
	if i, ok := t.index[key]; ok {
		e := t.entries[i]
		e.value = value
		e.raw = ""
		return
	}
	t.appendEntry(&entry{key: key, value: value})
}

// Adopt copies the entry stored under key in from into t, together with its
// comments, and returns the copied node. from is not modified. When t already
// holds key the entry keeps its position and leading comments. Adopt returns
// nil when from has no such key.
func (t *Table) Adopt(key string, from *Table) Node {
	i, ok := from.index[key]
	if !ok {
		return nil
	}
	src := from.entries[i]
	value := src.value.Clone()
	t.dirty = true
	if j, ok := t.index[key]; ok {
		e := t.entries[j]
		e.value = value
		e.raw = ""
		if src.comment != "" {
			e.comment = src.comment
		}
		return value
	}
	t.appendEntry(&entry{
		key:     key,
		value:   value,
		leading: cloneLines(src.leading),
		comment: src.comment,
		indent:  src.indent,
	})
	return value
}

func (t *Table) appendEntry(e *entry) {
	t.index[e.key] = len(t.entries)
	t.entries = append(t.entries, e)
}

func (t *Table) hasValues() bool {
	for _, e := range t.entries {
		if isValueEntry(e.value) {
			return true
		}
	}
	return false
}

func (e *entry) clone() *entry {
	return &entry{
		key:     e.key,
		value:   e.value.Clone(),
		leading: cloneLines(e.leading),
		comment: e.comment,
		indent:  e.indent,
		raw:     e.raw,
		rawKey:  e.rawKey,
	}
}

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
