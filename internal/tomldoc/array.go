package tomldoc

import "iter"

// ArrayStyle controls how an array is written.
type ArrayStyle int

const (
	// ArrayInline is a single-line [a, b] array.
	ArrayInline ArrayStyle = iota
	// ArrayMultiline is a bracketed array with one item per line.
	ArrayMultiline
	// ArrayOfTables is a sequence of [[header]] tables.
	ArrayOfTables
)

type arrayItem struct {
	node    Node
	leading []string
	comment string
}

// Array is an ordered sequence of nodes.
type Array struct {
	style  ArrayStyle
	items  []arrayItem
	footer []string
	indent string
	dirty  bool
}

// NewArray returns an inline array holding items.
func NewArray(items ...Node) *Array {
	a := &Array{style: ArrayInline}
	for _, item := range items {
		a.items = append(a.items, arrayItem{node: item})
	}
	return a
}

// NewArrayOfTables returns an array of tables holding tables.
func NewArrayOfTables(tables ...*Table) *Array {
	a := &Array{style: ArrayOfTables}
	for _, t := range tables {
		a.items = append(a.items, arrayItem{node: t})
	}
	return a
}

func (a *Array) Kind() Kind {
	if a.style == ArrayOfTables {
		return KindArrayOfTables
	}
	return KindArray
}

func (a *Array) Unwrap() any {
	out := make([]any, len(a.items))
	for i, item := range a.items {
		out[i] = item.node.Unwrap()
	}
	return out
}

func (a *Array) Clone() Node {
	clone := &Array{
		style:  a.style,
		items:  make([]arrayItem, len(a.items)),
		footer: cloneLines(a.footer),
		indent: a.indent,
		dirty:  a.dirty,
	}
	for i, item := range a.items {
		clone.items[i] = arrayItem{
			node:    item.node.Clone(),
			leading: cloneLines(item.leading),
			comment: item.comment,
		}
	}
	return clone
}

func (a *Array) modified() bool {
	if a.dirty {
		return true
	}
	for _, item := range a.items {
		if item.node.modified() {
			return true
		}
	}
	return false
}

// Style reports how the array is written.
func (a *Array) Style() ArrayStyle { return a.style }

// Len returns the number of items.
func (a *Array) Len() int { return len(a.items) }

// At returns the item at index i.
func (a *Array) At(i int) Node { return a.items[i].node }

// All iterates over the items in order.
func (a *Array) All() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		for i, item := range a.items {
			if !yield(i, item.node) {
				return
			}
		}
	}
}

// Append adds n after the existing items.
func (a *Array) Append(n Node) {
	a.dirty = true
	a.items = append(a.items, arrayItem{node: n})
}

func (a *Array) isTableArray() bool {
	if a.style != ArrayOfTables || len(a.items) == 0 {
		return false
	}
	for _, item := range a.items {
		if _, ok := item.node.(*Table); !ok {
			return false
		}
	}
	return true
}
