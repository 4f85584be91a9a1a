package tomldoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// ParseError reports a syntax or structural error in a TOML document.
type ParseError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a TOML document into a format-preserving tree.
func Parse(data []byte) (*Document, error) {
	ps := &parser{
		data:  data,
		lines: lineStarts(data),
		root:  newTable(TableImplicit),
		last:  &pending{kind: pendingBlank},
	}
	ps.current = ps.root
	ps.p.KeepComments = true
	ps.p.Reset(data)

	for ps.p.NextExpression() {
		expr := ps.p.Expression()
		start := ps.lineStart(ps.exprOffset(expr))
		ps.close(start)

		var err error
		switch expr.Kind {
		case unstable.Comment:
			ps.last = &pending{kind: pendingComment, start: start}
		case unstable.KeyValue:
			err = ps.keyValue(expr, start)
		case unstable.Table:
			err = ps.table(expr, start)
		case unstable.ArrayTable:
			err = ps.arrayTable(expr, start)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := ps.p.Error(); err != nil {
		return nil, ps.syntaxError(err)
	}
	ps.close(len(data))

	return &Document{root: ps.root, footer: ps.decor, newline: detectNewline(data)}, nil
}

type pendingKind int

const (
	pendingBlank pendingKind = iota
	pendingComment
	pendingEntry
	pendingHeader
)

// pending is the last expression seen. Its raw text is only known once the
// next expression starts.
type pending struct {
	kind  pendingKind
	start int
	entry *entry
	table *Table
}

type parser struct {
	p       unstable.Parser
	data    []byte
	lines   []int
	root    *Table
	current *Table
	decor   []string
	last    *pending
}

func (ps *parser) close(next int) {
	last := ps.last
	if last == nil {
		return
	}
	ps.last = nil

	text := string(ps.data[last.start:next])
	raw := strings.TrimRight(text, " \t\r\n")
	blanks := strings.Count(text[len(raw):], "\n")
	if last.kind != pendingBlank && blanks > 0 {
		blanks--
	}

	switch last.kind {
	case pendingComment:
		ps.decor = append(ps.decor, raw)
	case pendingEntry:
		last.entry.raw = raw
	case pendingHeader:
		last.table.header = raw
	}
	for i := 0; i < blanks; i++ {
		ps.decor = append(ps.decor, "")
	}
}

func (ps *parser) takeDecor() []string {
	decor := ps.decor
	ps.decor = nil
	return decor
}

func (ps *parser) keyValue(expr *unstable.Node, start int) error {
	keys := nodeKeys(expr.Key())
	value, err := ps.value(expr.Value(), ps.lineOf(start))
	if err != nil {
		return err
	}
	e := &entry{
		key:     keys[len(keys)-1],
		value:   value,
		leading: ps.takeDecor(),
		indent:  ps.indentAt(ps.exprOffset(expr)),
		rawKey:  FormatPath(keys...),
	}
	if c := expr.Next(); c != nil && c.Kind == unstable.Comment {
		e.comment = commentText(c.Data)
	}
	if err := ps.insert(ps.current, keys, e, start); err != nil {
		return err
	}
	ps.last = &pending{kind: pendingEntry, start: start, entry: e}
	return nil
}

func (ps *parser) insert(t *Table, keys []string, e *entry, offset int) error {
	for _, k := range keys[:len(keys)-1] {
		switch existing := t.Get(k).(type) {
		case nil:
			sub := newTable(TableDotted)
			t.appendEntry(&entry{key: k, value: sub})
			t = sub
		case *Table:
			if existing.style == TableInline || existing.style == TableHeader {
				return ps.errorAt(offset, "cannot extend table %s with dotted keys", FormatKey(k))
			}
			t = existing
		default:
			return ps.errorAt(offset, "key %s is already defined as %s", FormatKey(k), existing.Kind())
		}
	}
	if t.Has(e.key) {
		return ps.errorAt(offset, "duplicate key %s", FormatPath(keys...))
	}
	t.appendEntry(e)
	return nil
}

func (ps *parser) table(expr *unstable.Node, start int) error {
	keys := nodeKeys(expr.Key())
	parent, err := ps.descend(keys[:len(keys)-1], start)
	if err != nil {
		return err
	}

	last := keys[len(keys)-1]
	var t *Table
	switch existing := parent.Get(last).(type) {
	case nil:
		t = newTable(TableHeader)
		parent.appendEntry(&entry{key: last, value: t})
	case *Table:
		if existing.style != TableImplicit {
			return ps.errorAt(start, "table %s is already defined", FormatPath(keys...))
		}
		existing.style = TableHeader
		t = existing
	default:
		return ps.errorAt(start, "key %s is already defined as %s", FormatPath(keys...), existing.Kind())
	}

	ps.openHeader(t, expr, keys, start)
	return nil
}

func (ps *parser) arrayTable(expr *unstable.Node, start int) error {
	keys := nodeKeys(expr.Key())
	parent, err := ps.descend(keys[:len(keys)-1], start)
	if err != nil {
		return err
	}

	last := keys[len(keys)-1]
	var arr *Array
	switch existing := parent.Get(last).(type) {
	case nil:
		arr = NewArrayOfTables()
		parent.appendEntry(&entry{key: last, value: arr})
	case *Array:
		if existing.style != ArrayOfTables {
			return ps.errorAt(start, "cannot append to static array %s", FormatPath(keys...))
		}
		arr = existing
	default:
		return ps.errorAt(start, "key %s is already defined as %s", FormatPath(keys...), existing.Kind())
	}

	t := newTable(TableHeader)
	arr.items = append(arr.items, arrayItem{node: t})
	ps.openHeader(t, expr, keys, start)
	return nil
}

func (ps *parser) openHeader(t *Table, expr *unstable.Node, keys []string, start int) {
	t.leading = ps.takeDecor()
	t.headerKey = FormatPath(keys...)
	if c := expr.Next(); c != nil && c.Kind == unstable.Comment {
		t.comment = commentText(c.Data)
	}
	ps.current = t
	ps.last = &pending{kind: pendingHeader, start: start, table: t}
}

// descend walks the super-tables of a header, creating implicit tables and
// entering the last element of arrays of tables.
func (ps *parser) descend(keys []string, offset int) (*Table, error) {
	t := ps.root
	for _, k := range keys {
		switch existing := t.Get(k).(type) {
		case nil:
			sub := newTable(TableImplicit)
			t.appendEntry(&entry{key: k, value: sub})
			t = sub
		case *Table:
			if existing.style == TableInline {
				return nil, ps.errorAt(offset, "inline table %s cannot be extended", FormatKey(k))
			}
			t = existing
		case *Array:
			if existing.style != ArrayOfTables || len(existing.items) == 0 {
				return nil, ps.errorAt(offset, "key %s is a static array", FormatKey(k))
			}
			elem, ok := existing.items[len(existing.items)-1].node.(*Table)
			if !ok {
				return nil, ps.errorAt(offset, "key %s is not an array of tables", FormatKey(k))
			}
			t = elem
		default:
			return nil, ps.errorAt(offset, "key %s is already defined as %s", FormatKey(k), existing.Kind())
		}
	}
	return t, nil
}

func (ps *parser) value(n *unstable.Node, openLine int) (Node, error) {
	switch n.Kind {
	case unstable.String:
		return &Scalar{kind: KindString, value: string(n.Data), raw: string(ps.p.Raw(n.Raw))}, nil
	case unstable.Bool:
		text := string(n.Data)
		return &Scalar{kind: KindBool, value: text == "true", raw: text}, nil
	case unstable.Integer:
		text := string(n.Data)
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid integer %s", text)
		}
		return &Scalar{kind: KindInteger, value: v, raw: text}, nil
	case unstable.Float:
		text := string(n.Data)
		v, err := parseFloat(text)
		if err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid float %s", text)
		}
		return &Scalar{kind: KindFloat, value: v, raw: text}, nil
	case unstable.LocalDate:
		var v toml.LocalDate
		if err := v.UnmarshalText(n.Data); err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid local date %s", n.Data)
		}
		return &Scalar{kind: KindLocalDate, value: v, raw: string(n.Data)}, nil
	case unstable.LocalTime:
		var v toml.LocalTime
		if err := v.UnmarshalText(n.Data); err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid local time %s", n.Data)
		}
		return &Scalar{kind: KindLocalTime, value: v, raw: string(n.Data)}, nil
	case unstable.LocalDateTime:
		var v toml.LocalDateTime
		if err := v.UnmarshalText(n.Data); err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid local datetime %s", n.Data)
		}
		return &Scalar{kind: KindLocalDateTime, value: v, raw: string(n.Data)}, nil
	case unstable.DateTime:
		v, err := parseOffsetDateTime(n.Data)
		if err != nil {
			return nil, ps.errorAt(ps.start(n), "invalid offset datetime %s", n.Data)
		}
		return &Scalar{kind: KindOffsetDateTime, value: v, raw: string(n.Data)}, nil
	case unstable.Array:
		return ps.array(n, openLine)
	case unstable.InlineTable:
		return ps.inlineTable(n)
	default:
		return nil, ps.errorAt(ps.start(n), "unexpected %s value", n.Kind)
	}
}

func (ps *parser) array(n *unstable.Node, openLine int) (*Array, error) {
	arr := &Array{style: ArrayInline}
	var (
		leading   []string
		firstLine = -1
		lastLine  = -1
		multiline bool
	)

	it := n.Children()
	for it.Next() {
		c := it.Node()
		if c.Kind == unstable.Comment {
			multiline = true
			for _, cm := range flattenComments(c) {
				text := commentText(cm.Data)
				line := ps.lineOf(int(cm.Raw.Offset))
				if last := len(arr.items) - 1; last >= 0 && line == lastLine && arr.items[last].comment == "" {
					arr.items[last].comment = text
					continue
				}
				leading = append(leading, text)
			}
			continue
		}

		value, err := ps.value(c, -1)
		if err != nil {
			return nil, err
		}
		if start := ps.start(c); start >= 0 {
			line := ps.lineOf(start)
			if firstLine < 0 {
				firstLine = line
				arr.indent = ps.indentAt(start)
			}
			if lastLine >= 0 && line != lastLine {
				multiline = true
			}
			lastLine = line
		}
		arr.items = append(arr.items, arrayItem{node: value, leading: leading})
		leading = nil
	}
	arr.footer = leading

	if openLine >= 0 && firstLine > openLine {
		multiline = true
	}
	if multiline {
		arr.style = ArrayMultiline
	}
	return arr, nil
}

func (ps *parser) inlineTable(n *unstable.Node) (*Table, error) {
	t := newTable(TableInline)
	it := n.Children()
	for it.Next() {
		kv := it.Node()
		keys := nodeKeys(kv.Key())
		value, err := ps.value(kv.Value(), -1)
		if err != nil {
			return nil, err
		}
		if err := ps.insert(t, keys, &entry{key: keys[len(keys)-1], value: value}, ps.start(n)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// start returns the byte offset where n begins, or -1 when the parser kept no
// position for it.
func (ps *parser) start(n *unstable.Node) int {
	if n.Raw.Length > 0 {
		return int(n.Raw.Offset)
	}
	if off, ok := ps.offsetOf(n.Data); ok {
		return off
	}
	it := n.Children()
	for it.Next() {
		if off := ps.start(it.Node()); off >= 0 {
			return off
		}
	}
	return -1
}

// offsetOf locates b inside the parsed input when b is a subslice of it.
func (ps *parser) offsetOf(b []byte) (int, bool) {
	if len(b) == 0 || len(ps.data) == 0 {
		return 0, false
	}
	off := cap(ps.data) - cap(b)
	if off < 0 || off >= len(ps.data) || &ps.data[off] != &b[0] {
		return 0, false
	}
	return off, true
}

func (ps *parser) exprOffset(expr *unstable.Node) int {
	switch expr.Kind {
	case unstable.KeyValue, unstable.Table, unstable.ArrayTable:
		it := expr.Key()
		if it.Next() {
			return int(it.Node().Raw.Offset)
		}
	}
	return int(expr.Raw.Offset)
}

func (ps *parser) lineStart(offset int) int {
	if offset > len(ps.data) {
		offset = len(ps.data)
	}
	return bytes.LastIndexByte(ps.data[:offset], '\n') + 1
}

func (ps *parser) lineOf(offset int) int {
	return sort.SearchInts(ps.lines, offset+1) - 1
}

func (ps *parser) indentAt(offset int) string {
	prefix := ps.data[ps.lineStart(offset):offset]
	if len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return ""
	}
	return string(prefix)
}

func (ps *parser) errorAt(offset int, format string, args ...any) error {
	line, col := 1, 1
	if offset >= 0 {
		line = ps.lineOf(offset) + 1
		col = offset - ps.lines[line-1] + 1
	}
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (ps *parser) syntaxError(err error) error {
	var perr *unstable.ParserError
	if !errors.As(err, &perr) {
		return &ParseError{Line: 1, Column: 1, Message: err.Error(), Err: err}
	}
	offset := len(ps.data)
	if off, ok := ps.offsetOf(perr.Highlight); ok {
		offset = off
	}
	line := ps.lineOf(offset) + 1
	return &ParseError{
		Line:    line,
		Column:  offset - ps.lines[line-1] + 1,
		Message: perr.Message,
		Err:     err,
	}
}

func lineStarts(data []byte) []int {
	starts := []int{0}
	for i, c := range data {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func nodeKeys(it unstable.Iterator) []string {
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Node().Data))
	}
	return keys
}

func flattenComments(c *unstable.Node) []*unstable.Node {
	out := []*unstable.Node{c}
	it := c.Children()
	for it.Next() {
		out = append(out, it.Node())
	}
	return out
}

func commentText(data []byte) string {
	return strings.TrimRight(string(data), "\r\n")
}

func parseFloat(text string) (float64, error) {
	clean := strings.ReplaceAll(text, "_", "")
	switch strings.TrimLeft(clean, "+-") {
	case "nan":
		return math.NaN(), nil
	case "inf":
		if strings.HasPrefix(clean, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}
	return strconv.ParseFloat(clean, 64)
}

func parseOffsetDateTime(data []byte) (time.Time, error) {
	text := string(data)
	var (
		zone  *time.Location
		local string
	)
	switch {
	case strings.HasSuffix(text, "Z"), strings.HasSuffix(text, "z"):
		zone = time.UTC
		local = text[:len(text)-1]
	case len(text) > 6 && (text[len(text)-6] == '+' || text[len(text)-6] == '-'):
		offset, err := time.Parse("-07:00", text[len(text)-6:])
		if err != nil {
			return time.Time{}, err
		}
		_, seconds := offset.Zone()
		zone = time.FixedZone("", seconds)
		if seconds == 0 {
			zone = time.UTC
		}
		local = text[:len(text)-6]
	default:
		return time.Time{}, fmt.Errorf("missing offset in %q", text)
	}

	var dt toml.LocalDateTime
	if err := dt.UnmarshalText([]byte(local)); err != nil {
		return time.Time{}, err
	}
	return dt.AsTime(zone), nil
}
