package tomldoc

import "bytes"

// Document is a parsed TOML file: its root table plus any comments and blank
// lines after the last entry.
type Document struct {
	root   *Table
	footer []string
	// newline is the line ending of the parsed file, "\n" or "\r\n".
	newline string
}

// New returns an empty document.
func New() *Document {
	return &Document{root: newTable(TableImplicit), newline: "\n"}
}

// detectNewline returns the line ending of the first line of data.
func detectNewline(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// Root returns the top-level table.
func (d *Document) Root() *Table { return d.root }

// String renders the document as TOML text.
func (d *Document) String() string { return string(d.Render()) }
