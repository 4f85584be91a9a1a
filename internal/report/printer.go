package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"defaultpoetry/internal/merge"
	"defaultpoetry/internal/tomldoc"
)

const indentUnit = "  "

// Printer writes human-facing progress lines. Colour is only used when the
// destination is a terminal.
type Printer struct {
	out io.Writer

	header  *color.Color
	info    *color.Color
	warning *color.Color
	failure *color.Color
}

// NewPrinter returns a printer for out, colouring output when out is a
// terminal and NO_COLOR is unset.
func NewPrinter(out io.Writer) *Printer {
	return NewPrinterWithColor(out, ShouldColorize(out))
}

// NewPrinterWithColor returns a printer with colour forced on or off.
func NewPrinterWithColor(out io.Writer, colorize bool) *Printer {
	p := &Printer{
		out:     out,
		header:  color.New(color.FgHiMagenta, color.Bold),
		info:    color.New(color.FgHiCyan),
		warning: color.New(color.FgHiYellow),
		failure: color.New(color.FgHiRed),
	}
	for _, c := range []*color.Color{p.header, p.info, p.warning, p.failure} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// ShouldColorize reports whether writer is a terminal.
func ShouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Header prints a top-level banner such as "Initializing project".
func (p *Printer) Header(text string) {
	fmt.Fprintln(p.out, p.header.Sprint(text))
}

// Step announces a workflow step.
func (p *Printer) Step(text string) {
	fmt.Fprintln(p.out, text)
}

// Line prints plain text at the given indent.
func (p *Printer) Line(indent int, text string) {
	fmt.Fprintln(p.out, pad(indent)+text)
}

// Item prints "label value" with value highlighted.
func (p *Printer) Item(indent int, label, value string) {
	fmt.Fprintln(p.out, pad(indent)+label+p.info.Sprint(value))
}

// Notice prints an informational line.
func (p *Printer) Notice(indent int, text string) {
	fmt.Fprintln(p.out, pad(indent)+p.info.Sprint(text))
}

// Warn prints a warning line.
func (p *Printer) Warn(indent int, text string) {
	fmt.Fprintln(p.out, pad(indent)+p.warning.Sprint(text))
}

// WarnItem prints "label value" as a warning, e.g. "Overwriting .gitignore".
func (p *Printer) WarnItem(indent int, label, value string) {
	fmt.Fprintln(p.out, pad(indent)+p.warning.Sprint(label)+p.info.Sprint(value))
}

// Error prints an error line.
func (p *Printer) Error(indent int, text string) {
	fmt.Fprintln(p.out, pad(indent)+p.failure.Sprint(text))
}

// Decisions prints one line per merge decision at the given indent.
func (p *Printer) Decisions(indent int, decisions []merge.Decision) {
	for _, d := range decisions {
		p.Decision(indent, d)
	}
}

// Decision prints a single merge decision. Skips are warnings, everything
// else is a notice.
func (p *Printer) Decision(indent int, d merge.Decision) {
	text := Describe(d)
	if d.Action.Skipped() {
		p.Warn(indent, text)
		return
	}
	p.Notice(indent, text)
}

// Describe renders a decision as a one-line sentence.
func Describe(d merge.Decision) string {
	path := d.Path.String()
	switch d.Action {
	case merge.SkippedTypeConflict:
		return fmt.Sprintf("Key %s type mismatch source: %s target: %s, use --force to overwrite", path, d.SourceKind, d.TargetKind)
	case merge.SkippedKeyExists:
		return fmt.Sprintf("Key %s already exists, use --force to overwrite", path)
	case merge.AppendedArrayItem:
		return fmt.Sprintf("Appended %s to %s", short(d.Value), path)
	case merge.Overwrote:
		return fmt.Sprintf("Overwrote %s: %s -> %s", path, short(d.Previous), short(d.Value))
	default:
		return fmt.Sprintf("Merged %s", path)
	}
}

const maxValueWidth = 60

func short(n tomldoc.Node) string {
	text := tomldoc.Inline(n)
	if utf8.RuneCountInString(text) <= maxValueWidth {
		return text
	}
	return string([]rune(text)[:maxValueWidth-3]) + "..."
}

func pad(indent int) string {
	if indent <= 0 {
		return ""
	}
	return strings.Repeat(indentUnit, indent)
}
