package tomldoc

import (
	"math"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Node is a value in a document tree. It is implemented by *Table, *Array and
// *Scalar only.
type Node interface {
	// Kind resolves the node to its structural or primitive kind.
	Kind() Kind
	// Unwrap returns the plain Go value of the node with all formatting
	// metadata dropped.
	Unwrap() any
	// Clone returns a deep copy that keeps formatting metadata.
	Clone() Node

	modified() bool
}

// Scalar is a leaf value. The original spelling is kept so untouched values
// render exactly as they were written.
type Scalar struct {
	kind  Kind
	value any
	raw   string
}

// NewString returns a string scalar.
func NewString(v string) *Scalar { return &Scalar{kind: KindString, value: v} }

// NewInteger returns an integer scalar.
func NewInteger(v int64) *Scalar { return &Scalar{kind: KindInteger, value: v} }

// NewFloat returns a float scalar.
func NewFloat(v float64) *Scalar { return &Scalar{kind: KindFloat, value: v} }

// NewBool returns a boolean scalar.
func NewBool(v bool) *Scalar { return &Scalar{kind: KindBool, value: v} }

// NewOffsetDateTime returns an offset date-time scalar.
func NewOffsetDateTime(v time.Time) *Scalar {
	return &Scalar{kind: KindOffsetDateTime, value: v}
}

// NewLocalDateTime returns a local date-time scalar.
func NewLocalDateTime(v toml.LocalDateTime) *Scalar {
	return &Scalar{kind: KindLocalDateTime, value: v}
}

// NewLocalDate returns a local date scalar.
func NewLocalDate(v toml.LocalDate) *Scalar {
	return &Scalar{kind: KindLocalDate, value: v}
}

// NewLocalTime returns a local time scalar.
func NewLocalTime(v toml.LocalTime) *Scalar {
	return &Scalar{kind: KindLocalTime, value: v}
}

func (s *Scalar) Kind() Kind { return s.kind }

func (s *Scalar) Unwrap() any { return s.value }

func (s *Scalar) Clone() Node {
	clone := *s
	return &clone
}

func (s *Scalar) modified() bool { return false }

// Raw returns the spelling the scalar had in its source document, or an empty
// string for scalars built in code.
func (s *Scalar) Raw() string { return s.raw }

// Text renders the scalar as TOML.
func (s *Scalar) Text() string {
	if s.raw != "" {
		return s.raw
	}
	switch v := s.value.(type) {
	case string:
		return quoteString(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case toml.LocalDateTime:
		return v.String()
	case toml.LocalDate:
		return v.String()
	case toml.LocalTime:
		return v.String()
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	text := strconv.FormatFloat(v, 'g', -1, 64)
	for _, r := range text {
		if r == '.' || r == 'e' || r == 'E' {
			return text
		}
	}
	return text + ".0"
}
