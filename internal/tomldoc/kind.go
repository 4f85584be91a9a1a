package tomldoc

import "fmt"

// Kind is the resolved structural or primitive type of a node.
type Kind int

const (
	KindInvalid Kind = iota
	KindTable
	KindArrayOfTables
	KindArray
	KindString
	KindInteger
	KindFloat
	KindBool
	KindOffsetDateTime
	KindLocalDateTime
	KindLocalDate
	KindLocalTime
)

// String returns the TOML name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindArrayOfTables:
		return "array of tables"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindOffsetDateTime:
		return "offset datetime"
	case KindLocalDateTime:
		return "local datetime"
	case KindLocalDate:
		return "local date"
	case KindLocalTime:
		return "local time"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsScalar reports whether the kind is a leaf value.
func (k Kind) IsScalar() bool {
	return k >= KindString && k <= KindLocalTime
}

// IsArray reports whether the kind is one of the array-like kinds.
func (k Kind) IsArray() bool {
	return k == KindArray || k == KindArrayOfTables
}
