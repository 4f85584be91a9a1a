package tomldoc

import (
	"fmt"
	"strings"
)

// FormatKey returns key as a bare key when possible and as a quoted key
// otherwise.
func FormatKey(key string) string {
	if isBareKey(key) {
		return key
	}
	return quoteString(key)
}

// FormatPath joins keys into a dotted key, quoting parts as needed.
func FormatPath(keys ...string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = FormatKey(k)
	}
	return strings.Join(parts, ".")
}

func isBareKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
