package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PackageName converts a distribution name into an importable package
// directory name. Letters are lowercased, digits and underscores are kept,
// hyphens, dots and everything else become underscores. Returns "" when
// nothing usable remains.
func PackageName(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// ProjectTitle turns "my-data_tool" into "My Data Tool" for README headings.
func ProjectTitle(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	if len(words) == 0 {
		return "Project Title"
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
