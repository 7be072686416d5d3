package layout

import (
	"regexp"
	"strings"
)

// FieldSource resolves a semantic field name to its value for one row.
// Implemented by mapping.Subject.
type FieldSource interface {
	FieldValue(name string) (string, bool)
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9]+)\s*\}\}`)

// Expand substitutes {{fieldName}} tokens in s with values from src.
// Tokens with no corresponding field are left verbatim: a template may
// legitimately be used against a subject missing an optional value. Pure
// function; a string without tokens is returned unchanged.
func Expand(s string, src FieldSource) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := tokenPattern.FindStringSubmatch(token)[1]
		if value, ok := src.FieldValue(name); ok {
			return value
		}
		return token
	})
}
