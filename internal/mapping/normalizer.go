package mapping

import (
	"strings"

	"github.com/labelkit/labelgen/internal/tabular"
)

// Normalize applies a committed mapping to one raw row, producing the
// subject used to fill a layout. Pure and total: values are trimmed as
// ordinary text, optional fields get their defaults when the mapped cell is
// blank or the field is unmapped. Callers must check Mapping.IsComplete
// before this stage runs; Normalize itself never fails.
func Normalize(row tabular.RawRow, m Mapping) Subject {
	var s Subject
	for _, f := range Fields {
		value := ""
		if header := m[f]; header != "" {
			value = strings.TrimSpace(row[header])
		}
		if value == "" {
			value = defaults[f]
		}
		s.setField(f, value)
	}
	return s
}

// NormalizeAll normalizes every row of a table in order.
func NormalizeAll(rows []tabular.RawRow, m Mapping) []Subject {
	subjects := make([]Subject, len(rows))
	for i, row := range rows {
		subjects[i] = Normalize(row, m)
	}
	return subjects
}
