package mapping

import (
	"fmt"
	"strings"
	"sync"
)

// Mapping assigns each semantic field a source column name, or "" when the
// field is unmapped. It stays mutable after proposal so a caller can review
// and override individual fields before committing it to normalization.
type Mapping map[Field]string

// synonym table: normalized header name to semantic field. Extensible via
// RegisterSynonym, so callers can teach the mapper their own column names.
var (
	synonymMu sync.RWMutex
	synonyms  = map[string]Field{
		"productname":       FieldProductName,
		"description":       FieldProductName,
		"productcode":       FieldProductCode,
		"gs1barcodenumber":  FieldGS1BarcodeNumber,
		"barcode":           FieldGS1BarcodeNumber,
		"powerinput":        FieldPowerInput,
		"temperaturerating": FieldTemperatureRating,
		"iprating":          FieldIPRating,
		"classrating":       FieldClassRating,
		"frequency":         FieldFrequency,
		"cctvalue":          FieldCCTValue,
		"madein":            FieldMadeIn,
	}
)

// RegisterSynonym adds a header synonym for a semantic field. The name is
// normalized the same way headers are during proposal.
func RegisterSynonym(header string, field Field) {
	synonymMu.Lock()
	defer synonymMu.Unlock()
	synonyms[NormalizeHeader(header)] = field
}

// NormalizeHeader lowercases a header and removes whitespace, underscores
// and hyphens, so "Product Code", "product_code" and "PRODUCTCODE" all
// compare equal.
func NormalizeHeader(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '_' || r == '-':
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ProposeMapping matches headers against the synonym table by normalized
// name. Matching is exact only: a wrong auto-map would be silently worse
// than no map, and the manual override step exists to catch the remainder.
// When several headers normalize to the same field the leftmost column
// wins. Deterministic and idempotent for identical header slices.
func ProposeMapping(headers []string) Mapping {
	m := make(Mapping, len(Fields))
	for _, f := range Fields {
		m[f] = ""
	}

	synonymMu.RLock()
	defer synonymMu.RUnlock()

	for _, header := range headers {
		field, ok := synonyms[NormalizeHeader(header)]
		if !ok {
			continue
		}
		if m[field] == "" {
			m[field] = header
		}
	}
	return m
}

// Set maps a semantic field to a source column, overriding any proposal.
func (m Mapping) Set(field Field, header string) {
	m[field] = header
}

// Clear unmaps a semantic field.
func (m Mapping) Clear(field Field) {
	m[field] = ""
}

// IsComplete reports whether every mandatory field is mapped. Batch
// rendering must not proceed while this is false.
func (m Mapping) IsComplete() bool {
	return len(m.MissingRequired()) == 0
}

// MissingRequired returns the mandatory fields still unmapped, in stable
// order.
func (m Mapping) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if m[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// Validate returns an error naming the unmapped mandatory fields, or nil
// when the mapping is complete.
func (m Mapping) Validate() error {
	missing := m.MissingRequired()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	return fmt.Errorf("mandatory fields unmapped: %s", strings.Join(names, ", "))
}
