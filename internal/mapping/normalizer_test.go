package mapping

import (
	"testing"

	"github.com/labelkit/labelgen/internal/tabular"
)

func committedMapping() Mapping {
	m := ProposeMapping([]string{
		"Description", "Product Code", "GS1 Barcode Number",
		"Power Input", "Frequency", "Made In",
	})
	return m
}

func TestNormalize(t *testing.T) {
	m := committedMapping()
	row := tabular.RawRow{
		"Description":        "  Lamp A  ",
		"Product Code":       "LA-1",
		"GS1 Barcode Number": "9300000000017",
		"Power Input":        "220-240V",
		"Frequency":          "60 Hz",
		"Made In":            "Vietnam",
	}

	s := Normalize(row, m)

	if s.ProductName != "Lamp A" {
		t.Errorf("ProductName = %q, want trimmed 'Lamp A'", s.ProductName)
	}
	if s.ProductCode != "LA-1" {
		t.Errorf("ProductCode = %q", s.ProductCode)
	}
	if s.GS1BarcodeNumber != "9300000000017" {
		t.Errorf("GS1BarcodeNumber = %q", s.GS1BarcodeNumber)
	}
	if s.Frequency != "60 Hz" {
		t.Errorf("Frequency = %q, mapped value must win over default", s.Frequency)
	}
	if s.MadeIn != "Vietnam" {
		t.Errorf("MadeIn = %q", s.MadeIn)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	m := committedMapping()
	row := tabular.RawRow{
		"Description":        "Lamp B",
		"Product Code":       "LB-1",
		"GS1 Barcode Number": "9300000000024",
		// Power Input mapped but blank, Frequency/Made In blank too.
		"Power Input": "  ",
	}

	s := Normalize(row, m)

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"Frequency", s.Frequency, "50 Hz"},
		{"CCTValue", s.CCTValue, "4000K"},
		{"MadeIn", s.MadeIn, "China"},
		{"IPRating", s.IPRating, "IP66"},
		{"ClassRating", s.ClassRating, "Class I"},
		{"PowerInput", s.PowerInput, ""}, // no default for power input
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
}

func TestNormalizeMandatoryNonEmpty(t *testing.T) {
	// With a complete mapping and non-blank mandatory cells, mandatory
	// fields are always non-empty after normalization.
	m := committedMapping()
	row := tabular.RawRow{
		"Description":        "Lamp C",
		"Product Code":       "LC-1",
		"GS1 Barcode Number": "9300000000031",
	}

	s := Normalize(row, m)
	for _, f := range RequiredFields {
		v, ok := s.FieldValue(string(f))
		if !ok || v == "" {
			t.Errorf("mandatory field %s empty after normalization", f)
		}
	}
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	m := committedMapping()
	rows := []tabular.RawRow{
		{"Description": "First", "Product Code": "1", "GS1 Barcode Number": "9300000000017"},
		{"Description": "Second", "Product Code": "2", "GS1 Barcode Number": "9300000000024"},
		{"Description": "Third", "Product Code": "3", "GS1 Barcode Number": "9300000000031"},
	}

	subjects := NormalizeAll(rows, m)
	if len(subjects) != 3 {
		t.Fatalf("expected 3 subjects, got %d", len(subjects))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if subjects[i].ProductName != want {
			t.Errorf("subjects[%d].ProductName = %q, want %q", i, subjects[i].ProductName, want)
		}
	}
}

func TestFieldValueUnknown(t *testing.T) {
	s := Subject{ProductName: "Lamp"}
	if _, ok := s.FieldValue("nonexistent"); ok {
		t.Errorf("FieldValue for unknown name should report false")
	}
}
