package mapping

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "description", "description"},
		{"spaces", "Product Code", "productcode"},
		{"underscores", "product_code", "productcode"},
		{"hyphens", "product-code", "productcode"},
		{"upper", "PRODUCTCODE", "productcode"},
		{"mixed", "GS1 Barcode_Number", "gs1barcodenumber"},
		{"tabs and newlines", "cct\tvalue\n", "cctvalue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHeader(tt.in); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProposeMapping(t *testing.T) {
	headers := []string{"Description", "Product Code", "GS1 Barcode Number", "Unrelated"}

	m := ProposeMapping(headers)

	if m[FieldProductName] != "Description" {
		t.Errorf("productName mapped to %q, want 'Description'", m[FieldProductName])
	}
	if m[FieldProductCode] != "Product Code" {
		t.Errorf("productCode mapped to %q, want 'Product Code'", m[FieldProductCode])
	}
	if m[FieldGS1BarcodeNumber] != "GS1 Barcode Number" {
		t.Errorf("gs1BarcodeNumber mapped to %q, want 'GS1 Barcode Number'", m[FieldGS1BarcodeNumber])
	}
	if m[FieldPowerInput] != "" {
		t.Errorf("powerInput should be unmapped, got %q", m[FieldPowerInput])
	}
	if !m.IsComplete() {
		t.Errorf("mapping with all mandatory fields should be complete")
	}
}

func TestProposeMappingDeterministic(t *testing.T) {
	headers := []string{"Description", "Product Code", "Barcode", "Frequency"}

	first := ProposeMapping(headers)
	second := ProposeMapping(headers)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("ProposeMapping not deterministic: %v vs %v", first, second)
	}
}

func TestProposeMappingLeftmostWins(t *testing.T) {
	// Both "Description" and "Product Name" normalize to productName; the
	// leftmost column must win.
	m := ProposeMapping([]string{"Description", "Product Name"})
	if m[FieldProductName] != "Description" {
		t.Errorf("leftmost header should win, got %q", m[FieldProductName])
	}

	m = ProposeMapping([]string{"Product Name", "Description"})
	if m[FieldProductName] != "Product Name" {
		t.Errorf("leftmost header should win, got %q", m[FieldProductName])
	}
}

func TestProposeMappingAllSynonyms(t *testing.T) {
	headers := []string{
		"Description", "Product Code", "GS1 Barcode Number",
		"Power Input", "Temperature Rating", "IP Rating",
		"Class Rating", "Frequency", "CCT Value", "Made In",
	}

	m := ProposeMapping(headers)

	for _, f := range Fields {
		if m[f] == "" {
			t.Errorf("field %s left unmapped", f)
		}
	}
	if !m.IsComplete() {
		t.Errorf("fully matched mapping should be complete")
	}
}

func TestMappingOverride(t *testing.T) {
	m := ProposeMapping([]string{"Description", "Product Code"})

	if m.IsComplete() {
		t.Fatalf("mapping without barcode column should be incomplete")
	}

	missing := m.MissingRequired()
	if len(missing) != 1 || missing[0] != FieldGS1BarcodeNumber {
		t.Errorf("MissingRequired() = %v, want [gs1BarcodeNumber]", missing)
	}
	if err := m.Validate(); err == nil {
		t.Errorf("Validate() should fail with unmapped mandatory field")
	}

	// Manual override: any field can be pointed at any header.
	m.Set(FieldGS1BarcodeNumber, "EAN")
	if !m.IsComplete() {
		t.Errorf("mapping should be complete after manual override")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error = %v after override", err)
	}

	// Clearing a mandatory field blocks rendering again.
	m.Clear(FieldProductCode)
	if m.IsComplete() {
		t.Errorf("mapping should be incomplete after clearing productCode")
	}
}

func TestRegisterSynonym(t *testing.T) {
	RegisterSynonym("EAN-13 Number", FieldGS1BarcodeNumber)

	m := ProposeMapping([]string{"Description", "Product Code", "EAN 13 Number"})
	if m[FieldGS1BarcodeNumber] != "EAN 13 Number" {
		t.Errorf("registered synonym not matched, got %q", m[FieldGS1BarcodeNumber])
	}
}
