package mapping

// Field names one of the fixed semantic slots a label layout can reference.
type Field string

const (
	FieldProductName       Field = "productName"
	FieldProductCode       Field = "productCode"
	FieldGS1BarcodeNumber  Field = "gs1BarcodeNumber"
	FieldPowerInput        Field = "powerInput"
	FieldTemperatureRating Field = "temperatureRating"
	FieldIPRating          Field = "ipRating"
	FieldClassRating       Field = "classRating"
	FieldFrequency         Field = "frequency"
	FieldCCTValue          Field = "cctValue"
	FieldMadeIn            Field = "madeIn"
)

// Fields lists every semantic field in stable order.
var Fields = []Field{
	FieldProductName,
	FieldProductCode,
	FieldGS1BarcodeNumber,
	FieldPowerInput,
	FieldTemperatureRating,
	FieldIPRating,
	FieldClassRating,
	FieldFrequency,
	FieldCCTValue,
	FieldMadeIn,
}

// RequiredFields must all be mapped before batch rendering can proceed.
var RequiredFields = []Field{
	FieldProductName,
	FieldProductCode,
	FieldGS1BarcodeNumber,
}

// defaults substitute for optional fields whose mapped cell is blank or
// unmapped. IP and class fall back to the most common ratings so a sparse
// spreadsheet still yields a printable symbol row.
var defaults = map[Field]string{
	FieldFrequency:   "50 Hz",
	FieldCCTValue:    "4000K",
	FieldMadeIn:      "China",
	FieldIPRating:    "IP66",
	FieldClassRating: "Class I",
}

// Subject is the normalized, typed result of applying a Mapping to one raw
// row. Immutable once constructed; one per row.
type Subject struct {
	ProductName       string
	ProductCode       string
	GS1BarcodeNumber  string
	PowerInput        string
	TemperatureRating string
	IPRating          string
	ClassRating       string
	Frequency         string
	CCTValue          string
	MadeIn            string
}

// FieldValue returns the value for a semantic field name. It satisfies
// layout.FieldSource so placeholder tokens in layouts resolve against a
// subject.
func (s *Subject) FieldValue(name string) (string, bool) {
	switch Field(name) {
	case FieldProductName:
		return s.ProductName, true
	case FieldProductCode:
		return s.ProductCode, true
	case FieldGS1BarcodeNumber:
		return s.GS1BarcodeNumber, true
	case FieldPowerInput:
		return s.PowerInput, true
	case FieldTemperatureRating:
		return s.TemperatureRating, true
	case FieldIPRating:
		return s.IPRating, true
	case FieldClassRating:
		return s.ClassRating, true
	case FieldFrequency:
		return s.Frequency, true
	case FieldCCTValue:
		return s.CCTValue, true
	case FieldMadeIn:
		return s.MadeIn, true
	}
	return "", false
}

func (s *Subject) setField(f Field, value string) {
	switch f {
	case FieldProductName:
		s.ProductName = value
	case FieldProductCode:
		s.ProductCode = value
	case FieldGS1BarcodeNumber:
		s.GS1BarcodeNumber = value
	case FieldPowerInput:
		s.PowerInput = value
	case FieldTemperatureRating:
		s.TemperatureRating = value
	case FieldIPRating:
		s.IPRating = value
	case FieldClassRating:
		s.ClassRating = value
	case FieldFrequency:
		s.Frequency = value
	case FieldCCTValue:
		s.CCTValue = value
	case FieldMadeIn:
		s.MadeIn = value
	}
}
