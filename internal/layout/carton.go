package layout

// DefaultCarton returns the built-in carton label layout: product header,
// specifications box, barcode block, the IP/class/recycling/bin symbol row
// and the branding footer, on an 800x600 white canvas.
func DefaultCarton() *Descriptor {
	const (
		symbolsY      = 380.0
		symbolSpacing = 100.0
	)

	return &Descriptor{
		Name:       "carton",
		Width:      DefaultCanvasWidth,
		Height:     DefaultCanvasHeight,
		Background: "#FFFFFF",
		Elements: []Element{
			// Header: product name and model code.
			{Kind: KindText, Left: 50, Top: 30, Text: "{{productName}}", FontSize: 28, Bold: true, Fill: "#000000"},
			{Kind: KindText, Left: 50, Top: 65, Text: "{{productCode}}", FontSize: 20, Fill: "#333333"},

			// Specifications box.
			{Kind: KindRect, Left: 50, Top: 110, Width: 700, Height: 80, Fill: "transparent", Stroke: "#000000", StrokeWidth: 2},
			{Kind: KindText, Left: 60, Top: 130, Text: "{{powerInput}} {{frequency}} tₐ= {{temperatureRating}} {{cctValue}}", FontSize: 18, Fill: "#000000"},

			// Barcode block.
			{Kind: KindBarcode, Left: 50, Top: 220, Width: 375, Height: 125},

			// Symbol row: IP rating.
			{Kind: KindRect, Left: 50, Top: symbolsY, Width: 80, Height: 80, Fill: "#FFFFFF", Stroke: "#000000", StrokeWidth: 2},
			{Kind: KindText, Left: 60, Top: symbolsY + 25, Text: "{{ipRating}}", FontSize: 24, Bold: true, Fill: "#000000"},

			// Symbol row: appliance class.
			{Kind: KindRect, Left: 50 + symbolSpacing, Top: symbolsY, Width: 80, Height: 80, Fill: "#FFFFFF", Stroke: "#000000", StrokeWidth: 2},
			{Kind: KindText, Left: 55 + symbolSpacing, Top: symbolsY + 20, Text: "{{classRating}}", FontSize: 16, Bold: true, Fill: "#000000"},

			// Symbol row: recycling mark.
			{Kind: KindCircle, Left: 50 + symbolSpacing*2, Top: symbolsY, Radius: 40, Fill: "transparent", Stroke: "#008000", StrokeWidth: 3},
			{Kind: KindText, Left: 65 + symbolSpacing*2, Top: symbolsY + 15, Text: "♻", FontSize: 40, Fill: "#008000"},

			// Symbol row: crossed-out bin.
			{Kind: KindRect, Left: 50 + symbolSpacing*3, Top: symbolsY + 20, Width: 50, Height: 60, Fill: "transparent", Stroke: "#000000", StrokeWidth: 2},
			{Kind: KindLine, Left: 50 + symbolSpacing*3, Top: symbolsY, X2: 100 + symbolSpacing*3, Y2: symbolsY + 80, Stroke: "#FF0000", StrokeWidth: 3},
			{Kind: KindLine, Left: 100 + symbolSpacing*3, Top: symbolsY, X2: 50 + symbolSpacing*3, Y2: symbolsY + 80, Stroke: "#FF0000", StrokeWidth: 3},

			// Footer: branding and origin.
			{Kind: KindText, Left: 50, Top: 500, Text: "AURORA LIGHTING AUSTRALIA", FontSize: 22, Bold: true, Fill: "#000000"},
			{Kind: KindText, Left: 50, Top: 530, Text: "Made in {{madeIn}}", FontSize: 16, Fill: "#666666"},
		},
	}
}
