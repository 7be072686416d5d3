// Package compose resolves a layout descriptor against one row subject
// into a drawing program ready to rasterize: placeholder tokens are
// substituted and barcode placeholders are replaced by rendered raster
// images.
package compose

import (
	"context"
	"fmt"

	"github.com/labelkit/labelgen/internal/barcode"
	"github.com/labelkit/labelgen/internal/layout"
	"github.com/labelkit/labelgen/internal/mapping"
)

// Program is a fully resolved drawing program: every text element holds
// final content, every barcode placeholder has become a positioned image
// element. Element order is the paint order.
type Program struct {
	Width      float64
	Height     float64
	Background string
	Elements   []layout.Element
}

// Composer builds drawing programs. The barcode renderer is the only
// external collaborator.
type Composer struct {
	barcodes barcode.Renderer
	format   string
}

// NewComposer creates a composer rendering barcodes in the given
// symbology, ean13 when empty.
func NewComposer(r barcode.Renderer, format string) *Composer {
	if format == "" {
		format = barcode.FormatEAN13
	}
	return &Composer{barcodes: r, format: format}
}

// Compose resolves the descriptor for one subject. Text placeholders are
// expanded (unmatched tokens stay verbatim); each barcode element triggers
// one synchronous render call and is spliced back as an image element
// inheriting the placeholder's box; all other elements pass through
// unchanged, preserving z-order. A barcode failure fails the whole
// composition: a label lacking its barcode is not a valid label.
func (c *Composer) Compose(ctx context.Context, subject *mapping.Subject, d *layout.Descriptor) (*Program, error) {
	elements := make([]layout.Element, len(d.Elements))
	for i, el := range d.Elements {
		switch el.Kind {
		case layout.KindText:
			el.Text = layout.Expand(el.Text, subject)

		case layout.KindBarcode:
			img, err := c.barcodes.Render(ctx, barcode.Request{
				Text:   subject.GS1BarcodeNumber,
				Format: c.format,
			})
			if err != nil {
				return nil, fmt.Errorf("barcode generation failed for %q: %w", subject.GS1BarcodeNumber, err)
			}
			el.Kind = layout.KindImage
			el.Image = img
		}
		elements[i] = el
	}

	return &Program{
		Width:      d.Width,
		Height:     d.Height,
		Background: d.Background,
		Elements:   elements,
	}, nil
}
