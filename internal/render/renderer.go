// Package render executes drawing programs against a reusable raster
// surface and exports one PNG per row, isolating per-row failures so one
// bad row never aborts the batch.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"

	"github.com/labelkit/labelgen/internal/compose"
	"github.com/labelkit/labelgen/internal/layout"
	"github.com/labelkit/labelgen/internal/mapping"
)

// Status of one row's render.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome for exactly one input row, in input order.
type Result struct {
	RowIndex int
	Name     string
	Status   Status
	PNG      []byte // present on success
	Message  string // present on error
}

// DefaultExportScale is the raster export multiplier over the logical
// canvas size, chosen for print-quality output.
const DefaultExportScale = 2.0

// RowRenderer renders one row at a time. It owns the shared surface for
// the duration of each row's render and fully clears it before the next
// row begins.
type RowRenderer struct {
	composer *compose.Composer
	scale    float64
	surface  *Surface
}

// NewRowRenderer creates a renderer with the given export scale
// multiplier; zero or negative means DefaultExportScale.
func NewRowRenderer(c *compose.Composer, scale float64) *RowRenderer {
	if scale <= 0 {
		scale = DefaultExportScale
	}
	return &RowRenderer{composer: c, scale: scale}
}

// RenderRow composes and rasterizes one row. Any error or panic raised
// while composing or drawing is converted into an error Result carrying
// the underlying cause; it is never re-thrown past this boundary.
func (r *RowRenderer) RenderRow(ctx context.Context, rowIndex int, subject *mapping.Subject, d *layout.Descriptor) (res Result) {
	res = Result{
		RowIndex: rowIndex,
		Name:     displayName(subject, rowIndex),
	}

	defer func() {
		if p := recover(); p != nil {
			res.Status = StatusError
			res.PNG = nil
			res.Message = fmt.Sprintf("unexpected failure during render: %v", p)
		}
	}()

	data, err := r.renderOnce(ctx, subject, d)
	if err != nil {
		res.Status = StatusError
		res.Message = err.Error()
		return res
	}

	res.Status = StatusSuccess
	res.PNG = data
	return res
}

func (r *RowRenderer) renderOnce(ctx context.Context, subject *mapping.Subject, d *layout.Descriptor) ([]byte, error) {
	prog, err := r.composer.Compose(ctx, subject, d)
	if err != nil {
		return nil, err
	}

	if r.surface == nil || !r.surface.Fits(prog.Width, prog.Height, r.scale) {
		r.surface = NewSurface(prog.Width, prog.Height, r.scale)
	}
	r.surface.Clear(backgroundColor(prog.Background))

	if err := execute(r.surface, prog); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.surface.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func backgroundColor(s string) color.Color {
	if layout.IsPaintable(s) {
		if col, err := layout.ParseColor(s); err == nil {
			return col
		}
	}
	return color.White
}

func displayName(subject *mapping.Subject, rowIndex int) string {
	if subject != nil && subject.ProductName != "" {
		return subject.ProductName
	}
	return fmt.Sprintf("Row %d", rowIndex+1)
}
