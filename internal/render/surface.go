package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Surface is the raster the row renderer draws on. It is reused across
// rows to avoid per-row allocation of a full drawing surface, which is
// exactly why it must be fully cleared before each row begins: rows share
// geometry at the same coordinates, so a leaked primitive is a correctness
// bug, not a visual artifact.
type Surface struct {
	img    *image.RGBA
	width  float64
	height float64
	scale  float64
}

// NewSurface allocates a surface for a logical canvas at the given export
// scale. Pixel dimensions are the logical dimensions multiplied by scale.
func NewSurface(width, height, scale float64) *Surface {
	pw := int(math.Ceil(width * scale))
	ph := int(math.Ceil(height * scale))
	return &Surface{
		img:    image.NewRGBA(image.Rect(0, 0, pw, ph)),
		width:  width,
		height: height,
		scale:  scale,
	}
}

// Fits reports whether the surface matches a logical canvas and scale, so
// the renderer knows when it can be reused as-is.
func (s *Surface) Fits(width, height, scale float64) bool {
	return s.width == width && s.height == height && s.scale == scale
}

// Clear repaints the entire surface with the background color, erasing
// every primitive of the previous row.
func (s *Surface) Clear(bg color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// Image exposes the underlying raster.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Scale returns the export scale multiplier.
func (s *Surface) Scale() float64 {
	return s.scale
}
