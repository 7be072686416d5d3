package render

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/labelkit/labelgen/internal/compose"
	"github.com/labelkit/labelgen/internal/layout"
)

// execute rasterizes a composed drawing program onto the surface, in
// element order (painter's algorithm).
func execute(s *Surface, prog *compose.Program) error {
	for i := range prog.Elements {
		el := &prog.Elements[i]
		var err error
		switch el.Kind {
		case layout.KindText:
			err = drawText(s, el)
		case layout.KindRect:
			err = drawRect(s, el)
		case layout.KindLine:
			err = drawLine(s, el)
		case layout.KindCircle:
			err = drawCircle(s, el)
		case layout.KindPolygon:
			err = drawPolygon(s, el)
		case layout.KindImage:
			err = drawImage(s, el)
		case layout.KindBarcode:
			err = fmt.Errorf("unresolved barcode placeholder reached the renderer")
		default:
			err = fmt.Errorf("unknown element kind %q", el.Kind)
		}
		if err != nil {
			return fmt.Errorf("element %d (%s): %w", i, el.Kind, err)
		}
	}
	return nil
}

func drawRect(s *Surface, el *layout.Element) error {
	sc := s.scale
	x0, y0 := el.Left*sc, el.Top*sc
	x1, y1 := x0+el.Width*sc, y0+el.Height*sc

	if layout.IsPaintable(el.Fill) {
		col, err := layout.ParseColor(el.Fill)
		if err != nil {
			return err
		}
		fillRect(s.img, x0, y0, x1, y1, col)
	}
	if layout.IsPaintable(el.Stroke) && el.StrokeWidth > 0 {
		col, err := layout.ParseColor(el.Stroke)
		if err != nil {
			return err
		}
		w := el.StrokeWidth * sc
		// Four bars centered on the edges.
		fillRect(s.img, x0-w/2, y0-w/2, x1+w/2, y0+w/2, col)
		fillRect(s.img, x0-w/2, y1-w/2, x1+w/2, y1+w/2, col)
		fillRect(s.img, x0-w/2, y0+w/2, x0+w/2, y1-w/2, col)
		fillRect(s.img, x1-w/2, y0+w/2, x1+w/2, y1-w/2, col)
	}
	return nil
}

func drawLine(s *Surface, el *layout.Element) error {
	if !layout.IsPaintable(el.Stroke) || el.StrokeWidth <= 0 {
		return nil
	}
	col, err := layout.ParseColor(el.Stroke)
	if err != nil {
		return err
	}
	sc := s.scale
	strokeSegment(s.img, el.Left*sc, el.Top*sc, el.X2*sc, el.Y2*sc, el.StrokeWidth*sc, col)
	return nil
}

func drawCircle(s *Surface, el *layout.Element) error {
	sc := s.scale
	// Left/Top is the bounding-box corner, matching the layout model.
	cx := (el.Left + el.Radius) * sc
	cy := (el.Top + el.Radius) * sc
	r := el.Radius * sc

	if layout.IsPaintable(el.Fill) {
		col, err := layout.ParseColor(el.Fill)
		if err != nil {
			return err
		}
		ras, bounds := newRasterizer(cx-r, cy-r, cx+r, cy+r)
		addCirclePath(ras, cx, cy, r, bounds, false)
		rasterize(s.img, ras, bounds, col)
	}
	if layout.IsPaintable(el.Stroke) && el.StrokeWidth > 0 {
		col, err := layout.ParseColor(el.Stroke)
		if err != nil {
			return err
		}
		w := el.StrokeWidth * sc
		outer := r + w/2
		inner := r - w/2
		ras, bounds := newRasterizer(cx-outer, cy-outer, cx+outer, cy+outer)
		addCirclePath(ras, cx, cy, outer, bounds, false)
		if inner > 0 {
			// Opposite winding carves the inner disc out, leaving a ring.
			addCirclePath(ras, cx, cy, inner, bounds, true)
		}
		rasterize(s.img, ras, bounds, col)
	}
	return nil
}

func drawPolygon(s *Surface, el *layout.Element) error {
	sc := s.scale
	pts := make([][2]float64, len(el.Points))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, p := range el.Points {
		x, y := (el.Left+p.X)*sc, (el.Top+p.Y)*sc
		pts[i] = [2]float64{x, y}
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}

	if layout.IsPaintable(el.Fill) {
		col, err := layout.ParseColor(el.Fill)
		if err != nil {
			return err
		}
		ras, bounds := newRasterizer(minX, minY, maxX, maxY)
		ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
		ras.MoveTo(float32(pts[0][0])-ox, float32(pts[0][1])-oy)
		for _, p := range pts[1:] {
			ras.LineTo(float32(p[0])-ox, float32(p[1])-oy)
		}
		ras.ClosePath()
		rasterize(s.img, ras, bounds, col)
	}
	if layout.IsPaintable(el.Stroke) && el.StrokeWidth > 0 {
		col, err := layout.ParseColor(el.Stroke)
		if err != nil {
			return err
		}
		w := el.StrokeWidth * sc
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			strokeSegment(s.img, a[0], a[1], b[0], b[1], w, col)
		}
	}
	return nil
}

func drawText(s *Surface, el *layout.Element) error {
	col, err := layout.ParseColor(el.Fill)
	if err != nil {
		return err
	}
	if !layout.IsPaintable(el.Fill) {
		col = color.RGBA{A: 0xFF} // default to black like any printed label
	}

	face, err := faceFor(el.FontSize*s.scale, el.Bold)
	if err != nil {
		return err
	}

	// Top is the top edge of the text box; the baseline sits one ascent
	// below it.
	ascent := face.Metrics().Ascent
	drawer := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(el.Left * s.scale),
			Y: floatToFixed(el.Top*s.scale) + ascent,
		},
	}
	drawer.DrawString(el.Text)
	return nil
}

func drawImage(s *Surface, el *layout.Element) error {
	if el.Image == nil {
		return fmt.Errorf("image element without image data")
	}
	sc := s.scale
	w, h := el.Width, el.Height
	if w <= 0 || h <= 0 {
		// Fall back to the intrinsic size in logical units.
		w = float64(el.Image.Bounds().Dx())
		h = float64(el.Image.Bounds().Dy())
	}
	dst := image.Rect(
		int(math.Round(el.Left*sc)),
		int(math.Round(el.Top*sc)),
		int(math.Round((el.Left+w)*sc)),
		int(math.Round((el.Top+h)*sc)),
	)
	draw.ApproxBiLinear.Scale(s.img, dst, el.Image, el.Image.Bounds(), draw.Over, nil)
	return nil
}

// fillRect paints an axis-aligned rectangle given in pixel coordinates.
func fillRect(img *image.RGBA, x0, y0, x1, y1 float64, col color.Color) {
	r := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
	stddraw.Draw(img, r, image.NewUniform(col), image.Point{}, stddraw.Over)
}

// strokeSegment paints a thick line segment as a filled quad.
func strokeSegment(img *image.RGBA, x1, y1, x2, y2, width float64, col color.Color) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	px := -dy / length * width / 2
	py := dx / length * width / 2

	minX := math.Min(math.Min(x1+px, x2+px), math.Min(x1-px, x2-px))
	maxX := math.Max(math.Max(x1+px, x2+px), math.Max(x1-px, x2-px))
	minY := math.Min(math.Min(y1+py, y2+py), math.Min(y1-py, y2-py))
	maxY := math.Max(math.Max(y1+py, y2+py), math.Max(y1-py, y2-py))

	ras, bounds := newRasterizer(minX, minY, maxX, maxY)
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	ras.MoveTo(float32(x1+px)-ox, float32(y1+py)-oy)
	ras.LineTo(float32(x2+px)-ox, float32(y2+py)-oy)
	ras.LineTo(float32(x2-px)-ox, float32(y2-py)-oy)
	ras.LineTo(float32(x1-px)-ox, float32(y1-py)-oy)
	ras.ClosePath()
	rasterize(img, ras, bounds, col)
}

// newRasterizer allocates a vector rasterizer covering the given pixel
// bounding box, padded by a pixel for anti-aliased edges.
func newRasterizer(minX, minY, maxX, maxY float64) (*vector.Rasterizer, image.Rectangle) {
	bounds := image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	)
	return vector.NewRasterizer(bounds.Dx(), bounds.Dy()), bounds
}

func rasterize(img *image.RGBA, ras *vector.Rasterizer, bounds image.Rectangle, col color.Color) {
	ras.DrawOp = stddraw.Over
	ras.Draw(img, bounds, image.NewUniform(col), image.Point{})
}

// addCirclePath appends a circle approximated by four cubic Béziers.
// Reversed winding subtracts the disc from whatever the rasterizer has
// accumulated so far.
func addCirclePath(ras *vector.Rasterizer, cx, cy, r float64, bounds image.Rectangle, reverse bool) {
	const kappa = 0.5522847498
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	k := r * kappa

	type pt struct{ x, y float64 }
	move := func(p pt) { ras.MoveTo(float32(p.x-ox), float32(p.y-oy)) }
	cube := func(c1, c2, p pt) {
		ras.CubeTo(
			float32(c1.x-ox), float32(c1.y-oy),
			float32(c2.x-ox), float32(c2.y-oy),
			float32(p.x-ox), float32(p.y-oy),
		)
	}

	east := pt{cx + r, cy}
	south := pt{cx, cy + r}
	west := pt{cx - r, cy}
	north := pt{cx, cy - r}

	if !reverse {
		move(east)
		cube(pt{cx + r, cy + k}, pt{cx + k, cy + r}, south)
		cube(pt{cx - k, cy + r}, pt{cx - r, cy + k}, west)
		cube(pt{cx - r, cy - k}, pt{cx - k, cy - r}, north)
		cube(pt{cx + k, cy - r}, pt{cx + r, cy - k}, east)
	} else {
		move(east)
		cube(pt{cx + r, cy - k}, pt{cx + k, cy - r}, north)
		cube(pt{cx - k, cy - r}, pt{cx - r, cy - k}, west)
		cube(pt{cx - r, cy + k}, pt{cx - k, cy + r}, south)
		cube(pt{cx + k, cy + r}, pt{cx + r, cy + k}, east)
	}
	ras.ClosePath()
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// Font faces are cached per size and weight; the Go fonts ship with
// x/image so no font files are needed at runtime.
var (
	fontOnce    sync.Once
	fontRegular *sfnt.Font
	fontBold    *sfnt.Font
	fontErr     error

	faceMu    sync.Mutex
	faceCache = map[faceKey]font.Face{}
)

type faceKey struct {
	size fixed.Int26_6
	bold bool
}

func faceFor(sizePx float64, bold bool) (font.Face, error) {
	fontOnce.Do(func() {
		fontRegular, fontErr = opentype.Parse(goregular.TTF)
		if fontErr != nil {
			return
		}
		fontBold, fontErr = opentype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse embedded fonts: %w", fontErr)
	}
	if sizePx <= 0 {
		return nil, fmt.Errorf("invalid font size %g", sizePx)
	}

	key := faceKey{size: floatToFixed(sizePx), bold: bold}
	faceMu.Lock()
	defer faceMu.Unlock()
	if face, ok := faceCache[key]; ok {
		return face, nil
	}

	src := fontRegular
	if bold {
		src = fontBold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	faceCache[key] = face
	return face, nil
}
