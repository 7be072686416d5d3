// Package layout defines the declarative description of a label's visual
// structure: canvas dimensions plus an ordered list of positioned
// primitives. Ordering is significant, later elements draw on top of
// earlier ones.
package layout

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Kind identifies a primitive type.
type Kind string

const (
	KindText    Kind = "text"
	KindRect    Kind = "rect"
	KindLine    Kind = "line"
	KindCircle  Kind = "circle"
	KindPolygon Kind = "polygon"
	KindBarcode Kind = "barcode"
	// KindImage only appears in composed programs, where a barcode
	// placeholder has been replaced by its rendered raster.
	KindImage Kind = "image"
)

// Point is a polygon vertex in logical canvas units.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Element is one positioned primitive. Kind-specific properties: text
// elements use Text/FontSize/Bold, lines use X2/Y2 as the far endpoint,
// circles use Radius with Left/Top as the bounding-box corner, polygons
// use Points, barcode placeholders use Left/Top/Width/Height as the box
// the rendered barcode is scaled into.
type Element struct {
	Kind        Kind    `yaml:"kind" validate:"required,oneof=text rect line circle polygon barcode image"`
	Left        float64 `yaml:"left"`
	Top         float64 `yaml:"top"`
	Width       float64 `yaml:"width" validate:"gte=0"`
	Height      float64 `yaml:"height" validate:"gte=0"`
	Text        string  `yaml:"text,omitempty"`
	FontSize    float64 `yaml:"fontSize,omitempty" validate:"gte=0"`
	Bold        bool    `yaml:"bold,omitempty"`
	Fill        string  `yaml:"fill,omitempty"`
	Stroke      string  `yaml:"stroke,omitempty"`
	StrokeWidth float64 `yaml:"strokeWidth,omitempty" validate:"gte=0"`
	Radius      float64 `yaml:"radius,omitempty" validate:"gte=0"`
	X2          float64 `yaml:"x2,omitempty"`
	Y2          float64 `yaml:"y2,omitempty"`
	Points      []Point `yaml:"points,omitempty"`

	// Image carries the spliced barcode raster in composed programs.
	// Never populated from YAML.
	Image image.Image `yaml:"-"`
}

// Descriptor is a complete label layout.
type Descriptor struct {
	Name       string    `yaml:"name,omitempty"`
	Width      float64   `yaml:"width" validate:"gt=0"`
	Height     float64   `yaml:"height" validate:"gt=0"`
	Background string    `yaml:"background,omitempty"`
	Elements   []Element `yaml:"elements" validate:"required,min=1,dive"`
}

// Default logical canvas size, matching the carton label layout.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 600
)

var validate = validator.New()

// Parse unmarshals a YAML layout descriptor and validates it.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads and parses a YAML layout descriptor file.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return Parse(data)
}

// Validate checks structural invariants: positive canvas dimensions, known
// element kinds, non-negative sizes, parseable colors, and per-kind
// requirements (text content, circle radius, barcode box).
func (d *Descriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	for i, el := range d.Elements {
		if err := el.validateKind(); err != nil {
			return fmt.Errorf("invalid layout element %d: %w", i, err)
		}
		for _, c := range []string{el.Fill, el.Stroke} {
			if _, err := ParseColor(c); err != nil {
				return fmt.Errorf("invalid layout element %d: %w", i, err)
			}
		}
	}
	if _, err := ParseColor(d.Background); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}

func (e *Element) validateKind() error {
	switch e.Kind {
	case KindText:
		if e.Text == "" {
			return fmt.Errorf("text element has no content")
		}
		if e.FontSize <= 0 {
			return fmt.Errorf("text element has no font size")
		}
	case KindCircle:
		if e.Radius <= 0 {
			return fmt.Errorf("circle element has no radius")
		}
	case KindPolygon:
		if len(e.Points) < 3 {
			return fmt.Errorf("polygon element has %d points, need at least 3", len(e.Points))
		}
	case KindBarcode:
		if e.Width <= 0 || e.Height <= 0 {
			return fmt.Errorf("barcode element has no placeholder box")
		}
	case KindImage:
		return fmt.Errorf("image elements are produced by composition, not declared in layouts")
	}
	return nil
}

// ParseColor parses "#RGB" and "#RRGGBB" hex colors. Empty and
// "transparent" return ok=false alpha-zero color with nil error, meaning
// nothing should be painted.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" || s == "transparent" {
		return color.RGBA{}, nil
	}
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("unsupported color %q", s)
	}
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		v, err := parseHex(hex)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("unsupported color %q", s)
		}
		r = uint8((v >> 8 & 0xF) * 0x11)
		g = uint8((v >> 4 & 0xF) * 0x11)
		b = uint8((v & 0xF) * 0x11)
	case 6:
		v, err := parseHex(hex)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("unsupported color %q", s)
		}
		r = uint8(v >> 16)
		g = uint8(v >> 8)
		b = uint8(v)
	default:
		return color.RGBA{}, fmt.Errorf("unsupported color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

func parseHex(s string) (uint32, error) {
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
	}
	return v, nil
}

// IsPaintable reports whether a color value names an actual color rather
// than transparency.
func IsPaintable(s string) bool {
	return s != "" && s != "transparent"
}
