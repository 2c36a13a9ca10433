package render

import "image/color"

// Composite selects how subsequent drawing blends with what is already on
// the surface.
type Composite int

const (
	SourceOver Composite = iota
	Screen
)

// Surface is an immediate-mode 2D drawing target. Coordinates are in device
// pixels with the origin at the top left. Paths persist across Fill and
// Stroke until the next BeginPath; FillRect and FillText leave the current
// path untouched.
type Surface interface {
	Size() (width, height float64)

	// Reset restores the default drawing state: alpha 1, line width 1, no
	// glow, source-over compositing and the identity transform.
	Reset()
	Clear(c color.NRGBA)

	SetAlpha(a float64)
	SetLineWidth(w float64)
	SetGlow(blur float64)
	SetComposite(c Composite)

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Arc adds a circular arc, connected by a line to the current point when
	// there is one.
	Arc(x, y, r, start, end float64)
	ClosePath()
	Fill(s Style)
	Stroke(s Style)

	FillRect(x, y, w, h float64, s Style)
	FillText(text string, x, y, size float64, s Style)
}

// Style is either a solid color or a linear gradient.
type Style struct {
	Color    color.NRGBA
	Gradient *Gradient
}

// Solid returns a solid color style.
func Solid(c color.NRGBA) Style { return Style{Color: c} }

// Dominant returns the solid color, or the top stop of a gradient.
func (s Style) Dominant() color.NRGBA {
	if s.Gradient != nil && len(s.Gradient.Stops) > 0 {
		return s.Gradient.Stops[len(s.Gradient.Stops)-1].Color
	}
	return s.Color
}

// Gradient is a linear gradient from (X0,Y0) to (X1,Y1).
type Gradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

// Stop is one gradient color stop with Offset in [0, 1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Style wraps g for use with Fill and Stroke.
func (g *Gradient) Style() Style { return Style{Gradient: g} }

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func rgba(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(a)*255 + 0.5)}
}

func scaleAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(clamp01(float64(c.A)/255*a)*255 + 0.5)
	return c
}
