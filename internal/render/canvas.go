package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/phrozen/blend"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Canvas is a Surface backed by an in-memory RGBA image.
type Canvas struct {
	base  *layer
	over  *layer
	scr   *layer
	face  font.Face
	state canvasState
	stack []canvasState
}

type canvasState struct {
	alpha     float64
	lineWidth float64
	glow      float64
	composite Composite
}

// layer pairs a path context with a second context over the same pixels so
// rectangles and text can be drawn without disturbing the current path.
type layer struct {
	img   *image.RGBA
	path  *gg.Context
	shape *gg.Context
}

func newLayer(w, h int) *layer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &layer{img: img, path: gg.NewContextForRGBA(img), shape: gg.NewContextForRGBA(img)}
}

// NewCanvas returns a black canvas of the given pixel size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{face: basicfont.Face7x13}
	c.Resize(width, height)
	return c
}

// Resize reallocates the backing image when the size changes. Contents are
// cleared to black.
func (c *Canvas) Resize(width, height int) {
	width = max(1, width)
	height = max(1, height)
	if c.base != nil && c.base.img.Rect.Dx() == width && c.base.img.Rect.Dy() == height {
		return
	}
	c.base = newLayer(width, height)
	c.scr = nil
	c.over = c.base
	c.Reset()
	c.Clear(black)
}

// Image returns the backing image. It is reused between frames.
func (c *Canvas) Image() *image.RGBA {
	c.flushScreen()
	return c.base.img
}

func (c *Canvas) Size() (float64, float64) {
	b := c.base.img.Rect
	return float64(b.Dx()), float64(b.Dy())
}

func (c *Canvas) Reset() {
	c.flushScreen()
	c.state = canvasState{alpha: 1, lineWidth: 1}
	c.stack = c.stack[:0]
	c.over = c.base
	for _, dc := range []*gg.Context{c.base.path, c.base.shape} {
		dc.Identity()
		dc.ClearPath()
		dc.SetLineCapButt()
		dc.SetLineJoinRound()
	}
}

func (c *Canvas) Clear(col color.NRGBA) {
	c.flushScreen()
	draw.Draw(c.base.img, c.base.img.Rect, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) SetAlpha(a float64)     { c.state.alpha = clamp01(a) }
func (c *Canvas) SetLineWidth(w float64) { c.state.lineWidth = math.Max(0, w) }
func (c *Canvas) SetGlow(blur float64)   { c.state.glow = math.Max(0, blur) }

// SetComposite switches blending. Screen drawing is collected on a scratch
// layer and blended onto the canvas when compositing returns to SourceOver.
func (c *Canvas) SetComposite(mode Composite) {
	if mode == c.state.composite {
		return
	}
	c.state.composite = mode
	switch mode {
	case Screen:
		if c.scr == nil || c.scr.img.Rect != c.base.img.Rect {
			c.scr = newLayer(c.base.img.Rect.Dx(), c.base.img.Rect.Dy())
		}
		draw.Draw(c.scr.img, c.scr.img.Rect, image.Transparent, image.Point{}, draw.Src)
		c.copyTransform(c.base, c.scr)
		c.scr.path.ClearPath()
		c.over = c.scr
	default:
		c.flushScreen()
	}
}

func (c *Canvas) flushScreen() {
	if c.over == nil || c.over == c.base {
		return
	}
	blend.BlendImage(c.base.img, c.scr.img, blend.Screen)
	c.over = c.base
	c.state.composite = SourceOver
}

func (c *Canvas) copyTransform(from, to *layer) {
	m := from.path.TransformPoint
	ox, oy := m(0, 0)
	ax, ay := m(1, 0)
	to.path.Identity()
	to.shape.Identity()
	to.path.Translate(ox, oy)
	to.shape.Translate(ox, oy)
	angle := math.Atan2(ay-oy, ax-ox)
	to.path.Rotate(angle)
	to.shape.Rotate(angle)
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
	c.over.path.Push()
	c.over.shape.Push()
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state, c.stack = c.stack[len(c.stack)-1], c.stack[:len(c.stack)-1]
	c.over.path.Pop()
	c.over.shape.Pop()
}

func (c *Canvas) Translate(x, y float64) {
	c.over.path.Translate(x, y)
	c.over.shape.Translate(x, y)
}

func (c *Canvas) Rotate(angle float64) {
	c.over.path.Rotate(angle)
	c.over.shape.Rotate(angle)
}

func (c *Canvas) BeginPath()                      { c.over.path.ClearPath() }
func (c *Canvas) MoveTo(x, y float64)             { c.over.path.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64)             { c.over.path.LineTo(x, y) }
func (c *Canvas) Arc(x, y, r, start, end float64) { c.over.path.DrawArc(x, y, r, start, end) }
func (c *Canvas) ClosePath()                      { c.over.path.ClosePath() }

func (c *Canvas) Fill(s Style) {
	dc := c.over.path
	if c.state.glow > 0 {
		c.halo(dc, s, 0)
	}
	dc.SetFillStyle(c.pattern(s))
	dc.FillPreserve()
}

func (c *Canvas) Stroke(s Style) {
	dc := c.over.path
	if c.state.lineWidth <= 0 {
		return
	}
	if c.state.glow > 0 {
		c.halo(dc, s, c.state.lineWidth)
	}
	dc.SetLineWidth(c.state.lineWidth)
	dc.SetStrokeStyle(c.pattern(s))
	dc.StrokePreserve()
}

func (c *Canvas) FillRect(x, y, w, h float64, s Style) {
	if w <= 0 || h <= 0 {
		return
	}
	dc := c.over.shape
	dc.ClearPath()
	dc.DrawRectangle(x, y, w, h)
	if c.state.glow > 0 {
		c.halo(dc, s, 0)
	}
	dc.SetFillStyle(c.pattern(s))
	dc.Fill()
}

// FillText draws text with its baseline at y. Glyphs the built-in face
// cannot draw are replaced with ASCII stand-ins.
func (c *Canvas) FillText(text string, x, y, size float64, s Style) {
	dc := c.over.shape
	runes := []rune(text)
	for i, r := range runes {
		if _, ok := c.face.GlyphAdvance(r); !ok {
			runes[i] = rune('!' + int(r)%94)
		}
	}
	dc.Push()
	dc.SetFontFace(c.face)
	dc.ScaleAbout(size/13, size/13, x, y)
	dc.SetColor(scaleAlpha(s.Dominant(), c.state.alpha))
	dc.DrawString(string(runes), x, y)
	dc.Pop()
}

// halo approximates a blurred shadow with a wide translucent stroke of the
// current path.
func (c *Canvas) halo(dc *gg.Context, s Style, width float64) {
	spread := math.Min(c.state.glow, 40) * 0.6
	dc.SetLineWidth(width + spread)
	dc.SetStrokeStyle(gg.NewSolidPattern(scaleAlpha(s.Dominant(), 0.25*c.state.alpha)))
	dc.StrokePreserve()
}

func (c *Canvas) pattern(s Style) gg.Pattern {
	if s.Gradient == nil {
		return gg.NewSolidPattern(scaleAlpha(s.Color, c.state.alpha))
	}
	g := s.Gradient
	lg := gg.NewLinearGradient(g.X0, g.Y0, g.X1, g.Y1)
	for _, st := range g.Stops {
		lg.AddColorStop(st.Offset, scaleAlpha(st.Color, c.state.alpha))
	}
	return lg
}
