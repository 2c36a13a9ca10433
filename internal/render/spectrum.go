package render

import (
	"image/color"
	"math"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

var neonCyan = color.NRGBA{G: 255, B: 255, A: 255}

// radialRing draws bars radiating outwards from a glowing ring.
type radialRing struct{}

func (radialRing) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	cx, cy := w/2, h/2
	short := math.Min(w, h)
	radius := short * 0.15 * orFloat(cfg.Scale, 1)

	id := paletteID(cfg, "neon_cyber")
	bulk := ResolveSurfaceStyle(id, w, h, timeMs)

	ring := neonCyan
	if LookupPalette(id).Category == DynamicTime {
		ring = FlowColor(timeMs, 0)
	}
	s.Save()
	circle(s, cx, cy, radius-5)
	s.SetLineWidth(2)
	if cfg.Glow > 0 {
		s.SetGlow(cfg.Glow + 10)
	} else {
		s.SetGlow(15)
	}
	s.Stroke(Solid(ring))
	s.Restore()

	sens := orFloat(cfg.Sensitivity, 1)
	lineWidth := orFloat(cfg.LineWidth, 4)
	data := f.Processed
	bars := len(data)

	applyCommon(s, cfg)
	s.SetLineWidth(lineWidth)
	for i, v := range data {
		value := float64(v) * sens
		angle := tau/float64(bars)*float64(i) - math.Pi/2
		length := value / 255 * short * 0.3
		cos, sin := math.Cos(angle), math.Sin(angle)

		s.BeginPath()
		s.MoveTo(cx+cos*radius, cy+sin*radius)
		s.LineTo(cx+cos*(radius+length), cy+sin*(radius+length))
		s.Stroke(elementStyle(id, timeMs, i, bars, bulk))
	}
}

// classicEqualizer draws bottom-anchored bars centered in equal slices.
type classicEqualizer struct{}

func (classicEqualizer) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	data := f.Processed
	bars := len(data)
	if bars == 0 {
		return
	}
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	padding := orFloat(cfg.Padding, 2)
	id := paletteID(cfg, "neon_cyber")

	slice := w / float64(bars)
	barW := cfg.BarWidth
	if barW <= 0 {
		barW = slice*0.8 - padding/2
	}
	bulk := ResolveSurfaceStyle(id, w, h, timeMs)

	applyCommon(s, cfg)
	for i, v := range data {
		barH := float64(v) * sens / 255 * h
		x := float64(i)*slice + (slice-barW)/2
		s.FillRect(x, h-barH, barW, barH, elementStyle(id, timeMs, i, bars, bulk))
	}
}

// peakDrop draws bars with a white cap floating above each.
type peakDrop struct{}

func (peakDrop) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	data := f.Processed
	bars := len(data)
	if bars == 0 {
		return
	}
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	slice := w / float64(bars)
	padding := orFloat(cfg.Padding, 2)
	barW := cfg.BarWidth
	if barW <= 0 {
		barW = slice - padding*2
	}
	id := paletteID(cfg, "neon_cyber")
	bulk := ResolveSurfaceStyle(id, w, h, timeMs)

	applyCommon(s, cfg)
	for i, v := range data {
		barH := float64(v) * sens / 255 * h * 0.8
		x := float64(i)*slice + (slice-barW)/2
		s.FillRect(x, h-barH, barW, barH, elementStyle(id, timeMs, i, bars, bulk))
		s.FillRect(x, h-barH-10, barW, 4, Solid(white))
	}
}

// mirroredBars draws bars growing up and down from the horizontal center.
type mirroredBars struct{}

func (mirroredBars) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	data := f.Processed
	bars := len(data)
	if bars == 0 {
		return
	}
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	slice := w / float64(bars)
	cy := h / 2
	padding := orFloat(cfg.Padding, 1)
	barW := cfg.BarWidth
	if barW <= 0 {
		barW = slice - padding*2
	}
	id := paletteID(cfg, "neon_cyber")
	bulk := ResolveSurfaceStyle(id, w, h, timeMs)

	applyCommon(s, cfg)
	for i, v := range data {
		barH := float64(v) * sens / 255 * cy
		x := float64(i)*slice + (slice-barW)/2
		style := elementStyle(id, timeMs, i, bars, bulk)
		s.FillRect(x, cy-barH, barW, barH, style)
		s.FillRect(x, cy, barW, barH, style)
	}
}

// ghostSpectrum fills the spectrum envelope over a slowly fading background.
type ghostSpectrum struct{}

func (ghostSpectrum) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	fade(s, 0.1)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	id := paletteID(cfg, "neon_cyber")

	applyCommon(s, cfg)
	data := f.Processed
	s.BeginPath()
	s.MoveTo(0, h)
	for i, v := range data {
		val := float64(v) * sens / 255
		s.LineTo(float64(i)/float64(len(data))*w, h-val*h*0.8)
	}
	s.LineTo(w, h)

	var style Style
	switch LookupPalette(id).Category {
	case DynamicTime:
		style = Solid(FlowColor(timeMs, 0))
	case SpectrumIndexed:
		style = Solid(white)
	default:
		style = ResolveSurfaceStyle(id, w, h, timeMs)
	}
	s.SetAlpha(0.5)
	s.Fill(style)
	s.SetAlpha(1)
}
