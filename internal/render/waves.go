package render

import (
	"image/color"
	"math"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

// oscilloscope traces the raw waveform across the full width.
type oscilloscope struct{}

func (oscilloscope) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	id := paletteID(cfg, "monochrome")
	p := LookupPalette(id)

	var style Style
	switch {
	case p.Category == DynamicTime:
		c, _ := ResolveIndexedColor(id, timeMs, 0, 1)
		style = Solid(c)
	case p.ID == "monochrome":
		style = Solid(white)
	default:
		style = ResolveSurfaceStyle(id, w, h, timeMs)
	}
	applyCommon(s, cfg)

	wave := f.Waveform
	if len(wave) == 0 {
		return
	}
	slice := w / float64(len(wave))
	s.BeginPath()
	for i, v := range wave {
		x := float64(i) * slice
		y := float64(v) / 128 * h / 2
		if i == 0 {
			s.MoveTo(x, y)
		} else {
			s.LineTo(x, y)
		}
	}
	s.Stroke(style)
}

// layeredWaves overlays three translucent, sine-modulated waveform traces.
type layeredWaves struct{}

func (layeredWaves) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	speed := orFloat(cfg.Speed, 1)
	p := LookupPalette(paletteID(cfg, "neon_cyber"))
	wave := f.Waveform

	applyCommon(s, cfg)
	s.SetLineWidth(orFloat(cfg.LineWidth, 3))
	s.SetAlpha(0.5)
	for layer := 0; layer < 3; layer++ {
		var c color.NRGBA
		if p.Category == DynamicTime || len(p.Colors) == 0 {
			c = FlowColor(timeMs, float64(layer)*60)
		} else {
			c = p.Colors[layer%len(p.Colors)]
		}

		offset := float64(layer) * 1000
		s.BeginPath()
		started := false
		for x := 0.0; x < w; x += 10 {
			v, ok := sample(wave, int(x/w*float64(len(wave))))
			if !ok {
				continue
			}
			y := h/2 + (v/128-1)*200 + math.Sin(x*0.01+timeMs*0.002*speed+offset)*50
			if !started {
				s.MoveTo(x, y)
				started = true
			} else {
				s.LineTo(x, y)
			}
		}
		s.Stroke(Solid(c))
	}
	s.SetAlpha(1)
}

// frequencyRibbon fills the area under a spectrum envelope and outlines it.
// It samples every second raw bin.
type frequencyRibbon struct{}

func (frequencyRibbon) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	id := paletteID(cfg, "neon_cyber")

	applyCommon(s, cfg)
	s.BeginPath()
	s.MoveTo(0, h/2)
	points := orInt(cfg.Density, 200)
	for i := 0; i < points; i++ {
		v, _ := sample(f.Frequency, i*2)
		y := h/2 - v*sens/255*300
		s.LineTo(float64(i)/float64(points)*w, y)
	}
	s.LineTo(w, h)
	s.LineTo(0, h)
	s.ClosePath()

	if LookupPalette(id).Category == StaticGradient {
		s.SetAlpha(0.5)
		s.Fill(ResolveSurfaceStyle(id, w, h, timeMs))
	} else {
		s.Fill(Solid(HSLA(timeMs*0.1, 0.7, 0.5, 0.5)))
	}
	s.SetAlpha(1)
	s.Stroke(Solid(white))
}

// rgbGlitch draws three horizontally offset waveform traces in red, green
// and blue, screen-blended so overlaps brighten.
type rgbGlitch struct{}

var glitchOffsets = [3]float64{-5, 0, 5}

func (rgbGlitch) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	id := paletteID(cfg, "neon_cyber")

	channels := [3]color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	}
	if LookupPalette(id).Category == DynamicTime {
		for c := range channels {
			channels[c] = FlowColor(timeMs, float64(c)*120)
		}
	}

	applyCommon(s, cfg)
	wave := f.Waveform
	if len(wave) == 0 {
		return
	}
	step := max(1, len(wave)/orInt(cfg.Density, 256))
	for c, col := range channels {
		s.SetComposite(Screen)
		s.BeginPath()
		for i := 0; i < len(wave); i += step {
			x := float64(i)/float64(len(wave))*w + glitchOffsets[c]
			y := float64(wave[i]) / 128 * h / 2
			if i == 0 {
				s.MoveTo(x, y)
			} else {
				s.LineTo(x, y)
			}
		}
		s.Stroke(Solid(col))
		s.SetComposite(SourceOver)
	}
}
