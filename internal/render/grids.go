package render

import (
	"image/color"
	"math"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

var (
	matrixGreen = color.NRGBA{G: 255, A: 255}
	amber       = color.NRGBA{R: 255, G: 200, A: 255}
	cellEdge    = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255}
)

// particleGrid lays dots on a grid sized from density, each scaled by the
// raw bin at its own stride.
type particleGrid struct{}

func (particleGrid) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	scale := orFloat(cfg.Scale, 1)

	cols := max(1, int(math.Sqrt(float64(orInt(cfg.Density, 200)))*1.5))
	rows := cfg.Density / cols
	if rows <= 0 {
		rows = 10
	}
	cellW, cellH := w/float64(cols), h/float64(rows)
	cell := math.Min(cellW, cellH)
	step := len(f.Frequency) / (cols * rows)

	id := paletteID(cfg, "neon_cyber")
	bulk := ResolveSurfaceStyle(id, w, h, timeMs)

	applyCommon(s, cfg)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			pos := x + y*cols
			v, ok := sample(f.Frequency, pos*step)
			if !ok {
				continue
			}
			val := v * sens
			size := val / 255 * cell * 0.8 * scale

			s.SetAlpha(math.Min(1, val/255))
			circle(s, float64(x)*cellW+cellW/2, float64(y)*cellH+cellH/2, size)
			s.Fill(elementStyle(id, timeMs, pos, cols*rows, bulk))
		}
	}
	s.SetAlpha(1)
}

// digitalRainfall scatters katakana glyphs over a fading background. Which
// columns fire, and where, is hashed from time and column.
type digitalRainfall struct{}

func (digitalRainfall) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	fade(s, 0.1)
	w, h := s.Size()

	id := paletteID(cfg, "neon_cyber")
	var c color.NRGBA
	switch first, ok := PaletteColor(id, 0); {
	case ok:
		c = first
	case LookupPalette(id).Category == DynamicTime:
		c = FlowColor(timeMs, 0)
	default:
		c = matrixGreen
	}

	mult := float64(cfg.Density) / 128
	if mult == 0 {
		mult = 1
	}
	colWidth := 20 / mult
	cols := int(w / colWidth)
	size := math.Max(10, colWidth-4)

	for i := 0; i < cols; i++ {
		col := float64(i)
		if hash2(col, timeMs) <= 0.95 {
			continue
		}
		glyph := rune(0x30A0 + int(hash2(col+0.5, timeMs)*96))
		y := hash2(col, timeMs+0.37) * h
		s.FillText(string(glyph), col*colWidth, y, size, Solid(c))
	}
}

// honeycomb tiles hexagons whose opacity follows consecutive raw bins.
type honeycomb struct{}

func (honeycomb) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0x11, 0x11, 0x11)
	w, h := s.Size()
	size := math.Max(10, 30*64/float64(orInt(cfg.Density, 64)))
	hexH := size * math.Sqrt(3)
	hexW := size * 1.5
	rows := int(math.Ceil(h/hexH)) + 1
	cols := int(math.Ceil(w/hexW)) + 1
	sens := orFloat(cfg.Sensitivity, 1)

	base := paletteColorOr(cfg, 0, amber)
	if LookupPalette(paletteID(cfg, "neon_cyber")).Category == DynamicTime {
		base = FlowColor(timeMs, 0)
	}

	applyCommon(s, cfg)
	n := len(f.Frequency)
	if n == 0 {
		return
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			val := float64(f.Frequency[(r*cols+c)%n]) * sens / 255
			x := float64(c) * hexW
			y := float64(r) * hexH
			if c%2 == 1 {
				y += hexH / 2
			}

			s.BeginPath()
			for k := 0; k < 6; k++ {
				ang := math.Pi / 3 * float64(k)
				px, py := x+math.Cos(ang)*size, y+math.Sin(ang)*size
				if k == 0 {
					s.MoveTo(px, py)
				} else {
					s.LineTo(px, py)
				}
			}
			s.ClosePath()
			s.SetAlpha(math.Min(1, val*0.8))
			s.Fill(Solid(base))
			s.SetAlpha(1)
			s.Stroke(Solid(cellEdge))
		}
	}
}

// blockMatrix lights a coarse grid of cells from every second raw bin.
type blockMatrix struct{}

func (blockMatrix) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 5, 5, 5)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	mult := float64(orInt(cfg.Density, 64)) / 64
	cols := int(16 * mult)
	rows := int(12 * mult)
	if cols <= 0 || rows <= 0 {
		return
	}
	cellW, cellH := w/float64(cols), h/float64(rows)
	pad := orFloat(cfg.Padding, 2)
	if cellW <= pad*2 || cellH <= pad*2 {
		return
	}

	base := paletteColorOr(cfg, 1, matrixGreen)
	if LookupPalette(paletteID(cfg, "neon_cyber")).Category == DynamicTime {
		base = FlowColor(timeMs, 0)
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v, ok := sample(f.Frequency, (x+y*cols)*2)
			if !ok {
				break
			}
			s.SetAlpha(v * sens / 255)
			s.FillRect(float64(x)*cellW+pad, float64(y)*cellH+pad, cellW-pad*2, cellH-pad*2, Solid(base))
		}
	}
	s.SetAlpha(1)
}
