package render

import (
	"math"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

const tau = 2 * math.Pi

// paletteID returns the configured palette, or def when none is set.
func paletteID(cfg params.Config, def string) string {
	if cfg.Palette == "" {
		return def
	}
	return cfg.Palette
}

// applyCommon sets the line width and glow shared by most strategies.
func applyCommon(s Surface, cfg params.Config) {
	s.SetLineWidth(orFloat(cfg.LineWidth, 2))
	s.SetGlow(cfg.Glow)
}

// elementStyle prefers the palette's per-element color over the bulk style.
func elementStyle(id string, timeMs float64, index, total int, bulk Style) Style {
	if c, ok := ResolveIndexedColor(id, timeMs, index, total); ok {
		return Solid(c)
	}
	return bulk
}

func background(s Surface, r, g, b uint8) {
	w, h := s.Size()
	s.FillRect(0, 0, w, h, Solid(rgba(r, g, b, 1)))
}

// fade darkens the previous frame instead of clearing it, leaving trails.
func fade(s Surface, alpha float64) {
	w, h := s.Size()
	s.FillRect(0, 0, w, h, Solid(rgba(0, 0, 0, alpha)))
}

func circle(s Surface, x, y, r float64) {
	s.BeginPath()
	s.Arc(x, y, math.Max(0, r), 0, tau)
}

func sample(buf []byte, idx int) (float64, bool) {
	if idx < 0 || idx >= len(buf) {
		return 0, false
	}
	return float64(buf[idx]), true
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// hash2 is a stateless pseudo-random value in [0, 1).
func hash2(x, y float64) float64 {
	return frac(math.Sin(x*127.1+y*311.7) * 43758.5453123)
}

func frac(v float64) float64 {
	return v - math.Floor(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
