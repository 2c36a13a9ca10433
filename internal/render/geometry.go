package render

import (
	"image/color"
	"math"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

var (
	magenta = color.NRGBA{R: 255, B: 255, A: 255}
	red     = color.NRGBA{R: 255, A: 255}
	rung    = rgba(255, 255, 255, 0.2)
)

// mandala repeats one spiral trace under 8-fold rotation. It reads every
// second raw bin.
type mandala struct{}

func (mandala) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	fade(s, 0.2)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	speed := orFloat(cfg.Speed, 1)
	radius := math.Min(w, h) * 0.4 * orFloat(cfg.Scale, 1)
	p := LookupPalette(paletteID(cfg, "neon_cyber"))
	points := orInt(cfg.Density, 100)

	applyCommon(s, cfg)
	for sym := 0; sym < 8; sym++ {
		s.Save()
		s.Translate(w/2, h/2)
		s.Rotate(tau/8*float64(sym) + timeMs*0.0002*speed)
		s.BeginPath()
		for i := 0; i < points; i++ {
			v, ok := sample(f.Frequency, i*2)
			if !ok {
				break
			}
			r := float64(i)/float64(points)*radius + v*sens/255*40
			x := math.Cos(float64(i)*0.1) * r
			y := math.Sin(float64(i)*0.1) * r
			if i == 0 {
				s.MoveTo(x, y)
			} else {
				s.LineTo(x, y)
			}
		}

		var c color.NRGBA
		switch {
		case p.Category != StaticGradient:
			c = HSL(timeMs*0.1+float64(sym)*40, 0.7, 0.6)
		case sym%2 < len(p.Colors):
			c = p.Colors[sym%2]
		default:
			c = white
		}
		s.Stroke(Solid(c))
		s.Restore()
	}
}

// dnaHelix draws two phase-opposed sine traces joined by rungs. Amplitude
// follows raw bin 5.
type dnaHelix struct{}

func (dnaHelix) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	sens := orFloat(cfg.Sensitivity, 1)
	speed := orFloat(cfg.Speed, 1)
	raw, _ := sample(f.Frequency, 5)
	bass := raw * sens / 255

	c1, c2 := paletteColorOr(cfg, 0, magenta), paletteColorOr(cfg, 1, neonCyan)
	if LookupPalette(paletteID(cfg, "neon_cyber")).Category == DynamicTime {
		c1, c2 = FlowColor(timeMs, 0), FlowColor(timeMs, 180)
	}

	applyCommon(s, cfg)
	step := 30.0
	if cfg.Density != 0 {
		step = 50 - float64(cfg.Density)/10
	}
	step = math.Max(5, step)

	size := cfg.BarWidth
	if size == 0 {
		size = 5
		if cfg.LineWidth != 0 {
			size = cfg.LineWidth + 2
		}
	}
	amp := 50 + bass*100

	for x := 0.0; x < w; x += step {
		angle := x*0.02 + timeMs*0.002*speed
		y1 := h/2 + math.Sin(angle)*amp
		y2 := h/2 + math.Sin(angle+math.Pi)*amp

		circle(s, x, y1, size)
		s.Fill(Solid(c1))
		circle(s, x, y2, size)
		s.Fill(Solid(c2))

		s.BeginPath()
		s.MoveTo(x, y1)
		s.LineTo(x, y2)
		s.Stroke(Solid(rung))
	}
}

// concentricPulses emits rings that expand with time and flashes a thick
// ring when raw bin 3 is loud.
type concentricPulses struct{}

func (concentricPulses) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	cx, cy := w/2, h/2
	sens := orFloat(cfg.Sensitivity, 1)
	raw, _ := sample(f.Frequency, 3)
	bass := raw * sens

	c1, c2 := paletteColorOr(cfg, 0, white), paletteColorOr(cfg, 1, red)
	if LookupPalette(paletteID(cfg, "neon_cyber")).Category == DynamicTime {
		c1, c2 = FlowColor(timeMs, 0), FlowColor(timeMs, 90)
	}

	applyCommon(s, cfg)
	if bass > 200 {
		s.SetLineWidth(10)
		circle(s, cx, cy, 100+hash2(timeMs*0.001, 3)*50)
		s.Stroke(Solid(c1))
	}

	maxR := math.Min(w, h) / 2
	if maxR <= 0 {
		return
	}
	count := int(math.Ceil(float64(orInt(cfg.Density, 64)) / 10))
	s.SetLineWidth(2 + bass/255*10)
	for i := 0; i < count; i++ {
		r := math.Mod(timeMs*0.2+float64(i)*100, maxR)
		s.SetAlpha(1 - r/maxR)
		circle(s, cx, cy, r)
		s.Stroke(Solid(c2))
	}
	s.SetAlpha(1)
}

// vortex spins concentric arcs whose speed and sweep follow the average
// raw level.
type vortex struct{}

func (vortex) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	fade(s, 0.2)
	w, h := s.Size()
	cx, cy := w/2, h/2
	vol := meanLevel(f.Frequency)
	sens := orFloat(cfg.Sensitivity, 1)
	level := vol * sens / 255
	spin := 0.001 + level*0.02

	applyCommon(s, cfg)
	s.SetLineWidth(orFloat(cfg.LineWidth, 5))
	count := math.Min(50, float64(orInt(cfg.Density, 20))/2)
	for i := 0; float64(i) < count; i++ {
		r := float64(i) * (w / 2 / count)
		dir := 1.0
		if i%2 == 1 {
			dir = -1
		}
		start := timeMs*spin*dir + float64(i)
		end := start + math.Pi + level

		s.BeginPath()
		s.Arc(cx, cy, r, start, end)
		s.Stroke(Solid(HSL(float64(i)*15+timeMs*0.1, 1, 0.5)))
	}
}

// starwarp flies through a starfield whose speed follows raw bin 10.
type starwarp struct{}

func (starwarp) Render(s Surface, f Frame, cfg params.Config, timeMs float64) {
	background(s, 0, 0, 0)
	w, h := s.Size()
	cx, cy := w/2, h/2
	sens := orFloat(cfg.Sensitivity, 1)
	raw, _ := sample(f.Frequency, 10)
	beat := raw * sens / 255
	speed := 1 + beat*20*orFloat(cfg.Speed, 1)
	maxDist := math.Min(w, h) / 2
	if w <= 0 || maxDist <= 0 {
		return
	}
	starSize := orFloat(cfg.BarWidth, 3)

	stars := orInt(cfg.Density, 200) * 2
	for i := 0; i < stars; i++ {
		r := math.Mod(float64(i)*1337+timeMs*speed, w)
		angle := math.Mod(float64(i)*997, tau)
		dist := math.Mod(r, maxDist)
		depth := dist / (w / 2)

		s.SetAlpha(depth)
		circle(s, cx+math.Cos(angle)*dist, cy+math.Sin(angle)*dist, depth*starSize)
		s.Fill(Solid(white))
	}
	s.SetAlpha(1)
}

// paletteColorOr returns the k-th fixed color of the configured palette or
// def when it has none.
func paletteColorOr(cfg params.Config, k int, def color.NRGBA) color.NRGBA {
	if c, ok := PaletteColor(paletteID(cfg, "neon_cyber"), k); ok {
		return c
	}
	return def
}

func meanLevel(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	sum := 0
	for _, v := range buf {
		sum += int(v)
	}
	return float64(sum) / float64(len(buf))
}
