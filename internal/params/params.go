package params

import (
	"math"
	"math/rand"
)

// Config holds the settings every visualizer reads on each frame. A zero
// numeric field means "unset": strategies substitute their own default.
type Config struct {
	Sensitivity    float64 `json:"sensitivity" yaml:"sensitivity"`
	Smoothing      float64 `json:"smoothing" yaml:"smoothing"`
	NoiseThreshold int     `json:"noiseThreshold" yaml:"noiseThreshold"`
	Density        int     `json:"density" yaml:"density"`
	FreqRange      int     `json:"freqRange" yaml:"freqRange"`
	Palette        string  `json:"palette" yaml:"palette"`
	LineWidth      float64 `json:"lineWidth" yaml:"lineWidth"`
	Glow           float64 `json:"glow" yaml:"glow"`
	Padding        float64 `json:"padding" yaml:"padding"`
	BarWidth       float64 `json:"barWidth" yaml:"barWidth"`
	Speed          float64 `json:"speed" yaml:"speed"`
	Scale          float64 `json:"scale" yaml:"scale"`
}

const (
	DefaultDensity = 64
	MinDensity     = 1
	MaxDensity     = 1024
	MaxSensitivity = 10
	// MaxVisual caps the unbounded drawing knobs (line width, glow, padding,
	// bar width, speed, scale).
	MaxVisual = 1000
)

// Defaults returns the settings a fresh install starts with.
func Defaults() Config {
	return Config{
		Sensitivity:    1.5,
		Smoothing:      0.8,
		NoiseThreshold: 10,
		Density:        DefaultDensity,
		FreqRange:      100,
		Palette:        "neon_cyber",
		LineWidth:      3,
		Glow:           20,
		Padding:        2,
		BarWidth:       0,
		Speed:          1,
	}
}

// Sanitize clamps every field into its accepted range. NaN and infinite
// floats are replaced with their default first. Unknown palette ids are
// kept; the color engine resolves them to its fallback.
func Sanitize(c Config) Config {
	d := Defaults()
	c.Sensitivity = clamp(finite(c.Sensitivity, d.Sensitivity), 0, MaxSensitivity)
	c.Smoothing = clamp(finite(c.Smoothing, d.Smoothing), 0, 1)
	c.NoiseThreshold = clampInt(c.NoiseThreshold, 0, 255)
	if c.Density <= 0 {
		c.Density = DefaultDensity
	}
	c.Density = clampInt(c.Density, MinDensity, MaxDensity)
	c.FreqRange = clampInt(c.FreqRange, 0, 100)
	c.LineWidth = clamp(finite(c.LineWidth, d.LineWidth), 0, MaxVisual)
	c.Glow = clamp(finite(c.Glow, d.Glow), 0, MaxVisual)
	c.Padding = clamp(finite(c.Padding, d.Padding), 0, MaxVisual)
	c.BarWidth = clamp(finite(c.BarWidth, d.BarWidth), 0, MaxVisual)
	c.Speed = clamp(finite(c.Speed, d.Speed), 0, MaxVisual)
	c.Scale = clamp(finite(c.Scale, d.Scale), 0, MaxVisual)
	return c
}

// Randomize returns c with the visual knobs shuffled inside the ranges the
// control surface offers. Audio shaping fields are left alone.
func Randomize(c Config, palettes []string, rng *rand.Rand) Config {
	if len(palettes) > 0 {
		c.Palette = palettes[rng.Intn(len(palettes))]
	}
	c.Density = 16 * (1 + rng.Intn(16))
	c.LineWidth = float64(1 + rng.Intn(8))
	c.Glow = float64(rng.Intn(41))
	c.Speed = lerp(0.25, 3, rng.Float64())
	c.Sensitivity = lerp(0.8, 3, rng.Float64())
	return c
}

func lerp(current, target, factor float64) float64 {
	return current*(1-factor) + target*factor
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func finite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
