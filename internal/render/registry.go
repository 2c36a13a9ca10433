package render

import (
	"github.com/Ravikk-web/AURALIS-Ultra/internal/params"
)

// Frame is the per-tick input handed to a strategy. The slices are only
// valid for the duration of the Render call.
type Frame struct {
	// Frequency is the noise-gated spectrum at full resolution.
	Frequency []byte
	// Processed is Frequency cut to the configured range and resampled to
	// the configured density.
	Processed []byte
	// Waveform holds time-domain samples with 128 as the zero crossing.
	Waveform []byte
}

// Strategy draws one visualizer frame. Implementations hold no state between
// calls; anything pseudo-random is derived from time and element index.
type Strategy interface {
	Render(s Surface, f Frame, cfg params.Config, timeMs float64)
}

// Descriptor is one visualizer catalog entry.
type Descriptor struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strategy    Strategy `json:"-"`
}

var catalog = []Descriptor{
	{1, "Radial Ring", "Circular equalizer bars with neon border.", radialRing{}},
	{2, "Classic Equalizer", "High-fidelity vertical frequency bars (Centered).", classicEqualizer{}},
	{3, "White Oscilloscope", "Clean, thin-line raw time-domain waveform.", oscilloscope{}},
	{4, "Peak-Drop", "Vertical bars with floating caps.", peakDrop{}},
	{5, "Mirrored Dual-Side", "Symmetrical bars.", mirroredBars{}},
	{6, "Futuristic Layered Waves", "Overlapping transparent neon waves.", layeredWaves{}},
	{7, "Particle Frequency Grid", "Dots reacting to local frequency.", particleGrid{}},
	{8, "The Mandala", "8-way kaleido.", mandala{}},
	{9, "Frequency Ribbon", "Continuous flowing path.", frequencyRibbon{}},
	{10, "DNA Helix", "Intertwined sine waves.", dnaHelix{}},
	{11, "Digital Rainfall", "Matrix style.", digitalRainfall{}},
	{12, "Concentric Pulses", "Expanding circles on bass.", concentricPulses{}},
	{13, "RGB Glitch Wave", "Chromatic aberration.", rgbGlitch{}},
	{14, "Honeycomb Cells", "Hex grid opacity.", honeycomb{}},
	{15, "Vortex Spinner", "Rotating arcs.", vortex{}},
	{16, "Ghost Spectrum", "Fading trails area.", ghostSpectrum{}},
	{17, "Starwarp", "Starfield tunnel.", starwarp{}},
	{18, "Block Matrix", "Grid pops on frequency.", blockMatrix{}},
}

// Catalog returns the ordered visualizer catalog.
func Catalog() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the visualizer with the given id, or the first catalog
// entry when the id is unknown.
func Lookup(id int) Descriptor {
	for _, d := range catalog {
		if d.ID == id {
			return d
		}
	}
	return catalog[0]
}

// Next returns the id following id in catalog order, wrapping around.
// A negative step walks backwards.
func Next(id, step int) int {
	pos := 0
	for i, d := range catalog {
		if d.ID == id {
			pos = i
			break
		}
	}
	n := len(catalog)
	return catalog[((pos+step)%n+n)%n].ID
}
