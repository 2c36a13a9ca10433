// Package frame shapes raw spectrum bytes into the buffers visualizers draw
// from: noise gating, frequency range cut and density resampling.
package frame

import "github.com/Ravikk-web/AURALIS-Ultra/internal/params"

// Result is the output of one Process call. Both slices belong to the
// Processor and are overwritten by the next call.
type Result struct {
	// Gated is the full-resolution spectrum with sub-threshold bins zeroed.
	Gated []byte
	// Processed is the range-cut, resampled spectrum.
	Processed []byte
}

// Processor owns the per-frame working buffers.
type Processor struct {
	gated     []byte
	processed []byte
}

// NewProcessor returns a processor sized for bins input bins.
func NewProcessor(bins int) *Processor {
	p := &Processor{}
	p.ensure(bins)
	return p
}

// Process gates freq, cuts it to the configured range and resamples it to
// the configured density.
func (p *Processor) Process(freq []byte, cfg params.Config) Result {
	p.ensure(len(freq))

	Gate(freq, p.gated, cfg.NoiseThreshold)
	cut := RangeCut(p.gated, cfg.FreqRange)
	n := Resample(cut, p.processed, cfg.Density)

	return Result{Gated: p.gated, Processed: p.processed[:n]}
}

func (p *Processor) ensure(bins int) {
	if len(p.gated) != bins {
		p.gated = make([]byte, bins)
		p.processed = make([]byte, bins)
	}
}

// Gate copies src into dst, writing 0 for every value below threshold.
// dst must be at least as long as src.
func Gate(src, dst []byte, threshold int) {
	for i, v := range src {
		if int(v) < threshold {
			dst[i] = 0
			continue
		}
		dst[i] = v
	}
}

// RangeCut keeps the first floor(len*percent/100) bins. A percent of 0 or
// anything at or above 100 keeps everything.
func RangeCut(src []byte, percent int) []byte {
	if percent <= 0 || percent >= 100 {
		return src
	}
	return src[:len(src)*percent/100]
}

// Resample picks every step-th value of src into dst and returns the count
// written, min(density, len(src)). The step is max(1, len(src)/density).
// A density of 0 or less selects the default density.
func Resample(src, dst []byte, density int) int {
	if density <= 0 {
		density = params.DefaultDensity
	}
	step := max(1, len(src)/density)
	n := min(density, len(src))
	for k := 0; k < n; k++ {
		dst[k] = src[k*step]
	}
	return n
}
