package analyzer

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultSize is the transform size used when none is configured.
	DefaultSize = 2048
	// DefaultSmoothing is the temporal smoothing constant applied between frames.
	DefaultSmoothing = 0.8

	MinSize = 32
	MaxSize = 32768

	// decibel window mapped onto the 0..255 byte range
	minDecibels = -100.0
	maxDecibels = -30.0
)

// Analyzer turns the most recent block of mono samples into byte-scaled
// frequency magnitudes and a byte-scaled waveform.
type Analyzer struct {
	size      int
	smoothing float64

	fft      *fourier.FFT
	window   []float64
	input    []float64
	coeffs   []complex128
	smoothed []float64
}

// New returns an analyzer for the given transform size. A zero size selects
// DefaultSize; a negative smoothing selects DefaultSmoothing.
func New(size int, smoothing float64) (*Analyzer, error) {
	if size == 0 {
		size = DefaultSize
	}
	if smoothing < 0 {
		smoothing = DefaultSmoothing
	}
	a := &Analyzer{}
	if err := a.Resize(size); err != nil {
		return nil, err
	}
	a.SetSmoothing(smoothing)
	return a, nil
}

// ValidSize reports whether size is an accepted transform size.
func ValidSize(size int) bool {
	return size >= MinSize && size <= MaxSize && size&(size-1) == 0
}

// Resize changes the transform size. Workspace buffers are only reallocated
// when the size actually changes.
func (a *Analyzer) Resize(size int) error {
	if !ValidSize(size) {
		return fmt.Errorf("transform size %d: must be a power of two in [%d, %d]", size, MinSize, MaxSize)
	}
	a.ensureWorkspace(size)
	return nil
}

// SetSmoothing sets the smoothing constant, clamped to [0, 1].
func (a *Analyzer) SetSmoothing(v float64) {
	a.smoothing = clamp(v, 0, 1)
}

// Smoothing returns the active smoothing constant.
func (a *Analyzer) Smoothing() float64 { return a.smoothing }

// Size returns the transform size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of frequency bins, half the transform size.
func (a *Analyzer) Bins() int { return a.size / 2 }

// Reset clears smoothing history.
func (a *Analyzer) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// Frequency writes Bins() bytes into dst, growing it if needed, and returns
// the resulting slice. samples must hold the latest Size() samples, oldest
// first; shorter input is treated as leading silence.
func (a *Analyzer) Frequency(samples []float32, dst []byte) []byte {
	dst = resizeBytes(dst, a.Bins())
	a.loadInput(samples)
	floats.Mul(a.input, a.window)

	a.coeffs = a.fft.Coefficients(a.coeffs, a.input)
	norm := 1.0 / float64(a.size)
	tau := a.smoothing
	for k := range a.smoothed {
		mag := cmag(a.coeffs[k]) * norm
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag
		dst[k] = decibelsToByte(a.smoothed[k])
	}
	return dst
}

// Waveform writes Size() bytes into dst where 128 is the zero crossing.
func (a *Analyzer) Waveform(samples []float32, dst []byte) []byte {
	dst = resizeBytes(dst, a.size)
	offset := a.size - len(samples)
	for i := range dst {
		j := i - offset
		if j < 0 {
			dst[i] = 128
			continue
		}
		dst[i] = byte(clamp(128*(1+float64(samples[j])), 0, 255))
	}
	return dst
}

func (a *Analyzer) loadInput(samples []float32) {
	offset := a.size - len(samples)
	for i := range a.input {
		j := i - offset
		if j < 0 || j >= len(samples) {
			a.input[i] = 0
			continue
		}
		a.input[i] = float64(samples[j])
	}
}

func (a *Analyzer) ensureWorkspace(size int) {
	if a.size == size && len(a.window) == size {
		return
	}
	a.size = size
	if a.fft == nil {
		a.fft = fourier.NewFFT(size)
	} else {
		a.fft.Reset(size)
	}
	a.window = window.Blackman(size)
	a.input = make([]float64, size)
	a.coeffs = make([]complex128, size/2+1)
	a.smoothed = make([]float64, size/2)
}

func decibelsToByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	return byte(clamp(scaled, 0, 255))
}

func resizeBytes(dst []byte, n int) []byte {
	if cap(dst) < n {
		return make([]byte, n)
	}
	return dst[:n]
}

func cmag(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
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
