package app

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/audio"
)

const syntheticRate = 44100

// synthSource is an audio.Source that plays a slowly drifting mix of a bass
// pulse, a mid tone and a treble shimmer. It stands in for a device when
// audio is disabled.
type synthSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	start time.Time
	now   func() time.Time
}

func newSynthSource() *synthSource {
	return &synthSource{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		start: time.Now(),
		now:   time.Now,
	}
}

// openSynthetic is an audio.Opener that ignores the requested kind.
func openSynthetic(audio.SourceKind, audio.CaptureConfig) (audio.Source, error) {
	return newSynthSource(), nil
}

// ReadInto fills dst with the len(dst) samples ending at the current time.
func (s *synthSource) ReadInto(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.now().Sub(s.start).Seconds()
	n := float64(len(dst))
	for i := range dst {
		t := end - (n-float64(i))/syntheticRate

		bassEnv := 0.5 + 0.5*math.Sin(t*0.7*tau)
		midEnv := 0.4 + 0.4*math.Sin(t*1.2*tau+0.5)
		trebleEnv := 0.3 + 0.3*math.Sin(t*2.1*tau+1.0)
		beat := math.Max(0, math.Sin(t*2*math.Pi*2))

		v := 0.45*bassEnv*(0.6+0.4*beat)*math.Sin(tau*60*t) +
			0.25*midEnv*math.Sin(tau*(440+40*math.Sin(t))*t) +
			0.12*trebleEnv*math.Sin(tau*5200*t) +
			0.02*(s.rng.Float64()*2-1)
		dst[i] = float32(clamp(v, -1, 1))
	}
	return len(dst)
}

func (s *synthSource) SampleRate() float64 { return syntheticRate }
func (s *synthSource) Name() string        { return "synthetic" }
func (s *synthSource) Close() error        { return nil }

const tau = 2 * math.Pi

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
