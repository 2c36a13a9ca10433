package audio

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Ravikk-web/AURALIS-Ultra/internal/analyzer"
)

// Opener creates a live Source for kind. NewCapture is used when nil.
type Opener func(kind SourceKind, cfg CaptureConfig) (Source, error)

// SessionConfig controls a Session.
type SessionConfig struct {
	DeviceName    string
	TransformSize int
	Smoothing     float64
	Open          Opener
	Log           *log.Logger
}

// Handle identifies one opened capture.
type Handle struct {
	Kind       SourceKind
	Device     string
	SampleRate float64

	session *Session
}

// Close ends the capture if it is still the live one.
func (h *Handle) Close() error {
	if h == nil || h.session == nil {
		return nil
	}
	return h.session.closeHandle(h)
}

// Frame holds one tick's worth of analyzer output. The slices are reused
// between calls to SampleInto.
type Frame struct {
	Frequency []byte
	Waveform  []byte
	Timestamp time.Duration
}

// Session owns at most one live audio source and its analyzer.
type Session struct {
	mu       sync.Mutex
	cfg      SessionConfig
	log      *log.Logger
	source   Source
	handle   *Handle
	opened   time.Time
	analyzer *analyzer.Analyzer
	samples  []float32
}

// NewSession validates cfg and returns an idle session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.TransformSize == 0 {
		cfg.TransformSize = analyzer.DefaultSize
	}
	if cfg.Smoothing == 0 {
		cfg.Smoothing = analyzer.DefaultSmoothing
	}
	if cfg.Open == nil {
		cfg.Open = func(kind SourceKind, c CaptureConfig) (Source, error) {
			return NewCapture(kind, c)
		}
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	an, err := analyzer.New(cfg.TransformSize, cfg.Smoothing)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	return &Session{
		cfg:      cfg,
		log:      logger,
		analyzer: an,
		samples:  make([]float32, an.Size()),
	}, nil
}

// Open starts capturing from kind, closing any source that was live.
// On failure the session is left idle and the error is a *CaptureError.
func (s *Session) Open(kind SourceKind) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeLocked(); err != nil {
		s.log.Printf("audio: %v", err)
	}

	src, err := s.cfg.Open(kind, CaptureConfig{
		DeviceName: s.cfg.DeviceName,
		BufferSize: analyzer.MaxSize,
	})
	if err != nil {
		return nil, classify(kind, err)
	}

	s.source = src
	s.opened = time.Now()
	s.analyzer.Reset()
	s.handle = &Handle{
		Kind:       kind,
		Device:     src.Name(),
		SampleRate: src.SampleRate(),
		session:    s,
	}
	s.log.Printf("audio %s opened on %q @ %.0f Hz", kind, src.Name(), src.SampleRate())
	return s.handle, nil
}

// Configure changes the transform size and smoothing of the live analyzer.
func (s *Session) Configure(transformSize int, smoothing float64) error {
	if smoothing < 0 || smoothing > 1 {
		return fmt.Errorf("smoothing %.3f: must be within [0, 1]", smoothing)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.analyzer.Resize(transformSize); err != nil {
		return err
	}
	if len(s.samples) != transformSize {
		s.samples = make([]float32, transformSize)
	}
	s.analyzer.SetSmoothing(smoothing)
	return nil
}

// SetSmoothing updates only the smoothing constant; out of range values are clamped.
func (s *Session) SetSmoothing(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzer.SetSmoothing(v)
}

// Smoothing returns the analyzer smoothing constant.
func (s *Session) Smoothing() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.Smoothing()
}

// Bins returns the frequency bin count, half the transform size.
func (s *Session) Bins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.Bins()
}

// Active reports whether a source is live.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}

// Current returns the live handle or nil.
func (s *Session) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// SampleFrequency writes the current byte spectrum into dst. It returns dst
// unchanged when the session is idle.
func (s *Session) SampleFrequency(dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return dst
	}
	s.source.ReadInto(s.samples)
	return s.analyzer.Frequency(s.samples, dst)
}

// SampleWaveform writes the current byte waveform into dst. It returns dst
// unchanged when the session is idle.
func (s *Session) SampleWaveform(dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return dst
	}
	s.source.ReadInto(s.samples)
	return s.analyzer.Waveform(s.samples, dst)
}

// SampleInto fills f from a single read of the source. It reports false
// when the session is idle.
func (s *Session) SampleInto(f *Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return false
	}
	s.source.ReadInto(s.samples)
	f.Frequency = s.analyzer.Frequency(s.samples, f.Frequency)
	f.Waveform = s.analyzer.Waveform(s.samples, f.Waveform)
	f.Timestamp = time.Since(s.opened)
	return true
}

// Close releases the live source. Closing an idle session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeHandle(h *Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != h {
		return nil
	}
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if s.source == nil {
		return nil
	}
	src, kind := s.source, s.handle.Kind
	s.source = nil
	s.handle = nil
	if err := src.Close(); err != nil {
		return fmt.Errorf("close %s: %w", kind, err)
	}
	s.log.Printf("audio %s closed", kind)
	return nil
}
