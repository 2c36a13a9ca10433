package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// SourceKind selects which host stream a session captures.
type SourceKind int

const (
	Microphone SourceKind = iota
	SystemOutput
)

func (k SourceKind) String() string {
	switch k {
	case Microphone:
		return "microphone"
	case SystemOutput:
		return "system-output"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}

// ParseSourceKind accepts "mic", "microphone", "system" and "system-output".
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "mic", "microphone", "":
		return Microphone, nil
	case "system", "system-output", "loopback":
		return SystemOutput, nil
	}
	return 0, fmt.Errorf("unknown audio source %q", s)
}

// Source is a live stream of mono samples.
type Source interface {
	// ReadInto copies the most recent len(dst) samples into dst, oldest
	// first, and returns how many were available.
	ReadInto(dst []float32) int
	SampleRate() float64
	Name() string
	Close() error
}

// Capture wraps a PortAudio input stream and exposes thread-safe access to the latest samples.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo

	samples *Ring
	mono    []float32
}

// CaptureConfig controls how a Capture instance is created.
type CaptureConfig struct {
	DeviceName      string
	BufferSize      int
	FramesPerBuffer int
	Channels        int
}

const (
	defaultBufferSize      = 8192
	defaultFramesPerBuffer = 512
)

// NewCapture opens and starts a PortAudio stream for the given source kind.
// Failures are returned as *CaptureError.
func NewCapture(kind SourceKind, cfg CaptureConfig) (*Capture, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = defaultFramesPerBuffer
	}

	device, err := findDevice(kind, cfg.DeviceName)
	if err != nil {
		return nil, classify(kind, err)
	}

	channels := cfg.Channels
	if channels <= 0 {
		channels = 1
	}
	if channels > device.MaxInputChannels {
		channels = device.MaxInputChannels
	}

	capture := &Capture{
		sampleRate: device.DefaultSampleRate,
		samples:    NewRing(cfg.BufferSize),
		channels:   channels,
		device:     device,
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowInputLatency,
		},
		Output:          portaudio.StreamDeviceParameters{},
		SampleRate:      capture.sampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, capture.process)
	if err != nil {
		return nil, classify(kind, fmt.Errorf("open stream: %w", err))
	}
	capture.stream = stream

	if err := capture.stream.Start(); err != nil {
		_ = capture.stream.Close()
		return nil, classify(kind, fmt.Errorf("start stream: %w", err))
	}

	return capture, nil
}

// Close stops and closes the underlying PortAudio stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	stream := c.stream
	c.stream = nil
	if err := stream.Stop(); err != nil && !errorsIsInvalidStreamState(err) {
		_ = stream.Close()
		return err
	}
	return stream.Close()
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 {
	return c.sampleRate
}

// Name returns the capture device name.
func (c *Capture) Name() string {
	if c.device == nil {
		return ""
	}
	return c.device.Name
}

// ReadInto implements Source.
func (c *Capture) ReadInto(dst []float32) int {
	return c.samples.ReadInto(dst)
}

// process runs on the PortAudio callback thread.
func (c *Capture) process(in []float32) {
	if c.channels > 1 {
		frames := len(in) / c.channels
		if cap(c.mono) < frames {
			c.mono = make([]float32, frames)
		}
		mono := c.mono[:frames]
		for i := range mono {
			sum := float32(0)
			base := i * c.channels
			for ch := 0; ch < c.channels; ch++ {
				sum += in[base+ch]
			}
			mono[i] = sum / float32(c.channels)
		}
		c.samples.Write(mono)
		return
	}

	c.samples.Write(in)
}

// Ring is a fixed-size, mutex-guarded sample history.
type Ring struct {
	mu     sync.Mutex
	buffer []float32
	index  int
	filled int
}

// NewRing returns a ring holding size samples.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Ring{buffer: make([]float32, size)}
}

// Write appends samples, overwriting the oldest ones.
func (r *Ring) Write(in []float32) {
	if len(in) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.buffer)
	r.filled = min(n, r.filled+len(in))

	if len(in) >= n {
		copy(r.buffer, in[len(in)-n:])
		r.index = 0
		return
	}

	if r.index+len(in) <= n {
		copy(r.buffer[r.index:], in)
		r.index += len(in)
		if r.index == n {
			r.index = 0
		}
		return
	}

	remaining := n - r.index
	copy(r.buffer[r.index:], in[:remaining])
	copy(r.buffer, in[remaining:])
	r.index = len(in) - remaining
}

// ReadInto copies the most recent len(dst) samples into dst, oldest first,
// zero-filling the front when fewer are available. It returns the number of
// real samples copied.
func (r *Ring) ReadInto(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := min(len(dst), r.filled)
	lead := len(dst) - want
	clear(dst[:lead])

	n := len(r.buffer)
	start := r.index - want
	if start < 0 {
		start += n
	}
	out := dst[lead:]
	first := copy(out, r.buffer[start:min(n, start+want)])
	copy(out[first:], r.buffer[:want-first])
	return want
}
