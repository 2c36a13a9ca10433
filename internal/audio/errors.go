package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is against a *CaptureError.
var (
	ErrPermissionDenied  = errors.New("audio permission denied")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrUnsupportedSource = errors.New("audio source unsupported")
)

// CaptureError reports why a capture session could not be opened.
type CaptureError struct {
	Kind   error
	Source SourceKind
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("open %s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("open %s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

func (e *CaptureError) Is(target error) bool { return target == e.Kind }

// classify maps a host audio error to a CaptureError. PortAudio only reports
// numeric codes through its error strings, so matching is textual.
func classify(kind SourceKind, err error) error {
	if err == nil {
		return nil
	}
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"),
		strings.Contains(msg, "denied"),
		strings.Contains(msg, "not permitted"):
		return &CaptureError{Kind: ErrPermissionDenied, Source: kind, Err: err}
	default:
		// unknown host failures, including -9985 and -9996, mean no usable device
		return &CaptureError{Kind: ErrDeviceUnavailable, Source: kind, Err: err}
	}
}

// errorsIsInvalidStreamState checks if the provided error stems from stopping an already stopped stream.
func errorsIsInvalidStreamState(err error) bool {
	if err == nil {
		return false
	}
	const invalidStateMsg = "PaErrorCode -9986"
	return strings.Contains(err.Error(), invalidStateMsg)
}
