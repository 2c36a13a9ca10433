package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	hostMu   sync.Mutex
	hostRefs int
)

// Initialize brings up the host audio library. Calls are reference counted
// and must be balanced with Terminate.
func Initialize() error {
	hostMu.Lock()
	defer hostMu.Unlock()
	if hostRefs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return err
		}
	}
	hostRefs++
	return nil
}

// Terminate releases one Initialize reference and shuts the host library
// down when the last one is gone.
func Terminate() {
	hostMu.Lock()
	defer hostMu.Unlock()
	if hostRefs == 0 {
		return
	}
	hostRefs--
	if hostRefs == 0 {
		_ = portaudio.Terminate()
	}
}
