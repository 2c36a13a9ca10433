package params

import (
	"sync"
	"sync/atomic"
)

// State is an immutable snapshot read once per frame.
type State struct {
	Visualizer int
	Config     Config
}

// Store keeps the global defaults plus one override profile per visualizer
// and publishes the merged result for the active visualizer.
type Store struct {
	mu         sync.Mutex
	defaults   Config
	profiles   map[int]Overrides
	visualizer int

	current atomic.Pointer[State]
}

// NewStore returns a store with defaults applied to every visualizer.
func NewStore(defaults Config, visualizer int) *Store {
	s := &Store{
		defaults:   defaults,
		profiles:   make(map[int]Overrides),
		visualizer: visualizer,
	}
	s.publishLocked()
	return s
}

// Snapshot returns the latest published state. It never blocks.
func (s *Store) Snapshot() *State {
	return s.current.Load()
}

// SetVisualizer switches the active visualizer.
func (s *Store) SetVisualizer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visualizer = id
	s.publishLocked()
}

// Update layers o onto the active visualizer's profile.
func (s *Store) Update(o Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[s.visualizer] = s.profiles[s.visualizer].Combine(o)
	s.publishLocked()
}

// UpdateDefaults layers o onto the settings shared by all visualizers.
func (s *Store) UpdateDefaults(o Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = Merge(s.defaults, o)
	s.publishLocked()
}

// SetProfile replaces the profile of visualizer id.
func (s *Store) SetProfile(id int, o Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = o
	s.publishLocked()
}

// ResetProfile drops the active visualizer's overrides.
func (s *Store) ResetProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, s.visualizer)
	s.publishLocked()
}

// Export returns a copy of the defaults and profiles for persistence.
func (s *Store) Export() (Config, map[int]Overrides, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make(map[int]Overrides, len(s.profiles))
	for id, o := range s.profiles {
		profiles[id] = Overrides{}.Combine(o)
	}
	return s.defaults, profiles, s.visualizer
}

func (s *Store) publishLocked() {
	cfg := Sanitize(Merge(s.defaults, s.profiles[s.visualizer]))
	s.current.Store(&State{Visualizer: s.visualizer, Config: cfg})
}
