package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk settings layout.
//
//	visualizer: 2
//	defaults:
//	  sensitivity: 2
//	profiles:
//	  7:
//	    density: 128
type File struct {
	Visualizer *int              `yaml:"visualizer,omitempty"`
	Defaults   Overrides         `yaml:"defaults,omitempty"`
	Profiles   map[int]Overrides `yaml:"profiles,omitempty"`
}

// LoadFile reads a YAML settings file.
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return f, nil
}

// Apply loads f into s.
func (f File) Apply(s *Store) {
	s.UpdateDefaults(f.Defaults)
	for id, o := range f.Profiles {
		s.SetProfile(id, o)
	}
	if f.Visualizer != nil {
		s.SetVisualizer(*f.Visualizer)
	}
}

// Capture builds a File from the current contents of s. Defaults are stored
// as a diff against Defaults().
func Capture(s *Store) File {
	defaults, profiles, visualizer := s.Export()
	return File{
		Visualizer: Ptr(visualizer),
		Defaults:   Diff(Defaults(), defaults),
		Profiles:   profiles,
	}
}

// SaveFile writes f as YAML.
func SaveFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
