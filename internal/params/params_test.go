package params

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Sensitivity != 1.5 || d.Smoothing != 0.8 || d.NoiseThreshold != 10 {
		t.Fatalf("unexpected audio defaults %+v", d)
	}
	if d.Density != 64 || d.FreqRange != 100 || d.Palette != "neon_cyber" {
		t.Fatalf("unexpected shaping defaults %+v", d)
	}
	if Sanitize(d) != d {
		t.Fatalf("defaults should already be sanitized")
	}
}

func TestSanitizeClamps(t *testing.T) {
	c := Sanitize(Config{
		Sensitivity:    -1,
		Smoothing:      1.4,
		NoiseThreshold: 300,
		Density:        -5,
		FreqRange:      250,
		Glow:           -3,
	})
	if c.Sensitivity != 0 || c.Smoothing != 1 || c.NoiseThreshold != 255 {
		t.Fatalf("audio fields not clamped: %+v", c)
	}
	if c.Density != DefaultDensity {
		t.Fatalf("density=%d want %d", c.Density, DefaultDensity)
	}
	if c.FreqRange != 100 || c.Glow != 0 {
		t.Fatalf("range fields not clamped: %+v", c)
	}
	if got := Sanitize(Config{Density: 99999}).Density; got != MaxDensity {
		t.Fatalf("density=%d want %d", got, MaxDensity)
	}
}

func TestSanitizeReplacesNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	c := Sanitize(Config{
		Sensitivity: nan,
		Smoothing:   -inf,
		LineWidth:   inf,
		Glow:        nan,
		Padding:     -inf,
		BarWidth:    nan,
		Speed:       inf,
		Scale:       nan,
	})
	d := Defaults()
	if c.Sensitivity != d.Sensitivity || c.Smoothing != d.Smoothing {
		t.Fatalf("audio fields not restored: %+v", c)
	}
	if c.LineWidth != d.LineWidth || c.Glow != d.Glow || c.Padding != d.Padding {
		t.Fatalf("stroke fields not restored: %+v", c)
	}
	if c.BarWidth != 0 || c.Speed != d.Speed || c.Scale != 0 {
		t.Fatalf("layout fields not restored: %+v", c)
	}
	if got := Sanitize(Config{LineWidth: 1e300, Speed: 1e12}); got.LineWidth != MaxVisual || got.Speed != MaxVisual {
		t.Fatalf("large values not capped: %+v", got)
	}
}

func TestMergeOnlySetFields(t *testing.T) {
	base := Defaults()
	got := Merge(base, Overrides{Density: Ptr(128), Palette: Ptr("sunset")})
	if got.Density != 128 || got.Palette != "sunset" {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Sensitivity != base.Sensitivity || got.LineWidth != base.LineWidth {
		t.Fatalf("unset fields changed: %+v", got)
	}
}

func TestCombineAndDiff(t *testing.T) {
	a := Overrides{Density: Ptr(32), Glow: Ptr(5.0)}
	b := Overrides{Density: Ptr(48)}
	c := a.Combine(b)
	if *c.Density != 48 || *c.Glow != 5 {
		t.Fatalf("combine result %+v", c)
	}
	*b.Density = 1
	if *c.Density != 48 {
		t.Fatalf("combine should copy values")
	}

	base := Defaults()
	changed := base
	changed.Speed = 2
	d := Diff(base, changed)
	if d.Speed == nil || *d.Speed != 2 || d.Density != nil {
		t.Fatalf("diff=%+v", d)
	}
	if Merge(base, d) != changed {
		t.Fatalf("merge(diff) should round trip")
	}
}

func TestStoreProfilesPerVisualizer(t *testing.T) {
	s := NewStore(Defaults(), 0)
	s.Update(Overrides{Density: Ptr(128)})
	if got := s.Snapshot().Config.Density; got != 128 {
		t.Fatalf("density=%d want 128", got)
	}

	s.SetVisualizer(3)
	snap := s.Snapshot()
	if snap.Visualizer != 3 || snap.Config.Density != 64 {
		t.Fatalf("visualizer 3 should start from defaults, got %+v", snap)
	}

	s.UpdateDefaults(Overrides{Sensitivity: Ptr(2.0)})
	s.SetVisualizer(0)
	snap = s.Snapshot()
	if snap.Config.Density != 128 || snap.Config.Sensitivity != 2 {
		t.Fatalf("profile lost after switching back: %+v", snap.Config)
	}

	s.ResetProfile()
	if got := s.Snapshot().Config.Density; got != 64 {
		t.Fatalf("density after reset=%d want 64", got)
	}
}

func TestStoreSnapshotIsImmutable(t *testing.T) {
	s := NewStore(Defaults(), 0)
	before := s.Snapshot()
	s.Update(Overrides{Glow: Ptr(1.0)})
	if before.Config.Glow != 20 {
		t.Fatalf("published snapshot was mutated")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(Defaults(), 0)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Update(Overrides{Density: Ptr(16 * (1 + j%16))})
				s.SetVisualizer(i)
			}
		}(i)
	}
	for j := 0; j < 100; j++ {
		if snap := s.Snapshot(); snap.Config.Density < MinDensity {
			t.Fatalf("invalid snapshot %+v", snap)
		}
	}
	wg.Wait()
}

func TestRandomizeStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		c := Randomize(Defaults(), []string{"a", "b"}, rng)
		if c.Density < 16 || c.Density > 256 || c.Density%16 != 0 {
			t.Fatalf("density=%d out of range", c.Density)
		}
		if c.Palette != "a" && c.Palette != "b" {
			t.Fatalf("palette=%q", c.Palette)
		}
		if c.NoiseThreshold != 10 {
			t.Fatalf("noise threshold should be untouched")
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	s := NewStore(Defaults(), 0)
	s.UpdateDefaults(Overrides{Palette: Ptr("matrix")})
	s.SetVisualizer(7)
	s.Update(Overrides{Density: Ptr(200)})

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := SaveFile(path, Capture(s)); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	restored := NewStore(Defaults(), 0)
	f.Apply(restored)
	snap := restored.Snapshot()
	if snap.Visualizer != 7 || snap.Config.Density != 200 || snap.Config.Palette != "matrix" {
		t.Fatalf("restored snapshot %+v", snap)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadFileNonFiniteValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := "defaults:\n  sensitivity: .nan\n  glow: .inf\nprofiles:\n  5:\n    speed: -.inf\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	s := NewStore(Defaults(), 5)
	f.Apply(s)
	cfg := s.Snapshot().Config
	for name, v := range map[string]float64{
		"sensitivity": cfg.Sensitivity,
		"glow":        cfg.Glow,
		"speed":       cfg.Speed,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s=%v in snapshot", name, v)
		}
	}
	if cfg.Sensitivity != Defaults().Sensitivity {
		t.Fatalf("sensitivity=%v want default", cfg.Sensitivity)
	}
}
