package params

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClampedForcesRanges(t *testing.T) {
	s := Settings{
		ParticleCount:    -50,
		FieldStrength:    99,
		NoiseScale:       0,
		TimeScale:        5,
		Drag:             0.5,
		ColorSensitivity: 100,
		BeatSensitivity:  0,
	}
	got := s.Clamped()

	if got.ParticleCount != 0 {
		t.Fatalf("negative count clamps to 0, got %d", got.ParticleCount)
	}
	if got.FieldStrength != MaxFieldStrength {
		t.Fatalf("field strength %f want %f", got.FieldStrength, float64(MaxFieldStrength))
	}
	if got.NoiseScale != MinNoiseScale {
		t.Fatalf("noise scale %f want %f", got.NoiseScale, float64(MinNoiseScale))
	}
	if got.TimeScale != MaxTimeScale {
		t.Fatalf("time scale %f want %f", got.TimeScale, float64(MaxTimeScale))
	}
	if got.Drag != MinDrag {
		t.Fatalf("drag %f want %f", got.Drag, float64(MinDrag))
	}
	if got.ColorMode != "spectrum" {
		t.Fatalf("empty color mode should default, got %q", got.ColorMode)
	}
}

func TestClampedKeepsValidValues(t *testing.T) {
	s := Defaults()
	if s != s.Clamped() {
		t.Fatalf("defaults must survive clamping unchanged: %+v vs %+v", s, s.Clamped())
	}
	if s.ParticleCount > MaxParticleCount {
		t.Fatalf("default count above hard limit")
	}
}

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")

	want := Defaults()
	want.ParticleCount = 1200
	want.ColorMode = "ember"
	want.Seed = 77

	if err := SaveFile(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
}

func TestLoadFileClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	data := []byte("particle_count: 99999\ndrag: 2.0\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ParticleCount != MaxParticleCount {
		t.Fatalf("count %d want %d", got.ParticleCount, MaxParticleCount)
	}
	if got.Drag != MaxDrag {
		t.Fatalf("drag %f want %f", got.Drag, float64(MaxDrag))
	}
	// Unspecified fields keep defaults.
	if got.FieldStrength != Defaults().FieldStrength {
		t.Fatalf("field strength %f want default", got.FieldStrength)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing preset")
	}
}
