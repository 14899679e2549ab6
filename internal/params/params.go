// Package params holds the user-tunable simulation settings, their documented
// ranges, and YAML preset loading.
package params

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the live tunables exposed to the configuration surfaces
// (flags, keyboard, websocket). Values outside the documented ranges are
// clamped, never rejected.
type Settings struct {
	ParticleCount    int     `yaml:"particle_count" json:"particleCount"`
	FieldStrength    float64 `yaml:"field_strength" json:"fieldStrength"`
	NoiseScale       float64 `yaml:"noise_scale" json:"noiseScale"`
	TimeScale        float64 `yaml:"time_scale" json:"timeScale"`
	Drag             float64 `yaml:"drag" json:"drag"`
	ColorMode        string  `yaml:"color_mode" json:"colorMode"`
	ColorSensitivity float64 `yaml:"color_sensitivity" json:"colorSensitivity"`
	BeatSensitivity  float64 `yaml:"beat_sensitivity" json:"beatSensitivity"`
	Seed             int64   `yaml:"seed" json:"seed"`
}

// Documented tunable ranges. ParticleCount clamps to a floor of zero rather
// than the UI minimum so "render nothing" stays a valid state.
const (
	MaxParticleCount = 2000

	MinFieldStrength = 0.2
	MaxFieldStrength = 5.0

	MinNoiseScale = 0.0005
	MaxNoiseScale = 0.01

	MinTimeScale = 0.1
	MaxTimeScale = 2.0

	MinDrag = 0.9
	MaxDrag = 0.99

	MinSensitivity = 0.1
	MaxSensitivity = 4.0
)

// Defaults returns the settings the visuals were tuned against.
func Defaults() Settings {
	return Settings{
		ParticleCount:    800,
		FieldStrength:    1.6,
		NoiseScale:       0.003,
		TimeScale:        1.0,
		Drag:             0.96,
		ColorMode:        "spectrum",
		ColorSensitivity: 1.0,
		BeatSensitivity:  1.2,
		Seed:             1,
	}
}

// Clamped returns a copy with every field forced into its documented range.
func (s Settings) Clamped() Settings {
	if s.ParticleCount < 0 {
		s.ParticleCount = 0
	}
	if s.ParticleCount > MaxParticleCount {
		s.ParticleCount = MaxParticleCount
	}
	s.FieldStrength = clamp(s.FieldStrength, MinFieldStrength, MaxFieldStrength)
	s.NoiseScale = clamp(s.NoiseScale, MinNoiseScale, MaxNoiseScale)
	s.TimeScale = clamp(s.TimeScale, MinTimeScale, MaxTimeScale)
	s.Drag = clamp(s.Drag, MinDrag, MaxDrag)
	s.ColorSensitivity = clamp(s.ColorSensitivity, MinSensitivity, MaxSensitivity)
	s.BeatSensitivity = clamp(s.BeatSensitivity, MinSensitivity, MaxSensitivity)
	if s.ColorMode == "" {
		s.ColorMode = "spectrum"
	}
	return s
}

// LoadFile reads a YAML preset and applies it over the defaults. Missing
// fields keep their default values; out-of-range values are clamped.
func LoadFile(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return s.Clamped(), nil
}

// SaveFile writes the settings as a YAML preset.
func SaveFile(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
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
