package analyzer

import "math"

// Features is the smoothed per-frame view of the spectrum handed to the
// particle simulator. All energy values live in [0,1].
type Features struct {
	Bass   float64 `json:"bass"`
	Mid    float64 `json:"mid"`
	Treble float64 `json:"treble"`
	Energy float64 `json:"energy"`

	// Beat is true for exactly the frame a bass transient fired.
	Beat bool `json:"beat"`
	// BeatCooldown counts frames until the next beat may fire.
	BeatCooldown int `json:"beatCooldown"`

	// PeakFraction is the position of the strongest bin within the frame,
	// 0 at DC and 1 at the top bin. Drives respawn hue.
	PeakFraction float64 `json:"peakFraction"`
}

// Sanitized replaces NaN or infinite fields with zero and clamps energies to
// [0,1] so malformed input never reaches the simulation hot loop.
func (f Features) Sanitized() Features {
	f.Bass = saneUnit(f.Bass)
	f.Mid = saneUnit(f.Mid)
	f.Treble = saneUnit(f.Treble)
	f.Energy = saneUnit(f.Energy)
	f.PeakFraction = saneUnit(f.PeakFraction)
	if f.BeatCooldown < 0 {
		f.BeatCooldown = 0
	}
	return f
}

func saneUnit(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
