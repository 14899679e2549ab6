package analyzer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Config controls Extractor behavior. The band split fractions and smoothing
// factor are feel parameters, not physical constants; defaults match the
// values the visuals were tuned against.
type Config struct {
	// Alpha is the exponential smoothing factor, roughly 0.1-0.3.
	// Higher is more responsive and more jittery.
	Alpha float64
	// BassSplit and MidSplit are the fractional upper bounds of the bass and
	// mid bands. Treble covers the remainder of the frame.
	BassSplit float64
	MidSplit  float64
	// BeatThreshold is the raw bass jump (0-255 scale) that counts as a
	// transient, divided by Sensitivity before comparison.
	BeatThreshold float64
	Sensitivity   float64
	// CooldownFrames is the minimum gap between beats.
	CooldownFrames int
	// HistorySize bounds the smoothed-energy history used for the
	// responsiveness multiplier.
	HistorySize int
}

func (c Config) withDefaults() Config {
	if c.Alpha <= 0 || c.Alpha > 1 {
		c.Alpha = 0.2
	}
	if c.BassSplit <= 0 || c.BassSplit >= 1 {
		c.BassSplit = 0.12
	}
	if c.MidSplit <= c.BassSplit || c.MidSplit >= 1 {
		c.MidSplit = 0.5
	}
	if c.BeatThreshold <= 0 {
		c.BeatThreshold = 25
	}
	if c.Sensitivity <= 0 {
		c.Sensitivity = 1
	}
	if c.CooldownFrames <= 0 {
		c.CooldownFrames = 9
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 60
	}
	return c
}

// Extractor turns raw frequency-magnitude frames into smoothed band energies
// and discrete beat events. It owns the smoothed state exclusively; callers
// receive value snapshots.
type Extractor struct {
	cfg Config

	feat        Features
	prevRawBass float64
	cooldown    int

	scratch    []float64
	energyHist []float64
}

// NewExtractor creates an Extractor. Zero config fields fall back to defaults.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// SetSensitivity adjusts the beat threshold divisor live.
func (e *Extractor) SetSensitivity(s float64) {
	if s > 0 {
		e.cfg.Sensitivity = s
	}
}

// Update consumes one spectrum frame and returns the smoothed features for
// this animation frame. A zero-length frame returns the previous smoothed
// state unchanged, with no beat.
func (e *Extractor) Update(frame []byte) Features {
	if len(frame) == 0 {
		if e.cooldown > 0 {
			e.cooldown--
		}
		e.feat.Beat = false
		e.feat.BeatCooldown = e.cooldown
		return e.feat
	}

	e.ensureScratch(len(frame))
	for i, v := range frame {
		e.scratch[i] = float64(v)
	}

	n := len(frame)
	rawOverall := stat.Mean(e.scratch, nil)
	rawBass, rawMid, rawTreble := rawOverall, rawOverall, rawOverall
	if n >= 3 {
		bassHi := splitIndex(n, e.cfg.BassSplit, 1)
		midHi := splitIndex(n, e.cfg.MidSplit, bassHi+1)
		rawBass = stat.Mean(e.scratch[:bassHi], nil)
		rawMid = stat.Mean(e.scratch[bassHi:midHi], nil)
		rawTreble = stat.Mean(e.scratch[midHi:], nil)
	}

	alpha := e.cfg.Alpha
	e.feat.Bass += (rawBass/255 - e.feat.Bass) * alpha
	e.feat.Mid += (rawMid/255 - e.feat.Mid) * alpha
	e.feat.Treble += (rawTreble/255 - e.feat.Treble) * alpha
	e.feat.Energy += (rawOverall/255 - e.feat.Energy) * alpha

	peakIdx := floats.MaxIdx(e.scratch)
	if n > 1 {
		e.feat.PeakFraction = float64(peakIdx) / float64(n-1)
	} else {
		e.feat.PeakFraction = 0
	}

	e.pushEnergy(e.feat.Energy)

	// The detector watches the raw signal, not the smoothed one: smoothing
	// lags exactly the transients we want to catch.
	threshold := e.cfg.BeatThreshold / e.cfg.Sensitivity
	if e.cooldown == 0 && rawBass-e.prevRawBass > threshold {
		e.feat.Beat = true
		e.cooldown = e.cfg.CooldownFrames
	} else {
		e.feat.Beat = false
		if e.cooldown > 0 {
			e.cooldown--
		}
	}
	e.prevRawBass = rawBass
	e.feat.BeatCooldown = e.cooldown

	return e.feat
}

// Variability reports how uneven the recent smoothed energy has been, in
// [0,1]. Hosts use it to widen color response on busy material.
func (e *Extractor) Variability() float64 {
	if len(e.energyHist) < 10 {
		return 0
	}
	v := stat.PopVariance(e.energyHist, nil)
	return saneUnit(v * 40)
}

func (e *Extractor) ensureScratch(n int) {
	if cap(e.scratch) < n {
		e.scratch = make([]float64, n)
	}
	e.scratch = e.scratch[:n]
}

func (e *Extractor) pushEnergy(v float64) {
	e.energyHist = append(e.energyHist, v)
	if len(e.energyHist) > e.cfg.HistorySize {
		copy(e.energyHist, e.energyHist[1:])
		e.energyHist = e.energyHist[:len(e.energyHist)-1]
	}
}

// splitIndex converts a fractional boundary into a bin index, guaranteed at
// least min and strictly below n so every band keeps a nonzero divisor.
func splitIndex(n int, frac float64, min int) int {
	idx := int(float64(n) * frac)
	if idx < min {
		idx = min
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
