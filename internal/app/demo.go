package app

import (
	"math"
	"math/rand"
	"time"
)

// demoGenerator synthesizes a plausible spectrum frame when no audio input is
// available. The simulator consumes it through the same features contract as
// live capture; nothing downstream knows the difference.
type demoGenerator struct {
	rng       *rand.Rand
	frame     []byte
	phaseBass float64
	phaseMid  float64
	phaseHigh float64
	beatClock float64
}

func newDemoGenerator(bins int) *demoGenerator {
	return &demoGenerator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		frame: make([]byte, bins),
	}
}

// Next produces the synthetic frame for this tick. A slow bass pulse sweeps
// the low bins, mids and highs wander independently, and every ~2 seconds a
// sharp bass hit lands so beat detection has something to find.
func (d *demoGenerator) Next(delta float64) []byte {
	d.phaseBass += delta * 0.9
	d.phaseMid += delta * 1.4
	d.phaseHigh += delta * 2.3
	d.beatClock += delta

	bass := 0.45 + 0.35*math.Sin(d.phaseBass)
	mid := 0.35 + 0.3*math.Sin(d.phaseMid+0.7)
	high := 0.25 + 0.25*math.Sin(d.phaseHigh+1.3)

	if d.beatClock > 2.0 {
		d.beatClock = 0
		bass = 1.0
	}

	n := len(d.frame)
	for i := range d.frame {
		frac := float64(i) / float64(n)
		var level float64
		switch {
		case frac < 0.12:
			level = bass
		case frac < 0.5:
			level = mid * (1.2 - frac)
		default:
			level = high * (1.3 - frac)
		}
		level += d.rng.Float64() * 0.08
		if level < 0 {
			level = 0
		}
		if level > 1 {
			level = 1
		}
		d.frame[i] = byte(level * 255)
	}
	return d.frame
}
