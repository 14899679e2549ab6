package analyzer

import (
	"math"
	"testing"
)

func frameOf(n int, fill func(i int) byte) []byte {
	f := make([]byte, n)
	for i := range f {
		f[i] = fill(i)
	}
	return f
}

func TestZeroFramesConvergeToSilence(t *testing.T) {
	e := NewExtractor(Config{})

	// Prime with loud material first.
	loud := frameOf(192, func(int) byte { return 200 })
	e.Update(loud)

	zeros := frameOf(192, func(int) byte { return 0 })
	var feat Features
	for i := 0; i < 100; i++ {
		feat = e.Update(zeros)
		if feat.Beat {
			t.Fatalf("beat fired on silent frame %d", i)
		}
	}
	if feat.Energy > 0.001 {
		t.Fatalf("energy did not converge to 0: %f", feat.Energy)
	}
	if feat.Bass > 0.001 || feat.Mid > 0.001 || feat.Treble > 0.001 {
		t.Fatalf("bands did not converge: %+v", feat)
	}
}

func TestSingleBassSpikeEmitsOneBeat(t *testing.T) {
	e := NewExtractor(Config{BeatThreshold: 25})

	spike := frameOf(192, func(i int) byte {
		if i < 23 { // bass region under the 12% split
			return 255
		}
		return 0
	})
	zeros := frameOf(192, func(int) byte { return 0 })

	beats := 0
	if e.Update(spike).Beat {
		beats++
	}
	for i := 0; i < 50; i++ {
		if e.Update(zeros).Beat {
			beats++
		}
	}
	if beats != 1 {
		t.Fatalf("want exactly 1 beat, got %d", beats)
	}
}

func TestBeatCooldownLimitsRate(t *testing.T) {
	const cooldown = 8
	e := NewExtractor(Config{BeatThreshold: 25, CooldownFrames: cooldown})

	loud := frameOf(192, func(int) byte { return 255 })
	quiet := frameOf(192, func(int) byte { return 0 })

	// Alternating silence and full-scale bass jumps above threshold every
	// other frame; the cooldown must keep beats at most one per window.
	lastBeat := -1
	beats := 0
	for i := 0; i < 200; i++ {
		var feat Features
		if i%2 == 0 {
			feat = e.Update(quiet)
		} else {
			feat = e.Update(loud)
		}
		if feat.Beat {
			if lastBeat >= 0 && i-lastBeat <= cooldown {
				t.Fatalf("beats at frames %d and %d violate cooldown %d", lastBeat, i, cooldown)
			}
			lastBeat = i
			beats++
		}
	}
	if beats == 0 {
		t.Fatalf("expected at least one beat from repeated transients")
	}
}

func TestEmptyFrameKeepsPreviousState(t *testing.T) {
	e := NewExtractor(Config{})

	loud := frameOf(192, func(int) byte { return 180 })
	before := e.Update(loud)
	after := e.Update(nil)

	if after.Beat {
		t.Fatalf("empty frame must not emit a beat")
	}
	if after.Energy != before.Energy || after.Bass != before.Bass {
		t.Fatalf("empty frame changed smoothed state: %+v vs %+v", before, after)
	}
}

func TestPeakFractionTracksStrongestBin(t *testing.T) {
	e := NewExtractor(Config{})

	f := frameOf(100, func(i int) byte {
		if i == 99 {
			return 255
		}
		return 10
	})
	feat := e.Update(f)
	if feat.PeakFraction != 1.0 {
		t.Fatalf("peak at top bin should give fraction 1, got %f", feat.PeakFraction)
	}

	f[99] = 10
	f[0] = 255
	feat = e.Update(f)
	if feat.PeakFraction != 0.0 {
		t.Fatalf("peak at bin 0 should give fraction 0, got %f", feat.PeakFraction)
	}
}

func TestSanitizedDropsNaN(t *testing.T) {
	f := Features{
		Bass:         math.NaN(),
		Mid:          math.Inf(1),
		Treble:       -0.5,
		Energy:       1.5,
		PeakFraction: 0.25,
		BeatCooldown: -3,
	}
	got := f.Sanitized()
	if got.Bass != 0 || got.Mid != 0 || got.Treble != 0 {
		t.Fatalf("non-finite or negative values not zeroed: %+v", got)
	}
	if got.Energy != 1 {
		t.Fatalf("energy not clamped: %f", got.Energy)
	}
	if got.PeakFraction != 0.25 {
		t.Fatalf("valid field mutated: %f", got.PeakFraction)
	}
	if got.BeatCooldown != 0 {
		t.Fatalf("negative cooldown not cleared: %d", got.BeatCooldown)
	}
}

func TestSplitIndexKeepsBandsNonEmpty(t *testing.T) {
	cases := []struct {
		n, min, want int
		frac         float64
	}{
		{192, 1, 23, 0.12},
		{256, 1, 30, 0.12},
		{3, 1, 1, 0.12},
		{3, 2, 2, 0.5},
		{4, 1, 1, 0.12},
	}
	for _, c := range cases {
		if got := splitIndex(c.n, c.frac, c.min); got != c.want {
			t.Fatalf("splitIndex(%d, %.2f, %d)=%d want %d", c.n, c.frac, c.min, got, c.want)
		}
	}
}
