package analyzer

import (
	"math"
	"testing"
)

func TestNextPow2(t *testing.T) {
	cases := map[int]int{
		0:   1,
		1:   1,
		2:   2,
		3:   4,
		5:   8,
		16:  16,
		31:  32,
		257: 512,
	}
	for input, want := range cases {
		if got := nextPow2(input); got != want {
			t.Fatalf("nextPow2(%d)=%d want=%d", input, got, want)
		}
	}
}

func TestSpectrumFrameLength(t *testing.T) {
	s := NewSpectrum(192)

	samples := make([]float32, 2048)
	frame := s.Frame(samples)
	if len(frame) != 192 {
		t.Fatalf("frame length %d want 192", len(frame))
	}
	for i, v := range frame {
		if v != 0 {
			t.Fatalf("silent input produced nonzero bin %d=%d", i, v)
		}
	}
}

func TestSpectrumEmptyInputReturnsNil(t *testing.T) {
	s := NewSpectrum(128)
	if frame := s.Frame(nil); frame != nil {
		t.Fatalf("expected nil frame for empty input, got %d bins", len(frame))
	}
}

func TestSpectrumLocatesTone(t *testing.T) {
	s := NewSpectrum(192)

	// 2048 samples of a tone at 1/8 of Nyquist should peak in the lower
	// quarter of the frame and leave the top of the frame near silent.
	samples := make([]float32, 2048)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * float64(i) / 16))
	}
	frame := s.Frame(samples)

	peak := 0
	for i, v := range frame {
		if v > frame[peak] {
			peak = i
		}
	}
	if peak > len(frame)/4 {
		t.Fatalf("tone at 1/8 Nyquist peaked at bin %d of %d", peak, len(frame))
	}
	if frame[peak] == 0 {
		t.Fatalf("tone produced an all-zero frame")
	}
	if top := frame[len(frame)-1]; top > frame[peak]/4 {
		t.Fatalf("top bin %d unexpectedly close to peak %d", top, frame[peak])
	}
}

func TestSpectrumInvalidBinsFallBack(t *testing.T) {
	for _, bins := range []int{0, -5, 4096} {
		s := NewSpectrum(bins)
		if s.Bins() != DefaultBins {
			t.Fatalf("NewSpectrum(%d).Bins()=%d want %d", bins, s.Bins(), DefaultBins)
		}
	}
}
