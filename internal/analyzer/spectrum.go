package analyzer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// DefaultBins is the spectrum frame length handed to the Extractor.
const DefaultBins = 192

// gain lifts typical music material toward full scale before the byte clamp.
const gain = 6.0

// Spectrum converts captured time-domain samples into the fixed-length
// 0-255 magnitude frame the feature extractor consumes.
type Spectrum struct {
	bins int

	buffer []complex128
	window []float64
	frame  []byte
}

// NewSpectrum creates a Spectrum producing frames of the given bin count.
// Counts outside 32-1024 fall back to DefaultBins.
func NewSpectrum(bins int) *Spectrum {
	if bins < 32 || bins > 1024 {
		bins = DefaultBins
	}
	return &Spectrum{bins: bins}
}

// Bins returns the frame length.
func (s *Spectrum) Bins() int { return s.bins }

// Frame windows and transforms the samples, then folds the magnitude
// spectrum into the configured bin count scaled to 0-255. The returned slice
// is reused across calls. Nil is returned for empty input so the extractor
// falls back to its previous state.
func (s *Spectrum) Frame(samples []float32) []byte {
	if len(samples) == 0 {
		return nil
	}

	size := nextPow2(minInt(len(samples), 2048))
	if size < 256 {
		size = 256
	}
	s.ensureWorkspace(size)

	buffer := s.buffer[:size]
	window := s.window[:size]
	for i := 0; i < size; i++ {
		if i < len(samples) {
			buffer[i] = complex(float64(samples[i])*window[i], 0)
			continue
		}
		buffer[i] = 0
	}

	res := fft.FFT(buffer)

	half := size / 2
	norm := gain * 4.0 / float64(size)
	perBin := float64(half) / float64(s.bins)
	for b := 0; b < s.bins; b++ {
		lo := int(float64(b) * perBin)
		hi := int(float64(b+1) * perBin)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > half {
			hi = half
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += cmag(res[i])
		}
		mag := sum / float64(hi-lo) * norm
		if mag > 1 {
			mag = 1
		}
		s.frame[b] = byte(mag * 255)
	}

	return s.frame
}

func (s *Spectrum) ensureWorkspace(size int) {
	if len(s.buffer) != size {
		s.buffer = make([]complex128, size)
	}
	if len(s.window) != size {
		s.window = make([]float64, size)
		sizeF := float64(size)
		for i := range s.window {
			s.window[i] = hann(float64(i), sizeF)
		}
	}
	if len(s.frame) != s.bins {
		s.frame = make([]byte, s.bins)
	}
}

func hann(i, size float64) float64 {
	return 0.5 * (1.0 - math.Cos(2.0*math.Pi*i/size))
}

func cmag(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}

func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
