// Package flow derives a divergence-free 2-D flow field from scalar gradient
// noise. Particles advected by it swirl instead of collapsing into sinks.
package flow

import (
	"math"

	"github.com/riazmb01/Audio-Canvas/internal/noise"
)

// epsilon is the central-difference step in noise space.
const epsilon = 1e-4

// Sampler evaluates the curl (rotated gradient) of a noise potential.
type Sampler struct {
	field *noise.Field
}

// NewSampler wraps the given noise field.
func NewSampler(f *noise.Field) *Sampler {
	return &Sampler{field: f}
}

// At returns the flow vector for a point. The position is scaled into noise
// space before differencing, so callers can vary spatial frequency live. The
// result magnitude is capped near 1; callers apply their own force scaling.
func (s *Sampler) At(x, y, t, scale float64) (float64, float64) {
	sx := x * scale
	sy := y * scale

	dy := (s.field.Sample3D(sx, sy+epsilon, t) - s.field.Sample3D(sx, sy-epsilon, t)) / (2 * epsilon)
	dx := (s.field.Sample3D(sx+epsilon, sy, t) - s.field.Sample3D(sx-epsilon, sy, t)) / (2 * epsilon)

	// Rotating the gradient 90 degrees yields a divergence-free field.
	vx := dy
	vy := -dx

	mag := math.Hypot(vx, vy)
	if mag < 1e-12 || math.IsNaN(mag) {
		return 0, 0
	}
	if mag < 1 {
		mag = 1
	}
	return vx / mag, vy / mag
}
