package noise

import "math"

// Field is a seeded 3-D simplex gradient noise generator. It is immutable
// after construction, so two fields never interfere and the same seed always
// reproduces the same output.
type Field struct {
	perm [512]int
	grad [512][3]float64
}

// grad3 is the fixed set of edge-direction gradients used by simplex noise.
var grad3 = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

const (
	skew3   = 1.0 / 3.0
	unskew3 = 1.0 / 6.0

	// Inputs this large lose all lattice precision; treat them as silence
	// instead of risking an overflowing float-to-int conversion.
	maxCoord = 1e15
)

// New builds a Field from the given seed. The permutation table is shuffled
// with a bare linear-congruential stream rather than math/rand so identical
// seeds reproduce identical fields everywhere.
func New(seed int64) *Field {
	f := &Field{}

	p := make([]int, 256)
	for i := range p {
		p[i] = i
	}

	state := uint64(seed)
	next := func() uint64 {
		state = state*6364136223846793005 + 1442695040888963407
		return state >> 16
	}
	for i := 255; i > 0; i-- {
		j := int(next() % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	for i := 0; i < 512; i++ {
		f.perm[i] = p[i&255]
		f.grad[i] = grad3[f.perm[i]%12]
	}
	return f
}

// Sample3D returns continuous gradient noise in roughly [-1, 1] for any
// finite input. Out-of-range or non-finite inputs yield 0.
func (f *Field) Sample3D(x, y, z float64) float64 {
	if !finite(x) || !finite(y) || !finite(z) {
		return 0
	}

	// Skew into simplex space to find the containing cell.
	s := (x + y + z) * skew3
	i := math.Floor(x + s)
	j := math.Floor(y + s)
	k := math.Floor(z + s)

	t := (i + j + k) * unskew3
	x0 := x - (i - t)
	y0 := y - (j - t)
	z0 := z - (k - t)

	// Coordinate ordering picks which of the six tetrahedra contains the point.
	var i1, j1, k1, i2, j2, k2 int
	if x0 >= y0 {
		switch {
		case y0 >= z0:
			i1, j1, k1 = 1, 0, 0
			i2, j2, k2 = 1, 1, 0
		case x0 >= z0:
			i1, j1, k1 = 1, 0, 0
			i2, j2, k2 = 1, 0, 1
		default:
			i1, j1, k1 = 0, 0, 1
			i2, j2, k2 = 1, 0, 1
		}
	} else {
		switch {
		case y0 < z0:
			i1, j1, k1 = 0, 0, 1
			i2, j2, k2 = 0, 1, 1
		case x0 < z0:
			i1, j1, k1 = 0, 1, 0
			i2, j2, k2 = 0, 1, 1
		default:
			i1, j1, k1 = 0, 1, 0
			i2, j2, k2 = 1, 1, 0
		}
	}

	x1 := x0 - float64(i1) + unskew3
	y1 := y0 - float64(j1) + unskew3
	z1 := z0 - float64(k1) + unskew3
	x2 := x0 - float64(i2) + 2*unskew3
	y2 := y0 - float64(j2) + 2*unskew3
	z2 := z0 - float64(k2) + 2*unskew3
	x3 := x0 - 1 + 3*unskew3
	y3 := y0 - 1 + 3*unskew3
	z3 := z0 - 1 + 3*unskew3

	ii := int(i) & 255
	jj := int(j) & 255
	kk := int(k) & 255

	total := f.corner(ii, jj, kk, x0, y0, z0)
	total += f.corner(ii+i1, jj+j1, kk+k1, x1, y1, z1)
	total += f.corner(ii+i2, jj+j2, kk+k2, x2, y2, z2)
	total += f.corner(ii+1, jj+1, kk+1, x3, y3, z3)

	out := 32.0 * total
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// corner computes one simplex corner contribution: radial falloff
// max(0, 0.6 - d^2)^4 dotted with the corner gradient.
func (f *Field) corner(gi, gj, gk int, x, y, z float64) float64 {
	t := 0.6 - x*x - y*y - z*z
	if t <= 0 {
		return 0
	}
	g := f.grad[gi+f.perm[gj+f.perm[gk]]]
	t *= t
	return t * t * (g[0]*x + g[1]*y + g[2]*z)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && math.Abs(v) < maxCoord
}
