package noise

import (
	"math"
	"math/rand"
	"testing"
)

func TestSameSeedIsBitStable(t *testing.T) {
	a := New(42)
	b := New(42)

	for x := -5.0; x < 5.0; x += 0.37 {
		for y := -5.0; y < 5.0; y += 0.41 {
			z := x*0.3 + y*0.7
			va := a.Sample3D(x, y, z)
			vb := b.Sample3D(x, y, z)
			if va != vb {
				t.Fatalf("seed 42 diverged at (%f,%f,%f): %v vs %v", x, y, z, va, vb)
			}
			if a.Sample3D(x, y, z) != va {
				t.Fatalf("repeated call not stable at (%f,%f,%f)", x, y, z)
			}
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	total := 0
	for x := 0.0; x < 10.0; x += 0.53 {
		for y := 0.0; y < 10.0; y += 0.59 {
			total++
			if a.Sample3D(x, y, 0.5) == b.Sample3D(x, y, 0.5) {
				same++
			}
		}
	}
	if same == total {
		t.Fatalf("seeds 1 and 2 produced identical fields over %d samples", total)
	}
}

func TestRangeBound(t *testing.T) {
	f := New(7)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50_000; i++ {
		x := (rng.Float64() - 0.5) * 2000
		y := (rng.Float64() - 0.5) * 2000
		z := rng.Float64() * 100
		v := f.Sample3D(x, y, z)
		if math.IsNaN(v) || v < -1.2 || v > 1.2 {
			t.Fatalf("sample out of range at (%f,%f,%f): %v", x, y, z, v)
		}
	}
}

func TestContinuityAcrossLattice(t *testing.T) {
	f := New(99)
	const step = 1e-5

	// Walk straight through integer lattice boundaries; neighbouring samples
	// must not jump.
	for x := 0.99995; x < 1.00005; x += step {
		a := f.Sample3D(x, 2.5, 0.1)
		b := f.Sample3D(x+step, 2.5, 0.1)
		if math.Abs(a-b) > 0.01 {
			t.Fatalf("discontinuity near lattice at x=%f: %v -> %v", x, a, b)
		}
	}
}

func TestExtremeInputsDegradeToZero(t *testing.T) {
	f := New(3)
	cases := []float64{1e16, -1e16, math.Inf(1), math.Inf(-1), math.NaN(), math.MaxFloat64}
	for _, v := range cases {
		if got := f.Sample3D(v, 0, 0); got != 0 {
			t.Fatalf("Sample3D(%v,0,0)=%v want 0", v, got)
		}
		if got := f.Sample3D(0, v, v); got != 0 {
			t.Fatalf("Sample3D(0,%v,%v)=%v want 0", v, v, got)
		}
	}
}

func BenchmarkSample3D(b *testing.B) {
	f := New(1)
	x := 0.0
	for i := 0; i < b.N; i++ {
		x += 0.01
		_ = f.Sample3D(x, x*0.5, 1.5)
	}
}
