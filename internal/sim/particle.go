package sim

// Kind tags a particle with its life-cycle policy. Behavior differences live
// in the kindTraits table so the tick loop stays branch-predictable.
type Kind uint8

const (
	// Tracer particles chase the flow field aggressively and die young.
	Tracer Kind = iota
	// Drifter particles follow the field at a neutral rate.
	Drifter
	// Anchor particles are sluggish, long-lived, and pull the rest of the
	// population toward themselves.
	Anchor

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Tracer:
		return "tracer"
	case Drifter:
		return "drifter"
	case Anchor:
		return "anchor"
	default:
		return "unknown"
	}
}

type traits struct {
	forceMult   float64
	jitterMult  float64
	impulseMult float64
	sizeMin     float64
	sizeMax     float64
	lifeMin     uint32 // frames
	lifeMax     uint32
	weight      int // spawn weight out of weightTotal
}

var kindTraits = [kindCount]traits{
	Tracer:  {forceMult: 1.5, jitterMult: 1.4, impulseMult: 1.6, sizeMin: 0.8, sizeMax: 1.6, lifeMin: 120, lifeMax: 420, weight: 60},
	Drifter: {forceMult: 1.0, jitterMult: 1.0, impulseMult: 1.0, sizeMin: 1.2, sizeMax: 2.6, lifeMin: 240, lifeMax: 720, weight: 30},
	Anchor:  {forceMult: 0.35, jitterMult: 0.3, impulseMult: 0.5, sizeMin: 2.4, sizeMax: 4.2, lifeMin: 480, lifeMax: 1200, weight: 10},
}

const weightTotal = 100

// Particle is one slot in the population. Slots are reused in place on
// respawn; a respawned slot is indistinguishable from a fresh one.
type Particle struct {
	X, Y         float32
	PrevX, PrevY float32
	VX, VY       float32
	Age          uint32
	Lifespan     uint32
	Size         float32
	Hue          float32 // degrees, 0-360
	Kind         Kind
}

// View is the renderer-facing record for one live particle. The backing
// slice is reused every tick; renderers must not retain it.
type View struct {
	X, Y         float32
	PrevX, PrevY float32
	Size         float32
	Hue          float32 // degrees, 0-360
	LifeRatio    float32 // 0 fresh, 1 about to expire
	Kind         Kind
}
