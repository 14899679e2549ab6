// Package sim owns the flow-field particle population: spawning, audio-coupled
// forcing, integration, and the renderer-facing view.
package sim

import (
	"log"
	"math"
	"math/rand"

	"github.com/riazmb01/Audio-Canvas/internal/analyzer"
	"github.com/riazmb01/Audio-Canvas/internal/flow"
	"github.com/riazmb01/Audio-Canvas/internal/noise"
	"github.com/riazmb01/Audio-Canvas/internal/params"
)

// Feel constants. Proportions, not physics.
const (
	baseClockRate  = 0.4 // field evolution per second at silence
	bassClockBoost = 1.2 // extra evolution at full bass

	forceScale      = 0.14 // curl force to px/frame^2
	fieldBassFloor  = 0.6
	fieldBassBoost  = 1.8
	scaleMidFloor   = 0.7
	scaleMidBoost   = 0.9
	jitterScale     = 0.8
	jitterThreshold = 0.05
	beatImpulse     = 2.5 // px/frame per unit bass

	maxSpeed = 9.0 // hard velocity cap, px/frame

	maxAnchors    = 16
	anchorPull    = 0.02  // px/frame^2 at zero distance
	anchorFalloff = 140.0 // px, exponential decay length
)

// Simulator advances the particle population once per animation frame. It
// exclusively owns its noise field, curl sampler, random stream, and storage;
// nothing here is safe for concurrent use.
type Simulator struct {
	width  float64
	height float64

	cfg  params.Settings
	next params.Settings

	field *noise.Field
	curl  *flow.Sampler
	rng   *rand.Rand
	log   *log.Logger

	clock     float64
	particles []Particle
	views     []View

	// anchor scratch, recollected every tick; never holds references across
	// ticks so a respawned anchor cannot dangle.
	anchorX [maxAnchors]float64
	anchorY [maxAnchors]float64
}

// New creates a simulator over a width x height toroidal region. The seed in
// cfg fixes the noise field and spawn stream for the simulator's lifetime;
// create a new simulator to reseed or resize.
func New(width, height float64, cfg params.Settings, logger *log.Logger) *Simulator {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	cfg = cfg.Clamped()
	s := &Simulator{
		width:  width,
		height: height,
		cfg:    cfg,
		next:   cfg,
		field:  noise.New(cfg.Seed),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    logger,
	}
	s.curl = flow.NewSampler(s.field)
	return s
}

// Bounds returns the simulation region.
func (s *Simulator) Bounds() (w, h float64) { return s.width, s.height }

// Settings returns the tunables in effect for the next tick.
func (s *Simulator) Settings() params.Settings { return s.next }

// Configure replaces the tunables, clamped to their documented ranges. It
// takes effect on the next tick and is idempotent: repeated identical calls
// do not perturb the trajectory. Seed changes are ignored here; the host
// rebuilds the simulator to reseed.
func (s *Simulator) Configure(cfg params.Settings) {
	cfg.Seed = s.cfg.Seed
	s.next = cfg.Clamped()
}

// Tick advances the simulation by one frame and returns the render view.
// The view slice is reused across ticks. Call order per frame is
// Extractor.Update first, then Tick with that frame's features.
func (s *Simulator) Tick(dtMillis float64, feat analyzer.Features) []View {
	if math.IsNaN(dtMillis) || math.IsInf(dtMillis, 0) || dtMillis <= 0 {
		dtMillis = 1000.0 / 60.0
	}
	feat = feat.Sanitized()
	s.cfg = s.next

	s.resize(s.cfg.ParticleCount)
	if len(s.particles) != s.cfg.ParticleCount {
		// Should be unreachable; continuing risks unbounded growth.
		if s.log != nil {
			s.log.Printf("population %d diverged from target %d, resetting simulator",
				len(s.particles), s.cfg.ParticleCount)
		}
		s.reset()
	}

	s.clock += dtMillis * s.cfg.TimeScale * 0.001 * (baseClockRate + feat.Bass*bassClockBoost)

	fieldEff := s.cfg.FieldStrength * (fieldBassFloor + feat.Bass*fieldBassBoost) * forceScale
	scaleEff := s.cfg.NoiseScale * (scaleMidFloor + feat.Mid*scaleMidBoost)
	jitter := feat.Treble * jitterScale
	drag := float32(s.cfg.Drag)

	anchors := s.collectAnchors()

	s.views = s.views[:0]
	for i := range s.particles {
		p := &s.particles[i]
		tr := &kindTraits[p.Kind]

		vx, vy := s.curl.At(float64(p.X), float64(p.Y), s.clock, scaleEff)
		p.VX += float32(vx * fieldEff * tr.forceMult)
		p.VY += float32(vy * fieldEff * tr.forceMult)

		if jitter > jitterThreshold {
			amp := jitter * tr.jitterMult
			p.VX += float32((s.rng.Float64()*2 - 1) * amp)
			p.VY += float32((s.rng.Float64()*2 - 1) * amp)
		}

		if feat.Beat {
			kick := feat.Bass * beatImpulse * tr.impulseMult
			ang := s.rng.Float64() * 2 * math.Pi
			p.VX += float32(math.Cos(ang) * kick)
			p.VY += float32(math.Sin(ang) * kick)
		}

		s.applyAnchorPull(p, anchors)

		p.VX *= drag
		p.VY *= drag
		s.capSpeed(p)

		p.PrevX, p.PrevY = p.X, p.Y
		p.X += p.VX
		p.Y += p.VY
		s.wrap(p)
		p.Age++

		if p.Age > p.Lifespan {
			s.respawn(p, feat)
		}

		life := float32(0)
		if p.Lifespan > 0 {
			life = float32(p.Age) / float32(p.Lifespan)
		}
		s.views = append(s.views, View{
			X: p.X, Y: p.Y,
			PrevX: p.PrevX, PrevY: p.PrevY,
			Size:      p.Size,
			Hue:       p.Hue,
			LifeRatio: life,
			Kind:      p.Kind,
		})
	}
	return s.views
}

// resize restores len(particles) == target in O(|delta|).
func (s *Simulator) resize(target int) {
	switch {
	case len(s.particles) > target:
		s.particles = s.particles[:target]
	case len(s.particles) < target:
		for len(s.particles) < target {
			var p Particle
			s.spawn(&p, 0)
			s.particles = append(s.particles, p)
		}
	}
	if cap(s.views) < target {
		s.views = make([]View, 0, target)
	}
}

// reset rebuilds the population from scratch. Only the invariant-breach path
// uses it.
func (s *Simulator) reset() {
	s.clock = 0
	s.particles = s.particles[:0]
	s.resize(s.cfg.ParticleCount)
}

// spawn initializes a slot as a brand-new particle.
func (s *Simulator) spawn(p *Particle, hue float32) {
	kind := s.pickKind()
	tr := &kindTraits[kind]

	p.X = float32(s.rng.Float64() * s.width)
	p.Y = float32(s.rng.Float64() * s.height)
	p.PrevX, p.PrevY = p.X, p.Y
	p.VX, p.VY = 0, 0
	p.Age = 0
	p.Lifespan = tr.lifeMin + uint32(s.rng.Int63n(int64(tr.lifeMax-tr.lifeMin+1)))
	p.Size = float32(tr.sizeMin + s.rng.Float64()*(tr.sizeMax-tr.sizeMin))
	p.Hue = hue
	p.Kind = kind
}

// respawn reuses an expired slot in place, coloring it from the current
// spectral peak.
func (s *Simulator) respawn(p *Particle, feat analyzer.Features) {
	s.spawn(p, float32(feat.PeakFraction*360))
}

func (s *Simulator) pickKind() Kind {
	roll := int(s.rng.Int63n(weightTotal))
	for k := Tracer; k < kindCount; k++ {
		roll -= kindTraits[k].weight
		if roll < 0 {
			return k
		}
	}
	return Drifter
}

// collectAnchors snapshots up to maxAnchors anchor positions for this tick.
func (s *Simulator) collectAnchors() int {
	n := 0
	for i := range s.particles {
		if s.particles[i].Kind != Anchor {
			continue
		}
		s.anchorX[n] = float64(s.particles[i].X)
		s.anchorY[n] = float64(s.particles[i].Y)
		n++
		if n == maxAnchors {
			break
		}
	}
	return n
}

// applyAnchorPull adds exponential-falloff attraction toward each collected
// anchor. Bounded O(anchors) per particle.
func (s *Simulator) applyAnchorPull(p *Particle, anchors int) {
	for a := 0; a < anchors; a++ {
		dx := s.anchorX[a] - float64(p.X)
		dy := s.anchorY[a] - float64(p.Y)
		dist := math.Hypot(dx, dy)
		if dist < 1e-6 {
			continue // the anchor itself, or a coincident particle
		}
		mag := anchorPull * math.Exp(-dist/anchorFalloff) / dist
		p.VX += float32(dx * mag)
		p.VY += float32(dy * mag)
	}
}

func (s *Simulator) capSpeed(p *Particle) {
	speed := math.Hypot(float64(p.VX), float64(p.VY))
	if speed > maxSpeed {
		f := float32(maxSpeed / speed)
		p.VX *= f
		p.VY *= f
	}
}

// wrap re-enters the opposite edge, never clamps or bounces. The trail
// anchor resets on wrap so renderers do not draw a screen-spanning stroke.
func (s *Simulator) wrap(p *Particle) {
	w := float32(s.width)
	h := float32(s.height)
	wrapped := false
	for p.X < 0 {
		p.X += w
		wrapped = true
	}
	for p.X >= w {
		p.X -= w
		wrapped = true
	}
	for p.Y < 0 {
		p.Y += h
		wrapped = true
	}
	for p.Y >= h {
		p.Y -= h
		wrapped = true
	}
	if wrapped {
		p.PrevX, p.PrevY = p.X, p.Y
	}
}
