// Package particles implements a CPU particle pool and simulator.
//
// A System owns a fixed number of particle slots. Particles are spawned with
// randomized properties (base ± variance), integrated every frame under
// gravity, and modulated over their lifetime by optional interpolation
// curves. The renderer reads the alive particles once per frame through Draw.
//
// The simulator is single threaded: Update and any read of particle state must
// happen on the same goroutine, with Update completing before the reads of the
// frame. Systems hold no locks.
package particles

import (
	"image/color"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/curve"
)

// Default emission settings applied by New.
const (
	DefaultLifetime     float32 = 1.0
	DefaultEmissionRate float32 = 10.0
)

// DefaultGravity is the acceleration applied to particles of a new system.
var DefaultGravity = mgl32.Vec3{0, -9.81, 0}

// Particle is one slot of the pool.
//
// The Base* fields are the values sampled at spawn time. Lifetime curves
// always scale these, never the system defaults, so each particle keeps its
// own randomized character while the curve shapes it over time.
type Particle struct {
	RemainingLifetime float32 // Seconds left before removal
	Lifetime          float32 // Total randomized lifetime in seconds

	Transform mgl32.Mat4 // Model matrix built from Position, Rotation and Scale
	Position  mgl32.Vec3
	Rotation  mgl32.Vec3 // Euler angles in degrees
	Scale     mgl32.Vec3
	Color     color.RGBA // Alpha carries the opacity curve result

	Velocity        mgl32.Vec3 // Units per second
	AngularVelocity mgl32.Vec3 // Degrees per second

	BaseScale           mgl32.Vec3
	BaseVelocity        mgl32.Vec3
	BaseAngularVelocity mgl32.Vec3
	BaseOpacity         uint8
}

// LifeFraction returns the particle age normalized to its own lifetime, in [0, 1].
func (p *Particle) LifeFraction() float32 {
	if p.Lifetime <= 0 {
		return 1
	}
	t := 1 - p.RemainingLifetime/p.Lifetime
	return clamp01(t)
}

// Age returns the seconds elapsed since the particle spawned.
func (p *Particle) Age() float32 {
	return p.Lifetime - p.RemainingLifetime
}

// System is a fixed-capacity particle emitter.
//
// Configuration fields may be changed between frames. The four curve fields
// are borrowed: the system never copies, mutates or destroys them, and the
// caller must keep every attached curve alive until the system is no longer
// updated or drawn. A nil curve means no modulation.
type System struct {
	// Emitter placement and physics
	Position mgl32.Vec3 // Spawn position of new particles
	Gravity  mgl32.Vec3 // Acceleration in units/s²

	// Spawn values (基础值 ± 方差，均匀分布)
	InitialScale            mgl32.Vec3
	ScaleVariance           float32 // Applied independently to each axis
	InitialRotation         mgl32.Vec3
	RotationVariance        mgl32.Vec3
	InitialColor            color.RGBA
	ColorVariance           color.RGBA // Per channel, alpha included
	InitialVelocity         mgl32.Vec3
	VelocityVariance        mgl32.Vec3
	InitialAngularVelocity  mgl32.Vec3
	AngularVelocityVariance mgl32.Vec3

	Lifetime         float32 // Seconds
	LifetimeVariance float32

	// Emission
	EmissionRate float32 // Particles per second for automatic emission
	// SpreadAngle is the half-angle in degrees of the cone around each
	// particle's sampled velocity (after VelocityVariance), so the deviation
	// from InitialVelocity can reach the variance tilt plus the spread.
	SpreadAngle  float32
	AutoEmission bool // Emit from Update; when false only EmitParticle spawns

	// Lifetime curves (借用引用，不持有所有权)
	ScaleOverLifetime           *curve.InterpolationCurve
	SpeedOverLifetime           *curve.InterpolationCurve
	OpacityOverLifetime         *curve.InterpolationCurve
	AngularVelocityOverLifetime *curve.InterpolationCurve

	// Aabb is used for culling. It starts as DefaultBounds; call
	// CalculateBoundingBox once the system is configured.
	Aabb BoundingBox

	particles []Particle // len = capacity, [0:count] alive
	count     int

	emissionTimer float32 // seconds accumulated toward the next automatic emission

	rng *rand.Rand
}

// Option configures a System at creation.
type Option func(*System)

// WithRand routes all spawn randomization through rng.
func WithRand(rng *rand.Rand) Option {
	return func(s *System) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSeed seeds a private generator, making emission reproducible.
func WithSeed(seed int64) Option {
	return func(s *System) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a system with room for capacity particles and the default
// settings: gravity (0, -9.81, 0), scale (1, 1, 1), white color, lifetime 1s,
// 10 particles per second, automatic emission, no variance.
func New(capacity int, opts ...Option) *System {
	if capacity < 0 {
		capacity = 0
	}
	s := &System{
		Gravity:      DefaultGravity,
		InitialScale: mgl32.Vec3{1, 1, 1},
		InitialColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Lifetime:     DefaultLifetime,
		EmissionRate: DefaultEmissionRate,
		AutoEmission: true,
		Aabb:         DefaultBounds,
		particles:    make([]Particle, capacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Capacity returns the number of particle slots.
func (s *System) Capacity() int {
	return len(s.particles)
}

// Count returns the number of alive particles.
func (s *System) Count() int {
	return s.count
}

// Alive returns the alive particles. The slice aliases the pool: it is only
// valid until the next Update, EmitParticle or Destroy, and must not be
// modified. Order is unspecified.
func (s *System) Alive() []Particle {
	return s.particles[:s.count]
}

// EmissionTimer returns the accumulated emission time in seconds that has not
// yet been turned into particles.
func (s *System) EmissionTimer() float32 {
	return s.emissionTimer
}

// Clear removes every alive particle and resets the emission timer.
func (s *System) Clear() {
	s.count = 0
	s.emissionTimer = 0
}

// Destroy releases the particle pool. Attached curves are not touched.
// The system must not be updated or drawn afterwards.
func (s *System) Destroy() {
	s.particles = nil
	s.count = 0
	s.emissionTimer = 0
}
