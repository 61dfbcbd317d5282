package particles

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EmitParticle spawns one particle at the system position.
//
// It returns false, without any effect, when every slot is taken. That is a
// normal steady-state outcome under high emission rates, not an error.
func (s *System) EmitParticle() bool {
	if s.count >= len(s.particles) {
		return false
	}

	rng := s.rng
	p := &s.particles[s.count]

	lifetime := randomVariance(rng, s.Lifetime, s.LifetimeVariance)
	if lifetime < 0 {
		lifetime = 0
	}

	scale := mgl32.Vec3{
		randomVariance(rng, s.InitialScale[0], s.ScaleVariance),
		randomVariance(rng, s.InitialScale[1], s.ScaleVariance),
		randomVariance(rng, s.InitialScale[2], s.ScaleVariance),
	}
	rotation := randomVec3(rng, s.InitialRotation, s.RotationVariance)
	col := randomColor(rng, s.InitialColor, s.ColorVariance)
	velocity := randomVec3(rng, s.InitialVelocity, s.VelocityVariance)
	velocity = spreadVelocity(rng, velocity, s.SpreadAngle)
	angularVelocity := randomVec3(rng, s.InitialAngularVelocity, s.AngularVelocityVariance)

	*p = Particle{
		RemainingLifetime: lifetime,
		Lifetime:          lifetime,
		Position:          s.Position,
		Rotation:          rotation,
		Scale:             scale,
		Color:             col,
		Velocity:          velocity,
		AngularVelocity:   angularVelocity,

		BaseScale:           scale,
		BaseVelocity:        velocity,
		BaseAngularVelocity: angularVelocity,
		BaseOpacity:         col.A,
	}
	p.Transform = composeTransform(p.Position, p.Rotation, p.Scale)

	s.count++
	return true
}

// composeTransform builds T * R * S, with R from XYZ Euler angles in degrees.
func composeTransform(position, rotationDeg, scale mgl32.Vec3) mgl32.Mat4 {
	rot := mgl32.AnglesToQuat(
		mgl32.DegToRad(rotationDeg[0]),
		mgl32.DegToRad(rotationDeg[1]),
		mgl32.DegToRad(rotationDeg[2]),
		mgl32.XYZ,
	)
	return mgl32.Translate3D(position[0], position[1], position[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}
