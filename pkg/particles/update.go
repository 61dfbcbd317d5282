package particles

// emissionEpsilon absorbs float32 rounding when the accumulated time lands a
// hair below a whole emission interval (e.g. twenty steps of 0.05s at 10/s).
const emissionEpsilon = 1e-4

// Update advances the system by dt seconds.
//
// It runs automatic emission first, then ages every particle, removes the
// expired ones (swap with the last alive slot, so order is not preserved),
// and finally integrates and re-shapes the survivors.
func (s *System) Update(dt float32) {
	s.updateEmission(dt)
	s.updateLifetimes(dt)
	s.updateParticles(dt)
}

// updateEmission emits one particle per whole interval of accumulated time.
// When the pool is full the time keeps accumulating and is paid out as a
// burst once slots free up.
func (s *System) updateEmission(dt float32) {
	if !s.AutoEmission || s.EmissionRate <= 0 {
		return
	}

	s.emissionTimer += dt
	interval := 1 / s.EmissionRate
	threshold := interval * (1 - emissionEpsilon)

	for s.emissionTimer >= threshold && s.count < len(s.particles) {
		s.EmitParticle()
		s.emissionTimer -= interval
		if s.emissionTimer < 0 {
			s.emissionTimer = 0
		}
	}
}

// updateLifetimes decays every alive particle and compacts out the dead ones.
func (s *System) updateLifetimes(dt float32) {
	i := 0
	for i < s.count {
		p := &s.particles[i]
		p.RemainingLifetime -= dt
		if p.RemainingLifetime > 0 {
			i++
			continue
		}
		// 与最后一个存活粒子交换；交换进来的粒子尚未衰减，所以不前进 i
		last := s.count - 1
		if i != last {
			s.particles[i] = s.particles[last]
		}
		s.count--
	}
}

// updateParticles integrates physics and applies the lifetime curves.
func (s *System) updateParticles(dt float32) {
	gravityStep := s.Gravity.Mul(dt)

	for i := 0; i < s.count; i++ {
		p := &s.particles[i]
		t := p.LifeFraction()

		p.Velocity = p.Velocity.Add(gravityStep)
		if s.SpeedOverLifetime != nil {
			// 速度曲线只缩放速度大小：以无曲线时的物理速度为方向
			physical := p.BaseVelocity.Add(s.Gravity.Mul(p.Age()))
			p.Velocity = physical.Mul(s.SpeedOverLifetime.Evaluate(t))
		}
		if s.AngularVelocityOverLifetime != nil {
			p.AngularVelocity = p.BaseAngularVelocity.Mul(s.AngularVelocityOverLifetime.Evaluate(t))
		}

		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		p.Rotation = p.Rotation.Add(p.AngularVelocity.Mul(dt))

		if s.ScaleOverLifetime != nil {
			p.Scale = p.BaseScale.Mul(s.ScaleOverLifetime.Evaluate(t))
		} else {
			p.Scale = p.BaseScale
		}

		if s.OpacityOverLifetime != nil {
			p.Color.A = toByte(float32(p.BaseOpacity) * s.OpacityOverLifetime.Evaluate(t))
		} else {
			p.Color.A = p.BaseOpacity
		}

		p.Transform = composeTransform(p.Position, p.Rotation, p.Scale)
	}
}
