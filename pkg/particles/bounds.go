package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// DefaultBounds is the box a new system starts with: large enough that
// nothing is culled before CalculateBoundingBox runs.
var DefaultBounds = BoundingBox{
	Min: mgl32.Vec3{-10000, -10000, -10000},
	Max: mgl32.Vec3{10000, 10000, 10000},
}

// PointBox returns a degenerate box holding only p.
func PointBox(p mgl32.Vec3) BoundingBox {
	return BoundingBox{Min: p, Max: p}
}

// Extend grows the box to include p.
func (b BoundingBox) Extend(p mgl32.Vec3) BoundingBox {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return b.Extend(o.Min).Extend(o.Max)
}

// Inflate grows the box by r on every side.
func (b BoundingBox) Inflate(r float32) BoundingBox {
	d := mgl32.Vec3{r, r, r}
	return BoundingBox{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Contains reports whether p lies inside or on the box.
func (b BoundingBox) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Center returns the middle point of the box.
func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners of the box.
func (b BoundingBox) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		out[i] = mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			out[i][0] = b.Max[0]
		}
		if i&2 != 0 {
			out[i][1] = b.Max[1]
		}
		if i&4 != 0 {
			out[i][2] = b.Max[2]
		}
	}
	return out
}

// Transform returns the axis-aligned box enclosing b transformed by m.
func (b BoundingBox) Transform(m mgl32.Mat4) BoundingBox {
	corners := b.Corners()
	out := PointBox(mgl32.TransformCoordinate(corners[0], m))
	for _, c := range corners[1:] {
		out = out.Extend(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// boundsSubsteps is the number of integration steps per sampled trajectory.
// Even, so mid-life is always one of the recorded samples.
const boundsSubsteps = 8

// CalculateBoundingBox estimates the region the system's particles can reach
// over their lifetime and stores it in Aabb.
//
// Instead of running the simulation it follows a handful of representative
// trajectories: both lifetime extremes, every corner of the velocity variance
// box, and for each of those the rim of the spread cone (plus its 90 degree
// ring when the cone is wider than a hemisphere). Each trajectory is
// integrated in a few steps under gravity and the speed curve, and every
// recorded position (mid-life and end-of-life included) is inflated by half
// the largest particle scale at that point. The result is an approximation:
// curve features between samples may be missed.
func (s *System) CalculateBoundingBox() {
	box := PointBox(s.Position)

	lifetimes := []float32{s.Lifetime - s.LifetimeVariance, s.Lifetime + s.LifetimeVariance}
	velocities := s.sampleVelocities()
	maxScale := maxComponent(s.InitialScale) + s.ScaleVariance

	box = box.Inflate(s.halfScaleAt(maxScale, 0))

	for _, lifetime := range lifetimes {
		if lifetime <= 0 {
			continue
		}
		step := lifetime / boundsSubsteps
		for _, v0 := range velocities {
			pos := s.Position
			for k := 1; k <= boundsSubsteps; k++ {
				age := step * float32(k)
				t := float32(k) / boundsSubsteps

				// 中点速度积分：v(age) = v0 + g*age，再乘以速度曲线
				mid := age - step/2
				vel := v0.Add(s.Gravity.Mul(mid))
				if s.SpeedOverLifetime != nil {
					vel = vel.Mul(s.SpeedOverLifetime.Evaluate((float32(k) - 0.5) / boundsSubsteps))
				}
				pos = pos.Add(vel.Mul(step))

				box = box.Union(PointBox(pos).Inflate(s.halfScaleAt(maxScale, t)))
			}
		}
	}

	s.Aabb = box
}

// halfScaleAt returns half the largest scale a particle can have at life fraction t.
func (s *System) halfScaleAt(maxScale, t float32) float32 {
	scale := maxScale
	if s.ScaleOverLifetime != nil {
		scale *= float32(math.Abs(float64(s.ScaleOverLifetime.Evaluate(t))))
	}
	if scale < 0 {
		scale = -scale
	}
	return scale / 2
}

// sampleVelocities returns the extreme spawn velocities: the eight corners of
// the variance box, each also tilted in four directions to the edge of the
// spread cone. For spreads wider than 90 degrees the 90 degree ring is sampled
// too, since that is where the sideways reach peaks.
func (s *System) sampleVelocities() []mgl32.Vec3 {
	corners := make([]mgl32.Vec3, 0, 8)
	for i := 0; i < 8; i++ {
		v := s.InitialVelocity
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				v[axis] += s.VelocityVariance[axis]
			} else {
				v[axis] -= s.VelocityVariance[axis]
			}
		}
		corners = append(corners, v)
	}

	if s.SpreadAngle <= 0 {
		return corners
	}

	rim := float64(mgl32.DegToRad(s.SpreadAngle))
	if rim > math.Pi {
		rim = math.Pi
	}
	thetas := []float64{rim}
	if rim > math.Pi/2 {
		thetas = append(thetas, math.Pi/2)
	}

	out := make([]mgl32.Vec3, 0, len(corners)*(1+4*len(thetas)))
	for _, v := range corners {
		out = append(out, v)
		speed := v.Len()
		if speed == 0 {
			continue
		}
		axis := v.Mul(1 / speed)
		for _, theta := range thetas {
			for q := 0; q < 4; q++ {
				phi := float64(q) * math.Pi / 2
				out = append(out, coneDirection(axis, theta, phi).Normalize().Mul(speed))
			}
		}
	}
	return out
}

func maxComponent(v mgl32.Vec3) float32 {
	m := float32(math.Abs(float64(v[0])))
	for i := 1; i < 3; i++ {
		if a := float32(math.Abs(float64(v[i]))); a > m {
			m = a
		}
	}
	return m
}
