package particles

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// randomVariance returns a uniform sample in [base-variance, base+variance].
func randomVariance(rng *rand.Rand, base, variance float32) float32 {
	if variance == 0 {
		return base
	}
	return base + variance*(2*rng.Float32()-1)
}

// randomVec3 jitters every axis independently.
func randomVec3(rng *rand.Rand, base, variance mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		randomVariance(rng, base[0], variance[0]),
		randomVariance(rng, base[1], variance[1]),
		randomVariance(rng, base[2], variance[2]),
	}
}

// randomChannel jitters one 8-bit color channel and clamps to 0..255.
func randomChannel(rng *rand.Rand, base, variance uint8) uint8 {
	if variance == 0 {
		return base
	}
	v := randomVariance(rng, float32(base), float32(variance))
	return toByte(v)
}

func randomColor(rng *rand.Rand, base, variance color.RGBA) color.RGBA {
	return color.RGBA{
		R: randomChannel(rng, base.R, variance.R),
		G: randomChannel(rng, base.G, variance.G),
		B: randomChannel(rng, base.B, variance.B),
		A: randomChannel(rng, base.A, variance.A),
	}
}

// perpendicularBasis returns two unit vectors orthogonal to axis and to each other.
func perpendicularBasis(axis mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(axis.Dot(up))) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := axis.Cross(up).Normalize()
	forward := right.Cross(axis).Normalize()
	return right, forward
}

// coneDirection rotates axis by polar angle theta (radians) at azimuth phi.
func coneDirection(axis mgl32.Vec3, theta, phi float64) mgl32.Vec3 {
	right, forward := perpendicularBasis(axis)
	sinTheta := float32(math.Sin(theta))
	cosTheta := float32(math.Cos(theta))
	sinPhi := float32(math.Sin(phi))
	cosPhi := float32(math.Cos(phi))
	return axis.Mul(cosTheta).
		Add(right.Mul(sinTheta * cosPhi)).
		Add(forward.Mul(sinTheta * sinPhi))
}

// spreadVelocity rotates v into a random direction inside the cone of
// half-angle spreadDeg around v itself, keeping its magnitude. The direction
// is uniform over the spherical cap.
func spreadVelocity(rng *rand.Rand, v mgl32.Vec3, spreadDeg float32) mgl32.Vec3 {
	if spreadDeg <= 0 {
		return v
	}
	speed := v.Len()
	if speed == 0 {
		return v
	}
	axis := v.Mul(1 / speed)

	maxTheta := float64(mgl32.DegToRad(spreadDeg))
	if maxTheta > math.Pi {
		maxTheta = math.Pi
	}
	// 在球冠上均匀采样：cosθ 在 [cos(max), 1] 内均匀分布
	cosMin := math.Cos(maxTheta)
	cosTheta := cosMin + float64(rng.Float32())*(1-cosMin)
	theta := math.Acos(cosTheta)
	phi := float64(rng.Float32()) * 2 * math.Pi

	return coneDirection(axis, theta, phi).Normalize().Mul(speed)
}

func clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// toByte rounds and clamps a channel value to 0..255.
func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
