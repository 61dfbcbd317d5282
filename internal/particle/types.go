// Package particle parses the value strings used by particle presets.
//
// A value string is one of:
//   - Fixed value: "1500" → Min = Max = 1500
//   - Range: "[0.7 0.9]" → uniform in [0.7, 0.9]; "[5]" is a fixed value
//   - Keyframes: "0,2 0.5,3 1,0" → time,value pairs on the normalized lifetime
//   - Interpolation: "EaseOut 0,1 1,0" → keyframes with an interpolation keyword
//
// Vectors are whitespace separated lists of fixed values or ranges, e.g.
// "[-1 1] [4 6] 0".
package particle

import (
	"github.com/gonewx/particles3d/pkg/curve"
)

// Value is a parsed value string.
//
// For fixed values and ranges Keyframes is nil. For keyframe values Min and
// Max are zero.
type Value struct {
	Min float32
	Max float32

	Keyframes     []curve.Keyframe
	Interpolation curve.Interpolation
}

// Fixed returns a value with Min = Max = v.
func Fixed(v float32) Value {
	return Value{Min: v, Max: v}
}

// IsCurve reports whether the value holds keyframes.
func (v Value) IsCurve() bool {
	return len(v.Keyframes) > 0
}

// BaseVariance converts the range into the simulator's base ± variance form.
func (v Value) BaseVariance() (base, variance float32) {
	base = (v.Min + v.Max) / 2
	variance = (v.Max - v.Min) / 2
	if variance < 0 {
		variance = -variance
	}
	return base, variance
}

// Curve builds a new interpolation curve from the keyframes, or returns nil
// when the value is not a curve. The caller owns the result.
func (v Value) Curve() *curve.InterpolationCurve {
	if !v.IsCurve() {
		return nil
	}
	return curve.FromKeyframes(v.Interpolation, v.Keyframes...)
}
