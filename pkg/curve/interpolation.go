package curve

import (
	"fmt"
	"strings"
)

// Interpolation 控制关键帧区间内的插值方式
//
// 所有模式都把区间内的进度 t ∈ [0, 1] 映射回 [0, 1]，
// 端点保持不变，因此关键帧处的取值与模式无关。
type Interpolation int

const (
	// Linear 线性插值（默认）
	Linear Interpolation = iota
	// EaseIn 二次方缓入：开始慢，结束快
	EaseIn
	// EaseOut 二次方缓出：开始快，结束慢
	EaseOut
	// FastInOutWeak 平滑步进 t²(3-2t)：两端慢，中间快
	FastInOutWeak
)

var interpolationNames = [...]string{
	Linear:        "Linear",
	EaseIn:        "EaseIn",
	EaseOut:       "EaseOut",
	FastInOutWeak: "FastInOutWeak",
}

// String returns the keyword used for the mode in preset files.
func (m Interpolation) String() string {
	if m < 0 || int(m) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(m))
	}
	return interpolationNames[m]
}

// Apply maps a segment ratio through the easing function of the mode.
// Unknown modes fall back to linear.
func (m Interpolation) Apply(t float32) float32 {
	switch m {
	case EaseIn:
		return t * t
	case EaseOut:
		return 1 - (1-t)*(1-t)
	case FastInOutWeak:
		return t * t * (3 - 2*t)
	default:
		return t
	}
}

// ParseInterpolation resolves a keyword (case-insensitive) to a mode.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpolationNames {
		if strings.EqualFold(name, s) {
			return Interpolation(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown interpolation %q", s)
}
