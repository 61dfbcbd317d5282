package particle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/curve"
)

var (
	// ErrEmptyValue is returned for blank value strings.
	ErrEmptyValue = errors.New("empty value")
	// ErrMalformedValue is returned when a value string does not match the grammar.
	ErrMalformedValue = errors.New("malformed value")
)

// ParseValue parses a scalar value string: a fixed value, a range or a curve.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, ErrEmptyValue
	}

	// 关键帧格式：包含逗号或插值关键字
	if strings.Contains(s, ",") || hasInterpolationKeyword(s) {
		return parseKeyframes(s)
	}

	return parseScalar(s)
}

// ParseRange parses a fixed value or a range. Curves are rejected.
func ParseRange(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, ErrEmptyValue
	}
	return parseScalar(s)
}

// ParseKeyframes parses a curve value string. A fixed value "v" is accepted as
// the single keyframe (0, v).
func ParseKeyframes(s string) (Value, error) {
	v, err := ParseValue(s)
	if err != nil {
		return Value{}, err
	}
	if v.IsCurve() {
		return v, nil
	}
	if v.Min != v.Max {
		return Value{}, fmt.Errorf("%w: range %q cannot be used as a curve", ErrMalformedValue, s)
	}
	return Value{Keyframes: []curve.Keyframe{{Time: 0, Value: v.Min}}}, nil
}

// ParseVector parses n whitespace separated components, each a fixed value or
// a range. A single component is broadcast to every axis.
func ParseVector(s string, n int) ([]Value, error) {
	tokens, err := splitTokens(s)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyValue
	}
	if len(tokens) != 1 && len(tokens) != n {
		return nil, fmt.Errorf("%w: %q has %d components, want %d", ErrMalformedValue, s, len(tokens), n)
	}

	out := make([]Value, n)
	for i := range out {
		tok := tokens[0]
		if len(tokens) == n {
			tok = tokens[i]
		}
		v, err := parseScalar(tok)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseVec3 parses a three component vector into base and variance vectors.
func ParseVec3(s string) (base, variance mgl32.Vec3, err error) {
	values, err := ParseVector(s, 3)
	if err != nil {
		return base, variance, err
	}
	for i, v := range values {
		base[i], variance[i] = v.BaseVariance()
	}
	return base, variance, nil
}

func parseScalar(s string) (Value, error) {
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return Value{}, fmt.Errorf("%w: unterminated range %q", ErrMalformedValue, s)
		}
		parts := strings.Fields(s[1 : len(s)-1])
		switch len(parts) {
		case 1:
			// 单值格式 "[value]"，按固定值处理
			v, err := parseFloat(parts[0])
			if err != nil {
				return Value{}, err
			}
			return Fixed(v), nil
		case 2:
			lo, err := parseFloat(parts[0])
			if err != nil {
				return Value{}, err
			}
			hi, err := parseFloat(parts[1])
			if err != nil {
				return Value{}, err
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return Value{Min: lo, Max: hi}, nil
		default:
			return Value{}, fmt.Errorf("%w: range %q needs one or two numbers", ErrMalformedValue, s)
		}
	}

	v, err := parseFloat(s)
	if err != nil {
		return Value{}, err
	}
	return Fixed(v), nil
}

func parseKeyframes(s string) (Value, error) {
	var out Value
	seenKeyword := false

	for _, part := range strings.Fields(s) {
		if mode, err := curve.ParseInterpolation(part); err == nil {
			if seenKeyword {
				return Value{}, fmt.Errorf("%w: more than one interpolation keyword in %q", ErrMalformedValue, s)
			}
			out.Interpolation = mode
			seenKeyword = true
			continue
		}

		pair := strings.Split(part, ",")
		if len(pair) != 2 {
			return Value{}, fmt.Errorf("%w: keyframe %q is not time,value", ErrMalformedValue, part)
		}
		t, err := parseFloat(pair[0])
		if err != nil {
			return Value{}, err
		}
		v, err := parseFloat(pair[1])
		if err != nil {
			return Value{}, err
		}
		out.Keyframes = append(out.Keyframes, curve.Keyframe{Time: t, Value: v})
	}

	if len(out.Keyframes) == 0 {
		return Value{}, fmt.Errorf("%w: no keyframes in %q", ErrMalformedValue, s)
	}
	return out, nil
}

func hasInterpolationKeyword(s string) bool {
	for _, part := range strings.Fields(s) {
		if _, err := curve.ParseInterpolation(part); err == nil {
			return true
		}
	}
	return false
}

// splitTokens splits on whitespace but keeps bracketed ranges together.
func splitTokens(s string) ([]string, error) {
	var tokens []string
	var b strings.Builder
	depth := 0

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range s {
		switch {
		case r == '[':
			if depth > 0 {
				return nil, fmt.Errorf("%w: nested range in %q", ErrMalformedValue, s)
			}
			flush()
			depth++
			b.WriteRune(r)
		case r == ']':
			if depth == 0 {
				return nil, fmt.Errorf("%w: unexpected ']' in %q", ErrMalformedValue, s)
			}
			depth--
			b.WriteRune(r)
			flush()
		case r == ' ' || r == '\t' || r == '\n':
			if depth > 0 {
				b.WriteRune(' ')
			} else {
				flush()
			}
		default:
			b.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unterminated range in %q", ErrMalformedValue, s)
	}
	flush()
	return tokens, nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedValue, s)
	}
	// ParseFloat 接受 "NaN" 和 "Inf"，预设中不允许非有限值
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrMalformedValue, s)
	}
	return float32(f), nil
}
