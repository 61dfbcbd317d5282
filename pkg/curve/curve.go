// Package curve implements keyframe interpolation curves used to drive
// particle properties over a particle's normalized lifetime.
//
// A curve is an ordered list of (time, value) keyframes. Time is normally in
// [0, 1] but nothing enforces it: evaluation clamps to the first and last
// keyframes, so out-of-range inputs are handled uniformly.
//
// Curves are shared by reference. A particle system only borrows the curves
// attached to it; the caller owns them and must keep them alive (and
// unmodified) for as long as any system that references them is updated or
// drawn.
package curve

import (
	"errors"
	"sort"
)

// DefaultCapacity is the storage used when a curve is created with a
// non-positive capacity hint.
const DefaultCapacity = 4

// ErrAllocation is returned by allocators that cannot provide storage.
var ErrAllocation = errors.New("curve: keyframe allocation failed")

// Keyframe is a single (time, value) anchor of a curve.
type Keyframe struct {
	Time  float32 // Normalized time (0-1)
	Value float32 // Value at this keyframe
}

// Allocator provides backing storage for n keyframes. The returned slice must
// have capacity of at least n. Returning an error leaves the curve unchanged.
type Allocator func(n int) ([]Keyframe, error)

func defaultAllocator(n int) ([]Keyframe, error) {
	return make([]Keyframe, 0, n), nil
}

// InterpolationCurve is a growable, time-sorted sequence of keyframes.
//
// The zero value is not usable; create curves with New or NewWithAllocator.
// A curve is not safe for concurrent mutation; concurrent Evaluate calls are
// fine as long as nobody is adding keyframes or destroying it.
type InterpolationCurve struct {
	// Interpolation selects how values are blended inside a segment.
	// Linear (the zero value) is the default.
	Interpolation Interpolation

	keyframes []Keyframe // len = count, cap = capacity
	alloc     Allocator
}

// New creates a curve with room for initialCapacity keyframes.
// A capacity <= 0 uses DefaultCapacity.
func New(initialCapacity int) *InterpolationCurve {
	return NewWithAllocator(initialCapacity, nil)
}

// NewWithAllocator creates a curve that uses alloc when it needs to grow.
// The initial storage is always allocated with make, so creation never fails.
// A nil alloc uses the Go allocator.
func NewWithAllocator(initialCapacity int, alloc Allocator) *InterpolationCurve {
	if initialCapacity <= 0 {
		initialCapacity = DefaultCapacity
	}
	if alloc == nil {
		alloc = defaultAllocator
	}
	return &InterpolationCurve{
		keyframes: make([]Keyframe, 0, initialCapacity),
		alloc:     alloc,
	}
}

// FromKeyframes builds a curve holding the given keyframes, in any order.
func FromKeyframes(mode Interpolation, keyframes ...Keyframe) *InterpolationCurve {
	c := New(len(keyframes))
	c.Interpolation = mode
	for _, kf := range keyframes {
		c.AddKeyframe(kf.Time, kf.Value)
	}
	return c
}

// Count returns the number of keyframes stored.
func (c *InterpolationCurve) Count() int {
	return len(c.keyframes)
}

// Capacity returns the number of keyframes that fit before the next growth.
func (c *InterpolationCurve) Capacity() int {
	return cap(c.keyframes)
}

// Keyframe returns the i-th keyframe in time order.
func (c *InterpolationCurve) Keyframe(i int) Keyframe {
	return c.keyframes[i]
}

// Keyframes returns a copy of the keyframes in time order.
func (c *InterpolationCurve) Keyframes() []Keyframe {
	out := make([]Keyframe, len(c.keyframes))
	copy(out, c.keyframes)
	return out
}

// AddKeyframe inserts a keyframe, keeping keyframes sorted by time.
//
// Keyframes with equal times keep their insertion order, so the newest one
// sits last among its ties. When the curve is full its capacity doubles
// (at least to count+1). If that allocation fails the curve is left exactly
// as it was and AddKeyframe returns false.
func (c *InterpolationCurve) AddKeyframe(time, value float32) bool {
	n := len(c.keyframes)

	if n == cap(c.keyframes) {
		newCap := cap(c.keyframes) * 2
		if newCap < n+1 {
			newCap = n + 1
		}
		buf, err := c.alloc(newCap)
		if err != nil || cap(buf) < newCap {
			return false
		}
		buf = buf[:n]
		copy(buf, c.keyframes)
		c.keyframes = buf
	}

	// 上界查找：第一个 time 严格大于新关键帧的位置，保证同一时间的关键帧按插入顺序排列
	idx := sort.Search(n, func(i int) bool {
		return c.keyframes[i].Time > time
	})

	c.keyframes = c.keyframes[:n+1]
	copy(c.keyframes[idx+1:], c.keyframes[idx:n])
	c.keyframes[idx] = Keyframe{Time: time, Value: value}
	return true
}

// Evaluate returns the curve value at time.
//
//   - no keyframes: 0
//   - one keyframe: its value
//   - before the first / after the last keyframe: that keyframe's value
//   - otherwise the bracketing pair is blended with the curve's Interpolation
//
// At a time shared by several keyframes the most recently inserted one wins.
func (c *InterpolationCurve) Evaluate(time float32) float32 {
	n := len(c.keyframes)
	switch n {
	case 0:
		return 0
	case 1:
		return c.keyframes[0].Value
	}

	// idx 是第一个 time 大于输入时间的关键帧
	idx := sort.Search(n, func(i int) bool {
		return c.keyframes[i].Time > time
	})
	if idx == 0 {
		return c.keyframes[0].Value
	}
	if idx == n {
		return c.keyframes[n-1].Value
	}

	k0 := c.keyframes[idx-1]
	k1 := c.keyframes[idx]
	duration := k1.Time - k0.Time
	if duration <= 0 {
		return k1.Value
	}
	ratio := c.Interpolation.Apply((time - k0.Time) / duration)
	return k0.Value + (k1.Value-k0.Value)*ratio
}

// Destroy releases the keyframe storage. The curve must not be used, nor
// evaluated by any particle system, afterwards.
func (c *InterpolationCurve) Destroy() {
	c.keyframes = nil
}
