package curve

import (
	"math"
	"testing"
)

const tolerance = 1e-6

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

// TestNew_Capacity tests initial capacity handling
func TestNew_Capacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		want     int
	}{
		{"Positive", 3, 3},
		{"One", 1, 1},
		{"Zero uses default", 0, DefaultCapacity},
		{"Negative uses default", -5, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.capacity)
			if c.Capacity() != tt.want {
				t.Errorf("New(%d).Capacity() = %d, want %d", tt.capacity, c.Capacity(), tt.want)
			}
			if c.Count() != 0 {
				t.Errorf("New(%d).Count() = %d, want 0", tt.capacity, c.Count())
			}
		})
	}
}

// TestAddKeyframe_KeepsTimeOrder tests that out-of-order inserts end up sorted
func TestAddKeyframe_KeepsTimeOrder(t *testing.T) {
	c := New(2)
	inserts := []Keyframe{{0.5, 1}, {0, 0}, {1, 2}, {0.25, 5}, {0.75, 3}}
	for _, kf := range inserts {
		if !c.AddKeyframe(kf.Time, kf.Value) {
			t.Fatalf("AddKeyframe(%v, %v) returned false", kf.Time, kf.Value)
		}
	}

	if c.Count() != len(inserts) {
		t.Fatalf("Count() = %d, want %d", c.Count(), len(inserts))
	}
	got := c.Keyframes()
	for i := 1; i < len(got); i++ {
		if got[i-1].Time > got[i].Time {
			t.Errorf("keyframes not sorted at %d: %v", i, got)
		}
	}
}

// TestAddKeyframe_GrowthDoubles tests the capacity doubling on overflow
func TestAddKeyframe_GrowthDoubles(t *testing.T) {
	c := New(2)
	c.AddKeyframe(0, 0)
	c.AddKeyframe(1, 1)
	if c.Capacity() != 2 {
		t.Fatalf("Capacity() = %d before growth, want 2", c.Capacity())
	}

	c.AddKeyframe(0.5, 0.5)
	if c.Capacity() != 4 {
		t.Errorf("Capacity() = %d after growth, want 4", c.Capacity())
	}
	if c.Count() > c.Capacity() {
		t.Errorf("Count() %d exceeds Capacity() %d", c.Count(), c.Capacity())
	}
}

// TestAddKeyframe_RollbackOnAllocationFailure tests that a failed growth leaves the curve untouched
func TestAddKeyframe_RollbackOnAllocationFailure(t *testing.T) {
	failing := func(n int) ([]Keyframe, error) {
		return nil, ErrAllocation
	}
	c := NewWithAllocator(2, failing)
	c.AddKeyframe(0, 10)
	c.AddKeyframe(1, 20)

	before := c.Keyframes()
	if c.AddKeyframe(0.5, 15) {
		t.Fatal("AddKeyframe should return false when allocation fails")
	}

	if c.Count() != 2 {
		t.Errorf("Count() = %d after failed add, want 2", c.Count())
	}
	if c.Capacity() != 2 {
		t.Errorf("Capacity() = %d after failed add, want 2", c.Capacity())
	}
	after := c.Keyframes()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("keyframe %d changed: %v -> %v", i, before[i], after[i])
		}
	}
	if !approxEqual(c.Evaluate(0.5), 15) {
		t.Errorf("Evaluate(0.5) = %v, want 15 from the original two keyframes", c.Evaluate(0.5))
	}
}

// TestAddKeyframe_ShortAllocationRejected tests that an allocator returning too little storage counts as failure
func TestAddKeyframe_ShortAllocationRejected(t *testing.T) {
	short := func(n int) ([]Keyframe, error) {
		return make([]Keyframe, 0, n-1), nil
	}
	c := NewWithAllocator(1, short)
	c.AddKeyframe(0, 1)
	if c.AddKeyframe(1, 2) {
		t.Error("AddKeyframe should reject storage smaller than requested")
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d, want 1", c.Count())
	}
}

// TestEvaluate_EmptyAndSingle tests the degenerate curves
func TestEvaluate_EmptyAndSingle(t *testing.T) {
	empty := New(0)
	for _, x := range []float32{-1, 0, 0.5, 1, 2} {
		if v := empty.Evaluate(x); v != 0 {
			t.Errorf("empty.Evaluate(%v) = %v, want 0", x, v)
		}
	}

	single := New(1)
	single.AddKeyframe(0.3, 7)
	for _, x := range []float32{-1, 0, 0.3, 0.9, 5} {
		if v := single.Evaluate(x); v != 7 {
			t.Errorf("single.Evaluate(%v) = %v, want 7", x, v)
		}
	}
}

// TestEvaluate_ExactKeyframes tests that every keyframe time returns its value
func TestEvaluate_ExactKeyframes(t *testing.T) {
	c := FromKeyframes(Linear,
		Keyframe{0, 0},
		Keyframe{0.2, 4},
		Keyframe{0.5, -3},
		Keyframe{0.8, 9},
		Keyframe{1, 1},
	)
	for _, kf := range c.Keyframes() {
		if v := c.Evaluate(kf.Time); !approxEqual(v, kf.Value) {
			t.Errorf("Evaluate(%v) = %v, want %v", kf.Time, v, kf.Value)
		}
	}
}

// TestEvaluate_Linearity tests linear interpolation between two keyframes
func TestEvaluate_Linearity(t *testing.T) {
	c := New(2)
	c.AddKeyframe(0, 0)
	c.AddKeyframe(1, 10)

	tests := []struct {
		time float32
		want float32
	}{
		{0.3, 3},
		{0.5, 5},
		{0.25, 2.5},
		{0.9, 9},
	}
	for _, tt := range tests {
		if v := c.Evaluate(tt.time); math.Abs(float64(v-tt.want)) > 1e-5 {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.time, v, tt.want)
		}
	}
}

// TestEvaluate_Clamp tests clamping outside the keyframe range
func TestEvaluate_Clamp(t *testing.T) {
	c := FromKeyframes(Linear, Keyframe{0, 2}, Keyframe{0.5, 8}, Keyframe{1, 4})

	if c.Evaluate(-1) != c.Evaluate(0) {
		t.Errorf("Evaluate(-1) = %v, want Evaluate(0) = %v", c.Evaluate(-1), c.Evaluate(0))
	}
	if c.Evaluate(2) != c.Evaluate(1) {
		t.Errorf("Evaluate(2) = %v, want Evaluate(1) = %v", c.Evaluate(2), c.Evaluate(1))
	}

	inner := FromKeyframes(Linear, Keyframe{0.25, 1}, Keyframe{0.75, 3})
	if v := inner.Evaluate(0); v != 1 {
		t.Errorf("Evaluate before first keyframe = %v, want 1", v)
	}
	if v := inner.Evaluate(1); v != 3 {
		t.Errorf("Evaluate after last keyframe = %v, want 3", v)
	}
}

// TestEvaluate_TieTimes tests that the newest keyframe wins at a shared time
func TestEvaluate_TieTimes(t *testing.T) {
	c := New(4)
	c.AddKeyframe(0, 0)
	c.AddKeyframe(0.5, 1)
	c.AddKeyframe(1, 0)
	c.AddKeyframe(0.5, 9) // 同一时间的第二个关键帧

	if v := c.Evaluate(0.5); v != 9 {
		t.Errorf("Evaluate(0.5) = %v, want most recent value 9", v)
	}

	// 左侧区间仍然从 0 插值到第一个 0.5 关键帧
	if v := c.Evaluate(0.25); !approxEqual(v, 0.5) {
		t.Errorf("Evaluate(0.25) = %v, want 0.5", v)
	}
	// 右侧区间从最新的 0.5 关键帧开始
	if v := c.Evaluate(0.75); !approxEqual(v, 4.5) {
		t.Errorf("Evaluate(0.75) = %v, want 4.5", v)
	}

	keys := c.Keyframes()
	if keys[1].Value != 1 || keys[2].Value != 9 {
		t.Errorf("tie order not stable: %v", keys)
	}
}

// TestEvaluate_TieAtEnds tests ties on the first and last keyframe times
func TestEvaluate_TieAtEnds(t *testing.T) {
	c := New(0)
	c.AddKeyframe(1, 5)
	c.AddKeyframe(1, 6)
	c.AddKeyframe(0, 1)
	c.AddKeyframe(0, 2)

	if v := c.Evaluate(1); v != 6 {
		t.Errorf("Evaluate(1) = %v, want 6", v)
	}
	if v := c.Evaluate(0); v != 2 {
		t.Errorf("Evaluate(0) = %v, want 2", v)
	}
	if v := c.Evaluate(-3); v != 1 {
		t.Errorf("Evaluate(-3) = %v, want first keyframe value 1", v)
	}
}

// TestEvaluate_InterpolationModes tests the easing modes against linear
func TestEvaluate_InterpolationModes(t *testing.T) {
	tests := []struct {
		mode Interpolation
		want float32
	}{
		{Linear, 5},
		{EaseIn, 2.5},
		{EaseOut, 7.5},
		{FastInOutWeak, 5},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c := FromKeyframes(tt.mode, Keyframe{0, 0}, Keyframe{1, 10})
			if v := c.Evaluate(0.5); !approxEqual(v, tt.want) {
				t.Errorf("Evaluate(0.5) = %v, want %v", v, tt.want)
			}
			if v := c.Evaluate(1); v != 10 {
				t.Errorf("Evaluate(1) = %v, want 10", v)
			}
		})
	}
}

// TestDestroy tests that Destroy releases storage
func TestDestroy(t *testing.T) {
	c := FromKeyframes(Linear, Keyframe{0, 1}, Keyframe{1, 2})
	c.Destroy()
	if c.Count() != 0 || c.Capacity() != 0 {
		t.Errorf("after Destroy Count()=%d Capacity()=%d, want 0/0", c.Count(), c.Capacity())
	}
}

// TestParseInterpolation tests keyword lookup
func TestParseInterpolation(t *testing.T) {
	for _, name := range []string{"Linear", "easein", "EASEOUT", "FastInOutWeak"} {
		if _, err := ParseInterpolation(name); err != nil {
			t.Errorf("ParseInterpolation(%q) error: %v", name, err)
		}
	}
	if _, err := ParseInterpolation("Bounce"); err == nil {
		t.Error("ParseInterpolation(\"Bounce\") should fail")
	}
}
