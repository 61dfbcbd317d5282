package main

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"

	"github.com/gonewx/particles3d/pkg/components"
	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/ecs"
	"github.com/gonewx/particles3d/pkg/particles"
	"github.com/gonewx/particles3d/pkg/systems"
)

// runStats 一次模拟结束时的统计
type runStats struct {
	Preset        string
	Frames        int
	Finished      bool // 发射器已停止且粒子全部消亡
	Count         int
	Capacity      int
	EmissionTimer float32
	Bounds        particles.BoundingBox
	Outside       int // 位于包围盒外的粒子数

	HeightMean, HeightStd, HeightP95 float64
	LifeMean, LifeStd                float64
}

// summarize 统计粒子高度和剩余寿命
func summarize(name string, s *particles.System) runStats {
	st := runStats{
		Preset:        name,
		Count:         s.Count(),
		Capacity:      s.Capacity(),
		EmissionTimer: s.EmissionTimer(),
		Bounds:        s.Aabb,
	}

	alive := s.Alive()
	if len(alive) == 0 {
		return st
	}

	heights := make([]float64, len(alive))
	remaining := make([]float64, len(alive))
	for i, p := range alive {
		heights[i] = float64(p.Position[1])
		remaining[i] = float64(p.RemainingLifetime)
		if !s.Aabb.Contains(p.Position) {
			st.Outside++
		}
	}

	st.HeightMean, st.HeightStd = stat.MeanStdDev(heights, nil)
	st.LifeMean, st.LifeStd = stat.MeanStdDev(remaining, nil)
	sort.Float64s(heights)
	st.HeightP95 = stat.Quantile(0.95, stat.Empirical, heights, nil)
	return st
}

// String 格式化为一段报告
func (st runStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d frames\n", st.Preset, st.Frames)
	if st.Finished {
		b.WriteString("  finished: emitter stopped and every particle expired\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  particles: %d/%d  emission timer: %.4fs\n", st.Count, st.Capacity, st.EmissionTimer)
	fmt.Fprintf(&b, "  bounds: min=%s max=%s  outside: %d\n", formatVec(st.Bounds.Min), formatVec(st.Bounds.Max), st.Outside)
	if st.Count > 0 {
		fmt.Fprintf(&b, "  height: mean=%.3f std=%.3f p95=%.3f\n", st.HeightMean, st.HeightStd, st.HeightP95)
		fmt.Fprintf(&b, "  remaining life: mean=%.3f std=%.3f\n", st.LifeMean, st.LifeStd)
	}
	return b.String()
}

// simulate 运行预设 frames 步，返回最后的统计
func simulate(preset *config.PresetConfig, frames int, dt float32, seed int64, verbose bool) (runStats, error) {
	em := ecs.NewEntityManager()
	ps := systems.NewParticleSystem(em, seed)
	ps.Verbose = verbose

	id, err := ps.Spawn(preset, mgl32.Vec3{})
	if err != nil {
		return runStats{}, err
	}

	for frame := 1; frame <= frames; frame++ {
		ps.Update(dt)
		if !em.Exists(id) {
			log.Printf("[particles] %s finished at frame %d", preset.Name, frame)
			return runStats{Preset: preset.Name, Frames: frame, Finished: true}, nil
		}
		if verbose && frame%60 == 0 {
			log.Printf("[particles] %s frame %d: %d particles", preset.Name, frame, ps.ParticleCount())
		}
	}

	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, id)
	st := summarize(preset.Name, emitter.System)
	st.Frames = frames
	ps.Clear()
	return st, nil
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}
