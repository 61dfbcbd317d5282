package components

import (
	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/particles"
	"github.com/gonewx/particles3d/pkg/render"
)

// EmitterComponent represents one live particle system attached to an entity.
//
// The component owns System and Curves: ParticleSystem releases both when the
// entity is destroyed. Mesh and Material are shared between emitters built
// from the same preset.
//
// This is a pure data component following ECS principles - it contains no methods.
type EmitterComponent struct {
	Preset *config.PresetConfig // 创建该发射器的预设

	System *particles.System    // 粒子池与模拟器
	Curves *config.PresetCurves // 挂载到 System 上的生命周期曲线

	Mesh     *render.Mesh
	Material *render.Material

	// Emitter state (发射器状态)
	Active   bool    // false 时停止自动发射，粒子全部消亡后实体被销毁
	Age      float32 // 发射器已运行时间（秒）
	Duration float32 // 自动发射持续时间（秒，0 = 无限）
}
