package systems

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/components"
	"github.com/gonewx/particles3d/pkg/ecs"
	"github.com/gonewx/particles3d/pkg/particles"
	"github.com/gonewx/particles3d/pkg/render"
)

// RenderSystem 把所有发射器实体的粒子提交给渲染器
//
// 职责范围：
//   - 用实体变换把局部包围盒变换到世界空间，做视锥体剔除
//   - 按到相机的距离从远到近提交发射器（半透明粒子需要）
//   - 每个可见发射器调用一次 DrawEx
//
// 渲染器可以是 screenrender.Renderer（ebiten）或 render.TerminalRenderer（tcell）。
type RenderSystem struct {
	entityManager *ecs.EntityManager
}

// DrawStats 一次 Draw 的统计
type DrawStats struct {
	Drawn     int // 提交绘制的发射器数量
	Culled    int // 被视锥体剔除的发射器数量
	Particles int // 提交的粒子数量
}

// NewRenderSystem 创建一个新的渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{entityManager: em}
}

// Draw 绘制所有可见发射器
// camera 为 nil 时不做剔除，按实体 ID 顺序绘制
func (s *RenderSystem) Draw(r particles.Renderer, camera *render.Camera) DrawStats {
	var stats DrawStats

	type visibleEmitter struct {
		emitter  *components.EmitterComponent
		matrix   mgl32.Mat4
		distance float32
	}
	visible := make([]visibleEmitter, 0)

	for _, id := range ecs.GetEntitiesWith2[*components.EmitterComponent, *components.TransformComponent](s.entityManager) {
		emitter, _ := ecs.GetComponent[*components.EmitterComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if emitter.System == nil {
			continue
		}

		matrix := transform.Matrix()
		world := emitter.System.Aabb.Transform(matrix)
		if camera != nil && !camera.BoxVisible(world) {
			stats.Culled++
			continue
		}

		var distance float32
		if camera != nil {
			distance = world.Center().Sub(camera.Position).Len()
		}
		visible = append(visible, visibleEmitter{emitter: emitter, matrix: matrix, distance: distance})
	}

	// 从远到近绘制；距离相同时保持实体 ID 顺序
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].distance > visible[j].distance
	})

	for _, v := range visible {
		v.emitter.System.DrawEx(r, v.emitter.Mesh, v.emitter.Material, v.matrix)
		stats.Drawn++
		stats.Particles += v.emitter.System.Count()
	}
	return stats
}

// WorldBounds 返回每个发射器在世界空间中的包围盒（用于调试叠加显示）
func (s *RenderSystem) WorldBounds() []particles.BoundingBox {
	ids := ecs.GetEntitiesWith2[*components.EmitterComponent, *components.TransformComponent](s.entityManager)
	boxes := make([]particles.BoundingBox, 0, len(ids))
	for _, id := range ids {
		emitter, _ := ecs.GetComponent[*components.EmitterComponent](s.entityManager, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](s.entityManager, id)
		if emitter.System == nil {
			continue
		}
		boxes = append(boxes, emitter.System.Aabb.Transform(transform.Matrix()))
	}
	return boxes
}
