package systems

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/components"
	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/ecs"
	"github.com/gonewx/particles3d/pkg/particles"
	"github.com/gonewx/particles3d/pkg/render"
)

// ParticleSystem manages every emitter entity in the scene.
//
// Each frame it ages the emitters, stops automatic emission once an emitter's
// duration is over, advances the particle simulations, and destroys entities
// whose emitter is inactive and has no particle left. Destroying an entity
// releases its particle pool and curves.
//
// Follows ECS zero-coupling principle: communicates only through EntityManager.
type ParticleSystem struct {
	EntityManager *ecs.EntityManager
	Verbose       bool // 输出发射器生命周期日志

	rng       *rand.Rand // 为每个新发射器生成随机种子
	meshes    map[string]*render.Mesh
	materials map[*config.PresetConfig]*render.Material
}

// NewParticleSystem creates a new ParticleSystem instance. Emitters spawned
// by the same system with the same seed produce identical simulations.
func NewParticleSystem(em *ecs.EntityManager, seed int64) *ParticleSystem {
	return &ParticleSystem{
		EntityManager: em,
		rng:           rand.New(rand.NewSource(seed)),
		meshes:        make(map[string]*render.Mesh),
		materials:     make(map[*config.PresetConfig]*render.Material),
	}
}

// Spawn builds a particle system from preset and creates an emitter entity at
// position. Presets with auto_emission disabled fire a single burst that
// fills the pool; the entity then lives until its last particle expires.
func (ps *ParticleSystem) Spawn(preset *config.PresetConfig, position mgl32.Vec3) (ecs.EntityID, error) {
	if preset == nil {
		return 0, fmt.Errorf("failed to spawn emitter: nil preset")
	}

	mesh, err := ps.meshFor(preset.Render.Mesh)
	if err != nil {
		return 0, fmt.Errorf("failed to spawn emitter %q: %w", preset.Name, err)
	}
	material, err := ps.materialFor(preset)
	if err != nil {
		return 0, fmt.Errorf("failed to spawn emitter %q: %w", preset.Name, err)
	}

	system, curves, err := preset.Build(particles.WithSeed(ps.rng.Int63()))
	if err != nil {
		return 0, fmt.Errorf("failed to spawn emitter %q: %w", preset.Name, err)
	}

	emitter := &components.EmitterComponent{
		Preset:   preset,
		System:   system,
		Curves:   curves,
		Mesh:     mesh,
		Material: material,
		Active:   true,
		Duration: preset.Duration,
	}

	// 一次性爆发：立即填满粒子池
	if !system.AutoEmission {
		for system.EmitParticle() {
		}
		emitter.Active = false
	}

	id := ps.EntityManager.CreateEntity()
	ps.EntityManager.AddComponent(id, emitter)
	ps.EntityManager.AddComponent(id, components.NewTransform(position))

	log.Printf("[ParticleSystem] 创建发射器 %d: preset=%s, capacity=%d, position=(%.1f, %.1f, %.1f)",
		id, preset.Name, system.Capacity(), position[0], position[1], position[2])
	return id, nil
}

// Update advances every emitter by dt seconds.
func (ps *ParticleSystem) Update(dt float32) {
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager) {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, id)
		if !ok || emitter.System == nil {
			continue
		}

		emitter.Age += dt

		// Check duration (0 = infinite)
		if emitter.Active && emitter.Duration > 0 && emitter.Age >= emitter.Duration {
			ps.stop(id, emitter)
		}

		emitter.System.Update(dt)

		if !emitter.Active && emitter.System.Count() == 0 {
			ps.release(id, emitter)
		}
	}

	ps.EntityManager.RemoveMarkedEntities()
}

// Stop ends automatic emission of an emitter. Its particles keep simulating
// and the entity is destroyed once they have all expired.
func (ps *ParticleSystem) Stop(id ecs.EntityID) bool {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, id)
	if !ok {
		return false
	}
	ps.stop(id, emitter)
	return true
}

// Clear destroys every emitter entity immediately.
func (ps *ParticleSystem) Clear() {
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager) {
		if emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, id); ok {
			ps.release(id, emitter)
		}
	}
	ps.EntityManager.RemoveMarkedEntities()
}

// EmitterCount returns the number of live emitter entities.
func (ps *ParticleSystem) EmitterCount() int {
	return len(ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager))
}

// ParticleCount returns the number of alive particles across all emitters.
func (ps *ParticleSystem) ParticleCount() int {
	total := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager) {
		if emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, id); ok && emitter.System != nil {
			total += emitter.System.Count()
		}
	}
	return total
}

func (ps *ParticleSystem) stop(id ecs.EntityID, emitter *components.EmitterComponent) {
	if !emitter.Active {
		return
	}
	emitter.Active = false
	emitter.System.AutoEmission = false
	if ps.Verbose {
		log.Printf("[ParticleSystem] 发射器 %d 停止发射 (age=%.2fs, 剩余粒子=%d)", id, emitter.Age, emitter.System.Count())
	}
}

// release 释放粒子池和曲线，并标记实体待删除
func (ps *ParticleSystem) release(id ecs.EntityID, emitter *components.EmitterComponent) {
	if emitter.System != nil {
		emitter.System.Destroy()
	}
	emitter.Curves.Destroy()
	emitter.System = nil
	emitter.Curves = nil
	ps.EntityManager.DestroyEntity(id)

	if ps.Verbose {
		log.Printf("[ParticleSystem] 销毁发射器 %d", id)
	}
}

func (ps *ParticleSystem) meshFor(name string) (*render.Mesh, error) {
	if mesh, ok := ps.meshes[name]; ok {
		return mesh, nil
	}
	mesh, err := render.MeshFromName(name)
	if err != nil {
		return nil, err
	}
	ps.meshes[name] = mesh
	return mesh, nil
}

func (ps *ParticleSystem) materialFor(preset *config.PresetConfig) (*render.Material, error) {
	if material, ok := ps.materials[preset]; ok {
		return material, nil
	}
	material, err := render.MaterialFromConfig(preset.Render)
	if err != nil {
		return nil, err
	}
	ps.materials[preset] = material
	return material, nil
}
