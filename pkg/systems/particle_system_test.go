package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/components"
	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/ecs"
)

func newTestPreset(name string) *config.PresetConfig {
	return &config.PresetConfig{
		Name:         name,
		Capacity:     32,
		EmissionRate: 20,
		Lifetime:     "0.3",
		Gravity:      "0",
	}
}

func TestParticleSystem_Spawn(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)

	id, err := ps.Spawn(newTestPreset("test"), mgl32.Vec3{1, 2, 3})
	if err != nil {
		t.Fatalf("Spawn error: %v", err)
	}

	emitter, ok := ecs.GetComponent[*components.EmitterComponent](em, id)
	if !ok {
		t.Fatal("entity should have an EmitterComponent")
	}
	if !emitter.Active || emitter.System == nil || emitter.Curves == nil {
		t.Errorf("emitter = %+v", emitter)
	}
	if emitter.Mesh == nil || emitter.Mesh.Name != config.MeshQuad {
		t.Errorf("Mesh = %v, want default quad", emitter.Mesh)
	}
	if emitter.Material == nil || emitter.Material.Additive {
		t.Errorf("Material = %+v", emitter.Material)
	}
	// 粒子在局部空间模拟，实体变换负责摆放
	if emitter.System.Position != (mgl32.Vec3{}) {
		t.Errorf("System.Position = %v, want origin", emitter.System.Position)
	}

	transform, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok || transform.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("transform = %+v", transform)
	}
}

func TestParticleSystem_SpawnErrors(t *testing.T) {
	ps := NewParticleSystem(ecs.NewEntityManager(), 1)

	if _, err := ps.Spawn(nil, mgl32.Vec3{}); err == nil {
		t.Error("expected error for nil preset")
	}

	bad := newTestPreset("bad")
	bad.Capacity = 0
	if _, err := ps.Spawn(bad, mgl32.Vec3{}); err == nil {
		t.Error("expected error for invalid preset")
	}

	torus := newTestPreset("torus")
	torus.Render.Mesh = "torus"
	if _, err := ps.Spawn(torus, mgl32.Vec3{}); err == nil {
		t.Error("expected error for unknown mesh")
	}

	if ps.EmitterCount() != 0 {
		t.Errorf("failed spawns should not create entities, got %d", ps.EmitterCount())
	}
}

func TestParticleSystem_SharesMeshAndMaterial(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	preset := newTestPreset("shared")

	a, _ := ps.Spawn(preset, mgl32.Vec3{})
	b, _ := ps.Spawn(preset, mgl32.Vec3{})

	ea, _ := ecs.GetComponent[*components.EmitterComponent](em, a)
	eb, _ := ecs.GetComponent[*components.EmitterComponent](em, b)
	if ea.Mesh != eb.Mesh || ea.Material != eb.Material {
		t.Error("emitters from the same preset should share mesh and material")
	}
	if ea.System == eb.System || ea.Curves == eb.Curves {
		t.Error("each emitter needs its own system and curves")
	}
}

func TestParticleSystem_Update(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	id, _ := ps.Spawn(newTestPreset("test"), mgl32.Vec3{})

	ps.Update(0.25)

	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, id)
	if emitter.Age != 0.25 {
		t.Errorf("Age = %v, want 0.25", emitter.Age)
	}
	if got := ps.ParticleCount(); got != 5 {
		t.Errorf("ParticleCount() = %d, want 5", got)
	}
}

func TestParticleSystem_DurationEndsEmitter(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	preset := newTestPreset("timed")
	preset.Duration = 0.5
	id, _ := ps.Spawn(preset, mgl32.Vec3{})

	ps.Update(0.25)
	if ps.ParticleCount() != 5 || !em.Exists(id) {
		t.Fatalf("after first step: count=%d exists=%v", ps.ParticleCount(), em.Exists(id))
	}

	// age 达到 0.5：停止发射，之前的粒子 (0.3s) 全部过期，实体被销毁
	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, id)
	system := emitter.System
	ps.Update(0.25)

	if em.Exists(id) {
		t.Error("inactive empty emitter should be destroyed")
	}
	if ps.EmitterCount() != 0 {
		t.Errorf("EmitterCount() = %d, want 0", ps.EmitterCount())
	}
	if system.AutoEmission {
		t.Error("AutoEmission should be off once the duration is over")
	}
	if system.Capacity() != 0 {
		t.Error("released system should have its pool destroyed")
	}
}

func TestParticleSystem_InfiniteDuration(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	id, _ := ps.Spawn(newTestPreset("forever"), mgl32.Vec3{})

	for i := 0; i < 40; i++ {
		ps.Update(0.25)
	}
	if !em.Exists(id) || ps.ParticleCount() == 0 {
		t.Error("emitter with zero duration should keep running")
	}
}

func TestParticleSystem_Stop(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	preset := newTestPreset("stoppable")
	preset.Lifetime = "1"
	id, _ := ps.Spawn(preset, mgl32.Vec3{})

	ps.Update(0.25)
	if !ps.Stop(id) {
		t.Fatal("Stop should find the emitter")
	}
	before := ps.ParticleCount()

	ps.Update(0.25)
	if ps.ParticleCount() != before {
		t.Errorf("stopped emitter emitted: %d -> %d", before, ps.ParticleCount())
	}
	if !em.Exists(id) {
		t.Error("entity should live while particles remain")
	}

	for i := 0; i < 4; i++ {
		ps.Update(0.25)
	}
	if em.Exists(id) {
		t.Error("entity should be destroyed after its particles expire")
	}

	if ps.Stop(id) {
		t.Error("Stop on a destroyed entity should return false")
	}
}

func TestParticleSystem_Burst(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	preset := newTestPreset("burst")
	off := false
	preset.AutoEmission = &off

	id, err := ps.Spawn(preset, mgl32.Vec3{})
	if err != nil {
		t.Fatalf("Spawn error: %v", err)
	}
	if got := ps.ParticleCount(); got != preset.Capacity {
		t.Errorf("burst filled %d particles, want %d", got, preset.Capacity)
	}

	ps.Update(0.25)
	if !em.Exists(id) {
		t.Error("burst entity should live while particles remain")
	}
	ps.Update(0.25)
	if em.Exists(id) {
		t.Error("burst entity should be destroyed once empty")
	}
}

func TestParticleSystem_Clear(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, 1)
	for i := 0; i < 3; i++ {
		if _, err := ps.Spawn(newTestPreset("test"), mgl32.Vec3{float32(i), 0, 0}); err != nil {
			t.Fatalf("Spawn error: %v", err)
		}
	}
	ps.Update(0.25)

	ps.Clear()
	if ps.EmitterCount() != 0 || em.EntityCount() != 0 {
		t.Errorf("Clear left %d emitters, %d entities", ps.EmitterCount(), em.EntityCount())
	}
}

func TestParticleSystem_SeedDeterminism(t *testing.T) {
	run := func() []mgl32.Vec3 {
		em := ecs.NewEntityManager()
		ps := NewParticleSystem(em, 42)
		preset := newTestPreset("seeded")
		preset.Velocity = "[-1 1] [2 4] [-1 1]"
		id, _ := ps.Spawn(preset, mgl32.Vec3{})
		ps.Update(0.25)

		emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, id)
		var out []mgl32.Vec3
		for _, p := range emitter.System.Alive() {
			out = append(out, p.Position)
		}
		return out
	}

	a, b := run(), run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("particle counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("particle %d: %v != %v", i, a[i], b[i])
		}
	}
}
