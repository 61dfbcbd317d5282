package particles

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an opaque mesh handle owned by the renderer.
type Mesh any

// Material is an opaque material handle owned by the renderer.
type Material any

// Renderer draws one instance of a mesh.
type Renderer interface {
	DrawMesh(mesh Mesh, material Material, transform mgl32.Mat4, tint color.RGBA)
}

// Draw issues one DrawMesh per alive particle with its own transform and color.
// It does not modify the system.
func (s *System) Draw(r Renderer, mesh Mesh, material Material) {
	for i := 0; i < s.count; i++ {
		p := &s.particles[i]
		r.DrawMesh(mesh, material, p.Transform, p.Color)
	}
}

// DrawEx is Draw with global applied in front of every particle transform,
// placing the whole system in world space.
func (s *System) DrawEx(r Renderer, mesh Mesh, material Material, global mgl32.Mat4) {
	for i := 0; i < s.count; i++ {
		p := &s.particles[i]
		r.DrawMesh(mesh, material, global.Mul4(p.Transform), p.Color)
	}
}
