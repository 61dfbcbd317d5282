package render

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/gonewx/particles3d/pkg/config"
)

func TestGenMesh(t *testing.T) {
	tests := []struct {
		name          string
		mesh          *Mesh
		wantVertices  int
		wantTriangles int
		wantExtent    float32
	}{
		{"quad", GenMeshQuad(2), 4, 2, 1},
		{"cube", GenMeshCube(2), 24, 12, 1},
		{"sphere", GenMeshSphere(1, 6, 10), 7 * 11, 2*6*10 - 2*10, 1},
		{"sphere clamps segments", GenMeshSphere(1, 0, 0), 3 * 4, 2*2*3 - 2*3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.mesh.Vertices) != tt.wantVertices {
				t.Errorf("vertices = %d, want %d", len(tt.mesh.Vertices), tt.wantVertices)
			}
			if len(tt.mesh.UVs) != len(tt.mesh.Vertices) {
				t.Errorf("UVs = %d, want one per vertex", len(tt.mesh.UVs))
			}
			if got := tt.mesh.TriangleCount(); got != tt.wantTriangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.wantTriangles)
			}
			for _, idx := range tt.mesh.Indices {
				if int(idx) >= len(tt.mesh.Vertices) {
					t.Fatalf("index %d out of range", idx)
				}
			}
			b := tt.mesh.Bounds()
			if math.Abs(float64(b.Max[1]-tt.wantExtent)) > 1e-5 || math.Abs(float64(b.Min[1]+tt.wantExtent)) > 1e-5 {
				t.Errorf("Bounds() = %v, want ±%v on Y", b, tt.wantExtent)
			}
		})
	}
}

func TestMeshFromName(t *testing.T) {
	for _, name := range []string{"", config.MeshQuad, config.MeshCube, config.MeshSphere} {
		m, err := MeshFromName(name)
		if err != nil {
			t.Errorf("MeshFromName(%q) error: %v", name, err)
			continue
		}
		if m.TriangleCount() == 0 {
			t.Errorf("MeshFromName(%q) returned an empty mesh", name)
		}
	}

	if _, err := MeshFromName("torus"); !errors.Is(err, config.ErrUnknownMesh) {
		t.Errorf("unknown mesh err = %v, want ErrUnknownMesh", err)
	}
}

func TestMaterial_Shade(t *testing.T) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	tests := []struct {
		name     string
		material Material
		tint     color.RGBA
		light    float32
		want     [4]float32
	}{
		{"fully lit", Material{Color: white}, white, 1, [4]float32{1, 1, 1, 1}},
		{"unlit", Material{Color: white}, white, 0, [4]float32{0, 0, 0, 1}},
		{"emissive ignores light", Material{Color: white, Emission: 1}, white, 0, [4]float32{1, 1, 1, 1}},
		{"half emission", Material{Color: white, Emission: 0.5}, white, 0, [4]float32{0.5, 0.5, 0.5, 1}},
		{"tint times color", Material{Color: color.RGBA{R: 255, G: 0, B: 255, A: 255}}, color.RGBA{R: 255, G: 255, B: 0, A: 51}, 1, [4]float32{1, 0, 0, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.material.Shade(tt.tint, tt.light)
			got := [4]float32{r, g, b, a}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-4 {
					t.Errorf("Shade() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestMaterialFromConfig(t *testing.T) {
	m, err := MaterialFromConfig(config.RenderConfig{Color: "255 128 0 255", Emission: 0.5, Additive: true})
	if err != nil {
		t.Fatalf("MaterialFromConfig error: %v", err)
	}
	if m.Color != (color.RGBA{R: 255, G: 128, B: 0, A: 255}) || m.Emission != 0.5 || !m.Additive {
		t.Errorf("material = %+v", m)
	}

	if _, err := MaterialFromConfig(config.RenderConfig{Color: "red"}); err == nil {
		t.Error("expected error for malformed color")
	}

	// 未设置颜色时使用白色
	m, err = MaterialFromConfig(config.RenderConfig{})
	if err != nil {
		t.Fatalf("MaterialFromConfig error: %v", err)
	}
	if m.Color != DefaultMaterial().Color {
		t.Errorf("Color = %v, want white", m.Color)
	}
}
