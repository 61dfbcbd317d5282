package render

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/particles"
)

// Mesh 三角形网格，原点为中心
type Mesh struct {
	Name     string
	Vertices []mgl32.Vec3
	UVs      []mgl32.Vec2 // 与 Vertices 一一对应，可为空
	Indices  []uint16     // 每三个一组构成一个三角形
}

// TriangleCount 返回三角形数量
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds 返回网格的包围盒
func (m *Mesh) Bounds() particles.BoundingBox {
	if len(m.Vertices) == 0 {
		return particles.BoundingBox{}
	}
	box := particles.PointBox(m.Vertices[0])
	for _, v := range m.Vertices[1:] {
		box = box.Extend(v)
	}
	return box
}

// GenMeshQuad 生成 XY 平面上、边长为 size 的正方形（双面绘制）
func GenMeshQuad(size float32) *Mesh {
	h := size / 2
	return &Mesh{
		Name: config.MeshQuad,
		Vertices: []mgl32.Vec3{
			{-h, h, 0},  // 左上
			{h, h, 0},   // 右上
			{-h, -h, 0}, // 左下
			{h, -h, 0},  // 右下
		},
		UVs: []mgl32.Vec2{
			{0, 0}, {1, 0}, {0, 1}, {1, 1},
		},
		// 与粒子精灵相同的两个三角形
		Indices: []uint16{0, 1, 2, 1, 3, 2},
	}
}

// GenMeshCube 生成边长为 size 的立方体
func GenMeshCube(size float32) *Mesh {
	h := size / 2
	m := &Mesh{Name: config.MeshCube}

	// 每个面 4 个独立顶点，便于逐面着色
	faces := [6][4]mgl32.Vec3{
		{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}},     // +Z
		{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}, // -Z
		{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}},     // +X
		{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}, // -X
		{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}},     // +Y
		{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}, // -Y
	}
	for _, face := range faces {
		base := uint16(len(m.Vertices))
		m.Vertices = append(m.Vertices, face[:]...)
		m.UVs = append(m.UVs, mgl32.Vec2{0, 1}, mgl32.Vec2{1, 1}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 0})
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// GenMeshSphere 生成 UV 球体
// rings 为纬线分段（>= 2），slices 为经线分段（>= 3）
func GenMeshSphere(radius float32, rings, slices int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if slices < 3 {
		slices = 3
	}

	m := &Mesh{Name: config.MeshSphere}
	for ring := 0; ring <= rings; ring++ {
		v := float64(ring) / float64(rings)
		phi := v * math.Pi // 0 = 北极
		for slice := 0; slice <= slices; slice++ {
			u := float64(slice) / float64(slices)
			theta := u * 2 * math.Pi
			m.Vertices = append(m.Vertices, mgl32.Vec3{
				radius * float32(math.Sin(phi)*math.Cos(theta)),
				radius * float32(math.Cos(phi)),
				radius * float32(math.Sin(phi)*math.Sin(theta)),
			})
			m.UVs = append(m.UVs, mgl32.Vec2{float32(u), float32(v)})
		}
	}

	stride := uint16(slices + 1)
	for ring := 0; ring < rings; ring++ {
		for slice := 0; slice < slices; slice++ {
			a := uint16(ring)*stride + uint16(slice)
			b := a + stride
			// 极点处的退化三角形跳过
			if ring != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if ring != rings-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}
	return m
}

// MeshFromName 根据预设中的网格名称生成单位尺寸网格
func MeshFromName(name string) (*Mesh, error) {
	switch name {
	case config.MeshQuad, "":
		return GenMeshQuad(1), nil
	case config.MeshCube:
		return GenMeshCube(1), nil
	case config.MeshSphere:
		return GenMeshSphere(0.5, 6, 10), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownMesh, name)
	}
}
