// Package screenrender 使用 ebiten 把粒子网格绘制到窗口
//
// 与 render 包分离，使只依赖 Camera/Mesh/Material 的无窗口工具（cmd/particles）
// 不会引入 ebiten 的图形依赖。
package screenrender

import (
	"image"
	"image/color"
	"log"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/particles3d/pkg/particles"
	"github.com/gonewx/particles3d/pkg/render"
)

// maxBatchVertices DrawTriangles 使用 uint16 索引，单次提交的顶点上限
const maxBatchVertices = math.MaxUint16

// FrameStats 一帧的绘制统计
type FrameStats struct {
	Meshes    int // DrawMesh 调用次数
	Triangles int // 提交的三角形数量
	Clipped   int // 因位于相机后方而丢弃的三角形
	Batches   int // DrawTriangles 调用次数
}

// triangle 已投影到屏幕的三角形
type triangle struct {
	v     [3]ebiten.Vertex
	depth float32
}

// batchKey 批次键：同一贴图 + 同一混合模式的三角形合并绘制
type batchKey struct {
	image    *ebiten.Image // nil 表示纯色
	additive bool
}

// Renderer 使用 ebiten 绘制粒子网格，实现 particles.Renderer
//
// DrawMesh 只收集三角形；Flush 按批次排序并提交：先普通混合，再加法混合。
// 同一批次内按深度从远到近绘制。
type Renderer struct {
	Camera *render.Camera

	LightDir mgl32.Vec3 // 指向光源的单位向量
	Ambient  float32    // 环境光 [0, 1]

	batches  map[batchKey][]triangle
	order    []batchKey
	textures map[*render.Material]*ebiten.Image // 材质贴图

	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16

	stats    FrameStats
	warnedOn map[string]bool
}

// New 创建屏幕渲染器
func New(camera *render.Camera) *Renderer {
	return &Renderer{
		Camera:   camera,
		LightDir: mgl32.Vec3{0.3, 1, 0.5}.Normalize(),
		Ambient:  0.35,
		batches:  make(map[batchKey][]triangle),
		textures: make(map[*render.Material]*ebiten.Image),
		warnedOn: make(map[string]bool),
	}
}

// SetTexture 为材质指定贴图，img 为 nil 时移除
func (r *Renderer) SetTexture(mat *render.Material, img *ebiten.Image) {
	if img == nil {
		delete(r.textures, mat)
		return
	}
	r.textures[mat] = img
}

// Texture 返回材质的贴图，没有时为 nil
func (r *Renderer) Texture(mat *render.Material) *ebiten.Image {
	return r.textures[mat]
}

// Stats 返回上一次 Flush 的统计（Flush 前为当前帧累计值）
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// PendingTriangles 返回尚未提交的三角形数量
func (r *Renderer) PendingTriangles() int {
	n := 0
	for _, tris := range r.batches {
		n += len(tris)
	}
	return n
}

// DrawMesh 实现 particles.Renderer
func (r *Renderer) DrawMesh(mesh particles.Mesh, material particles.Material, transform mgl32.Mat4, tint color.RGBA) {
	m, ok := mesh.(*render.Mesh)
	if !ok || m == nil {
		r.warnOnce("mesh", "[ScreenRenderer] 警告：不支持的网格类型 %T，跳过绘制", mesh)
		return
	}
	mat, _ := material.(*render.Material)
	if mat == nil {
		mat = render.DefaultMaterial()
	}
	if tint.A == 0 {
		return
	}

	r.stats.Meshes++
	key := batchKey{image: r.textures[mat], additive: mat.Additive}
	if _, exists := r.batches[key]; !exists {
		r.order = append(r.order, key)
	}
	r.batches[key] = append(r.batches[key], r.buildTriangles(m, mat, transform, tint)...)
}

// buildTriangles 变换、投影并着色网格的所有三角形
func (r *Renderer) buildTriangles(m *render.Mesh, mat *render.Material, transform mgl32.Mat4, tint color.RGBA) []triangle {
	vp := r.Camera.ViewProjection()

	var srcW, srcH, srcX0, srcY0 float32
	img := r.textures[mat]
	textured := img != nil && len(m.UVs) == len(m.Vertices)
	if textured {
		b := img.Bounds()
		srcX0, srcY0 = float32(b.Min.X), float32(b.Min.Y)
		srcW, srcH = float32(b.Dx()), float32(b.Dy())
	}

	out := make([]triangle, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		idx := [3]uint16{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}

		var world [3]mgl32.Vec3
		var tri triangle
		visible := true
		for k, vi := range idx {
			world[k] = mgl32.TransformCoordinate(m.Vertices[vi], transform)
			x, y, depth, ok := r.Camera.ProjectWith(vp, world[k])
			if !ok {
				visible = false
				break
			}
			tri.v[k].DstX, tri.v[k].DstY = x, y
			tri.depth += depth / 3
			if textured {
				uv := m.UVs[vi]
				tri.v[k].SrcX = srcX0 + uv[0]*srcW
				tri.v[k].SrcY = srcY0 + uv[1]*srcH
			} else {
				tri.v[k].SrcX, tri.v[k].SrcY = 1, 1
			}
		}
		if !visible {
			r.stats.Clipped++
			continue
		}

		// 双面 Lambert 光照
		light := float32(1)
		normal := world[1].Sub(world[0]).Cross(world[2].Sub(world[0]))
		if l := normal.Len(); l > 0 {
			ndotl := float32(math.Abs(float64(normal.Mul(1 / l).Dot(r.LightDir))))
			light = r.Ambient + (1-r.Ambient)*ndotl
		}
		cr, cg, cb, ca := mat.Shade(tint, light)
		for k := range tri.v {
			tri.v[k].ColorR, tri.v[k].ColorG, tri.v[k].ColorB, tri.v[k].ColorA = cr, cg, cb, ca
		}
		out = append(out, tri)
	}
	return out
}

// Flush 提交本帧收集的所有三角形并清空批次
func (r *Renderer) Flush(screen *ebiten.Image) {
	r.ensureWhite()
	r.stats.Batches = 0

	renderBatches := func(additive bool) {
		for _, key := range r.order {
			if key.additive != additive {
				continue
			}
			tris := r.batches[key]
			if len(tris) == 0 {
				continue
			}
			sortBackToFront(tris)

			src := key.image
			if src == nil {
				src = r.white
			}
			op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
			if additive {
				// 加法混合模式（用于发光效果，如火焰、火花）
				op.Blend = ebiten.Blend{
					BlendFactorSourceRGB:        ebiten.BlendFactorOne,
					BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
					BlendOperationRGB:           ebiten.BlendOperationAdd,
					BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
					BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
					BlendOperationAlpha:         ebiten.BlendOperationAdd,
				}
			}

			for start := 0; start < len(tris); {
				end := start + maxBatchVertices/3
				if end > len(tris) {
					end = len(tris)
				}
				r.vertices, r.indices = appendTriangles(r.vertices[:0], r.indices[:0], tris[start:end])
				screen.DrawTriangles(r.vertices, r.indices, src, op)
				r.stats.Batches++
				r.stats.Triangles += end - start
				start = end
			}
		}
	}

	// 先绘制 Normal，再绘制 Additive
	renderBatches(false)
	renderBatches(true)

	for key := range r.batches {
		delete(r.batches, key)
	}
	r.order = r.order[:0]
}

// EndFrame 重置统计，下一帧重新累计
func (r *Renderer) EndFrame() FrameStats {
	stats := r.stats
	r.stats = FrameStats{}
	return stats
}

// DrawBox 绘制包围盒线框
func (r *Renderer) DrawBox(screen *ebiten.Image, box particles.BoundingBox, clr color.Color) {
	for _, e := range r.boxEdges(box) {
		vector.StrokeLine(screen, e[0][0], e[0][1], e[1][0], e[1][1], 1, clr, true)
	}
}

// boxEdges 返回包围盒 12 条棱中两端都在相机前方的部分（屏幕坐标）
func (r *Renderer) boxEdges(box particles.BoundingBox) [][2]mgl32.Vec2 {
	vp := r.Camera.ViewProjection()
	corners := box.Corners()

	var projected [8]mgl32.Vec2
	var ok [8]bool
	for i, c := range corners {
		x, y, _, visible := r.Camera.ProjectWith(vp, c)
		projected[i] = mgl32.Vec2{x, y}
		ok[i] = visible
	}

	edges := make([][2]mgl32.Vec2, 0, 12)
	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			j := i | bit
			if j == i || !ok[i] || !ok[j] {
				continue
			}
			edges = append(edges, [2]mgl32.Vec2{projected[i], projected[j]})
		}
	}
	return edges
}

func (r *Renderer) ensureWhite() {
	if r.white != nil {
		return
	}
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

func (r *Renderer) warnOnce(key, format string, args ...any) {
	if r.warnedOn[key] {
		return
	}
	r.warnedOn[key] = true
	log.Printf(format, args...)
}

// sortBackToFront 按深度从远到近排序，保持相同深度的提交顺序
func sortBackToFront(tris []triangle) {
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth > tris[j].depth })
}

func appendTriangles(vertices []ebiten.Vertex, indices []uint16, tris []triangle) ([]ebiten.Vertex, []uint16) {
	for _, tri := range tris {
		base := uint16(len(vertices))
		vertices = append(vertices, tri.v[0], tri.v[1], tri.v[2])
		indices = append(indices, base, base+1, base+2)
	}
	return vertices, indices
}
