// Package render 提供粒子系统的渲染后端
//
// 两个后端都实现 particles.Renderer：screenrender.Renderer 使用 ebiten 批量绘制
// 三角形，TerminalRenderer 使用 tcell 把粒子投影到终端字符网格。
// 本包不依赖 ebiten，无窗口工具可以直接使用。
// 投影统一由 Camera 完成（透视 + 观察矩阵，均为 mgl32）。
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/particles"
)

// 相机默认参数
const (
	DefaultFovY       float32 = 45
	DefaultNear       float32 = 0.1
	DefaultFar        float32 = 500
	MinCameraDistance float32 = 1
	MaxCameraDistance float32 = 200
	maxPitchDegrees   float32 = 85
)

// Camera 透视相机
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FovY float32 // 垂直视角（度）
	Near float32
	Far  float32

	// 视口尺寸（像素或字符格）
	Width  int
	Height int
	// PixelAspect 单个像素的宽高比；终端字符约为 0.5
	PixelAspect float32
}

// NewCamera 创建一个看向原点上方的相机
func NewCamera(width, height int) *Camera {
	return &Camera{
		Position:    mgl32.Vec3{0, 4, 14},
		Target:      mgl32.Vec3{0, 3, 0},
		Up:          mgl32.Vec3{0, 1, 0},
		FovY:        DefaultFovY,
		Near:        DefaultNear,
		Far:         DefaultFar,
		Width:       width,
		Height:      height,
		PixelAspect: 1,
	}
}

// Aspect 返回视口宽高比
func (c *Camera) Aspect() float32 {
	if c.Height <= 0 || c.Width <= 0 {
		return 1
	}
	pa := c.PixelAspect
	if pa <= 0 {
		pa = 1
	}
	return float32(c.Width) * pa / float32(c.Height)
}

// View 返回观察矩阵
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection 返回透视投影矩阵
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
}

// ViewProjection 返回 Projection * View
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project 把世界坐标投影到视口坐标（左上角为原点）
// depth 为 NDC 深度，[-1, 1]，越大越远；ok 为 false 表示点在相机后方
func (c *Camera) Project(p mgl32.Vec3) (x, y, depth float32, ok bool) {
	return c.ProjectWith(c.ViewProjection(), p)
}

// ProjectWith 与 Project 相同，但使用预先计算的 ViewProjection，供逐顶点投影复用
func (c *Camera) ProjectWith(vp mgl32.Mat4, p mgl32.Vec3) (x, y, depth float32, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-6 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	x = (ndc[0] + 1) / 2 * float32(c.Width)
	y = (1 - ndc[1]) / 2 * float32(c.Height)
	return x, y, ndc[2], true
}

// BoxVisible 视锥体剔除：包围盒的 8 个角全部位于同一裁剪平面外侧时返回 false
// 判断是保守的，部分可见的盒子总是返回 true
func (c *Camera) BoxVisible(box particles.BoundingBox) bool {
	vp := c.ViewProjection()
	corners := box.Corners()

	var clips [8]mgl32.Vec4
	for i, corner := range corners {
		clips[i] = vp.Mul4x1(corner.Vec4(1))
	}

	// 6 个裁剪平面：-w <= x,y,z <= w
	for axis := 0; axis < 3; axis++ {
		allBelow, allAbove := true, true
		for _, cl := range clips {
			if cl[axis] >= -cl[3] {
				allBelow = false
			}
			if cl[axis] <= cl[3] {
				allAbove = false
			}
		}
		if allBelow || allAbove {
			return false
		}
	}
	return true
}

// Distance 返回相机到目标点的距离
func (c *Camera) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// SetDistance 沿当前方向调整相机距离，限制在 [MinCameraDistance, MaxCameraDistance]
func (c *Camera) SetDistance(d float32) {
	d = mgl32.Clamp(d, MinCameraDistance, MaxCameraDistance)
	dir := c.Position.Sub(c.Target)
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	c.Position = c.Target.Add(dir.Normalize().Mul(d))
}

// Orbit 绕目标点旋转相机（度），俯仰角限制在 ±85°
func (c *Camera) Orbit(yawDeg, pitchDeg float32) {
	offset := c.Position.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}

	yaw := math.Atan2(float64(offset[0]), float64(offset[2])) + float64(mgl32.DegToRad(yawDeg))
	pitch := math.Asin(float64(offset[1]/r)) + float64(mgl32.DegToRad(pitchDeg))
	limit := float64(mgl32.DegToRad(maxPitchDegrees))
	pitch = math.Max(-limit, math.Min(limit, pitch))

	c.Position = c.Target.Add(mgl32.Vec3{
		r * float32(math.Cos(pitch)*math.Sin(yaw)),
		r * float32(math.Sin(pitch)),
		r * float32(math.Cos(pitch)*math.Cos(yaw)),
	})
}
