package components

import "github.com/go-gl/mathgl/mgl32"

// TransformComponent 实体在世界空间中的变换
// 发射器的粒子在局部空间模拟，渲染时乘以该变换
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // 欧拉角（度），XYZ 顺序
	Scale    mgl32.Vec3 // 零值视为 (1, 1, 1)
}

// NewTransform 返回位于 position、无旋转、单位缩放的变换
func NewTransform(position mgl32.Vec3) *TransformComponent {
	return &TransformComponent{Position: position, Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix 返回 T * R * S
func (t *TransformComponent) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := mgl32.AnglesToQuat(
		mgl32.DegToRad(t.Rotation[0]),
		mgl32.DegToRad(t.Rotation[1]),
		mgl32.DegToRad(t.Rotation[2]),
		mgl32.XYZ,
	).Mat4()
	return mgl32.Translate3D(t.Position.Elem()).Mul4(rot).Mul4(mgl32.Scale3D(scale.Elem()))
}
