package render

import (
	"fmt"
	"image/color"

	"github.com/gonewx/particles3d/pkg/config"
)

// Material 粒子材质
type Material struct {
	Color    color.RGBA // 与粒子颜色相乘
	Emission float32    // 自发光强度 [0, 1]，1 表示完全不受光照影响
	Additive bool       // 加法混合
}

// DefaultMaterial 白色、不发光、普通混合
func DefaultMaterial() *Material {
	return &Material{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
}

// MaterialFromConfig 根据预设的 render 段创建材质
func MaterialFromConfig(rc config.RenderConfig) (*Material, error) {
	m := DefaultMaterial()
	if rc.Color != "" {
		base, _, err := config.ParseColor(rc.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid material color: %w", err)
		}
		m.Color = base
	}
	m.Emission = rc.Emission
	m.Additive = rc.Additive
	return m, nil
}

// Shade 计算最终顶点颜色（0-1 浮点，非预乘 alpha）
// light 为漫反射光照强度 [0, 1]
func (m *Material) Shade(tint color.RGBA, light float32) (r, g, b, a float32) {
	brightness := m.Emission + (1-m.Emission)*light
	if brightness > 1 {
		brightness = 1
	}
	r = float32(tint.R) / 255 * float32(m.Color.R) / 255 * brightness
	g = float32(tint.G) / 255 * float32(m.Color.G) / 255 * brightness
	b = float32(tint.B) / 255 * float32(m.Color.B) / 255 * brightness
	a = float32(tint.A) / 255 * float32(m.Color.A) / 255
	return r, g, b, a
}
