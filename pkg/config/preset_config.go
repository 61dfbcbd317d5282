package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/particles3d/internal/particle"
	"github.com/gonewx/particles3d/pkg/curve"
	"github.com/gonewx/particles3d/pkg/particles"
)

// 预设校验错误
var (
	ErrMissingName         = errors.New("preset name is required")
	ErrInvalidCapacity     = errors.New("capacity must be positive")
	ErrInvalidEmissionRate = errors.New("emission rate cannot be negative")
	ErrInvalidLifetime     = errors.New("lifetime must be positive")
	ErrInvalidSpreadAngle  = errors.New("spread angle must be between 0 and 180")
	ErrInvalidDuration     = errors.New("duration cannot be negative")
	ErrUnknownMesh         = errors.New("unknown mesh")
)

// Mesh names accepted in the render section.
const (
	MeshQuad   = "quad"
	MeshCube   = "cube"
	MeshSphere = "sphere"
)

// PresetConfig 粒子预设配置
// 描述一个粒子系统的发射参数；数值字段使用粒子值语法
// （固定值 "1500"、范围 "[0.7 0.9]"、关键帧 "0,1 1,0"）
type PresetConfig struct {
	Name        string `yaml:"name"`        // 预设名称，如 "fire"
	Description string `yaml:"description"` // 描述（可选）

	Capacity     int     `yaml:"capacity"`      // 粒子池容量
	EmissionRate float32 `yaml:"emission_rate"` // 每秒发射数量
	AutoEmission *bool   `yaml:"auto_emission"` // 自动发射，默认 true
	SpreadAngle  float32 `yaml:"spread_angle"`  // 发射锥半角（度）
	Duration     float32 `yaml:"duration"`      // 自动发射持续时间（秒），0 表示无限

	Lifetime        string `yaml:"lifetime"`         // 标量，如 "[0.8 1.2]"
	Gravity         string `yaml:"gravity"`          // 向量，如 "0 -9.81 0"
	Scale           string `yaml:"scale"`            // 标量，三轴统一
	Rotation        string `yaml:"rotation"`         // 向量（度）
	Velocity        string `yaml:"velocity"`         // 向量
	AngularVelocity string `yaml:"angular_velocity"` // 向量（度/秒）
	Color           string `yaml:"color"`            // 四分量 0-255，如 "255 [100 160] 0 255"

	Curves CurvesConfig `yaml:"curves"`
	Render RenderConfig `yaml:"render"`
}

// CurvesConfig 生命周期曲线（可选），值为关键帧字符串
type CurvesConfig struct {
	Scale           string `yaml:"scale"`
	Speed           string `yaml:"speed"`
	Opacity         string `yaml:"opacity"`
	AngularVelocity string `yaml:"angular_velocity"`
}

// RenderConfig 渲染参数
type RenderConfig struct {
	Mesh     string  `yaml:"mesh"`     // quad / cube / sphere，默认 quad
	Color    string  `yaml:"color"`    // 材质颜色，默认白色
	Emission float32 `yaml:"emission"` // 自发光强度 0-1
	Additive bool    `yaml:"additive"` // 加法混合
}

// PresetCurves holds the curves a preset built. They are owned by the caller
// and attached to the system by reference.
type PresetCurves struct {
	Scale           *curve.InterpolationCurve
	Speed           *curve.InterpolationCurve
	Opacity         *curve.InterpolationCurve
	AngularVelocity *curve.InterpolationCurve
}

// Destroy releases every curve. The system they are attached to must not be
// updated afterwards.
func (c *PresetCurves) Destroy() {
	if c == nil {
		return
	}
	for _, cv := range []*curve.InterpolationCurve{c.Scale, c.Speed, c.Opacity, c.AngularVelocity} {
		if cv != nil {
			cv.Destroy()
		}
	}
}

// LoadPresetConfig 从 YAML 文件加载粒子预设
func LoadPresetConfig(filepath string) (*PresetConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", filepath, err)
	}
	return ParsePresetConfig(data, filepath)
}

// ParsePresetConfig 解析 YAML 数据；source 仅用于错误信息
func ParsePresetConfig(data []byte, source string) (*PresetConfig, error) {
	var preset PresetConfig
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset YAML from %s: %w", source, err)
	}

	preset.applyDefaults()

	if err := preset.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preset in %s: %w", source, err)
	}
	return &preset, nil
}

// LoadPresetDir 加载目录下所有 *.yaml 预设，按名称排序
func LoadPresetDir(fsys fs.FS, dir string) ([]*PresetConfig, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list presets in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no presets found in %s: %w", dir, fs.ErrNotExist)
	}

	presets := make([]*PresetConfig, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset file %s: %w", file, err)
		}
		preset, err := ParsePresetConfig(data, file)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[preset.Name]; ok {
			return nil, fmt.Errorf("duplicate preset name %q in %s and %s", preset.Name, other, file)
		}
		seen[preset.Name] = file
		presets = append(presets, preset)
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// applyDefaults 为缺失字段设置与 particles.New 相同的默认值
func (p *PresetConfig) applyDefaults() {
	if p.AutoEmission == nil {
		auto := true
		p.AutoEmission = &auto
	}
	if p.Lifetime == "" {
		p.Lifetime = "1"
	}
	if p.Gravity == "" {
		p.Gravity = "0 -9.81 0"
	}
	if p.Scale == "" {
		p.Scale = "1"
	}
	if p.Rotation == "" {
		p.Rotation = "0"
	}
	if p.Velocity == "" {
		p.Velocity = "0"
	}
	if p.AngularVelocity == "" {
		p.AngularVelocity = "0"
	}
	if p.Color == "" {
		p.Color = "255 255 255 255"
	}
	if p.Render.Mesh == "" {
		p.Render.Mesh = MeshQuad
	}
	if p.Render.Color == "" {
		p.Render.Color = "255 255 255 255"
	}
}

// Validate 验证预设的完整性和合法性
func (p *PresetConfig) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	if p.Capacity <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidCapacity, p.Capacity)
	}
	if p.EmissionRate < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidEmissionRate, p.EmissionRate)
	}
	if p.SpreadAngle < 0 || p.SpreadAngle > 180 {
		return fmt.Errorf("%w, got %v", ErrInvalidSpreadAngle, p.SpreadAngle)
	}
	if p.Duration < 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidDuration, p.Duration)
	}

	lifetime, err := particle.ParseRange(p.Lifetime)
	if err != nil {
		return fmt.Errorf("lifetime: %w", err)
	}
	// 范围下界也必须为正，否则部分粒子在发射当帧即消亡
	if lifetime.Min <= 0 {
		return fmt.Errorf("%w, got %q", ErrInvalidLifetime, p.Lifetime)
	}

	if _, err := particle.ParseRange(p.Scale); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	vectors := []struct {
		field string
		value string
	}{
		{"gravity", p.Gravity},
		{"rotation", p.Rotation},
		{"velocity", p.Velocity},
		{"angular_velocity", p.AngularVelocity},
	}
	for _, v := range vectors {
		if _, _, err := particle.ParseVec3(v.value); err != nil {
			return fmt.Errorf("%s: %w", v.field, err)
		}
	}
	if _, _, err := ParseColor(p.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}

	curves := []struct {
		field string
		value string
	}{
		{"curves.scale", p.Curves.Scale},
		{"curves.speed", p.Curves.Speed},
		{"curves.opacity", p.Curves.Opacity},
		{"curves.angular_velocity", p.Curves.AngularVelocity},
	}
	for _, c := range curves {
		if c.value == "" {
			continue
		}
		if _, err := particle.ParseKeyframes(c.value); err != nil {
			return fmt.Errorf("%s: %w", c.field, err)
		}
	}

	switch p.Render.Mesh {
	case MeshQuad, MeshCube, MeshSphere:
	default:
		return fmt.Errorf("%w %q (want quad, cube or sphere)", ErrUnknownMesh, p.Render.Mesh)
	}
	if _, _, err := ParseColor(p.Render.Color); err != nil {
		return fmt.Errorf("render.color: %w", err)
	}
	if p.Render.Emission < 0 || p.Render.Emission > 1 {
		return fmt.Errorf("render.emission must be between 0 and 1, got %v", p.Render.Emission)
	}
	return nil
}

// Build creates a configured particle system with its curves attached and
// its bounding box computed. Missing fields get their defaults first. The
// caller owns both results.
func (p *PresetConfig) Build(opts ...particles.Option) (*particles.System, *PresetCurves, error) {
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid preset %q: %w", p.Name, err)
	}

	s := particles.New(p.Capacity, opts...)
	s.EmissionRate = p.EmissionRate
	s.AutoEmission = p.AutoEmission == nil || *p.AutoEmission
	s.SpreadAngle = p.SpreadAngle

	// Validate 已检查过语法，这里的错误不会发生
	lifetime, _ := particle.ParseRange(p.Lifetime)
	s.Lifetime, s.LifetimeVariance = lifetime.BaseVariance()

	scale, _ := particle.ParseRange(p.Scale)
	base, variance := scale.BaseVariance()
	s.InitialScale = mgl32.Vec3{base, base, base}
	s.ScaleVariance = variance

	s.Gravity, _, _ = particle.ParseVec3(p.Gravity)
	s.InitialRotation, s.RotationVariance, _ = particle.ParseVec3(p.Rotation)
	s.InitialVelocity, s.VelocityVariance, _ = particle.ParseVec3(p.Velocity)
	s.InitialAngularVelocity, s.AngularVelocityVariance, _ = particle.ParseVec3(p.AngularVelocity)
	s.InitialColor, s.ColorVariance, _ = ParseColor(p.Color)

	curves := &PresetCurves{
		Scale:           buildCurve(p.Curves.Scale),
		Speed:           buildCurve(p.Curves.Speed),
		Opacity:         buildCurve(p.Curves.Opacity),
		AngularVelocity: buildCurve(p.Curves.AngularVelocity),
	}
	s.ScaleOverLifetime = curves.Scale
	s.SpeedOverLifetime = curves.Speed
	s.OpacityOverLifetime = curves.Opacity
	s.AngularVelocityOverLifetime = curves.AngularVelocity

	s.CalculateBoundingBox()
	return s, curves, nil
}

func buildCurve(s string) *curve.InterpolationCurve {
	if s == "" {
		return nil
	}
	v, err := particle.ParseKeyframes(s)
	if err != nil {
		return nil
	}
	return v.Curve()
}

// ParseColor 解析四分量颜色 "r g b a"（0-255，支持范围），返回基础值和方差
func ParseColor(s string) (base, variance color.RGBA, err error) {
	values, err := particle.ParseVector(s, 4)
	if err != nil {
		return base, variance, err
	}
	channels := make([]uint8, 8)
	for i, v := range values {
		if v.Min < 0 || v.Max > 255 {
			return base, variance, fmt.Errorf("%w: channel %d of %q outside 0-255", particle.ErrMalformedValue, i, s)
		}
		b, vr := v.BaseVariance()
		channels[i] = uint8(b + 0.5)
		channels[4+i] = uint8(vr + 0.5)
	}
	base = color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}
	variance = color.RGBA{R: channels[4], G: channels[5], B: channels[6], A: channels[7]}
	return base, variance, nil
}
