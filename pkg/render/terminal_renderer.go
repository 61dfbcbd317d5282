package render

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/particles"
)

// glyphRamp 按不透明度从低到高选择字符
var glyphRamp = []rune(".:+*#@")

// TerminalCell 终端缓冲区中的一个字符格
type TerminalCell struct {
	Rune  rune
	Color color.RGBA
	Depth float32
}

// TerminalRenderer 把粒子投影到终端字符网格，实现 particles.Renderer
//
// 每个粒子只占一个字符格（投影其变换原点），深度小者覆盖深度大者。
// 绘制结果先写入内部缓冲区，End 时一次性写到 tcell.Screen。
type TerminalRenderer struct {
	Screen     tcell.Screen
	Camera     *Camera
	Background tcell.Color

	width, height int
	cells         []TerminalCell
	drawn         int
}

// NewTerminalRenderer 创建终端渲染器；相机像素宽高比设为 0.5（字符约为 1:2）
func NewTerminalRenderer(screen tcell.Screen) *TerminalRenderer {
	w, h := screen.Size()
	camera := NewCamera(w, h)
	camera.PixelAspect = 0.5
	r := &TerminalRenderer{
		Screen:     screen,
		Camera:     camera,
		Background: tcell.ColorBlack,
	}
	r.resize(w, h)
	return r
}

// Begin 开始新的一帧：同步屏幕尺寸并清空缓冲区
func (r *TerminalRenderer) Begin() {
	w, h := r.Screen.Size()
	if w != r.width || h != r.height {
		r.resize(w, h)
	}
	r.Camera.Width, r.Camera.Height = w, h
	for i := range r.cells {
		r.cells[i] = TerminalCell{Rune: ' ', Depth: 2}
	}
	r.drawn = 0
}

func (r *TerminalRenderer) resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r.width, r.height = w, h
	r.cells = make([]TerminalCell, w*h)
	for i := range r.cells {
		r.cells[i] = TerminalCell{Rune: ' ', Depth: 2}
	}
}

// DrawMesh 实现 particles.Renderer，只使用 transform 的平移部分
func (r *TerminalRenderer) DrawMesh(_ particles.Mesh, material particles.Material, transform mgl32.Mat4, tint color.RGBA) {
	if tint.A == 0 {
		return
	}
	x, y, depth, ok := r.Camera.Project(transform.Col(3).Vec3())
	if !ok || depth > 1 || depth < -1 {
		return
	}
	cx, cy := int(x), int(y)
	if x < 0 || y < 0 || cx >= r.width || cy >= r.height {
		return
	}

	cell := &r.cells[cy*r.width+cx]
	if depth >= cell.Depth {
		return
	}

	mat, _ := material.(*Material)
	if mat == nil {
		mat = DefaultMaterial()
	}
	cr, cg, cb, ca := mat.Shade(tint, 1)

	cell.Rune = glyphFor(ca)
	cell.Color = color.RGBA{R: toByte(cr), G: toByte(cg), B: toByte(cb), A: toByte(ca)}
	cell.Depth = depth
	r.drawn++
}

// DrawText 在指定行写入一行文本（覆盖粒子）
func (r *TerminalRenderer) DrawText(x, y int, text string, clr color.RGBA) {
	if y < 0 || y >= r.height {
		return
	}
	for _, ch := range text {
		if x >= r.width {
			break
		}
		if x >= 0 {
			r.cells[y*r.width+x] = TerminalCell{Rune: ch, Color: clr, Depth: -1}
		}
		x++
	}
}

// Cell 返回缓冲区中的字符格；越界返回空格
func (r *TerminalRenderer) Cell(x, y int) TerminalCell {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return TerminalCell{Rune: ' ', Depth: 2}
	}
	return r.cells[y*r.width+x]
}

// Drawn 返回本帧实际写入缓冲区的粒子数
func (r *TerminalRenderer) Drawn() int {
	return r.drawn
}

// End 把缓冲区写到屏幕并刷新
func (r *TerminalRenderer) End() {
	bg := tcell.StyleDefault.Background(r.Background)
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			cell := r.cells[y*r.width+x]
			style := bg
			if cell.Rune != ' ' {
				style = bg.Foreground(tcell.NewRGBColor(int32(cell.Color.R), int32(cell.Color.G), int32(cell.Color.B)))
			}
			r.Screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
	r.Screen.Show()
}

func glyphFor(alpha float32) rune {
	i := int(alpha * float32(len(glyphRamp)))
	if i >= len(glyphRamp) {
		i = len(glyphRamp) - 1
	}
	if i < 0 {
		i = 0
	}
	return glyphRamp[i]
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
