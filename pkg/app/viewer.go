package app

import (
	"fmt"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/ecs"
	"github.com/gonewx/particles3d/pkg/game"
	"github.com/gonewx/particles3d/pkg/render"
	"github.com/gonewx/particles3d/pkg/render/screenrender"
	"github.com/gonewx/particles3d/pkg/systems"
	"github.com/gonewx/particles3d/pkg/utils"
)

// 相机交互参数
const (
	orbitDegreesPerPixel = 0.3
	zoomStepPerFrame     = 0.02 // +/- 按住时每帧的距离变化比例
	zoomStepPerWheel     = 0.1
)

var (
	backgroundColor = color.RGBA{R: 25, G: 25, B: 38, A: 255}
	boundsColor     = color.RGBA{R: 80, G: 220, B: 120, A: 255}
)

// Viewer implements ebiten.Game for the particle preset viewer
type Viewer struct {
	entityManager  *ecs.EntityManager
	particleSystem *systems.ParticleSystem
	renderSystem   *systems.RenderSystem
	renderer       *screenrender.Renderer
	camera         *render.Camera
	settings       *game.SettingsManager

	presets      []*config.PresetConfig
	currentIndex int

	paused     bool
	showBounds bool
	verbose    bool

	drag          *utils.DragManager // 鼠标/触摸拖拽环绕
	frames        int
	drawStats     systems.DrawStats
	frameStats    screenrender.FrameStats
	statusMessage string
}

// NewViewer creates the viewer and spawns the starting preset.
// startName overrides the preset remembered in settings.
func NewViewer(presets []*config.PresetConfig, settings *game.SettingsManager, seed int64, startName string) (*Viewer, error) {
	if len(presets) == 0 {
		return nil, fmt.Errorf("no presets to show")
	}

	em := ecs.NewEntityManager()
	camera := render.NewCamera(ScreenWidth, ScreenHeight)

	v := &Viewer{
		entityManager:  em,
		particleSystem: systems.NewParticleSystem(em, seed),
		renderSystem:   systems.NewRenderSystem(em),
		renderer:       screenrender.New(camera),
		camera:         camera,
		settings:       settings,
		presets:        presets,
		drag:           utils.NewDragManager(),
	}

	// 恢复上次的设置
	s := settings.GetSettings()
	v.paused = s.Paused
	v.showBounds = s.ShowBounds
	v.camera.SetDistance(s.CameraDistance)

	name := startName
	if name == "" {
		name = s.LastPreset
	}
	if i := findPreset(presets, name); i >= 0 {
		v.currentIndex = i
	} else if startName != "" {
		log.Printf("[Viewer] Warning: preset %q not found, starting with %q", startName, presets[0].Name)
	}

	v.selectPreset(v.currentIndex)
	return v, nil
}

// findPreset returns the index of the preset called name, or -1
func findPreset(presets []*config.PresetConfig, name string) int {
	for i, p := range presets {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// wrapIndex wraps i into [0, n)
func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Update updates the viewer state
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		v.selectPreset(wrapIndex(v.currentIndex-1, len(v.presets)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		v.selectPreset(wrapIndex(v.currentIndex+1, len(v.presets)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.spawnCurrent()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.particleSystem.Clear()
		v.statusMessage = "Cleared all emitters"
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.showBounds = !v.showBounds
		v.settings.SetShowBounds(v.showBounds)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.paused = !v.paused
		v.settings.SetPaused(v.paused)
		if v.paused {
			v.statusMessage = "PAUSED - Press P to resume"
		} else {
			v.statusMessage = "Resumed"
		}
	}

	v.updateCamera()

	if !v.paused {
		v.particleSystem.Update(float32(1 / float64(ebiten.TPS())))
	}

	v.frames++
	if v.verbose && v.frames%ebiten.TPS() == 0 {
		log.Printf("[Viewer] emitters=%d particles=%d drawn=%d culled=%d triangles=%d batches=%d clipped=%d fps=%.1f",
			v.particleSystem.EmitterCount(), v.particleSystem.ParticleCount(),
			v.drawStats.Drawn, v.drawStats.Culled,
			v.frameStats.Triangles, v.frameStats.Batches, v.frameStats.Clipped, ebiten.ActualFPS())
	}
	return nil
}

// updateCamera handles orbit and zoom input
func (v *Viewer) updateCamera() {
	distance := v.camera.Distance()
	if ebiten.IsKeyPressed(ebiten.KeyEqual) || ebiten.IsKeyPressed(ebiten.KeyKPAdd) {
		distance *= 1 - zoomStepPerFrame
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) || ebiten.IsKeyPressed(ebiten.KeyKPSubtract) {
		distance *= 1 + zoomStepPerFrame
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		distance *= float32(1 - wy*zoomStepPerWheel)
	}
	if distance != v.camera.Distance() {
		v.camera.SetDistance(distance)
		v.settings.SetCameraDistance(v.camera.Distance())
	}

	v.drag.Update()
	v.applyDrag()
}

// applyDrag orbits the camera by the drag delta. On mobile a tap switches
// to the next preset.
func (v *Viewer) applyDrag() {
	if dx, dy := v.drag.Delta(); dx != 0 || dy != 0 {
		v.camera.Orbit(-float32(dx)*orbitDegreesPerPixel, float32(dy)*orbitDegreesPerPixel)
	}
	if v.drag.IsTap() && utils.IsMobile() {
		v.selectPreset(wrapIndex(v.currentIndex+1, len(v.presets)))
	}
}

// selectPreset clears the scene and spawns preset i
func (v *Viewer) selectPreset(i int) {
	v.currentIndex = i
	v.particleSystem.Clear()
	v.settings.SetLastPreset(v.presets[i].Name)
	v.spawnCurrent()
}

// spawnCurrent spawns the current preset at the origin
func (v *Viewer) spawnCurrent() {
	preset := v.presets[v.currentIndex]
	if _, err := v.particleSystem.Spawn(preset, mgl32.Vec3{}); err != nil {
		log.Printf("[Viewer] Failed to spawn %s: %v", preset.Name, err)
		v.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	v.statusMessage = fmt.Sprintf("Spawned: %s", preset.Name)
}

// Draw renders the scene and the overlay
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	v.drawStats = v.renderSystem.Draw(v.renderer, v.camera)
	v.renderer.Flush(screen)

	if v.showBounds {
		for _, box := range v.renderSystem.WorldBounds() {
			v.renderer.DrawBox(screen, box, boundsColor)
		}
	}
	v.frameStats = v.renderer.EndFrame()

	v.drawUI(screen)
}

// drawUI draws preset info, statistics and controls
func (v *Viewer) drawUI(screen *ebiten.Image) {
	preset := v.presets[v.currentIndex]
	lines := []string{
		fmt.Sprintf("Preset %d/%d: %s", v.currentIndex+1, len(v.presets), preset.Name),
		preset.Description,
		fmt.Sprintf("Emitters: %d  Particles: %d  Culled: %d", v.particleSystem.EmitterCount(), v.particleSystem.ParticleCount(), v.drawStats.Culled),
		fmt.Sprintf("Triangles: %d  Batches: %d  FPS: %.1f", v.frameStats.Triangles, v.frameStats.Batches, ebiten.ActualFPS()),
		v.statusMessage,
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+i*20)
	}

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if v.paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED (Press P to resume)", w-200, 10)
	}

	controls := []string{
		"<-/-> = Prev/Next preset  Space = Spawn  R = Clear  P = Pause  B = Bounds  Q = Quit",
		"Drag = Orbit  +/- or Wheel = Zoom  F11 = Fullscreen",
	}
	if utils.IsMobile() {
		controls = []string{"Tap = Next preset  Drag = Orbit"}
	}
	y := h - len(controls)*20 - 10
	for i, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*20)
	}
}

// Layout follows the window size so the projection keeps its aspect ratio
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.camera.Width, v.camera.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
