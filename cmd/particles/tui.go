package main

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/ecs"
	"github.com/gonewx/particles3d/pkg/render"
	"github.com/gonewx/particles3d/pkg/systems"
)

const terminalFrame = 33 * time.Millisecond // ~30 FPS

var (
	hudColor   = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	pauseColor = color.RGBA{R: 255, G: 200, B: 60, A: 255}
)

// terminalApp 在终端中实时预览预设
type terminalApp struct {
	screen         tcell.Screen
	entityManager  *ecs.EntityManager
	particleSystem *systems.ParticleSystem
	renderSystem   *systems.RenderSystem
	renderer       *render.TerminalRenderer

	presets []*config.PresetConfig
	current int
	paused  bool
	dt      float32
	stats   systems.DrawStats
}

func newTerminalApp(presets []*config.PresetConfig, seed int64) (*terminalApp, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return newTerminalAppWithScreen(screen, presets, seed), nil
}

// newTerminalAppWithScreen 使用已初始化的屏幕创建应用并生成第一个预设
func newTerminalAppWithScreen(screen tcell.Screen, presets []*config.PresetConfig, seed int64) *terminalApp {
	em := ecs.NewEntityManager()
	app := &terminalApp{
		screen:         screen,
		entityManager:  em,
		particleSystem: systems.NewParticleSystem(em, seed),
		renderSystem:   systems.NewRenderSystem(em),
		renderer:       render.NewTerminalRenderer(screen),
		presets:        presets,
		dt:             float32(terminalFrame.Seconds()),
	}
	app.selectPreset(0)
	return app
}

func (a *terminalApp) selectPreset(i int) {
	if len(a.presets) == 0 {
		return
	}
	a.current = (i%len(a.presets) + len(a.presets)) % len(a.presets)
	a.particleSystem.Clear()
	a.spawn()
}

func (a *terminalApp) spawn() {
	preset := a.presets[a.current]
	if _, err := a.particleSystem.Spawn(preset, mgl32.Vec3{}); err != nil {
		log.Printf("[particles] Failed to spawn %s: %v", preset.Name, err)
	}
}

// handleEvent 处理一个输入事件，返回 false 表示退出
func (a *terminalApp) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			a.selectPreset(a.current - 1)
		case tcell.KeyRight:
			a.selectPreset(a.current + 1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case ' ':
				a.spawn()
			case 'p', 'P':
				a.paused = !a.paused
			case 'r', 'R':
				a.particleSystem.Clear()
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// step 推进一帧模拟
func (a *terminalApp) step() {
	if !a.paused {
		a.particleSystem.Update(a.dt)
	}
}

func (a *terminalApp) draw() {
	a.renderer.Begin()
	a.stats = a.renderSystem.Draw(a.renderer, a.renderer.Camera)

	preset := a.presets[a.current]
	a.renderer.DrawText(0, 0, fmt.Sprintf("[%d/%d] %s  particles: %d  emitters: %d",
		a.current+1, len(a.presets), preset.Name, a.particleSystem.ParticleCount(), a.particleSystem.EmitterCount()), hudColor)
	if a.paused {
		a.renderer.DrawText(0, 1, "PAUSED", pauseColor)
	}
	_, h := a.screen.Size()
	a.renderer.DrawText(0, h-1, "<-/-> preset  space spawn  p pause  r clear  q quit", hudColor)
	a.renderer.End()
}

func (a *terminalApp) run() {
	ticker := time.NewTicker(terminalFrame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.step()
			a.draw()
		}
	}
}

func (a *terminalApp) cleanup() {
	a.particleSystem.Clear()
	a.screen.Fini()
}
