package main

import (
	"go/build"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/particles3d/pkg/config"
	"github.com/gonewx/particles3d/pkg/particles"
)

func TestLoadPresets(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile error: %v", err)
		}
		return path
	}
	single := write("a.yaml", "name: alpha\ncapacity: 8\n")
	write("b.yaml", "name: beta\ncapacity: 8\n")

	presets, err := loadPresets(single)
	if err != nil || len(presets) != 1 || presets[0].Name != "alpha" {
		t.Errorf("single file: presets=%v err=%v", presets, err)
	}

	presets, err = loadPresets(dir)
	if err != nil || len(presets) != 2 {
		t.Errorf("directory: %d presets, err=%v", len(presets), err)
	}

	if _, err := loadPresets(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestSummarize(t *testing.T) {
	s := particles.New(8, particles.WithSeed(1))
	s.AutoEmission = false
	s.Gravity = [3]float32{}
	s.Lifetime = 2
	s.Position = [3]float32{0, 1, 0}
	s.EmitParticle()
	s.Position = [3]float32{0, 3, 0}
	s.EmitParticle()

	st := summarize("two", s)
	if st.Count != 2 || st.Capacity != 8 {
		t.Errorf("count = %d/%d, want 2/8", st.Count, st.Capacity)
	}
	if math.Abs(st.HeightMean-2) > 1e-6 || math.Abs(st.HeightStd-math.Sqrt2) > 1e-6 {
		t.Errorf("height mean/std = %v/%v, want 2/%v", st.HeightMean, st.HeightStd, math.Sqrt2)
	}
	if math.Abs(st.LifeMean-2) > 1e-6 || st.LifeStd != 0 {
		t.Errorf("life mean/std = %v/%v, want 2/0", st.LifeMean, st.LifeStd)
	}
	if st.HeightP95 != 3 {
		t.Errorf("p95 = %v, want 3", st.HeightP95)
	}
	// Aabb 仍为 DefaultBounds，粒子都在盒内
	if st.Outside != 0 {
		t.Errorf("Outside = %d, want 0", st.Outside)
	}

	empty := summarize("empty", particles.New(4))
	if empty.Count != 0 || empty.HeightMean != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestSimulate(t *testing.T) {
	preset := &config.PresetConfig{Name: "steady", Capacity: 64, EmissionRate: 30, Lifetime: "1", Velocity: "0 2 0"}

	st, err := simulate(preset, 60, 1.0/60, 1, false)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if st.Finished || st.Count == 0 || st.Frames != 60 {
		t.Errorf("stats = %+v", st)
	}
	if st.Outside != 0 {
		t.Errorf("%d particles escaped the bounding box", st.Outside)
	}
	if !strings.Contains(st.String(), "steady after 60 frames") {
		t.Errorf("report = %q", st.String())
	}

	timed := &config.PresetConfig{Name: "short", Capacity: 16, EmissionRate: 30, Lifetime: "0.1", Duration: 0.2}
	st, err = simulate(timed, 120, 1.0/60, 1, false)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if !st.Finished || st.Frames >= 120 {
		t.Errorf("timed preset should finish early, got %+v", st)
	}
	if !strings.Contains(st.String(), "finished") {
		t.Errorf("report = %q", st.String())
	}

	if _, err := simulate(&config.PresetConfig{Name: "bad"}, 1, 1.0/60, 1, false); err == nil {
		t.Error("expected error for an invalid preset")
	}
}

func newTestApp(t *testing.T) (*terminalApp, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init error: %v", err)
	}
	screen.SetSize(81, 25)

	presets := []*config.PresetConfig{
		{Name: "one", Capacity: 16, EmissionRate: 30, Lifetime: "1"},
		{Name: "two", Capacity: 16, EmissionRate: 30, Lifetime: "1"},
	}
	app := newTerminalAppWithScreen(screen, presets, 1)
	t.Cleanup(app.cleanup)
	return app, screen
}

func TestTerminalApp_Keys(t *testing.T) {
	app, _ := newTestApp(t)

	if app.particleSystem.EmitterCount() != 1 {
		t.Fatalf("EmitterCount() = %d, want the first preset spawned", app.particleSystem.EmitterCount())
	}

	app.handleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if app.current != 1 {
		t.Errorf("current = %d, want 1", app.current)
	}
	app.handleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if app.current != 0 {
		t.Errorf("current = %d, want wrap to 0", app.current)
	}
	app.handleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if app.current != 1 {
		t.Errorf("current = %d, want wrap to 1", app.current)
	}

	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if app.particleSystem.EmitterCount() != 2 {
		t.Errorf("EmitterCount() = %d, want 2 after space", app.particleSystem.EmitterCount())
	}
	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if app.particleSystem.EmitterCount() != 0 {
		t.Errorf("EmitterCount() = %d, want 0 after clear", app.particleSystem.EmitterCount())
	}

	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	if !app.paused {
		t.Error("p should pause")
	}

	if app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q should quit")
	}
	if app.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Escape should quit")
	}
}

func TestTerminalApp_StepAndDraw(t *testing.T) {
	app, _ := newTestApp(t)

	for i := 0; i < 10; i++ {
		app.step()
	}
	if app.particleSystem.ParticleCount() == 0 {
		t.Fatal("no particles after ten steps")
	}

	app.draw()
	if app.stats.Drawn != 1 {
		t.Errorf("Drawn = %d, want 1", app.stats.Drawn)
	}
	if got := app.renderer.Cell(1, 0).Rune; got != '1' {
		t.Errorf("HUD first line starts with %q, want the preset index", got)
	}

	app.paused = true
	before := app.particleSystem.ParticleCount()
	app.step()
	if app.particleSystem.ParticleCount() != before {
		t.Error("paused app should not advance the simulation")
	}
}

// 无窗口工具的依赖链中不能出现 ebiten（它需要 GLFW/X11 等 cgo 依赖）
func TestHeadlessImportsAvoidEbiten(t *testing.T) {
	const module = "github.com/gonewx/particles3d"

	seen := make(map[string]bool)
	var walk func(dir string)
	walk = func(dir string) {
		if seen[dir] {
			return
		}
		seen[dir] = true

		pkg, err := build.ImportDir(dir, 0)
		if err != nil {
			t.Fatalf("ImportDir(%s) error: %v", dir, err)
		}
		for _, imp := range pkg.Imports {
			if strings.HasPrefix(imp, "github.com/hajimehoshi/ebiten") {
				t.Errorf("%s imports %s", dir, imp)
			}
			if rel, ok := strings.CutPrefix(imp, module+"/"); ok {
				walk(filepath.Join("..", "..", filepath.FromSlash(rel)))
			}
		}
	}
	walk(".")

	if !seen[filepath.Join("..", "..", "pkg", "render")] {
		t.Error("expected pkg/render in the headless import graph")
	}
}
