// Package main is the interactive 3D particle preset viewer.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	-preset <name>   Start with a specific preset (default: last used)
//	-seed <n>        Random seed for spawned emitters
//	-verbose         Log per-second frame statistics
//
// Controls:
//
//	Left/Right Arrow  - Switch to previous/next preset
//	Space             - Spawn the current preset at the origin
//	Mouse drag        - Orbit the camera
//	+/- or wheel      - Move the camera closer/further
//	B                 - Toggle bounding box overlay
//	P                 - Toggle pause
//	R                 - Clear all emitters
//	F11               - Toggle fullscreen
//	Q/Escape          - Quit
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/particles3d/pkg/app"
	"github.com/gonewx/particles3d/pkg/embedded"
)

var (
	presetFlag  = flag.String("preset", "", "Start with a specific preset name")
	seedFlag    = flag.Int64("seed", 0, "Random seed for spawned emitters (0 = time based)")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	log.Println("=== 3D Particle Preset Viewer ===")

	embedded.Init(dataFS)

	viewer, err := app.NewApp(app.Config{
		Verbose: *verboseFlag,
		Preset:  *presetFlag,
		Seed:    *seedFlag,
	})
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("3D Particle Preset Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}

	if err := viewer.Close(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
	log.Println("Particle viewer closed")
}
