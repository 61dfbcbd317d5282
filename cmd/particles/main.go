// Package main runs particle presets without a window.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	-preset <path>   Preset file or directory of *.yaml presets (default data/presets)
//	-frames <n>      Number of fixed steps to simulate (default 300)
//	-dt <seconds>    Step length (default 1/60)
//	-seed <n>        Random seed (default 1)
//	-tui             Render live in the terminal instead of printing a report
//	-verbose         Log intermediate statistics
//
// Terminal mode controls:
//
//	Left/Right Arrow  - Switch to previous/next preset
//	Space             - Spawn the current preset
//	P                 - Toggle pause
//	R                 - Clear all emitters
//	Q/Escape          - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gonewx/particles3d/pkg/config"
)

var (
	presetFlag  = flag.String("preset", "data/presets", "Preset file or directory")
	framesFlag  = flag.Int("frames", 300, "Number of fixed steps to simulate")
	dtFlag      = flag.Float64("dt", 1.0/60.0, "Step length in seconds")
	seedFlag    = flag.Int64("seed", 1, "Random seed")
	tuiFlag     = flag.Bool("tui", false, "Render live in the terminal")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

// loadPresets loads a single preset file or every preset in a directory
func loadPresets(path string) ([]*config.PresetConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets: %w", err)
	}
	if info.IsDir() {
		return config.LoadPresetDir(os.DirFS(path), ".")
	}
	preset, err := config.LoadPresetConfig(path)
	if err != nil {
		return nil, err
	}
	return []*config.PresetConfig{preset}, nil
}

func main() {
	flag.Parse()

	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	presets, err := loadPresets(filepath.Clean(*presetFlag))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load presets: %v\n", err)
		os.Exit(1)
	}
	if *dtFlag <= 0 || *framesFlag < 0 {
		fmt.Fprintln(os.Stderr, "-dt must be positive and -frames non-negative")
		os.Exit(2)
	}

	if *tuiFlag {
		app, err := newTerminalApp(presets, *seedFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
			os.Exit(1)
		}
		defer app.cleanup()
		app.run()
		return
	}

	for _, preset := range presets {
		report, err := simulate(preset, *framesFlag, float32(*dtFlag), *seedFlag, *verboseFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", preset.Name, err)
			os.Exit(1)
		}
		fmt.Println(report)
	}
}
