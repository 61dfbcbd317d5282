package app

import (
	"testing"
	"testing/fstest"

	"github.com/gonewx/particles3d/pkg/embedded"
)

func initTestData(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	embedded.Init(fstest.MapFS{
		"data/presets/alpha.yaml": {Data: []byte("name: alpha\ncapacity: 8\nemission_rate: 10\n")},
		"data/presets/beta.yaml":  {Data: []byte("name: beta\ncapacity: 8\nemission_rate: 10\n")},
	})
	t.Cleanup(func() { embedded.Init(nil) })
}

func TestNewApp(t *testing.T) {
	initTestData(t)

	a, err := NewApp(Config{Verbose: true, Preset: "beta", Seed: 1})
	if err != nil {
		t.Fatalf("NewApp error: %v", err)
	}
	if !a.IsVerbose() {
		t.Error("IsVerbose() = false, want true")
	}
	if got := a.viewer.presets[a.viewer.currentIndex].Name; got != "beta" {
		t.Errorf("starting preset = %q, want beta", got)
	}
	if n := len(a.viewer.presets); n != 2 {
		t.Errorf("loaded %d presets, want 2", n)
	}

	w, h := a.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Errorf("Layout = %dx%d, want 800x600", w, h)
	}

	if err := a.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestNewApp_NotInitialized(t *testing.T) {
	embedded.Init(nil)
	if _, err := NewApp(Config{Verbose: true}); err == nil {
		t.Error("expected error before embedded.Init")
	}
}
