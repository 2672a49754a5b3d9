package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/decker502/scanscroll/pkg/config"
	"github.com/decker502/scanscroll/pkg/scenes"
)

const testCatalog = `
version: "1.0"
default_sequence: lung1
sequences:
  - name: body
    frames: 2
  - name: lung1
    frames: 2
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = writeCatalog(t, testCatalog)
	}
	if cfg.Frames == nil {
		cfg.Frames = fstest.MapFS{}
	}
	a, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

// waitViewer 驱动访问检查场景直到切换为查看器场景
func waitViewer(t *testing.T, a *App) *scenes.ViewerScene {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if vs, ok := a.sceneManager.GetCurrentScene().(*scenes.ViewerScene); ok {
			return vs
		}
		a.sceneManager.Update(1.0 / 60.0)
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("viewer scene not reached, current %T", a.sceneManager.GetCurrentScene())
	return nil
}

func TestNewAppStartsAtGate(t *testing.T) {
	a := newTestApp(t, Config{})
	if _, ok := a.sceneManager.GetCurrentScene().(*scenes.GateScene); !ok {
		t.Fatalf("expected gate scene first, got %T", a.sceneManager.GetCurrentScene())
	}

	vs := waitViewer(t, a)
	if got := vs.Viewer().Sequence(); got != config.SequenceLung1 {
		t.Errorf("expected default sequence lung1, got %s", got)
	}
}

func TestNewAppSequenceOverride(t *testing.T) {
	a := newTestApp(t, Config{Sequence: "body"})
	vs := waitViewer(t, a)
	if got := vs.Viewer().Sequence(); got != config.SequenceBody {
		t.Errorf("expected body, got %s", got)
	}
}

func TestNewAppUnknownSequence(t *testing.T) {
	_, err := NewApp(Config{
		CatalogPath: writeCatalog(t, testCatalog),
		Frames:      fstest.MapFS{},
		Sequence:    "coronal",
	})
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Sequence != config.SequenceCoronal {
		t.Errorf("error should name coronal, got %s", cfgErr.Sequence)
	}
}

func TestNewAppBadCatalog(t *testing.T) {
	_, err := NewApp(Config{CatalogPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for a missing catalog")
	}
}

func TestNewAppDenied(t *testing.T) {
	a := newTestApp(t, Config{Deny: true})
	gate, ok := a.sceneManager.GetCurrentScene().(*scenes.GateScene)
	if !ok {
		t.Fatalf("expected gate scene, got %T", a.sceneManager.GetCurrentScene())
	}

	deadline := time.Now().Add(2 * time.Second)
	for gate.Message() != config.GateDeniedText && time.Now().Before(deadline) {
		a.sceneManager.Update(1.0 / 60.0)
		time.Sleep(time.Millisecond)
	}
	if gate.Message() != config.GateDeniedText {
		t.Fatalf("expected denied message, got %q", gate.Message())
	}
	if a.sceneManager.GetCurrentScene() != gate {
		t.Error("denied access must not open the viewer")
	}
}

func TestLayoutResizesScene(t *testing.T) {
	a := newTestApp(t, Config{})
	vs := waitViewer(t, a)

	w, h := a.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Fatalf("Layout = %dx%d, want 800x600", w, h)
	}
	// 尺寸在下一次 Update 中生效
	if w, _ := vs.ScreenSize(); w == 800 {
		t.Error("resize should wait for the game loop")
	}

	a.applyLayout()
	if w, h := vs.ScreenSize(); w != 800 || h != 600 {
		t.Errorf("scene screen = %vx%v, want 800x600", w, h)
	}
	// 视口盒子保持固定尺寸
	surface := vs.Viewer().Surface()
	if surface.OuterWidth() != config.ViewportWidth || surface.ClientHeight() != config.ViewportHeight {
		t.Errorf("surface = %vx%v, want %vx%v", surface.OuterWidth(), surface.ClientHeight(),
			config.ViewportWidth, config.ViewportHeight)
	}

	// 非法尺寸保持上一次的结果
	if w, h := a.Layout(0, 0); w != 800 || h != 600 {
		t.Errorf("Layout(0,0) = %dx%d, want 800x600", w, h)
	}
}

func TestLoadCatalogFallback(t *testing.T) {
	catalog, err := loadCatalog("")
	if err != nil {
		t.Fatalf("loadCatalog: %v", err)
	}
	if n, _ := catalog.FrameCount(config.SequenceBody); n != 73 {
		t.Errorf("expected built-in body count 73, got %d", n)
	}
}
