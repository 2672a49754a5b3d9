package viewer

import (
	"context"
	"errors"
	"testing"

	"github.com/decker502/scanscroll/pkg/config"
)

func newTestViewer(t *testing.T, loader AssetLoader) *Viewer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	v := New(ctx, config.DefaultCatalog(), Options{Loader: loader})
	t.Cleanup(v.Close)
	return v
}

func finishAll(loader *manualLoader, seq config.SequenceName, frames int) {
	for n := 1; n <= frames; n++ {
		loader.finish(testResolver(seq, n), nil)
	}
}

func TestViewerStateMachine(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)

	if v.Status() != StatusInit {
		t.Fatalf("expected INIT, got %s", v.Status())
	}
	if !v.Surface().Hidden() {
		t.Error("surface must be hidden before the first sequence loads")
	}

	if err := v.SetSequence(config.SequenceLung1); err != nil {
		t.Fatalf("SetSequence: %v", err)
	}
	if v.Status() != StatusLoading || !v.Loading() {
		t.Fatalf("expected LOADING, got %s", v.Status())
	}

	finishAll(loader, config.SequenceLung1, 34)
	drainUntil(t, func() { v.Update() }, func() bool { return v.Status() == StatusReady })
	if v.Surface().Hidden() {
		t.Error("surface must be visible once ready")
	}

	if err := v.SetSequence(config.SequenceCoronal); err != nil {
		t.Fatalf("SetSequence: %v", err)
	}
	if v.Status() != StatusLoading {
		t.Fatalf("expected LOADING after switch, got %s", v.Status())
	}
	v.Update()
	if !v.Surface().Hidden() {
		t.Error("surface must be hidden again while loading")
	}
	if v.Surface().ListenerCount() != 1 {
		t.Errorf("scroll listener must survive loading, count=%d", v.Surface().ListenerCount())
	}
}

func TestViewerUnknownSequence(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	if err := v.SetSequence(config.SequenceBody); err != nil {
		t.Fatalf("SetSequence: %v", err)
	}

	err := v.SetSequence("skull")
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if v.Sequence() != config.SequenceBody {
		t.Errorf("state must be untouched, sequence=%s", v.Sequence())
	}
}

func TestViewerScrollMapsToFrames(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	_ = v.SetSequence(config.SequenceLung1)

	// 加载期间滚动输入被忽略
	v.ScrollBy(210)
	if v.FrameIndex() != 0 || v.Surface().ScrollTop() != 0 {
		t.Fatalf("scroll while loading must be ignored, index=%d", v.FrameIndex())
	}

	finishAll(loader, config.SequenceLung1, 34)
	drainUntil(t, func() { v.Update() }, func() bool { return v.Status() == StatusReady })

	v.ScrollBy(210)
	if v.FrameIndex() != 5 {
		t.Errorf("expected frame 5, got %d", v.FrameIndex())
	}
	v.StepBy(1)
	if v.FrameIndex() != 6 {
		t.Errorf("expected frame 6 after one step, got %d", v.FrameIndex())
	}
	v.ScrollBy(1e6)
	if v.FrameIndex() != 33 {
		t.Errorf("expected last frame 33, got %d", v.FrameIndex())
	}

	layers := v.Layers()
	if len(layers) != 34 {
		t.Fatalf("expected 34 layers, got %d", len(layers))
	}
	opaque := 0
	for i, l := range layers {
		if l.Frame != i+1 {
			t.Errorf("layer %d has frame %d", i, l.Frame)
		}
		if l.Opacity == 1 {
			opaque++
			if i != 33 {
				t.Errorf("opaque layer at %d, want 33", i)
			}
		} else if l.Opacity != 0 {
			t.Errorf("layer %d has opacity %v", i, l.Opacity)
		}
	}
	if opaque != 1 {
		t.Errorf("expected exactly 1 opaque layer, got %d", opaque)
	}
	if layers[33].URL != "images/lung1/img34.jpg" || v.URL(33) != layers[33].URL {
		t.Errorf("unexpected url %q", layers[33].URL)
	}
}

func TestViewerSequenceChangeResetsDerivedState(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	_ = v.SetSequence(config.SequenceBody)
	finishAll(loader, config.SequenceBody, 73)
	drainUntil(t, func() { v.Update() }, func() bool { return v.Status() == StatusReady })

	v.ScrollBy(1e6)
	if v.FrameIndex() != 72 {
		t.Fatalf("expected frame 72, got %d", v.FrameIndex())
	}

	_ = v.SetSequence(config.SequenceLung1)
	if v.FrameIndex() != 0 || v.Surface().ScrollTop() != 0 {
		t.Errorf("sequence change must reset scroll, index=%d top=%v", v.FrameIndex(), v.Surface().ScrollTop())
	}
	if v.FrameCount() != 34 {
		t.Errorf("expected 34 frames, got %d", v.FrameCount())
	}
	if loaded, total := v.Progress(); loaded != 0 || total != 34 {
		t.Errorf("expected 0/34, got %d/%d", loaded, total)
	}
	if want := 420 * ScrollExtentPercent(34) / 100; v.Surface().ScrollHeight() != want {
		t.Errorf("scroll height = %v, want %v", v.Surface().ScrollHeight(), want)
	}
}

func TestViewerSameSequenceIsNoop(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	_ = v.SetSequence(config.SequenceLung2)
	gen := v.tracker.Generation()

	_ = v.SetSequence(config.SequenceLung2)
	if v.tracker.Generation() != gen {
		t.Error("setting the same sequence must not restart preloading")
	}

	v.Reload()
	if v.tracker.Generation() == gen {
		t.Error("Reload must start a new generation")
	}
}

func TestViewerResizeRecomputesCompensation(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	_ = v.SetSequence(config.SequenceLung1)

	c := v.Compensation()
	if c.InnerTranslateX != config.ScrollbarWidth || c.OuterTranslateX != -config.ScrollbarWidth/2.0 {
		t.Errorf("unexpected compensation %+v", c)
	}

	v.Resize(800, 600)
	if v.Surface().OuterWidth() != 800 || v.Surface().ClientHeight() != 600 {
		t.Errorf("surface not resized")
	}
	if v.Compensation().InnerTranslateX != config.ScrollbarWidth {
		t.Errorf("compensation lost after resize: %+v", v.Compensation())
	}
}

func TestViewerRemeasureKeepsSize(t *testing.T) {
	loader := newManualLoader()
	v := newTestViewer(t, loader)
	_ = v.SetSequence(config.SequenceLung1)

	v.Remeasure()
	if v.Surface().OuterWidth() != config.ViewportWidth || v.Surface().ClientHeight() != config.ViewportHeight {
		t.Errorf("Remeasure must not resize the surface")
	}
	c := v.Compensation()
	if c.InnerTranslateX != config.ScrollbarWidth || c.OuterTranslateX != -config.ScrollbarWidth/2.0 {
		t.Errorf("unexpected compensation %+v", c)
	}
}

func TestViewerFailedState(t *testing.T) {
	loader := newManualLoader()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	v := New(ctx, config.DefaultCatalog(), Options{Loader: loader, Policy: PreloadPolicy{FailFast: true}})
	defer v.Close()

	_ = v.SetSequence(config.SequenceLung1)
	loader.finish(testResolver(config.SequenceLung1, 3), errors.New("broken"))
	drainUntil(t, func() { v.Update() }, func() bool { return v.Status() == StatusFailed })

	if v.Loading() {
		t.Error("FAILED is not LOADING")
	}
	if !v.Surface().Hidden() {
		t.Error("surface must stay hidden when failed")
	}
	if !errors.Is(v.Err(), ErrFrameLoad) {
		t.Errorf("expected ErrFrameLoad, got %v", v.Err())
	}
}
