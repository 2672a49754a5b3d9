package scenes

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"path"
	"path/filepath"

	"github.com/decker502/scanscroll/pkg/config"
	"github.com/decker502/scanscroll/pkg/game"
	"github.com/decker502/scanscroll/pkg/utils"
	"github.com/decker502/scanscroll/pkg/viewer"
	"github.com/decker502/scanscroll/pkg/watcher"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

var backgroundColor = color.Black

// ViewerSceneOptions 查看器场景的依赖
type ViewerSceneOptions struct {
	Catalog *config.Catalog
	Store   *game.FrameStore
	Policy  viewer.PreloadPolicy

	// FramesDir 帧文件所在的本地目录，Watch 为 true 时监听其中当前序列的子目录
	FramesDir string
	Watch     bool

	// Width, Height 初始屏幕尺寸，0 表示与视口相同
	// 视口盒子固定为 config.ViewportWidth x config.ViewportHeight，在屏幕中居中
	Width, Height int
	// ScrollbarWidth 滚动条宽度，移动端为 0（覆盖式滚动条）
	ScrollbarWidth int
}

// ViewerScene 滚动浏览序列帧的场景
//
// 每个 tick：采集输入并转发给滚动表面，处理热重载通知，
// 然后让 Viewer 应用预加载完成记录。
type ViewerScene struct {
	ctx    context.Context
	cancel context.CancelFunc

	catalog *config.Catalog
	store   *game.FrameStore
	viewer  *viewer.Viewer

	framesDir string
	watcher   *watcher.DirWatcher

	drag *utils.DragTracker
	face text.Face

	screenWidth, screenHeight float64
}

// NewViewerScene 创建查看器场景并开始预加载 sequence
//
// 返回：
//   - error: sequence 不在目录中时返回 *config.ConfigurationError
func NewViewerScene(ctx context.Context, opts ViewerSceneOptions, sequence config.SequenceName) (*ViewerScene, error) {
	if _, err := opts.Catalog.FrameCount(sequence); err != nil {
		return nil, err
	}

	screenWidth, screenHeight := opts.Width, opts.Height
	if screenWidth <= 0 || screenHeight <= 0 {
		screenWidth, screenHeight = config.ViewportWidth, config.ViewportHeight
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &ViewerScene{
		ctx:       ctx,
		cancel:    cancel,
		catalog:   opts.Catalog,
		store:     opts.Store,
		framesDir: opts.FramesDir,
		drag:      utils.NewDragTracker(),
		face:      utils.DefaultFace(),

		screenWidth:  float64(screenWidth),
		screenHeight: float64(screenHeight),
	}
	s.viewer = viewer.New(ctx, opts.Catalog, viewer.Options{
		Loader:  opts.Store,
		Policy:  opts.Policy,
		Surface: viewer.NewScrollSurface(config.ViewportWidth, config.ViewportHeight, float64(opts.ScrollbarWidth)),
	})

	if opts.Watch && opts.FramesDir != "" {
		w, err := watcher.New(0)
		if err != nil {
			log.Printf("[ViewerScene] hot reload disabled: %v", err)
		} else {
			s.watcher = w
		}
	}

	if err := s.setSequence(sequence); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Viewer 返回查看器（测试与调试用）
func (s *ViewerScene) Viewer() *viewer.Viewer {
	return s.viewer
}

// ScreenSize 最近一次 Resize 的屏幕尺寸
func (s *ViewerScene) ScreenSize() (width, height float64) {
	return s.screenWidth, s.screenHeight
}

// setSequence 切换序列并把目录监听移到新序列
func (s *ViewerScene) setSequence(name config.SequenceName) error {
	if err := s.viewer.SetSequence(name); err != nil {
		return err
	}
	if s.watcher != nil {
		dir := filepath.Join(s.framesDir, filepath.FromSlash(s.sequenceDir()))
		if err := s.watcher.Watch(dir); err != nil {
			log.Printf("[ViewerScene] %v", err)
		}
	}
	return nil
}

// sequenceDir 当前序列帧所在的目录（帧地址的目录部分）
func (s *ViewerScene) sequenceDir() string {
	return path.Dir(s.viewer.URL(0))
}

// Update 每个 tick 调用一次
func (s *ViewerScene) Update(deltaTime float64) {
	s.applyInput(utils.ReadScrollInput(s.drag, config.WheelPixelsPerNotch))
	s.pollReload()
	s.viewer.Update()
}

// applyInput 把本帧输入转为序列切换与滚动
func (s *ViewerScene) applyInput(in utils.ScrollInput) {
	if in.Empty() {
		return
	}

	sequences := s.catalog.Sequences()
	if in.SelectSequence > 0 && in.SelectSequence <= len(sequences) {
		s.switchTo(sequences[in.SelectSequence-1])
	} else if in.NextSequence && len(sequences) > 0 {
		s.switchTo(sequences[(indexOf(sequences, s.viewer.Sequence())+1)%len(sequences)])
	}

	if in.DeltaY != 0 {
		s.viewer.ScrollBy(in.DeltaY)
	}
	if in.FrameStep != 0 {
		s.viewer.StepBy(in.FrameStep)
	}
	if in.PageStep != 0 {
		s.viewer.ScrollBy(float64(in.PageStep) * s.viewer.Surface().ClientHeight())
	}
}

func (s *ViewerScene) switchTo(name config.SequenceName) {
	if name == s.viewer.Sequence() {
		return
	}
	s.drag.Reset()
	if err := s.setSequence(name); err != nil {
		log.Printf("[ViewerScene] %v", err)
	}
}

func indexOf(sequences []config.SequenceName, name config.SequenceName) int {
	for i, seq := range sequences {
		if seq == name {
			return i
		}
	}
	return -1
}

// pollReload 处理帧目录变化：丢弃缓存并重新预加载当前序列
func (s *ViewerScene) pollReload() {
	if s.watcher == nil {
		return
	}
	select {
	case dir := <-s.watcher.Changes():
		log.Printf("[ViewerScene] frames changed in %s", dir)
		s.reload()
	default:
	}
}

func (s *ViewerScene) reload() {
	s.store.Invalidate(s.sequenceDir() + "/")
	s.viewer.Reload()
}

// Draw 绘制当前帧或加载提示
func (s *ViewerScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	surface := s.viewer.Surface()
	width, height := surface.OuterWidth(), surface.ClientHeight()
	x, y := boxOrigin(s.screenWidth, s.screenHeight, width, height)
	cx, cy := x+width/2, y+height/2

	switch s.viewer.Status() {
	case viewer.StatusReady:
		s.drawFrames(screen)
	case viewer.StatusFailed:
		utils.DrawCenteredText(screen, config.LoadFailedText, s.face, cx, cy, width-40, color.White)
	default:
		utils.DrawCenteredText(screen, s.LoadingText(), s.face, cx, cy, width-40, color.White)
	}
}

// LoadingText 加载提示与进度
func (s *ViewerScene) LoadingText() string {
	loaded, total := s.viewer.Progress()
	if total == 0 {
		return config.LoadingImagesText
	}
	return fmt.Sprintf("%s (%d/%d)", config.LoadingImagesText, loaded, total)
}

// layout 当前视口几何
func (s *ViewerScene) layout() viewportLayout {
	surface := s.viewer.Surface()
	width, height := surface.OuterWidth(), surface.ClientHeight()
	x, y := boxOrigin(s.screenWidth, s.screenHeight, width, height)
	return layoutViewport(x, y, width, surface.InnerWidth(), height, s.viewer.Compensation())
}

// drawFrames 在补偿后的裁剪区域内绘制唯一不透明的图层
// 滚动条经过补偿后位于裁剪区域之外，不绘制
func (s *ViewerScene) drawFrames(screen *ebiten.Image) {
	l := s.layout()
	clip, ok := screen.SubImage(l.Clip.Image()).(*ebiten.Image)
	if !ok {
		return
	}

	for _, layer := range s.viewer.Layers() {
		if layer.Opacity == 0 {
			continue
		}
		img := s.store.GetImage(layer.URL)
		if img == nil {
			continue
		}
		scale, _ := utils.FitWidth(img.Bounds(), l.Frame.Width())
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(l.Frame.MinX, l.Frame.MinY)
		op.ColorScale.ScaleAlpha(float32(layer.Opacity))
		op.Filter = ebiten.FilterLinear
		clip.DrawImage(img, op)
	}
}

// Resize 实现 game.Resizable
//
// 视口盒子尺寸固定，屏幕变化只影响盒子位置；
// 同时重新测量滚动条宽度并计算补偿。
func (s *ViewerScene) Resize(width, height int) {
	s.screenWidth, s.screenHeight = float64(width), float64(height)
	s.viewer.Remeasure()
}

// Close 实现 game.Closer：取消订阅、停止预加载与目录监听
func (s *ViewerScene) Close() {
	s.viewer.Close()
	s.cancel()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Printf("[ViewerScene] close watcher: %v", err)
		}
		s.watcher = nil
	}
}
