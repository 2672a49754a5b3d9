// Package app 提供查看器应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"

	"github.com/decker502/scanscroll/pkg/access"
	"github.com/decker502/scanscroll/pkg/config"
	"github.com/decker502/scanscroll/pkg/embedded"
	"github.com/decker502/scanscroll/pkg/game"
	"github.com/decker502/scanscroll/pkg/scenes"
	"github.com/decker502/scanscroll/pkg/utils"
	"github.com/decker502/scanscroll/pkg/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Sequence 启动时显示的序列，为空则使用目录中的默认序列
	Sequence string
	// CatalogPath 序列目录文件，为空则使用内置的 data/catalog.yaml
	CatalogPath string
	// FramesDir 帧文件根目录（帧地址相对于此目录解析）
	FramesDir string
	// Frames 帧文件系统，设置后优先于 FramesDir（移动端使用嵌入资源）
	Frames fs.FS
	// Watch 监听帧目录变化并自动重新加载
	Watch bool
	// PreloadTimeout 预加载超时，0 表示一直等待
	PreloadTimeout time.Duration
	// FailFast 任一帧加载失败立即进入失败状态
	FailFast bool
	// Deny 强制拒绝访问（用于查看拒绝页面）
	Deny bool
}

// App 是查看器应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	sceneManager *game.SceneManager
	verbose      bool

	width, height int // 已通知场景的屏幕尺寸（视口盒子固定，在其中居中）

	layoutMu                  sync.Mutex
	layoutWidth, layoutHeight int // 最近一次 Layout 收到的尺寸

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化查看器应用
//
// 未指定 CatalogPath 时，调用此函数前必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("序列目录加载失败: %w", err)
	}
	log.Printf("[App] catalog loaded: %v", catalog.Sequences())

	sequence := catalog.DefaultSequence()
	if cfg.Sequence != "" {
		sequence = config.SequenceName(cfg.Sequence)
	}
	if _, err := catalog.FrameCount(sequence); err != nil {
		return nil, err
	}

	frames := cfg.Frames
	if frames == nil {
		dir := cfg.FramesDir
		if dir == "" {
			dir = "."
		}
		frames = os.DirFS(dir)
	}
	store := game.NewFrameStore(frames, catalog.PreloadConcurrency())

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:          ctx,
		cancel:       cancel,
		sceneManager: game.NewSceneManager(),
		verbose:      cfg.Verbose,
		width:        config.ViewportWidth,
		height:       config.ViewportHeight,
		layoutWidth:  config.ViewportWidth,
		layoutHeight: config.ViewportHeight,
	}

	scrollbarWidth := config.ScrollbarWidth
	if utils.IsMobile() {
		// 移动端滚动条覆盖在内容上，不占宽度
		scrollbarWidth = 0
	}
	policy := viewer.PreloadPolicy{Timeout: cfg.PreloadTimeout, FailFast: cfg.FailFast}

	a.sceneManager.SetSceneFactory(func(seq config.SequenceName) (game.Scene, error) {
		return scenes.NewViewerScene(a.ctx, scenes.ViewerSceneOptions{
			Catalog:        catalog,
			Store:          store,
			Policy:         policy,
			FramesDir:      cfg.FramesDir,
			Watch:          cfg.Watch && cfg.Frames == nil,
			Width:          a.width,
			Height:         a.height,
			ScrollbarWidth: scrollbarWidth,
		}, seq)
	})

	gate := access.StaticGate{Allow: catalog.AccessGranted() && !cfg.Deny}
	watcher := access.Start(ctx, gate)
	a.sceneManager.SwitchTo(scenes.NewGateScene(a.sceneManager, watcher, sequence))

	log.Printf("[App] Starting sequence: %s", sequence)
	return a, nil
}

// loadCatalog 读取序列目录
func loadCatalog(path string) (*config.Catalog, error) {
	if path != "" {
		return config.LoadCatalog(path)
	}
	if !embedded.IsInitialized() {
		log.Printf("[App] embedded data not initialized, using built-in catalog")
		return config.DefaultCatalog(), nil
	}
	data, err := embedded.ReadFile(embedded.CatalogPath)
	if err != nil {
		return nil, err
	}
	return config.ParseCatalog(data)
}

// Update 更新查看器逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.ViewportWidth, config.ViewportHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.ViewportWidth, config.ViewportHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	a.applyLayout()

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

// applyLayout 在游戏循环中把 Layout 收到的尺寸通知给场景
func (a *App) applyLayout() {
	a.layoutMu.Lock()
	width, height := a.layoutWidth, a.layoutHeight
	a.layoutMu.Unlock()

	if width == a.width && height == a.height {
		return
	}
	log.Printf("[App] screen %dx%d -> %dx%d", a.width, a.height, width, height)
	a.width, a.height = width, height
	a.sceneManager.Resize(width, height)
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// Layout 返回逻辑屏幕尺寸
//
// 逻辑尺寸跟随窗口尺寸，视口盒子保持固定尺寸并在其中居中；
// 尺寸变化在下一次 Update 中通知当前场景，由场景重新测量滚动条补偿。
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.layoutMu.Lock()
	defer a.layoutMu.Unlock()

	if outsideWidth > 0 && outsideHeight > 0 {
		a.layoutWidth, a.layoutHeight = outsideWidth, outsideHeight
	}
	return a.layoutWidth, a.layoutHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// Close 关闭当前场景并停止后台加载
func (a *App) Close() {
	a.sceneManager.Close()
	a.cancel()
}
