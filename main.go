package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/scanscroll/pkg/app"
	"github.com/decker502/scanscroll/pkg/config"
	"github.com/decker502/scanscroll/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verbose        = flag.Bool("verbose", false, "显示详细调试信息")
	sequence       = flag.String("sequence", "", "启动时显示的序列（body, lung1, lung2, coronal, saggital）")
	catalogPath    = flag.String("catalog", "", "序列目录文件（默认使用内置 data/catalog.yaml）")
	framesDir      = flag.String("frames", ".", "帧文件根目录")
	watch          = flag.Bool("watch", false, "监听帧目录变化并自动重新加载")
	preloadTimeout = flag.Duration("preload-timeout", 0, "预加载超时（0 表示一直等待）")
	failFast       = flag.Bool("fail-fast", false, "任一帧加载失败立即显示错误")
	deny           = flag.Bool("deny", false, "模拟访问被拒绝")
)

func main() {
	flag.Parse()

	// 初始化嵌入资源
	// dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	viewerApp, err := app.NewApp(app.Config{
		Verbose:        *verbose,
		Sequence:       *sequence,
		CatalogPath:    *catalogPath,
		FramesDir:      *framesDir,
		Watch:          *watch,
		PreloadTimeout: *preloadTimeout,
		FailFast:       *failFast,
		Deny:           *deny,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}
	defer viewerApp.Close()

	ebiten.SetWindowSize(config.ViewportWidth, config.ViewportHeight)
	ebiten.SetWindowTitle("Scan Scroll Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewerApp); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
