//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.scanscroll -o build/android/scanscroll.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/ScanScroll.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/scanscroll/pkg/app"
	"github.com/decker502/scanscroll/pkg/embedded"
)

func init() {
	// 初始化嵌入资源
	// dataFS 和 framesFS 在 embed.go 中声明
	embedded.Init(dataFS)

	// 帧地址形如 images/<sequence>/img<n>.jpg，直接在嵌入文件系统中解析
	viewerApp, err := app.NewApp(app.Config{
		Verbose: true,
		Frames:  framesFS,
	})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(viewerApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
