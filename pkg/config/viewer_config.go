package config

// Viewer 配置常量

const (
	// ViewportWidth 视口默认宽度（像素）
	ViewportWidth = 500

	// ViewportHeight 视口默认高度（像素）
	ViewportHeight = 420

	// StepPercent 每前进一帧需要滚动的视口高度百分比
	// 滚动一个完整视口高度 = 10 帧
	StepPercent = 10

	// ScrollbarWidth 滚动条渲染宽度（像素）
	// 仅在内容高度超出视口时绘制
	ScrollbarWidth = 12

	// WheelPixelsPerNotch 鼠标滚轮每一格对应的滚动像素
	WheelPixelsPerNotch = 42

	// DefaultPreloadConcurrency 同时解码的帧数上限
	DefaultPreloadConcurrency = 8

	// DefaultFramePattern 帧地址模板，{sequence} 和 {frame}（从 1 开始）会被替换
	DefaultFramePattern = "images/{sequence}/img{frame}.jpg"
)

// 访问控制提示文字
const (
	// GatePendingText 访问检查进行中的提示
	GatePendingText = "Loading..."

	// GateDeniedText 访问被拒绝时显示的静态文字
	GateDeniedText = "Sorry, this page is only available for NTU student (140.112.X.X)."

	// LoadingImagesText 帧预加载期间显示的提示
	LoadingImagesText = "Loading images, please wait..."

	// LoadFailedText 预加载失败（仅在启用失败策略时出现）
	LoadFailedText = "Failed to load images."
)
