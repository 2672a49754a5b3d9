package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

var errNoSceneFactory = errors.New("scene factory not set")

// Scene represents a screen of the viewer (access check, frame viewer).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Resizable 是一个可选接口，用于接收视口尺寸变化通知
//
// Ebitengine 的 Layout 是窗口尺寸变化的权威来源，
// App 在 Layout 发现尺寸变化时调用 Resize。
type Resizable interface {
	Resize(width, height int)
}

// Closer 是一个可选接口，场景被替换或程序退出时调用
// 用于取消订阅与停止后台加载
type Closer interface {
	Close()
}
