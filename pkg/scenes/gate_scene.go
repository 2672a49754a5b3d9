package scenes

import (
	"image/color"
	"log"

	"github.com/decker502/scanscroll/pkg/access"
	"github.com/decker502/scanscroll/pkg/config"
	"github.com/decker502/scanscroll/pkg/game"
	"github.com/decker502/scanscroll/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// sequenceLoader 由 SceneManager 实现，测试中可替换
type sequenceLoader interface {
	LoadSequence(sequence config.SequenceName) error
}

// GateScene 访问检查期间显示的场景
//
// Pending 显示 "Loading..."，Denied 显示固定的拒绝文字，
// Granted 时通过 SceneManager 切换到查看器场景。
type GateScene struct {
	loader   sequenceLoader
	watcher  *access.Watcher
	sequence config.SequenceName

	face          text.Face
	width, height int

	handedOff bool
	loadErr   error
}

// NewGateScene 创建访问检查场景
//
// 参数：
//   - sm: 场景管理器，授权后调用其 LoadSequence
//   - watcher: 已启动的访问检查
//   - sequence: 授权后显示的序列
func NewGateScene(sm *game.SceneManager, watcher *access.Watcher, sequence config.SequenceName) *GateScene {
	return newGateScene(sm, watcher, sequence)
}

func newGateScene(loader sequenceLoader, watcher *access.Watcher, sequence config.SequenceName) *GateScene {
	return &GateScene{
		loader:   loader,
		watcher:  watcher,
		sequence: sequence,
		face:     utils.DefaultFace(),
		width:    config.ViewportWidth,
		height:   config.ViewportHeight,
	}
}

// Update 检查访问结果
func (s *GateScene) Update(deltaTime float64) {
	if s.handedOff || s.watcher.Decision() != access.Granted {
		return
	}
	s.handedOff = true
	if err := s.loader.LoadSequence(s.sequence); err != nil {
		log.Printf("[GateScene] failed to open %s: %v", s.sequence, err)
		s.loadErr = err
	}
}

// Message 当前应显示的文字
func (s *GateScene) Message() string {
	if s.loadErr != nil {
		return s.loadErr.Error()
	}
	switch s.watcher.Decision() {
	case access.Denied:
		return config.GateDeniedText
	default:
		// Granted 在切换前的最后一帧仍显示加载提示
		return config.GatePendingText
	}
}

// Draw 绘制提示文字
func (s *GateScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	utils.DrawCenteredText(screen, s.Message(), s.face,
		float64(s.width)/2, float64(s.height)/2, float64(s.width)-40, color.White)
}

// Resize 实现 game.Resizable
func (s *GateScene) Resize(width, height int) {
	s.width, s.height = width, height
}
