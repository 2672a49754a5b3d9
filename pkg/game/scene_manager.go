package game

import (
	"log"

	"github.com/decker502/scanscroll/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 用于创建指定序列的查看器场景，避免 game 与 scenes 之间的循环依赖
type SceneFactory func(sequence config.SequenceName) (Scene, error)

// SceneManager manages the viewer's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is closed if it implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene == scene {
		return
	}
	if closer, ok := sm.currentScene.(Closer); ok {
		closer.Close()
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有活动场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadSequence 通过工厂创建指定序列的查看器场景并切换过去
//
// 返回：
//   - error: 工厂未设置或创建失败（例如未知序列）时返回错误，当前场景保持不变
func (sm *SceneManager) LoadSequence(sequence config.SequenceName) error {
	log.Printf("[SceneManager] 加载序列: %s", sequence)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return errNoSceneFactory
	}

	newScene, err := sm.sceneFactory(sequence)
	if err != nil {
		log.Printf("[SceneManager] 错误: 无法创建查看器场景: %v", err)
		return err
	}
	sm.SwitchTo(newScene)
	return nil
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Resize forwards a viewport size change to the active scene if it implements Resizable.
func (sm *SceneManager) Resize(width, height int) {
	if r, ok := sm.currentScene.(Resizable); ok {
		r.Resize(width, height)
	}
}

// Close closes the active scene.
func (sm *SceneManager) Close() {
	sm.SwitchTo(nil)
}
