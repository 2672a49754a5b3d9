package viewer

import (
	"math"

	"github.com/decker502/scanscroll/pkg/config"
)

// ScrollEvent 滚动事件
type ScrollEvent struct {
	ScrollTop    float64
	ClientHeight float64
}

// ScrollSurface 可滚动表面
//
// 内容高度 = clientHeight * ScrollExtentPercent(frameCount) / 100，
// 滚动偏移限制在 [0, scrollHeight-clientHeight]。
// 每次偏移变化都会同步派发给所有订阅者，不做合并。
// 隐藏状态不影响订阅，加载期间订阅保持有效。
type ScrollSurface struct {
	outerWidth     float64
	clientHeight   float64
	scrollbarWidth float64
	scrollTop      float64
	frameCount     int
	hidden         bool

	listeners map[int]func(ScrollEvent)
	nextID    int
}

// NewScrollSurface 创建可滚动表面
//
// 参数：
//   - width, height: 外层视口尺寸（像素）
//   - scrollbarWidth: 内容溢出时滚动条占用的宽度
func NewScrollSurface(width, height, scrollbarWidth float64) *ScrollSurface {
	return &ScrollSurface{
		outerWidth:     width,
		clientHeight:   height,
		scrollbarWidth: scrollbarWidth,
		hidden:         true,
		listeners:      make(map[int]func(ScrollEvent)),
	}
}

// NewDefaultScrollSurface 使用默认视口尺寸创建表面
func NewDefaultScrollSurface() *ScrollSurface {
	return NewScrollSurface(config.ViewportWidth, config.ViewportHeight, config.ScrollbarWidth)
}

// OnScroll 订阅滚动事件，返回取消订阅函数
func (s *ScrollSurface) OnScroll(fn func(ScrollEvent)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

// ListenerCount 当前订阅数
func (s *ScrollSurface) ListenerCount() int {
	return len(s.listeners)
}

// SetFrameCount 设置帧数（决定内容高度）并重新限制滚动偏移
func (s *ScrollSurface) SetFrameCount(frameCount int) {
	s.frameCount = frameCount
	s.ScrollTo(s.scrollTop)
}

// ScrollHeight 内容总高度
func (s *ScrollSurface) ScrollHeight() float64 {
	return s.clientHeight * ScrollExtentPercent(s.frameCount) / 100
}

// MaxScrollTop 最大滚动偏移
func (s *ScrollSurface) MaxScrollTop() float64 {
	return math.Max(0, s.ScrollHeight()-s.clientHeight)
}

// Overflowing 内容是否超出视口（决定是否渲染滚动条）
func (s *ScrollSurface) Overflowing() bool {
	return s.ScrollHeight() > s.clientHeight
}

// ScrollTo 设置绝对滚动偏移，变化时派发滚动事件
func (s *ScrollSurface) ScrollTo(top float64) {
	if math.IsNaN(top) {
		return
	}
	top = math.Max(0, math.Min(s.MaxScrollTop(), top))
	if top == s.scrollTop {
		return
	}
	s.scrollTop = top
	s.dispatch()
}

// ScrollBy 相对滚动
func (s *ScrollSurface) ScrollBy(delta float64) {
	s.ScrollTo(s.scrollTop + delta)
}

// Resize 视口尺寸变化
func (s *ScrollSurface) Resize(width, height float64) {
	s.outerWidth = width
	s.clientHeight = height
	s.ScrollTo(s.scrollTop)
}

func (s *ScrollSurface) dispatch() {
	ev := ScrollEvent{ScrollTop: s.scrollTop, ClientHeight: s.clientHeight}
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// ScrollTop 当前滚动偏移
func (s *ScrollSurface) ScrollTop() float64 {
	return s.scrollTop
}

// ClientHeight 视口高度
func (s *ScrollSurface) ClientHeight() float64 {
	return s.clientHeight
}

// OuterWidth 外层裁剪容器宽度
func (s *ScrollSurface) OuterWidth() float64 {
	return s.outerWidth
}

// InnerWidth 可滚动元素的内容宽度（扣除滚动条）
func (s *ScrollSurface) InnerWidth() float64 {
	if s.Overflowing() {
		return s.outerWidth - s.scrollbarWidth
	}
	return s.outerWidth
}

// ScrollbarWidth 滚动条宽度
func (s *ScrollSurface) ScrollbarWidth() float64 {
	return s.scrollbarWidth
}

// SetHidden 设置可见性；隐藏时仍保持挂载与订阅
func (s *ScrollSurface) SetHidden(hidden bool) {
	s.hidden = hidden
}

// Hidden 是否隐藏
func (s *ScrollSurface) Hidden() bool {
	return s.hidden
}
