package viewer

import (
	"log"
	"math"

	"github.com/decker502/scanscroll/pkg/config"
)

// Clamp 将帧下标限制在 [0, frameCount-1] 内
// frameCount < 1 时恒返回 0
func Clamp(x, frameCount int) int {
	if frameCount < 1 {
		return 0
	}
	if x > frameCount-1 {
		x = frameCount - 1
	}
	if x < 0 {
		x = 0
	}
	return x
}

// FrameIndex 将滚动偏移换算为帧下标
//
// percent = scrollTop / clientHeight（滚动了多少个视口高度）
// raw = floor(percent * 100 / StepPercent)，再做 Clamp。
// 结果只取决于这三个输入。
//
// 参数：
//   - scrollTop: 当前滚动偏移（像素）
//   - clientHeight: 视口高度（像素），<= 0 时返回 0
//   - frameCount: 序列帧数
func FrameIndex(scrollTop, clientHeight float64, frameCount int) int {
	if clientHeight <= 0 {
		return 0
	}
	percent := scrollTop / clientHeight
	raw := math.Floor(percent * 100 / config.StepPercent)
	if math.IsNaN(raw) {
		return 0
	}
	if raw > math.MaxInt32 {
		raw = math.MaxInt32
	}
	if raw < math.MinInt32 {
		raw = math.MinInt32
	}
	return Clamp(int(raw), frameCount)
}

// ScrollExtentPercent 可滚动内容高度（视口高度的百分比）
// = StepPercent * frameCount + 100，保证最后一帧在滚动到底时恰好可达
func ScrollExtentPercent(frameCount int) float64 {
	return float64(config.StepPercent*frameCount + 100)
}

// Compensation 滚动条补偿位移
type Compensation struct {
	InnerTranslateX float64 // 可滚动元素向右平移量
	OuterTranslateX float64 // 外层裁剪容器向左平移量（负数）
}

// ComputeCompensation 根据外层宽度与内层可用宽度计算补偿位移
//
// 差值即滚动条宽度：内层右移差值把滚动条推出裁剪区域，
// 外层左移一半差值让内容保持居中。
func ComputeCompensation(outerWidth, innerWidth float64) Compensation {
	diff := outerWidth - innerWidth
	return Compensation{
		InnerTranslateX: diff,
		OuterTranslateX: -diff / 2,
	}
}

// Geometry 视口几何信息提供者
type Geometry interface {
	OuterWidth() float64
	InnerWidth() float64
}

// ScrollMapper 把可滚动表面的滚动事件映射为当前帧下标
//
// 每次挂载只订阅一次滚动事件，卸载时取消订阅。
// 帧下标变化不会重新订阅。
type ScrollMapper struct {
	frameCount   int
	index        int
	compensation Compensation

	surface     *ScrollSurface
	unsubscribe func()

	// OnIndexChange 帧下标变化时回调，可为 nil
	OnIndexChange func(index int)
}

// NewScrollMapper 创建映射器
func NewScrollMapper(frameCount int) *ScrollMapper {
	return &ScrollMapper{frameCount: frameCount}
}

// Mount 绑定可滚动表面并订阅滚动事件
// 对同一表面重复调用不会重复订阅；绑定新表面前会先解绑旧表面
func (m *ScrollMapper) Mount(surface *ScrollSurface) {
	if surface == nil {
		return
	}
	if m.surface == surface && m.unsubscribe != nil {
		return
	}
	m.Unmount()

	m.surface = surface
	m.surface.SetFrameCount(m.frameCount)
	m.unsubscribe = surface.OnScroll(m.handleScroll)
	m.RecomputeCompensation()
	m.setIndex(FrameIndex(surface.ScrollTop(), surface.ClientHeight(), m.frameCount))
}

// Unmount 取消滚动订阅
func (m *ScrollMapper) Unmount() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.surface = nil
}

// Mounted 是否已绑定表面
func (m *ScrollMapper) Mounted() bool {
	return m.unsubscribe != nil
}

// Reset 切换序列时重置帧数、滚动位置与补偿
func (m *ScrollMapper) Reset(frameCount int) {
	m.frameCount = frameCount
	if m.surface != nil {
		m.surface.SetFrameCount(frameCount)
		m.surface.ScrollTo(0)
		m.RecomputeCompensation()
	}
	// ScrollTo(0) 在已位于顶部时不会派发事件
	m.setIndex(0)
}

// Resize 视口尺寸变化通知
func (m *ScrollMapper) Resize(width, height float64) {
	if m.surface == nil {
		return
	}
	m.surface.Resize(width, height)
	m.RecomputeCompensation()
	m.setIndex(FrameIndex(m.surface.ScrollTop(), m.surface.ClientHeight(), m.frameCount))
}

// RecomputeCompensation 重新测量滚动条宽度并计算补偿
func (m *ScrollMapper) RecomputeCompensation() {
	if m.surface == nil {
		return
	}
	m.compensation = computeFrom(m.surface)
}

func computeFrom(g Geometry) Compensation {
	return ComputeCompensation(g.OuterWidth(), g.InnerWidth())
}

// Index 当前帧下标
func (m *ScrollMapper) Index() int {
	return m.index
}

// FrameCount 当前序列帧数
func (m *ScrollMapper) FrameCount() int {
	return m.frameCount
}

// Compensation 当前滚动条补偿
func (m *ScrollMapper) Compensation() Compensation {
	return m.compensation
}

func (m *ScrollMapper) handleScroll(ev ScrollEvent) {
	m.setIndex(FrameIndex(ev.ScrollTop, ev.ClientHeight, m.frameCount))
}

func (m *ScrollMapper) setIndex(index int) {
	if index == m.index {
		return
	}
	log.Printf("[ScrollMapper] frame %d -> %d", m.index, index)
	m.index = index
	if m.OnIndexChange != nil {
		m.OnIndexChange(index)
	}
}
