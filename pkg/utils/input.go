// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ScrollInput 一帧内与浏览相关的输入
// 由 ReadScrollInput 从 ebiten 采集，场景只消费这个结构
type ScrollInput struct {
	// DeltaY 滚动像素，正数向下（滚轮与拖拽合计）
	DeltaY float64
	// FrameStep 逐帧步进（方向键），正数向后
	FrameStep int
	// PageStep 整屏滚动（PageUp/PageDown），正数向下
	PageStep int
	// SelectSequence 数字键选择的序列序号（1 起），0 表示没有
	SelectSequence int
	// NextSequence Tab 切换到下一个序列
	NextSequence bool
}

// Empty 本帧没有任何输入
func (in ScrollInput) Empty() bool {
	return in == ScrollInput{}
}

// sequenceKeys 数字键与序列序号的对应
var sequenceKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// WheelToPixels 把滚轮刻度换算为像素
// ebiten 的滚轮值向上为正，这里翻转为向下为正
func WheelToPixels(wheelY, pixelsPerNotch float64) float64 {
	return -wheelY * pixelsPerNotch
}

// ReadScrollInput 采集本帧输入
//
// 参数：
//   - drag: 拖拽跟踪器，跨帧保存指针位置
//   - pixelsPerNotch: 每个滚轮刻度对应的像素
func ReadScrollInput(drag *DragTracker, pixelsPerNotch float64) ScrollInput {
	var in ScrollInput

	_, wy := ebiten.Wheel()
	in.DeltaY = WheelToPixels(wy, pixelsPerNotch)

	pressed, _, y := GetPointerState()
	in.DeltaY += drag.Feed(pressed, y)

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		in.FrameStep++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		in.FrameStep--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		in.PageStep++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		in.PageStep--
	}

	for i, key := range sequenceKeys {
		if inpututil.IsKeyJustPressed(key) {
			in.SelectSequence = i + 1
			break
		}
	}
	in.NextSequence = inpututil.IsKeyJustPressed(ebiten.KeyTab)

	return in
}

// GetPointerState 获取指针的完整状态
// 返回：是否按下、X坐标、Y坐标
func GetPointerState() (pressed bool, x, y int) {
	// 检查触摸
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y = ebiten.TouchPosition(touchIDs[0])
		return true, x, y
	}

	// 检查鼠标
	x, y = ebiten.CursorPosition()
	pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	return pressed, x, y
}

// ============================================================================
// 拖拽跟踪 - 触摸/鼠标拖动转换为滚动量
// ============================================================================

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
)

// DragTracker 把指针的竖直拖动换算为滚动像素
// 手指向上拖动内容向下滚动，与触摸屏上的页面滚动一致
type DragTracker struct {
	state DragState
	lastY int
}

// NewDragTracker 创建拖拽跟踪器
func NewDragTracker() *DragTracker {
	return &DragTracker{}
}

// Feed 输入本帧的指针状态，返回本帧应滚动的像素
func (d *DragTracker) Feed(pressed bool, y int) float64 {
	if !pressed {
		d.state = DragStateNone
		return 0
	}
	if d.state == DragStateNone {
		// 按下的第一帧只记录起点
		d.state = DragStateDragging
		d.lastY = y
		return 0
	}
	delta := d.lastY - y
	d.lastY = y
	return float64(delta)
}

// Reset 重置拖拽状态
func (d *DragTracker) Reset() {
	d.state = DragStateNone
	d.lastY = 0
}

// GetState 获取当前拖拽状态
func (d *DragTracker) GetState() DragState {
	return d.state
}

// IsDragging 是否正在拖拽
func (d *DragTracker) IsDragging() bool {
	return d.state == DragStateDragging
}
