package scenes

import (
	"image"
	"math"

	"github.com/decker502/scanscroll/pkg/viewer"
)

// rect 屏幕坐标系中的矩形（浮点）
type rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width 宽度
func (r rect) Width() float64 {
	return r.MaxX - r.MinX
}

// CenterX 水平中心
func (r rect) CenterX() float64 {
	return (r.MinX + r.MaxX) / 2
}

// Empty 面积为 0
func (r rect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Overlaps 两个矩形是否有公共面积（仅共享边不算）
func (r rect) Overlaps(o rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Image 取整为 image.Rectangle
func (r rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Round(r.MinX)), int(math.Round(r.MinY)),
		int(math.Round(r.MaxX)), int(math.Round(r.MaxY)),
	)
}

// viewportLayout 一帧绘制所需的几何
//
//   - Clip: 外层容器按 OuterTranslateX 平移后的裁剪区域
//   - Frame: 可滚动元素内容区（扣除滚动条后的宽度），再按 InnerTranslateX 平移
//   - Scrollbar: 可滚动元素右侧的滚动条，补偿后落在 Clip 之外
type viewportLayout struct {
	Clip      rect
	Frame     rect
	Scrollbar rect
}

// layoutViewport 计算固定视口盒子在屏幕上的几何
//
// 参数：
//   - originX, originY: 视口盒子未平移时的左上角
//   - outerWidth, innerWidth, height: 外层宽度、内容宽度、视口高度
//   - comp: 滚动条补偿
func layoutViewport(originX, originY, outerWidth, innerWidth, height float64, comp viewer.Compensation) viewportLayout {
	outerX := originX + comp.OuterTranslateX
	contentX := outerX + comp.InnerTranslateX

	return viewportLayout{
		Clip:      rect{outerX, originY, outerX + outerWidth, originY + height},
		Frame:     rect{contentX, originY, contentX + innerWidth, originY + height},
		Scrollbar: rect{contentX + innerWidth, originY, contentX + outerWidth, originY + height},
	}
}

// ScrollbarVisible 滚动条是否有部分落在裁剪区域内
func (l viewportLayout) ScrollbarVisible() bool {
	return l.Scrollbar.Overlaps(l.Clip)
}

// boxOrigin 视口盒子在屏幕中居中时的左上角；屏幕比盒子小时贴左上
func boxOrigin(screenWidth, screenHeight, boxWidth, boxHeight float64) (x, y float64) {
	return math.Max(0, (screenWidth-boxWidth)/2), math.Max(0, (screenHeight-boxHeight)/2)
}
