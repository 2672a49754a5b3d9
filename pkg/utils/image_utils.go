package utils

import "image"

// FitWidth 计算把 src 缩放到 dstWidth 宽度所需的比例与缩放后高度
// 帧图片按视口内容宽度等比显示，高度随比例变化
//
// 返回:
//   - scale: 缩放比例，src 为空时为 0
//   - height: 缩放后的高度
func FitWidth(src image.Rectangle, dstWidth float64) (scale, height float64) {
	if src.Dx() <= 0 || dstWidth <= 0 {
		return 0, 0
	}
	scale = dstWidth / float64(src.Dx())
	return scale, float64(src.Dy()) * scale
}
