package utils

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// defaultFace 内置位图字体，不依赖字体文件
var defaultFace text.Face = text.NewGoXFace(basicfont.Face7x13)

// DefaultFace 返回状态文本使用的字体
func DefaultFace() text.Face {
	return defaultFace
}

// WrapText 将文本按指定宽度自动换行
// 参数:
//   - textStr: 要换行的文本
//   - font: 字体
//   - maxWidth: 最大宽度（像素）
//
// 返回:
//   - []string: 换行后的文本数组（每个元素为一行）
//
// 优先在空格处断行，单词本身超宽时整词成行
func WrapText(textStr string, font text.Face, maxWidth float64) []string {
	if textStr == "" || font == nil || maxWidth <= 0 {
		return []string{textStr}
	}
	if measureTextWidth(textStr, font) <= maxWidth {
		return []string{textStr}
	}

	var lines []string
	currentLine := ""
	for _, word := range strings.Fields(textStr) {
		testLine := word
		if currentLine != "" {
			testLine = currentLine + " " + word
		}
		if currentLine != "" && measureTextWidth(testLine, font) > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
			continue
		}
		currentLine = testLine
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	if len(lines) == 0 {
		lines = []string{textStr}
	}
	return lines
}

// DrawCenteredText 在 (cx, cy) 居中绘制文本，超宽时自动换行
func DrawCenteredText(screen *ebiten.Image, str string, font text.Face, cx, cy, maxWidth float64, clr color.Color) {
	lines := WrapText(str, font, maxWidth)
	lineHeight := font.Metrics().HAscent + font.Metrics().HDescent
	top := cy - lineHeight*float64(len(lines))/2

	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(cx, top+lineHeight*float64(i))
		op.ColorScale.ScaleWithColor(clr)
		op.PrimaryAlign = text.AlignCenter
		text.Draw(screen, line, font, op)
	}
}

// measureTextWidth 测量文本宽度
func measureTextWidth(textStr string, font text.Face) float64 {
	if textStr == "" || font == nil {
		return 0
	}
	width, _ := text.Measure(textStr, font, 0)
	return width
}
