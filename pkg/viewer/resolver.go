package viewer

import (
	"strconv"
	"strings"

	"github.com/decker502/scanscroll/pkg/config"
)

// Resolver 帧地址解析函数：(序列, 帧号从 1 开始) -> 地址
// 必须是确定性的纯函数
type Resolver func(sequence config.SequenceName, frame int) string

// PatternResolver 基于模板的解析器
// 模板中的 {sequence} 与 {frame} 会被替换，例如 "images/{sequence}/img{frame}.jpg"
func PatternResolver(pattern string) Resolver {
	return func(sequence config.SequenceName, frame int) string {
		r := strings.NewReplacer(
			"{sequence}", string(sequence),
			"{frame}", strconv.Itoa(frame),
		)
		return r.Replace(pattern)
	}
}
