//go:build mobile

// embed.go - 移动端资源嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// 构建前需要把 data/ 与 images/ 复制到此目录：
//
//	cp -r data images mobile/
//	go build -tags mobile ./mobile
package mobile

import "embed"

//go:embed data/catalog.yaml
var dataFS embed.FS

//go:embed all:images
var framesFS embed.FS
