// Package viewer 实现滚动驱动的图像序列查看器核心
//
// 包含两个部件：
//   - PreloadTracker：为当前序列预加载全部帧，全部完成后才报告就绪
//   - ScrollMapper：把可滚动表面的滚动偏移映射为受限的帧下标，并计算滚动条补偿
//
// Viewer 把两者组合成 INIT -> LOADING -> READY 的状态机，
// 切换序列时回到 LOADING 并重置全部派生状态。
package viewer

import (
	"context"
	"log"

	"github.com/decker502/scanscroll/pkg/config"
)

// Layer 一帧对应的图层
// 所有图层位置相同，只有当前帧不透明
type Layer struct {
	Frame   int     // 帧号（从 1 开始）
	URL     string  // 帧地址
	Opacity float64 // 1 或 0
}

// Options 查看器依赖
type Options struct {
	Loader   AssetLoader    // 必填
	Resolver Resolver       // 为 nil 时使用目录中的帧地址模板
	Policy   PreloadPolicy  // 零值为静默等待
	Surface  *ScrollSurface // 为 nil 时使用默认视口尺寸
}

// Viewer 查看器状态机
type Viewer struct {
	ctx     context.Context
	catalog *config.Catalog
	resolve Resolver

	tracker *PreloadTracker
	mapper  *ScrollMapper
	surface *ScrollSurface

	sequence   config.SequenceName
	frameCount int
}

// New 创建查看器并挂载滚动表面
// 此时状态为 INIT，调用 SetSequence 后开始预加载
func New(ctx context.Context, catalog *config.Catalog, opts Options) *Viewer {
	resolve := opts.Resolver
	if resolve == nil {
		resolve = PatternResolver(catalog.FramePattern())
	}
	surface := opts.Surface
	if surface == nil {
		surface = NewDefaultScrollSurface()
	}

	v := &Viewer{
		ctx:     ctx,
		catalog: catalog,
		resolve: resolve,
		tracker: NewPreloadTracker(opts.Loader, resolve, opts.Policy),
		mapper:  NewScrollMapper(0),
		surface: surface,
	}
	surface.SetHidden(true)
	v.mapper.Mount(surface)
	return v
}

// SetSequence 切换到指定序列
//
// 未知序列返回 *config.ConfigurationError，状态保持不变。
// 与当前序列相同时不做任何事（需要重新加载请调用 Reload）。
func (v *Viewer) SetSequence(name config.SequenceName) error {
	frameCount, err := v.catalog.FrameCount(name)
	if err != nil {
		log.Printf("[Viewer] %v", err)
		return err
	}
	if name == v.sequence && v.tracker.Status() != StatusInit {
		return nil
	}

	log.Printf("[Viewer] sequence %q -> %q (%d frames)", v.sequence, name, frameCount)
	v.sequence = name
	v.frameCount = frameCount
	v.activate()
	return nil
}

// Reload 重新预加载当前序列（例如帧文件发生变化）
func (v *Viewer) Reload() {
	if v.sequence == "" {
		return
	}
	log.Printf("[Viewer] reload %q", v.sequence)
	v.activate()
}

func (v *Viewer) activate() {
	v.surface.SetHidden(true)
	v.mapper.Reset(v.frameCount)
	v.tracker.Track(v.ctx, v.sequence, v.frameCount)
}

// Update 应用到达的加载完成记录并同步表面可见性
// 每个 tick 调用一次
func (v *Viewer) Update() Status {
	status := v.tracker.Drain()
	v.surface.SetHidden(status != StatusReady)
	return status
}

// Status 当前状态
func (v *Viewer) Status() Status {
	return v.tracker.Status()
}

// Loading 是否处于加载中（隐藏帧表面）
func (v *Viewer) Loading() bool {
	return v.tracker.Status() == StatusLoading
}

// Progress 加载进度
func (v *Viewer) Progress() (loaded, total int) {
	return v.tracker.Progress()
}

// Err 进入 FAILED 的原因
func (v *Viewer) Err() error {
	return v.tracker.Err()
}

// Generation 当前预加载代号，每次 SetSequence/Reload 递增
func (v *Viewer) Generation() uint64 {
	return v.tracker.Generation()
}

// Sequence 当前序列
func (v *Viewer) Sequence() config.SequenceName {
	return v.sequence
}

// FrameCount 当前序列帧数
func (v *Viewer) FrameCount() int {
	return v.frameCount
}

// FrameIndex 当前帧下标
func (v *Viewer) FrameIndex() int {
	return v.mapper.Index()
}

// Compensation 当前滚动条补偿
func (v *Viewer) Compensation() Compensation {
	return v.mapper.Compensation()
}

// Surface 可滚动表面
func (v *Viewer) Surface() *ScrollSurface {
	return v.surface
}

// ScrollBy 转发用户滚动；表面隐藏时忽略
func (v *Viewer) ScrollBy(delta float64) {
	if v.surface.Hidden() {
		return
	}
	v.surface.ScrollBy(delta)
}

// StepBy 按帧步长滚动（n 可为负）
func (v *Viewer) StepBy(n int) {
	v.ScrollBy(float64(n) * v.surface.ClientHeight() * config.StepPercent / 100)
}

// Resize 视口尺寸变化
func (v *Viewer) Resize(width, height float64) {
	if width == v.surface.OuterWidth() && height == v.surface.ClientHeight() {
		return
	}
	log.Printf("[Viewer] resize %.0fx%.0f", width, height)
	v.mapper.Resize(width, height)
}

// Remeasure 窗口尺寸变化但视口尺寸不变时重新测量补偿
func (v *Viewer) Remeasure() {
	v.mapper.RecomputeCompensation()
}

// URL 返回指定帧下标（从 0 开始）的地址
func (v *Viewer) URL(index int) string {
	return v.resolve(v.sequence, index+1)
}

// Layers 返回每帧一个图层，仅当前帧不透明
func (v *Viewer) Layers() []Layer {
	layers := make([]Layer, v.frameCount)
	current := v.mapper.Index()
	for i := range layers {
		layers[i] = Layer{
			Frame: i + 1,
			URL:   v.resolve(v.sequence, i+1),
		}
		if i == current {
			layers[i].Opacity = 1
		}
	}
	return layers
}

// Close 卸载：取消滚动订阅并停止预加载
func (v *Viewer) Close() {
	v.mapper.Unmount()
	v.tracker.Stop()
}
