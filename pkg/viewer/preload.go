package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/scanscroll/pkg/config"
)

// AssetLoader 异步资源加载能力
// Load 在调用方的 goroutine 中阻塞执行，返回 nil 表示成功
type AssetLoader interface {
	Load(ctx context.Context, url string) error
}

// AssetLoaderFunc 函数适配器
type AssetLoaderFunc func(ctx context.Context, url string) error

// Load 实现 AssetLoader
func (f AssetLoaderFunc) Load(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Status 预加载/查看器状态
type Status int

const (
	StatusInit Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "INIT"
	case StatusLoading:
		return "LOADING"
	case StatusReady:
		return "READY"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	// ErrPreloadTimeout 预加载在策略规定时间内未完成
	ErrPreloadTimeout = errors.New("preload timed out")
	// ErrFrameLoad 单帧加载失败（仅 FailFast 策略下上报）
	ErrFrameLoad = errors.New("frame failed to load")
)

// PreloadPolicy 加载失败处理策略
//
// 零值即默认行为：失败的帧从不计数，也不上报，
// 查看器停留在 LOADING 直到切换序列。
type PreloadPolicy struct {
	// Timeout 大于 0 时，超时未就绪则进入 FAILED
	Timeout time.Duration
	// FailFast 为 true 时，任意一帧失败立即进入 FAILED
	FailFast bool
}

// completion 一次加载完成记录，带代号
type completion struct {
	gen   uint64
	frame int
	err   error
}

// activation 某个序列的一次预加载生命周期
// 切换序列时整体替换，旧的 activation 不会再被读取
type activation struct {
	gen      uint64
	sequence config.SequenceName
	total    int
	loaded   map[int]struct{}
	failed   map[int]error
	events   chan completion
	cancel   context.CancelFunc
	started  time.Time
	status   Status
	err      error
}

// PreloadTracker 帧预加载跟踪器
//
// 每次 Track 都会生成新的 activation（代号单调递增），并取消旧 activation 的上下文。
// 加载 goroutine 只向所属 activation 的缓冲通道发送完成记录；
// 计数只在 Drain/WaitReady 的调用方 goroutine（游戏循环）中修改。
type PreloadTracker struct {
	loader  AssetLoader
	resolve Resolver
	policy  PreloadPolicy
	now     func() time.Time

	gen    uint64
	active *activation
}

// NewPreloadTracker 创建预加载跟踪器
//
// 参数：
//   - loader: 资源加载能力
//   - resolve: 帧地址解析函数
//   - policy: 失败策略，零值为静默等待
func NewPreloadTracker(loader AssetLoader, resolve Resolver, policy PreloadPolicy) *PreloadTracker {
	return &PreloadTracker{
		loader:  loader,
		resolve: resolve,
		policy:  policy,
		now:     time.Now,
	}
}

// Track 开始预加载指定序列的全部帧（帧号 1..frameCount）
//
// 旧 activation 的完成记录此后全部丢弃；已发出的加载不会被强制终止。
//
// 返回：
//   - uint64: 本次 activation 的代号
func (t *PreloadTracker) Track(ctx context.Context, sequence config.SequenceName, frameCount int) uint64 {
	t.stopActive()

	t.gen++
	actx, cancel := context.WithCancel(ctx)
	bufSize := frameCount
	if bufSize < 1 {
		bufSize = 1
	}
	a := &activation{
		gen:      t.gen,
		sequence: sequence,
		total:    frameCount,
		loaded:   make(map[int]struct{}, frameCount),
		failed:   make(map[int]error),
		events:   make(chan completion, bufSize),
		cancel:   cancel,
		started:  t.now(),
		status:   StatusLoading,
	}
	t.active = a

	log.Printf("[Preload] gen=%d sequence=%s frames=%d", a.gen, sequence, frameCount)

	if frameCount < 1 {
		a.status = StatusReady
		return a.gen
	}

	for n := 1; n <= frameCount; n++ {
		url := t.resolve(sequence, n)
		go func(gen uint64, frame int, url string) {
			err := t.loader.Load(actx, url)
			select {
			case a.events <- completion{gen: gen, frame: frame, err: err}:
			case <-actx.Done():
			}
		}(a.gen, n, url)
	}

	return a.gen
}

// Stop 结束当前 activation（组件卸载）
func (t *PreloadTracker) Stop() {
	t.stopActive()
}

func (t *PreloadTracker) stopActive() {
	if t.active == nil {
		return
	}
	t.active.cancel()
	log.Printf("[Preload] gen=%d detached (%d/%d loaded)", t.active.gen, len(t.active.loaded), t.active.total)
	t.active = nil
}

// Drain 应用所有已到达的完成记录，不阻塞
// 应在游戏循环的 Update 中调用
func (t *PreloadTracker) Drain() Status {
	a := t.active
	if a == nil {
		return StatusInit
	}
	for {
		select {
		case c := <-a.events:
			t.apply(c)
		default:
			t.checkTimeout()
			return t.Status()
		}
	}
}

// WaitReady 阻塞直到就绪、失败或 ctx 结束
// 与 Drain 一样只能在拥有跟踪器的 goroutine 中调用
func (t *PreloadTracker) WaitReady(ctx context.Context) error {
	a := t.active
	if a == nil {
		return errors.New("preload: no active sequence")
	}

	var deadline <-chan time.Time
	if t.policy.Timeout > 0 {
		timer := time.NewTimer(t.policy.Timeout - t.now().Sub(a.started))
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		switch a.status {
		case StatusReady:
			return nil
		case StatusFailed:
			return a.err
		}
		select {
		case c := <-a.events:
			t.apply(c)
		case <-deadline:
			t.fail(a, ErrPreloadTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *PreloadTracker) apply(c completion) {
	a := t.active
	if a == nil || c.gen != a.gen {
		log.Printf("[Preload] drop stale completion gen=%d frame=%d", c.gen, c.frame)
		return
	}
	if a.status != StatusLoading {
		return
	}

	if c.err != nil {
		a.failed[c.frame] = c.err
		log.Printf("[Preload] frame %d of %s failed: %v", c.frame, a.sequence, c.err)
		if t.policy.FailFast {
			t.fail(a, fmt.Errorf("%w: %s frame %d: %v", ErrFrameLoad, a.sequence, c.frame, c.err))
		}
		return
	}

	if _, dup := a.loaded[c.frame]; dup {
		return
	}
	a.loaded[c.frame] = struct{}{}

	if len(a.loaded) >= a.total {
		a.status = StatusReady
		log.Printf("[Preload] %s ready (%d frames)", a.sequence, a.total)
	}
}

func (t *PreloadTracker) checkTimeout() {
	a := t.active
	if a == nil || a.status != StatusLoading || t.policy.Timeout <= 0 {
		return
	}
	if t.now().Sub(a.started) >= t.policy.Timeout {
		t.fail(a, ErrPreloadTimeout)
	}
}

func (t *PreloadTracker) fail(a *activation, err error) {
	if a.status != StatusLoading {
		return
	}
	a.status = StatusFailed
	a.err = err
	log.Printf("[Preload] %s failed: %v", a.sequence, err)
}

// Status 当前状态
func (t *PreloadTracker) Status() Status {
	if t.active == nil {
		return StatusInit
	}
	return t.active.status
}

// IsReady 当前序列是否全部加载完成
func (t *PreloadTracker) IsReady() bool {
	return t.Status() == StatusReady
}

// Progress 已加载帧数与总帧数
func (t *PreloadTracker) Progress() (loaded, total int) {
	if t.active == nil {
		return 0, 0
	}
	return len(t.active.loaded), t.active.total
}

// FailedFrames 当前 activation 中加载失败的帧数
func (t *PreloadTracker) FailedFrames() int {
	if t.active == nil {
		return 0
	}
	return len(t.active.failed)
}

// Err 进入 FAILED 的原因
func (t *PreloadTracker) Err() error {
	if t.active == nil {
		return nil
	}
	return t.active.err
}

// Generation 当前 activation 代号，未启动时为 0
func (t *PreloadTracker) Generation() uint64 {
	if t.active == nil {
		return 0
	}
	return t.active.gen
}

// Sequence 当前跟踪的序列
func (t *PreloadTracker) Sequence() config.SequenceName {
	if t.active == nil {
		return ""
	}
	return t.active.sequence
}
