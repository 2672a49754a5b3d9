package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration 默认合并窗口
const DefaultDebounceDuration = 250 * time.Millisecond

// dirDebouncer 按目录合并变化通知
//
// 同一目录在窗口内的多次 Trigger 只产生一次 fire；
// 不同目录各自计时，互不取消。
type dirDebouncer struct {
	duration time.Duration
	fire     func(dir string)

	mu      sync.Mutex
	pending map[string]*pendingFire
	seq     uint64
}

type pendingFire struct {
	timer *time.Timer
	seq   uint64
}

// newDirDebouncer 创建按目录合并的 debouncer，duration 为 0 时使用默认窗口
func newDirDebouncer(duration time.Duration, fire func(dir string)) *dirDebouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &dirDebouncer{
		duration: duration,
		fire:     fire,
		pending:  make(map[string]*pendingFire),
	}
}

// Trigger 重新开始 dir 的窗口
func (d *dirDebouncer) Trigger(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if p, ok := d.pending[dir]; ok {
		p.timer.Stop()
	}
	d.pending[dir] = &pendingFire{
		seq: seq,
		timer: time.AfterFunc(d.duration, func() {
			d.mu.Lock()
			// 计时器已触发，但窗口已被重置或取消
			if p, ok := d.pending[dir]; !ok || p.seq != seq {
				d.mu.Unlock()
				return
			}
			delete(d.pending, dir)
			d.mu.Unlock()

			d.fire(dir)
		}),
	}
}

// Cancel 丢弃 dir 尚未发出的通知
func (d *dirDebouncer) Cancel(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[dir]; ok {
		p.timer.Stop()
		delete(d.pending, dir)
	}
}

// CancelAll 丢弃全部尚未发出的通知
func (d *dirDebouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for dir, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, dir)
	}
}

// Pending 等待发出通知的目录数
func (d *dirDebouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
