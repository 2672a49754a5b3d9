package viewer

import (
	"context"
	"sync"
	"testing"
	"time"
)

// manualLoader 由测试控制完成时机的加载器
type manualLoader struct {
	mu      sync.Mutex
	results map[string]chan error
	calls   map[string]int
}

func newManualLoader() *manualLoader {
	return &manualLoader{
		results: make(map[string]chan error),
		calls:   make(map[string]int),
	}
}

func (l *manualLoader) slot(url string) chan error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.results[url]
	if !ok {
		ch = make(chan error, 1)
		l.results[url] = ch
	}
	return ch
}

func (l *manualLoader) Load(ctx context.Context, url string) error {
	l.mu.Lock()
	l.calls[url]++
	l.mu.Unlock()

	select {
	case err := <-l.slot(url):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish 让 url 的加载以 err 结束（nil 表示成功）
func (l *manualLoader) finish(url string, err error) {
	l.slot(url) <- err
}

func (l *manualLoader) callCount(url string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[url]
}

// drainUntil 反复 Drain 直到 cond 成立或超时
func drainUntil(t *testing.T, drain func(), cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		drain()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
