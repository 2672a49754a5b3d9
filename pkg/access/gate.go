// Package access 提供访问控制的三态结果
//
// 访问检查本身是外部能力（不透明的布尔判定），这里只负责
// 异步执行检查并把结果暴露为 Pending / Denied / Granted。
package access

import (
	"context"
	"log"
	"sync"
)

// Decision 访问检查结果
type Decision int

const (
	Pending Decision = iota
	Denied
	Granted
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// Gate 访问检查能力
// Check 可以阻塞，返回 Granted 或 Denied
type Gate interface {
	Check(ctx context.Context) (Decision, error)
}

// GateFunc 函数适配器
type GateFunc func(ctx context.Context) (Decision, error)

// Check 实现 Gate
func (f GateFunc) Check(ctx context.Context) (Decision, error) {
	return f(ctx)
}

// StaticGate 固定结果的访问检查（来自配置）
type StaticGate struct {
	Allow bool
}

// Check 实现 Gate
func (g StaticGate) Check(ctx context.Context) (Decision, error) {
	if g.Allow {
		return Granted, nil
	}
	return Denied, nil
}

// Watcher 在后台执行一次访问检查
// 检查完成前 Decision 返回 Pending；出错视为 Denied，不重试
type Watcher struct {
	mu       sync.RWMutex
	decision Decision
	err      error
	done     chan struct{}
}

// Start 启动后台检查
func Start(ctx context.Context, gate Gate) *Watcher {
	w := &Watcher{
		decision: Pending,
		done:     make(chan struct{}),
	}
	go w.run(ctx, gate)
	return w
}

func (w *Watcher) run(ctx context.Context, gate Gate) {
	defer close(w.done)

	decision, err := gate.Check(ctx)
	if err != nil || decision == Pending {
		if err != nil {
			log.Printf("[Access] check failed: %v", err)
		}
		decision = Denied
	}

	w.mu.Lock()
	w.decision = decision
	w.err = err
	w.mu.Unlock()

	log.Printf("[Access] decision: %s", decision)
}

// Decision 当前结果
func (w *Watcher) Decision() Decision {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.decision
}

// Err 检查失败的原因（如有）
func (w *Watcher) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// Done 检查结束时关闭
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
