// Package watcher 监听帧目录变化，用于热重载当前序列
package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher 监听单个目录，变化经过合并后从 Changes 通道发出
//
// 同一时间只监听一个目录；调用 Watch 切换目录时旧目录的监听被移除，
// 尚未发出的旧目录通知也会被取消。
type DirWatcher struct {
	fsw       *fsnotify.Watcher
	debouncer *dirDebouncer
	changes   chan string

	mu      sync.Mutex
	current string

	done chan struct{}
	once sync.Once
}

// New 创建目录监听器
//
// 参数：
//   - debounce: 合并窗口，0 表示默认值
func New(debounce time.Duration) (*DirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &DirWatcher{
		fsw:     fsw,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	w.debouncer = newDirDebouncer(debounce, w.notify)
	go w.run()
	return w, nil
}

// Watch 切换到监听 dir
func (w *DirWatcher) Watch(dir string) error {
	dir = filepath.Clean(dir)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.current {
		return nil
	}
	if w.current != "" {
		if err := w.fsw.Remove(w.current); err != nil {
			log.Printf("[Watcher] remove %s: %v", w.current, err)
		}
		w.debouncer.Cancel(w.current)
	}
	if err := w.fsw.Add(dir); err != nil {
		w.current = ""
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.current = dir
	log.Printf("[Watcher] watching %s", dir)
	return nil
}

// Changes 目录变化通知，值为发生变化的目录
// 通道容量为 1，消费不及时时多次变化合并为一次
func (w *DirWatcher) Changes() <-chan string {
	return w.changes
}

func (w *DirWatcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.trigger(filepath.Dir(ev.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] error: %v", err)
		case <-w.done:
			return
		}
	}
}

// trigger 只合并当前目录的事件，切换前已排队的旧目录事件直接丢弃
func (w *DirWatcher) trigger(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.current {
		return
	}
	w.debouncer.Trigger(dir)
}

func (w *DirWatcher) notify(dir string) {
	select {
	case w.changes <- dir:
	default:
	}
}

// Close 停止监听
func (w *DirWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.debouncer.CancelAll()
		err = w.fsw.Close()
	})
	return err
}
