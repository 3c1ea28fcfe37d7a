package scenario

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"carlo/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ChangeListener 在场景变更后触发。
type ChangeListener func(Scenario)

// Registry 管理场景文件与行情簿的绑定：启动时加载一次，
// 可选监听文件变更做热更新（重新定价无需重启，也无需重建任何过程对象）。
type Registry struct {
	path string
	book *Book
	v    *viper.Viper

	mu        sync.RWMutex
	current   Scenario
	loadedAt  time.Time
	listeners []ChangeListener
}

// NewRegistry 加载场景文件并写入行情簿；watch 为 true 时监听文件更新。
func NewRegistry(path string, book *Book, watch bool) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("scenario registry requires path")
	}
	if book == nil {
		return nil, fmt.Errorf("book 不能为空")
	}
	r := &Registry{path: path, book: book}
	if err := r.reload(); err != nil {
		return nil, err
	}
	if watch {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read scenario file failed: %w", err)
		}
		v.OnConfigChange(func(evt fsnotify.Event) {
			if err := r.reload(); err != nil {
				logger.Errorf("scenario reload failed: %v", err)
				return
			}
			logger.Infof("scenario 热更新生效 (%s)", evt.Name)
			r.notifyListeners()
		})
		v.WatchConfig()
		r.v = v
	}
	return r, nil
}

func (r *Registry) reload() error {
	s, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	r.book.Apply(s)
	r.mu.Lock()
	r.current = s
	r.loadedAt = time.Now()
	r.mu.Unlock()
	return nil
}

// Snapshot 返回行情簿当前值（包含行情源的单项刷新，而非仅文件内容）。
func (r *Registry) Snapshot() (Scenario, error) {
	return r.book.Snapshot()
}

// Override 合并一份 JSON 局部覆盖并写入行情簿。
func (r *Registry) Override(raw []byte) (Scenario, error) {
	base, err := r.book.Snapshot()
	if err != nil {
		return Scenario{}, err
	}
	next, err := base.ApplyOverride(raw)
	if err != nil {
		return Scenario{}, err
	}
	r.book.Apply(next)
	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	r.notifyListeners()
	return next, nil
}

// OnChange 注册变更监听。
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Registry) notifyListeners() {
	r.mu.RLock()
	listeners := append([]ChangeListener(nil), r.listeners...)
	current := r.current
	r.mu.RUnlock()
	for _, fn := range listeners {
		func() {
			defer safeRecover("scenario listener")
			fn(current)
		}()
	}
}

func safeRecover(tag string) {
	if rec := recover(); rec != nil {
		logger.Errorf("%s panic: %v", tag, rec)
	}
}
