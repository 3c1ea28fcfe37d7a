package quote

import "sync"

// link 是 Handle 副本之间共享的间接层。
type link struct {
	mu sync.RWMutex
	q  Quote
}

// Handle 是指向 Quote 的共享重绑定句柄：复制 Handle 复制的是间接层而非数值，
// 对任一副本 Link 新的数据源，其余副本在下一次读取即观察到新值，
// 持有方无需重建。语义对应 Observer 模式里的共享可换链接。
//
// Handle 必须通过 NewHandle 创建；零值 Handle 读取恒为未绑定，且无法 Link。
type Handle struct {
	l *link
}

// NewHandle 创建句柄，q 可以为 nil（未绑定状态）。
func NewHandle(q Quote) Handle {
	return Handle{l: &link{q: q}}
}

// Link 重绑定数据源，传 nil 回到未绑定状态。
// 所有共享同一间接层的副本同时生效；与并发读竞争时读方看到新旧值之一，不会读坏。
func (h Handle) Link(q Quote) {
	if h.l == nil {
		return
	}
	h.l.mu.Lock()
	h.l.q = q
	h.l.mu.Unlock()
}

// IsBound 报告当前读取是否会成功。
func (h Handle) IsBound() bool {
	if h.l == nil {
		return false
	}
	h.l.mu.RLock()
	q := h.l.q
	h.l.mu.RUnlock()
	return q != nil && q.IsValid()
}

// Value 读取当前值；未绑定（或数据源无效）时返回 ErrUnbound。
func (h Handle) Value() (float64, error) {
	if h.l == nil {
		return 0, ErrUnbound
	}
	h.l.mu.RLock()
	q := h.l.q
	h.l.mu.RUnlock()
	if q == nil || !q.IsValid() {
		return 0, ErrUnbound
	}
	return q.Value(), nil
}
