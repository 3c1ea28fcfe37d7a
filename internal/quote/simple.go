package quote

import "sync"

// SimpleQuote 是可写入的标量行情，读写并发安全。
// 新建的空 SimpleQuote 在第一次 SetValue 之前无效。
type SimpleQuote struct {
	mu    sync.RWMutex
	value float64
	valid bool
}

func NewSimpleQuote(v float64) *SimpleQuote {
	return &SimpleQuote{value: v, valid: true}
}

// NewEmptyQuote 返回尚未赋值的 SimpleQuote。
func NewEmptyQuote() *SimpleQuote {
	return &SimpleQuote{}
}

func (q *SimpleQuote) Value() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.value
}

func (q *SimpleQuote) IsValid() bool {
	if q == nil {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.valid
}

// SetValue 更新标量，所有持有该 quote 的 Handle 在下一次读取立即可见。
func (q *SimpleQuote) SetValue(v float64) {
	q.mu.Lock()
	q.value = v
	q.valid = true
	q.mu.Unlock()
}

// Reset 清空数值，quote 回到无效状态。
func (q *SimpleQuote) Reset() {
	q.mu.Lock()
	q.value = 0
	q.valid = false
	q.mu.Unlock()
}
