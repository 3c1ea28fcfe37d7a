package quote

import "errors"

// ErrUnbound 在读取未绑定数据源的 Handle 时返回。
var ErrUnbound = errors.New("quote handle 未绑定数据源")

// Quote 表示一个按需取值的标量行情（现价、股息率、无风险利率、波动率等）。
// Value 只在 IsValid 为 true 时有意义。
type Quote interface {
	Value() float64
	IsValid() bool
}
