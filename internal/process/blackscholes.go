package process

import (
	"math"

	"carlo/internal/quote"
)

// ConstantBlackScholes 实现常系数 Black-Scholes 动态：
//
//	d ln S(t) = (r - q - σ²/2) dt + σ dW_t
//
// 四个输入都是 quote.Handle（共享重绑定句柄），每次调用现读现算，不做任何缓存：
// 外部重绑定行情后，下一次查询立即生效，过程对象无需重建，
// 正在进行的多路径模拟里不同路径可能观察到不同快照，这是刻意的设计取舍。
//
// 不校验 σ >= 0 或 x0 > 0：负值按普通数字向下游传播，由调用方把关。
type ConstantBlackScholes struct {
	x0       quote.Handle
	dividend quote.Handle
	riskFree quote.Handle
	blackVol quote.Handle

	disc Discretization
}

type Option func(*ConstantBlackScholes)

// WithDiscretization 替换单步离散化格式（默认 Euler）。
func WithDiscretization(d Discretization) Option {
	return func(p *ConstantBlackScholes) {
		if d != nil {
			p.disc = d
		}
	}
}

// NewConstantBlackScholes 按共享句柄保存四个参数（不复制底层数值）。
func NewConstantBlackScholes(x0, dividend, riskFree, blackVol quote.Handle, opts ...Option) *ConstantBlackScholes {
	p := &ConstantBlackScholes{
		x0:       x0,
		dividend: dividend,
		riskFree: riskFree,
		blackVol: blackVol,
		disc:     Euler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ConstantBlackScholes) X0() (float64, error) {
	return p.x0.Value()
}

// Drift 返回 r - q - σ²/2。t 和 x 仅为满足 Process1D 契约，常系数过程不使用。
func (p *ConstantBlackScholes) Drift(t, x float64) (float64, error) {
	_ = t
	_ = x
	r, err := p.riskFree.Value()
	if err != nil {
		return 0, err
	}
	q, err := p.dividend.Value()
	if err != nil {
		return 0, err
	}
	sigma, err := p.blackVol.Value()
	if err != nil {
		return 0, err
	}
	return r - q - sigma*sigma/2, nil
}

// Diffusion 返回 σ。t 和 x 同样不参与计算。
func (p *ConstantBlackScholes) Diffusion(t, x float64) (float64, error) {
	_ = t
	_ = x
	return p.blackVol.Value()
}

// Apply 返回 x0 * exp(dx)：过程在对数空间演化，公开水平是 S 本身，
// 增量必须乘性合并，写成 x0 + dx 对对数正态过程是正确性错误。
func (p *ConstantBlackScholes) Apply(x0, dx float64) float64 {
	return x0 * math.Exp(dx)
}

// Evolve 按配置的离散化格式走一步：apply(x0, increment(t0, x0, dt, dw))。
func (p *ConstantBlackScholes) Evolve(t0, x0, dt, dw float64) (float64, error) {
	dx, err := p.disc.Increment(p, t0, x0, dt, dw)
	if err != nil {
		return 0, err
	}
	return p.Apply(x0, dx), nil
}

// Discretization 返回构造时注入的离散化格式。
func (p *ConstantBlackScholes) Discretization() Discretization {
	return p.disc
}
