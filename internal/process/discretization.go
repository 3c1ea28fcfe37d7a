package process

import "math"

// Discretization 把连续随机微分方程离散成单步增量。
// 返回的增量会被传入 Process1D.Apply 与当前水平合并。
type Discretization interface {
	Increment(p Process1D, t0, x0, dt, dw float64) (float64, error)
}

// Euler 是显式 Euler–Maruyama 格式：增量 = μ·dt + σ·sqrt(dt)·dw。
type Euler struct{}

func (Euler) Increment(p Process1D, t0, x0, dt, dw float64) (float64, error) {
	mu, err := p.Drift(t0, x0)
	if err != nil {
		return 0, err
	}
	sigma, err := p.Diffusion(t0, x0)
	if err != nil {
		return 0, err
	}
	return mu*dt + sigma*math.Sqrt(dt)*dw, nil
}
