package process

import "math"

// Process1D 是一维随机过程契约：dx_t = μ(t, x_t)dt + σ(t, x_t)dW_t。
// 路径生成器只依赖这五个原语：先取 X0，再逐步 Evolve 出整条路径。
// 过程本身无状态，运行中的水平值由调用方在连续的 Apply/Evolve 之间传递。
type Process1D interface {
	// X0 返回初始水平。
	X0() (float64, error)
	// Drift 返回 (t, x) 处的漂移项。
	Drift(t, x float64) (float64, error)
	// Diffusion 返回 (t, x) 处的扩散系数。
	Diffusion(t, x float64) (float64, error)
	// Apply 把离散化产生的增量 dx 合并进当前水平。
	Apply(x0, dx float64) float64
	// Evolve 返回经过 dt、随机抽样为 dw 时的下一水平。
	Evolve(t0, x0, dt, dw float64) (float64, error)
}

// 以下是一维过程契约的通用矩公式（Euler 形式），任何实现了
// Drift/Diffusion/Apply 的过程都可以直接套用。

// Expectation 返回 dt 之后的期望水平 apply(x0, μ·dt)。
func Expectation(p Process1D, t0, x0, dt float64) (float64, error) {
	mu, err := p.Drift(t0, x0)
	if err != nil {
		return 0, err
	}
	return p.Apply(x0, mu*dt), nil
}

// StdDeviation 返回 dt 之后的标准差 σ·sqrt(dt)。
func StdDeviation(p Process1D, t0, x0, dt float64) (float64, error) {
	sigma, err := p.Diffusion(t0, x0)
	if err != nil {
		return 0, err
	}
	return sigma * math.Sqrt(dt), nil
}

// Variance 返回 dt 之后的方差 σ²·dt。
func Variance(p Process1D, t0, x0, dt float64) (float64, error) {
	sigma, err := p.Diffusion(t0, x0)
	if err != nil {
		return 0, err
	}
	return sigma * sigma * dt, nil
}
