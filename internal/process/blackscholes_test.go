package process

import (
	"math"
	"testing"

	"carlo/internal/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcess(spot, q, r, vol float64) (*ConstantBlackScholes, *quote.SimpleQuote) {
	volQuote := quote.NewSimpleQuote(vol)
	p := NewConstantBlackScholes(
		quote.NewHandle(quote.NewSimpleQuote(spot)),
		quote.NewHandle(quote.NewSimpleQuote(q)),
		quote.NewHandle(quote.NewSimpleQuote(r)),
		quote.NewHandle(volQuote),
	)
	return p, volQuote
}

func TestDriftAndDiffusionConstancy(t *testing.T) {
	p, _ := newTestProcess(100, 0.02, 0.05, 0.2)
	want := 0.05 - 0.02 - 0.2*0.2/2

	// 漂移与扩散在任意 (t, x) 处相同
	for _, tc := range [][2]float64{{0, 100}, {1.5, 42}, {10, 0.001}, {0.25, 1e6}} {
		mu, err := p.Drift(tc[0], tc[1])
		require.NoError(t, err)
		assert.InDelta(t, want, mu, 1e-15)

		sigma, err := p.Diffusion(tc[0], tc[1])
		require.NoError(t, err)
		assert.Equal(t, 0.2, sigma)
	}
}

func TestX0Stable(t *testing.T) {
	p, _ := newTestProcess(100, 0.02, 0.05, 0.2)
	for i := 0; i < 5; i++ {
		x0, err := p.X0()
		require.NoError(t, err)
		assert.Equal(t, 100.0, x0)
	}
}

func TestApplyIsMultiplicative(t *testing.T) {
	p, _ := newTestProcess(100, 0, 0, 0.2)

	assert.Equal(t, 100.0, p.Apply(100, 0), "零增量必须返回原值")
	assert.InDelta(t, 100*math.Exp(0.01), p.Apply(100, 0.01), 1e-12)
	assert.InDelta(t, 55.5*math.Exp(-0.3), p.Apply(55.5, -0.3), 1e-12)
}

func TestEvolveEulerScenario(t *testing.T) {
	p, _ := newTestProcess(100, 0.02, 0.05, 0.2)

	// dt=1, dw=0：增量 = (0.05-0.02-0.02)*1 = 0.01
	next, err := p.Evolve(0, 100, 1.0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.01), next, 1e-9)
	assert.InDelta(t, 101.005, next, 1e-3)

	// dt=1, dw=1：增量 = 0.01 + 0.2 = 0.21
	next, err = p.Evolve(0, 100, 1.0, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.21), next, 1e-9)
	assert.InDelta(t, 123.37, next, 1e-2)
}

func TestUnboundParameterPropagates(t *testing.T) {
	volHandle := quote.NewHandle(nil)
	p := NewConstantBlackScholes(
		quote.NewHandle(quote.NewSimpleQuote(100)),
		quote.NewHandle(quote.NewSimpleQuote(0.02)),
		quote.NewHandle(quote.NewSimpleQuote(0.05)),
		volHandle,
	)

	_, err := p.Drift(0, 100)
	require.ErrorIs(t, err, quote.ErrUnbound)
	_, err = p.Diffusion(0, 100)
	require.ErrorIs(t, err, quote.ErrUnbound)
	_, err = p.Evolve(0, 100, 1, 0)
	require.ErrorIs(t, err, quote.ErrUnbound)

	// x0 已绑定，不受 σ 缺失影响（参数隔离）
	x0, err := p.X0()
	require.NoError(t, err)
	assert.Equal(t, 100.0, x0)

	// 绑定后立即可用
	volHandle.Link(quote.NewSimpleQuote(0.2))
	sigma, err := p.Diffusion(0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.2, sigma)
}

func TestRelinkTakesEffectNextRead(t *testing.T) {
	p, volQuote := newTestProcess(100, 0.02, 0.05, 0.2)

	sigma, err := p.Diffusion(3, 80)
	require.NoError(t, err)
	assert.Equal(t, 0.2, sigma)

	// 模拟中途改波动率，同一 (t, x) 处必须读到新值（无缓存）
	volQuote.SetValue(0.3)
	sigma, err = p.Diffusion(3, 80)
	require.NoError(t, err)
	assert.Equal(t, 0.3, sigma)

	// 其余三个参数不受影响
	x0, err := p.X0()
	require.NoError(t, err)
	assert.Equal(t, 100.0, x0)
	mu, err := p.Drift(0, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.05-0.02-0.3*0.3/2, mu, 1e-15)
}

func TestGenericMoments(t *testing.T) {
	p, _ := newTestProcess(100, 0.02, 0.05, 0.2)

	exp, err := Expectation(p, 0, 100, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.01), exp, 1e-9)

	sd, err := StdDeviation(p, 0, 100, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.2*0.5, sd, 1e-15)

	v, err := Variance(p, 0, 100, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.04*0.25, v, 1e-15)
}

type fixedIncrement struct{ dx float64 }

func (f fixedIncrement) Increment(Process1D, float64, float64, float64, float64) (float64, error) {
	return f.dx, nil
}

func TestCustomDiscretization(t *testing.T) {
	p := NewConstantBlackScholes(
		quote.NewHandle(quote.NewSimpleQuote(100)),
		quote.NewHandle(quote.NewSimpleQuote(0)),
		quote.NewHandle(quote.NewSimpleQuote(0)),
		quote.NewHandle(quote.NewSimpleQuote(0.2)),
		WithDiscretization(fixedIncrement{dx: 0.5}),
	)
	next, err := p.Evolve(0, 100, 1, 123)
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp(0.5), next, 1e-9)
}

// 负波动率不做校验，按原样传播
func TestNegativeVolPropagates(t *testing.T) {
	p, volQuote := newTestProcess(100, 0, 0, 0.2)
	volQuote.SetValue(-0.1)
	sigma, err := p.Diffusion(0, 100)
	require.NoError(t, err)
	assert.Equal(t, -0.1, sigma)
}
