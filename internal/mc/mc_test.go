package mc

import (
	"context"
	"math"
	"testing"

	"carlo/internal/process"
	"carlo/internal/quote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcess(spot, q, r, vol float64) *process.ConstantBlackScholes {
	return process.NewConstantBlackScholes(
		quote.NewHandle(quote.NewSimpleQuote(spot)),
		quote.NewHandle(quote.NewSimpleQuote(q)),
		quote.NewHandle(quote.NewSimpleQuote(r)),
		quote.NewHandle(quote.NewSimpleQuote(vol)),
	)
}

func TestTimeGrid(t *testing.T) {
	_, err := NewTimeGrid(0, 10)
	require.Error(t, err)
	_, err = NewTimeGrid(1, 0)
	require.Error(t, err)

	grid, err := NewTimeGrid(1.0, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.25, grid.Dt())

	times := grid.Times()
	require.Len(t, times, 5)
	assert.Equal(t, 0.0, times[0])
	assert.Equal(t, 1.0, times[4])
	assert.InDelta(t, 0.5, times[2], 1e-15)
}

func TestGeneratorDeterministic(t *testing.T) {
	p := newProcess(100, 0.02, 0.05, 0.2)
	grid, _ := NewTimeGrid(1.0, 12)

	g1 := NewPathGenerator(p, grid, 42, 1, false)
	g2 := NewPathGenerator(p, grid, 42, 1, false)
	for i := 0; i < 3; i++ {
		p1, err := g1.Next()
		require.NoError(t, err)
		p2, err := g2.Next()
		require.NoError(t, err)
		assert.Equal(t, p1.Levels, p2.Levels, "相同 seed/stream 必须产出相同路径")
	}
}

func TestGeneratorZeroVolMatchesForward(t *testing.T) {
	// σ=0 时随机抽样不起作用，终点必然等于远期价
	p := newProcess(100, 0.02, 0.05, 0)
	grid, _ := NewTimeGrid(2.0, 24)

	g := NewPathGenerator(p, grid, 7, 1, false)
	path, err := g.Next()
	require.NoError(t, err)
	assert.InDelta(t, 100*math.Exp((0.05-0.02)*2.0), path.Last(), 1e-9)
	assert.Equal(t, 100.0, path.Levels[0])
}

func TestGeneratorAntitheticPairs(t *testing.T) {
	// 漂移为 0 时对偶路径的对数增量互为相反数：S1(i)*S2(i) == x0*x0
	p := newProcess(100, 0, 0, 0.2)
	grid, _ := NewTimeGrid(1.0, 8)

	g := NewPathGenerator(p, grid, 99, 1, true)
	p1, err := g.Next()
	require.NoError(t, err)
	p2, err := g.Next()
	require.NoError(t, err)
	for i := range p1.Levels {
		assert.InDelta(t, 100*100, p1.Levels[i]*p2.Levels[i], 1e-6)
	}
}

func TestGeneratorUnboundQuote(t *testing.T) {
	h := quote.NewHandle(nil)
	p := process.NewConstantBlackScholes(
		quote.NewHandle(quote.NewSimpleQuote(100)),
		quote.NewHandle(quote.NewSimpleQuote(0)),
		quote.NewHandle(quote.NewSimpleQuote(0)),
		h,
	)
	grid, _ := NewTimeGrid(1.0, 4)
	g := NewPathGenerator(p, grid, 1, 1, false)
	_, err := g.Next()
	require.ErrorIs(t, err, quote.ErrUnbound)
}

func TestStatistics(t *testing.T) {
	var s Statistics
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(x)
	}
	assert.Equal(t, int64(8), s.Count())
	assert.InDelta(t, 5.0, s.Mean(), 1e-12)
	assert.InDelta(t, 32.0/7.0, s.Variance(), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0/8.0), s.ErrorEstimate(), 1e-12)
}

func TestStatisticsMerge(t *testing.T) {
	data := []float64{1.5, -2, 3.25, 0, 8, -1, 4.5, 2}
	var whole, left, right Statistics
	for i, x := range data {
		whole.Add(x)
		if i < 3 {
			left.Add(x)
		} else {
			right.Add(x)
		}
	}
	left.Merge(right)
	assert.Equal(t, whole.Count(), left.Count())
	assert.InDelta(t, whole.Mean(), left.Mean(), 1e-12)
	assert.InDelta(t, whole.Variance(), left.Variance(), 1e-12)
}

type lastLevelPricer struct{}

func (lastLevelPricer) Price(p Path) float64 { return p.Last() }

func TestEngineZeroVolDeterministic(t *testing.T) {
	p := newProcess(100, 0.02, 0.05, 0)
	grid, _ := NewTimeGrid(1.0, 10)
	eng, err := NewEngine(EngineConfig{
		Process:       p,
		Pricer:        lastLevelPricer{},
		Grid:          grid,
		Paths:         200,
		Seed:          42,
		MaxConcurrent: 4,
		SamplePaths:   5,
	})
	require.NoError(t, err)

	res, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.Paths)
	assert.InDelta(t, 100*math.Exp(0.03), res.Estimate, 1e-9)
	assert.InDelta(t, 0, res.StdError, 1e-9)
	assert.Len(t, res.Sampled, 5)
	require.Len(t, res.Sampled[0].Levels, 11)
}

func TestEngineConfigValidation(t *testing.T) {
	grid, _ := NewTimeGrid(1.0, 10)
	_, err := NewEngine(EngineConfig{Pricer: lastLevelPricer{}, Grid: grid, Paths: 10})
	require.Error(t, err)
	_, err = NewEngine(EngineConfig{Process: newProcess(1, 0, 0, 0), Grid: grid, Paths: 10})
	require.Error(t, err)
	_, err = NewEngine(EngineConfig{Process: newProcess(1, 0, 0, 0), Pricer: lastLevelPricer{}, Grid: grid})
	require.Error(t, err)
}

func TestEngineCancel(t *testing.T) {
	p := newProcess(100, 0, 0.05, 0.2)
	grid, _ := NewTimeGrid(1.0, 50)
	eng, err := NewEngine(EngineConfig{
		Process:       p,
		Pricer:        lastLevelPricer{},
		Grid:          grid,
		Paths:         100000,
		Seed:          1,
		MaxConcurrent: 2,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
