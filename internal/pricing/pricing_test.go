package pricing

import (
	"math"
	"testing"

	"carlo/internal/mc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionType(t *testing.T) {
	for raw, want := range map[string]OptionType{
		"call": TypeCall, "CALL": TypeCall, " c ": TypeCall,
		"put": TypePut, "P": TypePut,
	} {
		got, err := ParseOptionType(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOptionType("straddle")
	require.Error(t, err)
}

func TestOptionValidateAndPayoff(t *testing.T) {
	opt := Option{Type: TypeCall, Strike: 100, Maturity: 1}
	require.NoError(t, opt.Validate())
	assert.Equal(t, 20.0, opt.Payoff(120))
	assert.Equal(t, 0.0, opt.Payoff(80))

	put := Option{Type: TypePut, Strike: 100, Maturity: 1}
	assert.Equal(t, 20.0, put.Payoff(80))
	assert.Equal(t, 0.0, put.Payoff(120))

	require.Error(t, Option{Type: TypeCall, Strike: 0, Maturity: 1}.Validate())
	require.Error(t, Option{Type: TypeCall, Strike: 100, Maturity: 0}.Validate())
	require.Error(t, Option{Type: "swap", Strike: 100, Maturity: 1}.Validate())
}

func TestAnalyticReferenceValues(t *testing.T) {
	// 经典基准：S=100, K=100, r=5%, q=0, σ=20%, T=1
	call, err := AnalyticBlackScholes(Option{Type: TypeCall, Strike: 100, Maturity: 1}, 100, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 10.4506, call.Price, 1e-3)
	assert.InDelta(t, 0.6368, call.Greeks.Delta, 1e-3)
	assert.Greater(t, call.Greeks.Gamma, 0.0)
	assert.Greater(t, call.Greeks.Vega, 0.0)
	assert.Less(t, call.Greeks.Theta, 0.0)

	put, err := AnalyticBlackScholes(Option{Type: TypePut, Strike: 100, Maturity: 1}, 100, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 5.5735, put.Price, 1e-3)
	assert.Less(t, put.Greeks.Delta, 0.0)
}

func TestPutCallParity(t *testing.T) {
	s, q, r, sigma := 105.0, 0.02, 0.05, 0.25
	for _, strike := range []float64{80, 100, 120} {
		for _, mat := range []float64{0.25, 1, 2} {
			call, err := AnalyticBlackScholes(Option{Type: TypeCall, Strike: strike, Maturity: mat}, s, q, r, sigma)
			require.NoError(t, err)
			put, err := AnalyticBlackScholes(Option{Type: TypePut, Strike: strike, Maturity: mat}, s, q, r, sigma)
			require.NoError(t, err)

			lhs := call.Price - put.Price
			rhs := s*math.Exp(-q*mat) - strike*math.Exp(-r*mat)
			assert.InDelta(t, rhs, lhs, 1e-9, "平价关系在 K=%v T=%v 失败", strike, mat)
		}
	}
}

func TestAnalyticDegenerateVol(t *testing.T) {
	// σ=0 退化为贴现后的远期内在价值
	res, err := AnalyticBlackScholes(Option{Type: TypeCall, Strike: 100, Maturity: 1}, 100, 0.02, 0.05, 0)
	require.NoError(t, err)
	fwd := 100 * math.Exp(0.03)
	assert.InDelta(t, math.Exp(-0.05)*(fwd-100), res.Price, 1e-12)
}

func TestEuropeanPathPricer(t *testing.T) {
	opt := Option{Type: TypeCall, Strike: 100, Maturity: 2}
	pricer := NewEuropeanPathPricer(opt, 0.05)

	path := mc.Path{Times: []float64{0, 1, 2}, Levels: []float64{100, 110, 130}}
	assert.InDelta(t, math.Exp(-0.1)*30, pricer.Price(path), 1e-12)

	otm := mc.Path{Times: []float64{0, 2}, Levels: []float64{100, 90}}
	assert.Equal(t, 0.0, pricer.Price(otm))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 10.451, Round(10.45064, 3))
	assert.Equal(t, -2.35, Round(-2.3456, 2))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}
