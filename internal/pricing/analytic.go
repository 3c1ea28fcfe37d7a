package pricing

import (
	"fmt"
	"math"
)

// Greeks 是闭式解的敏感度汇总。
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// AnalyticResult 是 Black-Scholes 闭式解输出，用作 MC 估计的对照基准。
type AnalyticResult struct {
	Price  float64 `json:"price"`
	Greeks Greeks  `json:"greeks"`
}

// AnalyticBlackScholes 计算含股息率的欧式期权闭式价格与 Greeks。
// σ 或 T 退化为 0 时返回贴现后的远期内在价值。
func AnalyticBlackScholes(opt Option, s, q, r, sigma float64) (AnalyticResult, error) {
	if err := opt.Validate(); err != nil {
		return AnalyticResult{}, err
	}
	if s <= 0 {
		return AnalyticResult{}, fmt.Errorf("spot 必须大于 0: %v", s)
	}
	t := opt.Maturity
	sqrtT := math.Sqrt(t)

	if sigma*sqrtT <= 0 {
		fwd := s * math.Exp((r-q)*t)
		return AnalyticResult{Price: math.Exp(-r*t) * opt.Payoff(fwd)}, nil
	}

	d1 := (math.Log(s/opt.Strike) + (r-q+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	dfQ := math.Exp(-q * t)
	dfR := math.Exp(-r * t)
	pdfD1 := normPDF(d1)

	var res AnalyticResult
	switch opt.Type {
	case TypeCall:
		res.Price = s*dfQ*normCDF(d1) - opt.Strike*dfR*normCDF(d2)
		res.Greeks.Delta = dfQ * normCDF(d1)
		res.Greeks.Rho = opt.Strike * t * dfR * normCDF(d2)
		res.Greeks.Theta = -(s*dfQ*pdfD1*sigma)/(2*sqrtT) -
			r*opt.Strike*dfR*normCDF(d2) + q*s*dfQ*normCDF(d1)
	case TypePut:
		res.Price = opt.Strike*dfR*normCDF(-d2) - s*dfQ*normCDF(-d1)
		res.Greeks.Delta = dfQ * (normCDF(d1) - 1)
		res.Greeks.Rho = -opt.Strike * t * dfR * normCDF(-d2)
		res.Greeks.Theta = -(s*dfQ*pdfD1*sigma)/(2*sqrtT) +
			r*opt.Strike*dfR*normCDF(-d2) - q*s*dfQ*normCDF(-d1)
	}
	res.Greeks.Gamma = dfQ * pdfD1 / (s * sigma * sqrtT)
	res.Greeks.Vega = s * dfQ * pdfD1 * sqrtT
	return res, nil
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
