package marketdata

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"
)

// 每种 K 线周期一年包含的根数，用于把单周期波动率年化。
var periodsPerYear = map[string]float64{
	"1m":  365 * 24 * 60,
	"5m":  365 * 24 * 12,
	"15m": 365 * 24 * 4,
	"30m": 365 * 24 * 2,
	"1h":  365 * 24,
	"4h":  365 * 6,
	"1d":  365,
}

// AnnualizedVol 由收盘价序列估计年化波动率：
// 对数收益 → 全窗口样本标准差 → 乘 sqrt(每年周期数)。
func AnnualizedVol(closes []float64, interval string) (float64, error) {
	factor, ok := periodsPerYear[interval]
	if !ok {
		return 0, fmt.Errorf("不支持的 K 线周期: %q", interval)
	}
	returns, err := logReturns(closes)
	if err != nil {
		return 0, err
	}
	// talib.StdDev 输出滚动标准差，末位即全窗口值（总体标准差）
	sd := talib.StdDev(returns, len(returns), 1)
	raw := sd[len(sd)-1]
	if math.IsNaN(raw) {
		return 0, fmt.Errorf("波动率计算结果无效")
	}
	// 还原为样本标准差（n-1 分母）
	n := float64(len(returns))
	if n > 1 {
		raw *= math.Sqrt(n / (n - 1))
	}
	return raw * math.Sqrt(factor), nil
}

func logReturns(closes []float64) ([]float64, error) {
	if len(closes) < 3 {
		return nil, fmt.Errorf("收盘价样本不足: %d", len(closes))
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return nil, fmt.Errorf("收盘价必须为正 (idx=%d)", i)
		}
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out, nil
}
