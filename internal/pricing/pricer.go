package pricing

import (
	"math"

	"carlo/internal/mc"
)

// EuropeanPathPricer 取路径末端收益并按固定利率贴现。
// 贴现率在提交估值时解析一次：运行中重绑定利率只影响过程漂移，不回溯改贴现因子。
type EuropeanPathPricer struct {
	opt  Option
	rate float64
}

func NewEuropeanPathPricer(opt Option, discountRate float64) EuropeanPathPricer {
	return EuropeanPathPricer{opt: opt, rate: discountRate}
}

func (p EuropeanPathPricer) Price(path mc.Path) float64 {
	return math.Exp(-p.rate*p.opt.Maturity) * p.opt.Payoff(path.Last())
}
