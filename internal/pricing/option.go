package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	TypeCall OptionType = "call"
	TypePut  OptionType = "put"
)

func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return TypeCall, nil
	case "put", "p":
		return TypePut, nil
	default:
		return "", fmt.Errorf("未知的期权类型: %q", s)
	}
}

// Option 是欧式期权：到期日（年化）、行权价与方向。
type Option struct {
	Type     OptionType `json:"type"`
	Strike   float64    `json:"strike"`
	Maturity float64    `json:"maturity"`
}

func (o Option) Validate() error {
	if o.Type != TypeCall && o.Type != TypePut {
		return fmt.Errorf("未知的期权类型: %q", o.Type)
	}
	if o.Strike <= 0 {
		return fmt.Errorf("strike 必须大于 0: %v", o.Strike)
	}
	if o.Maturity <= 0 {
		return fmt.Errorf("maturity 必须大于 0: %v", o.Maturity)
	}
	return nil
}

// Payoff 返回到期收益。
func (o Option) Payoff(s float64) float64 {
	switch o.Type {
	case TypeCall:
		return math.Max(s-o.Strike, 0)
	case TypePut:
		return math.Max(o.Strike-s, 0)
	default:
		return 0
	}
}

// Round 用于对外报告的统一舍入（银行家舍入交给 decimal）。
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return out
}
