package scenario

import "carlo/internal/quote"

// Book 持有四个可写行情与对应句柄。句柄在进程生命周期内只创建一次，
// 场景热更新只改写 SimpleQuote 的数值，所有依赖这些句柄的过程对象无需重建。
type Book struct {
	spot     *quote.SimpleQuote
	dividend *quote.SimpleQuote
	riskFree *quote.SimpleQuote
	vol      *quote.SimpleQuote

	spotHandle     quote.Handle
	dividendHandle quote.Handle
	riskFreeHandle quote.Handle
	volHandle      quote.Handle
}

// NewBook 创建空的行情簿，四个参数在第一次 Apply 之前都处于未绑定状态。
func NewBook() *Book {
	b := &Book{
		spot:     quote.NewEmptyQuote(),
		dividend: quote.NewEmptyQuote(),
		riskFree: quote.NewEmptyQuote(),
		vol:      quote.NewEmptyQuote(),
	}
	b.spotHandle = quote.NewHandle(b.spot)
	b.dividendHandle = quote.NewHandle(b.dividend)
	b.riskFreeHandle = quote.NewHandle(b.riskFree)
	b.volHandle = quote.NewHandle(b.vol)
	return b
}

// Apply 把场景写入行情簿，持有句柄的各方在下一次读取立即看到新值。
func (b *Book) Apply(s Scenario) {
	b.spot.SetValue(s.Spot)
	b.dividend.SetValue(s.DividendYield)
	b.riskFree.SetValue(s.RiskFreeRate)
	b.vol.SetValue(s.Volatility)
}

// SetSpot/SetVolatility 供行情源单独刷新某一项。
func (b *Book) SetSpot(v float64)       { b.spot.SetValue(v) }
func (b *Book) SetVolatility(v float64) { b.vol.SetValue(v) }

func (b *Book) SpotHandle() quote.Handle     { return b.spotHandle }
func (b *Book) DividendHandle() quote.Handle { return b.dividendHandle }
func (b *Book) RiskFreeHandle() quote.Handle { return b.riskFreeHandle }
func (b *Book) VolHandle() quote.Handle      { return b.volHandle }

// Snapshot 读出当前四个值；任何一项未绑定时返回错误。
func (b *Book) Snapshot() (Scenario, error) {
	var (
		s   Scenario
		err error
	)
	if s.Spot, err = b.spotHandle.Value(); err != nil {
		return Scenario{}, err
	}
	if s.DividendYield, err = b.dividendHandle.Value(); err != nil {
		return Scenario{}, err
	}
	if s.RiskFreeRate, err = b.riskFreeHandle.Value(); err != nil {
		return Scenario{}, err
	}
	if s.Volatility, err = b.volHandle.Value(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}
