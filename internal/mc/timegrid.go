package mc

import "fmt"

// TimeGrid 是 [0, Maturity] 上的等距时间网格。
type TimeGrid struct {
	Maturity float64
	Steps    int
}

func NewTimeGrid(maturity float64, steps int) (TimeGrid, error) {
	if maturity <= 0 {
		return TimeGrid{}, fmt.Errorf("maturity 必须大于 0: %v", maturity)
	}
	if steps <= 0 {
		return TimeGrid{}, fmt.Errorf("steps 必须大于 0: %d", steps)
	}
	return TimeGrid{Maturity: maturity, Steps: steps}, nil
}

func (g TimeGrid) Dt() float64 {
	return g.Maturity / float64(g.Steps)
}

// Times 返回 Steps+1 个节点，首节点为 0，末节点为 Maturity。
func (g TimeGrid) Times() []float64 {
	dt := g.Dt()
	out := make([]float64, g.Steps+1)
	for i := 1; i < g.Steps; i++ {
		out[i] = float64(i) * dt
	}
	out[g.Steps] = g.Maturity
	return out
}
