package mc

// Path 是一条模拟轨迹：Levels[i] 是 Times[i] 时刻的资产水平。
type Path struct {
	Times  []float64 `json:"times"`
	Levels []float64 `json:"levels"`
}

func (p Path) Last() float64 {
	if len(p.Levels) == 0 {
		return 0
	}
	return p.Levels[len(p.Levels)-1]
}

// PathPricer 把一条路径折算成一个现值样本。
type PathPricer interface {
	Price(p Path) float64
}
