package mc

import (
	"math/rand/v2"

	"carlo/internal/process"
)

// PathGenerator 反复调用过程的 X0/Evolve 生成模拟路径。
// 迭代由生成器驱动，过程只提供纯函数；同一 (seed, stream) 的生成器产出完全相同的路径序列。
// 开启对偶变量（antithetic）时，路径成对出现：偶数条用新抽样，奇数条取上一条抽样的相反数。
type PathGenerator struct {
	proc process.Process1D
	grid TimeGrid
	rng  *rand.Rand

	antithetic bool
	draws      []float64
	mirror     bool
}

func NewPathGenerator(p process.Process1D, grid TimeGrid, seed, stream uint64, antithetic bool) *PathGenerator {
	g := &PathGenerator{
		proc:       p,
		grid:       grid,
		rng:        rand.New(rand.NewPCG(seed, stream)),
		antithetic: antithetic,
	}
	if antithetic {
		g.draws = make([]float64, grid.Steps)
	}
	return g
}

// Next 生成下一条路径。任何参数未绑定的错误立即终止本条路径并原样上抛。
func (g *PathGenerator) Next() (Path, error) {
	x, err := g.proc.X0()
	if err != nil {
		return Path{}, err
	}

	times := g.grid.Times()
	levels := make([]float64, len(times))
	levels[0] = x
	dt := g.grid.Dt()

	for i := 0; i < g.grid.Steps; i++ {
		dw := g.nextDraw(i)
		x, err = g.proc.Evolve(times[i], x, dt, dw)
		if err != nil {
			return Path{}, err
		}
		levels[i+1] = x
	}
	if g.antithetic {
		g.mirror = !g.mirror
	}
	return Path{Times: times, Levels: levels}, nil
}

func (g *PathGenerator) nextDraw(step int) float64 {
	if !g.antithetic {
		return g.rng.NormFloat64()
	}
	if g.mirror {
		return -g.draws[step]
	}
	g.draws[step] = g.rng.NormFloat64()
	return g.draws[step]
}
