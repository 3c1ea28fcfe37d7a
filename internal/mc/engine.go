package mc

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"carlo/internal/process"

	"golang.org/x/sync/errgroup"
)

// EngineConfig 描述一次 Monte Carlo 估值。
type EngineConfig struct {
	Process process.Process1D
	Pricer  PathPricer
	Grid    TimeGrid
	// Paths 是样本路径总数。
	Paths int
	// Seed 固定后整次估值可复现（worker 以 stream 区分子序列）。
	Seed uint64
	// Antithetic 开启对偶变量缩减方差。
	Antithetic bool
	// MaxConcurrent 限制并行 worker 数，<=0 时取 GOMAXPROCS。
	MaxConcurrent int
	// SamplePaths 指定保留多少条完整路径用于持久化与绘图。
	SamplePaths int
}

// Result 是估值汇总。
type Result struct {
	Estimate float64       `json:"estimate"`
	StdError float64       `json:"std_error"`
	StdDev   float64       `json:"std_dev"`
	Paths    int64         `json:"paths"`
	Elapsed  time.Duration `json:"elapsed"`
	Sampled  []Path        `json:"-"`
}

type Engine struct {
	cfg EngineConfig
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Process == nil {
		return nil, fmt.Errorf("process 不能为空")
	}
	if cfg.Pricer == nil {
		return nil, fmt.Errorf("pricer 不能为空")
	}
	if cfg.Grid.Steps <= 0 || cfg.Grid.Maturity <= 0 {
		return nil, fmt.Errorf("time grid 无效: %+v", cfg.Grid)
	}
	if cfg.Paths <= 0 {
		return nil, fmt.Errorf("paths 必须大于 0: %d", cfg.Paths)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = runtime.GOMAXPROCS(0)
	}
	if cfg.SamplePaths < 0 {
		cfg.SamplePaths = 0
	}
	return &Engine{cfg: cfg}, nil
}

// Run 并行生成路径并汇总现值样本。过程参数在运行中被外部重绑定时，
// 不同路径可能观察到不同快照，这是共享行情句柄带来的既定行为。
func (e *Engine) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	cfg := e.cfg

	workers := cfg.MaxConcurrent
	if workers > cfg.Paths {
		workers = cfg.Paths
	}

	var (
		mu      sync.Mutex
		total   Statistics
		sampled []Path
	)

	group, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		count := cfg.Paths / workers
		if w < cfg.Paths%workers {
			count++
		}
		if count == 0 {
			continue
		}
		stream := uint64(w) + 1
		sampleQuota := 0
		if w == 0 {
			sampleQuota = cfg.SamplePaths
		}
		group.Go(func() error {
			gen := NewPathGenerator(cfg.Process, cfg.Grid, cfg.Seed, stream, cfg.Antithetic)
			var local Statistics
			keep := make([]Path, 0, sampleQuota)
			for i := 0; i < count; i++ {
				if i%1024 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				path, err := gen.Next()
				if err != nil {
					return fmt.Errorf("生成第 %d 条路径失败: %w", i, err)
				}
				local.Add(cfg.Pricer.Price(path))
				if len(keep) < sampleQuota {
					keep = append(keep, path)
				}
			}
			mu.Lock()
			total.Merge(local)
			sampled = append(sampled, keep...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Estimate: total.Mean(),
		StdError: total.ErrorEstimate(),
		StdDev:   total.StdDev(),
		Paths:    total.Count(),
		Elapsed:  time.Since(start),
		Sampled:  sampled,
	}, nil
}
