package app

import (
	"context"
	"fmt"
	"time"

	"carlo/internal/config"
	"carlo/internal/logger"
	"carlo/internal/marketdata"
	"carlo/internal/scenario"
	"carlo/internal/server"
	"carlo/internal/simulation"
	"carlo/internal/store/pathdb"
	"carlo/internal/store/sqlite"
)

// buildApp 按依赖顺序组装：行情簿 → 场景注册表 → 存储 → 估值服务 → HTTP，
// 最后是可选的行情源。任何一步失败都会回收已打开的资源。
func buildApp(ctx context.Context, cfg *config.Config) (*App, error) {
	book := scenario.NewBook()

	reg, err := scenario.NewRegistry(cfg.Scenario.Path, book, cfg.Scenario.Watch)
	if err != nil {
		return nil, fmt.Errorf("加载场景失败: %w", err)
	}
	reg.OnChange(func(s scenario.Scenario) {
		logger.Infof("场景已更新: spot=%v q=%v r=%v vol=%v",
			s.Spot, s.DividendYield, s.RiskFreeRate, s.Volatility)
	})

	runs, err := sqlite.NewRunStore(cfg.Store.RunsDB)
	if err != nil {
		return nil, fmt.Errorf("打开估值库失败: %w", err)
	}
	paths, err := pathdb.New(cfg.Store.PathsDB)
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("打开路径库失败: %w", err)
	}

	svc, err := simulation.NewService(ctx, simulation.Config{
		Book:          book,
		Runs:          runs,
		PathStore:     paths,
		DefaultPaths:  cfg.Engine.DefaultPaths,
		DefaultSteps:  cfg.Engine.DefaultSteps,
		SamplePaths:   cfg.Engine.SamplePaths,
		EngineWorkers: cfg.Engine.Workers,
		Antithetic:    cfg.Engine.Antithetic,
		MaxConcurrent: cfg.Engine.MaxConcurrent,
	})
	if err != nil {
		runs.Close()
		paths.Close()
		return nil, fmt.Errorf("构建估值服务失败: %w", err)
	}

	httpSrv, err := server.New(server.Config{
		Addr:     cfg.App.HTTPAddr,
		Svc:      svc,
		Registry: reg,
	})
	if err != nil {
		runs.Close()
		paths.Close()
		return nil, fmt.Errorf("构建 HTTP 服务失败: %w", err)
	}

	var source *marketdata.Source
	if cfg.Market.Enabled {
		source, err = marketdata.New(marketdata.Config{
			Symbol:          cfg.Market.Symbol,
			RefreshSeconds:  cfg.Market.RefreshSeconds,
			RESTBaseURL:     cfg.Market.RESTBaseURL,
			HTTPTimeout:     10 * time.Second,
			HistVolEnabled:  cfg.Market.HistVolEnabled,
			HistVolInterval: cfg.Market.HistVolInterval,
			HistVolWindow:   cfg.Market.HistVolWindow,
		}, book)
		if err != nil {
			runs.Close()
			paths.Close()
			return nil, fmt.Errorf("构建行情源失败: %w", err)
		}
	}

	return &App{
		cfg:    cfg,
		book:   book,
		reg:    reg,
		runs:   runs,
		paths:  paths,
		svc:    svc,
		http:   httpSrv,
		source: source,
	}, nil
}
