package app

import (
	"context"
	"fmt"

	"carlo/internal/config"
	"carlo/internal/logger"
	"carlo/internal/marketdata"
	"carlo/internal/scenario"
	"carlo/internal/server"
	"carlo/internal/simulation"
	"carlo/internal/store/pathdb"
	"carlo/internal/store/sqlite"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 与可选行情源。
type App struct {
	cfg    *config.Config
	book   *scenario.Book
	reg    *scenario.Registry
	runs   *sqlite.RunStore
	paths  *pathdb.Store
	svc    *simulation.Service
	http   *server.Server
	source *marketdata.Source
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildApp(context.Background(), cfg)
}

// Run 启动所有长驻组件，任一组件出错或 ctx 取消时整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.close()

	snap, err := a.reg.Snapshot()
	if err == nil {
		logger.Infof("启动场景: spot=%v q=%v r=%v vol=%v",
			snap.Spot, snap.DividendYield, snap.RiskFreeRate, snap.Volatility)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	if a.source != nil {
		group.Go(func() error {
			return a.source.Run(ctx)
		})
	}
	return group.Wait()
}

// Service 暴露给测试与回放工具。
func (a *App) Service() *simulation.Service {
	if a == nil {
		return nil
	}
	return a.svc
}

func (a *App) close() {
	if a.runs != nil {
		a.runs.Close()
	}
	if a.paths != nil {
		a.paths.Close()
	}
}
