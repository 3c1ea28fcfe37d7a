package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carlo/internal/logger"
	"carlo/internal/mc"
	"carlo/internal/pricing"
	"carlo/internal/process"
	"carlo/internal/scenario"
	"carlo/internal/store/model"
	"carlo/internal/store/pathdb"
	"carlo/internal/store/sqlite"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Config 组装估值服务。
type Config struct {
	Book      *scenario.Book
	Runs      *sqlite.RunStore
	PathStore *pathdb.Store

	DefaultPaths  int
	DefaultSteps  int
	SamplePaths   int
	EngineWorkers int
	Antithetic    bool
	// MaxConcurrent 限制同时进行的估值数。
	MaxConcurrent int
}

// RunRequest 是一次估值请求；Paths/Steps/Seed 缺省时取服务默认值。
type RunRequest struct {
	OptionType string  `json:"option_type" binding:"required"`
	Strike     float64 `json:"strike" binding:"required"`
	Maturity   float64 `json:"maturity" binding:"required"`
	Paths      int     `json:"paths"`
	Steps      int     `json:"steps"`
	Seed       uint64  `json:"seed"`
	Antithetic *bool   `json:"antithetic"`
}

// Service 负责把请求推演成完整的估值记录：
// 提交即返回 run id，路径模拟在后台并发执行，结果落库。
type Service struct {
	cfg     Config
	sem     chan struct{}
	baseCtx context.Context
}

func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.Book == nil {
		return nil, fmt.Errorf("book 不能为空")
	}
	if cfg.Runs == nil {
		return nil, fmt.Errorf("run store 不能为空")
	}
	if cfg.DefaultPaths <= 0 {
		cfg.DefaultPaths = 100000
	}
	if cfg.DefaultSteps <= 0 {
		cfg.DefaultSteps = 252
	}
	if cfg.SamplePaths < 0 {
		cfg.SamplePaths = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Service{
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		baseCtx: ctx,
	}, nil
}

func (s *Service) normalize(req RunRequest) (RunRequest, pricing.Option, error) {
	optType, err := pricing.ParseOptionType(req.OptionType)
	if err != nil {
		return req, pricing.Option{}, err
	}
	req.OptionType = string(optType)
	if req.Paths <= 0 {
		req.Paths = s.cfg.DefaultPaths
	}
	if req.Steps <= 0 {
		req.Steps = s.cfg.DefaultSteps
	}
	if req.Seed == 0 {
		req.Seed = uint64(time.Now().UnixNano())
	}
	if req.Antithetic == nil {
		v := s.cfg.Antithetic
		req.Antithetic = &v
	}
	opt := pricing.Option{Type: optType, Strike: req.Strike, Maturity: req.Maturity}
	if err := opt.Validate(); err != nil {
		return req, pricing.Option{}, err
	}
	return req, opt, nil
}

// Submit 校验请求、落一条 pending 记录并在后台启动模拟，返回 run id。
// 场景快照取提交时刻的值；运行期间行情被重绑定时后续路径按新值演化（见过程契约）。
func (s *Service) Submit(ctx context.Context, req RunRequest) (string, error) {
	req, opt, err := s.normalize(req)
	if err != nil {
		return "", err
	}
	snap, err := s.cfg.Book.Snapshot()
	if err != nil {
		return "", fmt.Errorf("行情未就绪: %w", err)
	}

	runID := uuid.NewString()
	reqJSON, _ := json.Marshal(req)
	snapJSON, _ := json.Marshal(snap)
	rec := &model.PricingRunModel{
		ID:         runID,
		Status:     model.RunStatusPending,
		OptionType: req.OptionType,
		Strike:     req.Strike,
		Maturity:   req.Maturity,
		Paths:      req.Paths,
		Steps:      req.Steps,
		Seed:       req.Seed,
		Antithetic: *req.Antithetic,
		Request:    datatypes.JSON(reqJSON),
		Scenario:   datatypes.JSON(snapJSON),
	}
	if err := s.cfg.Runs.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("创建估值记录失败: %w", err)
	}

	go s.execute(runID, req, opt, snap)
	return runID, nil
}

func (s *Service) execute(runID string, req RunRequest, opt pricing.Option, snap scenario.Scenario) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	ctx := s.baseCtx
	rec := &model.PricingRunModel{ID: runID, Status: model.RunStatusRunning}
	if err := s.cfg.Runs.Update(ctx, rec); err != nil {
		logger.Errorf("更新估值状态失败 (%s): %v", runID, err)
	}

	res, err := s.runEngine(ctx, req, opt)
	if err != nil {
		rec.Status = model.RunStatusFailed
		rec.ErrorMsg = err.Error()
		if uerr := s.cfg.Runs.Update(ctx, rec); uerr != nil {
			logger.Errorf("落盘失败记录失败 (%s): %v", runID, uerr)
		}
		logger.Errorf("估值失败 (%s): %v", runID, err)
		return
	}

	analytic, err := pricing.AnalyticBlackScholes(opt, snap.Spot, snap.DividendYield, snap.RiskFreeRate, snap.Volatility)
	if err != nil {
		logger.Warnf("闭式对照计算失败 (%s): %v", runID, err)
	}

	rec.Status = model.RunStatusDone
	rec.Estimate = res.Estimate
	rec.StdError = res.StdError
	rec.AnalyticPrice = analytic.Price
	rec.ElapsedMS = res.Elapsed.Milliseconds()
	if err := s.cfg.Runs.Update(ctx, rec); err != nil {
		logger.Errorf("落盘估值结果失败 (%s): %v", runID, err)
		return
	}
	if s.cfg.PathStore != nil && len(res.Sampled) > 0 {
		if err := s.cfg.PathStore.SaveSamples(ctx, runID, res.Sampled); err != nil {
			logger.Warnf("留样路径落盘失败 (%s): %v", runID, err)
		}
	}
	logger.Infof("估值完成 (%s): estimate=%v stderr=%v analytic=%v paths=%d elapsed=%s",
		runID, pricing.Round(res.Estimate, 6), pricing.Round(res.StdError, 6),
		pricing.Round(analytic.Price, 6), res.Paths, res.Elapsed)
}

func (s *Service) runEngine(ctx context.Context, req RunRequest, opt pricing.Option) (mc.Result, error) {
	proc := process.NewConstantBlackScholes(
		s.cfg.Book.SpotHandle(),
		s.cfg.Book.DividendHandle(),
		s.cfg.Book.RiskFreeHandle(),
		s.cfg.Book.VolHandle(),
	)
	grid, err := mc.NewTimeGrid(opt.Maturity, req.Steps)
	if err != nil {
		return mc.Result{}, err
	}
	// 贴现率在此刻解析一次
	rate, err := s.cfg.Book.RiskFreeHandle().Value()
	if err != nil {
		return mc.Result{}, err
	}
	eng, err := mc.NewEngine(mc.EngineConfig{
		Process:       proc,
		Pricer:        pricing.NewEuropeanPathPricer(opt, rate),
		Grid:          grid,
		Paths:         req.Paths,
		Seed:          req.Seed,
		Antithetic:    *req.Antithetic,
		MaxConcurrent: s.cfg.EngineWorkers,
		SamplePaths:   s.cfg.SamplePaths,
	})
	if err != nil {
		return mc.Result{}, err
	}
	return eng.Run(ctx)
}

// Analytic 用当前行情同步计算闭式价格与 Greeks。
func (s *Service) Analytic(req RunRequest) (pricing.AnalyticResult, scenario.Scenario, error) {
	_, opt, err := s.normalize(req)
	if err != nil {
		return pricing.AnalyticResult{}, scenario.Scenario{}, err
	}
	snap, err := s.cfg.Book.Snapshot()
	if err != nil {
		return pricing.AnalyticResult{}, scenario.Scenario{}, fmt.Errorf("行情未就绪: %w", err)
	}
	res, err := pricing.AnalyticBlackScholes(opt, snap.Spot, snap.DividendYield, snap.RiskFreeRate, snap.Volatility)
	return res, snap, err
}

// Get 返回单条估值记录。
func (s *Service) Get(ctx context.Context, id string) (*model.PricingRunModel, error) {
	return s.cfg.Runs.Get(ctx, id)
}

// List 返回最近的估值记录。
func (s *Service) List(ctx context.Context, limit int) ([]model.PricingRunModel, error) {
	return s.cfg.Runs.List(ctx, limit)
}

// Samples 返回一次估值的留样路径。
func (s *Service) Samples(ctx context.Context, id string) ([]mc.Path, error) {
	if s.cfg.PathStore == nil {
		return nil, fmt.Errorf("path store 未启用")
	}
	return s.cfg.PathStore.ListSamples(ctx, id)
}
