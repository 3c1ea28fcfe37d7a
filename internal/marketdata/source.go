package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carlo/internal/logger"
	"carlo/internal/scenario"

	"github.com/adshao/go-binance/v2"
)

// Config 控制行情源轮询。
type Config struct {
	Symbol          string
	RefreshSeconds  int
	RESTBaseURL     string
	HTTPTimeout     time.Duration
	HistVolEnabled  bool
	HistVolInterval string
	HistVolWindow   int
}

func (c Config) withDefaults() Config {
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = 30
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if strings.TrimSpace(c.HistVolInterval) == "" {
		c.HistVolInterval = "1h"
	}
	if c.HistVolWindow <= 0 {
		c.HistVolWindow = 168
	}
	return c
}

// Source 基于 go-binance SDK 轮询现货价格并写入行情簿的 spot quote；
// 可选用最近 K 线估计历史波动率写入 vol quote。
// 行情簿句柄被所有过程对象共享，这里的每次刷新就是运行期重绑定。
type Source struct {
	cfg    Config
	client *binance.Client
	book   *scenario.Book
}

func New(cfg Config, book *scenario.Book) (*Source, error) {
	final := cfg.withDefaults()
	if strings.TrimSpace(final.Symbol) == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if book == nil {
		return nil, fmt.Errorf("book 不能为空")
	}
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(final.RESTBaseURL); base != "" {
		client.BaseURL = base
	}
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Source{cfg: final, client: client, book: book}, nil
}

// Run 按配置周期刷新，直到 ctx 结束。单次刷新失败只告警，不中断循环。
func (s *Source) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.RefreshSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Source) refresh(ctx context.Context) {
	if err := s.RefreshSpot(ctx); err != nil {
		logger.Warnf("刷新现货价格失败 (%s): %v", s.cfg.Symbol, err)
	}
	if s.cfg.HistVolEnabled {
		if err := s.RefreshHistVol(ctx); err != nil {
			logger.Warnf("刷新历史波动率失败 (%s): %v", s.cfg.Symbol, err)
		}
	}
}

// RefreshSpot 拉取最新成交价并写入 spot quote。
func (s *Source) RefreshSpot(ctx context.Context) error {
	prices, err := s.client.NewListPricesService().Symbol(s.cfg.Symbol).Do(ctx)
	if err != nil {
		return err
	}
	if len(prices) == 0 || prices[0] == nil {
		return fmt.Errorf("empty price response for %s", s.cfg.Symbol)
	}
	px := parseFloat(prices[0].Price)
	if px <= 0 {
		return fmt.Errorf("invalid price %q for %s", prices[0].Price, s.cfg.Symbol)
	}
	s.book.SetSpot(px)
	logger.Debugf("spot 更新: %s=%v", s.cfg.Symbol, px)
	return nil
}

// RefreshHistVol 用最近 HistVolWindow 根 K 线的收盘价估计年化波动率并写入 vol quote。
func (s *Source) RefreshHistVol(ctx context.Context) error {
	limit := s.cfg.HistVolWindow + 1
	kls, err := s.client.NewKlinesService().
		Symbol(s.cfg.Symbol).
		Interval(s.cfg.HistVolInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return err
	}
	closes := make([]float64, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		closes = append(closes, parseFloat(kl.Close))
	}
	vol, err := AnnualizedVol(closes, s.cfg.HistVolInterval)
	if err != nil {
		return err
	}
	s.book.SetVolatility(vol)
	logger.Debugf("histvol 更新: %s σ=%v (%d 根 %s K 线)",
		s.cfg.Symbol, vol, len(closes), s.cfg.HistVolInterval)
	return nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
