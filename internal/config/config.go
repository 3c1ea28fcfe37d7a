package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// 默认值常量
const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppHTTPAddr   = ":9980"
	defaultAppLogPath    = "/data/logs/carlo.log"
	defaultScenarioPath  = "configs/scenario.yaml"
	defaultMarketREST    = "https://api.binance.com"
	defaultMarketSymbol  = "BTCUSDT"
	defaultMarketRefresh = 30
	defaultHistVolIv     = "1h"
	defaultHistVolWindow = 168
	defaultEnginePaths   = 100000
	defaultEngineSteps   = 252
	defaultEngineSamples = 16
	defaultEngineMaxRuns = 2
	defaultStoreRunsDB   = "/data/db/pricing_runs.db"
	defaultStorePathsDB  = "/data/db/path_points.db"
)

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.App.LogPath == "" {
		c.App.LogPath = defaultAppLogPath
	}
	if c.Scenario.Path == "" {
		c.Scenario.Path = defaultScenarioPath
	}
	if c.Market.RESTBaseURL == "" {
		c.Market.RESTBaseURL = defaultMarketREST
	}
	if c.Market.Symbol == "" {
		c.Market.Symbol = defaultMarketSymbol
	}
	if c.Market.RefreshSeconds <= 0 {
		c.Market.RefreshSeconds = defaultMarketRefresh
	}
	if c.Market.HistVolInterval == "" {
		c.Market.HistVolInterval = defaultHistVolIv
	}
	if c.Market.HistVolWindow <= 0 {
		c.Market.HistVolWindow = defaultHistVolWindow
	}
	if c.Engine.DefaultPaths <= 0 {
		c.Engine.DefaultPaths = defaultEnginePaths
	}
	if c.Engine.DefaultSteps <= 0 {
		c.Engine.DefaultSteps = defaultEngineSteps
	}
	if c.Engine.SamplePaths <= 0 {
		c.Engine.SamplePaths = defaultEngineSamples
	}
	if c.Engine.MaxConcurrent <= 0 {
		c.Engine.MaxConcurrent = defaultEngineMaxRuns
	}
	if c.Store.RunsDB == "" {
		c.Store.RunsDB = defaultStoreRunsDB
	}
	if c.Store.PathsDB == "" {
		c.Store.PathsDB = defaultStorePathsDB
	}
}

// validate 对配置进行基础校验。
func validate(c *Config) error {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("app.log_level 不支持: %s", c.App.LogLevel)
	}
	if c.Market.Enabled && strings.TrimSpace(c.Market.Symbol) == "" {
		return fmt.Errorf("market.symbol cannot be empty when market.enabled")
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must be >= 0")
	}
	return nil
}
