package config

// Config 是 Carlo 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Scenario ScenarioConfig `toml:"scenario"`
	Market   MarketConfig   `toml:"market"`
	Engine   EngineConfig   `toml:"engine"`
	Store    StoreConfig    `toml:"store"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// ScenarioConfig 指向场景文件；watch 开启后文件改动即时生效。
type ScenarioConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// MarketConfig 控制可选的行情源；关闭时场景完全由文件与接口覆盖驱动。
type MarketConfig struct {
	Enabled        bool   `toml:"enabled"`
	Symbol         string `toml:"symbol"`
	RESTBaseURL    string `toml:"rest_base_url"`
	RefreshSeconds int    `toml:"refresh_seconds"`

	HistVolEnabled  bool   `toml:"histvol_enabled"`
	HistVolInterval string `toml:"histvol_interval"`
	HistVolWindow   int    `toml:"histvol_window"`
}

// EngineConfig 是 Monte Carlo 引擎的默认参数。
type EngineConfig struct {
	DefaultPaths  int  `toml:"default_paths"`
	DefaultSteps  int  `toml:"default_steps"`
	SamplePaths   int  `toml:"sample_paths"`
	Workers       int  `toml:"workers"`        // 单次估值内的并发 worker 数，0 取 GOMAXPROCS
	MaxConcurrent int  `toml:"max_concurrent"` // 同时进行的估值数
	Antithetic    bool `toml:"antithetic"`
}

type StoreConfig struct {
	RunsDB  string `toml:"runs_db"`
	PathsDB string `toml:"paths_db"`
}
