package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		ScanTTL   time.Duration `yaml:"scan_ttl"`
		MemoryMax int           `yaml:"memory_max"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		Yahoo struct {
			BaseURL  string        `yaml:"base_url"`
			Range    string        `yaml:"range"`
			Interval string        `yaml:"interval"`
			Timeout  time.Duration `yaml:"timeout"`
		} `yaml:"yahoo"`
		FRED struct {
			BaseURL string        `yaml:"base_url"`
			APIKey  string        `yaml:"api_key"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"fred"`
	} `yaml:"sources"`
	Scan struct {
		Universe      []string `yaml:"universe"`
		EquityProxies []string `yaml:"equity_proxies"`
		ForceInclude  []string `yaml:"force_include"`
		LongLags      []int    `yaml:"long_lags"`
		ShortLags     []int    `yaml:"short_lags"`
		Threshold     float64  `yaml:"threshold"`
		MinObs        int      `yaml:"min_observations"`
		RecentWindow  int      `yaml:"recent_window"`
		RecentMinObs  int      `yaml:"recent_min_observations"`
		NoiseLevel    float64  `yaml:"noise_level"`
	} `yaml:"scan"`
	Assessor struct {
		Provider string        `yaml:"provider"` // "auto" or "chat"
		BaseURL  string        `yaml:"base_url"`
		Model    string        `yaml:"model"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"assessor"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML, overrides with environment variables,
// then validates, so secrets like FRED_API_KEY may live only in the
// environment.
func LoadWithEnv(path string) (*Config, error) {
	c, err := load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Sources.FRED.APIKey = v
	}
	if v := os.Getenv("ASSESSOR_API_KEY"); v != "" {
		c.Assessor.APIKey = v
	}
	if v := os.Getenv("SCAN_UNIVERSE"); v != "" {
		c.Scan.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	return &c, nil
}

// applyDefaults fills the scan tunables with the documented defaults so a
// minimal config file still produces a working scanner.
func (c *Config) applyDefaults() {
	if c.Sources.Yahoo.BaseURL == "" {
		c.Sources.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Sources.Yahoo.Range == "" {
		c.Sources.Yahoo.Range = "10y"
	}
	if c.Sources.Yahoo.Interval == "" {
		c.Sources.Yahoo.Interval = "1d"
	}
	if c.Sources.FRED.BaseURL == "" {
		c.Sources.FRED.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if len(c.Scan.LongLags) == 0 {
		c.Scan.LongLags = []int{0, 5, 10, 20, 40, 60}
	}
	if len(c.Scan.ShortLags) == 0 {
		c.Scan.ShortLags = []int{0, 5, 10}
	}
	if c.Scan.Threshold == 0 {
		c.Scan.Threshold = 0.15
	}
	if c.Scan.MinObs == 0 {
		c.Scan.MinObs = 30
	}
	if c.Scan.RecentWindow == 0 {
		c.Scan.RecentWindow = 60
	}
	if c.Scan.RecentMinObs == 0 {
		c.Scan.RecentMinObs = 20
	}
	if c.Scan.NoiseLevel == 0 {
		c.Scan.NoiseLevel = 0.001
	}
	if c.Assessor.Provider == "" {
		c.Assessor.Provider = "auto"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Scan.Universe) == 0 {
		return fmt.Errorf("scan.universe cannot be empty")
	}
	if c.Sources.FRED.APIKey == "" {
		return fmt.Errorf("sources.fred.api_key is required")
	}
	if c.Assessor.Provider != "auto" && c.Assessor.Provider != "chat" {
		return fmt.Errorf("assessor.provider must be 'auto' or 'chat', got '%s'", c.Assessor.Provider)
	}
	if c.Assessor.Provider == "chat" && (c.Assessor.BaseURL == "" || c.Assessor.Model == "") {
		return fmt.Errorf("assessor.base_url and assessor.model are required for the chat provider")
	}
	return nil
}
