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
	Providers struct {
		AlphaVantage struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"alphavantage"`
		CoinGecko struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"coingecko"`
		FMP struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"fmp"`
	} `yaml:"providers"`
	Overview struct {
		Stocks  []string `yaml:"stocks"`
		Cryptos []string `yaml:"cryptos"`
	} `yaml:"overview"`
	Sentiment struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sentiment"`
	Social struct {
		BearerToken string        `yaml:"bearer_token"`
		BaseURL     string        `yaml:"base_url"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxResults  int           `yaml:"max_results"`
	} `yaml:"social"`
	Alerts struct {
		Universe      []string      `yaml:"universe"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
		Sink          string        `yaml:"sink"` // kafka | redis | log
		Archive       bool          `yaml:"archive"`
	} `yaml:"alerts"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
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
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TrendingTTL   time.Duration `yaml:"trending_ttl"`
		ProfileTTL    time.Duration `yaml:"profile_ttl"`
		MemoryMaxSize int           `yaml:"memory_max_size"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	c.Defaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. Overrides apply before validation so secrets can be supplied
// by the environment alone.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Providers.CoinGecko.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.Providers.FMP.APIKey = v
	}
	if v := os.Getenv("HUGGINGFACE_API_KEY"); v != "" {
		c.Sentiment.APIKey = v
	}
	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		c.Social.BearerToken = v
	}
	if v := os.Getenv("ALERT_UNIVERSE"); v != "" {
		c.Alerts.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("ALERT_SINK"); v != "" {
		c.Alerts.Sink = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}

	c.Defaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Providers.AlphaVantage.APIKey == "" {
		return fmt.Errorf("providers.alphavantage.api_key is required")
	}
	if c.Providers.FMP.APIKey == "" {
		return fmt.Errorf("providers.fmp.api_key is required")
	}
	if len(c.Alerts.Universe) == 0 {
		return fmt.Errorf("alerts.universe cannot be empty")
	}
	switch c.Alerts.Sink {
	case "kafka", "redis", "log":
	default:
		return fmt.Errorf("alerts.sink must be 'kafka', 'redis' or 'log', got '%s'", c.Alerts.Sink)
	}
	if c.Alerts.Sink == "kafka" || c.Alerts.Archive {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers are required for the kafka sink")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required for the kafka sink")
		}
	}
	if c.Alerts.Sink == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("redis must be enabled for the redis sink")
	}
	return nil
}

// Defaults fills zero values with sane defaults for optional sections.
func (c *Config) Defaults() {
	if c.Providers.AlphaVantage.BaseURL == "" {
		c.Providers.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		c.Providers.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Providers.FMP.BaseURL == "" {
		c.Providers.FMP.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	if c.Providers.AlphaVantage.Timeout <= 0 {
		c.Providers.AlphaVantage.Timeout = 10 * time.Second
	}
	if c.Providers.CoinGecko.Timeout <= 0 {
		c.Providers.CoinGecko.Timeout = 10 * time.Second
	}
	if c.Providers.FMP.Timeout <= 0 {
		c.Providers.FMP.Timeout = 10 * time.Second
	}
	if c.Sentiment.BaseURL == "" {
		c.Sentiment.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if c.Sentiment.Model == "" {
		c.Sentiment.Model = "ProsusAI/finbert"
	}
	if c.Sentiment.Timeout <= 0 {
		c.Sentiment.Timeout = 40 * time.Second
	}
	if c.Social.BaseURL == "" {
		c.Social.BaseURL = "https://api.twitter.com/2"
	}
	if c.Social.Timeout <= 0 {
		c.Social.Timeout = 20 * time.Second
	}
	if c.Social.MaxResults <= 0 {
		c.Social.MaxResults = 10
	}
	if len(c.Overview.Stocks) == 0 {
		c.Overview.Stocks = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META", "NFLX"}
	}
	if len(c.Overview.Cryptos) == 0 {
		c.Overview.Cryptos = []string{"BTC", "ETH", "SOL", "ADA"}
	}
	if len(c.Alerts.Universe) == 0 {
		c.Alerts.Universe = []string{"AAPL", "TSLA", "NVDA", "MSFT", "BTC", "ETH"}
	}
	if c.Alerts.Sink == "" {
		c.Alerts.Sink = "log"
	}
	if c.Alerts.SweepInterval <= 0 {
		c.Alerts.SweepInterval = 5 * time.Minute
	}
	if c.Cache.TrendingTTL <= 0 {
		c.Cache.TrendingTTL = time.Minute
	}
	if c.Cache.ProfileTTL <= 0 {
		c.Cache.ProfileTTL = time.Hour
	}
	if c.Cache.MemoryMaxSize <= 0 {
		c.Cache.MemoryMaxSize = 1000
	}
}
