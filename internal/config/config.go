package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"turfdesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CartStoreRedis  = "redis"
	CartStoreSQLite = "sqlite"
	CartStoreMemory = "memory"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Backend    BackendConfig    `yaml:"backend"`
	Redis      RedisConfig      `yaml:"redis"`
	Cart       CartConfig       `yaml:"cart"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
	Business   models.Business  `yaml:"business"`
	Billing    BillingConfig    `yaml:"billing"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// BackendConfig описывает удалённый сервис данных
type BackendConfig struct {
	BaseURL         string `yaml:"base_url"`
	Token           string `yaml:"token"`
	Email           string `yaml:"email"`
	Password        string `yaml:"password"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CartConfig struct {
	Store      string `yaml:"store"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	SQLitePath string `yaml:"sqlite_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
	CORS      APICORSConfig      `yaml:"cors"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APICORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
	// Schedule is a cron spec for the daily report export; empty disables it.
	Schedule string `yaml:"schedule"`
}

type BillingConfig struct {
	SearchLimit        int    `yaml:"search_limit"`
	DefaultPaymentMode string `yaml:"default_payment_mode"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend base_url %q is not an absolute URL", c.Backend.BaseURL)
	}

	switch c.Cart.Store {
	case CartStoreRedis, CartStoreSQLite, CartStoreMemory:
	default:
		return fmt.Errorf("unknown cart store %q", c.Cart.Store)
	}
	if c.Cart.Store == CartStoreSQLite && c.Cart.SQLitePath == "" {
		return errors.New("cart.sqlite_path is required for the sqlite store")
	}

	if c.Billing.SearchLimit <= 0 {
		return errors.New("billing.search_limit must be positive")
	}
	if !models.IsPaymentMode(c.Billing.DefaultPaymentMode) {
		return fmt.Errorf("unknown default payment mode %q", c.Billing.DefaultPaymentMode)
	}

	if c.API.Enabled && c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth is enabled but no api_keys are configured")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "turfdesk"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 15
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.CacheTTLSeconds == 0 {
		c.Backend.CacheTTLSeconds = models.SpacesCacheTTL
	}

	if c.Cart.Store == "" {
		c.Cart.Store = CartStoreMemory
	}
	if c.Cart.TTLMinutes == 0 {
		c.Cart.TTLMinutes = models.DefaultCartTTL / 60
	}

	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}

	if c.Billing.SearchLimit == 0 {
		c.Billing.SearchLimit = models.DefaultSearchLimit
	}
	if c.Billing.DefaultPaymentMode == "" {
		c.Billing.DefaultPaymentMode = models.PaymentCash
	}
}
