package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/maltedev/aliexpress-scraper/internal/models"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Relay    RelayConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	MetricsEnabled bool
}

type LogConfig struct {
	Level slog.Level
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

type ScraperConfig struct {
	BaseURL         string
	Timeout         time.Duration
	CaptureWait     time.Duration
	MaxRetries      int
	RateLimitMin    time.Duration
	RateLimitMax    time.Duration
	DefaultCurrency models.CurrencyCode
}

type BrowserConfig struct {
	Headless       bool
	ExecutablePath string
	Locale         string
	AcceptLanguage string
	TimezoneID     string
	ProxyServer    string
}

// LoadDotEnv reads KEY=value files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 3000),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
		Log: LogConfig{
			Level: getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "aliexpress_scraper"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Stream:   getEnv("REDIS_STREAM", "stream:product_prices"),
		},
		Relay: RelayConfig{
			PollInterval: getEnvDuration("RELAY_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getEnvInt("RELAY_BATCH_SIZE", 100),
		},
		Scraper: ScraperConfig{
			BaseURL:         getEnv("SCRAPER_BASE_URL", "https://pt.aliexpress.com/item/%s.html"),
			Timeout:         getEnvDuration("SCRAPER_TIMEOUT", 60*time.Second),
			CaptureWait:     getEnvDuration("SCRAPER_CAPTURE_WAIT", 15*time.Second),
			MaxRetries:      getEnvInt("SCRAPER_MAX_RETRIES", 2),
			RateLimitMin:    getEnvDuration("SCRAPER_RATE_LIMIT_MIN", 2*time.Second),
			RateLimitMax:    getEnvDuration("SCRAPER_RATE_LIMIT_MAX", 5*time.Second),
			DefaultCurrency: models.CurrencyCode(strings.ToUpper(getEnv("SCRAPER_DEFAULT_CURRENCY", "BRL"))),
		},
		Browser: BrowserConfig{
			Headless:       getEnvBool("SCRAPER_HEADLESS", true),
			ExecutablePath: getEnv("BROWSER_EXECUTABLE_PATH", getEnv("PUPPETEER_EXECUTABLE_PATH", "")),
			Locale:         getEnv("BROWSER_LOCALE", "pt-BR"),
			AcceptLanguage: getEnv("BROWSER_ACCEPT_LANGUAGE", "pt-BR,pt;q=0.9,en;q=0.8"),
			TimezoneID:     getEnv("BROWSER_TIMEZONE", "America/Sao_Paulo"),
			ProxyServer:    getEnv("BROWSER_PROXY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if strings.Count(c.Scraper.BaseURL, "%s") != 1 {
		return fmt.Errorf("scraper base url must contain exactly one %%s placeholder: %q", c.Scraper.BaseURL)
	}

	if _, ok := models.ParseCurrencyCode(string(c.Scraper.DefaultCurrency)); !ok {
		return fmt.Errorf("invalid default currency: %q", c.Scraper.DefaultCurrency)
	}

	if c.Scraper.Timeout <= 0 || c.Scraper.CaptureWait <= 0 {
		return fmt.Errorf("scraper timeouts must be positive")
	}

	if c.Scraper.RateLimitMax < c.Scraper.RateLimitMin {
		return fmt.Errorf("rate limit max (%s) is below min (%s)", c.Scraper.RateLimitMax, c.Scraper.RateLimitMin)
	}

	return nil
}

// ProductURL builds the product page address for an item id.
func (c ScraperConfig) ProductURL(productID string) string {
	return fmt.Sprintf(c.BaseURL, productID)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return defaultValue
	}
	return level
}
