package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Deployment environments
const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// localBackend is where the backend listens during local development
const localBackend = "http://localhost:5000"

// Config holds the application configuration
type Config struct {
	// Backend
	APIBaseURL   string
	MediaBaseURL string
	Environment  string
	AuthToken    string

	// Cache settings
	CachePath         string
	SearchResultLimit int
	LogLevel          string
	LogFile           string

	// Account provisioning
	AllowedDomainType string
	DomainCacheTTL    time.Duration

	// Console behaviour
	AccountSearchDebounce time.Duration
	ThreadSearchDebounce  time.Duration
	PageSize              int
	RequestTimeout        time.Duration
}

// LoadConfig loads configuration from environment variables layered over an
// optional mailadmin.yaml. An explicit configFile must exist.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mailadmin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "mailadmin"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		APIBaseURL:            strings.TrimRight(v.GetString("api_base_url"), "/"),
		MediaBaseURL:          strings.TrimRight(v.GetString("media_base_url"), "/"),
		Environment:           strings.ToLower(v.GetString("environment")),
		AuthToken:             v.GetString("auth_token"),
		CachePath:             v.GetString("cache_path"),
		SearchResultLimit:     v.GetInt("search_result_limit"),
		LogLevel:              v.GetString("log_level"),
		LogFile:               v.GetString("log_file"),
		AllowedDomainType:     v.GetString("allowed_domain_type"),
		DomainCacheTTL:        v.GetDuration("domain_cache_ttl"),
		AccountSearchDebounce: v.GetDuration("account_search_debounce"),
		ThreadSearchDebounce:  v.GetDuration("thread_search_debounce"),
		PageSize:              v.GetInt("page_size"),
		RequestTimeout:        v.GetDuration("request_timeout"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = profileBaseURL(cfg.Environment)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "")
	v.SetDefault("media_base_url", "")
	v.SetDefault("environment", EnvProduction)
	v.SetDefault("auth_token", "")
	v.SetDefault("cache_path", defaultCachePath())
	v.SetDefault("search_result_limit", 100)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("allowed_domain_type", "gmail")
	v.SetDefault("domain_cache_ttl", 5*time.Minute)
	v.SetDefault("account_search_debounce", 300*time.Millisecond)
	v.SetDefault("thread_search_debounce", 700*time.Millisecond)
	v.SetDefault("page_size", 20)
	v.SetDefault("request_timeout", 30*time.Second)
}

func defaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "mailadmin", "cache.db")
	}
	return "mailadmin.db"
}

// profileBaseURL is the backend origin implied by the environment profile
func profileBaseURL(env string) string {
	if env == EnvLocal {
		return localBackend
	}
	return ""
}

// ResolvedMediaBaseURL returns the origin media URLs are built against:
// the explicit setting, else the environment profile, else the API origin.
func (c *Config) ResolvedMediaBaseURL() string {
	if c.MediaBaseURL != "" {
		return c.MediaBaseURL
	}
	if base := profileBaseURL(c.Environment); base != "" {
		return base
	}
	return c.APIBaseURL
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Environment != EnvLocal && c.Environment != EnvProduction {
		return fmt.Errorf("ENVIRONMENT must be %q or %q", EnvLocal, EnvProduction)
	}

	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if err := validateOrigin(c.APIBaseURL); err != nil {
		return fmt.Errorf("API_BASE_URL: %w", err)
	}
	if c.MediaBaseURL != "" {
		if err := validateOrigin(c.MediaBaseURL); err != nil {
			return fmt.Errorf("MEDIA_BASE_URL: %w", err)
		}
	}

	if c.CachePath == "" {
		return fmt.Errorf("CACHE_PATH is required")
	}

	if c.SearchResultLimit < 1 || c.SearchResultLimit > 1000 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be between 1 and 1000")
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if c.AllowedDomainType == "" {
		return fmt.Errorf("ALLOWED_DOMAIN_TYPE is required")
	}

	if c.DomainCacheTTL <= 0 {
		return fmt.Errorf("DOMAIN_CACHE_TTL must be positive")
	}
	if c.AccountSearchDebounce <= 0 || c.ThreadSearchDebounce <= 0 {
		return fmt.Errorf("search debounce delays must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

func validateOrigin(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
