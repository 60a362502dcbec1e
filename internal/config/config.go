package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the distiller
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Image    ImageConfig    `mapstructure:"image"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Server   ServerConfig   `mapstructure:"server"`
}

// ImageConfig contains the product-photo acceptance rules and fetch budget
type ImageConfig struct {
	MinSide         int           `mapstructure:"min_side"`
	MinAspect       float64       `mapstructure:"min_aspect"`
	MaxAspect       float64       `mapstructure:"max_aspect"`
	AllowedTypes    []string      `mapstructure:"allowed_types"`
	HeaderReadBytes int64         `mapstructure:"header_read_bytes"`
	MaxConcurrent   int           `mapstructure:"max_concurrent"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	Blocklist       []string      `mapstructure:"blocklist"`
}

// ScrapeConfig contains page fetching configuration
type ScrapeConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SizeLimitBytes int64         `mapstructure:"size_limit_bytes"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// ResolverConfig configures the arbitration model endpoint
type ResolverConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	APIURL            string        `mapstructure:"api_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// BatchConfig bounds how many pages run at once; 0 means no limit
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ServerConfig holds settings for the read-only products API
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ExportPath     string   `mapstructure:"export_path"`
}

// NonProductPathSubstrings are matched case-insensitively against URL paths.
var NonProductPathSubstrings = []string{"email_sign_up", "EMAILprompt", "sign_up", "banner", "promo", "logo"}

// DefaultImageConfig returns the default image filtering configuration
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		MinSide:         500,
		MinAspect:       0.8,
		MaxAspect:       1.25,
		AllowedTypes:    []string{"jpeg", "jpg", "png", "webp"},
		HeaderReadBytes: 64 * 1024,
		MaxConcurrent:   10,
		FetchTimeout:    8 * time.Second,
		Blocklist:       append([]string(nil), NonProductPathSubstrings...),
	}
}

// WithDefaults fills every unset field from DefaultImageConfig
func (c ImageConfig) WithDefaults() ImageConfig {
	d := DefaultImageConfig()
	if c.MinSide <= 0 {
		c.MinSide = d.MinSide
	}
	if c.MinAspect <= 0 {
		c.MinAspect = d.MinAspect
	}
	if c.MaxAspect <= 0 {
		c.MaxAspect = d.MaxAspect
	}
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = d.AllowedTypes
	}
	if c.HeaderReadBytes <= 0 {
		c.HeaderReadBytes = d.HeaderReadBytes
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = d.MaxConcurrent
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if len(c.Blocklist) == 0 {
		c.Blocklist = d.Blocklist
	}
	return c
}

// DefaultScrapeConfig returns the default page fetching configuration
func DefaultScrapeConfig() ScrapeConfig {
	chromeMajor := 133
	if env := os.Getenv("CHROME_MAJOR"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			chromeMajor = parsed
		}
	}

	userAgent := os.Getenv("SCRAPE_USER_AGENT")
	if userAgent == "" {
		userAgent = fmt.Sprintf("Mozilla/5.0 (Windows NT 10; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.6943.126 Safari/537.36", chromeMajor)
	}

	return ScrapeConfig{
		UserAgent:      userAgent,
		Timeout:        15 * time.Second,
		SizeLimitBytes: 6_000_000,
		MaxRetries:     2,
	}
}

// WithDefaults fills unset fields from DefaultScrapeConfig. A zero config is
// the default config; otherwise MaxRetries 0 is kept since it means no retries.
func (c ScrapeConfig) WithDefaults() ScrapeConfig {
	d := DefaultScrapeConfig()
	if c == (ScrapeConfig{}) {
		return d
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.SizeLimitBytes <= 0 {
		c.SizeLimitBytes = d.SizeLimitBytes
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// DefaultResolverConfig returns the default arbitration endpoint settings
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Provider:          "openai",
		Model:             "gpt-5-nano",
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		MaxRetries:        2,
	}
}

// Load reads .env files, an optional config.yaml and DISTILL_* environment variables
func Load() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("DISTILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFiles loads local env files without overriding the process environment
func loadEnvFiles() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		_ = godotenv.Load(file)
	}
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	img := DefaultImageConfig()
	scrape := DefaultScrapeConfig()
	res := DefaultResolverConfig()

	v.SetDefault("log_level", "info")

	v.SetDefault("image.min_side", img.MinSide)
	v.SetDefault("image.min_aspect", img.MinAspect)
	v.SetDefault("image.max_aspect", img.MaxAspect)
	v.SetDefault("image.allowed_types", img.AllowedTypes)
	v.SetDefault("image.header_read_bytes", img.HeaderReadBytes)
	v.SetDefault("image.max_concurrent", img.MaxConcurrent)
	v.SetDefault("image.fetch_timeout", img.FetchTimeout.String())
	v.SetDefault("image.blocklist", img.Blocklist)

	v.SetDefault("scrape.user_agent", scrape.UserAgent)
	v.SetDefault("scrape.timeout", scrape.Timeout.String())
	v.SetDefault("scrape.size_limit_bytes", scrape.SizeLimitBytes)
	v.SetDefault("scrape.max_retries", scrape.MaxRetries)

	v.SetDefault("resolver.provider", res.Provider)
	v.SetDefault("resolver.model", res.Model)
	v.SetDefault("resolver.api_key", "")
	v.SetDefault("resolver.api_url", "")
	v.SetDefault("resolver.timeout", res.Timeout.String())
	v.SetDefault("resolver.requests_per_second", res.RequestsPerSecond)
	v.SetDefault("resolver.burst", res.Burst)
	v.SetDefault("resolver.max_retries", res.MaxRetries)

	v.SetDefault("batch.concurrency", 0)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.export_path", "output/products.json")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Image.MinSide <= 0 {
		return fmt.Errorf("image.min_side must be positive, got %d", cfg.Image.MinSide)
	}
	if cfg.Image.MinAspect <= 0 || cfg.Image.MinAspect > cfg.Image.MaxAspect {
		return fmt.Errorf("image aspect range [%g, %g] is invalid", cfg.Image.MinAspect, cfg.Image.MaxAspect)
	}
	if cfg.Image.MaxConcurrent <= 0 {
		return fmt.Errorf("image.max_concurrent must be positive, got %d", cfg.Image.MaxConcurrent)
	}
	if cfg.Image.HeaderReadBytes <= 0 {
		return fmt.Errorf("image.header_read_bytes must be positive, got %d", cfg.Image.HeaderReadBytes)
	}
	if cfg.Batch.Concurrency < 0 {
		return fmt.Errorf("batch.concurrency cannot be negative, got %d", cfg.Batch.Concurrency)
	}
	switch strings.ToLower(cfg.Resolver.Provider) {
	case "openai", "ollama":
	default:
		return fmt.Errorf("resolver.provider must be 'openai' or 'ollama', got: %s", cfg.Resolver.Provider)
	}
	return nil
}

// CompileRegexes pre-compiles the patterns shared by the image components
func CompileRegexes() map[string]*regexp.Regexp {
	return map[string]*regexp.Regexp{
		"descriptorDigits": regexp.MustCompile(`\d+`),
		"resolutionSuffix": regexp.MustCompile(`(?i)[-_](\d+x\d+|thumb|small|medium|max|large|original)`),
	}
}
