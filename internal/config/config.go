package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Hunt modes.
const (
	ModeStrategies = "strategies"
	ModeAttempts   = "attempts"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database; empty disables hunt history
	DatabaseURL string

	// Redis; empty keeps rate limiter state in memory
	RedisURL string

	// OIDC bearer-token verification for /api; empty disables it
	OIDCIssuer   string
	OIDCClientID string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Hunting
	MaxDownloadAttempts int           // env: FONT_MAX_DOWNLOAD_ATTEMPTS, default: 10
	DownloadTimeout     time.Duration // env: FONT_DOWNLOAD_TIMEOUT_MS, default: 30000
	OutputDir           string        // env: FONT_OUTPUT_DIR, default: ./public/fonts
	HuntMode            string        // env: FONT_HUNT_MODE, default: strategies
	MaxFontBytes        int64         // env: FONT_MAX_BYTES, default: 20 MiB
	UserAgent           string        // env: FONT_USER_AGENT
	RatePerHost         float64       // env: FONT_RATE_PER_HOST, default: 2
	AllowPrivateHosts   bool          // env: FONT_ALLOW_PRIVATE_HOSTS
	HuntDeadline        time.Duration // env: FONT_HUNT_DEADLINE, default: 10m
	GitHubAPIURL        string        // env: GITHUB_API_URL
	ArchiveURL          string        // env: ARCHIVE_URL

	// Loaded from CONFIG_FILE when present
	File *YAMLConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		Env:          getEnv("ENV", "development"),
		ServerAddr:   getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		OIDCIssuer:   getEnv("OIDC_ISSUER", ""),
		OIDCClientID: getEnv("OIDC_CLIENT_ID", ""),
		CORSOrigins:  getEnv("CORS_ORIGINS", ""),

		MaxDownloadAttempts: getEnvInt("FONT_MAX_DOWNLOAD_ATTEMPTS", 10),
		DownloadTimeout:     time.Duration(getEnvInt("FONT_DOWNLOAD_TIMEOUT_MS", 30000)) * time.Millisecond,
		OutputDir:           getEnv("FONT_OUTPUT_DIR", "./public/fonts"),
		HuntMode:            strings.ToLower(getEnv("FONT_HUNT_MODE", ModeStrategies)),
		MaxFontBytes:        int64(getEnvInt("FONT_MAX_BYTES", 20<<20)),
		UserAgent:           getEnv("FONT_USER_AGENT", ""),
		RatePerHost:         getEnvFloat("FONT_RATE_PER_HOST", 2),
		AllowPrivateHosts:   getEnv("FONT_ALLOW_PRIVATE_HOSTS", "") != "",
		HuntDeadline:        getEnvDuration("FONT_HUNT_DEADLINE", 10*time.Minute),
		GitHubAPIURL:        getEnv("GITHUB_API_URL", "https://api.github.com"),
		ArchiveURL:          getEnv("ARCHIVE_URL", "https://archive.org"),
	}
	if cfg.HuntMode != ModeAttempts {
		cfg.HuntMode = ModeStrategies
	}
	if cfg.MaxDownloadAttempts < 1 {
		cfg.MaxDownloadAttempts = 1
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HuntSettings is the immutable snapshot a hunter works from.
type HuntSettings struct {
	MaxAttempts       int
	Timeout           time.Duration
	OutputDir         string
	Mode              string
	MaxFontBytes      int64
	UserAgent         string
	RatePerHost       float64
	AllowPrivateHosts bool
	GitHubAPIURL      string
	ArchiveURL        string

	ExtraDirectTemplates []string
	ExtraCDNTemplates    []string
	DisabledStrategies   []string
}

// HuntSettings copies the hunting configuration, merging in the YAML file.
func (c *Config) HuntSettings() HuntSettings {
	s := HuntSettings{
		MaxAttempts:       c.MaxDownloadAttempts,
		Timeout:           c.DownloadTimeout,
		OutputDir:         c.OutputDir,
		Mode:              c.HuntMode,
		MaxFontBytes:      c.MaxFontBytes,
		UserAgent:         c.UserAgent,
		RatePerHost:       c.RatePerHost,
		AllowPrivateHosts: c.AllowPrivateHosts,
		GitHubAPIURL:      c.GitHubAPIURL,
		ArchiveURL:        c.ArchiveURL,
	}
	if c.File != nil {
		s.ExtraDirectTemplates = append([]string(nil), c.File.Templates.Direct...)
		s.ExtraCDNTemplates = append([]string(nil), c.File.Templates.CDN...)
		s.DisabledStrategies = append([]string(nil), c.File.Strategies.Disabled...)
	}
	return s
}

// StrategyEnabled reports whether name is absent from the disabled list.
func (s HuntSettings) StrategyEnabled(name string) bool {
	for _, d := range s.DisabledStrategies {
		if strings.EqualFold(d, name) {
			return false
		}
	}
	return true
}
