// Package config loads YAML configuration with environment overrides.
package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "SCOUT_CONFIG"

// Config holds all settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Feeds      FeedsConfig      `yaml:"feeds"`
	Collector  CollectorConfig  `yaml:"collector"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig describes the HTTP surface.
type ServerConfig struct {
	Port          string `yaml:"port"`
	Mode          string `yaml:"mode"` // debug, release
	ScanAuthToken string `yaml:"scanAuthToken"`
}

// FeedsConfig describes which subreddits to poll and how often.
type FeedsConfig struct {
	Subreddits  []string `yaml:"subreddits"`
	FetchLimit  int      `yaml:"fetchLimit"`
	Schedule    string   `yaml:"schedule"` // robfig/cron expression, e.g. "@every 30m"
	AcceptDelay Duration `yaml:"acceptDelay"`
	FeedDelay   Duration `yaml:"feedDelay"`
}

// CollectorConfig selects and parameterizes the feed backend.
type CollectorConfig struct {
	Mode         string `yaml:"mode"` // public, api, mock
	UserAgent    string `yaml:"userAgent"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
}

// ClassifierConfig selects and parameterizes the classifier backend.
type ClassifierConfig struct {
	Backend      string `yaml:"backend"` // gemini, local, mock
	GeminiAPIKey string `yaml:"geminiApiKey"`
	GeminiModel  string `yaml:"geminiModel"`
	LocalURL     string `yaml:"localUrl"`
	LocalModel   string `yaml:"localModel"`
}

// StorageConfig selects the blob backend and the keys used on it.
type StorageConfig struct {
	Bucket     string `yaml:"bucket"` // GCS when set, local files otherwise
	Dir        string `yaml:"dir"`
	LedgerKey  string `yaml:"ledgerKey"`
	ResultsKey string `yaml:"resultsKey"`
}

// LoggingConfig controls the default slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel resolves the configured level string for slog.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Duration parses Go duration strings from YAML (e.g. "2s", "30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	if _, err := strconv.Atoi(c.Server.Port); err == nil {
		return ":" + c.Server.Port
	}
	return c.Server.Port
}

// Load reads YAML configuration (if present) and applies environment
// overrides. The path comes from SCOUT_CONFIG when empty.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (using defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (using defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("SCAN_AUTH_TOKEN"); v != "" {
		c.Server.ScanAuthToken = v
	}

	if v := os.Getenv("COLLECTOR_MODE"); v != "" {
		c.Collector.Mode = v
	}
	if v := os.Getenv("REDDIT_USER_AGENT"); v != "" {
		c.Collector.UserAgent = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Collector.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Collector.ClientSecret = v
	}
	if v := os.Getenv("REDDIT_USERNAME"); v != "" {
		c.Collector.Username = v
	}
	if v := os.Getenv("REDDIT_PASSWORD"); v != "" {
		c.Collector.Password = v
	}

	if strings.EqualFold(os.Getenv("USE_GEMINI"), "true") {
		c.Classifier.Backend = "gemini"
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Classifier.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Classifier.GeminiModel = v
	}
	if v := os.Getenv("LLM_URL"); v != "" {
		c.Classifier.LocalURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.Classifier.LocalModel = v
	}

	if v := os.Getenv("GCS_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "release",
		},
		Feeds: FeedsConfig{
			Subreddits:  []string{"perfumes", "nicheperfumes"},
			FetchLimit:  20,
			Schedule:    "@every 30m",
			AcceptDelay: Duration(2 * time.Second),
			FeedDelay:   Duration(5 * time.Second),
		},
		Collector: CollectorConfig{
			Mode:      "public",
			UserAgent: "go:fragrance-scout:v1.0.0 (by /u/FragranceScoutBot)",
		},
		Classifier: ClassifierConfig{
			Backend:     "local",
			GeminiModel: "gemini-2.5-flash",
			LocalURL:    "http://127.0.0.1:1234/v1/chat/completions",
			LocalModel:  "qwen/qwen3-4b-thinking-2507",
		},
		Storage: StorageConfig{
			Dir:        "data",
			LedgerKey:  "sent_posts.json",
			ResultsKey: "found_posts.json",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
