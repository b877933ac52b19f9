// Package config loads and validates indexnow configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxBatchSize is the largest urlList the IndexNow API accepts in one request.
const MaxBatchSize = 10000

// Cache backends.
const (
	CacheBackendLocal  = "local"
	CacheBackendGCS    = "gcs"
	CacheBackendMemory = "memory"
)

// UUID sources.
const (
	UUIDSourceRemote = "remote"
	UUIDSourceLocal  = "local"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Data     DataConfig     `mapstructure:"data"`
	Cache    CacheConfig    `mapstructure:"cache"`
	UUID     UUIDConfig     `mapstructure:"uuid"`
	IndexNow IndexNowConfig `mapstructure:"indexnow"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiteConfig describes the website the URLs belong to.
type SiteConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	PublicDir string `mapstructure:"public_dir"`
}

// DataConfig points at the video listing data.
type DataConfig struct {
	VideosPath string `mapstructure:"videos_path"`
}

// CacheConfig selects where the sent-URL cache lives.
type CacheConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSObject string `mapstructure:"gcs_object"`
}

// UUIDConfig controls where new keys come from.
type UUIDConfig struct {
	Source   string `mapstructure:"source"`
	Endpoint string `mapstructure:"endpoint"`
}

// IndexNowConfig configures submission to the IndexNow API.
type IndexNowConfig struct {
	Endpoint         string  `mapstructure:"endpoint"`
	BatchSize        int     `mapstructure:"batch_size"`
	BatchesPerSecond float64 `mapstructure:"batches_per_second"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// PubSubConfig holds the optional run-report topic.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The site build already exports PUBLIC_SITE_URL; honor it as a fallback.
	if err := v.BindEnv("site.base_url", "INDEXNOW_SITE_BASE_URL", "PUBLIC_SITE_URL"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Site.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Site.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "")
	v.SetDefault("site.public_dir", "public")
	v.SetDefault("data.videos_path", "src/data/videos.json")
	v.SetDefault("cache.backend", CacheBackendLocal)
	v.SetDefault("cache.path", ".indexnow_cache.json")
	v.SetDefault("cache.gcs_bucket", "")
	v.SetDefault("cache.gcs_object", "indexnow_cache.json")
	v.SetDefault("uuid.source", UUIDSourceRemote)
	v.SetDefault("uuid.endpoint", "https://www.uuidgenerator.net/api/version1")
	v.SetDefault("indexnow.endpoint", "https://api.indexnow.org/IndexNow")
	v.SetDefault("indexnow.batch_size", MaxBatchSize)
	v.SetDefault("indexnow.batches_per_second", 0)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.user_agent", "indexnow-cli/1.0")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces the values every subcommand depends on. Settings read
// only by notify are checked by ValidateNotify.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site.PublicDir) == "" {
		return fmt.Errorf("site.public_dir must be set")
	}
	switch c.UUID.Source {
	case UUIDSourceRemote:
		if c.UUID.Endpoint == "" {
			return fmt.Errorf("uuid.endpoint must be set when uuid.source is %q", UUIDSourceRemote)
		}
	case UUIDSourceLocal:
	default:
		return fmt.Errorf("uuid.source %q is not supported", c.UUID.Source)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// ValidateNotify enforces the values only the notify command needs.
func (c Config) ValidateNotify() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set (env INDEXNOW_SITE_BASE_URL or PUBLIC_SITE_URL)")
	}
	if _, err := c.Host(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheBackendLocal:
		if strings.TrimSpace(c.Cache.Path) == "" {
			return fmt.Errorf("cache.path must be set when cache.backend is %q", CacheBackendLocal)
		}
	case CacheBackendGCS:
		if c.Cache.GCSBucket == "" || c.Cache.GCSObject == "" {
			return fmt.Errorf("cache.gcs_bucket and cache.gcs_object must be set when cache.backend is %q", CacheBackendGCS)
		}
	case CacheBackendMemory:
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.IndexNow.Endpoint == "" {
		return fmt.Errorf("indexnow.endpoint must be set")
	}
	if c.IndexNow.BatchSize <= 0 || c.IndexNow.BatchSize > MaxBatchSize {
		return fmt.Errorf("indexnow.batch_size must be between 1 and %d", MaxBatchSize)
	}
	if c.IndexNow.BatchesPerSecond < 0 {
		return fmt.Errorf("indexnow.batches_per_second must be >= 0")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	return nil
}

// Host returns the hostname of site.base_url.
func (c Config) Host() (string, error) {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return "", fmt.Errorf("site.base_url is not a valid URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("site.base_url %q has no host", c.Site.BaseURL)
	}
	return u.Hostname(), nil
}

// HTTPTimeout converts the HTTP timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
