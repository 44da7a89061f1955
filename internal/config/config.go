// Package config loads and validates crawler configuration via Viper,
// layering defaults, an optional config file, and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crawlcore/webcrawler/internal/engine"
)

// Config captures service configuration loaded via Viper. Crawler mirrors
// engine.CrawlConfiguration field-for-field; Logging and Server configure
// the surrounding process (log verbosity, status/metrics HTTP port).
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
}

// ServerConfig controls the status/metrics HTTP surface that the crawl
// command always starts; Port must be > 0.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig is the Viper-facing mirror of engine.CrawlConfiguration.
type CrawlerConfig struct {
	MaxPagesToCrawl                    int    `mapstructure:"max_pages_to_crawl"`
	MaxPagesToCrawlPerDomain           int    `mapstructure:"max_pages_to_crawl_per_domain"`
	CrawlTimeoutSeconds                int    `mapstructure:"crawl_timeout_seconds"`
	MaxConcurrentThreads                int    `mapstructure:"max_concurrent_threads"`
	IsExternalPageCrawlingEnabled       bool   `mapstructure:"is_external_page_crawling_enabled"`
	IsExternalPageLinksCrawlingEnabled  bool   `mapstructure:"is_external_page_links_crawling_enabled"`
	UserAgentString                     string `mapstructure:"user_agent_string"`
}

// ToEngineConfig converts the Viper-facing struct to engine.CrawlConfiguration.
func (c CrawlerConfig) ToEngineConfig() engine.CrawlConfiguration {
	return engine.CrawlConfiguration{
		MaxPagesToCrawl:                    c.MaxPagesToCrawl,
		MaxPagesToCrawlPerDomain:           c.MaxPagesToCrawlPerDomain,
		CrawlTimeoutSeconds:                c.CrawlTimeoutSeconds,
		MaxConcurrentThreads:               c.MaxConcurrentThreads,
		IsExternalPageCrawlingEnabled:      c.IsExternalPageCrawlingEnabled,
		IsExternalPageLinksCrawlingEnabled: c.IsExternalPageLinksCrawlingEnabled,
		UserAgentString:                    c.UserAgentString,
	}
}

// Load builds a Config from disk/environment. path may be empty, in which
// case only defaults and environment variables apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)

	// max_pages_to_crawl / max_pages_to_crawl_per_domain: 0 denies
	// everything (see engine.DecisionMaker), so the defaults are large
	// rather than 0 — unlimited is not representable, only "very high",
	// under that sentinel.
	v.SetDefault("crawler.max_pages_to_crawl", 1000)
	v.SetDefault("crawler.max_pages_to_crawl_per_domain", 1000)
	v.SetDefault("crawler.crawl_timeout_seconds", 0)
	v.SetDefault("crawler.max_concurrent_threads", 4)
	v.SetDefault("crawler.is_external_page_crawling_enabled", false)
	v.SetDefault("crawler.is_external_page_links_crawling_enabled", false)
	v.SetDefault("crawler.user_agent_string", "webcrawler/0.1")
}

// Validate enforces required values.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.MaxConcurrentThreads < 1 {
		return fmt.Errorf("crawler.max_concurrent_threads must be >= 1")
	}
	if c.Crawler.MaxPagesToCrawl < 0 {
		return fmt.Errorf("crawler.max_pages_to_crawl must be >= 0")
	}
	if c.Crawler.MaxPagesToCrawlPerDomain < 0 {
		return fmt.Errorf("crawler.max_pages_to_crawl_per_domain must be >= 0")
	}
	if c.Crawler.CrawlTimeoutSeconds < 0 {
		return fmt.Errorf("crawler.crawl_timeout_seconds must be >= 0")
	}
	return nil
}

// CrawlTimeout converts the configured timeout to a time.Duration. Zero
// means unlimited.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawler.CrawlTimeoutSeconds) * time.Second
}
