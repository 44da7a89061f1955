package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
logging:
  development: false
crawler:
  max_pages_to_crawl: 50
  max_pages_to_crawl_per_domain: 10
  crawl_timeout_seconds: 120
  max_concurrent_threads: 6
  is_external_page_crawling_enabled: true
  is_external_page_links_crawling_enabled: true
  user_agent_string: test-agent
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected logging.development to be false")
	}
	if cfg.Crawler.MaxPagesToCrawl != 50 || cfg.Crawler.MaxConcurrentThreads != 6 {
		t.Fatalf("expected crawler overrides to apply, got %+v", cfg.Crawler)
	}
	if !cfg.Crawler.IsExternalPageCrawlingEnabled || !cfg.Crawler.IsExternalPageLinksCrawlingEnabled {
		t.Fatalf("expected external crawling flags to apply")
	}

	engineCfg := cfg.Crawler.ToEngineConfig()
	if engineCfg.MaxPagesToCrawlPerDomain != 10 {
		t.Fatalf("expected engine config conversion to preserve per-domain cap, got %+v", engineCfg)
	}
}

func TestLoadAppliesDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.MaxConcurrentThreads != 4 {
		t.Fatalf("expected default max_concurrent_threads 4, got %d", cfg.Crawler.MaxConcurrentThreads)
	}
	if cfg.Crawler.CrawlTimeoutSeconds != 0 {
		t.Fatalf("expected default crawl_timeout_seconds 0 (unlimited), got %d", cfg.Crawler.CrawlTimeoutSeconds)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:  ServerConfig{Port: 8080},
		Crawler: CrawlerConfig{MaxConcurrentThreads: 1},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid concurrency",
			cfg: func() Config {
				c := base
				c.Crawler.MaxConcurrentThreads = 0
				return c
			}(),
			want: "max_concurrent_threads",
		},
		{
			name: "negative timeout",
			cfg: func() Config {
				c := base
				c.Crawler.CrawlTimeoutSeconds = -1
				return c
			}(),
			want: "crawl_timeout_seconds",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
