package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(wikiAPIURLEnv, "")

	cfg := Load()
	if cfg.Wiki.APIURL != "https://en.wikipedia.org/w/api.php" {
		t.Fatalf("unexpected api url: %s", cfg.Wiki.APIURL)
	}
	if cfg.Submission.StaleMonths != 6 || cfg.Submission.TemplateName != "AFC submission" {
		t.Fatalf("unexpected submission defaults: %+v", cfg.Submission)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Kind != "category" {
		t.Fatalf("unexpected default sources: %+v", cfg.Sources)
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.Scheduler.Location())
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
wiki:
  apiUrl: https://test.wiki/w/api.php
  timeout: 5s
submission:
  staleMonths: 12
scheduler:
  interval: 1h
  timezone: Europe/Berlin
sources:
  - name: mine
    kind: static
    titles: ["Draft:A", "Draft:B"]
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(wikiAPIURLEnv, "")
	t.Setenv(wikiAccessToken, "token-from-env")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()
	if cfg.Wiki.APIURL != "https://test.wiki/w/api.php" || cfg.Wiki.Timeout != 5*time.Second {
		t.Fatalf("file values not merged: %+v", cfg.Wiki)
	}
	if cfg.Wiki.UserAgent != "DraftReviewer/1.0" {
		t.Fatalf("defaults lost on merge: %+v", cfg.Wiki)
	}
	if cfg.Wiki.AccessToken != "token-from-env" || cfg.Logging.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Wiki, cfg.Logging)
	}
	if cfg.Submission.StaleMonths != 12 || cfg.Submission.TemplateName != "AFC submission" {
		t.Fatalf("unexpected submission config: %+v", cfg.Submission)
	}
	if cfg.Scheduler.Interval != time.Hour || cfg.Scheduler.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected scheduler config: %+v", cfg.Scheduler)
	}
	if len(cfg.Sources) != 1 || len(cfg.Sources[0].Titles) != 2 {
		t.Fatalf("unexpected sources: %+v", cfg.Sources)
	}
}

func TestLoadFallsBackOnBadFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(wikiAPIURLEnv, "https://env.wiki/w/api.php")

	cfg := Load()
	if cfg.Wiki.APIURL != "https://env.wiki/w/api.php" {
		t.Fatalf("env override not applied on fallback: %s", cfg.Wiki.APIURL)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cases := map[string]func(c *Config){
		"missing api url":   func(c *Config) { c.Wiki.APIURL = "" },
		"relative api url":  func(c *Config) { c.Wiki.APIURL = "not a url" },
		"missing kind":      func(c *Config) { c.Sources = append(c.Sources, SourceConfig{Name: "broken"}) },
		"unknown kind":      func(c *Config) { c.Sources = append(c.Sources, SourceConfig{Name: "rss", Kind: "rss"}) },
		"empty category":    func(c *Config) { c.Sources = []SourceConfig{{Name: "cat", Kind: SourceCategory}} },
		"listing w/o url":   func(c *Config) { c.Sources = []SourceConfig{{Name: "list", Kind: SourceListing}} },
		"static w/o titles": func(c *Config) { c.Sources = []SourceConfig{{Name: "fixed", Kind: SourceStatic}} },
		"negative limit":    func(c *Config) { c.Sources[0].Limit = -1 },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	cfg = defaultConfig()
	cfg.Sources = append(cfg.Sources, SourceConfig{Name: "backlog", Kind: SourceListing, URL: "https://en.wikipedia.org/wiki/Wikipedia:AfC/backlog"})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("listing source should validate: %v", err)
	}
}
