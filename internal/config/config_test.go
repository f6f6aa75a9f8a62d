package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "MODEL", "MAX_WORKERS", "MAX_RECORDS_PER_RUN", "RETRY_ATTEMPTS",
		"RATE_LIMIT_BACKOFF_SECONDS", "RETRY_DELAY_SECONDS", "MATCH_THRESHOLD",
		"MATCH_TITLE_WEIGHT", "MATCH_DESCRIPTION_WEIGHT", "IDENTITY_PREFIX",
		"DB_PATH", "OUTPUT_DIR", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID",
		"SCHEDULE", "TIMEZONE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	clearConfigEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()

	if cfg.AnthropicAPIKey != "sk-ant-test" {
		t.Fatalf("unexpected api key: %q", cfg.AnthropicAPIKey)
	}
	if cfg.MaxWorkers != 5 {
		t.Fatalf("unexpected max_workers default: %d", cfg.MaxWorkers)
	}
	if cfg.MaxRecordsPerRun != 200 {
		t.Fatalf("unexpected max_records_per_run default: %d", cfg.MaxRecordsPerRun)
	}
	if cfg.RetryAttempts != 3 {
		t.Fatalf("unexpected retry_attempts default: %d", cfg.RetryAttempts)
	}
	if cfg.RateLimitBackoffSeconds != 30 || cfg.RetryDelaySeconds != 5 {
		t.Fatalf("unexpected retry timing defaults: %d/%d", cfg.RateLimitBackoffSeconds, cfg.RetryDelaySeconds)
	}
	if cfg.MatchThreshold != 0.70 {
		t.Fatalf("unexpected match_threshold default: %f", cfg.MatchThreshold)
	}
	if cfg.MatchTitleWeight != 0.6 || cfg.MatchDescriptionWeight != 0.4 {
		t.Fatalf("unexpected match weight defaults: %f/%f", cfg.MatchTitleWeight, cfg.MatchDescriptionWeight)
	}
	if cfg.IdentityPrefix != "HU" {
		t.Fatalf("unexpected identity_prefix default: %q", cfg.IdentityPrefix)
	}
	if cfg.DBPath != "./storyscore.db" {
		t.Fatalf("unexpected db_path default: %q", cfg.DBPath)
	}
	if cfg.OutputDir != "./output" {
		t.Fatalf("unexpected output_dir default: %q", cfg.OutputDir)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
anthropic_api_key: "yaml-key"
max_workers: 3
identity_prefix: "REQ"
match_threshold: 0.80
timezone: "UTC"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	clearConfigEnv(t)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("MAX_WORKERS", "7")

	cfg := LoadConfig()

	if cfg.AnthropicAPIKey != "yaml-key" {
		t.Fatalf("yaml value not loaded: %q", cfg.AnthropicAPIKey)
	}
	if cfg.MaxWorkers != 7 {
		t.Fatalf("env should override yaml, got max_workers=%d", cfg.MaxWorkers)
	}
	if cfg.IdentityPrefix != "REQ" {
		t.Fatalf("yaml identity_prefix not loaded: %q", cfg.IdentityPrefix)
	}
	if cfg.MatchThreshold != 0.80 {
		t.Fatalf("yaml match_threshold not loaded: %f", cfg.MatchThreshold)
	}
}
