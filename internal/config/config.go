package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	Model           string `yaml:"model"`

	MaxWorkers              int     `yaml:"max_workers"`
	MaxRecordsPerRun        int     `yaml:"max_records_per_run"`
	RetryAttempts           int     `yaml:"retry_attempts"`
	RateLimitBackoffSeconds int     `yaml:"rate_limit_backoff_seconds"`
	RetryDelaySeconds       int     `yaml:"retry_delay_seconds"`
	MatchThreshold          float64 `yaml:"match_threshold"`
	MatchTitleWeight        float64 `yaml:"match_title_weight"`
	MatchDescriptionWeight  float64 `yaml:"match_description_weight"`
	IdentityPrefix          string  `yaml:"identity_prefix"`

	DBPath    string `yaml:"db_path"`
	OutputDir string `yaml:"output_dir"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.Model, "MODEL")
	envOverrideInt(&cfg.MaxWorkers, "MAX_WORKERS")
	envOverrideInt(&cfg.MaxRecordsPerRun, "MAX_RECORDS_PER_RUN")
	envOverrideInt(&cfg.RetryAttempts, "RETRY_ATTEMPTS")
	envOverrideInt(&cfg.RateLimitBackoffSeconds, "RATE_LIMIT_BACKOFF_SECONDS")
	envOverrideInt(&cfg.RetryDelaySeconds, "RETRY_DELAY_SECONDS")
	envOverrideFloat(&cfg.MatchThreshold, "MATCH_THRESHOLD")
	envOverrideFloat(&cfg.MatchTitleWeight, "MATCH_TITLE_WEIGHT")
	envOverrideFloat(&cfg.MatchDescriptionWeight, "MATCH_DESCRIPTION_WEIGHT")
	envOverride(&cfg.IdentityPrefix, "IDENTITY_PREFIX")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.Schedule, "SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.MaxRecordsPerRun == 0 {
		cfg.MaxRecordsPerRun = 200
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RateLimitBackoffSeconds == 0 {
		cfg.RateLimitBackoffSeconds = 30
	}
	if cfg.RetryDelaySeconds == 0 {
		cfg.RetryDelaySeconds = 5
	}
	if cfg.MatchThreshold == 0 {
		cfg.MatchThreshold = 0.70
	}
	if cfg.MatchTitleWeight == 0 {
		cfg.MatchTitleWeight = 0.6
	}
	if cfg.MatchDescriptionWeight == 0 {
		cfg.MatchDescriptionWeight = 0.4
	}
	if cfg.IdentityPrefix == "" {
		cfg.IdentityPrefix = "HU"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./storyscore.db"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatalf("Required config 'anthropic_api_key' is not set (via config.yaml or env var)")
	}
	if cfg.SlackBotToken != "" && cfg.SlackChannelID == "" {
		log.Fatalf("slack_bot_token is set but slack_channel_id is not")
	}

	if cfg.MaxWorkers < 1 {
		log.Fatalf("invalid max_workers '%d': must be >= 1", cfg.MaxWorkers)
	}
	if cfg.MaxRecordsPerRun < 1 {
		log.Fatalf("invalid max_records_per_run '%d': must be >= 1", cfg.MaxRecordsPerRun)
	}
	if cfg.RetryAttempts < 1 {
		log.Fatalf("invalid retry_attempts '%d': must be >= 1", cfg.RetryAttempts)
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 1 {
		log.Fatalf("invalid match_threshold '%f': must be between 0 and 1", cfg.MatchThreshold)
	}
	if cfg.MatchTitleWeight < 0 || cfg.MatchDescriptionWeight < 0 {
		log.Fatalf("invalid match weights: must be >= 0")
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
