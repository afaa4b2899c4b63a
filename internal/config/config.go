package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultNodeURL  = "https://fullnode.testnet.aptoslabs.com/v1"
	DefaultContract = "0x4660906d4ed4062029a19e989e51c814aa5b0711ef0ba0433b5f7487cb03b257"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	NodeURL             string
	Contract            string
	PGDSN               string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RedisChannel        string
	PollInterval        time.Duration
	BatchSize           int
	HeadLag             uint64
	From                string
	To                  string
	Duration            time.Duration
	SafetyMargin        time.Duration
	GraduationThreshold decimal.Decimal
	FeeBps              int64
	APIAddr             string
	DecodeErrors        string
	MaxRetries          int
	RetryBackoff        time.Duration
	LogLevel            string
	DryRun              bool
	Migrate             bool
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	envFile := ".env"
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil && f.Value.String() != "" {
			envFile = f.Value.String()
		}
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// names used by existing deployments
	_ = v.BindEnv("node-url", "INDEXER_NODE_URL", "APTOS_NODE_URL")
	_ = v.BindEnv("pg-dsn", "INDEXER_PG_DSN", "DATABASE_URL")

	v.SetDefault("node-url", DefaultNodeURL)
	v.SetDefault("contract", DefaultContract)
	v.SetDefault("redis-db", 0)
	v.SetDefault("redis-channel", "curvescope:events")
	v.SetDefault("poll-interval", 3*time.Second)
	v.SetDefault("batch-size", 200)
	v.SetDefault("head-lag", uint64(50))
	v.SetDefault("safety-margin", 5*time.Second)
	v.SetDefault("graduation-threshold", "2150000000000")
	v.SetDefault("fee-bps", 100)
	v.SetDefault("api-addr", ":3000")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("migrate", true)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	threshold, err := decimal.NewFromString(strings.TrimSpace(v.GetString("graduation-threshold")))
	if err != nil {
		return Config{}, fmt.Errorf("graduation-threshold: %w", err)
	}

	cfg := Config{
		NodeURL:             strings.TrimSpace(v.GetString("node-url")),
		Contract:            strings.TrimSpace(v.GetString("contract")),
		PGDSN:               v.GetString("pg-dsn"),
		RedisAddr:           v.GetString("redis-addr"),
		RedisPassword:       v.GetString("redis-password"),
		RedisDB:             v.GetInt("redis-db"),
		RedisChannel:        v.GetString("redis-channel"),
		PollInterval:        v.GetDuration("poll-interval"),
		BatchSize:           v.GetInt("batch-size"),
		HeadLag:             v.GetUint64("head-lag"),
		From:                strings.TrimSpace(v.GetString("from")),
		To:                  strings.TrimSpace(v.GetString("to")),
		Duration:            v.GetDuration("duration"),
		SafetyMargin:        v.GetDuration("safety-margin"),
		GraduationThreshold: threshold,
		FeeBps:              v.GetInt64("fee-bps"),
		APIAddr:             v.GetString("api-addr"),
		DecodeErrors:        v.GetString("decode-errors"),
		MaxRetries:          v.GetInt("max-retries"),
		RetryBackoff:        v.GetDuration("retry-backoff"),
		LogLevel:            v.GetString("log-level"),
		DryRun:              v.GetBool("dry-run"),
		Migrate:             v.GetBool("migrate"),
	}

	return cfg, nil
}

// ValidateIndexer checks the settings every ingesting command needs.
func (c Config) ValidateIndexer() error {
	var problems []string
	if c.NodeURL == "" {
		problems = append(problems, "node-url is required")
	}
	if c.Contract == "" {
		problems = append(problems, "contract is required")
	}
	if c.PGDSN == "" && !c.DryRun {
		problems = append(problems, "pg-dsn is required unless --dry-run is set")
	}
	if c.PollInterval < time.Second {
		problems = append(problems, fmt.Sprintf("poll-interval must be at least 1s, got %s", c.PollInterval))
	}
	if c.BatchSize <= 0 {
		problems = append(problems, "batch-size must be greater than zero")
	}
	if c.FeeBps < 0 || c.FeeBps > 10000 {
		problems = append(problems, fmt.Sprintf("fee-bps must be within [0, 10000], got %d", c.FeeBps))
	}
	if !c.GraduationThreshold.IsPositive() {
		problems = append(problems, "graduation-threshold must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAPI checks the settings the read API needs.
func (c Config) ValidateAPI() error {
	if c.PGDSN == "" {
		return fmt.Errorf("invalid config: pg-dsn is required")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("invalid config: api-addr is required")
	}
	return nil
}
