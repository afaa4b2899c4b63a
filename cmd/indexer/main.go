package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"curveScope/internal/aggregate"
	"curveScope/internal/config"
	"curveScope/internal/indexer"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "BullPump launchpad indexer for Aptos",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "optional dotenv file loaded before the environment")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the ledger continuously and serve the read API",
		RunE:  runIndexer,
	}
	addIngestFlags(runCmd.Flags())
	addCursorFlags(runCmd.Flags())
	runCmd.Flags().String("api-addr", ":3000", "read API listen address, empty disables the server")
	root.AddCommand(runCmd)

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Poll back to back within a wall-clock budget, then exit",
		RunE:  runBatch,
	}
	addIngestFlags(batchCmd.Flags())
	addCursorFlags(batchCmd.Flags())
	batchCmd.Flags().Duration("duration", 0, "total wall-clock budget")
	batchCmd.Flags().Duration("safety-margin", 5*time.Second, "time reserved for shutdown")
	root.AddCommand(batchCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay a closed version range without touching the live cursor",
		RunE:  runBackfill,
	}
	addIngestFlags(backfillCmd.Flags())
	backfillCmd.Flags().String("from", "", "first version (inclusive)")
	backfillCmd.Flags().String("to", "", "last version (inclusive)")
	backfillCmd.Flags().Int("max-retries", 5, "maximum retry attempts per range")
	backfillCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	root.AddCommand(backfillCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read API only",
		RunE:  runServe,
	}
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	serveCmd.Flags().String("api-addr", ":3000", "listen address")
	root.AddCommand(serveCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Classify and decode one transaction without writing anything",
		RunE:  runInspect,
	}
	inspectCmd.Flags().String("node-url", config.DefaultNodeURL, "Aptos fullnode REST URL")
	inspectCmd.Flags().String("contract", config.DefaultContract, "launchpad contract address")
	inspectCmd.Flags().String("hash", "", "transaction hash")
	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addIngestFlags(fs *pflag.FlagSet) {
	fs.String("node-url", config.DefaultNodeURL, "Aptos fullnode REST URL")
	fs.String("contract", config.DefaultContract, "launchpad contract address")
	fs.String("pg-dsn", "", "Postgres DSN")
	fs.Bool("migrate", true, "apply the embedded schema on startup")
	fs.Bool("dry-run", false, "keep derived state in memory instead of Postgres")
	fs.String("redis-addr", "", "Redis address for change notifications, empty disables them")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database")
	fs.String("redis-channel", "curvescope:events", "Redis pub/sub channel")
	fs.Int("batch-size", indexer.DefaultBatchSize, "transactions per fetch")
	fs.String("graduation-threshold", aggregate.DefaultGraduationThreshold.String(), "reserve in octas that graduates a pool")
	fs.Int64("fee-bps", aggregate.DefaultFeeBps, "fee in basis points deducted on direct purchase calls")
	fs.String("decode-errors", "", "optional JSONL file for decode errors")
}

func addCursorFlags(fs *pflag.FlagSet) {
	fs.String("from", "", "last processed version to resume after")
	fs.Uint64("head-lag", indexer.DefaultHeadLag, "versions behind head to start from when there is no history")
	fs.Duration("poll-interval", indexer.DefaultPollInterval, "delay between polling cycles")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
