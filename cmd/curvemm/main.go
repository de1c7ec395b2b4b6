package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"curvemm/internal/config"
	"curvemm/internal/engine"
	"curvemm/internal/oracle"
	"curvemm/internal/replay"
	"curvemm/internal/storage"
	"curvemm/internal/storage/postgres"
	"curvemm/internal/token"
)

const engineAccount = "engine"

func main() {
	root := &cobra.Command{
		Use:          "curvemm",
		Short:        "Constrained AMM curve engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a serialized operation stream through the engine",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("events", "./data/events.jsonl", "output events JSONL")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for events and snapshots")
	replayCmd.Flags().String("state-name", "replay", "progress row name in the snapshot store")
	replayCmd.Flags().Bool("stop-on-error", false, "abort on the first rejected operation")
	replayCmd.Flags().String("market-maker", "mm", "market maker identity")
	replayCmd.Flags().String("admin", "admin", "administrator identity")
	replayCmd.Flags().StringSlice("asset", nil, "assets to register, SYM:decimals (comma-separated)")
	replayCmd.Flags().StringSlice("mint", nil, "opening balances, account:SYM:amount (comma-separated)")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	deriveCmd := &cobra.Command{
		Use:   "derive-pair",
		Short: "Derive the deterministic pair id for a token pair",
		RunE:  runDerivePair,
	}

	deriveCmd.Flags().String("token-x", "", "token X identity")
	deriveCmd.Flags().String("token-y", "", "token Y identity")

	root.AddCommand(deriveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := token.NewMemoryLedger()
	if err := replay.SeedLedger(ledger, cfg.Assets, cfg.Mints); err != nil {
		return err
	}

	var sink storage.EventSink = storage.NewJsonlSink(cfg.Events)
	var snapshots replay.SnapshotStore
	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = storage.MultiSink{sink, store}
		snapshots = store
	}

	eng := engine.New(engine.Config{
		MarketMaker: cfg.MarketMaker,
		Admin:       cfg.Admin,
		Account:     engineAccount,
	}, oracle.NewMemoryStore(engineAccount), ledger, sink, logger)

	runner := replay.NewRunner(replay.RunConfig{
		InputPath:   cfg.In,
		StateName:   cfg.StateName,
		StopOnError: cfg.StopOnError,
	}, eng, snapshots, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("events", cfg.Events),
		zap.String("market_maker", cfg.MarketMaker),
		zap.String("admin", cfg.Admin),
		zap.Bool("stop_on_error", cfg.StopOnError),
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("ops=%d applied=%d rejected=%d\n", summary.Ops, summary.Applied, summary.Rejected)
	return nil
}

func runDerivePair(cmd *cobra.Command, _ []string) error {
	tokenX, _ := cmd.Flags().GetString("token-x")
	tokenY, _ := cmd.Flags().GetString("token-y")
	if tokenX == "" || tokenY == "" {
		return fmt.Errorf("token-x and token-y are required")
	}

	fmt.Println(oracle.DerivePairID(tokenX, tokenY).Hex())
	return nil
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
