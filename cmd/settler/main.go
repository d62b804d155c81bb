package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/condtoken/config"
	"github.com/alejandrodnm/condtoken/internal/adapters/notify"
	"github.com/alejandrodnm/condtoken/internal/adapters/oracle"
	"github.com/alejandrodnm/condtoken/internal/adapters/storage"
	"github.com/alejandrodnm/condtoken/internal/application/settlement"
	"github.com/alejandrodnm/condtoken/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print the effects table of every response")
	scenario := flag.String("scenario", "", "run a YAML scenario (or a directory of them) in memory and exit")
	workers := flag.Int("workers", 0, "parallel scenario runs (0 = NumCPU)")
	show := flag.Bool("show", false, "print instance state and journal")
	journal := flag.Int("journal", 20, "journal entries printed by -show")
	postFeed := flag.String("post-feed", "", "record an oracle post NAME=VALUE in the store")
	deposit := flag.Int64("deposit", 0, "deposit N units of the reserve asset")
	redeem := flag.String("redeem", "", "redeem -amount tokens of side yes|no")
	suggest := flag.String("flag", "", "suggest the winner yes|no")
	amount := flag.Int64("amount", 0, "amount for -redeem, -flag or -asset")
	from := flag.String("from", "cli", "sender address")
	asset := flag.String("asset", "", "send -amount of a raw asset id")
	flag.Parse()

	// Los escenarios llevan su propia config de contrato; -config solo aporta el logging.
	cfg, err := config.Load(*configPath)
	if err != nil && *scenario == "" {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}
	if cfg == nil {
		cfg, _ = config.Parse(nil)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsole(*table)

	if *scenario != "" {
		os.Exit(runScenario(ctx, *scenario, *workers, notifier))
	}

	params, err := cfg.Contract.Params()
	if err != nil {
		slog.Error("invalid contract config", "err", err)
		os.Exit(1)
	}
	policy, err := cfg.Settlement.Policy()
	if err != nil {
		slog.Error("invalid settlement config", "err", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	var feed ports.FeedReader = store
	if cfg.Oracle.Source == "http" {
		feed = oracle.NewHTTPFeed(cfg.Oracle.BaseURL, cfg.Oracle.RatePerSec, cfg.OracleTimeout())
	}

	inst, err := settlement.New(ctx, params, policy, feed, store)
	if err != nil {
		slog.Error("failed to start instance", "err", err)
		os.Exit(1)
	}

	slog.Info("settler starting",
		"config", *configPath,
		"instance", inst.Address(),
		"oracle_source", cfg.Oracle.Source,
		"fallback", policy.Fallback,
		"losing", policy.Losing,
	)

	if *postFeed != "" {
		if cfg.Oracle.Source == "http" {
			slog.Warn("post recorded in the store but feeds are read over http", "base_url", cfg.Oracle.BaseURL)
		}
		if err := recordPost(ctx, store, inst.Params().OracleID, *postFeed); err != nil {
			slog.Error("post-feed failed", "err", err)
			os.Exit(1)
		}
	}

	req := sendRequest{
		From:    *from,
		Deposit: *deposit,
		Redeem:  *redeem,
		Flag:    *suggest,
		Asset:   *asset,
		Amount:  *amount,
	}
	if req.any() {
		if err := send(ctx, inst, notifier, req); err != nil {
			slog.Error("send failed", "err", err)
			os.Exit(1)
		}
	}

	if *show || (*postFeed == "" && !req.any()) {
		notifier.PrintState(inst.Params(), inst.State())
		entries, err := store.Journal(ctx, inst.Address(), *journal)
		if err != nil {
			slog.Error("failed to read journal", "err", err)
			os.Exit(1)
		}
		notifier.PrintJournal(entries)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
