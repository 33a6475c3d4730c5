package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/podium/internal/smoke"
	"github.com/okian/podium/pkg/logger"
)

const runTimeout = 5 * time.Minute

func main() {
	cfg := &smoke.Config{}
	var logFormat, logLevel string

	fs := pflag.NewFlagSet("podium-smoke", pflag.ExitOnError)
	fs.StringVar(&cfg.BaseURL, "url", smoke.DefaultBaseURL, "base URL of the service")
	fs.StringVar(&cfg.AccessCode, "code", os.Getenv("PODIUM_ACCESS_CODE"), "admin access code (default $PODIUM_ACCESS_CODE)")
	fs.IntVar(&cfg.Games, "games", smoke.DefaultGames, "number of catalog games to write into")
	fs.IntVar(&cfg.Positions, "positions", smoke.DefaultPositions, "positions per game")
	fs.IntVar(&cfg.Rounds, "rounds", smoke.DefaultRounds, "competing writes per game and position")
	fs.IntVar(&cfg.Workers, "workers", smoke.DefaultWorkers, "concurrent submitters")
	fs.DurationVar(&cfg.Timeout, "timeout", smoke.DefaultTimeout, "per-request timeout")
	fs.BoolVar(&cfg.Keep, "keep", false, "keep the written results instead of deleting them")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "random seed for faculty picks (0 = random)")
	fs.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&logLevel, "log-level", "info", "log level")
	fs.Usage = func() {
		os.Stderr.WriteString("podium-smoke overwrites the first --games x --positions slots of a running\n" +
			"service, verifies the leaderboard and deletes the slots again.\n" +
			"Do not point it at a ledger holding real results.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if _, err := smoke.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
