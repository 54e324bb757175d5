// Command fdmsim simulates a frequency-division multiplexed tone link.
//
// It synthesizes per-channel message tones, modulates them onto cosine
// carriers, sums all channels into one composite signal, optionally
// perturbs it with noise, and recovers each message through coherent
// demodulation. Per-channel recovery quality is logged; waveform and
// spectrum panels or a SQLite run archive can be written on request.
//
// Usage:
//
//	fdmsim [flags]
//
// Examples:
//
//	fdmsim
//	fdmsim -c scenario.yaml -o panels
//	fdmsim -c scenario.yaml -db runs.db -label bench
//	fdmsim -workers 4 -verbose
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-fdm/cmd/fdmsim/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	config, err := app.NewConfigFromCLI()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if config.Verbose {
		logLevel.Set(slog.LevelDebug)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
