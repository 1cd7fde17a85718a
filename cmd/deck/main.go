package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dopamine-deck/internal/adapters/input/tui"
	"dopamine-deck/internal/config"
	"dopamine-deck/internal/infrastructure/app"
	"dopamine-deck/internal/logger"

	"go.uber.org/zap"
)

const flushTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "deck error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.InitFile(cfg.Logger.Env, cfg.Logger.File)
	if err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	defer func() { _ = log.Sync() }()

	core, err := app.NewCore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer core.Close()

	go core.Loop.Run(ctx)
	defer core.Loop.Stop()
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		core.Sessions.Close(flushCtx)
	}()

	log.Info("terminal deck started", zap.String("deck_source", cfg.Deck.Source))
	if err := tui.RunDeck(ctx, core.Sessions, os.Stdout); err != nil {
		log.Error("terminal deck stopped", zap.Error(err))
		return err
	}
	log.Info("terminal deck stopped")
	return nil
}
