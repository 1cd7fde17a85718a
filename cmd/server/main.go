package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dopamine-deck/internal/infrastructure/app"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Init(ctx)
	if err != nil {
		fmt.Printf("app init error: %v\n", err)
		return
	}
	defer application.Close()

	if application.Config.Smoke && application.Pool != nil {
		runRepoSmokeTest(ctx, application.Log, application.Pool)
	}

	go func() {
		if err := application.Run(ctx); err != nil {
			application.Log.Error("grpc server stopped", zap.Error(err))
		}
	}()

	application.Log.Info("server is starting", zap.String("env", application.Config.Logger.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	s := <-quit
	application.Log.Info("shutting down server", zap.String("signal", s.String()))

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	application.Shutdown(shutdownCtx)
	application.Log.Info("server stopped")
}
