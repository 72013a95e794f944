package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/belajar-alkitab-backend/internal/app"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		fmt.Printf("failed to start app: %v\n", err)
		_ = a.Shutdown(context.Background())
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Run)
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down", "timeout", a.Cfg.ShutdownTimeout.String())
		return shutdown.Drain(a.Cfg.ShutdownTimeout, a.Shutdown)
	})
	if err := g.Wait(); err != nil {
		fmt.Printf("server exited: %v\n", err)
		os.Exit(1)
	}
}
