package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/socli/internal/app"
	"github.com/riskibarqy/socli/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build runtime: %v\n", err)
		os.Exit(1)
	}

	runErr := rt.Run(ctx)
	rt.Close(context.Background())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "socli: %v\n", runErr)
		os.Exit(1)
	}
}
