package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pjecz/casiopea/internal/cli"
	"github.com/pjecz/casiopea/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := cli.NewEnv()
	err := cli.NewRootCommand().Execute(ctx, env, os.Args[1:])
	if closeErr := env.Close(); closeErr != nil {
		logger.WithModule("cli").Warn("failed to close database", zap.Error(closeErr))
	}
	_ = logger.Sync()

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
