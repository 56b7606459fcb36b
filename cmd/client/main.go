package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/client"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/config"
)

// main - connects to the game server and plays from the terminal.
func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get current directory: %v\n", err)
		os.Exit(1)
	}

	conf, err := config.Load(filepath.Join(baseDir, "./config.yml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, logger, conf.Client.GetAddr(), os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("could not connect", "addr", conf.Client.GetAddr(), "error", err)
		os.Exit(1)
	}

	context.AfterFunc(ctx, func() {
		_ = c.Close()
	})

	if _, err = c.Run(); err != nil {
		logger.Error("game ended unexpectedly", "error", err)
		_ = c.Close()
		os.Exit(1)
	}

	_ = c.Close()
}
