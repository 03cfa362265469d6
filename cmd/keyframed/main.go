// Command keyframed runs the long-lived video generation daemon: the
// workflow manager polling the queue, the HTTP API, and the heartbeat
// reclaim loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"keyframe/internal/api"
	"keyframe/internal/config"
	"keyframe/internal/daemon"
	"keyframe/internal/logging"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/stage"
	"keyframe/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("configuration loaded", "path", resolvedPath)
	} else {
		logger.Info("configuration file not found, using defaults", "path", resolvedPath)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}

	manager, err := workflow.NewManager(ctx, cfg, store, logger)
	if err != nil {
		store.Close()
		return err
	}

	notifier := notifications.NewService(cfg)
	server := api.NewServer(cfg, store, logger, notifier, func(ctx context.Context) map[string]stage.Health {
		return manager.Status(ctx).StageHealth
	})

	d, err := daemon.New(cfg, store, logger, manager, server)
	if err != nil {
		store.Close()
		return err
	}

	if err := d.Start(ctx); err != nil {
		store.Close()
		return err
	}

	logger.Info("daemon started", "pid", os.Getpid(), "queue_db", cfg.QueueDBPath())
	<-ctx.Done()
	logger.Info("shutting down")

	return d.Close()
}
