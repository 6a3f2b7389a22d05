package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grassrenderer/config"
	"grassrenderer/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
	devLog     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "grass",
		Short:         "GPU grass field: compute shader physics and tessellated blades",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "settings file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.devLog, "dev", false, "human readable console logs")

	root.AddCommand(newRunCmd(opts), newSimulateCmd(opts))
	return root
}

// setup loads settings and builds the logger every command starts with
func (o *rootOptions) setup() (config.Settings, *zap.Logger, error) {
	// settings decide the log level, so load them with a bootstrap logger first
	boot, err := logger.New(logger.Config{Level: o.logLevel, Development: o.devLog})
	if err != nil {
		return config.Settings{}, nil, err
	}
	settings, err := config.Load(o.configPath, boot)
	if err != nil {
		boot.Error("Failed to load settings", zap.Error(err))
		return settings, nil, err
	}

	level := settings.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	log, err := logger.New(logger.Config{
		Level:       level,
		Development: o.devLog || settings.Log.Development,
	})
	if err != nil {
		return settings, nil, fmt.Errorf("invalid log settings: %w", err)
	}
	return settings, log, nil
}

// signalContext is cancelled on interrupt or terminate
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
