// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/united-manufacturing-hub/sysmon/pkg/config"
	"github.com/united-manufacturing-hub/sysmon/pkg/constants"
	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/metrics"
	"github.com/united-manufacturing-hub/sysmon/pkg/monitor"
	"github.com/united-manufacturing-hub/sysmon/pkg/sentry"
	"github.com/united-manufacturing-hub/sysmon/pkg/service/hostmetrics"
	"github.com/united-manufacturing-hub/sysmon/pkg/task"
)

// appVersion is set at build time with -ldflags "-X main.appVersion=...".
var appVersion = constants.DefaultAppVersion

// errInvalidConfig is returned after the individual config errors have been logged.
var errInvalidConfig = errors.New("configuration is invalid")

type options struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "sysmon",
		Short:         "Monitor host CPU, memory, disk, network and temperature",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigPath, "path to the config file (.ini, .yaml or .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (DEBUG, INFO, WARNING, ERROR)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the monitor until SIGINT or SIGTERM (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMonitor(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "check-config",
			Short: "Validate the config file and print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}

				out, err := cfg.YAML()
				if err != nil {
					return fmt.Errorf("failed to render configuration: %w", err)
				}

				_, err = cmd.OutOrStdout().Write(out)

				return err
			},
		},
		&cobra.Command{
			Use:   "sample",
			Short: "Take one sample in the foreground and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(opts)
				if err != nil {
					return err
				}

				if err := logger.Configure(cfg.LoggerOptions()); err != nil {
					return err
				}

				return newMonitor(cfg).Tick(cmd.Context())
			},
		},
	)

	return root
}

// loadConfig logs every invalid option before failing.
func loadConfig(opts *options) (*config.Config, error) {
	log := logger.For(logger.ComponentConfig)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				log.Error(e)
			}
		} else {
			log.Error(err)
		}

		return nil, errInvalidConfig
	}

	if opts.logLevel != "" {
		if !logger.ValidLevel(opts.logLevel) {
			log.Errorf("invalid --log-level %q", opts.logLevel)

			return nil, errInvalidConfig
		}

		cfg.Logging.Level = strings.ToUpper(opts.logLevel)
	}

	return cfg, nil
}

// newProvider is replaced in tests.
var newProvider = func(cfg *config.Config) hostmetrics.Provider {
	return hostmetrics.NewGopsutilProvider(cfg.ProviderOptions())
}

func newMonitor(cfg *config.Config) *monitor.Monitor {
	return monitor.New(
		newProvider(cfg),
		cfg.Thresholds(),
		monitor.WithTopProcesses(cfg.Monitor.TopProcesses),
	)
}

// runMonitor follows the startup order config, logger, sentry, metrics, task
// and blocks until a signal arrives and the tick in flight has finished.
func runMonitor(parent context.Context, opts *options) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()

	if err := sentry.Init(sentry.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		AppVersion:  appVersion,
		RunID:       runID,
		Debounce:    true,
	}); err != nil {
		logger.For(logger.ComponentCore).Errorf("Error reporting disabled: %v", err)
	}
	defer sentry.Flush(sentry.FlushTimeout)

	logOpts := cfg.LoggerOptions()
	if sentry.Enabled() {
		logOpts.WrapCore = sentry.WrapCore
	}

	if err := logger.Configure(logOpts); err != nil {
		return err
	}

	log := logger.For(logger.ComponentCore).With("run_id", runID)
	log.Infow("Starting sysmon",
		"version", appVersion,
		"config", cfg.Path,
		"interval", cfg.Monitor.LoopInterval,
		"thresholds", fmt.Sprintf("cpu=%.1f%% memory=%.1f%% disk=%.1f%%",
			cfg.Thresholds().CPUPercent, cfg.Thresholds().MemoryPercent, cfg.Thresholds().DiskPercent))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := task.New(task.Config{Name: constants.DefaultTaskName})

	// ticks keep a context without the signal cancellation so that a tick in
	// flight completes after SIGTERM
	if err := rt.Start(context.WithoutCancel(ctx), newMonitor(cfg).Tick, cfg.Monitor.LoopInterval); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if addr := cfg.MetricsAddr(); addr != "" {
		server := metrics.SetupMetricsEndpoint(addr, rt.IsRunning)

		g.Go(func() error {
			<-gctx.Done()

			return metrics.Shutdown(server, constants.ShutdownTimeout)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Infof("Shutdown requested, waiting for the current tick of %s to finish", rt.Name())
		rt.Stop(true)
		log.Infof("Task %s stopped after %d ticks", rt.Name(), rt.Ticks())

		return nil
	})

	if err := g.Wait(); err != nil {
		sentry.ReportIssuef(sentry.IssueTypeError, log, "Unclean shutdown: %w", err)
	}

	log.Info("sysmon stopped")

	return nil
}
