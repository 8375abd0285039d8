package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/statekit"
	"github.com/aretw0/statekit/internal/cli"
	"github.com/aretw0/statekit/internal/config"
	"github.com/aretw0/statekit/pkg/domain"
	"github.com/aretw0/statekit/pkg/observability"
	"github.com/aretw0/statekit/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath  string
	sessionID   string
	debug       bool
	showMetrics bool

	cfg      config.Config
	logger   *slog.Logger
	backend  *cli.Backend
	registry *prometheus.Registry
	metrics  *observability.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "statekit",
		Short:         "statekit is a reactive state core with persistence and plugins",
		Long:          `statekit keeps named stores, entity collections, dirty checks and persisted forms, and resumes them from snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Path to the configuration file (YAML or JSON)")
	root.PersistentFlags().StringVar(&a.sessionID, "session", "default", "Session id the stores are persisted under")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "Print store metrics to stderr when the command ends")

	root.AddCommand(
		newTodosCmd(a),
		newDemoCmd(a),
		newSnapshotCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cli.NewLogger(cfg, a.debug)
	a.registry = prometheus.NewRegistry()
	if a.metrics, err = observability.NewMetrics(a.registry); err != nil {
		return err
	}
	a.backend, err = cli.OpenBackend(cfg.Persistence, a.logger)
	if err != nil {
		return err
	}
	a.logger.Debug("backend opened", "backend", cfg.Persistence.Backend, "session_id", a.sessionID)
	return nil
}

func (a *app) close(w io.Writer) error {
	if a.backend == nil {
		return nil
	}
	if a.showMetrics {
		if err := a.writeMetrics(w); err != nil {
			a.logger.Warn("failed to write metrics", "error", err)
		}
	}
	return a.backend.Close()
}

// storeOptions wires the CLI logger, the audit log and the metrics into a store.
func (a *app) storeOptions() []store.Option {
	return []store.Option{
		store.WithLogger(a.logger),
		store.WithHooks(domain.MergeHooks(a.metrics.Hooks(), observability.LogHooks(a.logger))),
	}
}

func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// resume opens the session and loads the persisted state into stores.
func (a *app) resume(ctx context.Context, stores ...*store.Store) (*statekit.Session, error) {
	sess, err := statekit.NewSession(a.sessionID,
		statekit.WithManager(a.backend.Manager),
		statekit.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := sess.Register(stores...); err != nil {
		return nil, err
	}
	if _, err := sess.Resume(ctx); err != nil {
		return nil, fmt.Errorf("failed to resume: %w", err)
	}
	return sess, nil
}
