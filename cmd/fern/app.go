package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/aliases"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

var version = "dev"

// app holds what every command needs after flags are parsed.
type app struct {
	cfg    config.Config
	logger ectologger.Logger
	sync   func() error
}

type rootOptions struct {
	configPath string
	logLevel   string
	workers    int
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "fern",
		Short:        "Product entity matching across vendor catalogs",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (environment variables override it)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "matching worker count override")

	root.AddCommand(
		newMatchCommand(opts),
		newTrainingPairsCommand(opts),
		newAliasesCommand(opts),
		newServeCommand(opts),
		newMigrateCommand(opts),
	)
	return root
}

func (o *rootOptions) load() (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.workers > 0 {
		cfg.MatchWorkerCount = o.workers
	}

	logger, sync, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, sync: sync}, nil
}

func (a *app) close() {
	_ = a.sync()
}

// registry loads the alias table plus manual overrides. A missing table is
// not fatal: matching continues on normalized names only.
func (a *app) registry(ctx context.Context) *aliases.Registry {
	opts := a.cfg.Matching().AliasOptions()
	reg, err := aliases.Load(ctx, a.cfg.AliasPath(), opts, a.logger)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).Warn("Alias table unavailable")
	}

	if a.cfg.AliasOverridesPath != "" {
		overrides, err := aliases.LoadOverrides(a.cfg.AliasOverridesPath)
		if err != nil {
			a.logger.WithContext(ctx).WithError(err).Warn("Ignoring alias overrides")
		} else {
			reg = reg.WithManualAliases(overrides...)
		}
	}

	stats := reg.Stats()
	a.logger.WithContext(ctx).WithFields(map[string]any{
		"canonical_manufacturers": reg.Len(),
		"total_aliases":           stats.TotalAliases,
	}).Info("Loaded manufacturer aliases")
	return reg
}

func (a *app) producer() *kafka.Producer {
	return kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      a.cfg.KafkaBrokers,
		Topic:        a.cfg.KafkaOutputTopic,
		BatchSize:    a.cfg.KafkaBatchSize,
		BatchTimeout: msDuration(a.cfg.KafkaBatchTimeout),
		RequiredAcks: a.cfg.KafkaRequiredAcks,
	}, a.logger)
}

// output opens path for writing; "-" writes to the command's stdout.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func vendorsByID(catalogs ...[]models.ProductRecord) map[string]string {
	vendors := make(map[string]string)
	for _, records := range catalogs {
		for _, r := range records {
			if _, ok := vendors[r.SourceID]; !ok && r.Vendor != "" {
				vendors[r.SourceID] = r.Vendor
			}
		}
	}
	return vendors
}
