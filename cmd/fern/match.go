package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/catalog"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
)

type matchOptions struct {
	catalogA string
	catalogB string
	out      string
	emit     bool
}

func (o *matchOptions) bind(cmd *cobra.Command, defaultOut string) {
	cmd.Flags().StringVar(&o.catalogA, "a", "", "catalog A CSV (queries)")
	cmd.Flags().StringVar(&o.catalogB, "b", "", "catalog B CSV (indexed)")
	cmd.Flags().StringVarP(&o.out, "out", "o", defaultOut, "output CSV path, - for stdout")
	cmd.Flags().BoolVar(&o.emit, "emit", false, "publish candidate.scored events to Kafka")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
}

// run loads both catalogs and generates candidates for every A record.
func (o *matchOptions) run(ctx context.Context, a *app) (*matching.Engine, []models.ProductRecord, []models.ProductRecord, matching.CandidateSet, error) {
	catA, err := catalog.ReadFile(ctx, o.catalogA, a.logger)
	if err != nil {
		return nil, nil, nil, matching.CandidateSet{}, err
	}
	catB, err := catalog.ReadFile(ctx, o.catalogB, a.logger)
	if err != nil {
		return nil, nil, nil, matching.CandidateSet{}, err
	}

	engine := matching.NewEngine(a.cfg.Matching(), a.registry(ctx), a.logger)
	set, err := engine.GenerateCandidates(ctx, catA, catB)
	if err != nil {
		return nil, nil, nil, matching.CandidateSet{}, err
	}
	return engine, catA, catB, set, nil
}

func (a *app) emit(ctx context.Context, ts matching.TrainingSet, catalogs ...[]models.ProductRecord) error {
	if !a.cfg.KafkaEnabled {
		return errors.New("--emit requires KAFKA_ENABLED=true")
	}
	producer := a.producer()
	defer producer.Close()

	runID, err := events.NewEmitter(producer, a.logger).EmitCandidatesScored(ctx, ts, vendorsByID(catalogs...))
	if err != nil {
		return err
	}
	a.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"pairs":  len(ts.Pairs),
	}).Info("Published scored candidates")
	return nil
}

func newMatchCommand(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Generate ranked match candidates from catalog A into catalog B",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			engine, catA, catB, set, err := opts.run(ctx, a)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, opts.out)
			if err != nil {
				return err
			}
			if err := catalog.WriteCandidates(w, set); err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return fmt.Errorf("close %s: %w", opts.out, err)
			}

			if opts.emit {
				ts, err := engine.MakeTrainingPairs(ctx, catA, catB, set)
				if err != nil {
					return err
				}
				return a.emit(ctx, ts, catA, catB)
			}
			return nil
		},
	}
	opts.bind(cmd, "candidates.csv")
	return cmd
}

func newTrainingPairsCommand(root *rootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "training-pairs",
		Short: "Build the labelled feature table for every candidate pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.load()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			engine, catA, catB, set, err := opts.run(ctx, a)
			if err != nil {
				return err
			}
			ts, err := engine.MakeTrainingPairs(ctx, catA, catB, set)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, opts.out)
			if err != nil {
				return err
			}
			if err := catalog.WriteTrainingSet(w, ts); err != nil {
				_ = closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return fmt.Errorf("close %s: %w", opts.out, err)
			}

			a.logger.WithContext(ctx).WithFields(map[string]any{
				"pairs":     len(ts.Pairs),
				"positives": ts.Positives(),
				"policy":    ts.Policy,
			}).Info("Wrote training pairs")

			if opts.emit {
				return a.emit(ctx, ts, catA, catB)
			}
			return nil
		},
	}
	opts.bind(cmd, "training_pairs.csv")
	return cmd
}
