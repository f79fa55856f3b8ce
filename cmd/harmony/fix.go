package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jvegaf/harmony-sub000/internal/analysis"
	"github.com/jvegaf/harmony-sub000/internal/config"
	"github.com/jvegaf/harmony-sub000/internal/fixer"
	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
	"github.com/jvegaf/harmony-sub000/internal/progress"
	"github.com/jvegaf/harmony-sub000/internal/provider"
	"github.com/jvegaf/harmony-sub000/internal/tags"
)

func cmdFix() *cobra.Command {
	var (
		trackIDs  []string
		threshold float64
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Search catalogs and fix track metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if cmd.Flags().Changed("threshold") {
				cfg.AutoApplyThreshold = threshold
			}
			if dryRun {
				// Raising the threshold above 1.0 means nothing auto-applies.
				cfg.AutoApplyThreshold = 1.1
			}

			log := setupLogger(cfg)
			defer log.Close()

			db, err := library.Bootstrap(config.ExpandHome(cfg.DatabasePath))
			if err != nil {
				return fmt.Errorf("opening library: %w", err)
			}
			defer db.Close()
			store := library.NewStore(db)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tracks, err := selectTracks(ctx, store, trackIDs)
			if err != nil {
				return err
			}
			if len(tracks) == 0 {
				log.Info("No tracks to process")
				return nil
			}

			sched := analysis.NewScheduler(log, nil)
			go sched.Run(ctx)

			fx := buildFixer(cfg, store, sched, log)

			var bar *progress.Bar
			if !cfg.Verbose {
				bar = progress.New(len(tracks))
				log.SetProgressBar(true)
			}

			hooks := fixer.Hooks{
				OnProgress: func(p fixer.Progress) {
					if bar != nil {
						bar.Set(p.Processed, p.CurrentTrackTitle)
					}
				},
				OnWarning: func(msg string) {
					log.Warn("%s", msg)
				},
			}

			result, err := fx.FindCandidates(ctx, tracks, hooks)

			if bar != nil {
				bar.Finish()
				log.SetProgressBar(false)
			}

			if err != nil {
				return err
			}

			printSummary(log, result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&trackIDs, "id", nil, "track ID to fix (repeatable, default: whole library)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "confidence required to auto-apply a match")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "search and score only, never apply")

	return cmd
}

func buildFixer(cfg config.Config, store *library.Store, sched *analysis.Scheduler, log *logger.Logger) *fixer.Fixer {
	entries := provider.Build(cfg.Providers, log)
	scorer := fixer.NewScorer(cfg.DurationToleranceSec)
	agg := fixer.NewAggregator(entries, scorer, cfg.TieEpsilon, log)

	var tagWriter fixer.TagWriter
	if cfg.WriteFileTags {
		tagWriter = tags.Writer{}
	}

	applier := fixer.NewApplier(store, agg, tagWriter, sched, log)
	return fixer.NewFixer(agg, applier, cfg.AutoApplyThreshold, log)
}

func selectTracks(ctx context.Context, store *library.Store, ids []string) ([]*library.Track, error) {
	if len(ids) == 0 {
		return store.AllTracks(ctx)
	}

	tracks := make([]*library.Track, 0, len(ids))
	for _, id := range ids {
		t, err := store.TrackByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("track %s: %w", id, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func printSummary(log *logger.Logger, result *fixer.BatchResult) {
	reviews := result.Reviews()

	log.Info("=== Fix completed ===")
	log.Info("Updated: %d  Needs review: %d  Errors: %d",
		len(result.Updated), len(reviews), len(result.Errors))

	for _, r := range reviews {
		best := r.Candidates[0]
		log.Info("  review: %s -> %s - %s [%s %.2f]",
			r.TrackTitle, best.ArtistLine(), best.Title, best.Provider, best.Confidence)
	}

	for _, r := range result.Results {
		if r.Verdict == fixer.VerdictNoCandidates {
			log.Info("  no match: %s", r.TrackTitle)
		}
	}

	for _, e := range result.Errors {
		log.Warn("  failed: %s: %v", e.TrackID, e.Err)
	}
}
