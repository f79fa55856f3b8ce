package fixer

import (
	"context"

	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
)

// Fixer drives the candidate pipeline across many tracks: fan-out search,
// ranking, the auto-apply decision, and inline application of confident
// matches. Tracks are processed sequentially so progress counts are
// strictly increasing and memory stays bounded.
type Fixer struct {
	agg       *Aggregator
	applier   *Applier
	threshold float64
	log       *logger.Logger
}

// NewFixer creates a Fixer. A threshold of 0 uses the default (0.9).
func NewFixer(agg *Aggregator, applier *Applier, threshold float64, log *logger.Logger) *Fixer {
	if threshold <= 0 {
		threshold = defaultAutoApplyThreshold
	}
	return &Fixer{
		agg:       agg,
		applier:   applier,
		threshold: threshold,
		log:       log,
	}
}

// BatchResult is the outcome of one FindCandidates run.
type BatchResult struct {
	Results []CandidateResult `json:"results"`
	Updated []*library.Track  `json:"updated"`
	Errors  []TrackError      `json:"errors"`
}

// Reviews returns the results that need a manual selection.
func (r *BatchResult) Reviews() []CandidateResult {
	var reviews []CandidateResult
	for _, res := range r.Results {
		if res.Verdict == VerdictNeedsSelection {
			reviews = append(reviews, res)
		}
	}
	return reviews
}

// FindCandidates processes the tracks in order. Confident matches are
// applied inline; the rest are returned for manual review. A track whose
// providers all fail is recorded with verdict no-candidates and the batch
// continues. Cancelling ctx stops before the next track; a cancelled
// track's partial candidate list is never surfaced as a decision.
func (f *Fixer) FindCandidates(ctx context.Context, tracks []*library.Track, hooks Hooks) (*BatchResult, error) {
	result := &BatchResult{}
	total := len(tracks)

	if f.agg.EnabledCount() == 0 {
		msg := "no catalog providers enabled, nothing to search"
		f.log.Warn(msg)
		hooks.warn(msg)
	}

	for i, track := range tracks {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		hooks.progress(Progress{Processed: i, Total: total, CurrentTrackTitle: track.Title})
		f.log.Debug("[%d/%d] searching candidates for %q", i+1, total, track.Title)

		candidates := f.agg.Collect(ctx, track)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		verdict := Decide(candidates, f.threshold)
		f.log.Debug("[%d/%d] %d candidates, verdict %s", i+1, total, len(candidates), verdict)

		if verdict == VerdictAutoApply {
			applied := f.applier.ApplySelections(ctx, []Selection{
				{TrackID: track.ID, Candidate: candidates[0]},
			}, Hooks{})
			result.Updated = append(result.Updated, applied.Updated...)
			result.Errors = append(result.Errors, applied.Errors...)
		}

		result.Results = append(result.Results, CandidateResult{
			TrackID:    track.ID,
			TrackTitle: track.Title,
			Candidates: candidates,
			Verdict:    verdict,
		})

		hooks.progress(Progress{Processed: i + 1, Total: total, CurrentTrackTitle: track.Title})
	}

	return result, nil
}
