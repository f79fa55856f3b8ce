package fixer

import (
	"context"
	"math"
	"sort"

	"github.com/arunsworld/nursery"

	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
)

const defaultTieEpsilon = 0.01

// ProviderEntry pairs a provider adapter with its configuration slice.
type ProviderEntry struct {
	Provider Provider
	Config   ProviderConfig
}

// Aggregator fans one track's query out to every enabled provider, scores
// the merged candidates and ranks them deterministically.
type Aggregator struct {
	entries []ProviderEntry
	scorer  *Scorer
	epsilon float64
	log     *logger.Logger
}

// NewAggregator creates an Aggregator over the enabled entries, ordered by
// provider priority. An epsilon of 0 uses the default (~1%).
func NewAggregator(entries []ProviderEntry, scorer *Scorer, epsilon float64, log *logger.Logger) *Aggregator {
	if epsilon <= 0 {
		epsilon = defaultTieEpsilon
	}

	var enabled []ProviderEntry
	for _, e := range entries {
		if e.Config.Enabled {
			enabled = append(enabled, e)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Config.Priority < enabled[j].Config.Priority
	})

	return &Aggregator{
		entries: enabled,
		scorer:  scorer,
		epsilon: epsilon,
		log:     log,
	}
}

// EnabledCount returns the number of providers taking part in fan-out.
func (a *Aggregator) EnabledCount() int { return len(a.entries) }

// ProviderFor returns the adapter owning the given provider name.
func (a *Aggregator) ProviderFor(name string) (Provider, bool) {
	for _, e := range a.entries {
		if e.Provider.Name() == name {
			return e.Provider, true
		}
	}
	return nil, false
}

// Collect queries all enabled providers concurrently and returns the
// merged, scored and ranked candidate list for the track. A provider's own
// failure contributes zero candidates and never aborts the fan-out; the
// step completes once every provider has settled.
func (a *Aggregator) Collect(ctx context.Context, track *library.Track) []ScoredCandidate {
	if len(a.entries) == 0 {
		return nil
	}

	query := SearchQuery{Title: track.Title, Artist: track.Artist}

	perProvider := make([][]RawCandidate, len(a.entries))
	jobs := make([]nursery.ConcurrentJob, len(a.entries))
	for i, entry := range a.entries {
		i, entry := i, entry
		jobs[i] = func(ctx context.Context, _ chan error) {
			q := query
			q.Limit = entry.Config.MaxResults

			results, err := entry.Provider.Search(ctx, q)
			if err != nil {
				a.log.Warn("provider %s search failed for %q: %v", entry.Provider.Name(), track.Title, err)
				return
			}
			perProvider[i] = results
		}
	}
	// Jobs report failures through the log and contribute zero candidates,
	// so the joined error is always nil.
	nursery.RunConcurrentlyWithContext(ctx, jobs...)

	var merged []ScoredCandidate
	for i, entry := range a.entries {
		for _, raw := range perProvider[i] {
			if !Scorable(raw) {
				a.log.Debug("provider %s returned unscorable candidate %q, skipping", entry.Provider.Name(), raw.ID)
				continue
			}

			confidence, matched := a.scorer.Score(track, raw)
			merged = append(merged, ScoredCandidate{
				RawCandidate:  raw,
				Confidence:    confidence,
				MatchedTokens: matched,
				Provider:      entry.Provider.Name(),
				Priority:      entry.Config.Priority,
			})
		}
	}

	a.rank(merged)
	return merged
}

// rank sorts candidates by descending confidence. Confidence values within
// epsilon of each other are a deliberate tie broken by provider priority
// (lower rank wins), then raw confidence, then candidate ID, which makes
// the order total and stable across runs.
func (a *Aggregator) rank(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]

		if diff := ci.Confidence - cj.Confidence; math.Abs(diff) > a.epsilon {
			return diff > 0
		}
		if ci.Priority != cj.Priority {
			return ci.Priority < cj.Priority
		}
		if ci.Confidence != cj.Confidence {
			return ci.Confidence > cj.Confidence
		}
		return ci.ID < cj.ID
	})
}
