package fixer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
)

// Selection pairs a track with the candidate chosen for it, either by the
// auto-apply policy or by the user.
type Selection struct {
	TrackID   string          `json:"trackId"`
	Candidate ScoredCandidate `json:"candidate"`
}

// ApplyResult reports a batch of independent writes: every selection either
// lands in Updated or produces an entry in Errors. Never both, and no
// single failure aborts the siblings.
type ApplyResult struct {
	Updated []*library.Track `json:"updated"`
	Errors  []TrackError     `json:"errors"`
}

// Applier writes chosen candidates onto library tracks.
type Applier struct {
	lib      Library
	agg      *Aggregator
	tags     TagWriter         // optional
	analysis AnalysisScheduler // optional
	log      *logger.Logger
}

// NewApplier creates an Applier. tags and analysis may be nil, which
// disables file tagging and analysis scheduling respectively.
func NewApplier(lib Library, agg *Aggregator, tags TagWriter, analysis AnalysisScheduler, log *logger.Logger) *Applier {
	return &Applier{
		lib:      lib,
		agg:      agg,
		tags:     tags,
		analysis: analysis,
		log:      log,
	}
}

// ApplySelections applies each selection independently, reporting progress
// through hooks. After the batch, tracks that still lack BPM or key are
// handed to the analysis scheduler in a single fire-and-forget call.
func (a *Applier) ApplySelections(ctx context.Context, selections []Selection, hooks Hooks) ApplyResult {
	var result ApplyResult
	var analysisPaths []string

	total := len(selections)
	for i, sel := range selections {
		title := sel.Candidate.Title
		hooks.progress(Progress{Processed: i, Total: total, CurrentTrackTitle: title})

		track, err := a.applyOne(ctx, sel)
		if err != nil {
			a.log.Warn("apply failed for track %s: %v", sel.TrackID, err)
			result.Errors = append(result.Errors, TrackError{TrackID: sel.TrackID, Err: err})
		} else {
			result.Updated = append(result.Updated, track)
			if !track.HasBPM() || !track.HasKey() {
				analysisPaths = append(analysisPaths, track.Path)
			}
		}

		hooks.progress(Progress{Processed: i + 1, Total: total, CurrentTrackTitle: title})
	}

	if len(analysisPaths) > 0 && a.analysis != nil {
		a.log.Debug("scheduling audio analysis for %d files", len(analysisPaths))
		a.analysis.ScheduleAnalysis(analysisPaths)
	}

	return result
}

func (a *Applier) applyOne(ctx context.Context, sel Selection) (*library.Track, error) {
	track, err := a.lib.TrackByID(ctx, sel.TrackID)
	if err != nil {
		return nil, err
	}

	candidate := a.resolveCandidate(ctx, sel.Candidate)

	mergeCandidate(track, candidate)

	if a.tags != nil {
		if err := a.tags.WriteTrackTags(track.Path, track); err != nil {
			return nil, fmt.Errorf("write tags: %w", err)
		}
	}

	if err := a.lib.UpdateTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("persist track: %w", err)
	}

	return track, nil
}

// resolveCandidate runs the detail fetch for candidates from two-phase
// providers. A failed or null fetch falls back to the minimal search-time
// fields; the selection still applies.
func (a *Applier) resolveCandidate(ctx context.Context, scored ScoredCandidate) RawCandidate {
	minimal := scored.RawCandidate

	provider, ok := a.agg.ProviderFor(scored.Provider)
	if !ok {
		return minimal
	}
	fetcher, ok := provider.(DetailFetcher)
	if !ok {
		return minimal
	}

	full, err := fetcher.FetchDetails(ctx, minimal.ID)
	if err != nil {
		a.log.Warn("detail fetch failed for %s candidate %s: %v", scored.Provider, minimal.ID, err)
		return minimal
	}
	if full == nil {
		a.log.Warn("%s candidate %s became unavailable, applying search-time fields", scored.Provider, minimal.ID)
		return minimal
	}

	return mergeDetails(minimal, *full)
}

// mergeDetails overlays a detail-fetch result on the minimal search result,
// keeping search-time fields wherever the detail call left a gap.
func mergeDetails(minimal, full RawCandidate) RawCandidate {
	out := full
	out.ID = minimal.ID

	if out.Title == "" {
		out.Title = minimal.Title
	}
	if len(out.Artists) == 0 {
		out.Artists = minimal.Artists
	}
	if out.Album == nil {
		out.Album = minimal.Album
	}
	if out.Label == nil {
		out.Label = minimal.Label
	}
	if out.Genre == nil {
		out.Genre = minimal.Genre
	}
	if out.Key == nil {
		out.Key = minimal.Key
	}
	if out.ArtworkURL == nil {
		out.ArtworkURL = minimal.ArtworkURL
	}
	if out.ReleaseDate == nil {
		out.ReleaseDate = minimal.ReleaseDate
	}
	if out.BPM == nil {
		out.BPM = minimal.BPM
	}
	if out.Year == nil {
		out.Year = minimal.Year
	}
	if out.DurationSec == nil {
		out.DurationSec = minimal.DurationSec
	}

	return out
}

// mergeCandidate writes only the fields the candidate actually supplies
// onto the track; everything else is left untouched. The track's own
// duration comes from the audio file and is only filled when unknown.
func mergeCandidate(t *library.Track, c RawCandidate) {
	if strings.TrimSpace(c.Title) != "" {
		t.Title = c.Title
	}
	if len(c.Artists) > 0 {
		t.Artist = c.ArtistLine()
	}
	if c.Album != nil && *c.Album != "" {
		t.Album = *c.Album
	}
	if c.Genre != nil && *c.Genre != "" {
		t.Genre = *c.Genre
	}
	if c.Label != nil && *c.Label != "" {
		t.Label = *c.Label
	}
	if c.Key != nil && *c.Key != "" {
		t.Key = *c.Key
	}
	if c.ArtworkURL != nil && *c.ArtworkURL != "" {
		t.ArtworkURL = *c.ArtworkURL
	}

	if c.BPM != nil && *c.BPM > 0 {
		bpm := *c.BPM
		t.BPM = &bpm
	}

	if c.Year != nil && *c.Year > 0 {
		year := *c.Year
		t.Year = &year
	} else if c.ReleaseDate != nil {
		if year := parseYear(*c.ReleaseDate); year > 0 {
			t.Year = &year
		}
	}

	if t.DurationSec <= 0 && c.DurationSec != nil && *c.DurationSec > 0 {
		t.DurationSec = *c.DurationSec
	}
}

func parseYear(date string) int {
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}
