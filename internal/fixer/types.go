package fixer

import (
	"context"
	"strings"

	"github.com/jvegaf/harmony-sub000/internal/library"
)

// SearchQuery is what a provider adapter gets asked for one local track.
type SearchQuery struct {
	Title  string
	Artist string
	Limit  int // maximum results the provider should return
}

// RawCandidate is a provider's offering normalized to a common shape.
//
// Fields the provider cannot supply are nil, never zero values, so the
// scorer and the apply engine can tell "unknown" apart from a real value.
// For two-phase providers ID is the locator needed by FetchDetails.
type RawCandidate struct {
	ID          string
	Title       string
	Artists     []string
	Album       *string
	Label       *string
	Genre       *string
	Key         *string
	ArtworkURL  *string
	ReleaseDate *string // "2006-01-02" when available
	BPM         *int
	Year        *int
	DurationSec *int
}

// ArtistLine joins the candidate's artists for display and tagging.
func (c RawCandidate) ArtistLine() string {
	return strings.Join(c.Artists, ", ")
}

// Provider is the uniform search capability every catalog adapter implements.
// Implementations live under internal/provider.
type Provider interface {
	Name() string
	Search(ctx context.Context, query SearchQuery) ([]RawCandidate, error)
}

// DetailFetcher is the optional second phase of a two-phase provider: the
// cheap search result lacks write-back fields (duration, artwork, label)
// that only a per-candidate detail call supplies. A (nil, nil) return means
// the candidate became unavailable, which is not a hard error.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, candidateID string) (*RawCandidate, error)
}

// ScoredCandidate is a RawCandidate scored against one local track.
// Immutable once produced.
type ScoredCandidate struct {
	RawCandidate
	Confidence    float64
	MatchedTokens []string
	Provider      string
	Priority      int
}

// Verdict classifies a ranked candidate list.
type Verdict string

const (
	VerdictAutoApply      Verdict = "auto-apply"
	VerdictNeedsSelection Verdict = "needs-selection"
	VerdictNoCandidates   Verdict = "no-candidates"
)

// CandidateResult is the outcome of candidate search for one track.
type CandidateResult struct {
	TrackID    string            `json:"trackId"`
	TrackTitle string            `json:"trackTitle"`
	Candidates []ScoredCandidate `json:"candidates,omitempty"`
	Verdict    Verdict           `json:"verdict"`
}

// ProviderConfig is the per-provider slice of configuration the pipeline
// needs, snapshotted at batch start.
type ProviderConfig struct {
	Name       string
	Enabled    bool
	MaxResults int
	Priority   int // lower = preferred on near-equal confidence
}

// Progress reports batch advancement. It has a single writer (the batch
// orchestrator); subscribers must treat it as read-only.
type Progress struct {
	Processed         int    `json:"processed"`
	Total             int    `json:"total"`
	CurrentTrackTitle string `json:"currentTrackTitle"`
}

// TrackError records a per-track failure inside a batch.
type TrackError struct {
	TrackID string `json:"trackId"`
	Err     error  `json:"-"`
}

// Hooks lets callers observe a batch run without coupling the pipeline to
// any presentation layer.
type Hooks struct {
	OnProgress func(Progress)
	OnWarning  func(msg string)
}

func (h Hooks) progress(p Progress) {
	if h.OnProgress != nil {
		h.OnProgress(p)
	}
}

func (h Hooks) warn(msg string) {
	if h.OnWarning != nil {
		h.OnWarning(msg)
	}
}

// Library is the persistence boundary the pipeline consumes.
// *library.Store satisfies it.
type Library interface {
	TrackByID(ctx context.Context, id string) (*library.Track, error)
	UpdateTrack(ctx context.Context, t *library.Track) error
}

// AnalysisScheduler schedules downstream audio analysis for files whose
// BPM or key remain unknown after tagging. Fire-and-forget: the apply
// engine never waits on results.
type AnalysisScheduler interface {
	ScheduleAnalysis(paths []string)
}

// TagWriter writes a track's metadata back to its audio file.
type TagWriter interface {
	WriteTrackTags(path string, t *library.Track) error
}

// Ptr returns a pointer to v. Convenience for optional candidate fields.
func Ptr[T any](v T) *T { return &v }
