package fixer

import (
	"context"
	"testing"

	"github.com/jvegaf/harmony-sub000/internal/library"
	"github.com/jvegaf/harmony-sub000/internal/logger"
)

// routingProvider returns different candidates depending on the queried title.
type routingProvider struct {
	name    string
	byTitle map[string][]RawCandidate
}

func (r *routingProvider) Name() string { return r.name }
func (r *routingProvider) Search(_ context.Context, q SearchQuery) ([]RawCandidate, error) {
	return r.byTitle[q.Title], nil
}

func newBatchFixture(provider Provider, tracks ...*library.Track) (*Fixer, *mockLibrary) {
	log := logger.New(false)
	lib := newMockLibrary(tracks...)

	var entries []ProviderEntry
	if provider != nil {
		entries = append(entries, entry(provider, 1))
	}
	agg := NewAggregator(entries, NewScorer(2), 0.01, log)
	applier := NewApplier(lib, agg, nil, nil, log)
	return NewFixer(agg, applier, 0.9, log), lib
}

func TestFindCandidates_MixedVerdicts(t *testing.T) {
	confident := &library.Track{ID: "t1", Title: "Strobe", Artist: "Deadmau5"}
	uncertain := &library.Track{ID: "t2", Title: "Some Obscure Edit", Artist: "Unknown Artist"}
	unmatched := &library.Track{ID: "t3", Title: "Nothing Anywhere", Artist: "Nobody"}

	provider := &routingProvider{name: "p", byTitle: map[string][]RawCandidate{
		"Strobe": {
			{ID: "c1", Title: "Strobe", Artists: []string{"Deadmau5"}, Label: Ptr("Mau5trap")},
		},
		"Some Obscure Edit": {
			{ID: "c2", Title: "Some Totally Different Track", Artists: []string{"Somebody Else"}},
		},
	}}

	fx, lib := newBatchFixture(provider, confident, uncertain, unmatched)

	result, err := fx.FindCandidates(context.Background(), []*library.Track{confident, uncertain, unmatched}, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Results) != 3 {
		t.Fatalf("Results = %d, want 3", len(result.Results))
	}

	verdicts := map[string]Verdict{}
	for _, r := range result.Results {
		verdicts[r.TrackID] = r.Verdict
	}
	if verdicts["t1"] != VerdictAutoApply {
		t.Errorf("t1 verdict = %v, want auto-apply", verdicts["t1"])
	}
	if verdicts["t2"] != VerdictNeedsSelection {
		t.Errorf("t2 verdict = %v, want needs-selection", verdicts["t2"])
	}
	if verdicts["t3"] != VerdictNoCandidates {
		t.Errorf("t3 verdict = %v, want no-candidates", verdicts["t3"])
	}

	// The confident match was applied inline.
	if len(result.Updated) != 1 || result.Updated[0].ID != "t1" {
		t.Fatalf("Updated = %v, want t1 only", result.Updated)
	}
	if lib.tracks["t1"].Label != "Mau5trap" {
		t.Errorf("t1 label = %q, candidate fields not applied", lib.tracks["t1"].Label)
	}
	// The uncertain track was not touched.
	if lib.tracks["t2"].Title != "Some Obscure Edit" {
		t.Errorf("t2 title = %q, uncertain track must stay untouched", lib.tracks["t2"].Title)
	}

	reviews := result.Reviews()
	if len(reviews) != 1 || reviews[0].TrackID != "t2" {
		t.Errorf("Reviews() = %v, want t2 only", reviews)
	}
}

func TestFindCandidates_MonotonicProgress(t *testing.T) {
	tracks := []*library.Track{
		{ID: "t1", Title: "a"},
		{ID: "t2", Title: "b"},
		{ID: "t3", Title: "c"},
	}
	fx, _ := newBatchFixture(&routingProvider{name: "p"}, tracks...)

	var seen []Progress
	hooks := Hooks{OnProgress: func(p Progress) { seen = append(seen, p) }}

	if _, err := fx.FindCandidates(context.Background(), tracks, hooks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Processed < seen[i-1].Processed {
			t.Fatalf("progress went backwards at %d: %+v", i, seen)
		}
	}
	last := seen[len(seen)-1]
	if last.Processed != 3 || last.Total != 3 {
		t.Errorf("final progress = %+v, want 3/3", last)
	}
}

func TestFindCandidates_Cancellation(t *testing.T) {
	tracks := []*library.Track{
		{ID: "t1", Title: "a"},
		{ID: "t2", Title: "b"},
		{ID: "t3", Title: "c"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	fx, _ := newBatchFixture(&routingProvider{name: "p"}, tracks...)

	// Cancel after the first track completes.
	hooks := Hooks{OnProgress: func(p Progress) {
		if p.Processed == 1 {
			cancel()
		}
	}}

	result, err := fx.FindCandidates(ctx, tracks, hooks)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(result.Results) >= 3 {
		t.Errorf("Results = %d, cancellation should stop the batch early", len(result.Results))
	}
}

func TestFindCandidates_NoProvidersWarnsAndCompletes(t *testing.T) {
	tracks := []*library.Track{{ID: "t1", Title: "a"}}
	fx, _ := newBatchFixture(nil, tracks...)

	var warned string
	hooks := Hooks{OnWarning: func(msg string) { warned = msg }}

	result, err := fx.FindCandidates(context.Background(), tracks, hooks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warned == "" {
		t.Error("expected a warning when no providers are enabled")
	}
	if len(result.Results) != 1 || result.Results[0].Verdict != VerdictNoCandidates {
		t.Errorf("Results = %+v, want one no-candidates result", result.Results)
	}
}

func TestFindCandidates_EmptyBatch(t *testing.T) {
	fx, _ := newBatchFixture(&routingProvider{name: "p"})
	result, err := fx.FindCandidates(context.Background(), nil, Hooks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 0 || len(result.Updated) != 0 || len(result.Errors) != 0 {
		t.Errorf("empty batch produced output: %+v", result)
	}
}
