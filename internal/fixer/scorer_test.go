package fixer

import (
	"testing"

	"github.com/jvegaf/harmony-sub000/internal/library"
)

func TestScore_IdenticalMetadata(t *testing.T) {
	scorer := NewScorer(2)
	track := &library.Track{Title: "Strobe", Artist: "Deadmau5", Album: "For Lack of a Better Name"}
	candidate := RawCandidate{
		Title:   "Strobe",
		Artists: []string{"Deadmau5"},
		Album:   Ptr("For Lack of a Better Name"),
	}

	got, matched := scorer.Score(track, candidate)
	if got != 1.0 {
		t.Errorf("Score() = %v, want 1.0", got)
	}
	if len(matched) == 0 {
		t.Error("expected matched tokens for identical metadata")
	}
}

func TestScore_DisjointMetadata(t *testing.T) {
	// A perfectly matching duration must not rescue disjoint text.
	scorer := NewScorer(2)
	track := &library.Track{Title: "Strobe", Artist: "Deadmau5", DurationSec: 600}
	candidate := RawCandidate{Title: "Bohemian Rhapsody", Artists: []string{"Queen"}, DurationSec: Ptr(600)}

	got, matched := scorer.Score(track, candidate)
	if got >= 0.5 {
		t.Errorf("Score() = %v for disjoint metadata, want < 0.5", got)
	}
	if len(matched) != 0 {
		t.Errorf("expected no matched tokens, got %v", matched)
	}
}

func TestScore_NearMissDisjointStaysLow(t *testing.T) {
	// Every token differs by a character or two, so the compact strings
	// are close in edit distance while the token sets share nothing.
	// Such candidates must never reach the auto-apply range, even with a
	// perfectly matching duration.
	scorer := NewScorer(2)

	tests := []struct {
		track     *library.Track
		candidate RawCandidate
	}{
		{
			&library.Track{Title: "Strobe", Artist: "Deadmau5", DurationSec: 600},
			RawCandidate{Title: "Strobee", Artists: []string{"Deadmau5x"}, DurationSec: Ptr(600)},
		},
		{
			&library.Track{Title: "Sandstorm", Artist: "Darude", DurationSec: 225},
			RawCandidate{Title: "Sandstorms", Artists: []string{"Darudes"}, DurationSec: Ptr(225)},
		},
		{
			&library.Track{Title: "Animals", Artist: "Martin", DurationSec: 185},
			RawCandidate{Title: "Animal", Artists: []string{"Martina"}, DurationSec: Ptr(185)},
		},
	}

	for _, tt := range tests {
		got, matched := scorer.Score(tt.track, tt.candidate)
		if got >= 0.5 {
			t.Errorf("Score(%q/%q vs %q/%v) = %v, disjoint tokens must stay low",
				tt.track.Title, tt.track.Artist, tt.candidate.Title, tt.candidate.Artists, got)
		}
		if len(matched) != 0 {
			t.Errorf("matched = %v for disjoint tokens, want none", matched)
		}
	}
}

func TestScore_CaseAndPunctuationInsensitive(t *testing.T) {
	scorer := NewScorer(2)
	track := &library.Track{Title: "don't stop me now", Artist: "queen"}
	candidate := RawCandidate{Title: "Don't Stop Me Now", Artists: []string{"QUEEN"}}

	got, _ := scorer.Score(track, candidate)
	if got != 1.0 {
		t.Errorf("Score() = %v, want 1.0 for case/punctuation variants", got)
	}
}

func TestScore_SpacingVariant(t *testing.T) {
	// Compact comparison catches "theweeknd" vs "the weeknd".
	scorer := NewScorer(2)
	track := &library.Track{Title: "Blinding Lights", Artist: "The Weeknd"}
	candidate := RawCandidate{Title: "Blinding Lights", Artists: []string{"TheWeeknd"}}

	got, _ := scorer.Score(track, candidate)
	if got < 0.8 {
		t.Errorf("Score() = %v for spacing variant, want >= 0.8", got)
	}
}

func TestScore_DurationSharpensConfidence(t *testing.T) {
	scorer := NewScorer(2)
	track := &library.Track{Title: "Strobe", Artist: "Deadmau5", DurationSec: 600}

	within := RawCandidate{Title: "Strobe", Artists: []string{"Deadmau5"}, DurationSec: Ptr(601)}
	far := RawCandidate{Title: "Strobe", Artists: []string{"Deadmau5"}, DurationSec: Ptr(660)}

	withinScore, _ := scorer.Score(track, within)
	farScore, _ := scorer.Score(track, far)

	if withinScore != 1.0 {
		t.Errorf("Score() = %v with duration inside tolerance, want 1.0", withinScore)
	}
	if farScore >= withinScore {
		t.Errorf("far duration score %v should be below within-tolerance score %v", farScore, withinScore)
	}
	// Text weight floor: even a hopeless duration keeps the text component.
	if farScore < textWeight-0.001 {
		t.Errorf("Score() = %v, perfect text match should keep at least the text weight %v", farScore, textWeight)
	}
}

func TestScore_MissingDurationIsNeutral(t *testing.T) {
	scorer := NewScorer(2)
	track := &library.Track{Title: "Strobe", Artist: "Deadmau5", DurationSec: 600}
	candidate := RawCandidate{Title: "Strobe", Artists: []string{"Deadmau5"}}

	got, _ := scorer.Score(track, candidate)
	if got != 1.0 {
		t.Errorf("Score() = %v, want 1.0 when candidate has no duration", got)
	}
}

func TestScore_Range(t *testing.T) {
	scorer := NewScorer(2)
	tracks := []*library.Track{
		{Title: "Strobe", Artist: "Deadmau5", DurationSec: 600},
		{Title: "One More Time", Artist: "Daft Punk"},
		{},
	}
	candidates := []RawCandidate{
		{Title: "Strobe", Artists: []string{"Deadmau5"}, DurationSec: Ptr(600)},
		{Title: "Something Else Entirely", Artists: []string{"Nobody"}},
		{Title: "x"},
	}

	for _, track := range tracks {
		for _, c := range candidates {
			got, _ := scorer.Score(track, c)
			if got < 0 || got > 1 {
				t.Errorf("Score(%+v, %+v) = %v, out of [0,1]", track, c, got)
			}
		}
	}
}

func TestScore_EmptyTrack(t *testing.T) {
	scorer := NewScorer(2)
	got, matched := scorer.Score(&library.Track{}, RawCandidate{Title: "Strobe"})
	if got != 0 || matched != nil {
		t.Errorf("Score() = %v, %v for empty track, want 0, nil", got, matched)
	}
}

func TestScorable(t *testing.T) {
	if Scorable(RawCandidate{ID: "1"}) {
		t.Error("candidate with no title or artists should not be scorable")
	}
	if Scorable(RawCandidate{Title: "???"}) {
		t.Error("candidate whose fields normalize to nothing should not be scorable")
	}
	if !Scorable(RawCandidate{Title: "Strobe"}) {
		t.Error("candidate with a title should be scorable")
	}
	if !Scorable(RawCandidate{Artists: []string{"Deadmau5"}}) {
		t.Error("candidate with an artist should be scorable")
	}
}

func TestDurationProximity(t *testing.T) {
	scorer := NewScorer(2)

	tests := []struct {
		local, candidate int
		want             float64
	}{
		{600, 600, 1.0},
		{600, 602, 1.0},
		{600, 598, 1.0},
		{600, 605, 0.5},
		{600, 608, 0.0},
		{600, 700, 0.0},
	}

	for _, tt := range tests {
		got := scorer.durationProximity(tt.local, tt.candidate)
		if got != tt.want {
			t.Errorf("durationProximity(%d, %d) = %v, want %v", tt.local, tt.candidate, got, tt.want)
		}
	}
}
