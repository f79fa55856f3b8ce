package fixer

import (
	"strings"

	"github.com/xrash/smetrics"

	"github.com/jvegaf/harmony-sub000/internal/library"
)

const (
	// Text similarity dominates; duration is a disambiguator, since many
	// catalog entries carry no duration at all.
	textWeight     = 0.85
	durationWeight = 0.15

	// Compact-string Jaro-Winkler only counts as a near-match shortcut
	// for pairs that already share a token, never as a weak fallback for
	// genuinely different strings.
	compactMatchFloor = 0.8

	// Duration proximity decays to zero once the difference exceeds the
	// tolerance by this multiple.
	durationDecaySpan = 3

	defaultDurationTolerance = 2 // seconds
)

// Scorer computes match confidence between a local track and a candidate.
// Scoring is stateless: the same inputs always produce the same score.
type Scorer struct {
	DurationToleranceSec int
}

// NewScorer creates a Scorer. A tolerance of 0 uses the default (2s).
func NewScorer(durationToleranceSec int) *Scorer {
	if durationToleranceSec <= 0 {
		durationToleranceSec = defaultDurationTolerance
	}
	return &Scorer{DurationToleranceSec: durationToleranceSec}
}

// Scorable reports whether the candidate carries enough signal to be
// scored at all. Candidates with no title or artist tokens are excluded
// before scoring rather than scored as zero and kept.
func Scorable(c RawCandidate) bool {
	return len(candidateTokens(c)) > 0
}

// Score returns the confidence in [0,1] that candidate matches track,
// along with the tokens shared by both sides.
func (s *Scorer) Score(track *library.Track, c RawCandidate) (float64, []string) {
	local := trackTokens(track)
	remote := candidateTokens(c)

	if len(local) == 0 || len(remote) == 0 {
		return 0, nil
	}

	text, matched := textSimilarity(local, remote)

	confidence := text
	if track.DurationSec > 0 && c.DurationSec != nil && *c.DurationSec > 0 {
		proximity := s.durationProximity(track.DurationSec, *c.DurationSec)
		confidence = text*textWeight + proximity*durationWeight
	}

	return clamp01(confidence), matched
}

func trackTokens(t *library.Track) []string {
	return Normalize(t.Title, t.Artist, t.Album)
}

func candidateTokens(c RawCandidate) []string {
	fields := append([]string{c.Title}, c.Artists...)
	if c.Album != nil {
		fields = append(fields, *c.Album)
	}
	return Normalize(fields...)
}

// textSimilarity computes a [0,1] token-overlap measure: identical token
// sequences score 1.0, disjoint sets score 0, and the score grows with the
// number of shared tokens. A compact (whitespace-free) Jaro-Winkler
// comparison catches spacing variants like "theweeknd" vs "the weeknd".
func textSimilarity(a, b []string) (float64, []string) {
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	var matched []string
	seen := make(map[string]bool, len(a))
	matches := 0
	for _, t := range a {
		if setB[t] {
			matches++
			if !seen[t] {
				matched = append(matched, t)
				seen[t] = true
			}
		}
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	overlap := float64(matches) / float64(maxLen)

	compactA := strings.Join(a, "")
	compactB := strings.Join(b, "")
	if compactA == compactB {
		return 1.0, matched
	}

	// The Jaro-Winkler shortcut only upgrades pairs that already share a
	// token. Without that anchor, near-miss strings with zero tokens in
	// common ("strobee deadmau5x") would score past the overlap measure.
	if matches > 0 {
		if jw := smetrics.JaroWinkler(compactA, compactB, 0.7, 4); jw >= compactMatchFloor && jw > overlap {
			return jw, matched
		}
	}

	return overlap, matched
}

// durationProximity is 1.0 within the tolerance and decays linearly to 0
// as the difference grows past it.
func (s *Scorer) durationProximity(localSec, candidateSec int) float64 {
	diff := localSec - candidateSec
	if diff < 0 {
		diff = -diff
	}

	tolerance := s.DurationToleranceSec
	if diff <= tolerance {
		return 1.0
	}

	span := float64(tolerance * durationDecaySpan)
	return clamp01(1.0 - float64(diff-tolerance)/span)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
