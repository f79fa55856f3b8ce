package fixer

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		candidates []ScoredCandidate
		threshold  float64
		want       Verdict
	}{
		{
			name:      "no candidates",
			threshold: 0.9,
			want:      VerdictNoCandidates,
		},
		{
			name:       "top candidate above threshold",
			candidates: []ScoredCandidate{{Confidence: 0.95}, {Confidence: 0.40}},
			threshold:  0.9,
			want:       VerdictAutoApply,
		},
		{
			name:       "exactly at threshold applies",
			candidates: []ScoredCandidate{{Confidence: 0.9}},
			threshold:  0.9,
			want:       VerdictAutoApply,
		},
		{
			name:       "below threshold needs selection",
			candidates: []ScoredCandidate{{Confidence: 0.89}},
			threshold:  0.9,
			want:       VerdictNeedsSelection,
		},
		{
			name:       "only the top candidate counts",
			candidates: []ScoredCandidate{{Confidence: 0.5}, {Confidence: 0.95}},
			threshold:  0.9,
			want:       VerdictNeedsSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.candidates, tt.threshold); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}
