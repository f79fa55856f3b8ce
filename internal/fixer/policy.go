package fixer

const defaultAutoApplyThreshold = 0.9

// Decide classifies a ranked candidate list against the auto-apply
// threshold: a top candidate at or above it is applied without asking,
// anything else non-empty is surfaced for manual selection.
func Decide(candidates []ScoredCandidate, threshold float64) Verdict {
	if len(candidates) == 0 {
		return VerdictNoCandidates
	}
	if candidates[0].Confidence >= threshold {
		return VerdictAutoApply
	}
	return VerdictNeedsSelection
}
