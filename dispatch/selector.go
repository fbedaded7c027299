package dispatch

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tanteijms/light-chaser-HUAWEI2025/rng"
)

// Candidate is one feasible (user, NPU) pairing produced by the Batch
// Planner + Cost Evaluator for the current epoch.
type Candidate struct {
	UserIdx int
	NPUIdx  int
	Result  CostResult
}

// rankCandidates sorts candidates by ascending cost, with ties broken by
// ascending user index then ascending NPU index — the deterministic total
// order SPEC_FULL.md §5 requires regardless of whether the matrix was built
// sequentially or by a parallel worker pool.
func rankCandidates(candidates []Candidate) []Candidate {
	ranked := append([]Candidate(nil), candidates...)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Result.Cost != b.Result.Cost {
			return a.Result.Cost < b.Result.Cost
		}
		if a.UserIdx != b.UserIdx {
			return a.UserIdx < b.UserIdx
		}
		return a.NPUIdx < b.NPUIdx
	})
	return ranked
}

// chooseTopK implements SPEC_FULL.md §4.5: rank candidates, pick a breadth k
// from the urgency/lateness/scarcity regime, then sample within the top-k
// using linearly decreasing weights (or deterministically when the regime
// calls for it).
func chooseTopK(candidates []Candidate, ready []int, users []UserState, now int64, w Weights, r *rng.Source) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	ranked := rankCandidates(candidates)

	avgUrgency := readyAvgUrgency(ready, users)
	urgentCount := 0
	for _, idx := range ready {
		if users[idx].Urgency > w.ThetaUrgent {
			urgentCount++
		}
	}

	var k int
	switch {
	case avgUrgency > w.ThetaUrgent || float64(urgentCount) > float64(len(ready))/2:
		k = 1
	case len(ranked) <= 3:
		k = len(ranked)
	case float64(now) > w.TLate:
		k = min(5, len(ranked))
	default:
		k = w.TopK
		if k <= 0 {
			k = 1
		}
		if k > len(ranked) {
			k = len(ranked)
		}
	}

	if k <= 1 || avgUrgency > 1.2 {
		return ranked[0], true
	}

	rankIdx := weightedRank(k, r)
	return ranked[rankIdx], true
}



// readyAvgUrgency computes the mean Urgency over the ready set via gonum's
// stat.Mean, matching SPEC_FULL.md §4.5's "avg_urgency over R".
func readyAvgUrgency(ready []int, users []UserState) float64 {
	if len(ready) == 0 {
		return 0
	}
	vals := make([]float64, len(ready))
	for i, idx := range ready {
		vals[i] = users[idx].Urgency
	}
	return stat.Mean(vals, nil)
}

// weightedRank draws a rank in [0, k) with weights proportional to (k-i),
// linearly decreasing from rank 0 (the best candidate) to rank k-1.
func weightedRank(k int, r *rng.Source) int {
	total := k * (k + 1) / 2
	x := r.Intn(total)
	cumulative := 0
	for i := 0; i < k; i++ {
		cumulative += k - i
		if x < cumulative {
			return i
		}
	}
	return k - 1
}
