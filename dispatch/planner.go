package dispatch

import (
	"math"

	"github.com/tanteijms/light-chaser-HUAWEI2025/catalog"
)

// BatchSearchStrategy picks a batch size in [minB, searchLimit] for one
// (server, user) pair. Implementations must not mutate server — they are
// pure functions of their inputs, following the teacher's InstanceScheduler
// / PriorityPolicy strategy-interface idiom (sim/scheduler.go, sim/priority.go).
type BatchSearchStrategy interface {
	Search(server *catalog.Server, minB, searchLimit int, remaining int, deadlineSlack, urgency float64, w Weights) int
}

// EfficiencyBonusSearch is the spec-adopted strategy: maximize
// Efficiency[b] + sqrt(b)*BetaSize over [minB, searchLimit], with an urgent
// short-circuit to a large batch when the deadline is close or urgency is high.
type EfficiencyBonusSearch struct{}

func (EfficiencyBonusSearch) Search(server *catalog.Server, minB, searchLimit int, remaining int, deadlineSlack, urgency float64, w Weights) int {
	if deadlineSlack < w.TauUrgent || urgency > w.ThetaUrgent {
		urgent := int(math.Floor(0.9 * float64(remaining)))
		if urgent < minB {
			urgent = minB
		}
		if urgent > searchLimit {
			urgent = searchLimit
		}
		return urgent
	}

	bestScore := -1.0
	bestB := minB
	for b := minB; b <= searchLimit; b++ {
		score := server.Efficiency[b] + math.Sqrt(float64(b))*w.BetaSize
		if score > bestScore {
			bestScore = score
			bestB = b
		}
	}
	return bestB
}

// GreedyLargestSearch is the earlier, simpler variant named in the original
// spec's design notes: always take the largest feasible batch. It is not
// reproduced by EfficiencyBonusSearch with BetaSize=0 (that search then
// maximizes Efficiency[b] alone, which need not pick the largest b), so it
// is kept here as a literal selectable alternative for regression
// comparison, never the default.
type GreedyLargestSearch struct{}

func (GreedyLargestSearch) Search(_ *catalog.Server, minB, searchLimit int, _ int, _, _ float64, _ Weights) int {
	if searchLimit > minB {
		return searchLimit
	}
	return minB
}

// minBatchFloor computes the request-count floor: the smallest batch that
// keeps the user's total request count within catalog.MaxRequestsPerUser.
// sent is the number of requests already committed for this user.
func minBatchFloor(remaining, sent int) int {
	budget := catalog.MaxRequestsPerUser - sent
	if budget > 0 {
		return ceilDiv(remaining, budget)
	}
	if remaining > 0 {
		return remaining // force a single final batch
	}
	return 1
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// planResult is the Batch Planner's output for one (server, user) pair.
type planResult struct {
	Batch    int
	Feasible bool
}

// planBatch runs the Batch Planner for one (server, user) pair: computes the
// request-count floor, the memory/remaining-bounded search limit, and —
// if feasible — the batch size the strategy selects.
func planBatch(cat *catalog.Catalog, serverIdx, userIdx int, remaining, sent int, deadlineSlack, urgency float64, strategy BatchSearchStrategy, w Weights) planResult {
	if cat.Servers[serverIdx].Speed <= 0 {
		// A server with k <= 0 cannot service any batch (see catalog.Server.InferenceTime).
		return planResult{Feasible: false}
	}
	minB := minBatchFloor(remaining, sent)
	memCap := cat.MemCap[serverIdx][userIdx]
	searchLimit := remaining
	if memCap < searchLimit {
		searchLimit = memCap
	}
	if searchLimit < minB {
		return planResult{Feasible: false}
	}
	b := strategy.Search(&cat.Servers[serverIdx], minB, searchLimit, remaining, deadlineSlack, urgency, w)
	if b <= 0 {
		return planResult{Feasible: false}
	}
	return planResult{Batch: b, Feasible: true}
}
