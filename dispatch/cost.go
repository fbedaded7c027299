package dispatch

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tanteijms/light-chaser-HUAWEI2025/catalog"
)

// CostResult is the Cost Evaluator's output for one feasible candidate.
type CostResult struct {
	Cost       float64
	Batch      int
	FinishTime int64
}

// evaluateCandidate scores one (user, NPU) candidate that the Batch Planner
// has already deemed feasible with the given batch size. It implements
// SPEC_FULL.md §4.4 term by term.
func evaluateCandidate(cat *catalog.Catalog, serverIdx int, npu *NPUState, userSpec *catalog.UserSpec, user *UserState, now int64, sent int, batch int, npus []NPUState, w Weights) CostResult {
	server := &cat.Servers[serverIdx]
	latency := int64(cat.Latency[serverIdx][userSpec.ID-1])

	sendTime := user.NextSendTime
	arrival := sendTime + latency
	start := arrival
	if npu.FreeAt > start {
		start = npu.FreeAt
	}
	inferenceTime := int64(server.InferenceTime(batch))
	finish := start + inferenceTime

	cost := float64(finish)

	// Deadline penalty.
	over := finish - int64(userSpec.E)
	if over > 0 {
		window := float64(userSpec.E - userSpec.S)
		ratio := float64(over) / window
		cost += w.WDeadline * math.Exp(2*ratio)
	}

	// Urgency scaling.
	slack := int64(userSpec.E) - now
	if slack < 1 {
		slack = 1
	}
	urgency := float64(user.Remaining) / float64(slack)
	if urgency > w.ThetaUrgent {
		cost *= 1 + urgency*0.2
	}

	// Efficiency bonus.
	cost /= 1 + server.Efficiency[batch]*w.WEff/10_000

	// Migration penalty / stickiness reward.
	if user.LastServerID != -1 {
		serverChanged := npu.ServerID != user.LastServerID
		npuChanged := npu.IndexInServer != user.LastNPUID
		switch {
		case serverChanged:
			penalty := 2 * w.PMig * (1 + float64(sent)/5)
			cost += penalty
		case npuChanged:
			penalty := w.PMig * (1 + float64(sent)/5)
			cost += penalty
		default:
			cost *= 0.95
		}
	}

	// Load balance.
	avg := meanUtilization(npus)
	delta := float64(npu.UtilizationTime) - avg
	if delta > 0 {
		cost += delta * w.WLoad
	} else {
		cost *= 1 + delta/10_000
	}

	// Batch-size bonus.
	cost /= 1 + math.Sqrt(float64(batch))*2/1000

	if cost < 1 {
		cost = 1
	}

	return CostResult{Cost: cost, Batch: batch, FinishTime: finish}
}

// meanUtilization computes the mean UtilizationTime across all NPUs using
// gonum's stat.Mean, matching the load-balance term's "avg = mean(utilization_time)".
func meanUtilization(npus []NPUState) float64 {
	if len(npus) == 0 {
		return 0
	}
	vals := make([]float64, len(npus))
	for i, n := range npus {
		vals[i] = float64(n.UtilizationTime)
	}
	return stat.Mean(vals, nil)
}
