package dispatch

import (
	"context"
	"runtime"
	"sync"

	"github.com/tanteijms/light-chaser-HUAWEI2025/catalog"
	"github.com/tanteijms/light-chaser-HUAWEI2025/rng"
)

// Summary is the Driver's end-of-run report, analogous to the teacher's
// sim.Metrics: a compact record of what happened, not the plan itself.
type Summary struct {
	CompletedUsers int
	Scheduled      int
	Stranded       int
	Epochs         int
	DeadlockBreaks int
}

// Driver owns the mutable run-time arrays and runs the epoch loop described
// in SPEC_FULL.md §4.8. Strategy and Weights are pure parameters; Seed feeds
// the single explicitly-threaded rng.Source (no package-level *rand.Rand).
type Driver struct {
	Catalog  *catalog.Catalog
	Strategy BatchSearchStrategy
	Weights  Weights
	Seed     int64

	// Parallel, when true, fans the per-ready-user row of the cost matrix out
	// across a goroutine pool bounded by runtime.GOMAXPROCS(0) instead of
	// evaluating it sequentially. Both paths produce a bit-identical ranked
	// candidate order: each goroutine writes only its own row (no mutex), the
	// rows are concatenated in the same ready-set order the sequential path
	// uses, and both results are ranked by rankCandidates.
	Parallel bool

	scratch []Candidate
}

// NewDriver builds a Driver with the spec-adopted EfficiencyBonusSearch
// strategy and DefaultWeights.
func NewDriver(cat *catalog.Catalog, seed int64) *Driver {
	return &Driver{
		Catalog:  cat,
		Strategy: EfficiencyBonusSearch{},
		Weights:  DefaultWeights(),
		Seed:     seed,
	}
}

// Run executes the Driver Loop to completion (or until ctx is cancelled at
// an epoch boundary) and returns the assembled per-user Plan, Summary, and
// the final live NPUState slice (FreeAt/UtilizationTime as actually observed
// during the run, for comparison against Replay's recomputation of the same
// quantities from the Plan alone).
func (d *Driver) Run(ctx context.Context) (Plan, Summary, []NPUState, error) {
	cat := d.Catalog
	users := newUserStates(cat.Users)
	npus := newNPUStates(cat.NPUs)
	plan := make(Plan, len(users))
	sent := make([]int, len(users))
	deadlines := make([]int, len(users))
	for i, u := range cat.Users {
		deadlines[i] = u.E
	}
	r := rng.New(d.Seed)

	var summary Summary

	for {
		if err := ctx.Err(); err != nil {
			return plan, summary, npus, err
		}

		now, found := nextEpochTime(users)
		if !found {
			break
		}
		summary.Epochs++

		updateUrgency(users, deadlines, now)
		ready := readyUsers(users, now)
		ready = orderByUrgencyDesc(ready, users)

		candidates := d.evaluateMatrix(ready, users, npus, sent, now)

		if len(candidates) > 0 {
			winner, ok := chooseTopK(candidates, ready, users, now, d.Weights, r)
			if !ok {
				break
			}
			commit(cat, winner, users, npus, plan)
			sent[winner.UserIdx]++
			continue
		}

		summary.DeadlockBreaks++
		if !breakDeadlock(ready, users, npus, now) {
			break
		}
	}

	for i, u := range users {
		if u.Remaining <= 0 {
			summary.CompletedUsers++
		}
		summary.Stranded += u.Remaining
		summary.Scheduled += cat.Users[i].CountInitial - u.Remaining
	}

	return plan, summary, npus, nil
}

// evaluateMatrix computes the feasible (user, NPU) candidate set for the
// ready set, either sequentially or — when Driver.Parallel is set — with one
// goroutine per ready user writing into row-disjoint scratch slices.
func (d *Driver) evaluateMatrix(ready []int, users []UserState, npus []NPUState, sent []int, now int64) []Candidate {
	cat := d.Catalog
	if !d.Parallel || len(ready) < 2 {
		return d.evaluateMatrixSequential(ready, users, npus, sent, now)
	}

	rows := make([][]Candidate, len(ready))
	var wg sync.WaitGroup
	limit := runtime.GOMAXPROCS(0)
	sem := make(chan struct{}, limit)

	for rowIdx, userIdx := range ready {
		wg.Add(1)
		sem <- struct{}{}
		go func(rowIdx, userIdx int) {
			defer wg.Done()
			defer func() { <-sem }()
			rows[rowIdx] = d.evaluateUserRow(cat, userIdx, users, npus, sent[userIdx], now)
		}(rowIdx, userIdx)
	}
	wg.Wait()

	total := 0
	for _, row := range rows {
		total += len(row)
	}
	merged := make([]Candidate, 0, total)
	for _, row := range rows {
		merged = append(merged, row...)
	}
	return merged
}

func (d *Driver) evaluateMatrixSequential(ready []int, users []UserState, npus []NPUState, sent []int, now int64) []Candidate {
	d.scratch = d.scratch[:0]
	for _, userIdx := range ready {
		d.scratch = append(d.scratch, d.evaluateUserRow(d.Catalog, userIdx, users, npus, sent[userIdx], now)...)
	}
	return d.scratch
}

// evaluateUserRow runs the Batch Planner + Cost Evaluator for one ready user
// against every NPU, returning its feasible candidates.
func (d *Driver) evaluateUserRow(cat *catalog.Catalog, userIdx int, users []UserState, npus []NPUState, sentCount int, now int64) []Candidate {
	user := &users[userIdx]
	userSpec := &cat.Users[userIdx]
	deadlineSlack := float64(userSpec.E) - float64(now)
	urgency := user.Urgency

	var row []Candidate
	for npuIdx := range npus {
		npu := &npus[npuIdx]
		serverIdx := npu.ServerID - 1

		pr := planBatch(cat, serverIdx, userIdx, user.Remaining, sentCount, deadlineSlack, urgency, d.Strategy, d.Weights)
		if !pr.Feasible {
			continue
		}

		res := evaluateCandidate(cat, serverIdx, npu, userSpec, user, now, sentCount, pr.Batch, npus, d.Weights)
		row = append(row, Candidate{UserIdx: userIdx, NPUIdx: npuIdx, Result: res})
	}
	return row
}
