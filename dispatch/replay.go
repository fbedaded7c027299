package dispatch

import (
	"sort"

	"github.com/tanteijms/light-chaser-HUAWEI2025/catalog"
)

// ReplayResult mirrors the NPU occupancy bookkeeping Replay reconstructs,
// keyed the same way the live Driver's npuStates slice is indexed.
type ReplayResult struct {
	FreeAt          []int64
	UtilizationTime []int64
}

// Replay re-simulates NPU occupancy from an emitted Plan alone, independent
// of the Driver's own run. It exists to check the idempotence-of-replay
// property: feeding a plan the Driver produced back through Replay must
// reproduce the same FreeAt/UtilizationTime trajectory the live run recorded,
// which is only possible if the plan fully determines NPU occupancy and the
// Committer's bookkeeping has no hidden dependency on run-time ordering.
func Replay(cat *catalog.Catalog, plan Plan) ReplayResult {
	npus := newNPUStates(cat.NPUs)
	indexOf := make(map[[2]int]int, len(npus))
	for i, n := range npus {
		indexOf[[2]int{n.ServerID, n.IndexInServer}] = i
	}

	requests := make([]ScheduledRequest, 0)
	for _, reqs := range plan {
		requests = append(requests, reqs...)
	}
	orderStably(requests)

	for _, req := range requests {
		idx, ok := indexOf[[2]int{req.ServerID, req.NPUID}]
		if !ok {
			continue
		}
		npu := &npus[idx]
		serverIdx := req.ServerID - 1
		userIdx := req.UserID - 1
		latency := int64(cat.Latency[serverIdx][userIdx])

		arrival := req.SendTime + latency
		start := arrival
		if npu.FreeAt > start {
			start = npu.FreeAt
		}
		finish := start + int64(cat.Servers[serverIdx].InferenceTime(req.Batch))

		npu.UtilizationTime += finish - start
		npu.FreeAt = finish
	}

	result := ReplayResult{
		FreeAt:          make([]int64, len(npus)),
		UtilizationTime: make([]int64, len(npus)),
	}
	for i, n := range npus {
		result.FreeAt[i] = n.FreeAt
		result.UtilizationTime[i] = n.UtilizationTime
	}
	return result
}

// orderStably sorts requests by send time, ties broken by (server, npu, user).
// A live run commits in non-decreasing send time, so this matches its order
// except where two users sent to the same NPU at the same tick: those are
// replayed in ascending user ID, whichever order the live run committed them.
func orderStably(requests []ScheduledRequest) {
	sort.Slice(requests, func(i, j int) bool {
		a, b := requests[i], requests[j]
		if a.SendTime != b.SendTime {
			return a.SendTime < b.SendTime
		}
		if a.ServerID != b.ServerID {
			return a.ServerID < b.ServerID
		}
		if a.NPUID != b.NPUID {
			return a.NPUID < b.NPUID
		}
		return a.UserID < b.UserID
	})
}
