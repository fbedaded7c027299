package dispatch

import "github.com/tanteijms/light-chaser-HUAWEI2025/catalog"

// commit applies the winning candidate to run-time state: appends to the
// user's plan, decrements Remaining, records the migration trail, advances
// NextSendTime past the latency-delayed response, and updates the NPU's
// occupancy bookkeeping. Implements SPEC_FULL.md §4.6.
func commit(cat *catalog.Catalog, winner Candidate, users []UserState, npus []NPUState, plan Plan) {
	user := &users[winner.UserIdx]
	npu := &npus[winner.NPUIdx]
	userSpec := &cat.Users[winner.UserIdx]

	sendTime := user.NextSendTime
	latency := int64(cat.Latency[npu.ServerID-1][winner.UserIdx])
	batch := winner.Result.Batch
	finish := winner.Result.FinishTime

	plan[userSpec.ID] = append(plan[userSpec.ID], ScheduledRequest{
		UserID:   userSpec.ID,
		SendTime: sendTime,
		ServerID: npu.ServerID,
		NPUID:    npu.IndexInServer,
		Batch:    batch,
	})

	user.Remaining -= batch
	user.LastServerID = npu.ServerID
	user.LastNPUID = npu.IndexInServer
	user.NextSendTime = sendTime + latency + 1

	start := sendTime + latency
	if npu.FreeAt > start {
		start = npu.FreeAt
	}
	npu.UtilizationTime += finish - start
	npu.FreeAt = finish
}

// breakDeadlock is invoked when no ready user has any feasible NPU. It finds
// the next NPU release time after now and advances the lowest-ID ready
// user's clock to it, guaranteeing monotonic progress. Returns false if no
// NPU will ever free up again (the driver must then terminate).
func breakDeadlock(ready []int, users []UserState, npus []NPUState, now int64) bool {
	tNext, found := nextNPURelease(npus, now)
	if !found {
		return false
	}
	if len(ready) == 0 {
		return false
	}
	// Pick the lowest-ID (lowest index, since IDs are dense and index+1) ready user.
	u := ready[0]
	for _, idx := range ready {
		if idx < u {
			u = idx
		}
	}
	users[u].NextSendTime = tNext
	return true
}

// nextNPURelease returns the smallest FreeAt strictly greater than now, and
// false if every NPU is already free (FreeAt <= now everywhere).
func nextNPURelease(npus []NPUState, now int64) (int64, bool) {
	best := int64(0)
	found := false
	for _, n := range npus {
		if n.FreeAt > now && (!found || n.FreeAt < best) {
			best = n.FreeAt
			found = true
		}
	}
	return best, found
}
