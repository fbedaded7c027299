package dispatch

import "sort"

// nextEpochTime returns the minimum NextSendTime over all users with
// Remaining > 0, and false if no such user exists (the driver should
// terminate in that case).
func nextEpochTime(users []UserState) (int64, bool) {
	best := int64(0)
	found := false
	for _, u := range users {
		if u.Remaining <= 0 {
			continue
		}
		if !found || u.NextSendTime < best {
			best = u.NextSendTime
			found = true
		}
	}
	return best, found
}

// readyUsers returns the 0-based indices of users ready at now: Remaining > 0
// and NextSendTime <= now.
func readyUsers(users []UserState, now int64) []int {
	var ready []int
	for i, u := range users {
		if u.Remaining > 0 && u.NextSendTime <= now {
			ready = append(ready, i)
		}
	}
	return ready
}

// updateUrgency recomputes UserState.Urgency for every user with Remaining > 0,
// using Urgency[u] = Remaining[u] / max(1, E[u] - now). Completed users get 0.
func updateUrgency(users []UserState, deadlines []int, now int64) {
	for i := range users {
		if users[i].Remaining <= 0 {
			users[i].Urgency = 0
			continue
		}
		slack := int64(deadlines[i]) - now
		if slack < 1 {
			slack = 1
		}
		users[i].Urgency = float64(users[i].Remaining) / float64(slack)
	}
}

// orderByUrgencyDesc returns a copy of ready sorted by decreasing Urgency,
// ties broken by ascending user index, for deterministic enumeration order.
func orderByUrgencyDesc(ready []int, users []UserState) []int {
	ordered := append([]int(nil), ready...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ui, uj := ordered[i], ordered[j]
		if users[ui].Urgency != users[uj].Urgency {
			return users[ui].Urgency > users[uj].Urgency
		}
		return ui < uj
	})
	return ordered
}
