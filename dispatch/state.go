// Package dispatch implements the dynamic event-driven dispatcher: the
// clock, readiness index, batch planner, cost evaluator, selector,
// committer, deadlock breaker, and driver loop described in SPEC_FULL.md.
//
// The catalog package owns everything immutable about an instance; this
// package owns everything that mutates as the simulated clock advances.
package dispatch

import "github.com/tanteijms/light-chaser-HUAWEI2025/catalog"

// UserState is the mutable, per-user run-time state the Driver owns.
type UserState struct {
	Remaining    int
	NextSendTime int64
	LastServerID int // -1 until the user's first request commits
	LastNPUID    int // -1 until the user's first request commits
	Urgency      float64
}

// NPUState is the mutable, per-NPU run-time state the Driver owns.
type NPUState struct {
	ServerID        int
	IndexInServer   int
	FreeAt          int64
	UtilizationTime int64
}

// ScheduledRequest is one emitted request in a user's plan.
type ScheduledRequest struct {
	UserID   int
	SendTime int64
	ServerID int
	NPUID    int
	Batch    int
}

// Plan holds the per-user list of scheduled requests, in the order committed.
type Plan map[int][]ScheduledRequest

// newUserStates builds the initial UserState slice from the catalog's user specs:
// Remaining = CountInitial, NextSendTime = S, no prior server/NPU.
func newUserStates(users []catalog.UserSpec) []UserState {
	states := make([]UserState, len(users))
	for i, u := range users {
		states[i] = UserState{
			Remaining:    u.CountInitial,
			NextSendTime: int64(u.S),
			LastServerID: -1,
			LastNPUID:    -1,
		}
	}
	return states
}

// newNPUStates builds the initial NPUState slice from the catalog's NPU descriptors:
// every NPU starts free at tick 0 with zero accumulated utilization.
func newNPUStates(npus []catalog.NPUDescriptor) []NPUState {
	states := make([]NPUState, len(npus))
	for i, n := range npus {
		states[i] = NPUState{ServerID: n.ServerID, IndexInServer: n.IndexInServer}
	}
	return states
}
