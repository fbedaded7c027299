package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanteijms/light-chaser-HUAWEI2025/rng"
)

func candCost(userIdx, npuIdx int, cost float64) Candidate {
	return Candidate{UserIdx: userIdx, NPUIdx: npuIdx, Result: CostResult{Cost: cost}}
}

func TestRankCandidates_SortsByCostThenUserThenNPU(t *testing.T) {
	in := []Candidate{
		candCost(2, 0, 5),
		candCost(1, 0, 5),
		candCost(0, 1, 3),
		candCost(0, 0, 3),
	}
	got := rankCandidates(in)
	want := []Candidate{
		candCost(0, 0, 3),
		candCost(0, 1, 3),
		candCost(1, 0, 5),
		candCost(2, 0, 5),
	}
	assert.Equal(t, want, got)
}

func TestChooseTopK_EmptyReturnsFalse(t *testing.T) {
	_, ok := chooseTopK(nil, nil, nil, 0, DefaultWeights(), rng.New(1))
	assert.False(t, ok)
}

func TestChooseTopK_HighUrgencyIsDeterministic(t *testing.T) {
	candidates := []Candidate{candCost(0, 0, 10), candCost(0, 1, 5)}
	users := []UserState{{Urgency: 2.0}}
	w := DefaultWeights()
	chosen, ok := chooseTopK(candidates, []int{0}, users, 0, w, rng.New(1))
	require.True(t, ok)
	assert.Equal(t, 5.0, chosen.Result.Cost) // picks the lowest cost regardless of draw
}

func TestChooseTopK_FewCandidatesConsidersAll(t *testing.T) {
	// Below-urgency-threshold users, few candidates: k = len(candidates).
	candidates := []Candidate{candCost(0, 0, 10), candCost(1, 0, 20)}
	users := []UserState{{Urgency: 0.1}, {Urgency: 0.1}}
	w := DefaultWeights()
	// With a deterministic seed, repeated draws must stay within the candidate set.
	for seed := int64(0); seed < 20; seed++ {
		chosen, ok := chooseTopK(candidates, []int{0, 1}, users, 0, w, rng.New(seed))
		require.True(t, ok)
		assert.Contains(t, []float64{10, 20}, chosen.Result.Cost)
	}
}

func TestChooseTopK_DeterministicUnderSameSeed(t *testing.T) {
	candidates := make([]Candidate, 0, 10)
	for i := 0; i < 10; i++ {
		candidates = append(candidates, candCost(i, 0, float64(100+i)))
	}
	ready := make([]int, 10)
	users := make([]UserState, 10)
	for i := range ready {
		ready[i] = i
		users[i] = UserState{Urgency: 0.01}
	}
	w := DefaultWeights()
	w.TopK = 5

	a, okA := chooseTopK(candidates, ready, users, 0, w, rng.New(99))
	b, okB := chooseTopK(candidates, ready, users, 0, w, rng.New(99))
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a, b)
}

func TestWeightedRank_StaysInRange(t *testing.T) {
	r := rng.New(1)
	for i := 0; i < 200; i++ {
		got := weightedRank(5, r)
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, 5)
	}
}

func TestReadyAvgUrgency_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, readyAvgUrgency(nil, nil))
}
