package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_InferenceTime(t *testing.T) {
	cases := []struct {
		name string
		b, k int
		want float64
	}{
		{"E1 batch 4 speed 1", 4, 1, 2},
		{"zero batch", 0, 1, 0},
		{"negative batch", -3, 1, 0},
		{"batch 1 speed 1", 1, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Server{Speed: tc.k}
			assert.Equal(t, tc.want, s.InferenceTime(tc.b))
		})
	}
}

func TestServer_InferenceTime_ZeroSpeedIsInfeasible(t *testing.T) {
	s := &Server{Speed: 0}
	assert.True(t, math.IsInf(s.InferenceTime(10), 1))
}

func TestEfficiencyFor_MatchesInferenceTime(t *testing.T) {
	// Efficiency(b,k) = b / InferenceTime(b,k) by construction.
	s := &Server{Speed: 3}
	for b := 1; b <= 50; b++ {
		want := float64(b) / s.InferenceTime(b)
		got := efficiencyFor(b, 3)
		assert.InDelta(t, want, got, 1e-9, "b=%d", b)
	}
}

func TestMemCapFor(t *testing.T) {
	cases := []struct {
		name         string
		memory, a, b int
		want         int
	}{
		{"a=0 unlimited", 1000, 0, 999, MaxBatch},
		{"E1 example", 1000, 1, 0, MaxBatch}, // min(1000, 1000)
		{"E2 example", 10, 1, 0, 10},
		{"negative clamps to zero", 5, 1, 100, 0},
		{"exceeds MaxBatch clamps", 1_000_000, 1, 0, MaxBatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, memCapFor(tc.memory, tc.a, tc.b))
		})
	}
}

func TestNew_BuildsNPUsInOrder(t *testing.T) {
	servers := []Server{
		{ID: 1, NPUCount: 2, Speed: 1, Memory: 100},
		{ID: 2, NPUCount: 1, Speed: 2, Memory: 200},
	}
	users := []UserSpec{{ID: 1, S: 0, E: 100, CountInitial: 10, A: 1, B: 0}}
	latency := [][]int{{0}, {0}}

	c, err := New(servers, users, latency)
	require.NoError(t, err)

	require.Len(t, c.NPUs, 3)
	assert.Equal(t, NPUDescriptor{ServerID: 1, IndexInServer: 1}, c.NPUs[0])
	assert.Equal(t, NPUDescriptor{ServerID: 1, IndexInServer: 2}, c.NPUs[1])
	assert.Equal(t, NPUDescriptor{ServerID: 2, IndexInServer: 1}, c.NPUs[2])
}

func TestNew_ZeroNPUServerContributesNone(t *testing.T) {
	servers := []Server{{ID: 1, NPUCount: 0, Speed: 1, Memory: 100}}
	users := []UserSpec{{ID: 1, S: 0, E: 100, CountInitial: 10, A: 1, B: 0}}
	latency := [][]int{{0}}

	c, err := New(servers, users, latency)
	require.NoError(t, err)
	assert.Empty(t, c.NPUs)
}

func TestNew_RejectsMismatchedLatencyShape(t *testing.T) {
	servers := []Server{{ID: 1, NPUCount: 1, Speed: 1, Memory: 100}}
	users := []UserSpec{{ID: 1, S: 0, E: 100, CountInitial: 10, A: 1, B: 0}}

	_, err := New(servers, users, [][]int{{0, 0}})
	assert.Error(t, err)

	_, err = New(servers, users, [][]int{{0}, {0}})
	assert.Error(t, err)
}

func TestNew_DegenerateSpeedMakesEfficiencyZero(t *testing.T) {
	servers := []Server{{ID: 1, NPUCount: 1, Speed: 0, Memory: 100}}
	users := []UserSpec{{ID: 1, S: 0, E: 100, CountInitial: 10, A: 0, B: 0}}

	c, err := New(servers, users, [][]int{{0}})
	require.NoError(t, err)
	for b := 1; b <= 10; b++ {
		assert.Equal(t, 0.0, c.Servers[0].Efficiency[b])
	}
}

func TestServerByID(t *testing.T) {
	servers := []Server{{ID: 1, NPUCount: 1, Speed: 1, Memory: 100}, {ID: 2, NPUCount: 1, Speed: 1, Memory: 100}}
	users := []UserSpec{{ID: 1, S: 0, E: 100, CountInitial: 1, A: 0, B: 0}}
	c, err := New(servers, users, [][]int{{0}, {0}})
	require.NoError(t, err)

	assert.Equal(t, 2, c.ServerByID(2).ID)
	assert.Nil(t, c.ServerByID(0))
	assert.Nil(t, c.ServerByID(3))
}
