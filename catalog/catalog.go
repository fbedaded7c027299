// Package catalog holds the immutable parameters of a dispatch instance:
// servers, users, the latency matrix, and the derived efficiency and
// memory-cap tables the dispatcher consults on every epoch.
//
// Everything in this package is built once by New and never mutated
// afterward. Run-time state (remaining samples, NPU occupancy, the
// emitted plan) lives in the dispatch package instead.
package catalog

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// MaxBatch is the upper cap on a single inference request's batch size.
const MaxBatch = 1000

// MaxRequestsPerUser bounds the number of requests any single user's plan may contain.
const MaxRequestsPerUser = 300

// Server is an immutable description of one inference server.
type Server struct {
	ID         int // 1-based
	NPUCount   int // g
	Speed      int // k
	Memory     int // m
	Efficiency []float64 // Efficiency[b] for b in [0, MaxBatch], Efficiency[0] unused
}

// InferenceTime returns ⌈b / (k·√b)⌉ ms for a batch of size b on this server,
// with the degenerate convention that a batch of 0 or fewer takes 0 ms.
func (s *Server) InferenceTime(b int) float64 {
	if b <= 0 {
		return 0
	}
	if s.Speed <= 0 {
		// A zero or negative speed coefficient makes this server unable to
		// service any batch; treated as infeasible rather than a divide-by-zero.
		return math.Inf(1)
	}
	raw := float64(b) / (float64(s.Speed) * math.Sqrt(float64(b)))
	t := math.Ceil(raw)
	if t < 1 {
		return 1
	}
	return t
}

func efficiencyFor(b, k int) float64 {
	if b <= 0 {
		return 0
	}
	if k <= 0 {
		return 0
	}
	raw := float64(b) / (float64(k) * math.Sqrt(float64(b)))
	t := math.Ceil(raw)
	if t < 1 {
		return float64(b)
	}
	return float64(b) / t
}

func precalculateEfficiency(speed int) []float64 {
	eff := make([]float64, MaxBatch+1)
	for b := 1; b <= MaxBatch; b++ {
		eff[b] = efficiencyFor(b, speed)
	}
	return eff
}

// UserSpec is the immutable, per-user half of the parameter catalog:
// the request window, the total sample count, and the memory coefficients.
type UserSpec struct {
	ID           int // 1-based
	S, E         int // request window [S, E)
	CountInitial int
	A, B         int // memory coefficients: Memory = A*batch + B
}

// NPUDescriptor identifies one physical NPU slot within a server.
type NPUDescriptor struct {
	ServerID      int
	IndexInServer int // 1-based within the server
}

// Catalog bundles everything the dispatcher needs that never changes
// once the instance is parsed: server/user statics, the latency matrix,
// the flattened NPU list, and the derived mem-cap table.
type Catalog struct {
	Servers  []Server
	Users    []UserSpec
	Latency  [][]int // Latency[serverIdx][userIdx]
	NPUs     []NPUDescriptor
	MemCap   [][]int // MemCap[serverIdx][userIdx], 0 means infeasible
}

// New builds a Catalog from parsed servers, users, and a latency matrix.
// servers and users must already carry 1-based IDs matching their index+1;
// latency must be shaped [len(servers)][len(users)].
func New(servers []Server, users []UserSpec, latency [][]int) (*Catalog, error) {
	n, m := len(servers), len(users)
	if len(latency) != n {
		return nil, fmt.Errorf("catalog: latency matrix has %d rows, want %d", len(latency), n)
	}
	for i, row := range latency {
		if len(row) != m {
			return nil, fmt.Errorf("catalog: latency row %d has %d columns, want %d", i, len(row), m)
		}
	}

	c := &Catalog{
		Servers: make([]Server, n),
		Users:   users,
		Latency: latency,
		MemCap:  make([][]int, n),
	}

	for i := range servers {
		s := servers[i]
		s.Efficiency = precalculateEfficiency(s.Speed)
		c.Servers[i] = s
		if s.NPUCount <= 0 {
			logrus.Debugf("catalog: server %d has g=%d, contributes no NPUs", s.ID, s.NPUCount)
		}
		if s.Speed <= 0 {
			logrus.Debugf("catalog: server %d has k=%d, every batch is infeasible on it", s.ID, s.Speed)
		}
		for j := 0; j < s.NPUCount; j++ {
			c.NPUs = append(c.NPUs, NPUDescriptor{ServerID: s.ID, IndexInServer: j + 1})
		}

		c.MemCap[i] = make([]int, m)
		for j, u := range users {
			memCap := memCapFor(s.Memory, u.A, u.B)
			c.MemCap[i][j] = memCap
			if memCap <= 0 {
				logrus.Debugf("catalog: server %d, user %d has mem_cap=%d, pair is infeasible", s.ID, u.ID, memCap)
			}
		}
	}

	return c, nil
}

// memCapFor computes the memory-bounded batch cap for one (server, user) pair:
// MaxBatch when a=0, else min(MaxBatch, (m-b)/a), clamped at 0.
func memCapFor(serverMemory, a, b int) int {
	if a == 0 {
		return MaxBatch
	}
	memCap := (serverMemory - b) / a
	if memCap > MaxBatch {
		memCap = MaxBatch
	}
	if memCap < 0 {
		memCap = 0
	}
	return memCap
}

// ServerByID returns a pointer to the server with the given 1-based ID.
// IDs are dense and match index+1, so this is O(1).
func (c *Catalog) ServerByID(id int) *Server {
	if id < 1 || id > len(c.Servers) {
		return nil
	}
	return &c.Servers[id-1]
}

// NumUsers returns the number of users in the catalog.
func (c *Catalog) NumUsers() int {
	return len(c.Users)
}

// NumNPUs returns the total number of NPUs across all servers.
func (c *Catalog) NumNPUs() int {
	return len(c.NPUs)
}
