// Package ioformat implements the dispatcher's external I/O grammar: a
// whitespace-separated integer stream in, and a per-user request listing
// out. Neither direction touches catalog or dispatch types directly beyond
// the plain structs this package defines — cmd wires them together.
package ioformat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/tanteijms/light-chaser-HUAWEI2025/catalog"
)

// tokenScanner pulls whitespace-separated integer tokens off a reader one
// at a time, tracking a running token index for error messages.
type tokenScanner struct {
	sc  *bufio.Scanner
	pos int
}

func newTokenScanner(r io.Reader) *tokenScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	return &tokenScanner{sc: sc}
}

func (t *tokenScanner) nextInt() (int, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return 0, fmt.Errorf("ioformat: reading token %d: %w", t.pos, err)
		}
		return 0, fmt.Errorf("ioformat: unexpected end of input at token %d", t.pos)
	}
	tok := t.sc.Text()
	t.pos++
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("ioformat: token %d (%q) is not an integer: %w", t.pos-1, tok, err)
	}
	return v, nil
}

// remaining drains and counts any tokens left in the stream, used to detect
// the legacy single-global-(a,b) input variant.
func (t *tokenScanner) remaining() ([]int, error) {
	var vals []int
	for t.sc.Scan() {
		tok := t.sc.Text()
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("ioformat: trailing token %q is not an integer: %w", tok, err)
		}
		vals = append(vals, v)
		t.pos++
	}
	if err := t.sc.Err(); err != nil {
		return nil, fmt.Errorf("ioformat: reading trailing tokens: %w", err)
	}
	return vals, nil
}

// Read parses the §6 input grammar from r: server count and specs, user
// count and specs, the latency matrix, and per-user memory coefficients.
// It auto-detects the legacy single-global-(a,b) variant when exactly two
// integers remain after the latency matrix instead of 2*M.
func Read(r io.Reader) (*catalog.Catalog, error) {
	ts := newTokenScanner(r)

	n, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("ioformat: server count N=%d is negative", n)
	}

	servers := make([]catalog.Server, n)
	for i := 0; i < n; i++ {
		g, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		k, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		m, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		servers[i] = catalog.Server{ID: i + 1, NPUCount: g, Speed: k, Memory: m}
	}

	mUsers, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	if mUsers < 0 {
		return nil, fmt.Errorf("ioformat: user count M=%d is negative", mUsers)
	}

	users := make([]catalog.UserSpec, mUsers)
	for j := 0; j < mUsers; j++ {
		s, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		e, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		cnt, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		if s >= e {
			return nil, fmt.Errorf("ioformat: user %d has s=%d >= e=%d, want s < e", j+1, s, e)
		}
		users[j] = catalog.UserSpec{ID: j + 1, S: s, E: e, CountInitial: cnt}
	}

	latency := make([][]int, n)
	for i := 0; i < n; i++ {
		latency[i] = make([]int, mUsers)
		for j := 0; j < mUsers; j++ {
			v, err := ts.nextInt()
			if err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, fmt.Errorf("ioformat: latency[%d][%d]=%d is negative", i, j, v)
			}
			latency[i][j] = v
		}
	}

	coeffs, err := readCoefficients(ts, mUsers)
	if err != nil {
		return nil, err
	}
	for j := range users {
		users[j].A = coeffs[j].a
		users[j].B = coeffs[j].b
	}

	return catalog.New(servers, users, latency)
}

type abPair struct{ a, b int }

// readCoefficients reads either M (a_j, b_j) pairs, or — the legacy variant —
// a single trailing (a, b) pair fanned out to every user.
func readCoefficients(ts *tokenScanner, m int) ([]abPair, error) {
	if m == 0 {
		return nil, nil
	}

	first, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	second, err := ts.nextInt()
	if err != nil {
		return nil, err
	}

	if m == 1 {
		return []abPair{{a: first, b: second}}, nil
	}

	rest, err := ts.remaining()
	if err != nil {
		return nil, err
	}

	if len(rest) == 0 {
		// Legacy variant: exactly one (a, b) pair total, fanned out to all M users.
		pairs := make([]abPair, m)
		for j := range pairs {
			pairs[j] = abPair{a: first, b: second}
		}
		return pairs, nil
	}

	all := append([]int{first, second}, rest...)
	if len(all) != 2*m {
		return nil, fmt.Errorf("ioformat: expected 2 or %d trailing memory-coefficient tokens, got %d", 2*m, len(all))
	}
	pairs := make([]abPair, m)
	for j := range pairs {
		pairs[j] = abPair{a: all[2*j], b: all[2*j+1]}
	}
	return pairs, nil
}

// ReadLegacy parses the same grammar but skips auto-detection, always
// treating the trailing two integers as a single global (a, b) pair. Kept
// as an explicit entry point for callers (and tests) that know in advance
// they're reading the legacy variant.
func ReadLegacy(r io.Reader) (*catalog.Catalog, error) {
	ts := newTokenScanner(r)

	n, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	servers := make([]catalog.Server, n)
	for i := 0; i < n; i++ {
		g, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		k, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		m, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		servers[i] = catalog.Server{ID: i + 1, NPUCount: g, Speed: k, Memory: m}
	}

	mUsers, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	users := make([]catalog.UserSpec, mUsers)
	for j := 0; j < mUsers; j++ {
		s, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		e, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		cnt, err := ts.nextInt()
		if err != nil {
			return nil, err
		}
		users[j] = catalog.UserSpec{ID: j + 1, S: s, E: e, CountInitial: cnt}
	}

	latency := make([][]int, n)
	for i := 0; i < n; i++ {
		latency[i] = make([]int, mUsers)
		for j := 0; j < mUsers; j++ {
			v, err := ts.nextInt()
			if err != nil {
				return nil, err
			}
			latency[i][j] = v
		}
	}

	a, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	b, err := ts.nextInt()
	if err != nil {
		return nil, err
	}
	for j := range users {
		users[j].A = a
		users[j].B = b
	}

	return catalog.New(servers, users, latency)
}
