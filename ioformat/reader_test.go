package ioformat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_FullGrammar(t *testing.T) {
	input := `2
1 2 1000
1 3 1000
2
0 100 10
0 100 10
5 6
7 8
1 0
2 0
`
	cat, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, cat.NumUsers())
	assert.Equal(t, 1, cat.Servers[0].NPUCount)
	assert.Equal(t, 2, cat.Servers[0].Speed)
	assert.Equal(t, 1, cat.Servers[0].Memory)
	assert.Equal(t, 5, cat.Latency[0][0])
	assert.Equal(t, 1, cat.Users[0].A)
	assert.Equal(t, 0, cat.Users[0].B)
	assert.Equal(t, 2, cat.Users[1].A)
}

func TestRead_LegacyGlobalPairAutoDetected(t *testing.T) {
	input := `1
1 2 1000
2
0 100 10
0 100 20
5 6
1 0
`
	cat, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, cat.NumUsers())
	assert.Equal(t, 1, cat.Users[0].A)
	assert.Equal(t, 0, cat.Users[0].B)
	assert.Equal(t, 1, cat.Users[1].A)
	assert.Equal(t, 0, cat.Users[1].B)
}

func TestRead_SingleUserIsUnambiguous(t *testing.T) {
	input := `1
1 2 1000
1
0 100 10
5
3 4
`
	cat, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, cat.NumUsers())
	assert.Equal(t, 3, cat.Users[0].A)
	assert.Equal(t, 4, cat.Users[0].B)
}

func TestRead_NegativeServerCountRejected(t *testing.T) {
	_, err := Read(strings.NewReader("-1\n"))
	assert.Error(t, err)
}

func TestRead_MalformedTokenRejected(t *testing.T) {
	_, err := Read(strings.NewReader("abc\n"))
	assert.Error(t, err)
}

func TestRead_TruncatedStreamRejected(t *testing.T) {
	_, err := Read(strings.NewReader("2\n1 2 1000\n"))
	assert.Error(t, err)
}

func TestRead_InvalidUserWindowRejected(t *testing.T) {
	input := `1
1 2 1000
1
100 50 10
5
1 0
`
	_, err := Read(strings.NewReader(input))
	assert.Error(t, err)
}

func TestRead_MismatchedCoefficientCountRejected(t *testing.T) {
	input := `1
1 2 1000
3
0 100 10
0 100 10
0 100 10
5 6 7
1 0
2 0
`
	_, err := Read(strings.NewReader(input))
	assert.Error(t, err)
}

func TestReadLegacy_AlwaysTreatsTrailingPairAsGlobal(t *testing.T) {
	input := `1
1 2 1000
2
0 100 10
0 100 20
5 6
7 8
`
	cat, err := ReadLegacy(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 7, cat.Users[0].A)
	assert.Equal(t, 8, cat.Users[0].B)
	assert.Equal(t, 7, cat.Users[1].A)
	assert.Equal(t, 8, cat.Users[1].B)
}
