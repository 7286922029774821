package chunk_test

import (
	"testing"

	"github.com/mna/nrk/lang/chunk"
	"github.com/stretchr/testify/require"
)

func TestLineMapRunLengthEncoding(t *testing.T) {
	var lm chunk.LineMap
	for i := 0; i < 3; i++ {
		lm.Add(1)
	}
	for i := 0; i < 2; i++ {
		lm.Add(2)
	}
	lm.Add(5)

	require.Equal(t, 1, lm.Get(0))
	require.Equal(t, 1, lm.Get(2))
	require.Equal(t, 2, lm.Get(3))
	require.Equal(t, 2, lm.Get(4))
	require.Equal(t, 5, lm.Get(5))
	require.Equal(t, -1, lm.Get(6))
	require.Equal(t, -1, lm.Get(-1))
}
