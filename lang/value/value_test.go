package value_test

import (
	"testing"

	"github.com/mna/nrk/lang/value"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		desc string
		v    value.Value
		want bool
	}{
		{"nil", value.Nil, false},
		{"false", value.Bool(false), false},
		{"true", value.Bool(true), true},
		{"zero", value.Number(0), false},
		{"nonzero", value.Number(1), true},
		{"negative", value.Number(-1), true},
		{"empty string is truthy", value.Object(value.NewString("")), true},
		{"string", value.Object(value.NewString("x")), true},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.want, tc.v.Truthy())
		})
	}
}

func TestEqual(t *testing.T) {
	s1 := value.NewString("hi")
	s2 := value.NewString("hi") // distinct, uninterned pointer

	require.True(t, value.Equal(value.Nil, value.Nil))
	require.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	require.False(t, value.Equal(value.Bool(true), value.Bool(false)))
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.False(t, value.Equal(value.Nil, value.Bool(false)))

	nan := value.Number(nanValue())
	require.False(t, value.Equal(nan, nan), "NaN must not equal itself")

	require.True(t, value.Equal(value.Object(s1), value.Object(s1)))
	require.False(t, value.Equal(value.Object(s1), value.Object(s2)),
		"distinct (uninterned) string objects are not equal even with the same content")
}

func nanValue() float64 {
	return zero() / zero()
}

func zero() float64 { return 0 }

func TestStringRendering(t *testing.T) {
	require.Equal(t, "nil", value.Nil.String())
	require.Equal(t, "true", value.Bool(true).String())
	require.Equal(t, "false", value.Bool(false).String())
	require.Equal(t, "3", value.Number(3).String())
	require.Equal(t, "3.5", value.Number(3.5).String())
	require.Equal(t, "hi", value.Object(value.NewString("hi")).String())
}

func TestHashFNV1a(t *testing.T) {
	// FNV-1a of the empty string is always the offset basis.
	require.Equal(t, uint32(2166136261), value.HashFNV1a(""))
	// deterministic for the same content
	require.Equal(t, value.HashFNV1a("hello"), value.HashFNV1a("hello"))
	require.NotEqual(t, value.HashFNV1a("hello"), value.HashFNV1a("world"))
}
