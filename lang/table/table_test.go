package table_test

import (
	"fmt"
	"testing"

	"github.com/mna/nrk/lang/table"
	"github.com/mna/nrk/lang/value"
	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	var tbl table.Table
	a := value.NewString("a")
	b := value.NewString("b")

	require.True(t, tbl.Set(a, value.Number(1)))
	require.True(t, tbl.Set(b, value.Number(2)))
	require.False(t, tbl.Set(a, value.Number(3)), "re-setting an existing key is not a new entry")

	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, value.Number(3), v)

	v, ok = tbl.Get(b)
	require.True(t, ok)
	require.Equal(t, value.Number(2), v)

	_, ok = tbl.Get(value.NewString("missing"))
	require.False(t, ok)
}

func TestDeleteLeavesTombstoneRespectedByProbing(t *testing.T) {
	var tbl table.Table
	keys := make([]*value.String, 0, 16)
	for i := 0; i < 16; i++ {
		k := value.NewString(fmt.Sprintf("key%d", i))
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}

	require.True(t, tbl.Delete(keys[3]))
	_, ok := tbl.Get(keys[3])
	require.False(t, ok)

	// every other key, including ones that may have probed past the
	// deleted slot, must still resolve correctly.
	for i, k := range keys {
		if i == 3 {
			continue
		}
		v, ok := tbl.Get(k)
		require.True(t, ok, "key%d should still be found after an unrelated delete", i)
		require.Equal(t, value.Number(float64(i)), v)
	}

	require.False(t, tbl.Delete(keys[3]), "deleting an already-deleted key reports false")
}

func TestRehashDropsTombstonesKeepsLiveEntries(t *testing.T) {
	var tbl table.Table
	const n = 20
	keys := make([]*value.String, 0, n)
	for i := 0; i < n; i++ {
		k := value.NewString(fmt.Sprintf("k%d", i))
		keys = append(keys, k)
		tbl.Set(k, value.Number(float64(i)))
	}

	// delete half of them, leaving tombstones, then force growth by
	// inserting enough new keys to cross the load factor again.
	for i := 0; i < n; i += 2 {
		require.True(t, tbl.Delete(keys[i]))
	}
	before := tbl.Count()

	for i := 0; i < 10; i++ {
		tbl.Set(value.NewString(fmt.Sprintf("new%d", i)), value.Number(float64(100+i)))
	}

	require.Equal(t, before+10, tbl.Count(), "live count after rehash must only reflect live entries")

	for i := 1; i < n; i += 2 {
		v, ok := tbl.Get(keys[i])
		require.True(t, ok)
		require.Equal(t, value.Number(float64(i)), v)
	}
	for i := 0; i < n; i += 2 {
		_, ok := tbl.Get(keys[i])
		require.False(t, ok, "deleted key must not reappear after rehash")
	}
}

func TestFindStringMatchesInternedIdentity(t *testing.T) {
	var tbl table.Table
	s := value.NewString("hello")
	tbl.Set(s, value.Bool(true))

	found := tbl.FindString("hello", value.HashFNV1a("hello"))
	require.Same(t, s, found)

	require.Nil(t, tbl.FindString("nope", value.HashFNV1a("nope")))
}

func TestEmptyTableGetDelete(t *testing.T) {
	var tbl table.Table
	_, ok := tbl.Get(value.NewString("x"))
	require.False(t, ok)
	require.False(t, tbl.Delete(value.NewString("x")))
	require.Nil(t, tbl.FindString("x", value.HashFNV1a("x")))
}
