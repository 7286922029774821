package runtime_test

import (
	"testing"

	"github.com/mna/nrk/lang/runtime"
	"github.com/mna/nrk/lang/value"
	"github.com/stretchr/testify/require"
)

func TestInternReturnsSamePointerForEqualContent(t *testing.T) {
	m := runtime.NewMemory()
	a := m.Intern("hello")
	b := m.Intern("hello")
	require.Same(t, a, b)

	c := m.Intern("world")
	require.NotSame(t, a, c)
}

func TestDefineGlobalAndConstTracking(t *testing.T) {
	m := runtime.NewMemory()
	name := m.Intern("x")

	m.DefineGlobal(name, value.Number(42), false)
	v, ok := m.Globals().Get(name)
	require.True(t, ok)
	require.Equal(t, value.Number(42), v)
	require.False(t, m.GlobalIsConst(name))

	cname := m.Intern("PI")
	m.DefineGlobal(cname, value.Number(3.14), true)
	require.True(t, m.GlobalIsConst(cname))
}
