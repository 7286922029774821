// Package runtime owns the pieces of VM state that live for the whole
// process lifetime rather than for a single Run call: the string intern
// table, the global-variable table, and the set tracking which globals were
// declared const. Object lifetimes are left entirely to the Go garbage
// collector rather than tracked and freed manually.
package runtime

import (
	"github.com/mna/nrk/lang/table"
	"github.com/mna/nrk/lang/value"
)

// Memory holds the tables shared across every chunk executed by a single VM
// instance: interned strings, global variable bindings, and the names
// declared const at the global scope.
type Memory struct {
	strings   table.Table
	globals   table.Table
	constants table.Table
}

// NewMemory returns a freshly initialized Memory domain.
func NewMemory() *Memory {
	return &Memory{}
}

// Intern returns the canonical *value.String for chars, allocating and
// registering a new one only if an identical string has not already been
// interned. Two calls to Intern with equal content always return the same
// pointer, which is what lets Value equality for strings reduce to pointer
// comparison.
func (m *Memory) Intern(chars string) *value.String {
	hash := value.HashFNV1a(chars)
	if existing := m.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &value.String{Chars: chars, Hash: hash}
	m.strings.Set(s, value.Nil)
	return s
}

// Globals returns the global-variable table.
func (m *Memory) Globals() *table.Table { return &m.globals }

// DefineGlobal binds name to v in the global table, recording whether it was
// declared const so later assignments can be rejected.
func (m *Memory) DefineGlobal(name *value.String, v value.Value, isConst bool) {
	m.globals.Set(name, v)
	if isConst {
		m.constants.Set(name, value.Bool(true))
	}
}

// MarkGlobalConst records, at compile time, that name was declared with
// const — before its value even exists, since that is only produced when
// the VM later executes the DEFINE_GLOBAL instruction the compiler emits.
func (m *Memory) MarkGlobalConst(name *value.String) {
	m.constants.Set(name, value.Bool(true))
}

// GlobalIsConst reports whether name was declared with const at the global
// scope.
func (m *Memory) GlobalIsConst(name *value.String) bool {
	_, ok := m.constants.Get(name)
	return ok
}
