// Package table implements the open-addressed hash table that backs nrk's
// string interning table, global-variable table, and constant-name table.
// Keys are interned string identities (see lang/value.String): two keys are
// the same entry iff they are the same pointer. FindString is the one
// lookup that compares hash and content instead, which lets the interner
// detect an existing string before allocating a new one.
//
// This is deliberately hand-rolled rather than built on a third-party map:
// the exact probing and tombstone behavior (capacity doubling at a 0.75
// load factor, tombstones reused by inserts but still traversed by
// lookups, live-count recomputed without tombstones on rehash) is an
// independently testable property that a black-box map implementation
// cannot expose or guarantee.
package table

import (
	"github.com/mna/nrk/lang/growth"
	"github.com/mna/nrk/lang/value"
)

const maxLoad = 0.75

// entryState distinguishes the three logical states an Entry can be in.
type entryState uint8

const (
	stateEmpty entryState = iota
	stateTombstone
	stateLive
)

// Entry is one slot of the table.
type Entry struct {
	Key   *value.String
	Value value.Value
}

func (e *Entry) state() entryState {
	switch {
	case e.Key != nil:
		return stateLive
	case e.Value.IsBool() && e.Value.AsBool():
		return stateTombstone
	default:
		return stateEmpty
	}
}

// Table is an open-addressed, linear-probing hash table keyed by interned
// string identity.
type Table struct {
	entries []Entry
	count   int // live entries + tombstones, used to trigger growth
}

// Count returns the number of live entries (not counting tombstones).
func (t *Table) Count() int {
	live := 0
	for i := range t.entries {
		if t.entries[i].state() == stateLive {
			live++
		}
	}
	return live
}

// findEntry walks the probe sequence for key starting at hash mod
// len(entries), returning the first slot whose key matches, else the first
// tombstone encountered, else the first empty slot — so inserts reuse
// tombstones while lookups still probe past them.
func findEntry(entries []Entry, key *value.String) *Entry {
	cap := len(entries)
	index := int(key.Hash) % cap
	var tombstone *Entry

	for {
		entry := &entries[index]
		switch entry.state() {
		case stateLive:
			if entry.Key == key {
				return entry
			}
		case stateTombstone:
			if tombstone == nil {
				tombstone = entry
			}
		case stateEmpty:
			if tombstone != nil {
				return tombstone
			}
			return entry
		}
		index = (index + 1) % cap
	}
}

func (t *Table) adjustCapacity(newCap int) {
	entries := make([]Entry, newCap)

	live := 0
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.state() != stateLive {
			continue // tombstones are dropped on rehash
		}
		dest := findEntry(entries, entry.Key)
		dest.Key = entry.Key
		dest.Value = entry.Value
		live++
	}

	t.entries = entries
	t.count = live
}

// Get looks up key, returning its value and true if present.
func (t *Table) Get(key *value.String) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return value.Nil, false
	}
	return entry.Value, true
}

// Set inserts or updates key -> v, growing the table first if needed.
// It returns true iff a brand-new live entry was created (as opposed to
// overwriting an existing key).
func (t *Table) Set(key *value.String, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growth.Capacity(len(t.entries)))
	}

	entry := findEntry(t.entries, key)
	isNew := entry.Key == nil
	if isNew && entry.state() == stateEmpty {
		t.count++
	}

	entry.Key = key
	entry.Value = v
	return isNew
}

// Delete removes key, leaving a tombstone so later lookups still find keys
// that were inserted after key along its probe chain. Returns false if the
// table was empty or key was absent.
func (t *Table) Delete(key *value.String) bool {
	if len(t.entries) == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}
	entry.Key = nil
	entry.Value = value.Bool(true) // tombstone sentinel, distinct from an empty slot's Nil
	return true
}

// FindString probes for a live entry whose key has the given hash, length,
// and byte content, without requiring an already-interned *value.String.
// The interner uses this to detect collisions before allocating.
func (t *Table) FindString(s string, hash uint32) *value.String {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	index := int(hash) % cap

	for {
		entry := &t.entries[index]
		switch entry.state() {
		case stateEmpty:
			return nil
		case stateLive:
			k := entry.Key
			if k.Hash == hash && k.Chars == s {
				return k
			}
		}
		index = (index + 1) % cap
	}
}
