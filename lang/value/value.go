// Package value implements nrk's tagged value representation: the sum type
// shared by the compiler's constant pool and the VM's stack, and the
// interned string object that backs it.
//
// The original C implementation simulates an Object base "class" via common
// struct-prefix punning; here that collapses into a single Object kind enum
// inspected at the handful of sites that care (printing, equality), which
// is the idiomatic Go rendering of a tagged sum.
package value

import "fmt"

// Kind identifies which alternative of the Value sum is populated.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is nrk's dynamically-typed runtime value: nil, a bool, an IEEE-754
// double, or a heap object (currently only interned strings).
type Value struct {
	kind Kind
	num  float64
	obj  *String
}

// Nil is the singular nil value.
var Nil = Value{kind: KindNil}

// Bool returns a Value wrapping b.
func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Number returns a Value wrapping the float64 n.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Object returns a Value wrapping the interned string s.
func Object(s *String) Value {
	return Value{kind: KindObject, obj: s}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindObject }

// AsBool returns the boolean payload. The caller must have checked IsBool.
func (v Value) AsBool() bool { return v.num != 0 }

// AsNumber returns the float64 payload. The caller must have checked
// IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the interned string object. The caller must have
// checked IsString.
func (v Value) AsString() *String { return v.obj }

// Truthy implements nrk's truthiness rule: nil, false, and numeric 0 are
// falsey; everything else — including the empty string — is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.AsBool()
	case KindNumber:
		return v.num != 0
	default:
		return true
	}
}

// Equal implements value equality: same tag, then nil-always-equal,
// bool-bitwise, number-== (so NaN != NaN, as on the host), or
// object-by-interned-identity for strings.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	case KindNumber:
		return a.num == b.num
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way PRINT does: nil -> "nil", bools -> "true"/"false",
// numbers in %g form, strings verbatim.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindObject:
		return v.obj.Chars
	default:
		return "<invalid value>"
	}
}
