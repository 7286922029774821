// Package chunk is the compiler's output and the VM's input: a flat byte
// stream of opcodes and operands, a parallel constant pool, and a
// run-length-encoded line map for error reporting.
package chunk

import (
	"golang.org/x/exp/slices"

	"github.com/mna/nrk/lang/growth"
	"github.com/mna/nrk/lang/value"
)

// constantIndexThreshold is the smallest constant pool index that no longer
// fits an 8-bit operand; from it on the compiler must switch to a _LONG
// opcode with a 24-bit operand.
const constantIndexThreshold = 256

// Chunk is one compiled unit of bytecode: a script, or (in the REPL) one
// input line.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     LineMap
}

// WriteByte appends b to the code stream, recording that it belongs to the
// given source line.
func (c *Chunk) WriteByte(b byte, line int) {
	if len(c.Code) == cap(c.Code) {
		c.Code = slices.Grow(c.Code, growth.Capacity(cap(c.Code))-cap(c.Code))
	}
	c.Code = append(c.Code, b)
	c.Lines.Add(line)
}

// AddConstant appends v to the constant pool and returns its index.
func (c *Chunk) AddConstant(v value.Value) int {
	if len(c.Constants) == cap(c.Constants) {
		c.Constants = slices.Grow(c.Constants, growth.Capacity(cap(c.Constants))-cap(c.Constants))
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// NeedsLongConstant reports whether idx (a constant pool index returned by
// AddConstant) requires the _LONG, 24-bit-operand form of its opcode.
func NeedsLongConstant(idx int) bool {
	return idx >= constantIndexThreshold
}

// GetLine returns the source line of the instruction at the given bytecode
// offset.
func (c *Chunk) GetLine(offset int) int {
	return c.Lines.Get(offset)
}
