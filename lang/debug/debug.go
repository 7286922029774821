// Package debug implements nrk's bytecode disassembler, gated behind the
// VM's debug-trace flag (see lang/machine). It is a read-only view over a
// lang/chunk.Chunk, used to print each instruction before it executes.
package debug

import (
	"fmt"
	"io"

	"github.com/mna/nrk/lang/chunk"
	"github.com/mna/nrk/lang/opcode"
)

// Chunk writes a full disassembly of c to w under the given name heading.
func Chunk(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction writes one disassembled instruction at offset and returns the
// offset of the instruction following it.
func Instruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	line := c.GetLine(offset)
	if offset > 0 && c.GetLine(offset-1) == line {
		fmt.Fprint(w, "         | ")
	} else {
		fmt.Fprintf(w, "line: %4d ", line)
	}

	op := opcode.Opcode(c.Code[offset])
	switch op {
	case opcode.CONSTANT, opcode.GET_GLOBAL, opcode.SET_GLOBAL, opcode.DEFINE_GLOBAL:
		return constantInstruction(w, op, c, offset)
	case opcode.CONSTANT_LONG, opcode.GET_GLOBAL_LONG, opcode.SET_GLOBAL_LONG, opcode.DEFINE_GLOBAL_LONG:
		return constantLongInstruction(w, op, c, offset)
	case opcode.GET_LOCAL, opcode.SET_LOCAL:
		return byteInstruction(w, op, c, offset)
	case opcode.JUMP, opcode.JUMP_IF_FALSE:
		return jumpInstruction(w, op, c, offset, 1)
	default:
		return simpleInstruction(w, op, offset)
	}
}

func simpleInstruction(w io.Writer, op opcode.Opcode, offset int) int {
	fmt.Fprintln(w, op)
	return offset + 1
}

func constantInstruction(w io.Writer, op opcode.Opcode, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
	return offset + 2
}

func constantLongInstruction(w io.Writer, op opcode.Opcode, c *chunk.Chunk, offset int) int {
	idx := int(c.Code[offset+1])<<16 | int(c.Code[offset+2])<<8 | int(c.Code[offset+3])
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
	return offset + 4
}

func byteInstruction(w io.Writer, op opcode.Opcode, c *chunk.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op opcode.Opcode, c *chunk.Chunk, offset, sign int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}
