// Package opcode defines the instruction set shared by lang/compiler (which
// emits it) and lang/machine (which decodes and executes it).
package opcode

import "fmt"

// Opcode identifies a single bytecode instruction. Every opcode is one byte;
// operands, where present, follow in the instruction stream as documented
// below.
type Opcode uint8

// Stack pictures use "before -- after" notation; OP8/OP24 mark an operand
// that indexes the chunk's constant pool with an 8-bit or 24-bit (3 byte,
// big-endian) immediate. The _LONG variant of an opcode is identical except
// for the width of that operand.
const ( //nolint:revive
	CONSTANT      Opcode = iota // - CONSTANT<OP8>     v
	CONSTANT_LONG               // - CONSTANT_LONG<OP24> v

	NIL   // - NIL   nil
	TRUE  // - TRUE  true
	FALSE // - FALSE false

	POP // v POP -
	DUP // v DUP v v

	// unary
	NEGATE      // v NEGATE -v
	NOT         // v NOT !v
	BITWISE_NOT // v BITWISE_NOT ^v

	// binary arithmetic
	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE

	// binary bitwise
	BITWISE_AND
	BITWISE_OR
	BITWISE_XOR
	SHIFT_LEFT
	SHIFT_RIGHT

	// binary comparisons
	EQUAL
	NOT_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	PRINT // v PRINT -

	JUMP          //      - JUMP<OP16>          -
	JUMP_IF_FALSE // cond JUMP_IF_FALSE<OP16>   cond (leaves the condition on the stack)

	DEFINE_GLOBAL      // v DEFINE_GLOBAL<OP8>      -
	DEFINE_GLOBAL_LONG // v DEFINE_GLOBAL_LONG<OP24> -
	GET_GLOBAL         // - GET_GLOBAL<OP8>         v
	GET_GLOBAL_LONG    // - GET_GLOBAL_LONG<OP24>    v
	SET_GLOBAL         // v SET_GLOBAL<OP8>         v
	SET_GLOBAL_LONG    // v SET_GLOBAL_LONG<OP24>    v

	GET_LOCAL // - GET_LOCAL<byte slot> v
	SET_LOCAL // v SET_LOCAL<byte slot> v

	// STACK_RESET takes no operand and drops the VM stack back to empty. The
	// compiler never emits it — block scopes close by emitting one POP per
	// local going out of scope. After a runtime error the VM empties its
	// stack directly, without going through this opcode.
	STACK_RESET

	RETURN // - RETURN -

	maxOpcode
)

var names = [...]string{
	CONSTANT:           "CONSTANT",
	CONSTANT_LONG:      "CONSTANT_LONG",
	NIL:                "NIL",
	TRUE:               "TRUE",
	FALSE:              "FALSE",
	POP:                "POP",
	DUP:                "DUP",
	NEGATE:             "NEGATE",
	NOT:                "NOT",
	BITWISE_NOT:        "BITWISE_NOT",
	ADD:                "ADD",
	SUBTRACT:           "SUBTRACT",
	MULTIPLY:           "MULTIPLY",
	DIVIDE:             "DIVIDE",
	BITWISE_AND:        "BITWISE_AND",
	BITWISE_OR:         "BITWISE_OR",
	BITWISE_XOR:        "BITWISE_XOR",
	SHIFT_LEFT:         "SHIFT_LEFT",
	SHIFT_RIGHT:        "SHIFT_RIGHT",
	EQUAL:              "EQUAL",
	NOT_EQUAL:          "NOT_EQUAL",
	GREATER:            "GREATER",
	GREATER_EQUAL:      "GREATER_EQUAL",
	LESS:               "LESS",
	LESS_EQUAL:         "LESS_EQUAL",
	PRINT:              "PRINT",
	JUMP:               "JUMP",
	JUMP_IF_FALSE:      "JUMP_IF_FALSE",
	DEFINE_GLOBAL:      "DEFINE_GLOBAL",
	DEFINE_GLOBAL_LONG: "DEFINE_GLOBAL_LONG",
	GET_GLOBAL:         "GET_GLOBAL",
	GET_GLOBAL_LONG:    "GET_GLOBAL_LONG",
	SET_GLOBAL:         "SET_GLOBAL",
	SET_GLOBAL_LONG:    "SET_GLOBAL_LONG",
	GET_LOCAL:          "GET_LOCAL",
	SET_LOCAL:          "SET_LOCAL",
	STACK_RESET:        "STACK_RESET",
	RETURN:             "RETURN",
}

func (op Opcode) String() string {
	if op >= maxOpcode {
		return fmt.Sprintf("OP<%d>", uint8(op))
	}
	return names[op]
}
