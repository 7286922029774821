// Package machine implements nrk's stack-based bytecode VM: the
// decode/dispatch loop that executes a lang/chunk.Chunk produced by
// lang/compiler against a shared lang/runtime.Memory domain.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/nrk/lang/chunk"
	"github.com/mna/nrk/lang/debug"
	"github.com/mna/nrk/lang/opcode"
	"github.com/mna/nrk/lang/runtime"
	"github.com/mna/nrk/lang/value"
)

// Result classifies how an Interpret call ended.
type Result int

const (
	// ResultOK means the chunk ran to completion without error.
	ResultOK Result = iota
	// ResultCompileError means compilation failed before any bytecode ran.
	ResultCompileError
	// ResultRuntimeError means a runtime error aborted execution mid-chunk.
	ResultRuntimeError
)

// RuntimeError is returned (wrapped in the VM's Interpret outcome) when
// execution fails, carrying the source line the failing instruction maps
// to.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[Line %d] %s", e.Line, e.Message)
}

// VM is a stack machine bound to one Memory domain. A single VM can
// execute many chunks in sequence (e.g. one per REPL line), sharing
// globals and interned strings across them.
type VM struct {
	mem   *runtime.Memory
	stack []value.Value

	// Stdout is where PRINT writes; defaults to os.Stdout.
	Stdout io.Writer
	// Trace, when set, disassembles each instruction to Stdout before it
	// executes — nrk's equivalent of the original DEBUG_TRACE_EXECUTION
	// build flag, toggled at runtime instead of compile time.
	Trace bool
}

// New returns a VM sharing mem with whatever else uses it (e.g. the
// compiler that produces the chunks this VM will run).
func New(mem *runtime.Memory) *VM {
	return &VM{mem: mem, Stdout: os.Stdout}
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(dist int) value.Value {
	return vm.stack[len(vm.stack)-1-dist]
}

func (vm *VM) resetStack() { vm.stack = vm.stack[:0] }

func isFalsey(v value.Value) bool {
	switch {
	case v.IsNil():
		return true
	case v.IsBool():
		return !v.AsBool()
	case v.IsNumber():
		return v.AsNumber() == 0
	default:
		return false
	}
}

// Interpret runs c to completion or until a runtime error aborts it.
func (vm *VM) Interpret(c *chunk.Chunk) (Result, error) {
	ip := 0

	readByte := func() byte {
		b := c.Code[ip]
		ip++
		return b
	}
	readShort := func() int {
		hi, lo := c.Code[ip], c.Code[ip+1]
		ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value { return c.Constants[readByte()] }
	readConstantLong := func() value.Value {
		idx := int(readByte())<<16 | int(readByte())<<8 | int(readByte())
		return c.Constants[idx]
	}
	readString := func() *value.String { return readConstant().AsString() }
	readStringLong := func() *value.String { return readConstantLong().AsString() }

	runtimeError := func(format string, args ...any) (Result, error) {
		line := c.GetLine(ip - 1)
		err := &RuntimeError{Line: line, Message: fmt.Sprintf(format, args...)}
		vm.resetStack()
		return ResultRuntimeError, err
	}

	for {
		if vm.Trace {
			fmt.Fprint(vm.Stdout, "          [ ")
			for _, v := range vm.stack {
				fmt.Fprintf(vm.Stdout, "%s, ", v)
			}
			fmt.Fprintln(vm.Stdout, "]")
			debug.Instruction(vm.Stdout, c, ip)
		}

		op := opcode.Opcode(readByte())
		switch op {
		case opcode.RETURN:
			return ResultOK, nil

		case opcode.CONSTANT:
			vm.push(readConstant())
		case opcode.CONSTANT_LONG:
			vm.push(readConstantLong())

		case opcode.NIL:
			vm.push(value.Nil)
		case opcode.TRUE:
			vm.push(value.Bool(true))
		case opcode.FALSE:
			vm.push(value.Bool(false))

		case opcode.POP:
			vm.pop()
		case opcode.DUP:
			vm.push(vm.peek(0))

		case opcode.NEGATE:
			if !vm.peek(0).IsNumber() {
				return runtimeError("Operand must be a number")
			}
			v := vm.pop()
			vm.push(value.Number(-v.AsNumber()))
		case opcode.NOT:
			vm.push(value.Bool(isFalsey(vm.pop())))
		case opcode.BITWISE_NOT:
			if !vm.peek(0).IsNumber() {
				return runtimeError("Cannot apply bitwise not on non numbers.")
			}
			v := vm.pop()
			vm.push(value.Number(float64(^int64(v.AsNumber()))))

		case opcode.ADD:
			if vm.peek(0).IsString() && vm.peek(1).IsString() {
				vm.concatenate()
			} else if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
				b, a := vm.pop(), vm.pop()
				vm.push(value.Number(a.AsNumber() + b.AsNumber()))
			} else {
				return runtimeError("Operands must be both either strings or numbers")
			}
		case opcode.SUBTRACT:
			res, ok := vm.binaryNumberOp(func(a, b float64) float64 { return a - b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)
		case opcode.MULTIPLY:
			res, ok := vm.binaryNumberOp(func(a, b float64) float64 { return a * b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)
		case opcode.DIVIDE:
			res, ok := vm.binaryNumberOp(func(a, b float64) float64 { return a / b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)

		case opcode.BITWISE_AND:
			res, ok := vm.binaryBitwiseOp(func(a, b int64) int64 { return a & b })
			if !ok {
				return runtimeError("Bitwise operands must be numbers.")
			}
			vm.push(res)
		case opcode.BITWISE_OR:
			res, ok := vm.binaryBitwiseOp(func(a, b int64) int64 { return a | b })
			if !ok {
				return runtimeError("Bitwise operands must be numbers.")
			}
			vm.push(res)
		case opcode.BITWISE_XOR:
			res, ok := vm.binaryBitwiseOp(func(a, b int64) int64 { return a ^ b })
			if !ok {
				return runtimeError("Bitwise operands must be numbers.")
			}
			vm.push(res)
		case opcode.SHIFT_LEFT:
			res, ok := vm.binaryBitwiseOp(func(a, b int64) int64 { return a << uint(b) })
			if !ok {
				return runtimeError("Bitwise operands must be numbers.")
			}
			vm.push(res)
		case opcode.SHIFT_RIGHT:
			res, ok := vm.binaryBitwiseOp(func(a, b int64) int64 { return a >> uint(b) })
			if !ok {
				return runtimeError("Bitwise operands must be numbers.")
			}
			vm.push(res)

		case opcode.EQUAL:
			a, b := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case opcode.NOT_EQUAL:
			a, b := vm.pop(), vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))
		case opcode.GREATER:
			res, ok := vm.binaryCompareOp(func(a, b float64) bool { return a > b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)
		case opcode.GREATER_EQUAL:
			res, ok := vm.binaryCompareOp(func(a, b float64) bool { return a >= b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)
		case opcode.LESS:
			res, ok := vm.binaryCompareOp(func(a, b float64) bool { return a < b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)
		case opcode.LESS_EQUAL:
			res, ok := vm.binaryCompareOp(func(a, b float64) bool { return a <= b })
			if !ok {
				return runtimeError("Operands must be numbers.")
			}
			vm.push(res)

		case opcode.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop())

		case opcode.DEFINE_GLOBAL, opcode.DEFINE_GLOBAL_LONG:
			var name *value.String
			if op == opcode.DEFINE_GLOBAL_LONG {
				name = readStringLong()
			} else {
				name = readString()
			}
			// Const-ness was already recorded at compile time via
			// MarkGlobalConst; this only binds the runtime value.
			vm.mem.DefineGlobal(name, vm.peek(0), false)
			vm.pop()

		case opcode.GET_GLOBAL, opcode.GET_GLOBAL_LONG:
			var name *value.String
			if op == opcode.GET_GLOBAL_LONG {
				name = readStringLong()
			} else {
				name = readString()
			}
			v, ok := vm.mem.Globals().Get(name)
			if !ok {
				return runtimeError("Undefined variable %s", name.Chars)
			}
			vm.push(v)

		case opcode.SET_GLOBAL, opcode.SET_GLOBAL_LONG:
			var name *value.String
			if op == opcode.SET_GLOBAL_LONG {
				name = readStringLong()
			} else {
				name = readString()
			}
			if vm.mem.Globals().Set(name, vm.peek(0)) {
				vm.mem.Globals().Delete(name)
				return runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case opcode.GET_LOCAL:
			slot := readByte()
			vm.push(vm.stack[slot])
		case opcode.SET_LOCAL:
			slot := readByte()
			vm.stack[slot] = vm.peek(0)

		case opcode.JUMP:
			offset := readShort()
			ip += offset
		case opcode.JUMP_IF_FALSE:
			offset := readShort()
			if isFalsey(vm.peek(0)) {
				ip += offset
			}

		case opcode.STACK_RESET:
			vm.resetStack()

		default:
			return runtimeError("Unknown opcode %d", op)
		}
	}
}

func (vm *VM) binaryNumberOp(f func(a, b float64) float64) (value.Value, bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil, false
	}
	b, a := vm.pop(), vm.pop()
	return value.Number(f(a.AsNumber(), b.AsNumber())), true
}

func (vm *VM) binaryCompareOp(f func(a, b float64) bool) (value.Value, bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil, false
	}
	b, a := vm.pop(), vm.pop()
	return value.Bool(f(a.AsNumber(), b.AsNumber())), true
}

func (vm *VM) binaryBitwiseOp(f func(a, b int64) int64) (value.Value, bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil, false
	}
	b, a := int64(vm.pop().AsNumber()), int64(vm.pop().AsNumber())
	return value.Number(float64(f(a, b))), true
}

func (vm *VM) concatenate() {
	b := vm.pop().AsString()
	a := vm.pop().AsString()
	vm.push(value.Object(vm.mem.Intern(a.Chars + b.Chars)))
}
