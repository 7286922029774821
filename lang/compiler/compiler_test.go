package compiler_test

import (
	"testing"

	"github.com/mna/nrk/lang/compiler"
	"github.com/mna/nrk/lang/opcode"
	"github.com/mna/nrk/lang/runtime"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) (*testChunk, error) {
	t.Helper()
	mem := runtime.NewMemory()
	c, err := compiler.Compile([]byte(src), mem)
	return &testChunk{code: c.Code}, err
}

// testChunk gives tests a cheap way to assert on the opcode sequence
// without caring about operand bytes.
type testChunk struct {
	code []byte
}

func (tc *testChunk) opcodes() []opcode.Opcode {
	var ops []opcode.Opcode
	i := 0
	for i < len(tc.code) {
		op := opcode.Opcode(tc.code[i])
		ops = append(ops, op)
		i += operandWidth(op) + 1
	}
	return ops
}

func operandWidth(op opcode.Opcode) int {
	switch op {
	case opcode.CONSTANT, opcode.DEFINE_GLOBAL, opcode.GET_GLOBAL, opcode.SET_GLOBAL,
		opcode.GET_LOCAL, opcode.SET_LOCAL:
		return 1
	case opcode.CONSTANT_LONG, opcode.DEFINE_GLOBAL_LONG, opcode.GET_GLOBAL_LONG, opcode.SET_GLOBAL_LONG:
		return 3
	case opcode.JUMP, opcode.JUMP_IF_FALSE:
		return 2
	default:
		return 0
	}
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	tc, err := compile(t, "print 1 + 2 * 3;")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{
		opcode.CONSTANT, opcode.CONSTANT, opcode.CONSTANT, opcode.MULTIPLY,
		opcode.ADD, opcode.PRINT, opcode.RETURN,
	}, tc.opcodes())
}

func TestCompileVarDeclarationDefaultsToNil(t *testing.T) {
	tc, err := compile(t, "var a;")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{opcode.NIL, opcode.DEFINE_GLOBAL, opcode.RETURN}, tc.opcodes())
}

func TestCompileConstRequiresInitializer(t *testing.T) {
	_, err := compile(t, "const a;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Constants must have an initial value.")
}

func TestCompileConstReassignmentIsRejected(t *testing.T) {
	_, err := compile(t, "const a = 1; a = 2;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot reassign to constant variable.")
}

func TestCompileLocalConstReassignmentIsRejected(t *testing.T) {
	_, err := compile(t, "{ const a = 1; a = 2; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot reassign to constant variable.")
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	tc, err := compile(t, "if (1) print 1; else print 2;")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{
		opcode.CONSTANT, opcode.JUMP_IF_FALSE, opcode.POP,
		opcode.CONSTANT, opcode.PRINT, opcode.JUMP, opcode.POP,
		opcode.CONSTANT, opcode.PRINT, opcode.RETURN,
	}, tc.opcodes())
}

func TestCompilePostfixIncrementOnGlobal(t *testing.T) {
	tc, err := compile(t, "var a = 1; a++;")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{
		opcode.CONSTANT, opcode.DEFINE_GLOBAL,
		opcode.GET_GLOBAL, opcode.DUP, opcode.CONSTANT, opcode.ADD, opcode.SET_GLOBAL, opcode.POP,
		opcode.POP, opcode.RETURN,
	}, tc.opcodes())
}

func TestCompileBlockScopingPopsLocalsOnExit(t *testing.T) {
	tc, err := compile(t, "{ var a = 1; var b = 2; }")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{
		opcode.CONSTANT, opcode.CONSTANT, opcode.POP, opcode.POP, opcode.RETURN,
	}, tc.opcodes())
}

func TestCompileShadowingInNestedScopeIsAllowed(t *testing.T) {
	_, err := compile(t, "{ var a = 1; { var a = 2; } }")
	require.NoError(t, err)
}

func TestCompileRedeclarationInSameScopeIsError(t *testing.T) {
	_, err := compile(t, "{ var a = 1; var a = 2; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestCompileTemplateStringIsRejected(t *testing.T) {
	_, err := compile(t, "print `hi ${1}`;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Template strings are not supported.")
}

func TestCompileCompoundAssignmentDesugars(t *testing.T) {
	tc, err := compile(t, "var a = 1; a += 2;")
	require.NoError(t, err)
	require.Equal(t, []opcode.Opcode{
		opcode.CONSTANT, opcode.DEFINE_GLOBAL,
		opcode.GET_GLOBAL, opcode.CONSTANT, opcode.ADD, opcode.SET_GLOBAL, opcode.POP,
		opcode.RETURN,
	}, tc.opcodes())
}

func TestCompileBitwiseOperators(t *testing.T) {
	tc, err := compile(t, "print 1 & 2 | 3 ^ 4 << 1 >> 1;")
	require.NoError(t, err)
	ops := tc.opcodes()
	require.Contains(t, ops, opcode.BITWISE_AND)
	require.Contains(t, ops, opcode.BITWISE_OR)
	require.Contains(t, ops, opcode.BITWISE_XOR)
	require.Contains(t, ops, opcode.SHIFT_LEFT)
	require.Contains(t, ops, opcode.SHIFT_RIGHT)
}

func TestCompileUnexpectedCharacterReportsError(t *testing.T) {
	_, err := compile(t, "var a = @;")
	require.Error(t, err)
}
