// Package compiler implements nrk's single-pass compiler: a Pratt parser
// that emits bytecode directly into a lang/chunk.Chunk as it recognizes
// each expression and statement, with no intermediate AST.
package compiler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mna/nrk/lang/chunk"
	"github.com/mna/nrk/lang/opcode"
	"github.com/mna/nrk/lang/runtime"
	"github.com/mna/nrk/lang/scanner"
	"github.com/mna/nrk/lang/token"
	"github.com/mna/nrk/lang/value"
)

// maxLocals bounds the number of local variables live at once, since a
// local's stack slot is addressed by a single byte operand.
const maxLocals = 256

// CompileError describes one error encountered while compiling, with the
// source line it was reported against.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

// local tracks one declared-but-possibly-not-yet-initialized block-scoped
// variable and the scope depth it was declared at; its stack slot is its
// index in compiler.locals.
type local struct {
	name    string
	depth   int // -1 while being initialized, to reject `var a = a;`
	isConst bool
}

// compiler holds all parse state for one Compile call. It is not reentrant
// and not meant to be reused across calls.
type compiler struct {
	scan scanner.Scanner
	mem  *runtime.Memory
	cnk  *chunk.Chunk

	prev, curr token.Token

	hadError  bool
	panicMode bool
	errs      *multierror.Error

	locals     []local
	scopeDepth int
}

// Compile compiles source into a chunk using mem for string interning and
// global/const bookkeeping. mem is expected to persist across calls from
// the same VM instance (e.g. one REPL session), so that globals and consts
// defined by an earlier call remain visible and enforced.
//
// On a compile error, Compile still returns a (possibly partial, unusable)
// chunk alongside a non-nil error aggregating every diagnostic collected
// during the parse.
func Compile(source []byte, mem *runtime.Memory) (*chunk.Chunk, error) {
	c := &compiler{mem: mem, cnk: &chunk.Chunk{}}
	c.scan.Init(source)

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")
	c.emitByte(byte(opcode.RETURN))

	if c.hadError {
		return c.cnk, c.errs.ErrorOrNil()
	}
	return c.cnk, nil
}

func (c *compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var where string
	switch tok.Kind {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
		// the message already came from the scanner
	default:
		where = fmt.Sprintf(" at '%s'", tok.String())
	}
	c.errs = multierror.Append(c.errs, &CompileError{Line: tok.Line, Message: "Error" + where + ": " + message})
}

func (c *compiler) error(message string)          { c.errorAt(c.prev, message) }
func (c *compiler) errorAtCurrent(message string) { c.errorAt(c.curr, message) }

func (c *compiler) advance() {
	c.prev = c.curr
	for {
		c.curr = c.scan.Scan()
		if c.curr.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.curr.String())
	}
}

func (c *compiler) consume(kind token.Kind, message string) {
	if c.curr.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *compiler) check(kind token.Kind) bool { return c.curr.Kind == kind }

func (c *compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *compiler) emitByte(b byte) {
	c.cnk.WriteByte(b, c.prev.Line)
}

func (c *compiler) emitBytes(bs ...byte) {
	for _, b := range bs {
		c.emitByte(b)
	}
}

// emitJump emits a jump instruction with a placeholder 16-bit operand and
// returns the offset of that operand, to be fixed up later by patchJump.
func (c *compiler) emitJump(op opcode.Opcode) int {
	c.emitByte(byte(op))
	c.emitBytes(0xff, 0xff)
	return len(c.cnk.Code) - 2
}

func (c *compiler) patchJump(offset int) {
	jump := len(c.cnk.Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
	}
	c.cnk.Code[offset] = byte(jump >> 8)
	c.cnk.Code[offset+1] = byte(jump)
}

// makeConstant adds v to the chunk's constant pool and returns its index
// plus whether it requires the _LONG operand encoding.
func (c *compiler) makeConstant(v value.Value) (idx int, isLong bool) {
	idx = c.cnk.AddConstant(v)
	if idx > 0x00fffffe {
		c.error("Too many constants in one chunk.")
		return 0, false
	}
	return idx, chunk.NeedsLongConstant(idx)
}

// emitConstantIndex emits shortOp with an 8-bit operand or longOp with a
// 24-bit big-endian operand, matching whichever width idx needs.
func (c *compiler) emitConstantIndex(idx int, isLong bool, shortOp, longOp opcode.Opcode) {
	if isLong {
		c.emitBytes(byte(longOp), byte(idx>>16), byte(idx>>8), byte(idx))
		return
	}
	c.emitBytes(byte(shortOp), byte(idx))
}

func (c *compiler) emitConstant(v value.Value) {
	idx, isLong := c.makeConstant(v)
	c.emitConstantIndex(idx, isLong, opcode.CONSTANT, opcode.CONSTANT_LONG)
}

func (c *compiler) identifierConstant(name string) (idx int, isLong bool) {
	return c.makeConstant(value.Object(c.mem.Intern(name)))
}

// synchronize discards tokens until it reaches a plausible statement
// boundary, so one error doesn't cascade into a wall of spurious ones.
func (c *compiler) synchronize() {
	c.panicMode = false

	for !c.check(token.EOF) {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.curr.Kind {
		case token.CLASS, token.FUN, token.VAR, token.CONST, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration(false)
	case c.match(token.CONST):
		c.varDeclaration(true)
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitByte(byte(opcode.PRINT))
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitByte(byte(opcode.POP))
}

func (c *compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' at the end of condition.")

	thenJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitByte(byte(opcode.POP))
	c.statement()

	elseJump := c.emitJump(opcode.JUMP)
	c.patchJump(thenJump)
	c.emitByte(byte(opcode.POP))

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *compiler) beginScope() { c.scopeDepth++ }

func (c *compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitByte(byte(opcode.POP))
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *compiler) varDeclaration(isConst bool) {
	idx, isLong, isLocal := c.parseVariable("Expect variable name.", isConst)

	switch {
	case c.match(token.EQUAL):
		c.expression()
	case isConst:
		c.error("Constants must have an initial value.")
	default:
		c.emitByte(byte(opcode.NIL))
	}

	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(idx, isLong, isLocal, isConst)
}

// parseVariable consumes the variable name, declares it (as a local if
// inside a block), and for globals returns the constant-pool index of its
// interned name. isLocal tells defineVariable which path to take.
func (c *compiler) parseVariable(message string, isConst bool) (idx int, isLong, isLocal bool) {
	c.consume(token.IDENT, message)
	name := c.prev.String()

	if c.scopeDepth > 0 {
		c.declareLocal(name, isConst)
		return 0, false, true
	}

	idx, isLong = c.identifierConstant(name)
	return idx, isLong, false
}

func (c *compiler) declareLocal(name string, isConst bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name, isConst)
}

func (c *compiler) addLocal(name string, isConst bool) {
	if len(c.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1, isConst: isConst})
}

func (c *compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// defineVariable emits the code that makes a just-initialized variable
// available: nothing for locals (the value is already sitting in its stack
// slot), or a DEFINE_GLOBAL(_LONG) for globals, additionally recording its
// const-ness in Memory so later assignments can be rejected.
func (c *compiler) defineVariable(idx int, isLong, isLocalVar, isConst bool) {
	if isLocalVar {
		c.markInitialized()
		return
	}

	c.emitConstantIndex(idx, isLong, opcode.DEFINE_GLOBAL, opcode.DEFINE_GLOBAL_LONG)

	if isConst {
		name := c.cnk.Constants[idx].AsString()
		c.mem.MarkGlobalConst(name)
	}
}

// resolveLocal looks up name among the locals currently in scope, walking
// from the innermost outward so shadowing resolves to the nearest
// declaration. It returns -1 if name is not a local (i.e. it's global).
func (c *compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.error("Can't read variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}
