package compiler

import (
	"strconv"

	"github.com/mna/nrk/lang/opcode"
	"github.com/mna/nrk/lang/token"
	"github.com/mna/nrk/lang/value"
)

// precedence orders binding strength from loosest to tightest, the same
// ladder a Pratt parser climbs to decide how far an infix operator may
// consume into the expression to its right.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =, +=, -=, *=, /=
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + - & | ^ << >>
	precFactor                // * /
	precUnary                 // ! - ~
	precPrimary
)

type (
	prefixFn  func(c *compiler, canAssign bool)
	infixFn   func(c *compiler, canAssign bool)
	postfixFn func(c *compiler, canAssign bool)
)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	postfix    postfixFn
	precedence precedence
}

// rules is keyed by token.Kind; a missing entry has no prefix/infix/postfix
// handler and precNone, which parsePrecedence treats as "not part of an
// expression" — getRule returns the zero value for any kind absent here.
var rules = buildRules()

func buildRules() map[token.Kind]parseRule {
	r := make(map[token.Kind]parseRule)

	r[token.LPAREN] = parseRule{prefix: grouping}
	r[token.MINUS] = parseRule{prefix: unary, infix: binary, precedence: precTerm}
	r[token.PLUS] = parseRule{infix: binary, precedence: precTerm}
	r[token.SLASH] = parseRule{infix: binary, precedence: precFactor}
	r[token.STAR] = parseRule{infix: binary, precedence: precFactor}
	r[token.BANG] = parseRule{prefix: unary}
	r[token.BANG_EQUAL] = parseRule{infix: binary, precedence: precEquality}
	r[token.EQUAL_EQUAL] = parseRule{infix: binary, precedence: precEquality}
	r[token.GREATER] = parseRule{infix: binary, precedence: precComparison}
	r[token.GREATER_EQUAL] = parseRule{infix: binary, precedence: precComparison}
	r[token.LESS] = parseRule{infix: binary, precedence: precComparison}
	r[token.LESS_EQUAL] = parseRule{infix: binary, precedence: precComparison}
	r[token.IDENT] = parseRule{prefix: variable}
	r[token.STRING] = parseRule{prefix: str}
	r[token.NUMBER] = parseRule{prefix: number}
	r[token.FALSE] = parseRule{prefix: literal}
	r[token.NIL] = parseRule{prefix: literal}
	r[token.TRUE] = parseRule{prefix: literal}
	r[token.PLUS_PLUS] = parseRule{postfix: postfix, precedence: precUnary}
	r[token.MINUS_MINUS] = parseRule{postfix: postfix, precedence: precUnary}
	r[token.GREATER_GREATER] = parseRule{infix: binary, precedence: precTerm}
	r[token.LESS_LESS] = parseRule{infix: binary, precedence: precTerm}
	r[token.AMP] = parseRule{infix: binary, precedence: precTerm}
	r[token.CARET] = parseRule{infix: binary, precedence: precTerm}
	r[token.PIPE] = parseRule{infix: binary, precedence: precTerm}
	r[token.TILDE] = parseRule{prefix: unary}
	r[token.TEMPL_START] = parseRule{prefix: templateString}

	return r
}

func getRule(kind token.Kind) *parseRule {
	if r, ok := rules[kind]; ok {
		return &r
	}
	return &parseRule{}
}

func (c *compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.prev.Kind)
	if rule.prefix == nil {
		c.error("Expect expression")
		return
	}

	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for {
		r := getRule(c.curr.Kind)
		if r.postfix == nil || prec > r.precedence {
			break
		}
		c.advance()
		r.postfix(c, canAssign)
	}

	for prec <= getRule(c.curr.Kind).precedence {
		c.advance()
		getRule(c.prev.Kind).infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func grouping(c *compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expressions.")
}

func unary(c *compiler, _ bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)

	switch op {
	case token.MINUS:
		c.emitByte(byte(opcode.NEGATE))
	case token.BANG:
		c.emitByte(byte(opcode.NOT))
	case token.TILDE:
		c.emitByte(byte(opcode.BITWISE_NOT))
	default:
		c.error("Unexpected unary operator")
	}
}

func binary(c *compiler, _ bool) {
	op := c.prev.Kind
	rule := getRule(op)
	c.parsePrecedence(rule.precedence + 1)

	switch op {
	case token.PLUS:
		c.emitByte(byte(opcode.ADD))
	case token.MINUS:
		c.emitByte(byte(opcode.SUBTRACT))
	case token.STAR:
		c.emitByte(byte(opcode.MULTIPLY))
	case token.SLASH:
		c.emitByte(byte(opcode.DIVIDE))
	case token.EQUAL_EQUAL:
		c.emitByte(byte(opcode.EQUAL))
	case token.BANG_EQUAL:
		c.emitByte(byte(opcode.NOT_EQUAL))
	case token.GREATER:
		c.emitByte(byte(opcode.GREATER))
	case token.GREATER_EQUAL:
		c.emitByte(byte(opcode.GREATER_EQUAL))
	case token.LESS:
		c.emitByte(byte(opcode.LESS))
	case token.LESS_EQUAL:
		c.emitByte(byte(opcode.LESS_EQUAL))
	case token.GREATER_GREATER:
		c.emitByte(byte(opcode.SHIFT_RIGHT))
	case token.LESS_LESS:
		c.emitByte(byte(opcode.SHIFT_LEFT))
	case token.AMP:
		c.emitByte(byte(opcode.BITWISE_AND))
	case token.PIPE:
		c.emitByte(byte(opcode.BITWISE_OR))
	case token.CARET:
		c.emitByte(byte(opcode.BITWISE_XOR))
	default:
		c.error("Unexpected binary operator")
	}
}

func number(c *compiler, _ bool) {
	n, err := strconv.ParseFloat(c.prev.String(), 64)
	if err != nil {
		c.error("Invalid number literal")
		return
	}
	c.emitConstant(value.Number(n))
}

func str(c *compiler, _ bool) {
	// Lexeme includes the surrounding quotes.
	lexeme := c.prev.String()
	chars := lexeme[1 : len(lexeme)-1]
	c.emitConstant(value.Object(c.mem.Intern(chars)))
}

func literal(c *compiler, _ bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitByte(byte(opcode.FALSE))
	case token.TRUE:
		c.emitByte(byte(opcode.TRUE))
	case token.NIL:
		c.emitByte(byte(opcode.NIL))
	default:
		c.error("Unexpected literal")
	}
}

// templateString is reached only as a prefix rule, i.e. an expression
// starting with a backtick. Template strings are scanned (see lang/scanner)
// but have no compiled representation: rather than guess at interpolation
// or formatting semantics, the compiler rejects them outright.
func templateString(c *compiler, _ bool) {
	c.error("Template strings are not supported.")
	// Drain the rest of the template so synchronize() has a sane place to
	// resume instead of tripping over stray TEMPL_CONTENT/INTERP tokens.
	for !c.check(token.TEMPL_END) && !c.check(token.EOF) {
		c.advance()
	}
	if c.check(token.TEMPL_END) {
		c.advance()
	}
}

func variable(c *compiler, canAssign bool) {
	namedVariable(c, c.prev.String(), canAssign)
}

func namedVariable(c *compiler, name string, canAssign bool) {
	var idx int
	var isLong bool
	var getOp, setOp, getOpLong, setOpLong opcode.Opcode

	localIdx := c.resolveLocal(name)
	isConst := false

	if localIdx == -1 {
		idx, isLong = c.identifierConstant(name)
		getOp, getOpLong = opcode.GET_GLOBAL, opcode.GET_GLOBAL_LONG
		setOp, setOpLong = opcode.SET_GLOBAL, opcode.SET_GLOBAL_LONG
		isConst = c.mem.GlobalIsConst(c.cnk.Constants[idx].AsString())
	} else {
		idx, isLong = localIdx, false
		getOp, getOpLong = opcode.GET_LOCAL, opcode.GET_LOCAL
		setOp, setOpLong = opcode.SET_LOCAL, opcode.SET_LOCAL
		isConst = c.locals[localIdx].isConst
	}

	emitGet := func() { c.emitConstantIndex(idx, isLong, getOp, getOpLong) }
	emitSet := func() { c.emitConstantIndex(idx, isLong, setOp, setOpLong) }

	compound := func(op opcode.Opcode) {
		if canAssign && isConst {
			c.error("Cannot reassign to constant variable.")
			return
		}
		emitGet()
		c.expression()
		c.emitByte(byte(op))
		emitSet()
	}

	switch {
	case canAssign && c.match(token.EQUAL):
		if isConst {
			c.error("Cannot reassign to constant variable.")
			return
		}
		c.expression()
		emitSet()
	case canAssign && c.match(token.PLUS_EQUAL):
		compound(opcode.ADD)
	case canAssign && c.match(token.MINUS_EQUAL):
		compound(opcode.SUBTRACT)
	case canAssign && c.match(token.STAR_EQUAL):
		compound(opcode.MULTIPLY)
	case canAssign && c.match(token.SLASH_EQUAL):
		compound(opcode.DIVIDE)
	default:
		emitGet()
	}
}

// postfix handles `x++`/`x--` as a peephole over the bytes the preceding
// variable() prefix rule just emitted: a GET_LOCAL/GET_GLOBAL(_LONG) whose
// operand we can read back and reuse for the SET that stores the result.
// This mirrors the original compiler's byte-stream lookback exactly,
// warts and all, rather than the cleaner "lvalue descriptor" alternative
// that would require plumbing one more return value through every prefix
// rule for a feature this narrow.
func postfix(c *compiler, _ bool) {
	code := c.cnk.Code
	if len(code) < 2 {
		c.error("Can only apply postfix operators to a variable.")
		return
	}

	lastOp := opcode.Opcode(code[len(code)-2])
	var localIdx int = -1
	var globalIdx int
	var globalIsLong bool

	switch lastOp {
	case opcode.GET_LOCAL:
		localIdx = int(code[len(code)-1])
	case opcode.GET_GLOBAL:
		globalIdx = int(code[len(code)-1])
	default:
		if len(code) >= 4 && opcode.Opcode(code[len(code)-4]) == opcode.GET_GLOBAL_LONG {
			globalIdx = int(code[len(code)-3])<<16 | int(code[len(code)-2])<<8 | int(code[len(code)-1])
			globalIsLong = true
		} else {
			c.error("Can only apply postfix operators to a variable.")
			return
		}
	}

	op := c.prev.Kind
	c.emitByte(byte(opcode.DUP))
	c.emitConstant(value.Number(1))
	switch op {
	case token.PLUS_PLUS:
		c.emitByte(byte(opcode.ADD))
	case token.MINUS_MINUS:
		c.emitByte(byte(opcode.SUBTRACT))
	default:
		c.error("Unknown postfix operator")
		return
	}

	if localIdx != -1 {
		c.emitBytes(byte(opcode.SET_LOCAL), byte(localIdx))
	} else {
		c.emitConstantIndex(globalIdx, globalIsLong, opcode.SET_GLOBAL, opcode.SET_GLOBAL_LONG)
	}
	c.emitByte(byte(opcode.POP))
}
