// Package scanner implements the lazy, pull-driven lexer for nrk source
// text: an Init/Scan pair driven by byte offsets, reporting errors as
// ILLEGAL tokens, working over raw bytes rather than runes since nrk source
// is treated as an uninterpreted byte stream.
package scanner

import (
	"github.com/mna/nrk/lang/token"
)

// Scanner produces tokens lazily from a source byte buffer. It allocates
// only for the message of an ILLEGAL token and can be restarted from any
// byte offset via Init.
type Scanner struct {
	src   []byte
	start int // start offset of the token currently being assembled
	curr  int // offset of the next unread byte
	line  int

	inTemplate      bool
	templateNesting int
}

// Init (re)initializes the scanner to read from src, starting at line 1.
// The source buffer must outlive any Token produced until the caller is
// done with it, since Token.Lexeme borrows into src.
func (s *Scanner) Init(src []byte) {
	s.src = src
	s.start = 0
	s.curr = 0
	s.line = 1
	s.inTemplate = false
	s.templateNesting = 0
}

func (s *Scanner) atEnd() bool { return s.curr >= len(s.src) }

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.curr]
}

func (s *Scanner) peekNext() byte {
	if s.curr+1 >= len(s.src) {
		return 0
	}
	return s.src[s.curr+1]
}

func (s *Scanner) advance() byte {
	b := s.src[s.curr]
	s.curr++
	return b
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.curr] != expected {
		return false
	}
	s.curr++
	return true
}

func (s *Scanner) makeToken(k token.Kind) token.Token {
	return token.Token{Kind: k, Lexeme: s.src[s.start:s.curr], Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: []byte(msg), Line: s.line}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch c := s.peek(); c {
		case ' ', '\t', '\r':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.atEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

// Scan returns the next token in the source. It returns an ILLEGAL token
// carrying a human-readable message on error, and Kind EOF once the source
// is exhausted (further calls keep returning EOF).
func (s *Scanner) Scan() token.Token {
	if s.inTemplate {
		// template content is raw: whitespace and "//" belong to it.
		s.start = s.curr
		return s.scanTemplate()
	}

	s.skipWhitespaceAndComments()
	s.start = s.curr

	if s.atEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(token.LPAREN)
	case ')':
		return s.makeToken(token.RPAREN)
	case '{':
		return s.makeToken(token.LBRACE)
	case '}':
		if s.templateNesting > 0 {
			s.templateNesting--
			s.inTemplate = true
			return s.makeToken(token.TEMPL_INTERP_END)
		}
		return s.makeToken(token.RBRACE)
	case ';':
		return s.makeToken(token.SEMICOLON)
	case ',':
		return s.makeToken(token.COMMA)
	case '.':
		return s.makeToken(token.DOT)
	case '-':
		if s.match('-') {
			return s.makeToken(token.MINUS_MINUS)
		}
		if s.match('=') {
			return s.makeToken(token.MINUS_EQUAL)
		}
		return s.makeToken(token.MINUS)
	case '+':
		if s.match('+') {
			return s.makeToken(token.PLUS_PLUS)
		}
		if s.match('=') {
			return s.makeToken(token.PLUS_EQUAL)
		}
		return s.makeToken(token.PLUS)
	case '/':
		if s.match('=') {
			return s.makeToken(token.SLASH_EQUAL)
		}
		return s.makeToken(token.SLASH)
	case '*':
		if s.match('=') {
			return s.makeToken(token.STAR_EQUAL)
		}
		return s.makeToken(token.STAR)
	case '!':
		if s.match('=') {
			return s.makeToken(token.BANG_EQUAL)
		}
		return s.makeToken(token.BANG)
	case '=':
		if s.match('=') {
			return s.makeToken(token.EQUAL_EQUAL)
		}
		return s.makeToken(token.EQUAL)
	case '~':
		return s.makeToken(token.TILDE)
	case '|':
		return s.makeToken(token.PIPE)
	case '&':
		return s.makeToken(token.AMP)
	case '^':
		return s.makeToken(token.CARET)
	case '<':
		if s.match('=') {
			return s.makeToken(token.LESS_EQUAL)
		}
		if s.match('<') {
			return s.makeToken(token.LESS_LESS)
		}
		return s.makeToken(token.LESS)
	case '>':
		if s.match('=') {
			return s.makeToken(token.GREATER_EQUAL)
		}
		if s.match('>') {
			return s.makeToken(token.GREATER_GREATER)
		}
		return s.makeToken(token.GREATER)
	case '"':
		return s.string()
	case '`':
		s.inTemplate = true
		return s.makeToken(token.TEMPL_START)
	}

	return s.errorToken("Unexpected character")
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.makeToken(token.Lookup(string(s.src[s.start:s.curr])))
}

// number scans [0-9]+('.' [0-9]*)? — no exponent notation.
func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.NUMBER)
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.makeToken(token.STRING)
}

// scanTemplate is called while inTemplate is set: it emits raw content as
// TEMPL_CONTENT, recognizes ${ as the start of an interpolated expression
// (leaving template mode until the matching '}' at nesting depth 0), and a
// bare backtick as TEMPL_END.
func (s *Scanner) scanTemplate() token.Token {
	for !s.atEnd() {
		switch {
		case s.peek() == '`':
			if s.curr > s.start {
				return s.makeToken(token.TEMPL_CONTENT)
			}
			s.advance()
			s.inTemplate = false
			return s.makeToken(token.TEMPL_END)

		case s.peek() == '$' && s.peekNext() == '{':
			if s.curr > s.start {
				return s.makeToken(token.TEMPL_CONTENT)
			}
			s.advance() // $
			s.advance() // {
			s.templateNesting++
			s.inTemplate = false
			return s.makeToken(token.TEMPL_INTERP_START)

		default:
			if s.peek() == '\n' {
				s.line++
			}
			s.advance()
		}
	}

	if s.curr > s.start {
		return s.makeToken(token.TEMPL_CONTENT)
	}
	s.inTemplate = false
	return s.errorToken("Unterminated template string.")
}
