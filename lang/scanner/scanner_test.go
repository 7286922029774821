package scanner_test

import (
	"testing"

	"github.com/mna/nrk/lang/scanner"
	"github.com/mna/nrk/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init([]byte(src))
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(t, `var a = 1 + 2 * 3; const k = "hi"; if (a != 2) print a++;`)

	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQUAL, token.NUMBER, token.PLUS, token.NUMBER,
		token.STAR, token.NUMBER, token.SEMICOLON,
		token.CONST, token.IDENT, token.EQUAL, token.STRING, token.SEMICOLON,
		token.IF, token.LPAREN, token.IDENT, token.BANG_EQUAL, token.NUMBER, token.RPAREN,
		token.PRINT, token.IDENT, token.PLUS_PLUS, token.SEMICOLON,
		token.EOF,
	}, kinds)
}

func TestScanMultiCharPunctuation(t *testing.T) {
	toks := scanAll(t, `<< >> ++ -- += -= *= /= != == <= >=`)
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.LESS_LESS, token.GREATER_GREATER, token.PLUS_PLUS, token.MINUS_MINUS,
		token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL,
		token.BANG_EQUAL, token.EQUAL_EQUAL, token.LESS_EQUAL, token.GREATER_EQUAL,
		token.EOF,
	}, kinds)
}

func TestScanNumberNoExponent(t *testing.T) {
	toks := scanAll(t, `1 1.5 1.`)
	require.Equal(t, "1", toks[0].String())
	require.Equal(t, "1.5", toks[1].String())
	require.Equal(t, "1.", toks[2].String())
}

func TestScanLineComment(t *testing.T) {
	toks := scanAll(t, "1 // a comment\n2")
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, 2, toks[1].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"abc`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Equal(t, "Unterminated string.", toks[0].String())
}

func TestScanStringAcrossNewlines(t *testing.T) {
	toks := scanAll(t, "\"a\nb\" 2")
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, 2, toks[1].Line)
}

func TestScanTemplateString(t *testing.T) {
	toks := scanAll(t, "`hi ${a} there`")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.TEMPL_START, token.TEMPL_CONTENT, token.TEMPL_INTERP_START,
		token.IDENT, token.TEMPL_INTERP_END, token.TEMPL_CONTENT, token.TEMPL_END,
		token.EOF,
	}, kinds)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll(t, `@`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Equal(t, "Unexpected character", toks[0].String())
}

func TestScanIdentifierTrie(t *testing.T) {
	toks := scanAll(t, `classy class constant const forever for`)
	require.Equal(t, []token.Kind{
		token.IDENT, token.CLASS, token.IDENT, token.CONST, token.IDENT, token.FOR, token.EOF,
	}, func() (ks []token.Kind) {
		for _, tok := range toks {
			ks = append(ks, tok.Kind)
		}
		return
	}())
}
