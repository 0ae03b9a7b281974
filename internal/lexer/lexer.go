// Package lexer tokenizes PHP source into a token.Stream annotated with
// bracket and scope pairing.
//
// Source without any "<?" tag is lexed as PHP code from the first byte so
// that fragments can be linted directly. Lexing never fails: unterminated
// strings and comments run to the end of the input.
package lexer

import (
	"strings"

	"github.com/gnoverse/endlint/internal/token"
)

type lexer struct {
	src    string
	off    int
	line   int
	col    int
	inPHP  bool
	tokens []token.Token
}

// Tokenize lexes src and links brackets, scope keywords and conditions.
func Tokenize(src []byte) *token.Stream {
	s := string(src)
	lx := &lexer{
		src:   s,
		line:  1,
		col:   1,
		inPHP: !strings.Contains(s, "<?"),
	}
	for lx.off < len(lx.src) {
		if lx.inPHP {
			lx.scanPHP()
		} else {
			lx.scanHTML()
		}
	}
	tokens := lx.tokens
	classifyKeywords(tokens)
	pair(tokens)
	return token.NewStream(tokens)
}

func (lx *lexer) emit(kind token.Kind, end int) {
	text := lx.src[lx.off:end]
	lx.tokens = append(lx.tokens, token.Token{
		Kind:           kind,
		Text:           text,
		Line:           lx.line,
		Column:         lx.col,
		Offset:         lx.off,
		Match:          token.NoIndex,
		ScopeOpener:    token.NoIndex,
		ScopeCloser:    token.NoIndex,
		ScopeCondition: token.NoIndex,
	})
	if n := strings.Count(text, "\n"); n > 0 {
		lx.line += n
		lx.col = len(text) - strings.LastIndexByte(text, '\n')
	} else {
		lx.col += len(text)
	}
	lx.off = end
}

func (lx *lexer) scanHTML() {
	rest := lx.src[lx.off:]
	i := strings.Index(rest, "<?")
	if i < 0 {
		lx.emit(token.InlineHTML, len(lx.src))
		return
	}
	if i > 0 {
		lx.emit(token.InlineHTML, lx.off+i)
		return
	}
	n := 2
	switch {
	case len(rest) >= 5 && strings.EqualFold(rest[:5], "<?php"):
		n = 5
	case strings.HasPrefix(rest, "<?="):
		n = 3
	}
	lx.emit(token.OpenTag, lx.off+n)
	lx.inPHP = true
}

func (lx *lexer) scanPHP() {
	rest := lx.src[lx.off:]
	c := rest[0]
	switch {
	case strings.HasPrefix(rest, "?>"):
		lx.emit(token.CloseTag, lx.off+2)
		lx.inPHP = false
	case isSpace(c):
		lx.emit(token.Whitespace, lx.off+whitespaceLen(rest))
	case strings.HasPrefix(rest, "#["):
		lx.emit(token.DelimiterOpen, lx.off+2)
	case c == '#' || strings.HasPrefix(rest, "//"):
		lx.emit(token.Comment, lx.off+lineCommentLen(rest))
	case strings.HasPrefix(rest, "/*"):
		end := strings.Index(rest[2:], "*/")
		if end < 0 {
			lx.emit(token.Comment, len(lx.src))
			return
		}
		lx.emit(token.Comment, lx.off+end+4)
	case c == '$' && len(rest) > 1 && isIdentStart(rest[1]):
		lx.emit(token.Variable, lx.off+1+identLen(rest[1:]))
	case isIdentStart(c):
		lx.emit(token.Identifier, lx.off+identLen(rest))
	case isDigit(c) || (c == '.' && len(rest) > 1 && isDigit(rest[1])):
		lx.emit(token.Number, lx.off+numberLen(rest))
	case c == '\'' || c == '"' || c == '`':
		lx.emit(token.String, lx.off+quotedLen(rest, c))
	case strings.HasPrefix(rest, "<<<"):
		if n := heredocLen(rest); n > 0 {
			lx.emit(token.String, lx.off+n)
			return
		}
		lx.emit(token.Punctuation, lx.off+1)
	case c == '{' || c == '(' || c == '[':
		lx.emit(token.DelimiterOpen, lx.off+1)
	case c == '}' || c == ')' || c == ']':
		lx.emit(token.DelimiterClose, lx.off+1)
	case strings.HasPrefix(rest, "?->"):
		lx.emit(token.Punctuation, lx.off+3)
	case strings.HasPrefix(rest, "->"), strings.HasPrefix(rest, "::"), strings.HasPrefix(rest, "=>"):
		lx.emit(token.Punctuation, lx.off+2)
	default:
		lx.emit(token.Punctuation, lx.off+1)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }

// whitespaceLen returns the length of the leading whitespace run. A run
// stops after its first newline so that each whitespace token spans at most
// one line break.
func whitespaceLen(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
		if s[i-1] == '\n' {
			break
		}
	}
	return i
}

// lineCommentLen stops before the newline or a closing tag.
func lineCommentLen(s string) int {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\n':
			if i > 0 && s[i-1] == '\r' {
				return i - 1
			}
			return i
		case s[i] == '?' && i+1 < len(s) && s[i+1] == '>':
			return i
		}
	}
	return len(s)
}

func identLen(s string) int {
	i := 0
	for i < len(s) && isIdentContinue(s[i]) {
		i++
	}
	return i
}

func numberLen(s string) int {
	i := 0
	for i < len(s) && (isIdentContinue(s[i]) || s[i] == '.') {
		i++
	}
	return i
}

func quotedLen(s string, quote byte) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(s)
}

// heredocLen measures a heredoc or nowdoc literal, returning 0 when s does
// not start a well-formed header.
func heredocLen(s string) int {
	i := 3
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	var quote byte
	if i < len(s) && (s[i] == '\'' || s[i] == '"') {
		quote = s[i]
		i++
	}
	n := identLen(s[i:])
	if n == 0 {
		return 0
	}
	label := s[i : i+n]
	i += n
	if quote != 0 {
		if i >= len(s) || s[i] != quote {
			return 0
		}
		i++
	}
	nl := strings.IndexByte(s[i:], '\n')
	if nl < 0 {
		return 0
	}
	i += nl + 1
	for i < len(s) {
		lineEnd := strings.IndexByte(s[i:], '\n')
		line := s[i:]
		if lineEnd >= 0 {
			line = s[i : i+lineEnd]
		}
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, label) {
			after := trimmed[len(label):]
			if after == "" || !isIdentContinue(after[0]) {
				return i + (len(line) - len(trimmed)) + len(label)
			}
		}
		if lineEnd < 0 {
			break
		}
		i += lineEnd + 1
	}
	return len(s)
}
