package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStream() *Stream {
	mk := func(kind Kind, text string, line int) Token {
		return Token{Kind: kind, Text: text, Line: line, Match: NoIndex, ScopeOpener: NoIndex, ScopeCloser: NoIndex, ScopeCondition: NoIndex}
	}
	return NewStream([]Token{
		mk(Keyword, "if", 1),
		mk(Whitespace, " ", 1),
		mk(DelimiterOpen, "{", 1),
		mk(Whitespace, "\n", 1),
		mk(DelimiterClose, "}", 2),
		mk(Whitespace, " ", 2),
		mk(Comment, "// end if", 2),
	})
}

func TestStreamNavigation(t *testing.T) {
	t.Parallel()
	s := newTestStream()

	assert.Equal(t, 7, s.Len())
	for i := 0; i < s.Len(); i++ {
		tk, ok := s.At(i)
		assert.True(t, ok)
		assert.Equal(t, i, tk.Index)
	}

	_, ok := s.At(-1)
	assert.False(t, ok)
	_, ok = s.At(7)
	assert.False(t, ok)
	assert.Equal(t, "", s.Text(99))

	n, ok := s.NextSignificant(3)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	n, ok = s.NextSignificant(5)
	assert.False(t, ok)
	assert.Equal(t, NoIndex, n)

	p, ok := s.PrevSignificant(3)
	assert.True(t, ok)
	assert.Equal(t, 2, p)

	c, ok := s.FindNext(OfKind(Comment), 0, -1)
	assert.True(t, ok)
	assert.Equal(t, 6, c)

	_, ok = s.FindNext(OfKind(Comment), 0, 6)
	assert.False(t, ok)

	ws, ok := s.FindPrevious(OfKind(Whitespace), 100)
	assert.True(t, ok)
	assert.Equal(t, 5, ws)

	nw, ok := s.FindNext(Not(OfKind(Whitespace)), 5, -1)
	assert.True(t, ok)
	assert.Equal(t, 6, nw)
}

func TestStreamText(t *testing.T) {
	t.Parallel()
	s := newTestStream()

	assert.Equal(t, "if {\n} // end if", s.Source())
	assert.Equal(t, " ", s.Slice(5, 6))
	assert.Equal(t, "", s.Slice(5, 5))
	assert.Equal(t, "} // end if", s.Slice(4, 100))
}

func TestTokenHelpers(t *testing.T) {
	t.Parallel()

	kw := Token{Kind: Keyword, Text: "ElseIf"}
	assert.Equal(t, "elseif", kw.Word())
	assert.True(t, kw.Is("if", "elseif"))
	assert.False(t, kw.Is("else"))

	id := Token{Kind: Identifier, Text: "if"}
	assert.Equal(t, "", id.Word())
	assert.False(t, id.Is("if"))

	assert.True(t, Token{Kind: Comment}.IsTrivia())
	assert.True(t, Token{Kind: Whitespace}.IsTrivia())
	assert.False(t, Token{Kind: Punctuation}.IsTrivia())

	assert.Equal(t, 3, Token{Line: 3, Text: "\n"}.EndLine())
	assert.Equal(t, 5, Token{Line: 3, Text: "/*\n\n*/"}.EndLine())

	assert.Equal(t, "Comment", Comment.String())
	assert.Equal(t, "Kind(?)", Kind(200).String())
}

func TestScopeAccessorsMissing(t *testing.T) {
	t.Parallel()
	s := newTestStream()

	_, ok := s.ScopeCloser(0)
	assert.False(t, ok)
	_, ok = s.ScopeOpener(42)
	assert.False(t, ok)
	_, ok = s.ScopeCondition(0)
	assert.False(t, ok)
	assert.Empty(t, s.Conditions(0))
	assert.False(t, s.HasCondition(0, "class"))
}
