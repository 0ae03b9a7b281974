package token

import "strings"

// Predicate selects tokens during a search.
type Predicate func(Token) bool

// OfKind matches tokens of any of the given kinds.
func OfKind(kinds ...Kind) Predicate {
	return func(t Token) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(t Token) bool { return !p(t) }
}

// Significant matches every token that is neither whitespace nor a comment.
func Significant(t Token) bool { return !t.IsTrivia() }

// Stream is an immutable, indexed token sequence.
type Stream struct {
	tokens []Token
}

// NewStream wraps tokens. Index fields are rewritten to match slice
// positions; the caller must not retain the slice.
func NewStream(tokens []Token) *Stream {
	for i := range tokens {
		tokens[i].Index = i
	}
	return &Stream{tokens: tokens}
}

func (s *Stream) Len() int { return len(s.tokens) }

// At returns the token at i. Out-of-range indices yield ok=false.
func (s *Stream) At(i int) (Token, bool) {
	if i < 0 || i >= len(s.tokens) {
		return Token{Match: NoIndex, ScopeOpener: NoIndex, ScopeCloser: NoIndex, ScopeCondition: NoIndex}, false
	}
	return s.tokens[i], true
}

// Text returns the literal text of token i, or "" when out of range.
func (s *Stream) Text(i int) string {
	t, _ := s.At(i)
	return t.Text
}

// ScopeOpener returns the opening brace of the scope token i belongs to.
func (s *Stream) ScopeOpener(i int) (int, bool) {
	t, ok := s.At(i)
	return t.ScopeOpener, ok && t.ScopeOpener != NoIndex
}

// ScopeCloser returns the closing brace of the scope token i belongs to.
func (s *Stream) ScopeCloser(i int) (int, bool) {
	t, ok := s.At(i)
	return t.ScopeCloser, ok && t.ScopeCloser != NoIndex
}

// ScopeCondition returns the keyword that owns the scope token i belongs to.
func (s *Stream) ScopeCondition(i int) (int, bool) {
	t, ok := s.At(i)
	return t.ScopeCondition, ok && t.ScopeCondition != NoIndex
}

// Conditions returns the enclosing scope keywords of token i, outermost first.
func (s *Stream) Conditions(i int) []int {
	t, _ := s.At(i)
	return t.Conditions
}

// HasCondition reports whether token i is nested inside a scope owned by
// one of the given keywords.
func (s *Stream) HasCondition(i int, words ...string) bool {
	for _, c := range s.Conditions(i) {
		if s.tokens[c].Is(words...) {
			return true
		}
	}
	return false
}

// FindNext returns the first index in [from, to) matching p. A negative to
// searches to the end of the stream.
func (s *Stream) FindNext(p Predicate, from, to int) (int, bool) {
	if from < 0 {
		from = 0
	}
	if to < 0 || to > len(s.tokens) {
		to = len(s.tokens)
	}
	for i := from; i < to; i++ {
		if p(s.tokens[i]) {
			return i, true
		}
	}
	return NoIndex, false
}

// FindPrevious returns the last index at or before from matching p.
func (s *Stream) FindPrevious(p Predicate, from int) (int, bool) {
	if from >= len(s.tokens) {
		from = len(s.tokens) - 1
	}
	for i := from; i >= 0; i-- {
		if p(s.tokens[i]) {
			return i, true
		}
	}
	return NoIndex, false
}

// NextSignificant skips trivia starting at from.
func (s *Stream) NextSignificant(from int) (int, bool) {
	return s.FindNext(Significant, from, -1)
}

// PrevSignificant skips trivia backwards starting at from.
func (s *Stream) PrevSignificant(from int) (int, bool) {
	return s.FindPrevious(Significant, from)
}

// Slice concatenates the text of tokens in [from, to).
func (s *Stream) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(s.tokens) {
		to = len(s.tokens)
	}
	var b strings.Builder
	for i := from; i < to; i++ {
		b.WriteString(s.tokens[i].Text)
	}
	return b.String()
}

// Source reassembles the full source text.
func (s *Stream) Source() string {
	return s.Slice(0, len(s.tokens))
}
