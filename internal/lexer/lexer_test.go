package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/endlint/internal/token"
)

type tok struct {
	kind token.Kind
	text string
}

func significant(s *token.Stream) []tok {
	var out []tok
	for i := 0; i < s.Len(); i++ {
		t, _ := s.At(i)
		if t.Kind == token.Whitespace {
			continue
		}
		out = append(out, tok{t.Kind, t.Text})
	}
	return out
}

func TestTokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	sources := []string{
		"<?php\nclass Foo {\n}\n",
		"<html><?php if ($a) { ?>x<?php } ?></html>",
		"<?php\n$s = <<<EOT\n  {not a brace}\n  EOT;\n$t = <<<'RAW'\n}\nRAW;\n",
		"<?php /* unterminated",
		"<?php echo \"a {$b} \\\" c\"; // trailing\r\n",
		"function f() { return 1; }",
		"",
	}

	for _, src := range sources {
		s := Tokenize([]byte(src))
		assert.Equal(t, src, s.Source())
	}
}

func TestTokenizeKinds(t *testing.T) {
	t.Parallel()

	s := Tokenize([]byte("<?php\n$a?->b::c => 1.5; # note\n#[Attr]\n?>tail"))
	assert.Equal(t, []tok{
		{token.OpenTag, "<?php"},
		{token.Variable, "$a"},
		{token.Punctuation, "?->"},
		{token.Identifier, "b"},
		{token.Punctuation, "::"},
		{token.Identifier, "c"},
		{token.Punctuation, "=>"},
		{token.Number, "1.5"},
		{token.Punctuation, ";"},
		{token.Comment, "# note"},
		{token.DelimiterOpen, "#["},
		{token.Identifier, "Attr"},
		{token.DelimiterClose, "]"},
		{token.CloseTag, "?>"},
		{token.InlineHTML, "tail"},
	}, significant(s))
}

func TestWhitespaceSplitsAfterNewline(t *testing.T) {
	t.Parallel()

	s := Tokenize([]byte("}\n\n  // c"))
	var ws []string
	for i := 0; i < s.Len(); i++ {
		tk, _ := s.At(i)
		if tk.Kind == token.Whitespace {
			ws = append(ws, tk.Text)
		}
	}
	assert.Equal(t, []string{"\n", "\n", "  "}, ws)

	c, _ := s.At(s.Len() - 1)
	assert.Equal(t, token.Comment, c.Kind)
	assert.Equal(t, 3, c.Line)
	assert.Equal(t, 3, c.Column)
}

func TestLineCommentStopsAtCloseTag(t *testing.T) {
	t.Parallel()

	s := Tokenize([]byte("<?php // note ?>html"))
	assert.Equal(t, []tok{
		{token.OpenTag, "<?php"},
		{token.Comment, "// note "},
		{token.CloseTag, "?>"},
		{token.InlineHTML, "html"},
	}, significant(s))
}

func TestClassifyKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		text    string
		keyword bool
	}{
		{"class keyword", "class A {}", "class", true},
		{"member after arrow", "$a->class;", "class", false},
		{"static member", "A::class;", "class", false},
		{"function name", "function list() {}", "list", false},
		{"enum declaration", "enum Suit {}", "enum", true},
		{"enum as identifier", "$enum = enum($x);", "enum", false},
		{"mixed case", "IF ($a) {}", "IF", true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := Tokenize([]byte(tc.src))
			found := false
			for i := 0; i < s.Len(); i++ {
				tk, _ := s.At(i)
				if tk.Text != tc.text {
					continue
				}
				found = true
				assert.Equal(t, tc.keyword, tk.Kind == token.Keyword)
			}
			assert.True(t, found)
		})
	}
}

// indexOf returns the index of the nth token (0-based) with the given text.
func indexOf(t *testing.T, s *token.Stream, text string, nth int) int {
	t.Helper()
	for i := 0; i < s.Len(); i++ {
		if s.Text(i) == text {
			if nth == 0 {
				return i
			}
			nth--
		}
	}
	require.Failf(t, "token not found", "%q", text)
	return token.NoIndex
}

func TestScopePairing(t *testing.T) {
	t.Parallel()

	s := Tokenize([]byte("<?php\nclass A {\n    function f($x = [1]) {\n        if ($x) { }\n    }\n}\n"))

	class := indexOf(t, s, "class", 0)
	fn := indexOf(t, s, "function", 0)
	ifKw := indexOf(t, s, "if", 0)

	classOpen, ok := s.ScopeOpener(class)
	require.True(t, ok)
	classClose, ok := s.ScopeCloser(class)
	require.True(t, ok)
	assert.Equal(t, "{", s.Text(classOpen))
	assert.Equal(t, "}", s.Text(classClose))

	ct, _ := s.At(classClose)
	assert.Equal(t, class, ct.ScopeCondition)
	assert.Equal(t, classOpen, ct.Match)

	fnClose, ok := s.ScopeCloser(fn)
	require.True(t, ok)
	assert.Less(t, fnClose, classClose)
	assert.Equal(t, []int{class}, s.Conditions(fn))

	ifClose, ok := s.ScopeCloser(ifKw)
	require.True(t, ok)
	assert.Equal(t, []int{class, fn}, s.Conditions(ifClose))
	assert.True(t, s.HasCondition(ifKw, "class"))
	assert.False(t, s.HasCondition(ifKw, "interface"))

	// the default-value array is a plain bracket pair
	lb := indexOf(t, s, "[", 0)
	lt, _ := s.At(lb)
	assert.Equal(t, "]", s.Text(lt.Match))
	assert.Equal(t, token.NoIndex, lt.ScopeCondition)
}

func TestScopeBraceDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		word  string
		owned bool
	}{
		{"abstract method", "abstract function f();", "function", false},
		{"return type", "function f(): array {}", "function", true},
		{"backed enum", "enum Suit: string {}", "enum", true},
		{"alternative syntax", "if ($a): endif;", "if", false},
		{"do while tail", "do { } while ($a);", "while", false},
		{"do body", "do { } while ($a);", "do", true},
		{"else if", "if ($a) {} else if ($b) {}", "else", false},
		{"closure in condition", "if (f(function () { return 1; })) { }", "if", true},
		{"match", "$x = match ($a) { 1 => 2 };", "match", true},
		{"braced case", "switch ($a) { case 1: { f(); } }", "case", true},
		{"plain case", "switch ($a) { case 1: f(); break; }", "case", false},
		{"enum case", "enum E { case A; }", "case", false},
		{"stacked case", "switch ($a) { case 1: case 2: { } }", "case", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := Tokenize([]byte(tc.src))
			k := indexOf(t, s, tc.word, 0)
			_, ok := s.ScopeCloser(k)
			assert.Equal(t, tc.owned, ok)
		})
	}
}

func TestClosureInConditionOwnsOwnBody(t *testing.T) {
	t.Parallel()

	s := Tokenize([]byte("if (f(function () { return 1; })) { }"))
	ifKw := indexOf(t, s, "if", 0)
	fn := indexOf(t, s, "function", 0)

	ifOpen, _ := s.ScopeOpener(ifKw)
	fnOpen, _ := s.ScopeOpener(fn)
	assert.Equal(t, indexOf(t, s, "{", 1), ifOpen)
	assert.Equal(t, indexOf(t, s, "{", 0), fnOpen)
}

func TestUnbalancedBrackets(t *testing.T) {
	t.Parallel()

	src := "<?php\nclass A {\n    function f() {\n        $a = (1;\n    }\n}\n}"
	s := Tokenize([]byte(src))
	assert.Equal(t, src, s.Source())

	class := indexOf(t, s, "class", 0)
	closer, ok := s.ScopeCloser(class)
	require.True(t, ok)
	assert.Equal(t, indexOf(t, s, "}", 1), closer)

	stray, _ := s.At(indexOf(t, s, "}", 2))
	assert.Equal(t, token.NoIndex, stray.Match)
}
