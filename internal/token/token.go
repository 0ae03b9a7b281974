// Package token defines the lexical tokens of a PHP source file and the
// stream that carries their bracket and scope pairing metadata.
//
// Invariants:
//   - Token.Text is the exact source slice; concatenating every token's Text
//     reproduces the input byte for byte.
//   - Line and Column are 1-based and refer to the first byte of the token.
//   - Pairing fields hold token indices, or NoIndex when absent.
package token

import "strings"

// NoIndex marks an absent pairing link.
const NoIndex = -1

// Kind is the lexical category of a token.
type Kind uint8

const (
	Illegal Kind = iota
	InlineHTML
	OpenTag
	CloseTag
	Whitespace
	Comment
	Variable
	Identifier
	Keyword
	Number
	String
	DelimiterOpen
	DelimiterClose
	Punctuation
)

var kindNames = [...]string{
	Illegal:        "Illegal",
	InlineHTML:     "InlineHTML",
	OpenTag:        "OpenTag",
	CloseTag:       "CloseTag",
	Whitespace:     "Whitespace",
	Comment:        "Comment",
	Variable:       "Variable",
	Identifier:     "Identifier",
	Keyword:        "Keyword",
	Number:         "Number",
	String:         "String",
	DelimiterOpen:  "DelimiterOpen",
	DelimiterClose: "DelimiterClose",
	Punctuation:    "Punctuation",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Token is a single lexical unit. Tokens are created by the lexer and never
// modified afterwards; consumers refer to them by Index.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
	Offset int
	Index  int

	// Match links a bracket to its partner bracket.
	Match int

	// Scope links are set on a scope keyword and on both braces it owns.
	ScopeOpener    int
	ScopeCloser    int
	ScopeCondition int

	// Conditions lists the scope keywords enclosing this token, outermost
	// first. The slice is shared between tokens and must not be modified.
	Conditions []int
}

// Word returns the lower-cased keyword for keyword tokens and "" otherwise.
func (t Token) Word() string {
	if t.Kind != Keyword {
		return ""
	}
	return strings.ToLower(t.Text)
}

// IsTrivia reports whether the token carries no syntax: whitespace or comments.
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// EndLine returns the line on which the token's last byte sits.
func (t Token) EndLine() int {
	return t.Line + strings.Count(strings.TrimSuffix(t.Text, "\n"), "\n")
}

// Is reports whether the token is a keyword equal to one of words.
func (t Token) Is(words ...string) bool {
	w := t.Word()
	if w == "" {
		return false
	}
	for _, want := range words {
		if w == want {
			return true
		}
	}
	return false
}
