package lexer

import (
	"strings"

	"github.com/gnoverse/endlint/internal/token"
)

var keywords = map[string]struct{}{
	"abstract": {}, "and": {}, "as": {}, "break": {}, "callable": {}, "case": {},
	"catch": {}, "class": {}, "clone": {}, "const": {}, "continue": {}, "declare": {},
	"default": {}, "do": {}, "echo": {}, "else": {}, "elseif": {}, "empty": {},
	"enddeclare": {}, "endfor": {}, "endforeach": {}, "endif": {}, "endswitch": {},
	"endwhile": {}, "enum": {}, "extends": {}, "final": {}, "finally": {}, "fn": {},
	"for": {}, "foreach": {}, "function": {}, "global": {}, "goto": {}, "if": {},
	"implements": {}, "include": {}, "include_once": {}, "instanceof": {},
	"insteadof": {}, "interface": {}, "isset": {}, "list": {}, "match": {},
	"namespace": {}, "new": {}, "or": {}, "print": {}, "private": {}, "protected": {},
	"public": {}, "readonly": {}, "require": {}, "require_once": {}, "return": {},
	"static": {}, "switch": {}, "throw": {}, "trait": {}, "try": {}, "unset": {},
	"use": {}, "var": {}, "while": {}, "xor": {}, "yield": {},
}

// scopeOwners are the keywords that may own a brace-delimited body.
var scopeOwners = map[string]struct{}{
	"class": {}, "interface": {}, "trait": {}, "enum": {}, "function": {},
	"if": {}, "elseif": {}, "else": {}, "for": {}, "foreach": {}, "while": {},
	"switch": {}, "case": {}, "try": {}, "catch": {}, "finally": {}, "match": {}, "do": {},
}

// bareOwners own a body only when "{" follows directly.
var bareOwners = map[string]struct{}{
	"else": {}, "try": {}, "finally": {}, "do": {},
}

// colonOwners accept ":" before their body (return types, backed enums,
// braced case bodies).
var colonOwners = map[string]struct{}{
	"function": {}, "enum": {}, "case": {},
}

func prevSignificant(tokens []token.Token, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !tokens[j].IsTrivia() {
			return j
		}
	}
	return token.NoIndex
}

func nextSignificant(tokens []token.Token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if !tokens[j].IsTrivia() {
			return j
		}
	}
	return token.NoIndex
}

// classifyKeywords promotes identifiers to keywords where PHP treats them
// as reserved. Member names after "->", "?->" and "::" and function names
// stay identifiers.
func classifyKeywords(tokens []token.Token) {
	for i := range tokens {
		if tokens[i].Kind != token.Identifier {
			continue
		}
		word := strings.ToLower(tokens[i].Text)
		if _, ok := keywords[word]; !ok {
			continue
		}
		if p := prevSignificant(tokens, i); p != token.NoIndex {
			switch tokens[p].Text {
			case "->", "?->", "::":
				continue
			}
			if tokens[p].Kind == token.Keyword && tokens[p].Word() == "function" {
				continue
			}
		}
		if word == "enum" {
			n := nextSignificant(tokens, i)
			if n == token.NoIndex || tokens[n].Kind != token.Identifier {
				continue
			}
		}
		tokens[i].Kind = token.Keyword
	}
}

// findScopeBrace returns the "{" owned by the keyword at k.
func findScopeBrace(tokens []token.Token, k int) int {
	word := tokens[k].Word()
	if _, ok := bareOwners[word]; ok {
		n := nextSignificant(tokens, k)
		if n != token.NoIndex && tokens[n].Text == "{" {
			return n
		}
		return token.NoIndex
	}
	_, colonOK := colonOwners[word]
	depth := 0
	for j := k + 1; j < len(tokens); j++ {
		t := tokens[j]
		switch t.Kind {
		case token.DelimiterOpen:
			if depth == 0 && t.Text == "{" {
				return j
			}
			depth++
		case token.DelimiterClose:
			if depth == 0 {
				return token.NoIndex
			}
			depth--
		case token.Punctuation:
			if depth > 0 {
				continue
			}
			if t.Text == ";" || (t.Text == ":" && !colonOK) {
				return token.NoIndex
			}
		case token.Keyword:
			if depth > 0 {
				continue
			}
			if _, owner := scopeOwners[t.Word()]; owner {
				return token.NoIndex
			}
		case token.CloseTag:
			return token.NoIndex
		}
	}
	return token.NoIndex
}

func closes(open, close string) bool {
	switch close {
	case "}":
		return open == "{"
	case ")":
		return open == "("
	case "]":
		return open == "[" || open == "#["
	}
	return false
}

// pair links brackets, attaches owned braces to their scope keywords and
// records the condition stack of every token.
func pair(tokens []token.Token) {
	owner := make(map[int]int)
	for k := range tokens {
		if tokens[k].Kind != token.Keyword {
			continue
		}
		if _, ok := scopeOwners[tokens[k].Word()]; !ok {
			continue
		}
		if b := findScopeBrace(tokens, k); b != token.NoIndex {
			if _, taken := owner[b]; !taken {
				owner[b] = k
			}
		}
	}

	var brackets []int
	var conditions []int
	for i := range tokens {
		t := &tokens[i]
		switch t.Kind {
		case token.DelimiterOpen:
			t.Conditions = conditions
			brackets = append(brackets, i)
			if k, ok := owner[i]; ok {
				conditions = appendCondition(conditions, k)
			}
			continue
		case token.DelimiterClose:
			at := len(brackets) - 1
			for at >= 0 && !closes(tokens[brackets[at]].Text, t.Text) {
				at--
			}
			if at < 0 {
				t.Conditions = conditions
				continue
			}
			for _, unclosed := range brackets[at+1:] {
				if _, ok := owner[unclosed]; ok {
					conditions = conditions[:len(conditions)-1]
				}
			}
			open := brackets[at]
			brackets = brackets[:at]
			t.Match = open
			tokens[open].Match = i
			if k, ok := owner[open]; ok {
				conditions = conditions[:len(conditions)-1]
				for _, j := range []int{k, open, i} {
					tokens[j].ScopeCondition = k
					tokens[j].ScopeOpener = open
					tokens[j].ScopeCloser = i
				}
			}
		}
		t.Conditions = conditions
	}
}

// appendCondition copies so that slices handed to earlier tokens stay intact.
func appendCondition(conditions []int, k int) []int {
	next := make([]int, len(conditions), len(conditions)+1)
	copy(next, conditions)
	return append(next, k)
}
