package nolint

import (
	"fmt"
	"strings"

	"github.com/gnoverse/endlint/internal/scope"
	"github.com/gnoverse/endlint/internal/token"
)

var nolintPrefixes = []string{"//nolint", "#nolint"}

// Manager manages nolint scopes and checks if a line is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope represents a line range where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments collects the nolint comments of a token stream.
func ParseComments(s *token.Stream) *Manager {
	manager := Manager{}
	firstCode, hasCode := s.FindNext(isCode, 0, -1)

	for i := 0; i < s.Len(); i++ {
		t, _ := s.At(i)
		if t.Kind != token.Comment {
			continue
		}
		ns, err := parseComment(s, t, firstCode, hasCode)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return &manager
}

func isCode(t token.Token) bool {
	switch t.Kind {
	case token.Whitespace, token.Comment, token.OpenTag, token.CloseTag, token.InlineHTML:
		return false
	}
	return true
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(s *token.Stream, comment token.Token, firstCode int, hasCode bool) (nolintScope, error) {
	var ns nolintScope
	text := strings.TrimSpace(comment.Text)

	var rest string
	matched := false
	for _, prefix := range nolintPrefixes {
		if strings.HasPrefix(text, prefix) {
			rest = text[len(prefix):]
			matched = true
			break
		}
	}
	if !matched {
		return ns, fmt.Errorf("invalid nolint comment")
	}

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 && rest[0] == ':' {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	// A comment ahead of any code applies to the entire file.
	if !hasCode || comment.Index < firstCode {
		ns.start = 1
		ns.end = int(^uint(0) >> 1)
		return ns, nil
	}

	// Inline comments cover their own line.
	if prev, ok := s.FindPrevious(token.Not(token.OfKind(token.Whitespace)), comment.Index-1); ok {
		if pt, _ := s.At(prev); pt.EndLine() == comment.Line && pt.Kind != token.Comment {
			ns.start = comment.Line
			ns.end = comment.Line
			return ns, nil
		}
	}

	// A standalone comment above a construct covers the whole construct,
	// including the line its closing brace sits on.
	ns.start = comment.Line
	ns.end = comment.Line + 1
	if next, ok := s.FindNext(isCode, comment.Index+1, -1); ok {
		nt, _ := s.At(next)
		if nt.Line == comment.Line+1 {
			if closer, ok := constructCloser(s, next); ok {
				ct, _ := s.At(closer)
				ns.end = ct.Line
				if r, ok := scope.Resolve(s, closer); ok {
					at, _ := s.At(r.AnchorIndex)
					ns.end = at.Line
				}
			}
		}
	}
	return ns, nil
}

// constructCloser finds the scope closer of the first scope keyword on the
// line of token i.
func constructCloser(s *token.Stream, i int) (int, bool) {
	t, _ := s.At(i)
	for j := i; j < s.Len(); j++ {
		jt, _ := s.At(j)
		if jt.Line != t.Line {
			break
		}
		if jt.Kind == token.Keyword {
			if closer, ok := s.ScopeCloser(j); ok {
				return closer, true
			}
		}
	}
	return token.NoIndex, false
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	rules := strings.Split(text, ",")
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// IsNolint checks if a given line and rule are nolinted.
func (m *Manager) IsNolint(line int, ruleName string) bool {
	for _, ns := range m.scopes {
		if line < ns.start || line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
