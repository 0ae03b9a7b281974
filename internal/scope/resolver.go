// Package scope pairs closing braces with the construct they end and
// reconstructs the full extent of if/elseif/else and try/catch/finally
// chains.
package scope

import (
	"sort"

	"github.com/gnoverse/endlint/internal/token"
)

// Kind enumerates the constructs that can carry a closing annotation.
type Kind uint8

const (
	ClassDecl Kind = iota + 1
	InterfaceDecl
	TraitDecl
	EnumDecl
	FunctionDecl
	ControlBlock
)

func (k Kind) String() string {
	switch k {
	case ClassDecl:
		return "class"
	case InterfaceDecl:
		return "interface"
	case TraitDecl:
		return "trait"
	case EnumDecl:
		return "enum"
	case FunctionDecl:
		return "function"
	case ControlBlock:
		return "control"
	}
	return "unknown"
}

// IsDeclaration reports whether k is a class-like or function-like declaration.
func (k Kind) IsDeclaration() bool {
	return k >= ClassDecl && k <= FunctionDecl
}

// Record describes one annotatable construct.
type Record struct {
	Kind Kind

	// Name is the declared name of a FunctionDecl; empty for closures.
	Name        string
	Abstract    bool
	InInterface bool

	// Keyword is the lower-cased root keyword of a ControlBlock and
	// KeywordText the same keyword as written.
	Keyword     string
	KeywordText string
	// ElseBranch is set when the chain absorbed at least one
	// else/elseif/catch/finally link.
	ElseBranch bool

	Condition  int
	OpenIndex  int
	CloseIndex int
	// AnchorIndex is the token the annotation must follow. It equals
	// CloseIndex except for a match expression followed by ";" or ",".
	AnchorIndex int

	StartLine int
	EndLine   int
}

// Span returns the number of lines between the opener and the final closer.
func (r Record) Span() int {
	return r.EndLine - r.StartLine
}

var controlKeywords = map[string]struct{}{
	"if": {}, "for": {}, "foreach": {}, "while": {}, "switch": {}, "case": {}, "try": {}, "match": {},
}

var modifiers = map[string]struct{}{
	"abstract": {}, "final": {}, "public": {}, "protected": {}, "private": {},
	"static": {}, "readonly": {},
}

// Resolve returns the record governed by the closing brace at closer.
// Braces that do not end an annotatable construct, branch links that their
// chain root accounts for, and malformed scopes all yield ok=false.
func Resolve(s *token.Stream, closer int) (Record, bool) {
	t, ok := s.At(closer)
	if !ok || t.Kind != token.DelimiterClose || t.ScopeCloser != closer {
		return Record{}, false
	}
	cond, open := t.ScopeCondition, t.ScopeOpener
	ct, ok := s.At(cond)
	if !ok || open == token.NoIndex || open >= closer {
		return Record{}, false
	}

	r := Record{
		Condition:   cond,
		OpenIndex:   open,
		CloseIndex:  closer,
		AnchorIndex: closer,
	}

	switch word := ct.Word(); word {
	case "class":
		if prev, ok := s.PrevSignificant(cond - 1); ok {
			if pt, _ := s.At(prev); pt.Is("new") {
				return Record{}, false
			}
		}
		r.Kind = ClassDecl
	case "interface":
		r.Kind = InterfaceDecl
	case "trait":
		r.Kind = TraitDecl
	case "enum":
		r.Kind = EnumDecl
	case "function":
		r.Kind = FunctionDecl
		r.Name = declarationName(s, cond)
		r.Abstract = hasModifier(s, cond, "abstract")
		r.InInterface = s.HasCondition(cond, "interface")
	default:
		if _, ok := controlKeywords[word]; !ok {
			return Record{}, false
		}
		r.Kind = ControlBlock
		r.Keyword = word
		r.KeywordText = ct.Text
		if !resolveChain(s, &r) {
			return Record{}, false
		}
	}

	ot, _ := s.At(open)
	et, _ := s.At(r.CloseIndex)
	r.StartLine = ot.Line
	r.EndLine = et.Line
	return r, true
}

// resolveChain extends r over the links of its chain and moves the anchor
// past a trailing terminator for match expressions.
func resolveChain(s *token.Stream, r *Record) bool {
	switch r.Keyword {
	case "if":
		if isElseBranch(s, r.Condition) {
			return false
		}
		return absorb(s, r, "else", "elseif")
	case "try":
		return absorb(s, r, "catch", "finally")
	case "match":
		if n, ok := s.FindNext(token.Not(token.OfKind(token.Whitespace)), r.CloseIndex+1, -1); ok {
			if nt, _ := s.At(n); nt.Kind == token.Punctuation && (nt.Text == ";" || nt.Text == ",") {
				r.AnchorIndex = n
			}
		}
	}
	return true
}

// isElseBranch reports whether the if at cond is the second half of a
// two-token "else if".
func isElseBranch(s *token.Stream, cond int) bool {
	prev, ok := s.PrevSignificant(cond - 1)
	if !ok {
		return false
	}
	pt, _ := s.At(prev)
	return pt.Is("else")
}

// absorb walks forward over chain links. Each link must own a closer that
// lies strictly after the current one, which bounds the loop on malformed
// input.
func absorb(s *token.Stream, r *Record, links ...string) bool {
	for {
		n, ok := s.NextSignificant(r.CloseIndex + 1)
		if !ok {
			return true
		}
		nt, _ := s.At(n)
		if !nt.Is(links...) {
			return true
		}
		link := n
		if nt.Is("else") && nt.ScopeCloser == token.NoIndex {
			m, ok := s.NextSignificant(n + 1)
			if !ok {
				return false
			}
			if mt, _ := s.At(m); !mt.Is("if") {
				return false
			}
			link = m
		}
		closer, ok := s.ScopeCloser(link)
		if !ok || closer <= r.CloseIndex {
			return false
		}
		r.CloseIndex = closer
		r.AnchorIndex = closer
		r.ElseBranch = true
	}
}

func declarationName(s *token.Stream, cond int) string {
	n, ok := s.NextSignificant(cond + 1)
	if !ok {
		return ""
	}
	if nt, _ := s.At(n); nt.Text == "&" {
		if n, ok = s.NextSignificant(n + 1); !ok {
			return ""
		}
	}
	nt, _ := s.At(n)
	if nt.Kind != token.Identifier && nt.Kind != token.Keyword {
		return ""
	}
	return nt.Text
}

func hasModifier(s *token.Stream, cond int, modifier string) bool {
	i := cond - 1
	for {
		prev, ok := s.PrevSignificant(i)
		if !ok {
			return false
		}
		pt, _ := s.At(prev)
		if _, isMod := modifiers[pt.Word()]; !isMod {
			return false
		}
		if pt.Is(modifier) {
			return true
		}
		i = prev - 1
	}
}

// ResolveAll resolves every closing brace. Records are ordered by anchor.
func ResolveAll(s *token.Stream) []Record {
	var records []Record
	for i := 0; i < s.Len(); i++ {
		t, _ := s.At(i)
		if t.Kind != token.DelimiterClose || t.ScopeCloser != i {
			continue
		}
		if r, ok := Resolve(s, i); ok {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AnchorIndex < records[j].AnchorIndex
	})
	return records
}
