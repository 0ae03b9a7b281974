// Package check compares the trivia after a construct's closing brace with
// its obligation and plans the minimal edit that restores compliance.
package check

import (
	"fmt"
	"strings"

	"github.com/gnoverse/endlint/internal/fix"
	"github.com/gnoverse/endlint/internal/policy"
	"github.com/gnoverse/endlint/internal/scope"
	"github.com/gnoverse/endlint/internal/token"
)

const (
	DefaultPrefix  = "// "
	DefaultSpacing = 1
)

// Style controls how an annotation is written.
type Style struct {
	// Prefix opens the comment, e.g. "// " or "#".
	Prefix string
	// Spacing is the number of spaces between the brace and the comment.
	Spacing int
}

func DefaultStyle() Style {
	return Style{Prefix: DefaultPrefix, Spacing: DefaultSpacing}
}

// Render returns the full comment token for an expected annotation.
func (s Style) Render(expected string) string {
	return s.Prefix + expected
}

// Gap returns the whitespace required between the brace and the comment.
func (s Style) Gap() string {
	if s.Spacing < 0 {
		return ""
	}
	return strings.Repeat(" ", s.Spacing)
}

// ValidateAnnotation rejects a prefix and format whose rendered annotation
// would not be recognised again once written. The rendered text must be a
// single comment token with no surrounding whitespace.
func ValidateAnnotation(prefix, format string) error {
	if !policy.ValidFormat(format) {
		return fmt.Errorf("comment_format must contain exactly one %%s and no other verb, got %q", format)
	}
	rendered := prefix + fmt.Sprintf(format, "name")
	if rendered != strings.TrimSpace(rendered) {
		return fmt.Errorf("annotation %q must not start or end with whitespace", rendered)
	}
	if strings.ContainsAny(rendered, "\r\n") {
		return fmt.Errorf("annotation %q must fit on one line", rendered)
	}
	switch {
	case strings.HasPrefix(rendered, "/*"):
		if !strings.HasSuffix(rendered, "*/") || strings.Index(rendered[2:], "*/") != len(rendered)-4 {
			return fmt.Errorf("block comment annotation %q must end with its only */", rendered)
		}
	case strings.HasPrefix(rendered, "#["):
		return fmt.Errorf("annotation %q would start an attribute", rendered)
	case strings.HasPrefix(rendered, "//"), strings.HasPrefix(rendered, "#"):
		if strings.Contains(rendered, "?>") {
			return fmt.Errorf("line comment annotation %q must not contain ?>", rendered)
		}
	default:
		return fmt.Errorf("comment_prefix must open a comment with //, # or /*, got %q", prefix)
	}
	return nil
}

// Kind classifies a violation.
type Kind uint8

const (
	Missing Kind = iota + 1
	Misplaced
	IncorrectSpacing
	IncorrectText
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "Missing"
	case Misplaced:
		return "Misplaced"
	case IncorrectSpacing:
		return "IncorrectSpacing"
	case IncorrectText:
		return "IncorrectText"
	}
	return "Kind(?)"
}

// Violation describes a non-compliant annotation site.
type Violation struct {
	Kind   Kind
	Anchor int
	// Comment is the offending or misplaced comment, or token.NoIndex.
	Comment int
	// Expected is the rendered comment, Found the text actually present.
	Expected string
	Found    string
	Gap      string
	// SpacingWrong marks an IncorrectText site whose gap is also wrong.
	SpacingWrong bool
	// LineBreak is appended after the annotation when code follows on the
	// same line and would otherwise be commented out.
	LineBreak string
	// Fixable is false when no edit can be planned without losing trivia.
	Fixable bool
}

// Code returns the machine-readable violation code.
func (v Violation) Code() string {
	if v.Kind == IncorrectText && v.SpacingWrong {
		return "Incorrect"
	}
	return v.Kind.String()
}

// Message renders the human-readable report.
func (v Violation) Message() string {
	switch v.Kind {
	case Missing:
		return fmt.Sprintf("expected %q after closing brace", v.Expected)
	case Misplaced:
		return fmt.Sprintf("expected %q directly after closing brace", v.Expected)
	case IncorrectSpacing:
		return fmt.Sprintf("expected %q with %s after closing brace", v.Expected, spacingWord(len(v.Gap)))
	default:
		return fmt.Sprintf("expected %q, found %q", v.Expected, v.Found)
	}
}

func spacingWord(n int) string {
	switch n {
	case 0:
		return "no space"
	case 1:
		return "single space"
	}
	return fmt.Sprintf("%d spaces", n)
}

// Check inspects the tokens after r's anchor. It returns ok=false when no
// annotation is required or the present one is exactly right.
func Check(s *token.Stream, r scope.Record, ob policy.Obligation, st Style) (Violation, bool) {
	if !ob.Required {
		return Violation{}, false
	}
	anchor, ok := s.At(r.AnchorIndex)
	if !ok {
		return Violation{}, false
	}

	v := Violation{
		Anchor:   r.AnchorIndex,
		Comment:  token.NoIndex,
		Expected: st.Render(ob.ExpectedText),
		Gap:      st.Gap(),
	}

	first, match := token.NoIndex, token.NoIndex
	for i := r.AnchorIndex + 1; i < s.Len(); i++ {
		t, _ := s.At(i)
		if t.Kind == token.Whitespace {
			continue
		}
		if t.Kind != token.Comment {
			break
		}
		if first == token.NoIndex {
			first = i
		}
		if strings.TrimSpace(t.Text) == v.Expected {
			match = i
			break
		}
	}

	switch {
	case match != token.NoIndex && match == first:
		between := s.Slice(r.AnchorIndex+1, match)
		if between == v.Gap {
			return Violation{}, false
		}
		v.Comment = match
		v.Found = s.Text(match)
		v.Fixable = true
		if strings.Contains(between, "\n") {
			v.Kind = Misplaced
		} else {
			v.Kind = IncorrectSpacing
		}
	case match != token.NoIndex:
		// Moving the annotation past other comments would drop them.
		v.Kind = Misplaced
		v.Comment = match
		v.Found = s.Text(match)
	case first != token.NoIndex && tokenLine(s, first) == anchor.Line:
		v.Kind = IncorrectText
		v.Comment = first
		v.Found = strings.TrimSpace(s.Text(first))
		v.SpacingWrong = s.Slice(r.AnchorIndex+1, first) != v.Gap
		v.Fixable = true
	default:
		v.Kind = Missing
		v.Fixable = true
	}

	after := r.AnchorIndex
	if v.Comment != token.NoIndex {
		after = v.Comment
	}
	if codeFollowsOnLine(s, after) {
		v.LineBreak = "\n"
	}
	return v, true
}

func tokenLine(s *token.Stream, i int) int {
	t, _ := s.At(i)
	return t.Line
}

// codeFollowsOnLine reports whether a token other than whitespace or a
// closing tag shares the last line of token i.
func codeFollowsOnLine(s *token.Stream, i int) bool {
	t, _ := s.At(i)
	line := t.EndLine()
	n, ok := s.FindNext(token.Not(token.OfKind(token.Whitespace)), i+1, -1)
	if !ok {
		return false
	}
	nt, _ := s.At(n)
	return nt.Line == line && nt.Kind != token.CloseTag
}

// PlanFix builds the edit for v. Unfixable violations yield ok=false.
func PlanFix(v Violation) (fix.Plan, bool) {
	if !v.Fixable {
		return fix.Plan{}, false
	}
	text := v.Gap + v.Expected + v.LineBreak
	switch v.Kind {
	case Missing:
		return fix.NewPlan(fix.InsertAfter(v.Anchor, text)), true
	case Misplaced, IncorrectSpacing, IncorrectText:
		if v.Comment == token.NoIndex || v.Comment <= v.Anchor {
			return fix.Plan{}, false
		}
		var ops []fix.Op
		if v.Comment > v.Anchor+1 {
			ops = append(ops, fix.DeleteRange(v.Anchor+1, v.Comment))
		}
		ops = append(ops, fix.ReplaceToken(v.Comment, text))
		return fix.NewPlan(ops...), true
	}
	return fix.Plan{}, false
}
