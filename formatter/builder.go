package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/gnoverse/endlint/internal"
	"github.com/gnoverse/endlint/internal/lints"
	tt "github.com/gnoverse/endlint/internal/types"
)

const tabWidth = 4

var (
	severityStyles = map[tt.Severity]*color.Color{
		tt.SeverityError:   color.New(color.FgRed, color.Bold),
		tt.SeverityWarning: color.New(color.FgHiYellow, color.Bold),
		tt.SeverityInfo:    color.New(color.FgHiCyan, color.Bold),
	}
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	codeStyle       = color.New(color.FgMagenta)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	gutterStyle     = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// issueFormatter is the interface that wraps the issueTemplate method.
// Implementations of this interface are responsible for formatting specific types of lint issues.
type issueFormatter interface {
	IssueTemplate() string
}

// getIssueFormatter returns the formatter for rule, falling back to
// GeneralIssueFormatter.
func getIssueFormatter(rule string) issueFormatter {
	switch rule {
	case lints.DeclarationCommentRule, lints.LongConditionCommentRule:
		return &ClosingCommentFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
// It uses the appropriate formatter for each issue based on its rule.
func GenerateFormattedIssue(issues []tt.Issue, snippet *internal.SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(buildIssue(issue, snippet, getIssueFormatter(issue.Rule)))
	}
	return builder.String()
}

// templates caches parsed issue templates by their source text.
var (
	templatesMu sync.Mutex
	templates   = map[string]*template.Template{}
)

func parseTemplate(text string) *template.Template {
	templatesMu.Lock()
	defer templatesMu.Unlock()
	if tmpl, ok := templates[text]; ok {
		return tmpl
	}
	tmpl := template.Must(template.New("issue").Parse(text))
	templates[text] = tmpl
	return tmpl
}

func buildIssue(issue tt.Issue, snippet *internal.SourceCode, formatter issueFormatter) string {
	var lines []string
	if snippet != nil {
		lines = snippet.Lines
	}
	view := newIssueView(issue, lines)

	var buf bytes.Buffer
	if err := parseTemplate(formatter.IssueTemplate()).Execute(&buf, view); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// issueView is the value issue templates render. Its methods produce the
// report sections; the gutter width follows the last reported line number.
type issueView struct {
	issue  tt.Issue
	lines  []string // source lines covered by the issue, nil when unavailable
	indent string   // leading whitespace shared by lines
	width  int
}

func newIssueView(issue tt.Issue, source []string) *issueView {
	v := &issueView{
		issue: issue,
		width: len(strconv.Itoa(issue.End.Line)),
	}
	start, end := issue.Start.Line, issue.End.Line
	if start > 0 && start <= end && end <= len(source) {
		v.lines = source[start-1 : end]
		v.indent = sharedIndent(v.lines)
	}
	return v
}

// gutter renders the line-number column followed by sep.
func (v *issueView) gutter(label, sep string) string {
	return gutterStyle.Sprintf("%*s %s", v.width, label, sep)
}

func (v *issueView) Header() string {
	var b strings.Builder
	if style, ok := severityStyles[v.issue.Severity]; ok {
		b.WriteString(style.Sprint(strings.ToLower(v.issue.Severity.String()) + ": "))
	}
	b.WriteString(ruleStyle.Sprint(v.issue.Rule))
	b.WriteString("\n")
	b.WriteString(gutterStyle.Sprintf("%s--> ", strings.Repeat(" ", v.width)))
	b.WriteString(fileStyle.Sprintf("%s:%d:%d", v.issue.Filename, v.issue.Start.Line, v.issue.Start.Column))
	b.WriteString("\n")
	return b.String()
}

// Snippet prints the covered source lines without their shared indent.
func (v *issueView) Snippet() string {
	var b strings.Builder
	b.WriteString(v.gutter("", "|") + "\n")
	for i, line := range v.lines {
		b.WriteString(v.gutter(strconv.Itoa(v.issue.Start.Line+i), "| "))
		b.WriteString(strings.TrimPrefix(line, v.indent))
		b.WriteString("\n")
	}
	return b.String()
}

// Message underlines the reported columns and prints text below them.
// Without source lines only the text is printed.
func (v *issueView) Message(text string) string {
	if v.lines == nil {
		return v.gutter("", "| ") + messageStyle.Sprint(text) + "\n"
	}

	shift := visualColumn(v.indent, len(v.indent)+1)
	from := max(visualColumn(v.lines[0], v.issue.Start.Column)-shift, 0)
	// End.Column is inclusive, so measure through the end of that rune
	to := visualColumn(v.lines[len(v.lines)-1], v.issue.End.Column+1) - shift

	var b strings.Builder
	b.WriteString(v.gutter("", "| "))
	b.WriteString(strings.Repeat(" ", from))
	b.WriteString(messageStyle.Sprint(strings.Repeat("~", max(to-from, 1))))
	b.WriteString("\n")
	b.WriteString(v.gutter("", "= "))
	b.WriteString(messageStyle.Sprint(text))
	b.WriteString("\n")
	return b.String()
}

// CodedMessage appends the violation code, and whether it can be fixed,
// to the message.
func (v *issueView) CodedMessage() string {
	text := v.issue.Message
	switch {
	case v.issue.Code == "":
	case v.issue.Fixable():
		text += codeStyle.Sprintf(" [%s, fixable]", v.issue.Code)
	default:
		text += codeStyle.Sprintf(" [%s]", v.issue.Code)
	}
	return v.Message(text)
}

func (v *issueView) PlainMessage() string {
	return v.Message(v.issue.Message)
}

// Suggestion numbers the replacement lines from the issue's first line.
func (v *issueView) Suggestion() string {
	if v.issue.Suggestion == "" {
		return ""
	}
	bar := v.gutter("", "|") + "\n"

	var b strings.Builder
	b.WriteString(suggestionStyle.Sprint("Suggestion:") + "\n")
	b.WriteString(bar)
	for i, line := range strings.Split(v.issue.Suggestion, "\n") {
		b.WriteString(v.gutter(strconv.Itoa(v.issue.Start.Line+i), "| "))
		b.WriteString(line + "\n")
	}
	b.WriteString(bar)
	return b.String()
}

func (v *issueView) Note() string {
	if v.issue.Note == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + v.issue.Note + "\n"
}

// visualColumn returns the display width of line before the given
// 1-based byte column, expanding tabs and counting wide runes as two cells.
func visualColumn(line string, column int) int {
	width := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			width += tabWidth - width%tabWidth
		} else {
			width += runewidth.RuneWidth(ch)
		}
	}
	return width
}

// sharedIndent returns the leading whitespace common to every non-blank line.
func sharedIndent(lines []string) string {
	indent, seen := "", false
	for _, line := range lines {
		body := strings.TrimLeft(line, " \t")
		if body == "" {
			continue
		}
		lead := line[:len(line)-len(body)]
		if !seen {
			indent, seen = lead, true
			continue
		}
		n := 0
		for n < len(indent) && n < len(lead) && indent[n] == lead[n] {
			n++
		}
		indent = indent[:n]
	}
	return indent
}
