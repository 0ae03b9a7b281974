package lints

import (
	gotoken "go/token"

	"github.com/gnoverse/endlint/internal/check"
	"github.com/gnoverse/endlint/internal/policy"
	"github.com/gnoverse/endlint/internal/scope"
	"github.com/gnoverse/endlint/internal/token"
	tt "github.com/gnoverse/endlint/internal/types"
)

const (
	DeclarationCommentRule   = "closing-declaration-comment"
	LongConditionCommentRule = "long-condition-closing-comment"
)

// ClosingCommentOptions carries the per-rule policy and comment style.
type ClosingCommentOptions struct {
	Policy policy.Config
	Style  check.Style
}

func DefaultClosingCommentOptions() ClosingCommentOptions {
	return ClosingCommentOptions{
		Policy: policy.DefaultConfig(),
		Style:  check.DefaultStyle(),
	}
}

// DetectDeclarationClosingComments reports classes, interfaces, traits,
// enums and named functions whose closing brace lacks an exact
// "end <name>" annotation.
func DetectDeclarationClosingComments(
	filename string,
	stream *token.Stream,
	opts ClosingCommentOptions,
	severity tt.Severity,
) ([]tt.Issue, error) {
	return detectClosingComments(DeclarationCommentRule, filename, stream, opts, severity, func(r scope.Record) bool {
		return r.Kind.IsDeclaration()
	}), nil
}

// DetectLongConditionClosingComments reports control blocks spanning at
// least the configured number of lines whose closing brace lacks an exact
// "end <keyword>" annotation.
func DetectLongConditionClosingComments(
	filename string,
	stream *token.Stream,
	opts ClosingCommentOptions,
	severity tt.Severity,
) ([]tt.Issue, error) {
	return detectClosingComments(LongConditionCommentRule, filename, stream, opts, severity, func(r scope.Record) bool {
		return r.Kind == scope.ControlBlock
	}), nil
}

func detectClosingComments(
	rule string,
	filename string,
	stream *token.Stream,
	opts ClosingCommentOptions,
	severity tt.Severity,
	accept func(scope.Record) bool,
) []tt.Issue {
	var issues []tt.Issue
	for _, r := range scope.ResolveAll(stream) {
		if !accept(r) {
			continue
		}
		ob := policy.Evaluate(r, opts.Policy)
		v, found := check.Check(stream, r, ob, opts.Style)
		if !found {
			continue
		}

		anchor, _ := stream.At(v.Anchor)
		issue := tt.Issue{
			Rule:       rule,
			Code:       v.Code(),
			Category:   "style",
			Filename:   filename,
			Message:    v.Message(),
			Suggestion: anchor.Text + v.Gap + v.Expected,
			Start:      position(filename, anchor),
			End:        endPosition(filename, anchor),
			Severity:   severity,
		}
		if r.ElseBranch {
			issue.Note = "chained branches share a single annotation naming the root construct"
		}
		if plan, ok := check.PlanFix(v); ok {
			issue.Fix = &plan
		} else {
			issue.Note = "the annotation cannot be moved without discarding the comments in between; fix manually"
		}
		issues = append(issues, issue)
	}
	return issues
}

func position(filename string, t token.Token) gotoken.Position {
	return gotoken.Position{
		Filename: filename,
		Offset:   t.Offset,
		Line:     t.Line,
		Column:   t.Column,
	}
}

func endPosition(filename string, t token.Token) gotoken.Position {
	return gotoken.Position{
		Filename: filename,
		Offset:   t.Offset + len(t.Text),
		Line:     t.Line,
		Column:   t.Column + len(t.Text) - 1,
	}
}
