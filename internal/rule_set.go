package internal

import (
	"github.com/gnoverse/endlint/internal/lints"
	"github.com/gnoverse/endlint/internal/policy"
	"github.com/gnoverse/endlint/internal/token"
	tt "github.com/gnoverse/endlint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given token stream and returns a slice of Issues.
	Check(filename string, stream *token.Stream) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity of the lint rule.
	Severity() tt.Severity

	// SetSeverity sets the severity of the lint rule.
	SetSeverity(tt.Severity)
}

// ConfigurableRule is implemented by rules that accept the closing comment
// options from the configuration file.
type ConfigurableRule interface {
	LintRule
	Configure(tt.ConfigRule)
}

type closingCommentRule struct {
	opts     lints.ClosingCommentOptions
	severity tt.Severity
}

func (r *closingCommentRule) Severity() tt.Severity {
	return r.severity
}

func (r *closingCommentRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}

// Configure overrides the defaults with the non-zero fields of cfg.
func (r *closingCommentRule) Configure(cfg tt.ConfigRule) {
	if cfg.LineLimit > 0 {
		r.opts.Policy.LineLimit = cfg.LineLimit
	}
	if cfg.CommentFormat != "" && policy.ValidFormat(cfg.CommentFormat) {
		r.opts.Policy.CommentFormat = cfg.CommentFormat
	}
	if cfg.CommentPrefix != nil {
		r.opts.Style.Prefix = *cfg.CommentPrefix
	}
	if cfg.Spacing != nil && *cfg.Spacing >= 0 {
		r.opts.Style.Spacing = *cfg.Spacing
	}
}

// DeclarationCommentRule requires "end class", "end foo()" and friends after
// every declaration body.
type DeclarationCommentRule struct {
	closingCommentRule
}

func NewDeclarationCommentRule() LintRule {
	return &DeclarationCommentRule{
		closingCommentRule: closingCommentRule{
			opts:     lints.DefaultClosingCommentOptions(),
			severity: tt.SeverityError,
		},
	}
}

func (r *DeclarationCommentRule) Check(filename string, stream *token.Stream) ([]tt.Issue, error) {
	return lints.DetectDeclarationClosingComments(filename, stream, r.opts, r.severity)
}

func (r *DeclarationCommentRule) Name() string {
	return lints.DeclarationCommentRule
}

// LongConditionCommentRule requires "end if", "end while" and friends after
// control blocks that span at least the configured line limit.
type LongConditionCommentRule struct {
	closingCommentRule
}

func NewLongConditionCommentRule() LintRule {
	return &LongConditionCommentRule{
		closingCommentRule: closingCommentRule{
			opts:     lints.DefaultClosingCommentOptions(),
			severity: tt.SeverityError,
		},
	}
}

func (r *LongConditionCommentRule) Check(filename string, stream *token.Stream) ([]tt.Issue, error) {
	return lints.DetectLongConditionClosingComments(filename, stream, r.opts, r.severity)
}

func (r *LongConditionCommentRule) Name() string {
	return lints.LongConditionCommentRule
}

// Options exposes the effective options, mainly for tests.
func (r *closingCommentRule) Options() lints.ClosingCommentOptions {
	return r.opts
}

var _ ConfigurableRule = (*DeclarationCommentRule)(nil)
var _ ConfigurableRule = (*LongConditionCommentRule)(nil)
