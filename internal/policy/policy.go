// Package policy decides whether a construct must carry a closing
// annotation and what that annotation says.
package policy

import (
	"fmt"
	"strings"

	"github.com/gnoverse/endlint/internal/scope"
)

const (
	DefaultLineLimit     = 20
	DefaultCommentFormat = "end %s"
)

// Config holds the policy knobs. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// LineLimit is the minimum span, in lines, at which a control block
	// needs an annotation.
	LineLimit int
	// CommentFormat contains exactly one %s, replaced by the construct's
	// keyword or name.
	CommentFormat string
}

func DefaultConfig() Config {
	return Config{
		LineLimit:     DefaultLineLimit,
		CommentFormat: DefaultCommentFormat,
	}
}

// ValidFormat reports whether format has exactly one %s and no other verbs.
func ValidFormat(format string) bool {
	return strings.Count(format, "%s") == 1 && strings.Count(format, "%") == 1
}

// Obligation states whether an annotation is required. ExpectedText is
// empty exactly when Required is false.
type Obligation struct {
	Required     bool
	ExpectedText string
}

// Evaluate maps a record to its obligation. It never fails: unsupported or
// unnamed constructs are simply not required.
func Evaluate(r scope.Record, cfg Config) Obligation {
	format := cfg.CommentFormat
	if !ValidFormat(format) {
		format = DefaultCommentFormat
	}

	var subject string
	switch r.Kind {
	case scope.ClassDecl, scope.InterfaceDecl, scope.TraitDecl, scope.EnumDecl:
		subject = r.Kind.String()
	case scope.FunctionDecl:
		if r.Abstract || r.InInterface || r.Name == "" {
			return Obligation{}
		}
		subject = r.Name + "()"
	case scope.ControlBlock:
		if r.Keyword == "" || r.Span() < cfg.LineLimit {
			return Obligation{}
		}
		subject = r.Keyword
		if r.KeywordText != "" {
			subject = r.KeywordText
		}
	default:
		return Obligation{}
	}

	return Obligation{
		Required:     true,
		ExpectedText: fmt.Sprintf(format, subject),
	}
}
