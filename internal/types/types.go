package types

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnoverse/endlint/internal/fix"
)

// Issue represents a lint issue found in the code base.
type Issue struct {
	Rule       string
	Code       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
	Fix        *fix.Plan `json:",omitempty"`
}

// Fixable reports whether the issue carries an edit plan.
func (i Issue) Fixable() bool {
	return i.Fix != nil && !i.Fix.Empty()
}

// Severity is the severity of a lint rule.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the names printed by String, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ConfigRule represents a configuration rule.
type ConfigRule struct {
	Severity      Severity `yaml:"severity" toml:"severity"`
	LineLimit     int      `yaml:"line_limit,omitempty" toml:"line_limit"`
	CommentFormat string   `yaml:"comment_format,omitempty" toml:"comment_format"`
	CommentPrefix *string  `yaml:"comment_prefix,omitempty" toml:"comment_prefix"`
	Spacing       *int     `yaml:"spacing,omitempty" toml:"spacing"`
}
