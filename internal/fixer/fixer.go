package fixer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gnoverse/endlint/internal/fix"
	"github.com/gnoverse/endlint/internal/lexer"
	tt "github.com/gnoverse/endlint/internal/types"
)

// ErrNoFixes is returned when a file has no applicable fix.
var ErrNoFixes = errors.New("no applicable fixes found")

// maxPasses bounds the re-lint loop; each pass only applies plans that do
// not overlap, so nested sites may need another pass.
const maxPasses = 10

// SourceLinter lints an in-memory source.
type SourceLinter interface {
	RunSource(source []byte) ([]tt.Issue, error)
}

type Fixer struct {
	DryRun bool
	// Codes restricts fixing to these violation codes; empty means all.
	Codes  map[string]bool
	Out    io.Writer
	logger *zap.Logger
}

func New(dryRun bool, codes []string, logger *zap.Logger) *Fixer {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fixer{
		DryRun: dryRun,
		Codes:  make(map[string]bool),
		Out:    os.Stdout,
		logger: logger,
	}
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			f.Codes[code] = true
		}
	}
	return f
}

// Summary describes the outcome of fixing one source.
type Summary struct {
	Applied   int
	Skipped   int
	Remaining []tt.Issue
	Passes    int
}

func (f *Fixer) wants(issue tt.Issue) bool {
	if !issue.Fixable() {
		return false
	}
	return len(f.Codes) == 0 || f.Codes[issue.Code]
}

// FixSource repeatedly lints and patches source until no selected fix
// remains. It returns the patched source.
func (f *Fixer) FixSource(linter SourceLinter, source []byte) ([]byte, Summary, error) {
	var sum Summary
	current := source
	for sum.Passes < maxPasses {
		issues, err := linter.RunSource(current)
		if err != nil {
			return nil, sum, fmt.Errorf("failed to lint source: %w", err)
		}

		var plans []fix.Plan
		sum.Remaining = sum.Remaining[:0]
		for _, issue := range issues {
			if f.wants(issue) {
				plans = append(plans, *issue.Fix)
			} else {
				sum.Remaining = append(sum.Remaining, issue)
			}
		}
		if len(plans) == 0 {
			break
		}
		sum.Passes++

		res := fix.Apply(lexer.Tokenize(current), plans)
		sum.Applied += len(res.Applied)
		if len(res.Applied) == 0 {
			sum.Skipped += len(res.Skipped)
			break
		}
		current = []byte(res.Source)
	}
	return current, sum, nil
}

// Fix applies fixes to filename in place, or prints them in dry-run mode.
func (f *Fixer) Fix(linter SourceLinter, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if f.DryRun {
		issues, err := linter.RunSource(content)
		if err != nil {
			return fmt.Errorf("failed to lint file: %w", err)
		}
		found := false
		for _, issue := range issues {
			if !f.wants(issue) {
				continue
			}
			found = true
			fmt.Fprintf(f.Out, "Would fix issue in %s at line %d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Fprintf(f.Out, "Suggestion:\n%s\n", issue.Suggestion)
		}
		if !found {
			return ErrNoFixes
		}
		return nil
	}

	fixed, sum, err := f.FixSource(linter, content)
	if err != nil {
		return err
	}
	if sum.Applied == 0 {
		return ErrNoFixes
	}

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	f.logger.Debug("fixed file",
		zap.String("file", filename),
		zap.Int("applied", sum.Applied),
		zap.Int("passes", sum.Passes),
		zap.Int("remaining", len(sum.Remaining)))
	fmt.Fprintf(f.Out, "Fixed %d issue(s) in %s\n", sum.Applied, filename)
	return nil
}
