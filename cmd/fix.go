package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/endlint/internal"
	"github.com/gnoverse/endlint/internal/fixer"
	"github.com/gnoverse/endlint/lint"
)

var (
	dryRun   bool
	onlyFlag string
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			exitWithError("Failed to initialize lint engine", err)
		}

		f := fixer.New(dryRun, splitList(onlyFlag), logger)
		if err := runAutoFix(ctx, logger, engine, f, args); err != nil {
			exitWithError("Error fixing files", err)
		}
	},
}

func init() {
	addEngineFlags(fixCmd)
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().StringVar(&onlyFlag, "only", "", "Comma-separated violation codes to fix (Missing, Misplaced, IncorrectSpacing, IncorrectText, Incorrect)")
}

// runAutoFix collects the files with fixable issues and fixes each of them.
func runAutoFix(ctx context.Context, logger *zap.Logger, engine *internal.Engine, f *fixer.Fixer, paths []string) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if err != nil {
		return err
	}

	issuesByFile, sortedFiles := groupByFile(issues)
	for _, filename := range sortedFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		fixable := false
		for _, issue := range issuesByFile[filename] {
			if issue.Fixable() {
				fixable = true
				break
			}
		}
		if !fixable {
			continue
		}

		err := f.Fix(engine, filename)
		switch {
		case errors.Is(err, fixer.ErrNoFixes):
			logger.Debug("nothing to fix", zap.String("file", filename))
		case err != nil:
			logger.Error("error fixing issues", zap.String("file", filename), zap.Error(err))
		}
	}
	return nil
}
