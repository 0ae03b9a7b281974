package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/endlint/formatter"
	"github.com/gnoverse/endlint/internal"
	tt "github.com/gnoverse/endlint/internal/types"
	"github.com/gnoverse/endlint/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJsonOutput bool
	outPath        string
	cacheDir       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the normal lint process",
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

		var cache *internal.Cache
		if cacheDir != "" {
			cache, err = internal.NewCache(cacheDir)
			if err != nil {
				exitWithError("Failed to open cache", err)
			}
			engine.SetCache(cache)
		}

		issues, err := lint.ProcessFiles(ctx, logger, engine, args, lint.ProcessFile)
		if err != nil {
			exitWithError("Error processing files", err)
		}

		// saved before printing since a non-empty report exits non-zero
		if cache != nil {
			if err := cache.Save(); err != nil {
				logger.Warn("Failed to save cache", zap.Error(err))
			}
		}

		if err := printIssues(os.Stdout, issues, lintJsonOutput, outPath); err != nil {
			exitWithError("Error printing issues", err)
		}
		if len(issues) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	addEngineFlags(lintCmd)
	lintCmd.Flags().BoolVar(&lintJsonOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the lint result cache (disabled when empty)")
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	cmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// newEngine loads the configuration and applies the ignore flags.
func newEngine() (*internal.Engine, error) {
	engine, err := lint.New(".", cfgFile)
	if err != nil {
		return nil, err
	}
	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(ignorePaths) {
		engine.IgnorePath(path)
	}
	return engine, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func groupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)
	return issuesByFile, sortedFiles
}

func printIssues(w io.Writer, issues []tt.Issue, isJson bool, jsonOutput string) error {
	issuesByFile, sortedFiles := groupByFile(issues)

	if !isJson {
		for _, filename := range sortedFiles {
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
			fmt.Fprintln(w, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
		}
		return nil
	}

	d, err := json.Marshal(issuesByFile)
	if err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
