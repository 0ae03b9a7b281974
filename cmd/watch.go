package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoverse/endlint/formatter"
	"github.com/gnoverse/endlint/internal"
	tt "github.com/gnoverse/endlint/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint PHP files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := newEngine()
		if err != nil {
			exitWithError("Failed to initialize lint engine", err)
		}

		w, err := internal.NewWatcher(engine, logger, reportChanged)
		if err != nil {
			exitWithError("Failed to start watcher", err)
		}
		for _, dir := range args {
			if err := w.Add(dir); err != nil {
				exitWithError("Failed to watch directory", err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("watching for changes", zap.Strings("dirs", args))
		if err := w.Run(ctx); err != nil {
			exitWithError("Watcher stopped", err)
		}
	},
}

func init() {
	addEngineFlags(watchCmd)
}

func reportChanged(filename string, issues []tt.Issue) {
	if len(issues) == 0 {
		fmt.Printf("%s: ok\n", filename)
		return
	}
	sourceCode, err := internal.ReadSourceCode(filename)
	if err != nil {
		logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
		return
	}
	fmt.Println(formatter.GenerateFormattedIssue(issues, sourceCode))
}
