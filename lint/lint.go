package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/gnoverse/endlint/internal"
	tt "github.com/gnoverse/endlint/internal/types"
	"github.com/gnoverse/endlint/scanner"
)

// DefaultConfigFiles are tried in order when no configuration path is given.
var DefaultConfigFiles = []string{".endlint.yaml", ".endlint.yml", ".endlint.toml"}

type LintEngine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// New builds an engine for rootDir. An empty configurationPath looks for one
// of DefaultConfigFiles in rootDir and falls back to the built-in defaults.
func New(rootDir string, configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(rootDir, configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(rootDir, config.Rules)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	sources [][]byte,
	processor func(LintEngine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	paths []string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allIssues, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath lints a single file or every PHP source under a directory.
// On cancellation the issues gathered so far are returned with ctx.Err().
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine LintEngine,
	path string,
	processor func(LintEngine, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.HasSourceExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := scanner.New(path, internal.HasSourceExtension).Paths()
	if err != nil {
		return nil, err
	}

	bar := newProgressBar(path, len(files))

	var mu sync.Mutex
	issues := make([]tt.Issue, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, filePath := range files {
		if gctx.Err() != nil {
			break
		}
		fp := filePath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileIssues, err := processor(engine, fp)
			if err != nil {
				// one unreadable file must not abort the whole run
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				return nil
			}
			mu.Lock()
			issues = append(issues, fileIssues...)
			mu.Unlock()
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	sortIssues(issues)
	if err == nil {
		err = ctx.Err()
	}
	return issues, err
}

// newProgressBar returns nil when stderr is not a terminal.
func newProgressBar(description string, total int) *progressbar.ProgressBar {
	if total == 0 || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.Rule < b.Rule
	})
}

func ProcessFile(engine LintEngine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine LintEngine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// Config represents the overall configuration with a name and a set of rules.
type Config struct {
	Name  string                   `yaml:"name" toml:"name"`
	Rules map[string]tt.ConfigRule `yaml:"rules" toml:"rules"`
}

// LoadConfig reads configurationPath, or the first of DefaultConfigFiles
// found in rootDir when it is empty. No file at all yields an empty Config.
func LoadConfig(rootDir, configurationPath string) (Config, error) {
	if configurationPath == "" {
		for _, name := range DefaultConfigFiles {
			candidate := filepath.Join(rootDir, name)
			if _, err := os.Stat(candidate); err == nil {
				configurationPath = candidate
				break
			}
		}
		if configurationPath == "" {
			return Config{}, nil
		}
	}
	return parseConfigurationFile(configurationPath)
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	var config Config

	data, err := os.ReadFile(configurationPath)
	if err != nil {
		return config, fmt.Errorf("error reading configuration: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configurationPath)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
		}
	}

	for name := range config.Rules {
		if !isKnownRule(name) {
			return config, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
	}
	return config, nil
}

// ErrUnknownRule is returned for configuration entries naming no rule.
var ErrUnknownRule = errors.New("unknown rule")

func isKnownRule(name string) bool {
	for _, known := range internal.RuleNames() {
		if known == name {
			return true
		}
	}
	return false
}
