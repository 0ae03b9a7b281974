package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/gnoverse/endlint/internal/check"
	"github.com/gnoverse/endlint/internal/lexer"
	"github.com/gnoverse/endlint/internal/nolint"
	"github.com/gnoverse/endlint/internal/policy"
	"github.com/gnoverse/endlint/internal/token"
	"github.com/gnoverse/endlint/internal/trie"
	tt "github.com/gnoverse/endlint/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	rootDir      string
	ignoredRules map[string]bool
	ignoredGlobs []string
	ignoredDirs  *trie.Trie
	rules        map[string]LintRule
	configHash   uint64
	cache        *Cache
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule) (*Engine, error) {
	engine := &Engine{rootDir: rootDir}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}
	engine.configHash = hashRules(rules)
	return engine, nil
}

// Define the ruleConstructor type
type ruleConstructor func() LintRule

// Define the ruleMap type
type ruleMap map[string]ruleConstructor

// Create a map to hold the mappings of rule names to their constructors
var allRuleConstructors = ruleMap{
	"closing-declaration-comment":    NewDeclarationCommentRule,
	"long-condition-closing-comment": NewLongConditionCommentRule,
}

// RuleNames lists every known rule in sorted order.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			// Unknown rule, continue to the next one
			continue
		}
		if err := validateAnnotationConfig(rule); err != nil {
			return fmt.Errorf("rule %s: %w", key, err)
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
		if c, ok := r.(ConfigurableRule); ok {
			c.Configure(rule)
		}
	}
	return nil
}

// validateAnnotationConfig checks the annotation the rule would write once
// the configured prefix and format replace the defaults.
func validateAnnotationConfig(rule tt.ConfigRule) error {
	prefix, format := check.DefaultPrefix, policy.DefaultCommentFormat
	if rule.CommentPrefix != nil {
		prefix = *rule.CommentPrefix
	}
	if rule.CommentFormat != "" {
		format = rule.CommentFormat
	}
	return check.ValidateAnnotation(prefix, format)
}

func (e *Engine) registerDefaultRules() {
	for key, newRuleCstr := range allRuleConstructors {
		newRule := newRuleCstr()
		if newRule.Severity() != tt.SeverityOff {
			e.rules[key] = newRule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// SetCache enables result caching for Run.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// ConfigHash identifies the effective rule configuration.
func (e *Engine) ConfigHash() uint64 {
	return e.configHash
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache != nil {
		if issues, ok := e.cache.Get(filename, content, e.configHash); ok {
			return issues, nil
		}
	}

	issues := e.run(filename, lexer.Tokenize(content))

	if e.cache != nil {
		e.cache.Put(filename, content, e.configHash, issues)
	}
	return issues, nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.run("", lexer.Tokenize(source)), nil
}

// run fans the rules out over one immutable stream. Issues come back
// ordered by position so that fixes can be planned front to back.
func (e *Engine) run(filename string, stream *token.Stream) []tt.Issue {
	nolintMgr := nolint.ParseComments(stream)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	for _, rule := range e.rules {
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			if e.ignoredRules[r.Name()] {
				return
			}
			issues, err := r.Check(filename, stream)
			if err != nil {
				return
			}

			nolinted := filterNolintIssues(nolintMgr, issues)

			mu.Lock()
			allIssues = append(allIssues, nolinted...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	sort.SliceStable(allIssues, func(i, j int) bool {
		if allIssues[i].Start.Offset != allIssues[j].Start.Offset {
			return allIssues[i].Start.Offset < allIssues[j].Start.Offset
		}
		return allIssues[i].Rule < allIssues[j].Rule
	})
	return allIssues
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching the glob pattern or lying under the
// given directory.
func (e *Engine) IgnorePath(path string) {
	if path == "" {
		return
	}
	clean := filepath.Clean(path)
	if strings.ContainsAny(clean, "*?[") {
		e.ignoredGlobs = append(e.ignoredGlobs, clean)
		return
	}
	// a bare name also matches any file base name
	if !strings.ContainsRune(clean, filepath.Separator) {
		e.ignoredGlobs = append(e.ignoredGlobs, clean)
	}
	if e.ignoredDirs == nil {
		e.ignoredDirs = trie.New()
	}
	e.ignoredDirs.InsertPath(clean)
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.Clean(filename)
	if e.ignoredDirs != nil && e.ignoredDirs.ContainsPrefixOf(clean) {
		return true
	}
	for _, pattern := range e.ignoredGlobs {
		if matched, _ := filepath.Match(pattern, clean); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(clean)); matched {
			return true
		}
	}
	return false
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !mgr.IsNolint(issue.Start.Line, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// hashRules folds the rule configuration into a stable digest so that
// cached results are invalidated when the configuration changes.
func hashRules(rules map[string]tt.ConfigRule) uint64 {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		r := rules[name]
		fmt.Fprintf(&b, "%s|%s|%d|%s|", name, r.Severity, r.LineLimit, r.CommentFormat)
		if r.CommentPrefix != nil {
			fmt.Fprintf(&b, "%q", *r.CommentPrefix)
		}
		b.WriteByte('|')
		if r.Spacing != nil {
			fmt.Fprintf(&b, "%d", *r.Spacing)
		}
		b.WriteByte('\n')
	}
	return xxh3.HashString(b.String())
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}
