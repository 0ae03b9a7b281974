package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/endlint/internal/lints"
	"github.com/gnoverse/endlint/internal/types"
)

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

func writeTestFile(t testing.TB, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func longIf(lines int) string {
	return "if ($a) {\n" + strings.Repeat("    $x++;\n", lines) + "}\n"
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(createTempDir(t, "engine_test"), nil)
	require.NoError(t, err)
	assert.Len(t, engine.rules, 2)
	assert.Equal(t, []string{lints.DeclarationCommentRule, lints.LongConditionCommentRule}, RuleNames())
}

func TestNewEngineRejectsBadFormat(t *testing.T) {
	t.Parallel()

	_, err := NewEngine("", map[string]types.ConfigRule{
		lints.LongConditionCommentRule: {CommentFormat: "end %s %s"},
	})
	assert.Error(t, err)
}

func TestNewEngineRejectsUnstableAnnotations(t *testing.T) {
	t.Parallel()

	empty, spaced, block := "", " //", "/* "
	tests := []struct {
		name string
		rule types.ConfigRule
	}{
		{"trailing space in format", types.ConfigRule{CommentFormat: "end %s "}},
		{"empty prefix", types.ConfigRule{CommentPrefix: &empty}},
		{"prefix with leading space", types.ConfigRule{CommentPrefix: &spaced}},
		{"unterminated block comment", types.ConfigRule{CommentPrefix: &block}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine("", map[string]types.ConfigRule{lints.DeclarationCommentRule: tc.rule})
			assert.Error(t, err)
		})
	}

	_, err := NewEngine("", map[string]types.ConfigRule{
		lints.DeclarationCommentRule: {CommentPrefix: &block, CommentFormat: "end %s */"},
	})
	assert.NoError(t, err)
}

func TestEngine_IgnoreRule(t *testing.T) {
	t.Parallel()
	engine := &Engine{}
	engine.IgnoreRule("test_rule")

	assert.True(t, engine.ignoredRules["test_rule"])
}

func TestEngineRunSource(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	src := "<?php\nclass Foo {\n    function bar() {\n" + longIf(20) + "    }\n}\n"
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 3)

	// ordered by position, inner constructs first
	assert.Equal(t, lints.LongConditionCommentRule, issues[0].Rule)
	assert.Equal(t, `expected "// end if" after closing brace`, issues[0].Message)
	assert.Equal(t, lints.DeclarationCommentRule, issues[1].Rule)
	assert.Equal(t, `expected "// end bar()" after closing brace`, issues[1].Message)
	assert.Equal(t, `expected "// end class" after closing brace`, issues[2].Message)
	for _, issue := range issues {
		assert.True(t, issue.Fixable())
		assert.Equal(t, "Missing", issue.Code)
		assert.Equal(t, types.SeverityError, issue.Severity)
	}
}

func TestEngineRuleConfiguration(t *testing.T) {
	t.Parallel()

	prefix := "# "
	spacing := 2
	engine, err := NewEngine("", map[string]types.ConfigRule{
		lints.LongConditionCommentRule: {
			Severity:      types.SeverityWarning,
			LineLimit:     3,
			CommentFormat: "eof %s",
			CommentPrefix: &prefix,
			Spacing:       &spacing,
		},
		lints.DeclarationCommentRule: {Severity: types.SeverityOff},
		"no-such-rule":               {Severity: types.SeverityInfo},
	})
	require.NoError(t, err)

	src := "<?php\nclass Foo {\n}\n" + longIf(3)
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, lints.LongConditionCommentRule, issue.Rule)
	assert.Equal(t, types.SeverityWarning, issue.Severity)
	assert.Equal(t, "}  # eof if", issue.Suggestion)
}

func TestEngineKeepsKeywordCase(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	src := "<?php\nIF ($a) {\n" + strings.Repeat("    $x++;\n", 20) + "}\n"
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "} // end IF", issues[0].Suggestion)
}

func TestEngineNolint(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil)
	require.NoError(t, err)

	src := `<?php
$a = 1;
//nolint:closing-declaration-comment
class Foo {
}
class Bar {
} //nolint
class Baz {
}
`
	issues, err := engine.RunSource([]byte(src))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 9, issues[0].Start.Line)
}

func TestEngineRunFile(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_run")
	path := filepath.Join(dir, "foo.php")
	writeTestFile(t, path, "<?php\nclass Foo {\n}\n")

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)

	issues, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, path, issues[0].Filename)
	assert.Equal(t, path, issues[0].Start.Filename)
	assert.Equal(t, 3, issues[0].Start.Line)
	assert.Equal(t, 1, issues[0].Start.Column)

	_, err = engine.Run(filepath.Join(dir, "missing.php"))
	assert.Error(t, err)
}

func TestEngineIgnorePath(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_ignore")
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0o755))

	files := map[string]string{
		filepath.Join(vendor, "lib.php"): "<?php\nclass Lib {\n}\n",
		filepath.Join(dir, "gen.php"):    "<?php\nclass Gen {\n}\n",
		filepath.Join(dir, "app.php"):    "<?php\nclass App {\n}\n",
	}
	for path, content := range files {
		writeTestFile(t, path, content)
	}

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)
	engine.IgnorePath(vendor)
	engine.IgnorePath("gen.*")
	engine.IgnorePath("")

	for path := range files {
		issues, err := engine.Run(path)
		require.NoError(t, err)
		if filepath.Base(path) == "app.php" {
			assert.Len(t, issues, 1, path)
		} else {
			assert.Empty(t, issues, path)
		}
	}
}

func TestEngineUsesCache(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "engine_cache")
	path := filepath.Join(dir, "foo.php")
	writeTestFile(t, path, "<?php\nclass Foo {\n}\n")

	cache, err := NewCache(filepath.Join(dir, ".cache"))
	require.NoError(t, err)

	engine, err := NewEngine(dir, nil)
	require.NoError(t, err)
	engine.SetCache(cache)

	first, err := engine.Run(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := engine.Run(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a different configuration does not reuse the entry
	other, err := NewEngine(dir, map[string]types.ConfigRule{
		lints.DeclarationCommentRule: {Severity: types.SeverityOff},
	})
	require.NoError(t, err)
	other.SetCache(cache)
	issues, err := other.Run(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.NotEqual(t, engine.ConfigHash(), other.ConfigHash())
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()

	dir := createTempDir(t, "source")
	path := filepath.Join(dir, "a.php")
	writeTestFile(t, path, "<?php\n\tclass A {}\n")

	sc, err := ReadSourceCode(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"<?php", "\tclass A {}", ""}, sc.Lines)

	_, err = ReadSourceCode(filepath.Join(dir, "none.php"))
	assert.Error(t, err)
}

func BenchmarkRunSource(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<?php\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "class C%d {\n    function f() {\n%s    }\n}\n", i, longIf(25))
	}
	src := []byte(sb.String())

	engine, err := NewEngine("", nil)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.RunSource(src)
	}
}
