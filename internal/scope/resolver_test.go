package scope_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/endlint/internal/lexer"
	"github.com/gnoverse/endlint/internal/scope"
)

func lines(n int) string {
	return strings.Repeat("    $x++;\n", n)
}

func TestResolveAllDeclarations(t *testing.T) {
	t.Parallel()

	src := `<?php
namespace App;

interface Shape {
    public function area(): float;
}

abstract class Base implements Shape {
    abstract protected function name();

    public static function &make(array $opts = []) {
        $f = function ($x) use ($opts) {
            return $x;
        };
        return new class {
        };
    }
}

trait Greets {
    function hello() {
    }
}

enum Suit: string {
    case Hearts = 'H';
}
`
	s := lexer.Tokenize([]byte(src))
	records := scope.ResolveAll(s)

	type want struct {
		kind  scope.Kind
		name  string
		start int
		end   int
	}
	var got []want
	for _, r := range records {
		got = append(got, want{r.Kind, r.Name, r.StartLine, r.EndLine})
	}

	assert.Equal(t, []want{
		{scope.InterfaceDecl, "", 4, 6},
		{scope.FunctionDecl, "", 12, 14},
		{scope.FunctionDecl, "make", 11, 17},
		{scope.ClassDecl, "", 8, 18},
		{scope.FunctionDecl, "hello", 21, 22},
		{scope.TraitDecl, "", 20, 23},
		{scope.EnumDecl, "", 25, 27},
	}, got)
}

func TestResolveFunctionFlags(t *testing.T) {
	t.Parallel()

	src := "<?php\ninterface I {\n    function a() {\n    }\n}\nclass C {\n    final public function b() {\n    }\n}\n"
	records := scope.ResolveAll(lexer.Tokenize([]byte(src)))
	require.Len(t, records, 4)

	a := records[0]
	assert.Equal(t, "a", a.Name)
	assert.True(t, a.InInterface)
	assert.False(t, a.Abstract)

	b := records[2]
	assert.Equal(t, "b", b.Name)
	assert.False(t, b.InInterface)
	assert.False(t, b.Abstract)
}

func TestResolveIfChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		records int
		branch  bool
		endLine int
	}{
		{
			name:    "single if",
			src:     "<?php\nif ($a) {\n" + lines(3) + "}\n",
			records: 1,
			endLine: 6,
		},
		{
			name:    "if elseif else",
			src:     "<?php\nif ($a) {\n} elseif ($b) {\n} else {\n}\n",
			records: 1,
			branch:  true,
			endLine: 5,
		},
		{
			name:    "else if two tokens",
			src:     "<?php\nif ($a) {\n} else if ($b) {\n} else {\n}\n",
			records: 1,
			branch:  true,
			endLine: 5,
		},
		{
			name:    "comment between links",
			src:     "<?php\nif ($a) {\n} // first\nelse {\n}\n",
			records: 1,
			branch:  true,
			endLine: 5,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := lexer.Tokenize([]byte(tc.src))
			records := scope.ResolveAll(s)
			require.Len(t, records, tc.records)

			r := records[0]
			assert.Equal(t, scope.ControlBlock, r.Kind)
			assert.Equal(t, "if", r.Keyword)
			assert.Equal(t, tc.branch, r.ElseBranch)
			assert.Equal(t, tc.endLine, r.EndLine)
			assert.Equal(t, 2, r.StartLine)
			assert.Equal(t, r.CloseIndex, r.AnchorIndex)
		})
	}
}

func TestResolveBranchClosersYieldNothing(t *testing.T) {
	t.Parallel()

	s := lexer.Tokenize([]byte("<?php\nif ($a) {\n} else {\n}\n"))
	var closers []int
	for i := 0; i < s.Len(); i++ {
		if s.Text(i) == "}" {
			closers = append(closers, i)
		}
	}
	require.Len(t, closers, 2)

	// the if's own closer resolves to the whole chain
	r, ok := scope.Resolve(s, closers[0])
	require.True(t, ok)
	assert.Equal(t, closers[1], r.CloseIndex)

	_, ok = scope.Resolve(s, closers[1])
	assert.False(t, ok)
}

func TestResolveTryChain(t *testing.T) {
	t.Parallel()

	src := "<?php\ntry {\n" + lines(10) + "} catch (E $e) {\n" + lines(10) + "} finally {\n}\n"
	records := scope.ResolveAll(lexer.Tokenize([]byte(src)))
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "try", r.Keyword)
	assert.True(t, r.ElseBranch)
	assert.Equal(t, 2, r.StartLine)
	assert.Equal(t, 25, r.EndLine)
	assert.Equal(t, 23, r.Span())
}

func TestResolveMatchAnchor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		anchor string
	}{
		{"semicolon", "<?php\n$x = match ($a) {\n    1 => 2,\n};\n", ";"},
		{"comma", "<?php\nf(match ($a) {\n    1 => 2,\n}, 3);\n", ","},
		{"spaced semicolon", "<?php\n$x = match ($a) {\n} ;\n", ";"},
		{"no terminator", "<?php\nreturn match ($a) {\n} + 1;\n", "}"},
		{"comment blocks terminator", "<?php\n$x = match ($a) {\n} /* c */;\n", "}"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := lexer.Tokenize([]byte(tc.src))
			records := scope.ResolveAll(s)
			require.Len(t, records, 1)
			r := records[0]
			assert.Equal(t, "match", r.Keyword)
			assert.Equal(t, tc.anchor, s.Text(r.AnchorIndex))
			assert.Equal(t, "}", s.Text(r.CloseIndex))
		})
	}
}

func TestResolveLoops(t *testing.T) {
	t.Parallel()

	src := "<?php\nforeach ($a as $b) {\n}\nfor ($i = 0; $i < 3; $i++) {\n}\nwhile ($c) {\n}\nswitch ($d) {\n}\ndo {\n} while ($e);\n"
	records := scope.ResolveAll(lexer.Tokenize([]byte(src)))

	var keywords []string
	for _, r := range records {
		keywords = append(keywords, r.Keyword)
	}
	// do-while bodies are not annotated
	assert.Equal(t, []string{"foreach", "for", "while", "switch"}, keywords)
}

func TestResolveBracedCase(t *testing.T) {
	t.Parallel()

	src := "<?php\nswitch ($a) {\n    Case 1: {\n        f();\n    }\n    case 2:\n        g();\n}\n"
	s := lexer.Tokenize([]byte(src))
	records := scope.ResolveAll(s)
	require.Len(t, records, 2)

	assert.Equal(t, "case", records[0].Keyword)
	assert.Equal(t, "Case", records[0].KeywordText)
	assert.Equal(t, 3, records[0].StartLine)
	assert.Equal(t, 5, records[0].EndLine)
	assert.Equal(t, "switch", records[1].Keyword)
}

func TestResolveRejectsNonClosers(t *testing.T) {
	t.Parallel()

	s := lexer.Tokenize([]byte("<?php\n$a = [1];\n{ }\n"))
	for i := 0; i < s.Len(); i++ {
		_, ok := scope.Resolve(s, i)
		assert.False(t, ok, "token %d %q", i, s.Text(i))
	}
	_, ok := scope.Resolve(s, -1)
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "class", scope.ClassDecl.String())
	assert.Equal(t, "control", scope.ControlBlock.String())
	assert.Equal(t, "unknown", scope.Kind(0).String())
	assert.True(t, scope.EnumDecl.IsDeclaration())
	assert.False(t, scope.ControlBlock.IsDeclaration())
}
