// Package internal holds the lint engine for PHP closing-brace annotations.
//
// A source file is tokenized once by the lexer. Each registered rule then
// resolves the constructs that close with a brace, decides whether an
// annotation such as "// end class" is required, and compares the comment
// following the closing brace against it. Violations become Issues that
// may carry an edit plan for the fixer.
//
// Engine runs the rules concurrently, drops issues silenced by nolint
// comments and, when a Cache is attached, reuses results for files whose
// content and rule configuration are unchanged.
//
// Usage:
//
//	engine, err := internal.NewEngine("path/to/root/dir", nil)
//	if err != nil {
//	    // handle error
//	}
//	issues, err := engine.Run("path/to/file.php")
package internal
