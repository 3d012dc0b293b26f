package langsupport

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every ParseError.
var ErrSyntax = errors.New("syntax error")

// Import is one raw import token as written in source.
type Import struct {
	// Token is the module reference, including leading dots for relative imports.
	Token string
	// Names are the names listed by a from-import; empty for plain imports.
	Names []string
	// Level is the number of leading dots.
	Level int
	Line  int
}

// Score is the size and complexity of one file.
type Score struct {
	Complexity  float64
	LinesOfCode int
}

// Index answers membership queries against the analyzed file set.
// Paths are repository-relative and slash separated.
type Index interface {
	Contains(path string) bool
}

// FileSet is a set of repository-relative slash paths.
type FileSet map[string]struct{}

// NewFileSet returns a FileSet holding paths.
func NewFileSet(paths []string) FileSet {
	set := make(FileSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func (s FileSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// SourceParser parses, resolves and scores files of one language.
type SourceParser interface {
	// ParseImports returns raw imports in source order. Source that does not
	// parse cleanly returns a *ParseError and no imports.
	ParseImports(src []byte) ([]Import, error)
	// ResolveImport maps imp, written in fromFile, to files in index.
	// Each returned path appears at most once and never equals fromFile.
	ResolveImport(fromFile string, imp Import, index Index) []string
	// Score returns complexity and line count. Unparsable source scores zero
	// complexity and counts non-blank lines.
	Score(src []byte) Score
}

// ParseError reports source that could not be parsed cleanly.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
