package langsupport

// Module describes pluggable language support.
type Module interface {
	Name() string
	// Language is the lowercase tag reported on graph nodes.
	Language() string
	Extensions() []string
	Maturity() MaturityLevel
	NewSourceParser(opts ParserOptions) SourceParser
	IsTestFile(filePath string) bool
}

// ParserOptions configures import resolution for a language.
type ParserOptions struct {
	// SourceRoots are repository-relative directories that absolute imports are resolved against.
	SourceRoots []string
}
