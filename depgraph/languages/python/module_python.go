package python

import "github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"

// Module implements langsupport.Module for Python.
type Module struct{}

func (Module) Name() string {
	return "Python"
}

func (Module) Language() string {
	return "python"
}

func (Module) Extensions() []string {
	return []string{".py"}
}

func (Module) Maturity() langsupport.MaturityLevel {
	return langsupport.MaturityActivelyTested
}

func (Module) NewSourceParser(opts langsupport.ParserOptions) langsupport.SourceParser {
	return sourceParser{resolver: newImportResolver(opts.SourceRoots)}
}

func (Module) IsTestFile(filePath string) bool {
	return IsTestFile(filePath)
}

type sourceParser struct {
	resolver importResolver
}

func (sourceParser) ParseImports(src []byte) ([]langsupport.Import, error) {
	return ParsePythonImports(src)
}

func (p sourceParser) ResolveImport(fromFile string, imp langsupport.Import, index langsupport.Index) []string {
	return p.resolver.ResolvePythonImport(fromFile, imp, index)
}

func (sourceParser) Score(src []byte) langsupport.Score {
	return ScorePython(src)
}
