package python

import (
	"path"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
)

const packageInitFile = "__init__.py"

var defaultSourceRoots = []string{".", "src"}

// importResolver maps Python import tokens to files of the analyzed set.
type importResolver struct {
	sourceRoots []string
}

func newImportResolver(sourceRoots []string) importResolver {
	if len(sourceRoots) == 0 {
		sourceRoots = defaultSourceRoots
	}
	return importResolver{sourceRoots: sourceRoots}
}

// ResolvePythonImport returns the files imp refers to, at most once each and never fromFile itself.
// fromFile and the returned paths are repository-relative slash paths.
func (r importResolver) ResolvePythonImport(fromFile string, imp langsupport.Import, index langsupport.Index) []string {
	var resolved []string
	seen := map[string]bool{fromFile: true}
	add := func(target string) {
		if target == "" || seen[target] {
			return
		}
		seen[target] = true
		resolved = append(resolved, target)
	}

	modulePath := strings.ReplaceAll(strings.TrimLeft(imp.Token, "."), ".", "/")

	if imp.Level > 0 {
		baseDir, ok := relativeBaseDir(fromFile, imp.Level)
		if !ok {
			return nil
		}
		add(resolveModuleIn(baseDir, modulePath, index))
		for _, name := range imp.Names {
			add(resolveModuleIn(baseDir, joinModule(modulePath, name), index))
		}
		return resolved
	}

	if modulePath == "" {
		return nil
	}
	add(r.resolveAbsolute(fromFile, modulePath, index))
	for _, name := range imp.Names {
		add(r.resolveAbsolute(fromFile, joinModule(modulePath, name), index))
	}
	return resolved
}

// resolveAbsolute checks each source root first, then the importing file's directory.
func (r importResolver) resolveAbsolute(fromFile, modulePath string, index langsupport.Index) string {
	for _, root := range r.sourceRoots {
		if target := resolveModuleIn(root, modulePath, index); target != "" {
			return target
		}
	}
	return resolveModuleIn(path.Dir(fromFile), modulePath, index)
}

// resolveModuleIn matches modulePath as a module file, then as a package, under dir.
// An empty modulePath names the package dir itself.
func resolveModuleIn(dir, modulePath string, index langsupport.Index) string {
	if modulePath == "" {
		candidate := path.Join(dir, packageInitFile)
		if index.Contains(candidate) {
			return candidate
		}
		return ""
	}

	fileCandidate := path.Join(dir, modulePath) + ".py"
	if index.Contains(fileCandidate) {
		return fileCandidate
	}
	packageCandidate := path.Join(dir, modulePath, packageInitFile)
	if index.Contains(packageCandidate) {
		return packageCandidate
	}
	return ""
}

// relativeBaseDir walks level-1 directories up from the directory holding fromFile.
// It fails when the walk would leave the repository root.
func relativeBaseDir(fromFile string, level int) (string, bool) {
	dir := path.Dir(fromFile)
	for i := 0; i < level-1; i++ {
		if dir == "." || dir == "/" || dir == "" {
			return "", false
		}
		dir = path.Dir(dir)
	}
	return dir, true
}

func joinModule(modulePath, name string) string {
	name = strings.ReplaceAll(name, ".", "/")
	if modulePath == "" {
		return name
	}
	return modulePath + "/" + name
}
