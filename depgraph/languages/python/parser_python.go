package python

import (
	"context"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const futureModule = "__future__"

// parseTree parses Python source. The caller must close the returned tree.
func parseTree(sourceCode []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Python code: %w", err)
	}
	return tree, nil
}

// ParsePythonImports parses Python source code and extracts imports in source order.
// Source with syntax errors yields a *langsupport.ParseError and no imports.
func ParsePythonImports(sourceCode []byte) ([]langsupport.Import, error) {
	tree, err := parseTree(sourceCode)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &langsupport.ParseError{Line: firstErrorLine(root), Err: langsupport.ErrSyntax}
	}

	return extractImportsFromTree(root, sourceCode), nil
}

// extractImportsFromTree walks the AST and extracts imports.
func extractImportsFromTree(rootNode *sitter.Node, sourceCode []byte) []langsupport.Import {
	var imports []langsupport.Import

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		line := int(n.StartPoint().Row) + 1
		switch n.Type() {
		case "import_statement":
			for _, module := range extractImportStatementModules(n, sourceCode) {
				imports = append(imports, langsupport.Import{Token: module, Line: line})
			}
			return
		case "import_from_statement":
			if imp, ok := extractImportFrom(n, sourceCode); ok {
				imp.Line = line
				imports = append(imports, imp)
			}
			return
		case "future_import_statement":
			imports = append(imports, langsupport.Import{
				Token: futureModule,
				Names: extractImportedNames(n, sourceCode),
				Line:  line,
			})
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(rootNode)
	return imports
}

func extractImportStatementModules(node *sitter.Node, sourceCode []byte) []string {
	var modules []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		module := extractModuleName(child, sourceCode)
		if module != "" {
			modules = append(modules, module)
		}
	}
	return modules
}

// extractImportFrom reads `from <module> import <names>`. The module part is
// either a dotted_name or a relative_import made of an import_prefix and an
// optional dotted_name.
func extractImportFrom(node *sitter.Node, sourceCode []byte) (langsupport.Import, bool) {
	var imp langsupport.Import

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "import" {
			break
		}
		switch child.Type() {
		case "dotted_name":
			imp.Token = compactDotted(child.Content(sourceCode))
		case "relative_import":
			imp.Level, imp.Token = relativeModule(child, sourceCode)
		}
	}

	if imp.Token == "" {
		return imp, false
	}
	imp.Names = extractImportedNames(node, sourceCode)
	return imp, true
}

func relativeModule(node *sitter.Node, sourceCode []byte) (int, string) {
	level := 0
	module := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_prefix":
			level = strings.Count(child.Content(sourceCode), ".")
		case "dotted_name":
			module = compactDotted(child.Content(sourceCode))
		}
	}
	return level, strings.Repeat(".", level) + module
}

// extractImportedNames returns the names after the import keyword of a from-import.
// Wildcard imports contribute no names.
func extractImportedNames(node *sitter.Node, sourceCode []byte) []string {
	var names []string
	seenImport := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}
		if name := extractModuleName(child, sourceCode); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func extractModuleName(node *sitter.Node, sourceCode []byte) string {
	switch node.Type() {
	case "dotted_name", "identifier":
		return compactDotted(node.Content(sourceCode))
	case "aliased_import":
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			if child.Type() == "dotted_name" || child.Type() == "identifier" {
				return compactDotted(child.Content(sourceCode))
			}
		}
	}
	return ""
}

// compactDotted drops whitespace the grammar allows around dots, e.g. "a . b".
func compactDotted(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node.
func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}
