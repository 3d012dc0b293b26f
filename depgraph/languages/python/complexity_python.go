package python

import (
	"bytes"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	sitter "github.com/smacker/go-tree-sitter"
)

// decisionPoints are node types that add one path through the file.
var decisionPoints = map[string]bool{
	"if_statement":           true,
	"elif_clause":            true,
	"for_statement":          true,
	"while_statement":        true,
	"except_clause":          true,
	"except_group_clause":    true,
	"conditional_expression": true,
	"boolean_operator":       true,
	"for_in_clause":          true,
	"if_clause":              true,
	"assert_statement":       true,
	"case_clause":            true,
}

// ScorePython returns the whole-file cyclomatic complexity and the count of lines carrying code.
func ScorePython(sourceCode []byte) langsupport.Score {
	tree, err := parseTree(sourceCode)
	if err != nil {
		return langsupport.Score{LinesOfCode: countNonBlankLines(sourceCode)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return langsupport.Score{LinesOfCode: countNonBlankLines(sourceCode)}
	}

	return langsupport.Score{
		Complexity:  float64(1 + countDecisionPoints(root)),
		LinesOfCode: countCodeLines(root),
	}
}

func countDecisionPoints(node *sitter.Node) int {
	if node == nil {
		return 0
	}

	count := 0
	nodeType := node.Type()
	if decisionPoints[nodeType] {
		count++
	}
	// for/while/try accept an else branch
	if nodeType == "else_clause" {
		if parent := node.Parent(); parent != nil {
			switch parent.Type() {
			case "for_statement", "while_statement", "try_statement":
				count++
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		count += countDecisionPoints(node.Child(i))
	}
	return count
}

// countCodeLines counts rows covered by non-comment tokens. Docstrings are skipped.
func countCodeLines(root *sitter.Node) int {
	rows := make(map[uint32]struct{})

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch {
		case n.Type() == "comment":
			return
		case isDocstring(n):
			return
		case n.Type() == "string" || n.Type() == "concatenated_string" || n.ChildCount() == 0:
			if n.EndByte() == n.StartByte() {
				return
			}
			for row := n.StartPoint().Row; row <= n.EndPoint().Row; row++ {
				rows[row] = struct{}{}
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		walk(root.Child(i))
	}

	return len(rows)
}

// isDocstring reports whether n is a bare string statement opening a module, class or function body.
func isDocstring(n *sitter.Node) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	if n.NamedChild(0).Type() != "string" {
		return false
	}
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "module":
	case "block":
		grand := parent.Parent()
		if grand == nil {
			return false
		}
		if grand.Type() != "function_definition" && grand.Type() != "class_definition" {
			return false
		}
	default:
		return false
	}
	return firstStatement(parent) == n.StartByte()
}

func firstStatement(body *sitter.Node) uint32 {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		return child.StartByte()
	}
	return 0
}

func countNonBlankLines(sourceCode []byte) int {
	count := 0
	for _, line := range bytes.Split(sourceCode, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			count++
		}
	}
	return count
}
