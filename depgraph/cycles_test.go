package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCycles(t *testing.T) {
	ids := []string{"a.py", "b.py", "c.py", "d.py", "e.py"}
	edges := []DependencyEdge{
		{Source: "a.py", Target: "b.py", Weight: 1},
		{Source: "b.py", Target: "a.py", Weight: 1},
		{Source: "c.py", Target: "d.py", Weight: 1},
		{Source: "d.py", Target: "e.py", Weight: 1},
		{Source: "e.py", Target: "c.py", Weight: 1},
	}

	assert.Equal(t, [][]string{{"a.py", "b.py"}, {"c.py", "d.py", "e.py"}}, findCycles(ids, edges))
}

func TestFindCycles_Acyclic(t *testing.T) {
	ids := []string{"a.py", "b.py"}
	edges := []DependencyEdge{{Source: "a.py", Target: "b.py", Weight: 1}}

	assert.Empty(t, findCycles(ids, edges))
}
