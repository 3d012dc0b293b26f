package python

import (
	"testing"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	"github.com/stretchr/testify/assert"
)

func TestResolvePythonImport(t *testing.T) {
	index := langsupport.NewFileSet([]string{
		"a.py",
		"b.py",
		"pkg/__init__.py",
		"pkg/core.py",
		"pkg/sub/__init__.py",
		"pkg/sub/helpers.py",
		"src/lib/__init__.py",
		"src/lib/util.py",
		"tools/run.py",
		"tools/local.py",
	})
	resolver := newImportResolver(nil)

	tests := []struct {
		name     string
		fromFile string
		imp      langsupport.Import
		expected []string
	}{
		{"root module", "a.py", langsupport.Import{Token: "b"}, []string{"b.py"}},
		{"dotted module", "pkg/core.py", langsupport.Import{Token: "pkg.sub.helpers"}, []string{"pkg/sub/helpers.py"}},
		{"package init", "pkg/core.py", langsupport.Import{Token: "pkg.sub"}, []string{"pkg/sub/__init__.py"}},
		{"src source root", "a.py", langsupport.Import{Token: "lib.util"}, []string{"src/lib/util.py"}},
		{"directory relative", "tools/run.py", langsupport.Import{Token: "local"}, []string{"tools/local.py"}},
		{
			"from import names as submodules",
			"pkg/core.py",
			langsupport.Import{Token: "pkg", Names: []string{"core", "sub"}},
			[]string{"pkg/__init__.py", "pkg/sub/__init__.py"},
		},
		{
			"current package",
			"pkg/sub/helpers.py",
			langsupport.Import{Token: ".", Level: 1, Names: []string{"helpers"}},
			[]string{"pkg/sub/__init__.py"},
		},
		{"parent module", "pkg/sub/helpers.py", langsupport.Import{Token: "..core", Level: 2}, []string{"pkg/core.py"}},
		{
			"parent package names",
			"pkg/sub/helpers.py",
			langsupport.Import{Token: "..", Level: 2, Names: []string{"core"}},
			[]string{"pkg/__init__.py", "pkg/core.py"},
		},
		{"relative does not leave root", "a.py", langsupport.Import{Token: "..b", Level: 2}, nil},
		{"relative matches only its directory", "tools/run.py", langsupport.Import{Token: ".b", Level: 1}, nil},
		{"self import dropped", "a.py", langsupport.Import{Token: "a"}, nil},
		{"case sensitive", "a.py", langsupport.Import{Token: "B"}, nil},
		{"external", "a.py", langsupport.Import{Token: "os"}, nil},
		{"future", "a.py", langsupport.Import{Token: "__future__", Names: []string{"annotations"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := resolver.ResolvePythonImport(tt.fromFile, tt.imp, index)

			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestResolvePythonImport_CustomSourceRoots(t *testing.T) {
	index := langsupport.NewFileSet([]string{"lib/app/models.py", "src/app/models.py"})

	resolved := newImportResolver([]string{"lib"}).ResolvePythonImport("main.py", langsupport.Import{Token: "app.models"}, index)

	assert.Equal(t, []string{"lib/app/models.py"}, resolved)
}

func TestResolvePythonImport_RootWinsOverDirectory(t *testing.T) {
	index := langsupport.NewFileSet([]string{"utils.py", "pkg/utils.py", "pkg/app.py"})

	resolved := newImportResolver(nil).ResolvePythonImport("pkg/app.py", langsupport.Import{Token: "utils"}, index)

	assert.Equal(t, []string{"utils.py"}, resolved)
}
