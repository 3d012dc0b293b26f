package registry

import (
	"path/filepath"

	"github.com/LegacyCodeHQ/codegraph/depgraph/langsupport"
	"github.com/LegacyCodeHQ/codegraph/depgraph/languages/python"
)

var modules = []langsupport.Module{
	python.Module{},
}

// Modules returns supported language modules in deterministic order.
func Modules() []langsupport.Module {
	return append([]langsupport.Module(nil), modules...)
}

// ModuleForExtension returns the module registered for the provided extension.
func ModuleForExtension(ext string) (langsupport.Module, bool) {
	for _, module := range modules {
		for _, moduleExt := range module.Extensions() {
			if moduleExt == ext {
				return module, true
			}
		}
	}

	return nil, false
}

// SupportedExtensions lists every registered extension.
func SupportedExtensions() []string {
	var extensions []string
	for _, module := range modules {
		extensions = append(extensions, module.Extensions()...)
	}
	return extensions
}

// IsTestFile reports whether the module owning filePath's extension classifies it as a test.
func IsTestFile(filePath string) bool {
	module, ok := ModuleForExtension(filepath.Ext(filePath))
	return ok && module.IsTestFile(filePath)
}

// Language summarizes a registered module for display.
type Language struct {
	Name       string
	Extensions []string
	Maturity   langsupport.MaturityLevel
}

// SupportedLanguages returns display metadata for every registered module.
func SupportedLanguages() []Language {
	languages := make([]Language, 0, len(modules))
	for _, module := range modules {
		languages = append(languages, Language{
			Name:       module.Name(),
			Extensions: append([]string(nil), module.Extensions()...),
			Maturity:   module.Maturity(),
		})
	}
	return languages
}
