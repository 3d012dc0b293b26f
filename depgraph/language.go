package depgraph

import (
	"path/filepath"
	"strings"
)

// UnknownLanguage tags files whose extension has no language mapping.
const UnknownLanguage = "unknown"

var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".go":   "go",
	".rs":   "rust",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".c":    "c",
	".h":    "c",
	".rb":   "ruby",
	".php":  "php",
}

// LanguageForPath returns the language tag for filePath's extension.
func LanguageForPath(filePath string) string {
	if language, ok := extensionLanguages[strings.ToLower(filepath.Ext(filePath))]; ok {
		return language
	}
	return UnknownLanguage
}
