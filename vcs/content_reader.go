package vcs

import (
	"bytes"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ContentReader is a function that reads file content given a file path.
// This allows the caller to control how files are read (filesystem, in-memory fixtures, etc.)
type ContentReader func(filePath string) ([]byte, error)

// FilesystemContentReader reads files relative to root. Absolute paths are read as-is.
// Content that is not valid UTF-8 is decoded as Latin-1 so parsing never sees broken runes.
func FilesystemContentReader(root string) ContentReader {
	return func(filePath string) ([]byte, error) {
		path := filePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, filepath.FromSlash(filePath))
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(content) {
			content = latin1ToUTF8(content)
		}
		return content, nil
	}
}

// MapContentReader serves file content from memory, keyed by slash path.
func MapContentReader(files map[string]string) ContentReader {
	return func(filePath string) ([]byte, error) {
		content, ok := files[filepath.ToSlash(filePath)]
		if !ok {
			return nil, &os.PathError{Op: "open", Path: filePath, Err: os.ErrNotExist}
		}
		return []byte(content), nil
	}
}

func latin1ToUTF8(content []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(content) * 2)
	for _, b := range content {
		buf.WriteRune(rune(b))
	}
	return buf.Bytes()
}
