package formatters

import "strings"

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatMermaid OutputFormat = "mermaid"
	OutputFormatText    OutputFormat = "text"
)

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat normalizes a user-supplied format name.
func ParseOutputFormat(format string) (OutputFormat, bool) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(format))) {
	case OutputFormatJSON:
		return OutputFormatJSON, true
	case OutputFormatDOT:
		return OutputFormatDOT, true
	case OutputFormatMermaid:
		return OutputFormatMermaid, true
	case OutputFormatText:
		return OutputFormatText, true
	default:
		return "", false
	}
}
