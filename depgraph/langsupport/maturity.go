package langsupport

import "fmt"

// MaturityLevel grades how far a language module's analysis can be trusted.
type MaturityLevel int

const (
	MaturityUntested MaturityLevel = iota
	MaturityBasicTests
	MaturityActivelyTested
	MaturityStable
)

var maturityInfo = map[MaturityLevel]struct {
	name   string
	symbol string
}{
	MaturityUntested:       {name: "Untested", symbol: "○"},
	MaturityBasicTests:     {name: "Basic Tests", symbol: "◐"},
	MaturityActivelyTested: {name: "Actively Tested", symbol: "●"},
	MaturityStable:         {name: "Stable", symbol: "✓"},
}

// DisplayName is the human label shown by `languages --legend`.
func (level MaturityLevel) DisplayName() string {
	if info, ok := maturityInfo[level]; ok {
		return info.name
	}
	return "Unknown"
}

// Symbol is the one-glyph marker printed before a language name.
func (level MaturityLevel) Symbol() string {
	if info, ok := maturityInfo[level]; ok {
		return info.symbol
	}
	return "?"
}

func (level MaturityLevel) String() string {
	return level.DisplayName()
}

// MarshalText encodes the level by display name.
func (level MaturityLevel) MarshalText() ([]byte, error) {
	if _, ok := maturityInfo[level]; !ok {
		return nil, fmt.Errorf("unknown maturity level %d", int(level))
	}
	return []byte(level.DisplayName()), nil
}

// MaturityLevels returns the known levels from least to most mature.
func MaturityLevels() []MaturityLevel {
	return []MaturityLevel{
		MaturityUntested,
		MaturityBasicTests,
		MaturityActivelyTested,
		MaturityStable,
	}
}
