package formatters

import (
	"path"
	"strings"
)

// BuildNodeNames returns stable, distinct display names for node ids.
// Ids that share a base name (every __init__.py) are disambiguated by increasing path suffix depth.
func BuildNodeNames(ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	groupedByBase := make(map[string][]string, len(ids))
	for _, id := range ids {
		base := path.Base(id)
		groupedByBase[base] = append(groupedByBase[base], id)
	}

	for base, groupedPaths := range groupedByBase {
		if len(groupedPaths) == 1 {
			names[groupedPaths[0]] = base
			continue
		}

		maxDepth := 0
		for _, id := range groupedPaths {
			maxDepth = max(maxDepth, strings.Count(strings.Trim(id, "/"), "/")+1)
		}

		for depth := 2; ; depth++ {
			suffixCounts := make(map[string]int, len(groupedPaths))
			for _, id := range groupedPaths {
				suffixCounts[idSuffix(id, depth)]++
			}
			if len(suffixCounts) < len(groupedPaths) && depth < maxDepth {
				continue
			}

			for _, id := range groupedPaths {
				names[id] = idSuffix(id, depth)
			}
			break
		}
	}

	return names
}

func idSuffix(id string, depth int) string {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	if depth > len(parts) {
		depth = len(parts)
	}
	return strings.Join(parts[len(parts)-depth:], "/")
}
