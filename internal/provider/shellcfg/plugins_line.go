package shellcfg

import (
	"strings"
)

// parsePluginsLine finds the Oh My Zsh plugins=( ... ) line and returns the
// enabled plugin names. ok is false when no such line exists.
func parsePluginsLine(content string) (names []string, ok bool) {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "plugins=(") || !strings.HasSuffix(trimmed, ")") {
			continue
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "plugins=("), ")")
		return strings.Fields(inner), true
	}
	return nil, false
}

// mergePlugins appends the desired names missing from existing, preserving
// the user's order and never duplicating entries.
func mergePlugins(existing, desired []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(desired))
	for _, name := range existing {
		if seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, name)
	}

	changed := false
	for _, name := range desired {
		if seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, name)
		changed = true
	}
	return merged, changed
}

// renderPluginsLine formats the plugins declaration.
func renderPluginsLine(names []string) string {
	return "plugins=(" + strings.Join(names, " ") + ")"
}

// replacePluginsLine swaps the existing plugins line for the rendered one,
// or appends a new declaration when none exists.
func replacePluginsLine(content string, names []string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "plugins=(") && strings.HasSuffix(trimmed, ")") {
			lines[i] = renderPluginsLine(names)
			return strings.Join(lines, "\n")
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + renderPluginsLine(names) + "\n"
}
