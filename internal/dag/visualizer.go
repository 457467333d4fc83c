package dag

import (
	"fmt"
	"sort"
	"strings"
)

// RenderASCII draws the execution waves of g with their dependency edges.
// Uses portable ASCII characters only.
func RenderASCII[N Node](title string, g *Graph[N], waves [][]N) string {
	if len(waves) == 0 {
		return fmt.Sprintf("%s: no %ss to run.\n", title, g.Kind())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", title)
	sb.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&sb, "Waves: %d  |  %ss: %d\n\n", len(waves), capitalize(g.Kind()), g.Len())

	for i, wave := range waves {
		fmt.Fprintf(&sb, "[wave %d]\n", i+1)
		sb.WriteString(renderWave(wave))
		if i < len(waves)-1 {
			sb.WriteString("    |\n    v\n")
		}
	}

	if deps := collectDependencyLines(g); len(deps) > 0 {
		sb.WriteString("\nDependencies:\n")
		sb.WriteString("-------------\n")
		for _, line := range deps {
			sb.WriteString(line)
		}
	}

	return sb.String()
}

// renderWave lists the nodes of one wave in declaration order.
func renderWave[N Node](wave []N) string {
	var sb strings.Builder
	for i, n := range wave {
		prefix := "  |-"
		if i == len(wave)-1 {
			prefix = "  +-"
		}
		depMarker := ""
		if len(n.NodeDeps()) > 0 {
			depMarker = " *"
		}
		fmt.Fprintf(&sb, "%s %s%s\n", prefix, n.NodeID(), depMarker)
	}
	return sb.String()
}

// collectDependencyLines formats one "a --> b, c" line per node with deps.
func collectDependencyLines[N Node](g *Graph[N]) []string {
	var lines []string
	for _, n := range g.Nodes() {
		if len(n.NodeDeps()) == 0 {
			continue
		}
		deps := append([]string(nil), n.NodeDeps()...)
		sort.Strings(deps)
		lines = append(lines, fmt.Sprintf("  %s --> %s\n", n.NodeID(), strings.Join(deps, ", ")))
	}
	sort.Strings(lines)
	return lines
}

// RenderCompact generates a single-line representation.
// Format: [a, b] -> [c] -> [d]
func RenderCompact[N Node](waves [][]N) string {
	if len(waves) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(waves))
	for i, wave := range waves {
		ids := make([]string, len(wave))
		for j, n := range wave {
			ids[j] = n.NodeID()
		}
		parts[i] = "[" + strings.Join(ids, ", ") + "]"
	}
	return strings.Join(parts, " -> ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
