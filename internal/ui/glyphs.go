package ui

import (
	"strings"

	"github.com/fatih/color"

	"ptx/internal/domain"
	"ptx/internal/tree"
)

// statusGlyph is the one-character marker shown next to a node
func statusGlyph(s domain.Status) string {
	switch s {
	case domain.StatusQueued:
		return "…"
	case domain.StatusRunning:
		return "▶"
	case domain.StatusPassed:
		return "✓"
	case domain.StatusFailed:
		return "✗"
	case domain.StatusSkipped:
		return "↷"
	case domain.StatusErrored:
		return "!"
	default:
		return " "
	}
}

func statusColor(s domain.Status) *color.Color {
	switch s {
	case domain.StatusPassed:
		return color.New(color.FgGreen)
	case domain.StatusFailed, domain.StatusErrored:
		return color.New(color.FgRed)
	case domain.StatusSkipped:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// qualifiedName joins the labels from the file down to n
func qualifiedName(n *tree.Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.Label)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}
