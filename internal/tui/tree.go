package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/waverider/waverider/internal/domain"
)

//nolint:gochecknoglobals // Package-level styles for tree rendering
var (
	treeDirStyle  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	treeSizeStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderTree renders a visible file tree slice as indented lines. The slice
// is expected in render order (as returned by the file tree manager), with
// collapsed directories already pruned; depth is derived from each path.
func RenderTree(nodes []domain.FileNode) string {
	var b strings.Builder
	for _, n := range nodes {
		depth := strings.Count(n.Path, "/")
		indent := strings.Repeat("  ", depth)

		if n.IsDir() {
			marker := "▸"
			if n.Expanded {
				marker = "▾"
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", indent, marker, treeDirStyle.Render(n.Name+"/")))
			continue
		}

		line := indent + "  " + n.Name
		if n.Size > 0 {
			line += " " + treeSizeStyle.Render(fmt.Sprintf("(%s)", humanSize(n.Size)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// humanSize formats a byte count for display.
func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%dB", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(size)/float64(div), "KMGTPE"[exp])
}
