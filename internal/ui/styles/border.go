package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderTitledBox renders content inside a rounded border with the title embedded in
// the top border: ╭─ Title ─────╮. The result is exactly width x height cells; content
// that does not fit is clipped. Boxes smaller than 2x2 render as blank space.
func RenderTitledBox(content, title string, width, height int, borderColor, titleColor lipgloss.TerminalColor) string {
	if width < 2 || height < 2 {
		return blankBox(width, height)
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor)

	innerWidth := width - 2
	contentHeight := height - 2

	topBorder := buildTopBorder(title, innerWidth, borderStyle, titleStyle)
	bottomBorder := borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight)

	var contentLines []string
	if content != "" {
		contentLines = strings.Split(content, "\n")
	}

	var result strings.Builder
	result.WriteString(topBorder)
	for i := 0; i < contentHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lineWidth := lipgloss.Width(line)
		if lineWidth > innerWidth {
			line = TruncateString(line, innerWidth)
			lineWidth = lipgloss.Width(line)
		}
		if lineWidth < innerWidth {
			line += strings.Repeat(" ", innerWidth-lineWidth)
		}
		result.WriteString("\n")
		result.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	result.WriteString("\n")
	result.WriteString(bottomBorder)

	return result.String()
}

func blankBox(width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

// buildTopBorder creates the top border with embedded title.
func buildTopBorder(title string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	// Format: ─ Title ─ needs at least 4 chars around the title
	if title == "" || innerWidth < 5 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	displayTitle := TruncateString(title, innerWidth-4)
	remaining := innerWidth - 3 - lipgloss.Width(displayTitle)
	if remaining < 0 {
		remaining = 0
	}

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(displayTitle) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, remaining)+borderTopRight)
}
