// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Text colors
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}
	BorderSelectColor  = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Overlay colors
	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Auto-scroll mode colors
	ModeIdleColor      = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"}
	ModeCountdownColor = lipgloss.AdaptiveColor{Light: "#FF9F43", Dark: "#FF9F43"}
	ModeScrollingColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	// Scrollbars
	ScrollTrackColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#3C3C3C"}
	ScrollThumbColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusValueStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	StatusLabelStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Clickable status bar buttons
	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Background(lipgloss.AdaptiveColor{Light: "#E4E4E4", Dark: "#303030"}).
			Padding(0, 1)
	ButtonActiveStyle = ButtonStyle.
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"})

	// Tile body text
	TileTitleStyle = lipgloss.NewStyle().Bold(true)
	TileMetaStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)

// ModeColor returns the status bar color for an auto-scroll mode name.
func ModeColor(mode string) lipgloss.TerminalColor {
	switch mode {
	case "countdown":
		return ModeCountdownColor
	case "scrolling":
		return ModeScrollingColor
	default:
		return ModeIdleColor
	}
}
