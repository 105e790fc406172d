package home

import (
	"charm.land/lipgloss/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/theme"
)

const bannerArt = `██╗███╗   ██╗██╗   ██╗ █████╗ ██╗     ███████╗██╗
██║████╗  ██║██║   ██║██╔══██╗██║     ██╔════╝██║
██║██╔██╗ ██║██║   ██║███████║██║     ███████╗██║
██║██║╚██╗██║╚██╗ ██╔╝██╔══██║██║     ╚════██║██║
██║██║ ╚████║ ╚████╔╝ ██║  ██║███████╗███████║██║
╚═╝╚═╝  ╚═══╝  ╚═══╝  ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝`

const bannerCompact = "I N V A L S I"

// renderBanner returns the title block, or a one-line fallback for short
// or narrow terminals.
func renderBanner(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	art := bannerArt
	if compact || cw < lipgloss.Width(bannerArt) {
		art = bannerCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}
