// Package render formats items, dashboards and admin lists for the terminal.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/menjava/internal/model"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted     = ac("240", "245")
	colorAvailable = ac("28", "114")
	colorClaimed   = ac("166", "215")
	colorDanger    = ac("160", "203")
	colorAccent    = ac("27", "75")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	badgeStyle   = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	contactStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// categoryColors keys each category to a badge colour.
var categoryColors = map[model.Category]lipgloss.AdaptiveColor{
	model.CategoryBooks:       ac("25", "111"),
	model.CategoryFurniture:   ac("94", "180"),
	model.CategoryElectronics: ac("30", "80"),
	model.CategoryClothing:    ac("127", "213"),
	model.CategoryToys:        ac("166", "216"),
	model.CategoryKitchen:     ac("130", "179"),
	model.CategoryGarden:      ac("28", "113"),
	model.CategorySports:      ac("124", "210"),
	model.CategoryOther:       ac("240", "250"),
}

// CategoryBadge renders a category as a coloured label.
func CategoryBadge(c model.Category) string {
	color, ok := categoryColors[c]
	if !ok {
		color = categoryColors[model.CategoryOther]
	}
	return badgeStyle.Foreground(color).Render(CategoryLabel(c))
}

// CategoryLabel is the display name of a category, e.g. "Electronics".
func CategoryLabel(c model.Category) string {
	s := strings.ToLower(string(c))
	if s == "" {
		return "Other"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// StatusBadge renders the availability of an item.
func StatusBadge(s model.Status) string {
	switch s {
	case model.StatusAvailable:
		return badgeStyle.Foreground(colorAvailable).Render("Available")
	case model.StatusClaimed:
		return badgeStyle.Foreground(colorClaimed).Render("Claimed")
	default:
		return badgeStyle.Foreground(colorMuted).Render(string(s))
	}
}
