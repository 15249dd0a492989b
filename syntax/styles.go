package syntax

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

// Terminal styles for each span category.
var (
	KeywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	TypeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))

	StringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	CommentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			Italic(true)

	NumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))

	PlainStyle = lipgloss.NewStyle()

	// Overlay backgrounds, merged on top of the base foreground styles.
	SearchMatchBackground = lipgloss.Color("#44475A")
	ErrorLineBackground   = lipgloss.Color("#5F1B1B")
)

// categoryStyle returns the base style for a non-overlay category.
func categoryStyle(c models.Category) lipgloss.Style {
	switch c {
	case models.CategoryKeyword:
		return KeywordStyle
	case models.CategoryType:
		return TypeStyle
	case models.CategoryString:
		return StringStyle
	case models.CategoryComment:
		return CommentStyle
	case models.CategoryNumber:
		return NumberStyle
	default:
		return PlainStyle
	}
}
