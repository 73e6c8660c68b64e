package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Design System Colors - Adaptive based on terminal background
var (
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color
	ColorInfo    lipgloss.Color

	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorBorder    lipgloss.Color
	ColorSurface   lipgloss.Color
	ColorOverlay   lipgloss.Color
)

// initializeColors sets up adaptive colors based on terminal background and
// rebuilds the component styles from them.
func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
	case "dark":
		setDarkThemeColors()
	default:
		if lipgloss.HasDarkBackground() {
			setDarkThemeColors()
		} else {
			setLightThemeColors()
		}
	}
	buildStyles()
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205") // Bright magenta/pink
	ColorSecondary = lipgloss.Color("33") // Bright cyan/blue
	ColorAccent = lipgloss.Color("214")   // Bright orange/yellow

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")
	ColorInfo = lipgloss.Color("12")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
	ColorSurface = lipgloss.Color("236")
	ColorOverlay = lipgloss.Color("234")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125") // Darker magenta for contrast
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("130")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")
	ColorInfo = lipgloss.Color("24")

	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
	ColorSurface = lipgloss.Color("254")
	ColorOverlay = lipgloss.Color("253")
}

// Component styles, built by buildStyles once colors are known
var (
	StyleTitle     lipgloss.Style
	StyleSection   lipgloss.Style
	StyleText      lipgloss.Style
	StyleTextMuted lipgloss.Style
	StyleTextDim   lipgloss.Style

	StyleChip        lipgloss.Style
	StyleChipActive  lipgloss.Style
	StyleChipFocused lipgloss.Style

	StyleSearch        lipgloss.Style
	StyleSearchFocused lipgloss.Style

	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style

	StyleToast            lipgloss.Style
	StyleContentContainer lipgloss.Style
	StyleMetadata         lipgloss.Style
	StyleVariable         lipgloss.Style
	StyleFavorite         lipgloss.Style
	StyleEmpty            lipgloss.Style

	StyleScrollIndicator       lipgloss.Style
	StyleScrollIndicatorActive lipgloss.Style
)

func buildStyles() {
	StyleTitle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	StyleSection = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		Padding(0, 1).
		MarginTop(1)

	StyleText = lipgloss.NewStyle().Foreground(ColorText)
	StyleTextMuted = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleTextDim = lipgloss.NewStyle().Foreground(ColorTextDim)

	StyleChip = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		MarginRight(1)

	StyleChipActive = StyleChip.
		Foreground(lipgloss.Color("15")).
		Background(ColorAccent).
		BorderForeground(ColorAccent).
		Bold(true)

	StyleChipFocused = StyleChip.
		BorderForeground(ColorSecondary).
		Foreground(ColorSecondary)

	StyleSearch = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	StyleSearchFocused = StyleSearch.BorderForeground(ColorSecondary)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true).
		Padding(0, 1)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true).
		Padding(0, 1)

	StyleToast = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true).
		Padding(0, 2)

	StyleContentContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		MarginTop(1)

	StyleMetadata = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Padding(0, 1)

	StyleVariable = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Background(ColorOverlay)

	StyleFavorite = lipgloss.NewStyle().Foreground(ColorAccent)

	StyleEmpty = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Italic(true).
		Padding(1, 1)

	StyleScrollIndicator = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Align(lipgloss.Center)

	StyleScrollIndicatorActive = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		Align(lipgloss.Center)
}

func init() {
	setDarkThemeColors()
	buildStyles()
}

// CreateMainHeader renders the page title
func CreateMainHeader(titleText string) string {
	return StyleTitle.Render(titleText)
}

// CreateSection renders a section heading such as the list heading
func CreateSection(text string) string {
	return StyleSection.Render(text)
}

func CreateMetadata(text string) string {
	return StyleMetadata.Render(text)
}

// CreateChip renders a filter chip in its pressed, focused or plain state
func CreateChip(label string, pressed, focused bool) string {
	switch {
	case pressed:
		return StyleChipActive.Render(label)
	case focused:
		return StyleChipFocused.Render(label)
	default:
		return StyleChip.Render(label)
	}
}

// Context-aware help creation with proper row display and smart truncation
func CreateContextualHelp(essential []string, additional []string, showExpanded bool, width int) string {
	var lines []string

	firstRowParts := essential
	if len(additional) > 0 && !showExpanded {
		firstRowParts = append(firstRowParts, "? more")
	}

	lines = append(lines, truncateWidth(strings.Join(firstRowParts, " • "), width))

	if showExpanded {
		for _, row := range additional {
			lines = append(lines, truncateWidth(row, width))
		}
	}

	return StyleTextDim.Render(strings.Join(lines, "\n"))
}

func CreateStatus(text string, statusType string) string {
	switch statusType {
	case "success":
		return StyleSuccess.Render(text)
	case "error":
		return StyleError.Render(text)
	case "toast":
		return StyleToast.Render(text)
	default:
		return StyleText.Render(text)
	}
}

// Add consistent padding to main content (left only, no top padding)
func AddMainPadding(content string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(content)
}

// Create scroll indicators based on scroll state
func CreateScrollIndicators(canScrollUp, canScrollDown bool) (string, string) {
	top := StyleScrollIndicator.Render("─────────")
	if canScrollUp {
		top = StyleScrollIndicatorActive.Render("...")
	}
	bottom := StyleScrollIndicator.Render("─────────")
	if canScrollDown {
		bottom = StyleScrollIndicatorActive.Render("...")
	}
	return top, bottom
}

func truncateWidth(s string, width int) string {
	if width <= 8 {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-4 {
		return string(runes[:width-7]) + "..."
	}
	return s
}
