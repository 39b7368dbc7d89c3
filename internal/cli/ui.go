package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal: titles, numbers, spinner
	colorOK     = lipgloss.Color("35")  // green: success, cache hits
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorLink   = lipgloss.Color("75")  // light blue: URLs, commands
	colorText   = lipgloss.Color("255")
	colorLabel  = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Styles shared with the inspect view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel       = lipgloss.NewStyle().Foreground(colorLabel).Width(13)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorLabel)
)

// statusIcon pairs a glyph with its color.
type statusIcon struct {
	glyph string
	style lipgloss.Style
}

var (
	iconSuccess = statusIcon{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	iconError   = statusIcon{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	iconWarning = statusIcon{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	iconInfo    = statusIcon{"›", lipgloss.NewStyle().Foreground(colorLabel)}
)

const iconArrow = "→"

// =============================================================================
// Status lines
// =============================================================================

func printStatus(icon statusIcon, msg string) {
	fmt.Println(icon.style.Render(icon.glyph) + " " + msg)
}

func printSuccess(format string, args ...any) { printStatus(iconSuccess, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { printStatus(iconError, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { printStatus(iconInfo, fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	printStatus(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "→ path" for a written file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + StyleValue.Render(value))
}

func printNewline() { fmt.Println() }

// =============================================================================
// Placement summaries
// =============================================================================

// printStats prints "N cells · M wires · fresh|cached".
func printStats(cells, wires int, cached bool) {
	parts := make([]string, 0, 3)
	if cells > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d cells", cells)))
	}
	if wires > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d wires", wires)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleComputed.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printLayout prints the headline numbers of a placement.
func printLayout(wireLength, width, height int, utilization float64) {
	printKeyValue("Wire length", StyleNumber.Render(fmt.Sprint(wireLength)))
	printKeyValue("Bounding box", fmt.Sprintf("%d × %d", width, height))
	printKeyValue("Utilization", fmt.Sprintf("%.1f%%", utilization*100))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
