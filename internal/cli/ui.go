package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette. Kept muted: the rendered history diagrams are the
// colorful part, the CLI chrome stays out of the way.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")
)

// Styles shared with the show browser.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

// statusLine prints a glyph in the given color followed by the message.
func statusLine(color lipgloss.Color, glyph, format string, args ...any) {
	glyphStyle := lipgloss.NewStyle().Foreground(color)
	fmt.Println(glyphStyle.Render(glyph) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	statusLine(colorGreen, "✓", format, args...)
}

func printError(format string, args ...any) {
	statusLine(colorRed, "✗", format, args...)
}

func printWarning(format string, args ...any) {
	statusLine(colorYellow, "!", "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(colorDim, "›", format, args...)
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

// printStats summarizes a processed tree on one line, e.g.
// "3 nodes · 2 links · 3 releases · cached". Zero counts are omitted.
func printStats(nodes, links, releases int, cached bool) {
	fmt.Println("  " + statsLine(nodes, links, releases, cached))
}

func statsLine(nodes, links, releases int, cached bool) string {
	parts := make([]string, 0, 4)
	if nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", nodes))
	}
	if links > 0 {
		parts = append(parts, fmt.Sprintf("%d links", links))
	}
	if releases > 0 {
		parts = append(parts, fmt.Sprintf("%d releases", releases))
	}

	line := StyleDim.Render(strings.Join(parts, " · "))
	if len(parts) > 0 {
		line += StyleDim.Render(" · ")
	}
	if cached {
		return line + styleCached.Render("cached")
	}
	return line + StyleDim.Render("fresh")
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
