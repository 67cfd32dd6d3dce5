package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all user-facing status lines. Layouts piped to standard
// output bypass it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleValue renders paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorText)

	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

const (
	markOK   = "✓"
	markFail = "✗"
	markWarn = "!"
	markInfo = "›"
	markFile = "→"
	sepStats = " · "
)

// =============================================================================
// Status Lines
// =============================================================================

func printLine(mark lipgloss.Style, icon, msg string) {
	fmt.Fprintln(stdout, mark.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printLine(styleOK, markOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleFail, markFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(StyleWarning, markWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleMuted, markInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(markFile)+" "+StyleValue.Render(path))
}

// printStats prints "N nodes · M edges · 12ms · computed" on one line.
// A cached result shows no layout time.
func printStats(nodes, edges int, took time.Duration, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", edges)),
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts,
			StyleDim.Render(took.Round(time.Millisecond).String()),
			styleMuted.Render("computed"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(sepStats)))
}
