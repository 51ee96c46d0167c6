package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the RULEKEEPER logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "RULEKEEPER" as a wave of light moving from
// deep indigo (#2b2f6b) to Discord blurple (#8b9cf7).
func renderShimmerLogo(frame int) string {
	const text = "RULEKEEPER"
	n := len(text)

	var out string
	t := float64(frame)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(43 + b*(139-43))
		g := clampByte(47 + b*(156-47))
		bl := clampByte(107 + b*(247-107))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += " "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b9cf7"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34d474"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878")).
				Bold(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8b9cf7")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Moderation action colors
	actionColors = map[string]lipgloss.Color{
		"warn":    lipgloss.Color("#d4a844"),
		"timeout": lipgloss.Color("#f0944a"),
		"kick":    lipgloss.Color("#e06060"),
		"ban":     lipgloss.Color("#d05050"),
		"unban":   lipgloss.Color("#34d474"),
	}
)

// ActionStyle returns a bold style colored for a moderation action.
func ActionStyle(action string) lipgloss.Style {
	if c, ok := actionColors[action]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// onOff renders an enabled flag.
func onOff(on bool) string {
	if on {
		return okStyle.Render("on")
	}
	return dimStyle.Render("off")
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpBar(entries ...[2]string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = helpEntry(e[0], e[1])
	}
	return " " + strings.Join(parts, "  ")
}
