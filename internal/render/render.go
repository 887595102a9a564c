// Package render prints digests for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	rankStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	explanationStyle = lipgloss.NewStyle().
				PaddingLeft(4)

	urlStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			PaddingLeft(4)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Digest writes a human-readable view of d. width wraps explanations; zero
// leaves them unwrapped.
func Digest(w io.Writer, heading string, d model.Digest, width int) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(heading))
	b.WriteString("\n\n")

	if len(d) == 0 {
		b.WriteString(dimStyle.Render("No items."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	expl := explanationStyle
	if width > 4 {
		expl = expl.Width(width)
	}
	for _, item := range d {
		b.WriteString(rankStyle.Render(fmt.Sprintf("%2d.", item.Rank)))
		b.WriteString(" ")
		b.WriteString(titleStyle.Render(item.Title))
		b.WriteString("\n")
		if item.Explanation != "" {
			b.WriteString(expl.Render(item.Explanation))
			b.WriteString("\n")
		}
		if item.URL != "" {
			b.WriteString(urlStyle.Render(item.URL))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
