package terminal

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	colorTitle  = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
	colorLabel  = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"} // blue
	colorGood   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"} // emerald
	colorBad    = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"} // red
	colorTool   = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"} // purple
	colorAmount = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"} // amber
)

// labelWidth is the column the section values start at.
const labelWidth = 10

// styles are bound to one output so color detection follows the writer, not
// the process stdout.
type styles struct {
	title  lipgloss.Style
	meta   lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	dim    lipgloss.Style
	tool   lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	amount lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	re := lipgloss.NewRenderer(w)
	if os.Getenv("NO_COLOR") != "" {
		re.SetColorProfile(termenv.Ascii)
	}
	return &styles{
		title:  re.NewStyle().Foreground(colorTitle).Bold(true),
		meta:   re.NewStyle().Foreground(colorDim),
		label:  re.NewStyle().Foreground(colorLabel).Bold(true).Width(labelWidth),
		value:  re.NewStyle().Foreground(colorTitle).Bold(true),
		dim:    re.NewStyle().Foreground(colorDim),
		tool:   re.NewStyle().Foreground(colorTool),
		good:   re.NewStyle().Foreground(colorGood),
		bad:    re.NewStyle().Foreground(colorBad),
		amount: re.NewStyle().Foreground(colorAmount).Bold(true),
	}
}
