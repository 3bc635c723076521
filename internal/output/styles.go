package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/memex/internal/memory"
)

// Color palette: a single lime accent with grays.
const (
	ColorLime     = "154"
	ColorLimeDim  = "106"
	ColorCyan     = "87"
	ColorMagenta  = "213"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the styles used by Writer.
type Styles struct {
	Header    lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
	Label     lipgloss.Style
	ID        lipgloss.Style
	Relevance lipgloss.Style
	Rule      lipgloss.Style
	Layers    map[memory.Layer]lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Success:   fg(ColorLime),
		Warning:   fg(ColorYellow),
		Error:     fg(ColorRed),
		Dim:       fg(ColorDarkGray),
		Label:     fg(ColorGray),
		ID:        fg(ColorLimeDim),
		Relevance: fg(ColorLime),
		Rule:      fg(ColorDarkGray),
		Layers: map[memory.Layer]lipgloss.Style{
			memory.LayerDaily:          fg(ColorLime),
			memory.LayerTacit:          fg(ColorCyan),
			memory.LayerKnowledgeGraph: fg(ColorMagenta),
			memory.LayerTools:          fg(ColorYellow),
		},
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:    plain,
		Success:   plain,
		Warning:   plain,
		Error:     plain,
		Dim:       plain,
		Label:     plain,
		ID:        plain,
		Relevance: plain,
		Rule:      plain,
		Layers:    map[memory.Layer]lipgloss.Style{},
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// layer renders a layer name in its color.
func (s Styles) layer(l memory.Layer) string {
	if st, ok := s.Layers[l]; ok {
		return st.Render(string(l))
	}
	return string(l)
}
