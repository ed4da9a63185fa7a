package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/leafo/filenode/internal/filenode"
)

type styles struct {
	file      lipgloss.Style
	text      lipgloss.Style
	directory lipgloss.Style
	muted     lipgloss.Style
	errLabel  lipgloss.Style
}

// newStyles binds styles to w so colour is dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Width(9)
	return styles{
		file:      label.Foreground(lipgloss.Color("245")),
		text:      label.Foreground(lipgloss.Color("39")),
		directory: label.Bold(true).Foreground(lipgloss.Color("212")),
		muted:     r.NewStyle().Foreground(lipgloss.Color("240")),
		errLabel:  label.Foreground(lipgloss.Color("196")),
	}
}

func (s styles) kind(k filenode.Kind) string {
	switch k {
	case filenode.KindText:
		return s.text.Render(k.String())
	case filenode.KindDirectory:
		return s.directory.Render(k.String())
	default:
		return s.file.Render(k.String())
	}
}
