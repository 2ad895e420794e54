package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/prompter/internal/colors"
	"karolbroda.com/prompter/internal/session"
	"karolbroda.com/prompter/internal/terminal"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}

	view := m.session.View()
	rows := frameRows(height, view.Fullscreen)

	// each cell is two vertical half-block pixels
	bufWidth := max(width*m.pixelScale, minBufferSide)
	bufHeight := max(rows*2*m.pixelScale, minBufferSide)
	m.buf.Resize(bufWidth, bufHeight, m.painter.Theme.Background)
	m.painter.Render(m.buf, view)

	var b strings.Builder
	if m.termCaps.SupportsKittyGraphics {
		b.WriteString(terminal.EncodeImageForKitty(m.buf.Image(), width, rows))
		b.WriteString(strings.Repeat("\n", max(rows-1, 0)))
	} else {
		b.WriteString(strings.Join(terminal.HalfBlocks(m.buf.Image(), width, rows), "\n"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter(view, width))

	return b.String()
}

// frameRows is the number of terminal rows the picture takes, leaving one
// row for the footer.
func frameRows(height int, fullscreen bool) int {
	available := max(height-1, 1)
	if fullscreen {
		return available
	}
	return min(max(int(float64(height)*windowedRows), minRows), available)
}

func (m Model) renderFooter(view session.View, width int) string {
	theme := m.painter.Theme

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Hex(theme.Dim)))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Hex(theme.Accent)))

	parts := []string{
		accent.Render(view.State.String()),
		dim.Render(colors.FormatTime(view.Elapsed)),
		dim.Render(fmt.Sprintf("offset %+.1fs", view.Offset)),
	}
	if notice := m.Notice(); notice != "" {
		parts = append(parts, accent.Italic(true).Render(notice))
	}

	line := strings.Join(parts, dim.Render("  ·  "))
	if lipgloss.Width(line) > width {
		return dim.Render(view.State.String())
	}
	return line
}
