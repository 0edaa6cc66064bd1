package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/rfcpaths/internal/listing"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
	"github.com/mmcdole/rfcpaths/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	body := m.renderList(m.listWidth, m.listHeight)
	if m.ShowInspector {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.inspector.View())
	}

	sections := []string{body}
	if m.filter.Active() {
		sections = append(sections, m.filter.View())
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderList draws the rows of the last window that intersect the viewport.
// Rows taller than one line are padded with blank lines.
func (m Model) renderList(width, height int) string {
	if height <= 0 {
		return ""
	}
	if m.listing.Len() == 0 {
		empty := "No paths"
		if m.filter.Active() {
			empty = "No matching paths"
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render(empty))
	}

	offset, _ := m.listing.Viewport()
	ih := m.listing.ItemHeight()
	selected := m.listing.Selected()
	blank := strings.Repeat(" ", width)

	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}

	for _, row := range m.window.Rows {
		if row.Top+ih <= offset || row.Top >= offset+height {
			continue
		}
		view := m.rowView(row)
		view.Selected = row.ID == selected
		rendered := components.RenderRow(view, width)

		for k := 0; k < ih; k++ {
			y := row.Top + k - offset
			if y < 0 || y >= height {
				continue
			}
			if k == 0 {
				lines[y] = rendered
			} else if view.Selected {
				lines[y] = styles.SelectedItemStyle.Render(blank)
			}
		}
	}

	return strings.Join(lines, "\n")
}

// rowView projects a listing row and its badge for rendering
func (m Model) rowView(row listing.Row) components.RowView {
	view := components.RowView{
		ID:           row.ID,
		Depth:        row.Depth,
		Expanded:     row.Expanded,
		Expandable:   row.Expandable,
		Hierarchical: true,
		Label:        row.Label,
		Badge:        m.badges[row.ID],
	}
	if m.filter.Active() {
		view.Query = m.filter.Query()
	}
	return view
}

// renderFooter renders the status line: message or position on the left,
// the help hint on the right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	default:
		left = styles.DimStyle.Render(m.position())
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return styles.Truncate(left, m.Width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// position describes the cursor, e.g. "12/340 · bibxml/reference.RFC.2119.xml"
func (m Model) position() string {
	n := m.listing.Len()
	if n == 0 {
		return "0/0"
	}
	id := m.listing.Selected()
	idx := m.listing.Index(id)
	if idx < 0 {
		return fmt.Sprintf("-/%d", n)
	}
	if tree := m.index.Tree(); !tree.IsPath(id) {
		return fmt.Sprintf("%d/%d · %s/ (%d paths)", idx+1, n, id, tree.CountUnder(id))
	}
	return fmt.Sprintf("%d/%d · %s", idx+1, n, id)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	content := styles.TitleStyle.Render("Keys") + "\n\n" + h.View(Keys) +
		"\n\n" + styles.DimStyle.Render("Press ? or esc to return")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ActiveBorder.Padding(1, 2).Render(content))
}
