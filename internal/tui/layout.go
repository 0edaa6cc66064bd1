package tui

// Layout proportions
const (
	ListPercent     = 55 // list share while the inspector is shown
	MinColumnWidth  = 20
	ChromeHeight    = 1 // footer line
	FilterBarHeight = 1
)

// columnLayout holds calculated widths for the View
type columnLayout struct {
	listWidth      int
	inspectorWidth int // 0 if not shown
}

// calculateLayout splits the width between the list and the inspector
func (m Model) calculateLayout() columnLayout {
	if !m.ShowInspector {
		return columnLayout{listWidth: m.Width}
	}
	listWidth := max(m.Width*ListPercent/100, MinColumnWidth)
	return columnLayout{
		listWidth:      listWidth,
		inspectorWidth: max(m.Width-listWidth, 0),
	}
}

// contentHeight is the height left for the list and the inspector
func (m Model) contentHeight() int {
	h := m.Height - ChromeHeight
	if m.filter.Active() {
		h -= FilterBarHeight
	}
	return max(h, 0)
}

// updateLayout updates component sizes and the listing viewport
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	layout := m.calculateLayout()
	m.listWidth = layout.listWidth
	m.listHeight = m.contentHeight()

	offset, _ := m.listing.Viewport()
	m.listing.SetViewport(offset, m.listHeight)
	if id := m.listing.Selected(); id != "" {
		m.listing.ScrollTo(id)
	}

	m.filter.SetWidth(m.Width)
	if layout.inspectorWidth > 0 {
		m.inspector.SetSize(layout.inspectorWidth, m.listHeight)
	}
}
