package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rfcpaths/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ShowHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.ShowHelp = false
		}
		return m, nil
	}

	if m.filter.Focused() {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.filter.Active() {
			m.filter.Clear()
			m.updateLayout()
			return m, ApplyFilterCmd(m.listing, m.index, "")
		}
		if m.ShowInspector {
			m.ShowInspector = false
			m.updateLayout()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		cmd := m.filter.Focus()
		m.updateLayout()
		return m, cmd

	case key.Matches(msg, Keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, Keys.PageUp):
		return m.moveCursor(-m.pageSize())
	case key.Matches(msg, Keys.PageDown):
		return m.moveCursor(m.pageSize())
	case key.Matches(msg, Keys.HalfUp):
		return m.moveCursor(-max(m.pageSize()/2, 1))
	case key.Matches(msg, Keys.HalfDown):
		return m.moveCursor(max(m.pageSize()/2, 1))
	case key.Matches(msg, Keys.Home):
		return m.moveCursorTo(0)
	case key.Matches(msg, Keys.End):
		return m.moveCursorTo(m.listing.Len() - 1)

	case key.Matches(msg, Keys.Toggle):
		id := m.listing.Selected()
		if id == "" {
			return m, nil
		}
		return m, ToggleCmd(m.listing, id)

	case key.Matches(msg, Keys.Test):
		return m.testSelected()

	case key.Matches(msg, Keys.SwitchPane):
		if m.ShowInspector {
			m.inspector.TogglePane()
		}
		return m, nil

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.Copy):
		path, ok := m.selectedPath()
		if !ok {
			cmd := m.setStatus("Select a path to copy its URL", true)
			return m, cmd
		}
		return m, CopyURLCmd(m.resolver, m.prefix+path)

	case key.Matches(msg, Keys.Requeue):
		m.watcher.Rearm()
		m.watcher.Check(m.viewport())
		return m, nil
	}

	// Remaining keys scroll the inspector payload
	if m.ShowInspector {
		var cmd tea.Cmd
		m.inspector, cmd = m.inspector.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleFilterKey routes input to the focused filter bar and re-filters the
// listing whenever the query changes
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, components.FilterKeys.Apply):
		m.filter.Blur()
		if m.filter.Query() == "" {
			m.filter.Clear()
			m.updateLayout()
		}
		return m, nil

	case key.Matches(msg, components.FilterKeys.Cancel):
		m.filter.Clear()
		m.updateLayout()
		return m, ApplyFilterCmd(m.listing, m.index, "")
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.QueryChanged() {
		return m, tea.Batch(cmd, ApplyFilterCmd(m.listing, m.index, m.filter.Query()))
	}
	return m, cmd
}

// moveCursor moves the selection by delta items and keeps it in view
func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	idx := m.listing.Index(m.listing.Selected())
	if idx < 0 {
		offset, _ := m.listing.Viewport()
		idx = offset / m.listing.ItemHeight()
		delta = 0
	}
	return m.moveCursorTo(idx + delta)
}

func (m Model) moveCursorTo(idx int) (tea.Model, tea.Cmd) {
	n := m.listing.Len()
	if n == 0 {
		return m, nil
	}
	idx = min(max(idx, 0), n-1)
	id, _ := m.listing.At(idx)

	before, _ := m.listing.Viewport()
	m.listing.Select(id)
	m.listing.ScrollTo(id)
	cmd := m.scrolled(before)
	return m, cmd
}

// pageSize returns the number of whole items that fit in the list area
func (m Model) pageSize() int {
	return max(m.listHeight/m.listing.ItemHeight(), 1)
}

// selectedPath returns the selected item if it is a resolvable path
func (m Model) selectedPath() (string, bool) {
	id := m.listing.Selected()
	if id == "" || !m.index.Tree().IsPath(id) {
		return "", false
	}
	return id, true
}

// testSelected runs a detailed resolution with comparison for the selected
// path and shows it in the inspector
func (m Model) testSelected() (tea.Model, tea.Cmd) {
	path, ok := m.selectedPath()
	if !ok {
		cmd := m.setStatus("Select a path to test", true)
		return m, cmd
	}
	full := m.prefix + path
	m.inspector.SetLoading(full)
	if !m.ShowInspector {
		m.ShowInspector = true
		m.updateLayout()
	}
	return m, InspectCmd(m.resolver, full)
}
