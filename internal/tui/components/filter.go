package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/rfcpaths/internal/tui/styles"
)

// FilterKeyMap holds the keys the filter bar reacts to
type FilterKeyMap struct {
	Apply  key.Binding
	Cancel key.Binding
}

// FilterKeys are the filter bar key bindings
var FilterKeys = FilterKeyMap{
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "keep filter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
}

// FilterBar is the single-line path filter
type FilterBar struct {
	input     textinput.Model
	active    bool
	prevQuery string
}

// NewFilterBar creates a hidden filter bar
func NewFilterBar() FilterBar {
	ti := textinput.New()
	ti.Placeholder = "filter paths..."
	ti.CharLimit = 200
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	return FilterBar{input: ti}
}

// Focus shows the bar and starts taking input
func (f *FilterBar) Focus() tea.Cmd {
	f.active = true
	return f.input.Focus()
}

// Blur stops taking input but keeps the query
func (f *FilterBar) Blur() {
	f.input.Blur()
}

// Clear hides the bar and drops the query
func (f *FilterBar) Clear() {
	f.active = false
	f.prevQuery = ""
	f.input.SetValue("")
	f.input.Blur()
}

// Active returns true while the bar is shown
func (f FilterBar) Active() bool {
	return f.active
}

// Focused returns true while the bar takes input
func (f FilterBar) Focused() bool {
	return f.input.Focused()
}

// Query returns the current query
func (f FilterBar) Query() string {
	return f.input.Value()
}

// QueryChanged returns true if the query changed since the last call
func (f *FilterBar) QueryChanged() bool {
	current := f.input.Value()
	if current != f.prevQuery {
		f.prevQuery = current
		return true
	}
	return false
}

// SetWidth sets the input width
func (f *FilterBar) SetWidth(width int) {
	f.input.Width = max(width-4, 1)
}

// Update forwards messages to the input
func (f FilterBar) Update(msg tea.Msg) (FilterBar, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// View renders the bar, or nothing when hidden
func (f FilterBar) View() string {
	if !f.active {
		return ""
	}
	return f.input.View()
}
