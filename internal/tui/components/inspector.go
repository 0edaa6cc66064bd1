package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/tui/styles"
)

// InspectorPane selects which payload the inspector shows
type InspectorPane int

const (
	PaneResolved InspectorPane = iota
	PaneReference
)

// Inspector shows the result of a test resolution for one path: the method
// chain and the resolved or reference payload.
type Inspector struct {
	path    string
	outcome *domain.ResolutionOutcome
	err     error
	loading bool
	pane    InspectorPane

	vp     viewport.Model
	width  int
	height int
}

// NewInspector creates an empty inspector
func NewInspector() Inspector {
	return Inspector{vp: viewport.New(0, 0)}
}

// SetLoading shows the in-flight state for path
func (i *Inspector) SetLoading(path string) {
	i.path = path
	i.outcome = nil
	i.err = nil
	i.loading = true
	i.pane = PaneResolved
	i.refresh()
}

// SetResult shows the outcome of the test resolution of path
func (i *Inspector) SetResult(path string, outcome *domain.ResolutionOutcome, err error) {
	if path != i.path {
		return
	}
	i.outcome = outcome
	i.err = err
	i.loading = false
	i.refresh()
}

// Path returns the path being inspected
func (i Inspector) Path() string {
	return i.path
}

// TogglePane switches between the resolved and the reference payload
func (i *Inspector) TogglePane() {
	if i.pane == PaneResolved {
		i.pane = PaneReference
	} else {
		i.pane = PaneResolved
	}
	i.refresh()
}

// Pane returns the payload being shown
func (i Inspector) Pane() InspectorPane {
	return i.pane
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	frameW, frameH := styles.InactiveBorder.GetFrameSize()
	i.vp.Width = max(width-frameW, 0)
	i.vp.Height = max(height-frameH-2, 0) // title and blank line
	i.refresh()
}

// Update scrolls the payload
func (i Inspector) Update(msg tea.Msg) (Inspector, tea.Cmd) {
	var cmd tea.Cmd
	i.vp, cmd = i.vp.Update(msg)
	return i, cmd
}

// View renders the component
func (i Inspector) View() string {
	contentWidth := max(i.vp.Width, 10)
	title := "Test resolution"
	if i.path != "" {
		title += ": " + i.path
	}
	titleLine := styles.AccentStyle.Render(styles.Truncate(title, contentWidth))

	style := styles.InactiveBorder
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(titleLine + "\n\n" + i.vp.View())
}

func (i *Inspector) refresh() {
	i.vp.SetContent(i.render())
	i.vp.GotoTop()
}

func (i Inspector) render() string {
	switch {
	case i.path == "":
		return styles.DimStyle.Render("Press t to test-resolve the selected path")
	case i.loading:
		return styles.DimStyle.Render("Requesting…")
	case i.err != nil:
		return styles.ErrorStyle.Render("Error: " + i.err.Error())
	case i.outcome == nil:
		return ""
	}

	var b strings.Builder
	b.WriteString(OutcomeBadge(i.outcome, false).View())
	b.WriteString("\n\n")
	b.WriteString(RenderMethodChain(i.outcome.Methods))
	b.WriteString("\n")

	switch i.pane {
	case PaneReference:
		b.WriteString(styles.SubtitleStyle.Render("Reference (tab: show resolved)"))
		b.WriteString("\n")
		if i.outcome.ReferenceXML == nil {
			b.WriteString(styles.DimStyle.Render("Unable to obtain reference XML"))
		} else {
			b.WriteString(FormatXML(*i.outcome.ReferenceXML))
		}
	default:
		b.WriteString(styles.SubtitleStyle.Render("Resolved (tab: show reference)"))
		b.WriteString("\n")
		b.WriteString(FormatXML(i.outcome.ResolvedXML))
	}
	return b.String()
}

// RenderMethodChain lists every attempted method with its config and result
func RenderMethodChain(methods []domain.MethodOutcome) string {
	var b strings.Builder
	for _, m := range methods {
		b.WriteString(styles.DimStyle.Render("→ "))
		if !m.Configured() {
			fmt.Fprintf(&b, "%s: %s\n", m.MethodName, styles.DimStyle.Render("N/A"))
			continue
		}
		name := m.MethodName
		if *m.Config != "" {
			name = fmt.Sprintf("%s(%s)", m.MethodName, *m.Config)
		}
		if m.ErrorInfo != nil {
			fmt.Fprintf(&b, "%s: %s\n", name, styles.ErrorStyle.Render(*m.ErrorInfo))
		} else {
			fmt.Fprintf(&b, "%s: %s\n", name, styles.SuccessStyle.Render("ok"))
		}
	}
	return b.String()
}
