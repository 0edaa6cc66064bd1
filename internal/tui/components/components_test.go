package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestOutcomeBadge(t *testing.T) {
	tests := []struct {
		name      string
		outcome   *domain.ResolutionOutcome
		wantState BadgeState
		wantLabel string
	}{
		{"primary succeeded", &domain.ResolutionOutcome{PrimaryMethod: "manual", SucceededMethod: "manual"}, BadgeSuccess, "manual"},
		{"fallback", &domain.ResolutionOutcome{PrimaryMethod: "manual", SucceededMethod: "fallback"}, BadgeWarning, "fallback"},
		{"later method", &domain.ResolutionOutcome{PrimaryMethod: "manual", SucceededMethod: "auto"}, BadgeError, "auto"},
		{"nothing succeeded", &domain.ResolutionOutcome{PrimaryMethod: "manual"}, BadgeError, "N/A"},
		{"nil outcome", nil, BadgeError, "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := OutcomeBadge(tt.outcome, true)
			assert.Equal(t, tt.wantState, b.State)
			assert.Equal(t, tt.wantLabel, b.Label)
		})
	}
}

func TestErrorBadge(t *testing.T) {
	assert.Equal(t, "not found", ErrorBadge(fmt.Errorf("x: %w", domain.ErrNotFound)).Label)
	assert.Equal(t, "offline", ErrorBadge(domain.ErrServerOffline).Label)
	assert.Equal(t, "error", ErrorBadge(errors.New("boom")).Label)
}

func TestBadgeView_FixedWidth(t *testing.T) {
	for _, b := range []Badge{{}, PendingBadge(), {State: BadgeSuccess, Label: "a-very-long-method-name"}} {
		assert.Equal(t, 12, lipgloss.Width(b.View()))
	}
}

func TestRenderRow(t *testing.T) {
	row := RowView{
		ID:           "bibxml/reference.RFC.2119.xml",
		Depth:        2,
		Hierarchical: true,
		Label:        "reference.RFC.2119.xml",
		Badge:        Badge{State: BadgeSuccess, Label: "manual"},
	}

	out := RenderRow(row, 60)
	assert.Equal(t, 60, lipgloss.Width(out))
	assert.Contains(t, out, "reference.RFC.2119.xml")
	assert.Contains(t, out, "manual")

	// Long labels are truncated to keep the badge in place
	row.Label = strings.Repeat("x", 200)
	assert.Equal(t, 60, lipgloss.Width(RenderRow(row, 60)))
}

func TestRenderRow_Icons(t *testing.T) {
	base := RowView{ID: "bibxml", Depth: 1, Hierarchical: true, Label: "bibxml/"}

	closed := base
	closed.Expandable = true
	assert.Contains(t, RenderRow(closed, 40), "▸")

	open := closed
	open.Expanded = true
	assert.Contains(t, RenderRow(open, 40), "▾")

	assert.Contains(t, RenderRow(base, 40), "·")

	flat := base
	flat.Hierarchical = false
	assert.NotContains(t, RenderRow(flat, 40), "·")
}

func TestMatchIndexes(t *testing.T) {
	assert.Equal(t, []int{4, 5, 6}, MatchIndexes("RFC", "bib/rfc2119"))
	assert.Nil(t, MatchIndexes("", "anything"))
	assert.Nil(t, MatchIndexes("zzz", "reference"))
}

func TestFormatXML(t *testing.T) {
	got := FormatXML(`<reference anchor="RFC2119"><front><title>Key words</title></front></reference>`)
	assert.Equal(t, "<reference anchor=\"RFC2119\">\n  <front>\n    <title>Key words</title>\n  </front>\n</reference>", got)

	assert.Equal(t, "not <xml", FormatXML("not <xml"))
	assert.Equal(t, "", FormatXML("  "))
}

func TestRenderMethodChain(t *testing.T) {
	out := RenderMethodChain([]domain.MethodOutcome{
		{MethodName: "manual", Config: strPtr("cfg1")},
		{MethodName: "auto", Config: strPtr("cfg2"), ErrorInfo: strPtr("timeout")},
		{MethodName: "fallback"},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "manual(cfg1)")
	assert.Contains(t, lines[0], "ok")
	assert.Contains(t, lines[1], "timeout")
	assert.Contains(t, lines[2], "N/A")
}

func TestInspector(t *testing.T) {
	in := NewInspector()
	in.SetSize(80, 30)

	in.SetLoading("bibxml/reference.RFC.2119.xml")
	assert.Contains(t, in.View(), "Requesting")

	// Results for another path are ignored
	in.SetResult("bibxml/other.xml", &domain.ResolutionOutcome{}, nil)
	assert.Contains(t, in.View(), "Requesting")

	in.SetResult("bibxml/reference.RFC.2119.xml", &domain.ResolutionOutcome{
		PrimaryMethod:   "manual",
		SucceededMethod: "manual",
		Methods:         []domain.MethodOutcome{{MethodName: "manual", Config: strPtr("")}},
		ResolvedXML:     "<reference>RFC2119</reference>",
	}, nil)
	view := in.View()
	assert.Contains(t, view, "Resolved")
	assert.Contains(t, view, "<reference>RFC2119</reference>")

	in.TogglePane()
	assert.Equal(t, PaneReference, in.Pane())
	assert.Contains(t, in.View(), "Unable to obtain reference XML")
}
