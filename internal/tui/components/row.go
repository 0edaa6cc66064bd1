package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/tui/styles"
)

// RowView is everything needed to draw one listing row
type RowView struct {
	ID         domain.ItemID
	Depth      int
	Expanded   bool
	Expandable bool
	// Hierarchical shows the folder/leaf icon column
	Hierarchical bool
	Label        string
	Selected     bool
	Badge        Badge
	// Query highlights fuzzy matches in the label
	Query string
}

// RenderRow draws a row at the given width: indentation by depth, the
// expand icon, the label and the resolution badge on the right.
func RenderRow(r RowView, width int) string {
	var parts []styles.RowPart

	prefix := styles.Indent(r.Depth)
	if r.Hierarchical {
		switch {
		case r.Expandable && r.Expanded:
			prefix += styles.FolderOpenChar + " "
		case r.Expandable:
			prefix += styles.FolderClosedChar + " "
		default:
			prefix += styles.LeafChar + " "
		}
	}
	parts = append(parts, styles.RowPart{Text: prefix})

	badge := r.Badge.View()
	// Two columns of margin from RenderListRow, one space before the badge
	labelWidth := width - lipgloss.Width(prefix) - lipgloss.Width(badge) - 3
	label := styles.Truncate(r.Label, labelWidth)
	parts = append(parts, highlightParts(label, r.Query, r.Selected)...)

	if fill := labelWidth - lipgloss.Width(label); fill > 0 {
		parts = append(parts, styles.RowPart{Text: strings.Repeat(" ", fill)})
	}
	parts = append(parts, styles.RowPart{Text: " "})

	line := styles.RenderListRow(parts, r.Selected, width-lipgloss.Width(badge))
	return line + badge
}

// MatchIndexes returns the byte positions of text matched by query
func MatchIndexes(query, text string) []int {
	if query == "" {
		return nil
	}
	matches := fuzzy.Find(strings.ToLower(query), []string{strings.ToLower(text)})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}

func highlightParts(label, query string, selected bool) []styles.RowPart {
	matched := MatchIndexes(query, label)
	if len(matched) == 0 {
		return []styles.RowPart{{Text: label}}
	}

	hl := styles.MatchHighlightStyle
	if selected {
		hl = styles.MatchHighlightSelectedStyle
	}
	accent := styles.Accent

	set := make(map[int]bool, len(matched))
	for _, idx := range matched {
		set[idx] = true
	}

	var parts []styles.RowPart
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runMatched {
			part.Foreground = &accent
			part.Style = hl
		}
		parts = append(parts, part)
		run.Reset()
	}

	for i, r := range label {
		if set[i] != runMatched {
			flush()
			runMatched = set[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}
