package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/rfcpaths/internal/cache"
	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/listing"
	applog "github.com/mmcdole/rfcpaths/internal/log"
	"github.com/mmcdole/rfcpaths/internal/source"
	"github.com/mmcdole/rfcpaths/internal/store"
	"github.com/mmcdole/rfcpaths/internal/tui/components"
	"github.com/mmcdole/rfcpaths/internal/watcher"
)

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	fail  error
}

func (r *fakeResolver) Resolve(_ context.Context, path string, opts domain.ResolveOptions) (*domain.ResolutionOutcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, path)
	fail := r.fail
	r.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	out := &domain.ResolutionOutcome{PrimaryMethod: "manual", SucceededMethod: "manual"}
	if opts.Detailed {
		out.ResolvedXML = "<reference>" + path + "</reference>"
	}
	return out, nil
}

func (r *fakeResolver) URL(path string) (string, error) {
	return "https://example.org/" + path, nil
}

func (r *fakeResolver) Fail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *fakeResolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

var testPaths = []string{
	"bibxml/reference.RFC.2119.xml",
	"bibxml/reference.RFC.8174.xml",
	"bibxml3/reference.I-D.draft-a.xml",
	"README",
}

type harness struct {
	model    Model
	resolver *fakeResolver
	watcher  *watcher.Watcher
	listing  *listing.Listing
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	key := "path-resolution-" + strings.ReplaceAll(t.Name(), "/", "_")
	c, err := cache.Open[*domain.ResolutionOutcome](store.NewMemory(), key, nil, cache.Options{
		FlushInterval: time.Hour,
		Logger:        applog.NullLogger(),
	})
	require.NoError(t, err)

	index := source.NewIndex(source.NewTree(testPaths))
	r := &fakeResolver{}
	w := watcher.New(c, r, watcher.Options{Prefix: "public/", Logger: applog.NullLogger()})
	l := listing.New(index.Tree().Roots(), listing.Options{
		Provider: listing.FromItemProvider(index),
		Logger:   applog.NullLogger(),
	})

	m := NewModel(Options{
		Listing:  l,
		Watcher:  w,
		Index:    index,
		Resolver: r,
		Prefix:   "public/",
		Logger:   applog.NullLogger(),
	})

	t.Cleanup(func() {
		m.Close()
		w.Close()
		c.Destroy()
	})

	return &harness{model: m, resolver: r, watcher: w, listing: l}
}

func (h *harness) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// run executes cmd and feeds the resulting message back into the model.
// Commands that do not finish promptly (ticks, cursor blinks) are ignored.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(250 * time.Millisecond):
		return
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.run(t, c)
		}
		return
	}
	switch msg.(type) {
	case WindowRefreshedMsg, ToggledMsg, InspectMsg, StatusMsg, ErrMsg:
		h.update(t, msg)
	}
}

// drainBadges reads badge updates until the watcher has been quiet for a while
func (h *harness) drainBadges(t *testing.T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-h.model.results:
			h.update(t, msg)
		case <-time.After(100 * time.Millisecond):
			return
		case <-deadline:
			t.Fatal("timed out waiting for badges")
		}
	}
}

func (h *harness) resize(t *testing.T, width, height int) {
	t.Helper()
	h.run(t, h.update(t, tea.WindowSizeMsg{Width: width, Height: height}))
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ResizeMaterializesWindow(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 10)

	assert.True(t, h.model.Ready)
	assert.Equal(t, []domain.ItemID{"README", "bibxml", "bibxml3"}, h.listing.ItemIDs())
	assert.Equal(t, "README", h.listing.Selected())

	_, height := h.listing.Viewport()
	assert.Equal(t, 10-ChromeHeight, height)
	assert.Len(t, h.model.window.Rows, 3)

	view := h.model.View()
	assert.Contains(t, view, "bibxml/")
	assert.Contains(t, view, "1/3")
}

func TestModel_ResolvesVisiblePathsOnly(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 10)
	h.drainBadges(t)

	// Directories are not resolved
	assert.Equal(t, []string{"public/README"}, h.resolver.Calls())
	assert.Equal(t, components.BadgeSuccess, h.model.badges["README"].State)

	// Expanding bibxml brings its paths into view
	h.run(t, h.update(t, keyPress("down")))
	require.Equal(t, "bibxml", h.listing.Selected())
	h.run(t, h.update(t, keyPress("enter")))
	h.drainBadges(t)

	assert.True(t, h.listing.IsExpanded("bibxml"))
	assert.ElementsMatch(t, []string{
		"public/README",
		"public/bibxml/reference.RFC.2119.xml",
		"public/bibxml/reference.RFC.8174.xml",
	}, h.resolver.Calls())
	assert.Equal(t, "manual", h.model.badges["bibxml/reference.RFC.2119.xml"].Label)
}

func TestModel_ErrorBadge(t *testing.T) {
	h := newHarness(t)
	h.resolver.Fail(domain.ErrServerOffline)
	h.resize(t, 80, 10)
	h.drainBadges(t)

	b := h.model.badges["README"]
	assert.Equal(t, components.BadgeError, b.State)
	assert.Equal(t, "offline", b.Label)
}

func TestModel_RequeueRetriesFailures(t *testing.T) {
	h := newHarness(t)
	h.resolver.Fail(errors.New("boom"))
	h.resize(t, 80, 10)
	h.drainBadges(t)
	require.Equal(t, components.BadgeError, h.model.badges["README"].State)

	h.resolver.Fail(nil)
	h.update(t, keyPress("r"))
	h.drainBadges(t)

	assert.Equal(t, components.BadgeSuccess, h.model.badges["README"].State)
	assert.Len(t, h.resolver.Calls(), 2)
}

func TestModel_FilterPullsInAncestors(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 10)

	h.update(t, keyPress("/"))
	require.True(t, h.model.filter.Focused())

	h.run(t, h.update(t, keyPress("8174")))

	assert.Equal(t, []domain.ItemID{"bibxml", "bibxml/reference.RFC.8174.xml"}, h.listing.ItemIDs())
	assert.Equal(t, "bibxml", h.listing.Selected())

	// esc clears the filter and restores the top level
	h.run(t, h.update(t, keyPress("esc")))
	assert.False(t, h.model.filter.Active())
	assert.Equal(t, []domain.ItemID{"README", "bibxml", "bibxml3"}, h.listing.ItemIDs())
}

func TestModel_TestResolutionOpensInspector(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 100, 20)
	h.drainBadges(t)

	h.run(t, h.update(t, keyPress("t")))

	assert.True(t, h.model.ShowInspector)
	assert.Equal(t, "public/README", h.model.inspector.Path())
	assert.Contains(t, h.resolver.Calls(), "public/README")
	assert.Contains(t, h.model.View(), "Test resolution")
}

func TestModel_TestResolutionNeedsPath(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 10)
	h.run(t, h.update(t, keyPress("down")))

	h.update(t, keyPress("t"))

	assert.False(t, h.model.ShowInspector)
	assert.True(t, h.model.StatusIsErr)
}

func TestModel_ScrollIsDebounced(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 2)

	first := h.update(t, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	second := h.update(t, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	require.NotNil(t, first)
	require.NotNil(t, second)

	// Only the last scroll's tick refreshes the window
	_, cmd := h.model.Update(scrollSettledMsg{seq: h.model.scrollSeq - 1})
	assert.Nil(t, cmd)
	_, cmd = h.model.Update(scrollSettledMsg{seq: h.model.scrollSeq})
	assert.NotNil(t, cmd)
}

func TestModel_CursorKeepsSelectionInView(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 3) // two list lines

	h.run(t, h.update(t, keyPress("end")))
	assert.Equal(t, "bibxml3", h.listing.Selected())

	offset, height := h.listing.Viewport()
	idx := h.listing.Index("bibxml3")
	assert.GreaterOrEqual(t, idx, offset)
	assert.Less(t, idx, offset+height)
}

func TestModel_ReloadKeepsExpandedItems(t *testing.T) {
	h := newHarness(t)
	h.resize(t, 80, 10)
	h.run(t, h.update(t, keyPress("down")))
	h.run(t, h.update(t, keyPress("enter")))
	require.True(t, h.listing.IsExpanded("bibxml"))

	reloaded := []string{"bibxml/reference.RFC.2119.xml", "extra/x.xml"}
	cmd := h.update(t, PathsReloadedMsg{Paths: reloaded})
	h.run(t, cmd)

	assert.Equal(t, []domain.ItemID{"bibxml", "bibxml/reference.RFC.2119.xml"}, h.listing.ItemIDs())
	assert.True(t, h.model.index.Tree().Contains("extra"))
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	cmd := h.update(t, keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
