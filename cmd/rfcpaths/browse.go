package main

import (
	"context"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/rfcpaths/internal/cache"
	"github.com/mmcdole/rfcpaths/internal/config"
	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/listing"
	applog "github.com/mmcdole/rfcpaths/internal/log"
	"github.com/mmcdole/rfcpaths/internal/resolver"
	"github.com/mmcdole/rfcpaths/internal/source"
	"github.com/mmcdole/rfcpaths/internal/tui"
	"github.com/mmcdole/rfcpaths/internal/watcher"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the path index (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd.Context())
		},
	}
}

// browse wires the cache, resolver, watcher and listing and runs the TUI
func (a *app) browse(ctx context.Context) error {
	if !a.cfg.IsConfigured() {
		if err := a.runSetup(); err != nil {
			return err
		}
	}
	cfg := a.cfg
	logger := a.logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := cache.Open[*domain.ResolutionOutcome](st, cfg.CacheStoreKey(), nil, cache.Options{
		TTL:           cfg.Cache.TTL,
		FlushInterval: cfg.Cache.FlushInterval,
		Logger:        applog.Component(logger, "cache"),
	})
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() {
		if err := c.Flush(); err != nil {
			logger.Error("failed to store cached data", "error", err)
		}
		c.Destroy()
	}()

	location := cfg.Source.Location
	if !source.IsRemote(location) {
		if location, err = config.ExpandHome(location); err != nil {
			return err
		}
	}

	httpClient := &http.Client{Timeout: cfg.Server.Timeout}
	paths, err := source.LoadPaths(ctx, location, httpClient)
	if err != nil {
		return fmt.Errorf("failed to load paths: %w", err)
	}
	tree := source.NewTree(paths)
	index := source.NewIndex(tree)
	logger.Info("loaded path index", "location", location, "paths", tree.Len())

	res := resolver.New(cfg.Server.URL, cfg.Server.ReferenceURL, resolver.Options{
		HTTPClient: httpClient,
		Logger:     applog.Component(logger, "resolver"),
	})

	w := watcher.New(c, res, watcher.Options{
		Prefix: cfg.Server.GlobalPrefix,
		Logger: applog.Component(logger, "watcher"),
	})
	defer w.Close()

	l := listing.New(tree.Reveal(cfg.UI.Selected), listing.Options{
		ItemHeight:   cfg.UI.ItemHeight,
		MarginBefore: cfg.UI.MarginBefore,
		MarginAfter:  cfg.UI.MarginAfter,
		Selected:     cfg.UI.Selected,
		Provider:     listing.FromItemProvider(index),
		OnWindowChange: func(win listing.Window) {
			logger.Debug("window changed", "first", win.First, "last", win.Last, "extent", win.Extent)
		},
		Logger: applog.Component(logger, "listing"),
	})

	var reloads chan []string
	if cfg.Source.Watch && !source.IsRemote(location) {
		reloads = make(chan []string, 1)
		go a.watchSource(ctx, location, reloads)
	}

	model := tui.NewModel(tui.Options{
		Listing:        l,
		Watcher:        w,
		Index:          index,
		Resolver:       res,
		Prefix:         cfg.Server.GlobalPrefix,
		ScrollDebounce: cfg.UI.ScrollDebounce,
		Reloads:        reloads,
		Logger:         applog.Component(logger, "tui"),
	})
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// watchSource forwards reloads of the path index file. Only the newest
// list is kept when the TUI falls behind.
func (a *app) watchSource(ctx context.Context, location string, reloads chan []string) {
	onChange := func(paths []string) {
		select {
		case <-reloads:
		default:
		}
		select {
		case reloads <- paths:
		case <-ctx.Done():
		}
	}

	err := source.Watch(ctx, location, onChange, source.WatchOptions{
		Logger: applog.Component(a.logger, "source"),
	})
	if err != nil && ctx.Err() == nil {
		a.logger.Error("stopped watching path index", "error", err)
	}
}
