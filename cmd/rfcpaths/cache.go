package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmcdole/rfcpaths/internal/cache"
	"github.com/mmcdole/rfcpaths/internal/config"
	"github.com/mmcdole/rfcpaths/internal/domain"
)

func newCacheCmd(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached resolutions",
	}

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached resolutions for the configured cache key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all {
				return a.clearAll(cmd.OutOrStdout())
			}
			return a.withCache(func(c *cache.Cache[*domain.ResolutionOutcome]) error {
				if err := c.Clear(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", a.cfg.CacheStoreKey())
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "delete cached resolutions for every cache key")

	cacheCmd.AddCommand(
		clearCmd,
		&cobra.Command{
			Use:   "info",
			Short: "Show how many resolutions are cached",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withCache(func(c *cache.Cache[*domain.ResolutionOutcome]) error {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries (ttl %s)\n",
						a.cfg.CacheStoreKey(), c.Len(), a.cfg.Cache.TTL)
					return nil
				})
			},
		},
	)
	return cacheCmd
}

// clearAll deletes every persisted envelope of the configured server
func (a *app) clearAll(w io.Writer) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeletePrefix(config.CacheKeyPrefix); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(w, "Cleared %s*\n", config.CacheKeyPrefix)
	return nil
}

// withCache opens the configured cache for the duration of fn
func (a *app) withCache(fn func(*cache.Cache[*domain.ResolutionOutcome]) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := cache.Open[*domain.ResolutionOutcome](st, a.cfg.CacheStoreKey(), nil, cache.Options{
		TTL:           a.cfg.Cache.TTL,
		FlushInterval: a.cfg.Cache.FlushInterval,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer c.Destroy()

	return fn(c)
}
