package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmcdole/rfcpaths/internal/config"
	applog "github.com/mmcdole/rfcpaths/internal/log"
	"github.com/mmcdole/rfcpaths/internal/store"
)

// app carries what every subcommand needs once flags are parsed
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "rfcpaths",
		Short: "Browse reference paths and their resolution outcomes",
		Long: `rfcpaths shows a path index as an expandable tree and resolves every
visible path against the resolution service, one request at a time.
Outcomes are cached between runs.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.load() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.browse(cmd.Context())
		},
		Args: cobra.NoArgs,
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "config file (default is $HOME/.config/rfcpaths/config.yaml)")
	pf.String("server", "", "resolution service base URL")
	pf.String("source", "", "path index: file or http(s) URL")
	pf.String("cache-key", "", "cache key; change it to start with an empty cache")
	pf.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	_ = a.v.BindPFlag("server.url", pf.Lookup("server"))
	_ = a.v.BindPFlag("source.location", pf.Lookup("source"))
	_ = a.v.BindPFlag("cache.key", pf.Lookup("cache-key"))
	_ = a.v.BindPFlag("logging.level", pf.Lookup("log-level"))

	root.AddCommand(
		newBrowseCmd(a),
		newResolveCmd(a),
		newCacheCmd(a),
	)
	return root
}

// load reads configuration and sets up the logger
func (a *app) load() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	logger, err := applog.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = applog.NullLogger()
	}
	slog.SetDefault(logger)
	a.logger = logger

	logger.Info("starting rfcpaths", "version", Version)
	return nil
}

// openStore opens the durable store for the configured server
func (a *app) openStore() (*store.Store, error) {
	dir, err := config.ExpandHome(a.cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dir, a.cfg.Server.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return st, nil
}
