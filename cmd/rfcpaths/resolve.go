package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/resolver"
)

const defaultWrapWidth = 100

func newResolveCmd(a *app) *cobra.Command {
	var opts domain.ResolveOptions

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve one path and print a report",
		Long: `Resolve sends a single request for path, with the configured global
prefix, and prints the outcome. The resolution queue and the cache are not
used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Server.URL == "" {
				return fmt.Errorf("no resolution service configured (set server.url or pass --server)")
			}

			res := resolver.New(a.cfg.Server.URL, a.cfg.Server.ReferenceURL, resolver.Options{
				HTTPClient: &http.Client{Timeout: a.cfg.Server.Timeout},
				Logger:     a.logger,
			})

			path := a.cfg.Server.GlobalPrefix + strings.TrimLeft(args[0], "/")
			outcome, err := res.Resolve(cmd.Context(), path, opts)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", path, err)
			}

			url, err := res.URL(path)
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), renderReport(path, url, outcome))
		},
	}

	cmd.Flags().BoolVarP(&opts.Detailed, "detailed", "d", false, "include the method chain and the resolved XML")
	cmd.Flags().BoolVar(&opts.Compare, "compare", false, "also fetch the reference XML")
	return cmd
}

// printMarkdown renders md with glamour when stdout is a terminal and
// writes it unchanged otherwise
func printMarkdown(w io.Writer, md string) error {
	fd := int(os.Stdout.Fd())
	if w != io.Writer(os.Stdout) || !term.IsTerminal(fd) {
		_, err := io.WriteString(w, md)
		return err
	}

	width := defaultWrapWidth
	if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
		width = min(cols, defaultWrapWidth)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
