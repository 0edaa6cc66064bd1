package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mmcdole/rfcpaths/internal/config"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// runSetup asks for the server and the path index and saves them
func (a *app) runSetup() error {
	fmt.Println()
	fmt.Println("Welcome to rfcpaths!")
	fmt.Println()

	cfg := a.cfg
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Resolution service URL").
				Placeholder("https://bib.example.org/").
				Value(&cfg.Server.URL).
				Validate(validateServerURL),
			huh.NewInput().
				Title("Global path prefix").
				Description("Prepended to every path, e.g. public/rfc/").
				Value(&cfg.Server.GlobalPrefix),
			huh.NewInput().
				Title("Path index").
				Description("File path or http(s) URL of a JSON, YAML or plain path list").
				Value(&cfg.Source.Location).
				Validate(validateLocation),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	cfg.Server.URL = strings.TrimSpace(cfg.Server.URL)
	cfg.Source.Location = strings.TrimSpace(cfg.Source.Location)

	file := a.configFile
	if file == "" {
		file = config.DefaultConfigFile()
	}
	if err := config.Save(a.v, cfg, file); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	a.logger.Info("saved configuration", "file", file)
	fmt.Printf("✓ Configuration saved to %s\n", file)
	return nil
}

func validateServerURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("server URL cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

func validateLocation(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("path index cannot be empty")
	}
	return nil
}
