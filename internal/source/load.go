// Package source loads the set of reference paths the browser shows and
// serves it as a tree.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

// ErrEmptySource is returned when a location yields no paths
var ErrEmptySource = errors.New("path source is empty")

// LoadPaths reads the path index at location, which is a file path or an
// http(s) URL. JSON arrays, YAML lists and newline-separated lists are
// accepted. Paths are trimmed of surrounding whitespace and slashes, and
// deduplicated in order.
func LoadPaths(ctx context.Context, location string, client *http.Client) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if IsRemote(location) {
		data, err = fetch(ctx, location, client)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read path source: %w", err)
	}

	raw, err := ParsePaths(data, formatOf(location))
	if err != nil {
		return nil, fmt.Errorf("failed to parse path source %s: %w", location, err)
	}

	paths := cleanPaths(raw)
	if len(paths) == 0 {
		return nil, ErrEmptySource
	}
	return paths, nil
}

// Format of a path index
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
	FormatLines
)

// ParsePaths decodes data in the given format. FormatAuto treats a leading
// '[' as JSON and anything else as lines.
func ParsePaths(data []byte, format Format) ([]string, error) {
	if format == FormatAuto {
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			format = FormatJSON
		} else {
			format = FormatLines
		}
	}

	var paths []string
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &paths); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &paths); err != nil {
			return nil, err
		}
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			paths = append(paths, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func formatOf(location string) Format {
	if IsRemote(location) {
		if i := strings.IndexAny(location, "?#"); i >= 0 {
			location = location[:i]
		}
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt":
		return FormatLines
	default:
		return FormatAuto
	}
}

func cleanPaths(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	paths := make([]string, 0, len(raw))
	for _, p := range raw {
		p = cleanPath(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths
}

// cleanPath trims p and drops empty segments, so "/a//b/" becomes "a/b"
func cleanPath(p string) string {
	segments := strings.FieldsFunc(strings.TrimSpace(p), func(r rune) bool { return r == '/' })
	return strings.Join(segments, domain.Separator)
}

// IsRemote reports whether location is an http(s) URL rather than a file
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func fetch(ctx context.Context, url string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
