package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/rfcpaths/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "rfcpaths/1.0"
)

// Options configures a Resolver
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Resolver performs path resolution against the resolution service.
// It implements domain.PathResolver and does not queue; each call goes
// straight to the network.
type Resolver struct {
	baseURL      string
	referenceURL string
	httpClient   *http.Client
	logger       *slog.Logger
}

// New creates a resolver for baseURL. referenceURL is used for comparisons.
func New(baseURL, referenceURL string, opts Options) *Resolver {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Resolver{
		baseURL:      baseURL,
		referenceURL: referenceURL,
		httpClient:   client,
		logger:       opts.Logger,
	}
}

// response is the part of an HTTP response the resolver cares about
type response struct {
	header http.Header
	body   []byte
}

// Resolve performs exactly one primary request for path. Detailed keeps the
// per-method outcomes and the payload; Compare fetches the reference copy in
// parallel, and a failure there never fails the resolution.
func (r *Resolver) Resolve(ctx context.Context, path string, opts domain.ResolveOptions) (*domain.ResolutionOutcome, error) {
	g, gctx := errgroup.WithContext(ctx)

	var primary *response
	g.Go(func() error {
		resp, err := r.get(gctx, r.baseURL, path)
		if err != nil {
			return err
		}
		primary = resp
		return nil
	})

	var reference *string
	if opts.Compare {
		g.Go(func() error {
			resp, err := r.get(gctx, r.referenceURL, path)
			if err != nil {
				if gctx.Err() == nil {
					r.logger.Error("unable to fetch reference data for comparison", "path", path, "error", err)
				}
				return nil
			}
			body := string(resp.body)
			reference = &body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome, err := ParseOutcome(primary.header.Get(HeaderMethods), primary.header.Get(HeaderOutcomes))
	if err != nil {
		r.logger.Warn("malformed resolution outcome", "path", path, "error", err)
	}

	if opts.Detailed {
		outcome.ResolvedXML = string(primary.body)
	} else {
		outcome.Methods = nil
	}

	if opts.Compare {
		outcome.Compared = true
		outcome.ReferenceXML = reference
	}

	r.logger.Debug("resolved path",
		"path", path,
		"primary", outcome.PrimaryMethod,
		"succeeded", outcome.SucceededMethod,
	)

	return outcome, nil
}

// URL returns the full primary URL for path
func (r *Resolver) URL(path string) (string, error) {
	return joinURL(r.baseURL, path)
}

func joinURL(base, path string) (string, error) {
	u, err := url.JoinPath(base, strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid URL for %q: %w", path, err)
	}
	return u, nil
}

// get performs a GET request and returns headers and body of a 2xx response
func (r *Resolver) get(ctx context.Context, base, path string) (*response, error) {
	reqURL, err := joinURL(base, path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml, text/xml, */*")

	r.logger.Debug("resolution request", "url", reqURL)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Error("resolution request failed", "url", reqURL, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		r.logger.Error("resolution request error", "url", reqURL, "status", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return &response{header: resp.Header, body: body}, nil
}

// StatusError reports a non-2xx response
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
