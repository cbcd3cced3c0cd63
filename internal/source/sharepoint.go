package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/godilite/workforce-intel/internal/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
)

var ErrFetchFailed = errors.New("fetch failed")

const defaultFetchTimeout = 60 * time.Second

// Target is one file to download and where to put it.
type Target struct {
	Role       string
	RemotePath string
	Dest       string
}

// SharePointFetcher downloads workbooks from a SharePoint site using the
// client-credentials grant.
type SharePointFetcher struct {
	siteURL string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

type fetcherOptions struct {
	tokenURL string
	scope    string
}

type FetcherOption func(*fetcherOptions)

// WithTokenURL overrides the Azure AD token endpoint.
func WithTokenURL(u string) FetcherOption {
	return func(o *fetcherOptions) { o.tokenURL = u }
}

// WithScope overrides the requested OAuth2 scope.
func WithScope(scope string) FetcherOption {
	return func(o *fetcherOptions) { o.scope = scope }
}

func NewSharePointFetcher(ctx context.Context, cfg config.SharePointConfig, logger *zap.Logger, opts ...FetcherOption) (*SharePointFetcher, error) {
	if !cfg.Configured() {
		return nil, errors.New("sharepoint credentials are not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	site, err := url.Parse(strings.TrimRight(cfg.SiteURL, "/"))
	if err != nil || site.Host == "" {
		return nil, fmt.Errorf("invalid sharepoint site url %q", cfg.SiteURL)
	}

	options := &fetcherOptions{
		tokenURL: fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		scope:    fmt.Sprintf("%s://%s/.default", site.Scheme, site.Host),
	}
	for _, opt := range opts {
		opt(options)
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     options.tokenURL,
		Scopes:       []string{options.scope},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	// The client refreshes tokens with this context for its whole life, so
	// keep its values but not its cancellation.
	return &SharePointFetcher{
		siteURL: site.String(),
		client:  cc.Client(context.WithoutCancel(ctx)),
		timeout: timeout,
		logger:  logger.Named("sharepoint"),
	}, nil
}

// FetchAll downloads every target concurrently. Each file is tried once. Nothing
// is written to a destination unless every download succeeds.
func (f *SharePointFetcher) FetchAll(ctx context.Context, targets []Target) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	temps := make([]string, len(targets))
	defer func() {
		for _, tmp := range temps {
			if tmp != "" {
				_ = os.Remove(tmp)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			tmp, err := f.download(gctx, t)
			if err != nil {
				return err
			}
			temps[i] = tmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, t := range targets {
		if err := os.Rename(temps[i], t.Dest); err != nil {
			return fmt.Errorf("install %s file: %w", t.Role, err)
		}
		temps[i] = ""
		f.logger.Info("file downloaded", zap.String("role", t.Role), zap.String("dest", t.Dest))
	}
	return nil
}

func (f *SharePointFetcher) download(ctx context.Context, t Target) (string, error) {
	endpoint := fmt.Sprintf("%s/_api/web/GetFileByServerRelativeUrl('%s')/$value",
		f.siteURL, url.PathEscape(strings.ReplaceAll(t.RemotePath, "'", "''")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetchFailed, t.Role, resp.StatusCode)
	}

	dir := filepath.Dir(t.Dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}

	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, t.Role, err)
	}
	return tmp.Name(), nil
}
