package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// maxDocumentSize bounds a single fetched document.
const maxDocumentSize = 10 * 1024 * 1024

// Resource is the raw content of a fetched document.
type Resource struct {
	Data        []byte
	ContentType string
}

// Fetcher retrieves a configuration document by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (Resource, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ref string) (Resource, error)

// Fetch calls f(ctx, ref).
func (f FetcherFunc) Fetch(ctx context.Context, ref string) (Resource, error) {
	return f(ctx, ref)
}

// HTTPFetcher performs plain GET requests. The zero value uses a client
// without a timeout; a request that never completes never contributes.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET for ref and returns the body. Non-2xx responses are
// errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (Resource, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Resource{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return Resource{}, fmt.Errorf("get %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Resource{}, fmt.Errorf("get %s: unexpected status %s", ref, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return Resource{}, fmt.Errorf("read body: %w", err)
	}
	return Resource{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// FileFetcher reads documents from the local file system. It accepts plain
// paths and file:// URLs.
type FileFetcher struct{}

// Fetch reads the file named by ref.
func (FileFetcher) Fetch(ctx context.Context, ref string) (Resource, error) {
	if err := ctx.Err(); err != nil {
		return Resource{}, err
	}
	path := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return Resource{}, fmt.Errorf("parse file url: %w", err)
		}
		path = u.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Resource{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Resource{Data: data}, nil
}

// SchemeFetcher dispatches to a Fetcher by URL scheme. References without a
// scheme are treated as file paths.
type SchemeFetcher struct {
	schemes map[string]Fetcher
}

// NewSchemeFetcher returns a fetcher handling http, https, file and bare
// paths. A nil client means http.DefaultClient.
func NewSchemeFetcher(client *http.Client) *SchemeFetcher {
	web := &HTTPFetcher{Client: client}
	return &SchemeFetcher{
		schemes: map[string]Fetcher{
			"":      FileFetcher{},
			"file":  FileFetcher{},
			"http":  web,
			"https": web,
		},
	}
}

// Register installs or replaces the fetcher for scheme.
func (f *SchemeFetcher) Register(scheme string, fetcher Fetcher) {
	f.schemes[strings.ToLower(scheme)] = fetcher
}

// Fetch selects the fetcher for ref's scheme.
func (f *SchemeFetcher) Fetch(ctx context.Context, ref string) (Resource, error) {
	scheme := refScheme(ref)
	fetcher, ok := f.schemes[scheme]
	if !ok {
		return Resource{}, fmt.Errorf("unsupported scheme %q", scheme)
	}
	return fetcher.Fetch(ctx, ref)
}

// refScheme returns the lower-cased URL scheme of ref, or "" for file paths
// (including Windows drive paths such as C:\apps).
func refScheme(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) < 2 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
