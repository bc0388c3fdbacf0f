package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	cid "github.com/ipfs/go-cid"
)

// MaxContentResponseSize is the maximum allowed response body size for content
// fetches (1 GB).
const MaxContentResponseSize = 1 << 30

// ContentPathPrefix is the HTTP path under which nodes serve stored content.
const ContentPathPrefix = "/_phantom/content/"

// ContentResolver fetches content by CID from the local store first and then
// from node HTTP endpoints in order. Remote data is verified against the CID
// and cached locally.
type ContentResolver struct {
	Store     *FileStore   // local content store; may be nil
	Endpoints []string     // node base URLs (e.g. "http://localhost:8545")
	Client    *http.Client // HTTP client for remote fetches; nil uses default
}

// NewContentResolver creates a ContentResolver with the given local store.
func NewContentResolver(store *FileStore, endpoints ...string) *ContentResolver {
	return &ContentResolver{
		Store:     store,
		Endpoints: endpoints,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch returns the content for c.
func (r *ContentResolver) Fetch(ctx context.Context, c cid.Cid) ([]byte, error) {
	if !c.Defined() {
		return nil, ErrInvalidCID
	}

	if r.Store != nil {
		data, err := r.Store.Get(c)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolver: local store: %w", err)
		}
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	for _, ep := range r.Endpoints {
		data, err := r.fetchFromEndpoint(ctx, client, ep, c)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if Verify(c, data) != nil {
			continue
		}
		if r.Store != nil {
			_, _ = r.Store.Put(data) // best-effort cache
		}
		return data, nil
	}

	return nil, fmt.Errorf("resolver: %w: %s", ErrNotFound, c)
}

// fetchFromEndpoint performs GET {baseURL}/_phantom/content/{cid}.
func (r *ContentResolver) fetchFromEndpoint(ctx context.Context, client *http.Client, baseURL string, c cid.Cid) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+ContentPathPrefix+c.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("resolver: endpoint %s: %w", baseURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolver: endpoint %s: %w", baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolver: endpoint %s: HTTP %d", baseURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentResponseSize))
	if err != nil {
		return nil, fmt.Errorf("resolver: endpoint %s: read body: %w", baseURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("resolver: endpoint %s: empty response", baseURL)
	}
	return data, nil
}
