// Package schemafetch supplies and caches the raw bytes behind a schema
// URI. It is the injection point the rest of the module calls SchemaFetch:
// a capability, not a hardwired transport, so callers can swap in an
// in-memory map for tests or a workspace-aware loader for an editor.
//
// The cache's in-flight request de-duplication mirrors the mutex-guarded
// map idiom the teacher's Compiler already uses for its schema cache and
// unresolvedRefs waiting list (compiler.go) — a promise slot per URI
// rather than a dependency on golang.org/x/sync/singleflight, which
// nothing in the retrieval pack reaches for.
package schemafetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Fetch retrieves the raw bytes named by uri.
type Fetch func(ctx context.Context, uri string) ([]byte, error)

// HTTPFetch builds a Fetch backed by net/http, mirroring the timeout the
// teacher's default HTTP loader uses in compiler.go.
func HTTPFetch(timeout time.Duration) Fetch {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, uri string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("schemafetch: build request for %q: %w", uri, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("schemafetch: fetch %q: %w", uri, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("schemafetch: fetch %q: unexpected status %d", uri, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

// FileFetch builds a Fetch for file:// URIs and bare filesystem paths.
func FileFetch() Fetch {
	return func(ctx context.Context, uri string) ([]byte, error) {
		p := uri
		if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
			p = u.Path
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("schemafetch: read %q: %w", uri, err)
		}
		return data, nil
	}
}

// StaticFetch builds a Fetch backed by an in-memory table, for tests and
// for schemas embedded directly in editor configuration.
func StaticFetch(byURI map[string][]byte) Fetch {
	return func(ctx context.Context, uri string) ([]byte, error) {
		data, ok := byURI[uri]
		if !ok {
			return nil, fmt.Errorf("schemafetch: no static entry for %q", uri)
		}
		return data, nil
	}
}

// ByScheme dispatches to a different Fetch depending on the URI's
// scheme. A URI whose scheme has no entry (including a schemeless path)
// goes to fallback, or fails when fallback is nil.
func ByScheme(byScheme map[string]Fetch, fallback Fetch) Fetch {
	return func(ctx context.Context, uri string) ([]byte, error) {
		scheme := ""
		if u, err := url.Parse(uri); err == nil {
			scheme = u.Scheme
		}
		if f, ok := byScheme[scheme]; ok {
			return f(ctx, uri)
		}
		if fallback != nil {
			return fallback(ctx, uri)
		}
		return nil, fmt.Errorf("schemafetch: no fetcher registered for scheme %q", scheme)
	}
}

// promise is a single in-flight fetch; goroutines racing for the same
// URI block on done instead of issuing duplicate requests.
type promise struct {
	done chan struct{}
	data []byte
	err  error
}

// Cache de-duplicates concurrent fetches for the same URI and remembers
// completed ones for the lifetime of the process, the same contract the
// teacher's Compiler.schemas cache gives compiled schemas.
type Cache struct {
	fetch Fetch

	mu       sync.Mutex
	inflight map[string]*promise
	done     map[string]*promise
}

// NewCache wraps fetch with de-duplication and a permanent success cache.
func NewCache(fetch Fetch) *Cache {
	return &Cache{
		fetch:    fetch,
		inflight: make(map[string]*promise),
		done:     make(map[string]*promise),
	}
}

// Get returns the cached bytes for uri, fetching them at most once even
// under concurrent callers. A failed fetch is not cached — a later call
// retries.
func (c *Cache) Get(ctx context.Context, uri string) ([]byte, error) {
	uri = normalizeKey(uri)

	c.mu.Lock()
	if p, ok := c.done[uri]; ok {
		c.mu.Unlock()
		return p.data, p.err
	}
	if p, ok := c.inflight[uri]; ok {
		c.mu.Unlock()
		select {
		case <-p.done:
			return p.data, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p := &promise{done: make(chan struct{})}
	c.inflight[uri] = p
	c.mu.Unlock()

	p.data, p.err = c.fetch(ctx, uri)
	close(p.done)

	c.mu.Lock()
	delete(c.inflight, uri)
	if p.err == nil {
		c.done[uri] = p
	}
	c.mu.Unlock()

	return p.data, p.err
}

// Invalidate drops any cached result for uri, forcing the next Get to
// fetch again. Used when a schema document on disk changes.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.done, normalizeKey(uri))
}

func normalizeKey(uri string) string {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i]
	}
	return uri
}
