package offgate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zhugt2019/offgate/internal/util"
	"github.com/zhugt2019/offgate/internal/wire"
)

// RoundTrip classifies the request and routes it to a strategy. Non-GET and
// non-http(s) requests are handed to the inner transport untouched.
func (g *gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	if !g.enabled || !g.intercepts(req) {
		return g.next.RoundTrip(req)
	}
	if g.networkFirstPath(req.URL.Path) {
		return g.networkFirst(req)
	}
	return g.cacheFirst(req)
}

func (g *gateway) intercepts(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	switch req.URL.Scheme {
	case "http", "https":
		return true
	}
	return false
}

func (g *gateway) networkFirstPath(path string) bool {
	for _, p := range g.nfPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// cacheFirst serves static assets: stored response if present, else a live
// fetch returned as-is. Only the installer writes this generation, so a miss
// is never written back. A network failure on the miss path propagates.
func (g *gateway) cacheFirst(req *http.Request) (*http.Response, error) {
	key := util.RequestKey(req.Method, req.URL)
	if snap, ok := g.lookup(req.Context(), g.StaticGeneration(), key, 0); ok {
		return g.respond(req, snap), nil
	}
	return g.next.RoundTrip(req)
}

// networkFirst prefers a fresh response and captures it for later; on
// failure it degrades through a single-pass chain: last known-good runtime
// copy, the offline page for navigations, then a synthesized 503.
func (g *gateway) networkFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := util.RequestKey(req.Method, req.URL)

	resp, err := g.next.RoundTrip(req)
	if err == nil {
		var body []byte
		body, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewReader(body))
			g.captureRuntime(ctx, key, resp, body)
			return resp, nil
		}
		// body died mid-stream; fall through to the degradation chain
	}
	g.log.Debug("network fetch failed", Fields{"key": key, "err": err})

	if snap, ok := g.lookup(ctx, g.RuntimeGeneration(), key, g.maxAge); ok {
		g.hooks.FallbackServed(key)
		return g.respond(req, snap), nil
	}

	if isNavigation(req) {
		offURL := g.base.ResolveReference(&url.URL{Path: g.offlinePath})
		offKey := util.RequestKey(http.MethodGet, offURL)
		if snap, ok := g.lookup(ctx, g.StaticGeneration(), offKey, 0); ok {
			g.hooks.OfflinePageServed(key)
			return g.respond(req, snap), nil
		}
	}

	g.hooks.OfflineSynthesized(key)
	return g.offlineResponse(req), nil
}

// captureRuntime stores a copy of a known-good response into the runtime
// generation, overwriting any prior entry for the same request identity.
// The fetch-then-store sequence is not transactional: a failed write forgoes
// the update, never corrupts it.
func (g *gateway) captureRuntime(ctx context.Context, key string, resp *http.Response, body []byte) {
	if resp.StatusCode != http.StatusOK {
		return // only known-good responses become fallback material
	}
	if g.maxBody > 0 && len(body) > g.maxBody {
		g.log.Debug("response too large to cache", Fields{"key": key, "size": len(body)})
		return
	}
	snap := Stored{Status: resp.StatusCode, Header: cloneHeader(resp.Header), Body: body}
	if err := g.put(ctx, g.RuntimeGeneration(), key, snap, g.maxAge); err != nil {
		g.log.Debug("runtime cache write skipped", Fields{"key": key, "err": err})
	}
}

// lookup reads and validates one entry. Corrupt or expired entries are
// deleted and reported as a miss (self-heal). maxAge <= 0 disables the age
// check.
func (g *gateway) lookup(ctx context.Context, gen, key string, maxAge time.Duration) (Stored, bool) {
	storageKey := util.EntryKey(gen, key)
	raw, ok, err := g.store.Get(ctx, storageKey)
	if err != nil {
		g.log.Warn("store get error", Fields{"key": key, "err": err})
		return Stored{}, false
	}
	if !ok {
		return Stored{}, false
	}
	fetchedAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		_ = g.store.Del(ctx, storageKey) // self-heal corrupt
		g.hooks.SelfHeal(storageKey, "corrupt")
		return Stored{}, false
	}
	if maxAge > 0 && time.Since(fetchedAt) > maxAge {
		_ = g.store.Del(ctx, storageKey)
		g.hooks.SelfHeal(storageKey, "expired")
		return Stored{}, false
	}
	snap, err := g.codec.Decode(payload)
	if err != nil {
		_ = g.store.Del(ctx, storageKey) // self-heal
		g.hooks.SelfHeal(storageKey, "value_decode")
		return Stored{}, false
	}
	return snap, true
}

func (g *gateway) respond(req *http.Request, snap Stored) *http.Response {
	status := snap.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        cloneHeader(snap.Header),
		Body:          io.NopCloser(bytes.NewReader(snap.Body)),
		ContentLength: int64(len(snap.Body)),
		Request:       req,
	}
}

const offlineBody = `{"error":"offline","offline":true}`

// offlineResponse is the end of the degradation chain: nothing cached,
// network down. Machine-readable so the client can render its offline state.
func (g *gateway) offlineResponse(req *http.Request) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable)),
		StatusCode:    http.StatusServiceUnavailable,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(strings.NewReader(offlineBody)),
		ContentLength: int64(len(offlineBody)),
		Request:       req,
	}
}

// isNavigation mirrors the browser's request.mode === "navigate": top-level
// page loads carry Sec-Fetch-Mode or at least an HTML Accept header.
func isNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func cloneHeader(h http.Header) http.Header {
	c := h.Clone()
	if c == nil {
		c = make(http.Header)
	}
	return c
}
