package offgate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	c "github.com/zhugt2019/offgate/codec"
	"github.com/zhugt2019/offgate/internal/util"
	"github.com/zhugt2019/offgate/internal/wire"
	mf "github.com/zhugt2019/offgate/manifest"
	st "github.com/zhugt2019/offgate/store"
)

// State is the gateway's lifecycle position. The host drives transitions:
// New -> (Install) -> Waiting -> (Activate or skip-waiting) -> Active.
type State int32

const (
	StateNew State = iota
	StateInstalling
	StateWaiting
	StateActivating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateWaiting:
		return "waiting"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type gateway struct {
	ns          string
	version     string
	base        *url.URL
	precache    []string
	offlinePath string
	nfPrefixes  []string

	store st.Store
	man   mf.Manifest
	codec c.Codec[Stored]
	next  http.RoundTripper
	log   Logger
	hooks Hooks

	maxBody    int
	maxAge     time.Duration
	bestEffort bool
	appTitle   string
	notifier   Notifier
	windows    WindowList
	enabled    bool

	state    atomic.Int32
	handlers map[EventKind]handler
}

func newGateway(opts Options) (*gateway, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("offgate: store is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("offgate: namespace is required")
	}
	if opts.Version == "" {
		return nil, fmt.Errorf("offgate: version is required")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("offgate: base URL must be absolute, got %q", opts.BaseURL)
	}

	g := &gateway{
		ns:          opts.Namespace,
		version:     opts.Version,
		base:        base,
		offlinePath: coalesce(opts.OfflinePath, DefaultOfflinePath),
		store:       opts.Store,
		bestEffort:  opts.BestEffortInstall,
		maxAge:      opts.MaxAge,
		appTitle:    coalesce(opts.AppTitle, DefaultAppTitle),
		notifier:    opts.Notifier,
		windows:     opts.Windows,
		enabled:     !opts.Disabled,
	}

	// defaults
	g.log = coalesce[Logger](opts.Logger, NopLogger{})
	g.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	g.next = coalesce[http.RoundTripper](opts.Transport, http.DefaultTransport)

	if opts.Codec != nil {
		g.codec = opts.Codec
	} else {
		g.codec = c.JSON[Stored]{}
	}
	if opts.Manifest != nil {
		g.man = opts.Manifest
	} else {
		g.man = mf.NewLocalManifest()
	}
	if opts.Precache != nil {
		g.precache = append([]string(nil), opts.Precache...)
	} else {
		g.precache = append([]string(nil), DefaultPrecache...)
	}
	if opts.NetworkFirstPrefixes != nil {
		g.nfPrefixes = append([]string(nil), opts.NetworkFirstPrefixes...)
	} else {
		g.nfPrefixes = append([]string(nil), DefaultNetworkFirstPrefixes...)
	}
	switch {
	case opts.MaxStoredBody < 0:
		g.maxBody = 0 // unlimited
	case opts.MaxStoredBody == 0:
		g.maxBody = DefaultMaxStoredBody
	default:
		g.maxBody = opts.MaxStoredBody
	}

	g.handlers = g.eventHandlers()
	return g, nil
}

func (g *gateway) StaticGeneration() string  { return g.ns + "-v" + g.version }
func (g *gateway) RuntimeGeneration() string { return g.ns + "-runtime" }
func (g *gateway) genPrefix() string         { return g.ns + "-" }

func (g *gateway) State() State { return State(g.state.Load()) }

// Install fetches every precache URL and stores it into the static
// generation. Strict mode treats the list as one atomic unit: any failure
// aborts, rolls back partial writes, and leaves the gateway uninstalled.
// Best-effort mode logs failures and installs whatever succeeded.
func (g *gateway) Install(ctx context.Context) error {
	if !g.enabled {
		return nil
	}
	if !g.state.CompareAndSwap(int32(StateNew), int32(StateInstalling)) {
		return fmt.Errorf("offgate: install from state %s", g.State())
	}

	gen := g.StaticGeneration()
	var failures []PrecacheFailure
	for _, p := range g.precache {
		if err := g.precacheOne(ctx, gen, p); err != nil {
			failures = append(failures, PrecacheFailure{URL: p, Err: err})
			g.hooks.PrecacheFailed(p, err)
			g.log.Warn("precache fetch failed", Fields{"url": p, "err": err})
		}
	}

	if len(failures) > 0 && !g.bestEffort {
		// no partial static generation is valid; roll back what was stored
		if err := g.dropGeneration(ctx, gen); err != nil {
			g.log.Error("rollback of partial static generation failed", Fields{"generation": gen, "err": err})
		}
		g.state.Store(int32(StateNew))
		return &InstallError{Failures: failures, Total: len(g.precache)}
	}

	g.state.Store(int32(StateWaiting))
	g.log.Info("installed static generation", Fields{
		"generation": gen,
		"assets":     len(g.precache) - len(failures),
	})
	return nil
}

func (g *gateway) precacheOne(ctx context.Context, gen, path string) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	u := g.base.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := g.next.RoundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	snap := Stored{Status: resp.StatusCode, Header: cloneHeader(resp.Header), Body: body}
	return g.put(ctx, gen, util.RequestKey(http.MethodGet, u), snap, 0)
}

// put encodes a snapshot, frames it, writes it to the store, and records the
// membership in the manifest. A write the store rejects is an error; callers
// on the hot path downgrade it to a log line.
func (g *gateway) put(ctx context.Context, gen, key string, snap Stored, ttl time.Duration) error {
	payload, err := g.codec.Encode(snap)
	if err != nil {
		return err
	}
	raw := wire.EncodeEntry(time.Now(), payload)
	storageKey := util.EntryKey(gen, key)
	ok, err := g.store.Set(ctx, storageKey, raw, int64(len(raw)), ttl)
	if err != nil {
		return err
	}
	if !ok {
		g.hooks.StoreSetRejected(storageKey)
		return fmt.Errorf("offgate: store rejected write for %s", key)
	}
	return g.man.Add(ctx, gen, key)
}

// Activate enumerates the namespace and deletes every generation that is
// neither the current static nor the current runtime one. Afterwards the
// gateway serves traffic as the controller.
func (g *gateway) Activate(ctx context.Context) error {
	if !g.enabled {
		return nil
	}
	if !g.state.CompareAndSwap(int32(StateWaiting), int32(StateActivating)) {
		return fmt.Errorf("offgate: activate from state %s", g.State())
	}

	current := map[string]bool{
		g.StaticGeneration():  true,
		g.RuntimeGeneration(): true,
	}
	gens, err := g.man.Generations(ctx, g.genPrefix())
	if err != nil {
		g.state.Store(int32(StateWaiting))
		return err
	}
	for _, gen := range gens {
		if current[gen] {
			continue
		}
		if err := g.dropGeneration(ctx, gen); err != nil {
			g.state.Store(int32(StateWaiting))
			return err
		}
	}

	g.state.Store(int32(StateActive))
	g.log.Info("activated", Fields{
		"static":  g.StaticGeneration(),
		"runtime": g.RuntimeGeneration(),
		"purged":  len(gens) - countCurrent(gens, current),
	})
	return nil
}

func countCurrent(gens []string, current map[string]bool) int {
	n := 0
	for _, g := range gens {
		if current[g] {
			n++
		}
	}
	return n
}

func (g *gateway) dropGeneration(ctx context.Context, gen string) error {
	keys, err := g.man.Keys(ctx, gen)
	if err != nil {
		return err
	}
	for _, k := range keys {
		_ = g.store.Del(ctx, util.EntryKey(gen, k)) // best-effort
	}
	if err := g.man.Drop(ctx, gen); err != nil {
		return err
	}
	g.hooks.GenerationDropped(gen, len(keys))
	g.log.Debug("dropped generation", Fields{"generation": gen, "entries": len(keys)})
	return nil
}

func (g *gateway) Close(ctx context.Context) error {
	// Close manifest first (best effort)
	if g.man != nil {
		_ = g.man.Close(ctx)
	}
	if g.store != nil {
		return g.store.Close(ctx)
	}
	return nil
}
