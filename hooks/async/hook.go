// Package asynchook decouples hook delivery from the request path: events
// are queued and handed to the inner Hooks on worker goroutines. The queue
// drops on overflow; hooks are observability, not bookkeeping.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	gw, _ := offgate.New(offgate.Options{
//	    Namespace: "appen-dictionary",
//	    Version:   "3",
//	    BaseURL:   "https://app.example",
//	    Store:     store,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/zhugt2019/offgate"
)

type Hooks struct {
	inner offgate.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ offgate.Hooks = (*Hooks)(nil)

func New(inner offgate.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string)       { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) StoreSetRejected(k string)  { h.try(func() { h.inner.StoreSetRejected(k) }) }
func (h *Hooks) FallbackServed(k string)    { h.try(func() { h.inner.FallbackServed(k) }) }
func (h *Hooks) OfflinePageServed(k string) { h.try(func() { h.inner.OfflinePageServed(k) }) }
func (h *Hooks) OfflineSynthesized(k string) {
	h.try(func() { h.inner.OfflineSynthesized(k) })
}
func (h *Hooks) GenerationDropped(gen string, n int) {
	h.try(func() { h.inner.GenerationDropped(gen, n) })
}
func (h *Hooks) PrecacheFailed(url string, err error) {
	h.try(func() { h.inner.PrecacheFailed(url, err) })
}
func (h *Hooks) SyncRequested(tag string) { h.try(func() { h.inner.SyncRequested(tag) }) }
