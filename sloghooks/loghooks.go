// Package sloghooks logs gateway hook events through log/slog, with
// per-event sampling so hot paths cannot flood the logs.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/zhugt2019/offgate"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery uint64
	FallbackEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix so request URLs
	// (which may carry search queries) stay out of the logs.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	fallbackCtr atomic.Uint64
}

var _ offgate.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(every uint64, ctr *atomic.Uint64) bool {
	if every <= 1 {
		return true
	}
	return ctr.Add(1)%every == 1
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("offgate.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("offgate.store_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) FallbackServed(key string) {
	if h.l == nil || !sample(h.opts.FallbackEvery, &h.fallbackCtr) {
		return
	}
	h.l.Info("offgate.fallback_served",
		"key", h.redact(key))
}

func (h *Hooks) OfflinePageServed(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("offgate.offline_page_served",
		"key", h.redact(key))
}

func (h *Hooks) OfflineSynthesized(key string) {
	if h.l == nil {
		return
	}
	h.l.Info("offgate.offline_synthesized",
		"key", h.redact(key))
}

func (h *Hooks) GenerationDropped(generation string, entries int) {
	if h.l == nil {
		return
	}
	h.l.Info("offgate.generation_dropped",
		"generation", generation,
		"entries", entries)
}

func (h *Hooks) PrecacheFailed(url string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("offgate.precache_failed",
		"url", url,
		"err", err)
}

func (h *Hooks) SyncRequested(tag string) {
	if h.l == nil {
		return
	}
	h.l.Debug("offgate.sync_requested",
		"tag", tag)
}
