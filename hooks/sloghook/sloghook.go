// Package sloghook logs pipeline events through log/slog, with sampling for
// the chatty ones and key redaction so raw URLs never reach the logs.
package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/linkpreview"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	PreviewEvery  uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	previewCtr  atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ linkpreview.Hooks = (*Hooks)(nil)

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

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) PreviewReady(url string, src linkpreview.Source) {
	if h.l == nil || !sample(h.opts.PreviewEvery, &h.previewCtr) {
		return
	}
	h.l.Debug("linkpreview.preview_ready",
		"url", h.redact(url),
		"source", src.String())
}

func (h *Hooks) FetchFailed(url string, attempts int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("linkpreview.fetch_failed",
		"url", h.redact(url),
		"attempts", attempts,
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("linkpreview.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("linkpreview.store_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) EvictionPass(removed int) {
	if h.l == nil {
		return
	}
	h.l.Debug("linkpreview.eviction_pass",
		"removed", removed)
}
