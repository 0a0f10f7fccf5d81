// Package sloghooks implements tiercache.Hooks on log/slog with sampling
// for the high-frequency events.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tiercache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	LayerErrorEvery uint64
	SelfHealEvery   uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	layerErrCtr atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ tiercache.Hooks = (*Hooks)(nil)

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

func (h *Hooks) LayerError(layer, op, key string, err error) {
	if h.l == nil || !sample(h.opts.LayerErrorEvery, &h.layerErrCtr) {
		return
	}
	h.l.Warn("tiercache.layer_error",
		"layer", layer,
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) SelfHeal(layer, key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("tiercache.self_heal",
		"layer", layer,
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) Promoted(key, fromLayer, toLayer string) {
	if h.l == nil {
		return
	}
	h.l.Debug("tiercache.promoted",
		"key", h.redact(key),
		"from", fromLayer,
		"to", toLayer)
}

func (h *Hooks) SetRejected(layer, key string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tiercache.set_rejected",
		"layer", layer,
		"key", h.redact(key))
}

func (h *Hooks) PatternClear(layer, pattern string) {
	if h.l == nil {
		return
	}
	h.l.Warn("tiercache.pattern_clear",
		"layer", layer,
		"pattern", pattern,
		"msg", "layer cannot enumerate keys; cleared entirely")
}
