package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level. Failures are
// logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to l.
func NewLogHooks(l *log.Logger) *LogHooks { return &LogHooks{Logger: l} }

func (h *LogHooks) OnParseStart(_ context.Context, source string, size int) {
	h.Logger.Debug("parse start", "source", source, "bytes", size)
}

func (h *LogHooks) OnParseComplete(_ context.Context, source string, cells, wires int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("parse failed", "source", source, "err", err)
		return
	}
	h.Logger.Debug("parse done", "source", source, "cells", cells, "wires", wires, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnPlaceStart(_ context.Context, cells int, mode string) {
	h.Logger.Debug("place start", "cells", cells, "mode", mode)
}

func (h *LogHooks) OnPlaceComplete(_ context.Context, rounds, wireLength int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("place failed", "rounds", rounds, "err", err)
		return
	}
	h.Logger.Debug("place done", "rounds", rounds, "wire_length", wireLength, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string) {
	h.Logger.Debug("render start", "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "format", format, "err", err)
		return
	}
	h.Logger.Debug("render done", "format", format, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Info("response", "method", method, "route", route, "status", status, "took", d.Round(time.Microsecond))
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
