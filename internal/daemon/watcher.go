package daemon

import (
	"context"
	"log"
	"time"

	"gitlab.com/flib99/i3-workspace-names/internal/wm"
)

// eventWatcher keeps a window event subscription alive and forwards its
// events, resubscribing with exponential backoff when the stream fails.
type eventWatcher struct {
	source wm.EventSource
	logger *log.Logger
	min    time.Duration
	max    time.Duration
	out    chan<- wm.Event
}

func newEventWatcher(source wm.EventSource, cfg *Config, logger *log.Logger, out chan<- wm.Event) *eventWatcher {
	lo, hi := cfg.ReconnectMin, cfg.ReconnectMax
	if lo <= 0 {
		lo = time.Second
	}
	if hi < lo {
		hi = lo
	}
	return &eventWatcher{source: source, logger: logger, min: lo, max: hi, out: out}
}

// run blocks until ctx is canceled.
func (w *eventWatcher) run(ctx context.Context) {
	backoff := w.min
	for {
		stream := w.source.Events(ctx)
		healthy := false
		for ev := range stream.C {
			if ev.Change != wm.ChangeInitial {
				healthy = true
			}
			select {
			case w.out <- ev:
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			return
		}

		// A stream that delivered real events was a working connection.
		if healthy {
			backoff = w.min
		}
		w.logger.Printf("event stream ended: %v, resubscribing in %s", stream.Err(), backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > w.max {
			backoff = w.max
		}
	}
}
