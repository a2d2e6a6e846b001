package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// watchdog observes room size and fires a single milestone broadcast the
// first time the roster reaches the configured threshold, then terminates.
// It never re-arms, even if the size later drops and climbs again.
type watchdog struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartWatchdog binds the one-shot size watcher to the room. A threshold of
// zero or less disables it. Stopped by Close or by ctx.
func (r *Room) StartWatchdog(ctx context.Context, threshold int, interval time.Duration) {
	if threshold <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &watchdog{cancel: cancel, done: make(chan struct{})}
	r.mu.Lock()
	if r.watchdog != nil {
		r.mu.Unlock()
		cancel()
		return
	}
	r.watchdog = w
	r.mu.Unlock()
	go r.watchLoop(ctx, w, threshold, interval)
}

func (r *Room) watchLoop(ctx context.Context, w *watchdog, threshold int, interval time.Duration) {
	defer close(w.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "core.watchdog").Str("room", r.name).Msg("watchdog stopped")
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.roster.size() < threshold {
				r.mu.Unlock()
				continue
			}
			res := r.notifyAllLocked(fmt.Sprintf("%d participants now!", threshold))
			r.mu.Unlock()
			log.Info().Str("module", "core.watchdog").Str("room", r.name).Int("threshold", threshold).Msg("milestone broadcast")
			r.dispatchDropped(res)
			return
		}
	}
}

// Close stops the watchdog and waits for its loop to exit. Safe to call on a
// room that never started one, and safe to call more than once.
func (r *Room) Close() {
	r.mu.Lock()
	w := r.watchdog
	r.watchdog = nil
	r.mu.Unlock()
	if w == nil {
		return
	}
	w.cancel()
	<-w.done
}
