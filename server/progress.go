package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	progressQueueSize = 1024
	progressFlushSize = 64
	progressInterval  = time.Second
	progressTimeout   = 5 * time.Second
)

// ProgressWriter applies profile deltas in a single background goroutine.
// Deltas for the same player are coalesced between flushes and applied in
// arrival order, so writes never race and never block a tick.
type ProgressWriter struct {
	store   ProfileStore
	log     zerolog.Logger
	metrics *Metrics
	deltas  chan ProfileDelta
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewProgressWriter creates and starts the writer
func NewProgressWriter(store ProfileStore, log zerolog.Logger, metrics *Metrics) *ProgressWriter {
	w := &ProgressWriter{
		store:   store,
		log:     log.With().Str("component", "progress").Logger(),
		metrics: metrics,
		deltas:  make(chan ProfileDelta, progressQueueSize),
		stop:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue hands a delta to the writer without blocking
func (w *ProgressWriter) Enqueue(d ProfileDelta) {
	if d.PlayerID == "" {
		return
	}
	select {
	case w.deltas <- d:
	default:
		w.metrics.ProgressDropped()
		w.log.Error().Str("player", d.PlayerID).Int("xp", d.XP).Int("money", d.Money).
			Msg("progress queue full, delta dropped")
	}
}

// Stop flushes pending deltas and stops the writer
func (w *ProgressWriter) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *ProgressWriter) run() {
	defer w.wg.Done()

	pending := make(map[string]*ProfileDelta)
	var order []string
	add := func(d ProfileDelta) {
		if cur, ok := pending[d.PlayerID]; ok {
			cur.Merge(d)
			return
		}
		c := d
		pending[d.PlayerID] = &c
		order = append(order, d.PlayerID)
	}
	flush := func() {
		for _, id := range order {
			w.apply(*pending[id])
		}
		pending = make(map[string]*ProfileDelta)
		order = order[:0]
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case d := <-w.deltas:
			add(d)
			if len(order) >= progressFlushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.stop:
			for {
				select {
				case d := <-w.deltas:
					add(d)
				default:
					flush()
					return
				}
			}
		}
	}
}

// apply writes one delta. Failures are logged; in-memory state stays authoritative.
func (w *ProgressWriter) apply(d ProfileDelta) {
	ctx, cancel := context.WithTimeout(context.Background(), progressTimeout)
	defer cancel()
	_, err := w.store.UpdateProfile(ctx, d.PlayerID, func(p *Profile) error {
		d.Apply(p)
		return nil
	})
	if err != nil {
		w.log.Error().Err(err).Str("player", d.PlayerID).Msg("apply profile delta")
	}
}
