package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Battle event types
const (
	EvtKill        = "kill"
	EvtFlagPickup  = "flag_pickup"
	EvtFlagCapture = "flag_capture"
	EvtFlagReturn  = "flag_return"
	EvtRankUp      = "rank_up"
	EvtMatchStart  = "match_start"
	EvtMatchEnd    = "match_end"
	EvtJoin        = "join"
	EvtLeave       = "leave"
)

const (
	analyticsQueueSize = 1024
	analyticsBatchSize = 50
	analyticsInterval  = 5 * time.Second
)

// BattleEvent is one notable thing that happened in a match
type BattleEvent struct {
	Type     string    `json:"type"`
	Match    int       `json:"match"`
	PlayerID string    `json:"playerId,omitempty"`
	TargetID string    `json:"targetId,omitempty"`
	Team     string    `json:"team,omitempty"`
	At       time.Time `json:"at"`
}

// EventWriter persists batches of battle events
type EventWriter interface {
	InsertEvents(ctx context.Context, events []BattleEvent) error
}

// EventPublisher forwards single events to an external stream
type EventPublisher interface {
	Publish(ev BattleEvent) error
}

// Analytics tracks battle events with batched background writes
type Analytics struct {
	writer    EventWriter
	publisher EventPublisher
	log       zerolog.Logger
	events    chan BattleEvent
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer.
// Either sink may be nil.
func NewAnalytics(writer EventWriter, publisher EventPublisher, log zerolog.Logger) *Analytics {
	a := &Analytics{
		writer:    writer,
		publisher: publisher,
		log:       log.With().Str("component", "analytics").Logger(),
		events:    make(chan BattleEvent, analyticsQueueSize),
		stop:      make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Track enqueues an event (non-blocking)
func (a *Analytics) Track(ev BattleEvent) {
	select {
	case a.events <- ev:
	default:
		a.log.Warn().Str("event", ev.Type).Msg("analytics queue full, event dropped")
	}
}

// Stop flushes buffered events and shuts down the writer
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

func (a *Analytics) run() {
	defer a.wg.Done()

	batch := make([]BattleEvent, 0, analyticsBatchSize)
	ticker := time.NewTicker(analyticsInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-a.events:
			a.publish(ev)
			batch = append(batch, ev)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case ev := <-a.events:
					a.publish(ev)
					batch = append(batch, ev)
					if len(batch) >= analyticsBatchSize {
						a.flush(batch)
						batch = batch[:0]
					}
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) publish(ev BattleEvent) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ev); err != nil {
		a.log.Error().Err(err).Str("event", ev.Type).Msg("publish battle event")
	}
}

// flush writes a batch of events to the event log
func (a *Analytics) flush(batch []BattleEvent) {
	if a.writer == nil || len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.writer.InsertEvents(ctx, batch); err != nil {
		a.log.Error().Err(err).Int("events", len(batch)).Msg("write battle events")
	}
}
