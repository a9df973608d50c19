package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventWriter struct {
	mu      sync.Mutex
	batches [][]BattleEvent
	err     error
}

func (f *fakeEventWriter) InsertEvents(_ context.Context, events []BattleEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]BattleEvent(nil), events...))
	return f.err
}

func (f *fakeEventWriter) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

type fakePublisher struct {
	mu     sync.Mutex
	events []BattleEvent
}

func (f *fakePublisher) Publish(ev BattleEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func TestAnalyticsFlushesOnStop(t *testing.T) {
	w := &fakeEventWriter{}
	pub := &fakePublisher{}
	a := NewAnalytics(w, pub, zerolog.Nop())

	a.Track(BattleEvent{Type: EvtKill, PlayerID: "a", TargetID: "b", At: time.Now()})
	a.Track(BattleEvent{Type: EvtFlagCapture, PlayerID: "a", Team: "red", At: time.Now()})
	a.Stop()

	assert.Equal(t, 2, w.total())
	require.Len(t, pub.events, 2)
	assert.Equal(t, EvtKill, pub.events[0].Type)
	assert.Equal(t, EvtFlagCapture, pub.events[1].Type)
}

func TestAnalyticsBatchesBySize(t *testing.T) {
	w := &fakeEventWriter{}
	a := NewAnalytics(w, nil, zerolog.Nop())
	for i := 0; i < analyticsBatchSize+5; i++ {
		a.Track(BattleEvent{Type: EvtJoin, At: time.Now()})
	}
	a.Stop()

	assert.Equal(t, analyticsBatchSize+5, w.total())
	require.GreaterOrEqual(t, len(w.batches), 2)
	for _, b := range w.batches {
		assert.LessOrEqual(t, len(b), analyticsBatchSize)
	}
}

func TestAnalyticsWriterErrorIsNotFatal(t *testing.T) {
	w := &fakeEventWriter{err: errors.New("disk full")}
	a := NewAnalytics(w, nil, zerolog.Nop())
	a.Track(BattleEvent{Type: EvtLeave})
	a.Stop()
	assert.Equal(t, 1, w.total())
}

func TestAnalyticsWithoutSinks(t *testing.T) {
	a := NewAnalytics(nil, nil, zerolog.Nop())
	a.Track(BattleEvent{Type: EvtMatchStart})
	a.Stop()
}

func TestAnalyticsIntoSQLite(t *testing.T) {
	db := openSQLiteStore(t)
	a := NewAnalytics(db, nil, zerolog.Nop())

	rig := newTestRig(t)
	g := NewGame(rig.g.cfg, GameDeps{Events: a})
	killer := addTestPlayer(g, "k", TeamRed, Vec2{X: 300, Y: 1000})
	g.handleDeath(addTestPlayer(g, "v", TeamBlue, Vec2{X: 600, Y: 1000}), killer.ID)
	a.Stop()

	n, err := db.CountEvents(context.Background(), EvtKill)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "flagwars.kill", eventSubject("flagwars", EvtKill))
	assert.Equal(t, "flag_capture", eventSubject("", EvtFlagCapture))
}
