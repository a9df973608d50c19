package main

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// newBattleClient joins a socketless client to g through h
func newBattleClient(t *testing.T, h *Hub, g *Game, name string) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan []byte, sendBufSize), log: zerolog.Nop()}
	want := h.ClientCount() + 1
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == want }, "client not registered")

	prof := NewProfile(name, "", true, time.Now())
	hull, gun := LoadoutFromProfile(prof)
	p, err := g.Join(JoinRequest{PlayerID: prof.ID, Username: name, Hull: hull, Gun: gun}, c, false)
	require.NoError(t, err)
	c.playerID = p.ID
	h.claimBattle(p.ID, c)
	return c
}

// waitClosed drains c.send until the hub closes it
func waitClosed(t *testing.T, c *Client) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("send channel was not closed")
		}
	}
}

func TestUnregisterWhileTicking(t *testing.T) {
	g := newTestRig(t).g
	h := NewHub(g, nil, nil, nil, zerolog.Nop(), HubOptions{})
	stop := make(chan struct{})
	defer close(stop)
	go h.Run(stop)

	for i := 0; i < 25; i++ {
		c := newBattleClient(t, h, g, "Racer")
		id := c.playerID

		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					g.update()
				}
			}
		}()

		h.unregister <- c
		waitClosed(t, c)
		close(done)
		wg.Wait()

		if n := g.PlayerCount(); n != 0 {
			t.Fatalf("round %d: %d players left after unregister", i, n)
		}
		g.mu.Lock()
		_, attached := g.clients[id]
		g.mu.Unlock()
		if attached {
			t.Fatalf("round %d: game still broadcasts to a closed client", i)
		}
	}
}

func TestUnregisterReplacedClientKeepsPlayer(t *testing.T) {
	g := newTestRig(t).g
	h := NewHub(g, nil, nil, nil, zerolog.Nop(), HubOptions{})
	stop := make(chan struct{})
	defer close(stop)
	go h.Run(stop)

	old := newBattleClient(t, h, g, "Twin")
	replacement := &Client{hub: h, send: make(chan []byte, sendBufSize), log: zerolog.Nop()}
	h.register <- replacement
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "replacement not registered")
	h.claimBattle(old.playerID, replacement)

	h.unregister <- old
	waitClosed(t, old)
	require.Equal(t, 1, g.PlayerCount())
}
