package main

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultMaxConnsPerIP = 5
	defaultMaxTotalConns = 200
)

// HubOptions configures connection limits
type HubOptions struct {
	MaxConns      int
	MaxConnsPerIP int
}

// Hub tracks connected clients and owns the services they talk to
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	game    *Game
	auth    *Auth
	garage  *Garage
	store   ProfileStore
	log     zerolog.Logger
	metrics *Metrics

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu        sync.Mutex
	ipConns       map[string]int
	totalConns    int
	maxConns      int
	maxConnsPerIP int

	// battle player id -> the connection currently driving it
	battleMu sync.Mutex
	battle   map[string]*Client
}

// NewHub creates a hub around a running game
func NewHub(game *Game, auth *Auth, store ProfileStore, metrics *Metrics, log zerolog.Logger, opts HubOptions) *Hub {
	if opts.MaxConns <= 0 {
		opts.MaxConns = defaultMaxTotalConns
	}
	if opts.MaxConnsPerIP <= 0 {
		opts.MaxConnsPerIP = defaultMaxConnsPerIP
	}
	return &Hub{
		clients:       make(map[*Client]bool),
		register:      make(chan *Client, 64),
		unregister:    make(chan *Client, 64),
		game:          game,
		auth:          auth,
		garage:        NewGarage(store),
		store:         store,
		log:           log.With().Str("component", "hub").Logger(),
		metrics:       metrics,
		ipConns:       make(map[string]int),
		maxConns:      opts.MaxConns,
		maxConnsPerIP: opts.MaxConnsPerIP,
		battle:        make(map[string]*Client),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.maxConns {
		return false
	}
	if h.ipConns[ip] >= h.maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
	h.metrics.Connections(h.totalConns)
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
	h.metrics.Connections(h.totalConns)
}

// Run processes register/unregister events until stop is closed
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			// the game must drop its slot before send is closed
			client.leaveBattle()
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case <-stop:
			return
		}
	}
}

// claimBattle records c as the connection driving player id
func (h *Hub) claimBattle(id string, c *Client) {
	h.battleMu.Lock()
	defer h.battleMu.Unlock()
	h.battle[id] = c
}

func (h *Hub) ownsBattle(id string, c *Client) bool {
	h.battleMu.Lock()
	defer h.battleMu.Unlock()
	return h.battle[id] == c
}

// releaseBattle forgets player id if c still owns it
func (h *Hub) releaseBattle(id string, c *Client) bool {
	h.battleMu.Lock()
	defer h.battleMu.Unlock()
	if h.battle[id] != c {
		return false
	}
	delete(h.battle, id)
	return true
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
