package main

import (
	"math"
	"time"
)

// PlayerMatchStats are per-battle counters, separate from lifetime stats
type PlayerMatchStats struct {
	Kills        int `json:"kills"`
	Deaths       int `json:"deaths"`
	FlagCaptures int `json:"flagCaptures"`
	FlagReturns  int `json:"flagReturns"`
	DamageDealt  int `json:"damageDealt"`
}

// Player is a live combatant, human or bot
type Player struct {
	ID             string
	Name           string
	Team           Team
	Pos            Vec2
	Rotation       float64
	TurretRotation float64
	Health         int
	MaxHealth      int
	Hull           HullStats
	Gun            GunStats
	HasFlag        bool
	Alive          bool
	LastShot       time.Duration // simulation time of the last accepted shot
	Stats          PlayerMatchStats
	XP             int // lifetime XP, cached for rank events
	JoinedAt       time.Time

	bot          *botBrain
	deathHandled bool
	deathSeq     uint64 // bumped on every death; stale respawn events carry an older value
}

// NewPlayer creates a player at pos facing away from its own base
func NewPlayer(id, name string, team Team, hull HullStats, gun GunStats, pos Vec2) *Player {
	facing := 0.0
	if team == TeamBlue {
		facing = math.Pi
	}
	return &Player{
		ID:             id,
		Name:           name,
		Team:           team,
		Pos:            pos,
		Rotation:       facing,
		TurretRotation: facing,
		Health:         hull.MaxHealth,
		MaxHealth:      hull.MaxHealth,
		Hull:           hull,
		Gun:            gun,
		Alive:          true,
		LastShot:       -time.Hour,
	}
}

// IsBot reports whether the AI controller drives this player
func (p *Player) IsBot() bool {
	return p.bot != nil
}

// TakeDamage reduces health and returns true only on the alive->dead transition
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive || dmg <= 0 {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Alive = false
		return true
	}
	return false
}

// Heal restores health up to MaxHealth and returns the amount applied
func (p *Player) Heal(amount int) int {
	if !p.Alive || amount <= 0 {
		return 0
	}
	before := p.Health
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - before
}

// Respawn resets the player at pos with full health
func (p *Player) Respawn(pos Vec2) {
	p.Pos = pos
	p.Health = p.MaxHealth
	p.Alive = true
	p.HasFlag = false
	p.deathHandled = false
	p.LastShot = -time.Hour
}

// ReloadReady reports whether the gun may fire at simulation time now
func (p *Player) ReloadReady(now time.Duration) bool {
	return now-p.LastShot >= p.Gun.Reload
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:             p.ID,
		Username:       p.Name,
		Team:           p.Team,
		Position:       Vec2{X: round1(p.Pos.X), Y: round1(p.Pos.Y)},
		Rotation:       p.Rotation,
		TurretRotation: p.TurretRotation,
		Health:         p.Health,
		MaxHealth:      p.MaxHealth,
		Hull:           p.Hull.ID,
		Gun:            p.Gun.ID,
		HasFlag:        p.HasFlag,
		IsAlive:        p.Alive,
		IsBot:          p.IsBot(),
		Kills:          p.Stats.Kills,
		Deaths:         p.Stats.Deaths,
	}
}
