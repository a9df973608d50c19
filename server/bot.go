package main

import (
	"math"
	"time"
)

const (
	botAttackSpeed = 0.5  // share of hull speed while engaging
	botDriftSpeed  = 0.3  // share of hull speed while idle
	botTurnChance  = 0.02 // per tick chance of picking a new idle heading
	botSightStep   = 10.0 // line of sight sampling step
	botStarterPick = 3    // bots draw from the first N catalog entries
)

type botState int

const (
	botIdle botState = iota
	botAttacking
)

func (s botState) String() string {
	if s == botAttacking {
		return "attacking"
	}
	return "idle"
}

// botBrain is the controller state of one bot
type botBrain struct {
	state    botState
	targetID string
}

// AddBots adds n bots to each team and returns their ids
func (g *Game) AddBots(n int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		for _, team := range Teams {
			p := g.newBot(team)
			g.addPlayer(p)
			ids = append(ids, p.ID)
			g.broadcastMsg(PlayerJoinedMsg{Type: MsgPlayerJoined, Player: p.ToState()})
		}
	}
	g.metrics.Players(len(g.roster))
	if n > 0 {
		g.log.Info().Int("bots", len(ids)).Msg("bots added")
	}
	return ids
}

// RemoveBots removes every bot and returns how many were removed
func (g *Game) RemoveBots() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	var bots []*Player
	for _, p := range g.roster {
		if p.IsBot() {
			bots = append(bots, p)
		}
	}
	for _, p := range bots {
		g.removePlayer(p)
		g.broadcastMsg(PlayerLeftMsg{Type: MsgPlayerLeft, PlayerID: p.ID})
	}
	g.metrics.Players(len(g.roster))
	return len(bots)
}

func (g *Game) newBot(team Team) *Player {
	hexID := shortHex(8)
	hull := Hulls[g.rng.Intn(min(botStarterPick, len(Hulls)))]
	gun := Guns[g.rng.Intn(min(botStarterPick, len(Guns)))]
	p := NewPlayer("ai-"+hexID, "Bot-"+hexID[:4], team, hull.Stats(0), gun.Stats(0), g.arena.SpawnPoint(team, g.rng))
	p.bot = &botBrain{}
	p.JoinedAt = g.clock()
	return p
}

func (g *Game) thinkBots(now time.Duration) {
	for _, p := range g.roster {
		if p.bot != nil && p.Alive {
			g.think(p, now)
		}
	}
}

// nearestEnemy returns the closest living opponent strictly inside sight range
func (g *Game) nearestEnemy(p *Player, sight float64) (*Player, float64) {
	var best *Player
	bestDist := math.Inf(1)
	for _, o := range g.roster {
		if o.Team == p.Team || !o.Alive {
			continue
		}
		if d := Distance(p.Pos, o.Pos); d < bestDist {
			best, bestDist = o, d
		}
	}
	if best == nil || bestDist >= sight {
		return nil, 0
	}
	return best, bestDist
}

// think runs one decision step. Bots act only through the same movement,
// firing and collision paths human intents use.
func (g *Game) think(p *Player, now time.Duration) {
	ai := g.cfg.AI
	target, dist := g.nearestEnemy(p, ai.SightRange)
	if target != nil {
		p.bot.state = botAttacking
		p.bot.targetID = target.ID
		aim := AngleTo(p.Pos, target.Pos)
		p.TurretRotation = aim

		if p.ReloadReady(now) && g.arena.HasLineOfSight(p.Pos, target.Pos, botSightStep) {
			if g.fire(p) != nil {
				return
			}
		}

		toward := Vec2{X: target.Pos.X - p.Pos.X, Y: target.Pos.Y - p.Pos.Y}
		speed := p.Hull.Speed * botAttackSpeed
		switch {
		case dist > ai.FarRange:
			p.Rotation = aim
			g.movePlayer(p, toward, speed)
		case dist < ai.NearRange:
			g.movePlayer(p, toward.Scale(-1), speed)
		}
		return
	}

	p.bot.state = botIdle
	p.bot.targetID = ""
	if g.rng.Float64() < botTurnChance {
		p.Rotation = NormalizeAngle(g.rng.Float64() * 2 * math.Pi)
	}
	if !g.movePlayer(p, Heading(p.Rotation), p.Hull.Speed*botDriftSpeed) {
		p.Rotation = NormalizeAngle(p.Rotation + math.Pi/2)
	}
}
