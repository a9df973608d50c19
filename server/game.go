package main

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const maxProjectiles = 2000

// ErrBattleFull is returned when the battle has no free slot
var ErrBattleFull = errors.New("Battle is full")

// Broadcaster sends frames to one connection. SendRaw and SendBinary never
// block and report whether the frame was queued.
type Broadcaster interface {
	SendJSON(msg interface{})
	SendRaw(data []byte) bool
	SendBinary(data []byte) bool
}

// ProgressSink receives persistent profile deltas produced by the simulation
type ProgressSink interface {
	Enqueue(d ProfileDelta)
}

// EventSink receives battle events for the event log
type EventSink interface {
	Track(ev BattleEvent)
}

type nopProgress struct{}

func (nopProgress) Enqueue(ProfileDelta) {}

type nopEvents struct{}

func (nopEvents) Track(BattleEvent) {}

// GameDeps are the collaborators of the simulation. Zero values are replaced
// by no-op implementations.
type GameDeps struct {
	Log      *zerolog.Logger
	Progress ProgressSink
	Events   EventSink
	Metrics  *Metrics
	Rand     *rand.Rand
	Clock    func() time.Time
}

type clientSlot struct {
	b      Broadcaster
	binary bool
}

// Game owns the authoritative state of the single running battle
type Game struct {
	mu          sync.Mutex
	cfg         MatchConfig
	arena       *Arena
	players     map[string]*Player
	roster      []*Player // join order, used for deterministic target scans
	flags       map[Team]*Flag
	projectiles []*Projectile
	clients     map[string]*clientSlot
	match       MatchState
	sched       eventQueue
	tick        uint64
	ttlTicks    uint64
	stopOnce    sync.Once
	stop        chan struct{}

	rng      *rand.Rand
	clock    func() time.Time
	log      zerolog.Logger
	progress ProgressSink
	events   EventSink
	metrics  *Metrics
}

// NewGame creates a game with a running match on cfg.Map
func NewGame(cfg MatchConfig, deps GameDeps) *Game {
	if cfg.Map == nil {
		cfg.Map = ClassicMap
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.BroadcastEvery <= 0 {
		cfg.BroadcastEvery = 1
	}
	if deps.Progress == nil {
		deps.Progress = nopProgress{}
	}
	if deps.Events == nil {
		deps.Events = nopEvents{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	log := zerolog.Nop()
	if deps.Log != nil {
		log = deps.Log.With().Str("component", "game").Logger()
	}

	g := &Game{
		cfg:      cfg,
		arena:    NewArena(cfg.Map, cfg.BoundaryMargin),
		players:  make(map[string]*Player),
		flags:    make(map[Team]*Flag, 2),
		clients:  make(map[string]*clientSlot),
		ttlTicks: uint64(math.Round(cfg.ProjectileTTL.Seconds() * float64(cfg.TickRate))),
		stop:     make(chan struct{}),
		rng:      deps.Rand,
		clock:    deps.Clock,
		log:      log,
		progress: deps.Progress,
		events:   deps.Events,
		metrics:  deps.Metrics,
	}
	for _, t := range Teams {
		g.flags[t] = NewFlag(t, g.arena.FlagBase(t))
	}
	g.match = NewMatchState(1, cfg.Duration, g.clock())
	return g
}

// Run starts the tick loop and the 1 Hz match clock
func (g *Game) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.TickRate))
	defer ticker.Stop()
	clock := time.NewTicker(time.Second)
	defer clock.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-clock.C:
			g.countdown()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// simTime is the simulation clock derived from the tick counter
func (g *Game) simTime() time.Duration {
	return time.Duration(g.tick) * time.Second / time.Duration(g.cfg.TickRate)
}

// PlayerCount returns the number of players, bots included
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.roster)
}

// update runs one game tick
func (g *Game) update() {
	start := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	now := g.simTime()
	g.runScheduled(now)

	if g.match.Running {
		g.thinkBots(now)
		g.stepProjectiles()
	}

	if g.tick%uint64(g.cfg.BroadcastEvery) == 0 {
		g.broadcastState()
	}
	g.metrics.ObserveTick(time.Since(start), len(g.roster), len(g.projectiles))
}

// countdown runs once per second
func (g *Game) countdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.match.Running {
		return
	}
	if g.match.TimeRemaining > 0 {
		g.match.TimeRemaining--
	}
	if g.match.TimeRemaining <= 0 {
		g.endMatch()
	}
}

func (g *Game) runScheduled(now time.Duration) {
	for {
		ev, ok := g.sched.PopDue(now)
		if !ok {
			return
		}
		switch ev.Kind {
		case evRespawn:
			g.respawn(ev)
		case evFlagReturn:
			g.autoReturnFlag(ev)
		case evMatchRestart:
			g.restartMatch()
		}
	}
}

// respawn is a no-op for players that left or already came back
func (g *Game) respawn(ev scheduled) {
	p, ok := g.players[ev.PlayerID]
	if !ok || p.Alive || p.deathSeq != ev.Seq {
		return
	}
	p.Respawn(g.arena.SpawnPoint(p.Team, g.rng))
}

func (g *Game) autoReturnFlag(ev scheduled) {
	f := g.flags[ev.Team]
	if f == nil || !f.Dropped() || f.dropSeq != ev.Seq {
		return
	}
	f.Return()
	g.broadcastMsg(FlagReturnMsg{Type: MsgFlagReturn, Team: f.Team})
	g.events.Track(g.battleEvent(EvtFlagReturn, "", "", f.Team))
}

// stepProjectiles advances every projectile and drops the finished ones
func (g *Game) stepProjectiles() {
	kept := g.projectiles[:0]
	for _, p := range g.projectiles {
		// shots fired by bots during this tick start moving on the next one
		if p.BornTick == g.tick {
			kept = append(kept, p)
			continue
		}
		if !g.advanceProjectile(p) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(g.projectiles); i++ {
		g.projectiles[i] = nil
	}
	g.projectiles = kept
}

// advanceProjectile moves p one tick and reports whether it terminated.
// Checks run in order: bounds, wall, player, lifetime.
func (g *Game) advanceProjectile(p *Projectile) bool {
	p.Advance()

	if !g.arena.Bounds().Contains(p.Pos) {
		return true
	}
	if w := g.arena.WallAt(p.Pos, g.cfg.WallProbeRadius); w != nil {
		if g.arena.DamageWall(w, p.Damage) {
			g.broadcastMsg(WallDestroyedMsg{Type: MsgWallDestroyed, WallID: w.ID})
		}
		return true
	}
	if target := g.projectileTarget(p); target != nil {
		g.resolveHit(p, target)
		if !p.Pierce {
			return true
		}
	}
	return g.tick-p.BornTick >= g.ttlTicks
}

// projectileTarget returns the first living player p can hit this tick
func (g *Game) projectileTarget(p *Projectile) *Player {
	for _, t := range g.roster {
		if !t.Alive || t.ID == p.OwnerID || p.AlreadyHit(t.ID) {
			continue
		}
		if t.Team == p.OwnerTeam && !g.cfg.FriendlyFire && p.Effect != EffectBeam {
			continue
		}
		if withinRadius(p.Pos, t.Pos, g.cfg.HitRadius) {
			return t
		}
	}
	return nil
}

// resolveHit applies an impact and reports it to every client
func (g *Game) resolveHit(p *Projectile, target *Player) {
	p.markHit(target.ID)
	hits := g.resolveImpact(impact{proj: p, target: target, point: p.Pos})

	msg := ProjectileHitMsg{
		Type:         MsgProjectileHit,
		ProjectileID: p.ID,
		Effect:       p.Effect.String(),
		X:            round1(p.Pos.X),
		Y:            round1(p.Pos.Y),
		Hits:         make([]HitReport, 0, len(hits)),
	}
	dealt := 0
	for _, h := range hits {
		rep := HitReport{PlayerID: h.Target.ID, Status: h.Status}
		if h.Heal > 0 {
			rep.Healed = h.Target.Heal(h.Heal)
		}
		if h.Damage > 0 && h.Target.Alive {
			rep.Damage = h.Damage
			dealt += h.Damage
			if h.Target.TakeDamage(h.Damage) {
				g.handleDeath(h.Target, p.OwnerID)
			}
		}
		msg.Hits = append(msg.Hits, rep)
	}

	if shooter, ok := g.players[p.OwnerID]; ok && dealt > 0 {
		shooter.Stats.DamageDealt += dealt
		if !shooter.IsBot() {
			g.progress.Enqueue(ProfileDelta{PlayerID: shooter.ID, DamageDealt: dealt})
		}
	}
	g.broadcastMsg(msg)
}

// handleDeath runs at most once per death
func (g *Game) handleDeath(victim *Player, killerID string) {
	if victim.deathHandled {
		return
	}
	victim.deathHandled = true
	victim.Alive = false
	victim.Health = 0
	victim.deathSeq++
	victim.Stats.Deaths++
	if !victim.IsBot() {
		g.progress.Enqueue(ProfileDelta{PlayerID: victim.ID, Deaths: 1})
	}

	killer, ok := g.players[killerID]
	if ok && killer != victim && killer.Team != victim.Team {
		killer.Stats.Kills++
		g.grant(killer, RewardKill, ProfileDelta{Kills: 1})
	}

	if victim.HasFlag {
		g.dropCarriedFlag(victim)
	}

	g.sched.Schedule(scheduled{
		At:       g.simTime() + g.cfg.RespawnDelay,
		Kind:     evRespawn,
		PlayerID: victim.ID,
		Seq:      victim.deathSeq,
	})

	msg := PlayerKilledMsg{Type: MsgPlayerKilled, KillerID: killerID, VictimID: victim.ID, VictimName: victim.Name}
	if killer != nil {
		msg.KillerName = killer.Name
	}
	g.broadcastMsg(msg)
	g.events.Track(g.battleEvent(EvtKill, killerID, victim.ID, victim.Team))
	g.metrics.Kill()
	g.log.Info().Str("killer", msg.KillerName).Str("victim", victim.Name).Msg("kill")
}

// grant pays out a reward action to a human player
func (g *Game) grant(p *Player, action RewardAction, extra ProfileDelta) {
	if p.IsBot() {
		return
	}
	xp, money := g.cfg.Rewards.For(action)
	extra.PlayerID = p.ID
	extra.XP += xp
	extra.Money += money
	g.progress.Enqueue(extra)
	g.awardXP(p, xp)
}

// awardXP updates the cached XP and notifies the player of a rank-up or gain
func (g *Game) awardXP(p *Player, xp int) {
	if xp <= 0 {
		return
	}
	old := p.XP
	p.XP += xp
	up := CheckRankUp(old, p.XP)
	if up.RankedUp {
		g.sendTo(p.ID, RankUpMsg{
			Type:         MsgRankUp,
			OldRank:      up.OldRank,
			NewRank:      up.NewRank,
			NewXP:        p.XP,
			LevelsGained: up.LevelsGained,
		})
		g.events.Track(g.battleEvent(EvtRankUp, p.ID, "", p.Team))
		g.log.Info().Str("player", p.Name).Str("rank", up.NewRank.Name).Msg("rank up")
		return
	}
	g.sendTo(p.ID, XPGainMsg{
		Type:        MsgXPGain,
		Amount:      xp,
		NewXP:       p.XP,
		CurrentRank: RankForXP(p.XP),
		NextRank:    NextRank(p.XP),
	})
}

// dropCarriedFlag releases whatever flag p carries at p's position
func (g *Game) dropCarriedFlag(p *Player) {
	f := g.flagCarriedBy(p.ID)
	p.HasFlag = false
	if f == nil {
		return
	}
	seq := f.Drop(p.Pos)
	g.sched.Schedule(scheduled{
		At:   g.simTime() + g.cfg.FlagReturnTime,
		Kind: evFlagReturn,
		Team: f.Team,
		Seq:  seq,
	})
	g.broadcastMsg(FlagDropMsg{Type: MsgFlagDrop, PlayerID: p.ID, FlagTeam: f.Team, Position: f.Pos})
}

func (g *Game) flagCarriedBy(id string) *Flag {
	for _, t := range Teams {
		if f := g.flags[t]; f.CarriedBy == id {
			return f
		}
	}
	return nil
}

// endMatch stops the match, pays out results and schedules the restart
func (g *Game) endMatch() {
	if !g.match.Running {
		return
	}
	g.match.Running = false
	winner := g.match.Result()
	g.match.Winner = winner

	for _, p := range g.roster {
		if p.IsBot() {
			continue
		}
		delta := ProfileDelta{GamesPlayed: 1}
		action := RewardLoss
		switch {
		case string(p.Team) == winner:
			action = RewardWin
			delta.Wins = 1
		case winner != ResultDraw:
			delta.Losses = 1
		}
		g.grant(p, action, delta)
	}

	g.broadcastMsg(MatchEndMsg{
		Type:      MsgMatchEnd,
		Winner:    winner,
		RedScore:  g.match.Scores[TeamRed],
		BlueScore: g.match.Scores[TeamBlue],
	})
	g.events.Track(g.battleEvent(EvtMatchEnd, "", "", Team(winner)))
	g.sched.Schedule(scheduled{At: g.simTime() + g.cfg.RestartDelay, Kind: evMatchRestart})
	g.log.Info().Str("winner", winner).
		Int("red", g.match.Scores[TeamRed]).
		Int("blue", g.match.Scores[TeamBlue]).
		Msg("match ended")
}

// restartMatch resets the battlefield and starts the next match
func (g *Game) restartMatch() {
	g.match = NewMatchState(g.match.Number+1, g.cfg.Duration, g.clock())
	g.projectiles = nil
	g.arena.Reset()
	g.sched.Drop(evRespawn)
	g.sched.Drop(evFlagReturn)
	for _, f := range g.flags {
		f.Return()
	}
	for _, p := range g.roster {
		p.Respawn(g.arena.SpawnPoint(p.Team, g.rng))
		p.Stats = PlayerMatchStats{}
	}
	g.broadcastMsg(MatchStartMsg{Type: MsgMatchStart, Match: g.match.Number, TimeRemaining: g.match.TimeRemaining})
	g.events.Track(g.battleEvent(EvtMatchStart, "", "", ""))
	g.log.Info().Int("match", g.match.Number).Msg("match started")
}

// Snapshot returns the current state as broadcast to clients
func (g *Game) Snapshot() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() GameState {
	state := GameState{
		Players:       make([]PlayerState, 0, len(g.roster)),
		Flags:         make([]FlagState, 0, len(g.flags)),
		Projectiles:   make([]ProjectileState, 0, len(g.projectiles)),
		Walls:         g.arena.ToState(),
		RedScore:      g.match.Scores[TeamRed],
		BlueScore:     g.match.Scores[TeamBlue],
		TimeRemaining: g.match.TimeRemaining,
		IsRunning:     g.match.Running,
		Tick:          g.tick,
	}
	for _, p := range g.roster {
		state.Players = append(state.Players, p.ToState())
	}
	for _, t := range Teams {
		state.Flags = append(state.Flags, g.flags[t].ToState())
	}
	for _, p := range g.projectiles {
		state.Projectiles = append(state.Projectiles, p.ToState())
	}
	return state
}

// broadcastState serializes the snapshot once per encoding and fans it out
func (g *Game) broadcastState() {
	if len(g.clients) == 0 {
		return
	}
	state := g.snapshotLocked()
	data, err := json.Marshal(GameStateMsg{Type: MsgGameState, State: state})
	if err != nil {
		g.log.Error().Err(err).Msg("marshal snapshot")
		return
	}
	var bin []byte
	for _, c := range g.clients {
		var sent bool
		if c.binary {
			if bin == nil {
				if bin, err = EncodeSnapshot(&state); err != nil {
					g.log.Error().Err(err).Msg("encode binary snapshot")
					c.binary = false
					sent = c.b.SendRaw(data)
					g.countDrop(sent)
					continue
				}
			}
			sent = c.b.SendBinary(bin)
		} else {
			sent = c.b.SendRaw(data)
		}
		g.countDrop(sent)
	}
}

func (g *Game) countDrop(sent bool) {
	if !sent {
		g.metrics.DroppedFrame()
	}
}

// broadcastMsg sends an event to every client as JSON
func (g *Game) broadcastMsg(msg interface{}) {
	if len(g.clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		g.log.Error().Err(err).Msg("marshal event")
		return
	}
	for _, c := range g.clients {
		g.countDrop(c.b.SendRaw(data))
	}
}

// broadcastExcept sends an event to every client but one
func (g *Game) broadcastExcept(skip string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		g.log.Error().Err(err).Msg("marshal event")
		return
	}
	for id, c := range g.clients {
		if id != skip {
			g.countDrop(c.b.SendRaw(data))
		}
	}
}

func (g *Game) sendTo(id string, msg interface{}) {
	if c, ok := g.clients[id]; ok {
		c.b.SendJSON(msg)
	}
}

func (g *Game) battleEvent(kind, playerID, targetID string, team Team) BattleEvent {
	return BattleEvent{
		Type:     kind,
		Match:    g.match.Number,
		PlayerID: playerID,
		TargetID: targetID,
		Team:     string(team),
		At:       g.clock().UTC(),
	}
}
