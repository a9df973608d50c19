package main

// JoinRequest carries a verified profile's loadout into the battle
type JoinRequest struct {
	PlayerID string
	Username string
	XP       int
	Hull     HullStats
	Gun      GunStats
	// PlayerData is echoed back to the joining client in battleJoined
	PlayerData interface{}
}

// LoadoutFromProfile resolves a profile's equipped items at their upgrade levels.
// Unknown ids fall back to the first catalog entry.
func LoadoutFromProfile(p *Profile) (HullStats, GunStats) {
	hull, ok := HullByID(p.EquippedHull)
	if !ok {
		hull = Hulls[0]
	}
	gun, ok := GunByID(p.EquippedGun)
	if !ok {
		gun = Guns[0]
	}
	return hull.Stats(p.HullUpgrades[hull.ID]), gun.Stats(p.GunUpgrades[gun.ID])
}

// Join adds a player to the battle, replacing any earlier entry with the same id
func (g *Game) Join(req JoinRequest, client Broadcaster, binary bool) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.players[req.PlayerID]; ok {
		g.removePlayer(old)
	}
	if g.cfg.MaxPlayers > 0 && len(g.roster) >= g.cfg.MaxPlayers {
		return nil, ErrBattleFull
	}

	team := AssignTeam(g.roster)
	p := NewPlayer(req.PlayerID, req.Username, team, req.Hull, req.Gun, g.arena.SpawnPoint(team, g.rng))
	p.XP = req.XP
	p.JoinedAt = g.clock()
	g.addPlayer(p)
	if client != nil {
		g.clients[p.ID] = &clientSlot{b: client, binary: binary}
		client.SendJSON(BattleJoinedMsg{
			Type:       MsgBattleJoined,
			PlayerID:   p.ID,
			Team:       team,
			MapID:      g.cfg.Map.ID,
			PlayerData: req.PlayerData,
		})
	}
	g.broadcastExcept(p.ID, PlayerJoinedMsg{Type: MsgPlayerJoined, Player: p.ToState()})
	g.events.Track(g.battleEvent(EvtJoin, p.ID, "", team))
	g.metrics.Players(len(g.roster))
	g.log.Info().Str("player", p.Name).Str("team", string(team)).Msg("joined battle")
	return p, nil
}

// Leave removes a player, paying out participation XP and dropping any flag
func (g *Game) Leave(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[id]
	if !ok {
		return
	}
	if !p.IsBot() {
		minutes := g.clock().Sub(p.JoinedAt).Minutes()
		if xp := g.cfg.Rewards.ParticipationFor(minutes); xp > 0 {
			g.progress.Enqueue(ProfileDelta{PlayerID: p.ID, XP: xp})
			g.awardXP(p, xp)
		}
	}
	g.removePlayer(p)
	g.broadcastMsg(PlayerLeftMsg{Type: MsgPlayerLeft, PlayerID: id})
	g.events.Track(g.battleEvent(EvtLeave, id, "", p.Team))
	g.metrics.Players(len(g.roster))
	g.log.Info().Str("player", p.Name).Msg("left battle")
}

func (g *Game) addPlayer(p *Player) {
	g.players[p.ID] = p
	g.roster = append(g.roster, p)
}

// removePlayer drops p from every live collection. Pending respawns for p
// become no-ops because the player lookup fails.
func (g *Game) removePlayer(p *Player) {
	if p.HasFlag {
		g.dropCarriedFlag(p)
	}
	delete(g.players, p.ID)
	delete(g.clients, p.ID)
	for i, r := range g.roster {
		if r == p {
			g.roster = append(g.roster[:i], g.roster[i+1:]...)
			break
		}
	}
}

// HandleMove moves a living player along dir at its hull speed
func (g *Game) HandleMove(id string, dir Vec2) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok || !p.Alive || !g.match.Running {
		return
	}
	g.movePlayer(p, dir, p.Hull.Speed)
}

// movePlayer rejects a step that would put the body inside a wall
func (g *Game) movePlayer(p *Player, dir Vec2, speed float64) bool {
	next := g.arena.Bounds().MovePlayer(p.Pos, dir, speed)
	if g.arena.CheckWallCollision(next, g.cfg.BodyRadius) {
		return false
	}
	p.Pos = next
	if p.HasFlag {
		if f := g.flagCarriedBy(p.ID); f != nil {
			f.Pos = next
		}
	}
	return true
}

// HandleRotate sets the hull angle. Angles are trusted as sent.
func (g *Game) HandleRotate(id string, angle float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		p.Rotation = angle
	}
}

// HandleRotateTurret sets the turret angle. Angles are trusted as sent.
func (g *Game) HandleRotateTurret(id string, angle float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		p.TurretRotation = angle
	}
}

// HandleShoot fires the player's gun if it has reloaded
func (g *Game) HandleShoot(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		g.fire(p)
	}
}

// fire spawns a projectile for p, returning nil when the shot is rejected
func (g *Game) fire(p *Player) *Projectile {
	if !p.Alive || !g.match.Running || len(g.projectiles) >= maxProjectiles {
		return nil
	}
	now := g.simTime()
	if !p.ReloadReady(now) {
		return nil
	}
	p.LastShot = now
	proj := NewProjectile(p, now, g.tick)
	proj.Pierce = g.cfg.Pierce && proj.Effect == EffectRailgun
	g.projectiles = append(g.projectiles, proj)
	g.metrics.Shot()
	return proj
}

// HandleInteract picks up, returns or captures a flag
func (g *Game) HandleInteract(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.players[id]; ok {
		g.interact(p)
	}
}

func (g *Game) interact(p *Player) {
	if !p.Alive || !g.match.Running {
		return
	}

	if !p.HasFlag {
		enemy := g.flags[p.Team.Opponent()]
		if !enemy.Carried() && withinRadius(p.Pos, enemy.Pos, g.cfg.PickupRadius) {
			enemy.PickUp(p)
			g.broadcastMsg(FlagPickupMsg{Type: MsgFlagPickup, PlayerID: p.ID, FlagTeam: enemy.Team})
			g.events.Track(g.battleEvent(EvtFlagPickup, p.ID, "", enemy.Team))
			g.log.Info().Str("player", p.Name).Str("flag", string(enemy.Team)).Msg("flag picked up")
			return
		}
		own := g.flags[p.Team]
		if own.Dropped() && withinRadius(p.Pos, own.Pos, g.cfg.PickupRadius) {
			g.returnFlag(p, own)
		}
		return
	}

	if withinRadius(p.Pos, g.arena.FlagBase(p.Team), g.cfg.CaptureRadius) {
		g.capture(p)
	}
}

// returnFlag sends a teammate-recovered flag home
func (g *Game) returnFlag(p *Player, f *Flag) {
	f.Return()
	p.Stats.FlagReturns++
	g.grant(p, RewardFlagReturn, ProfileDelta{FlagReturns: 1})
	g.broadcastMsg(FlagReturnMsg{Type: MsgFlagReturn, PlayerID: p.ID, Team: f.Team})
	g.events.Track(g.battleEvent(EvtFlagReturn, p.ID, "", f.Team))
}

func (g *Game) capture(p *Player) {
	carried := g.flagCarriedBy(p.ID)
	if carried == nil {
		p.HasFlag = false
		return
	}
	carried.Return()
	p.HasFlag = false
	g.match.Scores[p.Team]++
	p.Stats.FlagCaptures++
	g.grant(p, RewardFlagCapture, ProfileDelta{FlagCaptures: 1})

	g.broadcastMsg(FlagCaptureMsg{
		Type:      MsgFlagCapture,
		PlayerID:  p.ID,
		Team:      p.Team,
		RedScore:  g.match.Scores[TeamRed],
		BlueScore: g.match.Scores[TeamBlue],
	})
	g.events.Track(g.battleEvent(EvtFlagCapture, p.ID, "", p.Team))
	g.metrics.Capture()
	g.log.Info().Str("player", p.Name).
		Int("red", g.match.Scores[TeamRed]).
		Int("blue", g.match.Scores[TeamBlue]).
		Msg("flag captured")

	if g.cfg.ScoreToWin > 0 && g.match.Scores[p.Team] >= g.cfg.ScoreToWin {
		g.endMatch()
	}
}
