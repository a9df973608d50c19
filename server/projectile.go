package main

import "time"

// Projectile is a ballistic shot owned by its shooter
type Projectile struct {
	ID              string
	OwnerID         string
	OwnerTeam       Team
	Pos             Vec2
	Vel             Vec2
	Damage          int
	Effect          ShotEffect
	ExplosionRadius float64
	Color           string
	CreatedAt       time.Duration // simulation time
	BornTick        uint64
	Pierce          bool

	hit map[string]bool // targets already struck by a piercing shot
}

// NewProjectile spawns a shot at the owner's position travelling along its turret heading
func NewProjectile(owner *Player, now time.Duration, tick uint64) *Projectile {
	return &Projectile{
		ID:              GenerateID(),
		OwnerID:         owner.ID,
		OwnerTeam:       owner.Team,
		Pos:             owner.Pos,
		Vel:             Heading(owner.TurretRotation).Scale(owner.Gun.ProjectileSpeed),
		Damage:          owner.Gun.Damage,
		Effect:          owner.Gun.Effect,
		ExplosionRadius: owner.Gun.ExplosionRadius,
		Color:           owner.Gun.ShotColor,
		CreatedAt:       now,
		BornTick:        tick,
	}
}

// Advance moves the projectile one tick
func (p *Projectile) Advance() {
	p.Pos = p.Pos.Add(p.Vel)
}

// AlreadyHit reports whether a piercing shot struck id before
func (p *Projectile) AlreadyHit(id string) bool {
	return p.hit[id]
}

func (p *Projectile) markHit(id string) {
	if p.hit == nil {
		p.hit = make(map[string]bool)
	}
	p.hit[id] = true
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:       p.ID,
		OwnerID:  p.OwnerID,
		Position: Vec2{X: round1(p.Pos.X), Y: round1(p.Pos.Y)},
		Velocity: p.Vel,
		Effect:   p.Effect.String(),
		Color:    p.Color,
	}
}
