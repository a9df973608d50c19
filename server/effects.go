package main

import "fmt"

// ShotEffect classifies how a projectile resolves its damage
type ShotEffect uint8

const (
	EffectNormal ShotEffect = iota
	EffectExplosive
	EffectRailgun
	EffectPlasma
	EffectLaser
	EffectFire
	EffectIce
	EffectBeam
	effectCount
)

var effectNames = [effectCount]string{
	EffectNormal:    "normal",
	EffectExplosive: "explosive",
	EffectRailgun:   "railgun",
	EffectPlasma:    "plasma",
	EffectLaser:     "laser",
	EffectFire:      "fire",
	EffectIce:       "ice",
	EffectBeam:      "beam",
}

func (e ShotEffect) String() string {
	if e < effectCount {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

// ParseShotEffect maps a wire name back to its effect
func ParseShotEffect(s string) (ShotEffect, error) {
	for i, name := range effectNames {
		if name == s {
			return ShotEffect(i), nil
		}
	}
	return EffectNormal, fmt.Errorf("unknown shot effect %q", s)
}

func (e ShotEffect) MarshalText() ([]byte, error) {
	if e >= effectCount {
		return nil, fmt.Errorf("invalid shot effect %d", uint8(e))
	}
	return []byte(effectNames[e]), nil
}

func (e *ShotEffect) UnmarshalText(b []byte) error {
	v, err := ParseShotEffect(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Status kinds surfaced to clients alongside an instantaneous hit
const (
	StatusBurn = "burn"
	StatusSlow = "slow"
	StatusHeal = "heal"
)

// StatusEffect is a timed effect descriptor. The simulation applies only the
// instantaneous part of a hit; clients render the rest.
type StatusEffect struct {
	Kind      string  `json:"kind"`
	Duration  int64   `json:"duration"` // ms
	Magnitude float64 `json:"magnitude"`
}

// Hit is one player's share of a projectile impact
type Hit struct {
	Target *Player
	Damage int
	Heal   int
	Status *StatusEffect
}

// impact is a projectile meeting its primary target at point
type impact struct {
	proj   *Projectile
	target *Player
	point  Vec2
}

// resolveImpact computes the hits an impact produces without mutating
// anyone. Every effect kind has exactly one branch here.
func (g *Game) resolveImpact(imp impact) []Hit {
	p := imp.proj
	switch p.Effect {
	case EffectNormal, EffectRailgun, EffectLaser:
		return []Hit{{Target: imp.target, Damage: p.Damage}}
	case EffectExplosive:
		return g.explosionHits(imp)
	case EffectPlasma:
		return g.plasmaHits(imp)
	case EffectFire:
		return []Hit{{Target: imp.target, Damage: p.Damage, Status: &StatusEffect{
			Kind: StatusBurn, Duration: 3000, Magnitude: float64(p.Damage) * 0.2,
		}}}
	case EffectIce:
		return []Hit{{Target: imp.target, Damage: p.Damage, Status: &StatusEffect{
			Kind: StatusSlow, Duration: 2000, Magnitude: 0.3,
		}}}
	case EffectBeam:
		if imp.target.Team == p.OwnerTeam {
			return []Hit{{Target: imp.target, Heal: p.Damage, Status: &StatusEffect{
				Kind: StatusHeal, Duration: 0, Magnitude: float64(p.Damage),
			}}}
		}
		return []Hit{{Target: imp.target, Damage: p.Damage}}
	}
	g.log.Warn().Stringer("effect", p.Effect).Msg("unhandled shot effect, applying direct damage")
	return []Hit{{Target: imp.target, Damage: p.Damage}}
}

// explosionHits damages every eligible player inside the blast radius with
// linear falloff from the impact point.
func (g *Game) explosionHits(imp impact) []Hit {
	p := imp.proj
	var hits []Hit
	for _, t := range PlayersInRadius(g.splashCandidates(p), imp.point, p.ExplosionRadius) {
		dmg := DamageFalloff(p.Damage, Distance(t.Pos, imp.point), p.ExplosionRadius)
		hits = append(hits, Hit{Target: t, Damage: dmg})
	}
	if len(hits) == 0 {
		// primary target sits outside a tiny radius
		hits = append(hits, Hit{Target: imp.target, Damage: DamageFalloff(p.Damage, 0, 1)})
	}
	return hits
}

// plasmaHits applies full damage to the primary target and splash to the rest
func (g *Game) plasmaHits(imp impact) []Hit {
	p := imp.proj
	hits := []Hit{{Target: imp.target, Damage: p.Damage}}
	splash := int(float64(p.Damage) * plasmaSplashFactor)
	for _, t := range PlayersInRadius(g.splashCandidates(p), imp.point, p.ExplosionRadius) {
		if t == imp.target {
			continue
		}
		hits = append(hits, Hit{Target: t, Damage: splash})
	}
	return hits
}

// splashCandidates lists living players a projectile's splash may touch
func (g *Game) splashCandidates(p *Projectile) []*Player {
	out := make([]*Player, 0, len(g.roster))
	for _, t := range g.roster {
		if !t.Alive || t.ID == p.OwnerID {
			continue
		}
		if !g.cfg.FriendlyFire && t.Team == p.OwnerTeam {
			continue
		}
		out = append(out, t)
	}
	return out
}
