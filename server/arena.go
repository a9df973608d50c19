package main

import (
	"fmt"
	"math/rand"
)

// WallKind classifies how a wall reacts to projectiles
type WallKind string

const (
	WallSolid        WallKind = "solid"
	WallDestructible WallKind = "destructible"
	WallBoundary     WallKind = "boundary"
)

// WallDef is the immutable catalog form of a wall
type WallDef struct {
	ID     string
	Rect   Rect
	Kind   WallKind
	Health int
}

// Wall is a wall's live state inside an arena
type Wall struct {
	ID        string
	Rect      Rect
	Kind      WallKind
	Health    int
	MaxHealth int
	Destroyed bool
}

// MapDef describes one battlefield
type MapDef struct {
	ID        string
	Name      string
	Width     float64
	Height    float64
	FlagBases map[Team]Vec2
	Spawns    map[Team][]Vec2
	Walls     []WallDef
}

func solid(id string, x, y, w, h float64) WallDef {
	return WallDef{ID: id, Rect: Rect{X: x, Y: y, W: w, H: h}, Kind: WallSolid}
}

func boundary(id string, x, y, w, h float64) WallDef {
	return WallDef{ID: id, Rect: Rect{X: x, Y: y, W: w, H: h}, Kind: WallBoundary}
}

func destructible(id string, x, y, w, h float64, health int) WallDef {
	return WallDef{ID: id, Rect: Rect{X: x, Y: y, W: w, H: h}, Kind: WallDestructible, Health: health}
}

// ClassicMap is the original 1200x800 arena
var ClassicMap = &MapDef{
	ID:     "classic",
	Name:   "Classic",
	Width:  1200,
	Height: 800,
	FlagBases: map[Team]Vec2{
		TeamRed:  {X: 80, Y: 400},
		TeamBlue: {X: 1120, Y: 400},
	},
	Spawns: map[Team][]Vec2{
		TeamRed:  {{X: 100, Y: 400}},
		TeamBlue: {{X: 1100, Y: 400}},
	},
	Walls: []WallDef{
		solid("wall-top", 0, 0, 1200, 20),
		solid("wall-bottom", 0, 780, 1200, 20),
		solid("wall-left", 0, 0, 20, 800),
		solid("wall-right", 1180, 0, 20, 800),

		solid("center-1", 550, 200, 100, 100),
		solid("center-2", 550, 500, 100, 100),

		solid("red-cover-1", 100, 300, 80, 20),
		solid("red-cover-2", 100, 480, 80, 20),
		solid("blue-cover-1", 1020, 300, 80, 20),
		solid("blue-cover-2", 1020, 480, 80, 20),

		destructible("mid-1", 300, 150, 20, 150, 500),
		destructible("mid-2", 300, 500, 20, 150, 500),
		destructible("mid-3", 880, 150, 20, 150, 500),
		destructible("mid-4", 880, 500, 20, 150, 500),

		solid("cover-mid-top", 580, 100, 40, 60),
		solid("cover-mid-bot", 580, 640, 40, 60),

		solid("flank-1", 400, 350, 60, 20),
		solid("flank-2", 400, 430, 60, 20),
		solid("flank-3", 740, 350, 60, 20),
		solid("flank-4", 740, 430, 60, 20),
	},
}

// SummerMap is the larger 2400x1600 valley
var SummerMap = &MapDef{
	ID:     "summer",
	Name:   "Summer Valley",
	Width:  2400,
	Height: 1600,
	FlagBases: map[Team]Vec2{
		TeamRed:  {X: 120, Y: 800},
		TeamBlue: {X: 2280, Y: 800},
	},
	Spawns: map[Team][]Vec2{
		TeamRed: {
			{X: 150, Y: 600}, {X: 150, Y: 800}, {X: 150, Y: 1000},
			{X: 250, Y: 700}, {X: 250, Y: 900},
		},
		TeamBlue: {
			{X: 2250, Y: 600}, {X: 2250, Y: 800}, {X: 2250, Y: 1000},
			{X: 2150, Y: 700}, {X: 2150, Y: 900},
		},
	},
	Walls: []WallDef{
		boundary("bound-top", 0, 0, 2400, 30),
		boundary("bound-bottom", 0, 1570, 2400, 30),
		boundary("bound-left", 0, 0, 30, 1600),
		boundary("bound-right", 2370, 0, 30, 1600),

		solid("center-pillar-1", 1100, 400, 100, 100),
		solid("center-pillar-2", 1200, 700, 100, 100),
		solid("center-pillar-3", 1100, 1000, 100, 100),

		solid("red-wall-1", 300, 500, 150, 30),
		solid("red-wall-2", 300, 1070, 150, 30),
		solid("red-wall-3", 400, 750, 30, 200),
		solid("blue-wall-1", 1950, 500, 150, 30),
		solid("blue-wall-2", 1950, 1070, 150, 30),
		solid("blue-wall-3", 1970, 750, 30, 200),

		destructible("mid-barricade-1", 600, 300, 30, 200, 800),
		destructible("mid-barricade-2", 600, 1100, 30, 200, 800),
		destructible("mid-barricade-3", 1770, 300, 30, 200, 800),
		destructible("mid-barricade-4", 1770, 1100, 30, 200, 800),

		solid("flank-cover-1", 800, 650, 100, 30),
		solid("flank-cover-2", 800, 920, 100, 30),
		solid("flank-cover-3", 1500, 650, 100, 30),
		solid("flank-cover-4", 1500, 920, 100, 30),

		solid("lane-top-1", 500, 100, 200, 80),
		solid("lane-top-2", 1700, 100, 200, 80),
		solid("lane-bot-1", 500, 1420, 200, 80),
		solid("lane-bot-2", 1700, 1420, 200, 80),
	},
}

var mapsByID = map[string]*MapDef{
	ClassicMap.ID: ClassicMap,
	SummerMap.ID:  SummerMap,
}

// MapByID looks up a map definition
func MapByID(id string) (*MapDef, error) {
	m, ok := mapsByID[id]
	if !ok {
		return nil, fmt.Errorf("unknown map %q", id)
	}
	return m, nil
}

// Arena is the live geometry of the current battle: walls with health plus
// the grid used to find them.
type Arena struct {
	Def      *MapDef
	Walls    []*Wall
	grid     *SpatialGrid
	queryBuf []int
	bounds   Bounds
}

// NewArena builds live walls for def. margin is the clamp distance kept
// between a tank center and the map edge.
func NewArena(def *MapDef, margin float64) *Arena {
	a := &Arena{
		Def:    def,
		grid:   NewSpatialGrid(def.Width, def.Height),
		bounds: Bounds{Width: def.Width, Height: def.Height, Margin: margin},
	}
	a.Walls = make([]*Wall, len(def.Walls))
	for i, wd := range def.Walls {
		a.Walls[i] = &Wall{ID: wd.ID, Rect: wd.Rect, Kind: wd.Kind}
		a.grid.InsertRect(wd.Rect, i)
	}
	a.Reset()
	return a
}

// Reset restores every wall to full health
func (a *Arena) Reset() {
	for i, wd := range a.Def.Walls {
		w := a.Walls[i]
		w.Health = wd.Health
		w.MaxHealth = wd.Health
		w.Destroyed = false
	}
}

// Bounds returns the map rectangle and clamp margin
func (a *Arena) Bounds() Bounds {
	return a.bounds
}

// FlagBase returns the home position of team's flag
func (a *Arena) FlagBase(team Team) Vec2 {
	return a.Def.FlagBases[team]
}

// SpawnPoint picks one of team's spawn points
func (a *Arena) SpawnPoint(team Team, rng *rand.Rand) Vec2 {
	spawns := a.Def.Spawns[team]
	if len(spawns) == 0 {
		return Vec2{X: a.Def.Width / 2, Y: a.Def.Height / 2}
	}
	if len(spawns) == 1 || rng == nil {
		return spawns[0]
	}
	return spawns[rng.Intn(len(spawns))]
}

// DamageWall applies damage to a destructible wall and reports whether it
// was destroyed by this hit. Other wall kinds ignore damage.
func (a *Arena) DamageWall(w *Wall, dmg int) bool {
	if w.Kind != WallDestructible || w.Destroyed || dmg <= 0 {
		return false
	}
	w.Health -= dmg
	if w.Health <= 0 {
		w.Health = 0
		w.Destroyed = true
		return true
	}
	return false
}

// ToState converts walls to protocol state
func (a *Arena) ToState() []WallState {
	out := make([]WallState, 0, len(a.Walls))
	for _, w := range a.Walls {
		out = append(out, WallState{
			ID:        w.ID,
			Position:  Vec2{X: w.Rect.X, Y: w.Rect.Y},
			Width:     w.Rect.W,
			Height:    w.Rect.H,
			Type:      string(w.Kind),
			Health:    w.Health,
			MaxHealth: w.MaxHealth,
			Destroyed: w.Destroyed,
		})
	}
	return out
}
