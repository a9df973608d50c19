package main

import "testing"

func TestCircleIntersectsRect(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: 50, H: 50}

	// Center inside
	if !CircleIntersectsRect(Vec2{X: 120, Y: 120}, 5, r) {
		t.Error("circle inside rect should intersect")
	}

	// Overlapping an edge
	if !CircleIntersectsRect(Vec2{X: 95, Y: 120}, 10, r) {
		t.Error("circle overlapping left edge should intersect")
	}

	// Exactly touching is not a hit
	if CircleIntersectsRect(Vec2{X: 90, Y: 120}, 10, r) {
		t.Error("touching circle should not intersect")
	}

	// Near a corner but outside
	if CircleIntersectsRect(Vec2{X: 92, Y: 92}, 10, r) {
		t.Error("circle off the corner should not intersect")
	}
}

func TestWithinRadiusIsStrict(t *testing.T) {
	if !withinRadius(Vec2{}, Vec2{X: 24.9}, 25) {
		t.Error("24.9 should be inside 25")
	}
	if withinRadius(Vec2{}, Vec2{X: 25}, 25) {
		t.Error("25 should be outside 25")
	}
}

func TestWallAtClassicMap(t *testing.T) {
	a := NewArena(ClassicMap, 30)

	w := a.WallAt(Vec2{X: 600, Y: 250}, 5)
	if w == nil || w.ID != "center-1" {
		t.Fatalf("expected center-1, got %v", w)
	}

	if a.WallAt(Vec2{X: 250, Y: 400}, 5) != nil {
		t.Error("open ground should have no wall")
	}
}

func TestDestroyedWallIgnored(t *testing.T) {
	a := NewArena(ClassicMap, 30)
	w := a.WallAt(Vec2{X: 310, Y: 200}, 5)
	if w == nil || w.Kind != WallDestructible {
		t.Fatalf("expected destructible wall, got %v", w)
	}

	if a.DamageWall(w, 499) {
		t.Error("wall should survive 499 damage")
	}
	if !a.DamageWall(w, 1) {
		t.Error("wall should be destroyed at 0 health")
	}
	if a.DamageWall(w, 100) {
		t.Error("a destroyed wall cannot be destroyed again")
	}
	if a.WallAt(Vec2{X: 310, Y: 200}, 5) != nil {
		t.Error("destroyed wall should not block")
	}

	a.Reset()
	if a.WallAt(Vec2{X: 310, Y: 200}, 5) == nil {
		t.Error("reset should restore the wall")
	}
}

func TestSolidWallIgnoresDamage(t *testing.T) {
	a := NewArena(ClassicMap, 30)
	w := a.WallAt(Vec2{X: 600, Y: 250}, 5)
	if a.DamageWall(w, 1e6) || w.Destroyed {
		t.Error("solid walls are indestructible")
	}
}

func TestHasLineOfSight(t *testing.T) {
	a := NewArena(ClassicMap, 30)

	if a.HasLineOfSight(Vec2{X: 500, Y: 250}, Vec2{X: 700, Y: 250}, 10) {
		t.Error("center-1 should block sight")
	}
	if !a.HasLineOfSight(Vec2{X: 500, Y: 400}, Vec2{X: 700, Y: 400}, 10) {
		t.Error("center lane should be clear")
	}
	if !a.HasLineOfSight(Vec2{X: 250, Y: 400}, Vec2{X: 250, Y: 400}, 10) {
		t.Error("a point sees itself")
	}
}

func TestPlayersInRadiusInclusive(t *testing.T) {
	ps := []*Player{
		{ID: "a", Pos: Vec2{X: 0, Y: 0}},
		{ID: "b", Pos: Vec2{X: 60, Y: 0}},
		{ID: "c", Pos: Vec2{X: 61, Y: 0}},
	}
	got := PlayersInRadius(ps, Vec2{}, 60)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected a and b, got %v", got)
	}
}
