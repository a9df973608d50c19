package main

import "math"

const lineOfSightProbe = 2.0

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// CircleIntersectsRect tests a circle against a rectangle using the closest
// point on the rectangle to the circle center.
func CircleIntersectsRect(center Vec2, radius float64, r Rect) bool {
	cx := Clamp(center.X, r.X, r.X+r.W)
	cy := Clamp(center.Y, r.Y, r.Y+r.H)
	dx := center.X - cx
	dy := center.Y - cy
	return dx*dx+dy*dy < radius*radius
}

// withinRadius reports whether b lies strictly inside a circle of radius r around a
func withinRadius(a, b Vec2, r float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx+dy*dy < r*r
}

// CheckWallCollision reports whether a circle at p collides with any standing wall
func (a *Arena) CheckWallCollision(p Vec2, radius float64) bool {
	return a.WallAt(p, radius) != nil
}

// WallAt returns the first standing wall a circle at p intersects, or nil
func (a *Arena) WallAt(p Vec2, radius float64) *Wall {
	a.queryBuf = a.grid.QueryBuf(p.X, p.Y, radius, a.queryBuf[:0])
	for _, idx := range a.queryBuf {
		w := a.Walls[idx]
		if w.Destroyed {
			continue
		}
		if CircleIntersectsRect(p, radius, w.Rect) {
			return w
		}
	}
	return nil
}

// HasLineOfSight samples the segment from->to every step units and fails on
// the first sample that touches a wall.
func (a *Arena) HasLineOfSight(from, to Vec2, step float64) bool {
	if step <= 0 {
		step = 10
	}
	dist := Distance(from, to)
	steps := int(math.Ceil(dist / step))
	if steps == 0 {
		return !a.CheckWallCollision(from, lineOfSightProbe)
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := Vec2{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
		if a.CheckWallCollision(p, lineOfSightProbe) {
			return false
		}
	}
	return true
}

// PlayersInRadius returns every player within radius of center
func PlayersInRadius(players []*Player, center Vec2, radius float64) []*Player {
	var out []*Player
	for _, p := range players {
		if Distance(p.Pos, center) <= radius {
			out = append(out, p)
		}
	}
	return out
}
