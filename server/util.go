package main

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Vec2 is a point or direction on the map plane
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Add returns v+o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v*s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Len returns the vector magnitude
func (v Vec2) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// GenerateID returns a random UUID string
func GenerateID() string {
	return uuid.NewString()
}

// shortHex returns n lowercase hex characters of a fresh UUID
func shortHex(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Normalize returns the unit vector of v, or the zero vector when v has no length
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// AngleTo returns the heading in radians from one point toward another
func AngleTo(from, to Vec2) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// Heading returns the unit vector for an angle
func Heading(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Bounds is the playable rectangle of a map with the margin kept clear of its edges
type Bounds struct {
	Width  float64
	Height float64
	Margin float64
}

// Contains reports whether p lies inside the map rectangle (edges included)
func (b Bounds) Contains(p Vec2) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// MovePlayer steps pos along dir by speed and clamps each axis to
// [Margin, dimension-Margin]. dir does not need to be normalized.
func (b Bounds) MovePlayer(pos, dir Vec2, speed float64) Vec2 {
	n := Normalize(dir)
	next := pos.Add(n.Scale(speed))
	return Vec2{
		X: Clamp(next.X, b.Margin, b.Width-b.Margin),
		Y: Clamp(next.Y, b.Margin, b.Height-b.Margin),
	}
}

// DamageFalloff scales damage linearly from full at the center to zero at maxDistance
func DamageFalloff(baseDamage int, distance, maxDistance float64) int {
	if maxDistance <= 0 {
		return 0
	}
	d := math.Floor(float64(baseDamage) * (1 - distance/maxDistance))
	if d < 0 {
		return 0
	}
	return int(d)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
