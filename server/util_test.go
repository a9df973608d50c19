package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovePlayerClampsToMargin(t *testing.T) {
	b := Bounds{Width: 1200, Height: 800, Margin: 30}
	dirs := []Vec2{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {X: 1, Y: 1}, {X: -3, Y: 7}, {X: 1e9, Y: -1e9}}
	starts := []Vec2{{X: 30, Y: 30}, {X: 1170, Y: 770}, {X: 600, Y: 400}, {X: 35, Y: 765}}

	for _, s := range starts {
		for _, d := range dirs {
			for _, speed := range []float64{0, 12, 500, 1e6} {
				p := b.MovePlayer(s, d, speed)
				if p.X < 30 || p.X > 1170 || p.Y < 30 || p.Y > 770 {
					t.Errorf("MovePlayer(%v, %v, %v) = %v escapes the margin", s, d, speed, p)
				}
			}
		}
	}
}

func TestMovePlayerNormalizesDirection(t *testing.T) {
	b := Bounds{Width: 1200, Height: 800, Margin: 30}
	p := b.MovePlayer(Vec2{X: 600, Y: 400}, Vec2{X: 30, Y: 40}, 10)
	assert.InDelta(t, 606, p.X, 1e-9)
	assert.InDelta(t, 408, p.Y, 1e-9)

	assert.Equal(t, Vec2{X: 600, Y: 400}, b.MovePlayer(Vec2{X: 600, Y: 400}, Vec2{}, 10), "zero direction stays put")
}

func TestDamageFalloff(t *testing.T) {
	tests := []struct {
		base     int
		dist, r  float64
		expected int
	}{
		{250, 0, 60, 250},
		{250, 30, 60, 125},
		{250, 59, 60, 4},
		{250, 60, 60, 0},
		{250, 90, 60, 0},
		{100, 10, 0, 0},
		{99, 15, 60, 74},
	}
	for _, tt := range tests {
		if got := DamageFalloff(tt.base, tt.dist, tt.r); got != tt.expected {
			t.Errorf("DamageFalloff(%d, %v, %v) = %d, want %d", tt.base, tt.dist, tt.r, got, tt.expected)
		}
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize(Vec2{X: 3, Y: 4})
	assert.InDelta(t, 1, n.Len(), 1e-12)
	assert.Equal(t, Vec2{}, Normalize(Vec2{}))
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-9, "NormalizeAngle(%v)", tt.in)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-1, 0, 10))
	assert.Equal(t, 10.0, Clamp(11, 0, 10))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance(Vec2{}, Vec2{X: 3, Y: 4}))
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Len(t, shortHex(8), 8)
}
