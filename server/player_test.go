package main

import (
	"math"
	"testing"
	"time"
)

func TestNewPlayer(t *testing.T) {
	hull := Hulls[0].Stats(0)
	p := NewPlayer("p1", "Tester", TeamBlue, hull, Guns[0].Stats(0), Vec2{X: 10, Y: 20})
	if p.Health != hull.MaxHealth || p.MaxHealth != hull.MaxHealth {
		t.Errorf("expected full health %d, got %d/%d", hull.MaxHealth, p.Health, p.MaxHealth)
	}
	if !p.Alive {
		t.Error("expected player to be alive")
	}
	if p.Rotation != math.Pi {
		t.Errorf("blue players should face west, got %v", p.Rotation)
	}
	if !p.ReloadReady(0) {
		t.Error("a new player can fire immediately")
	}
	if p.IsBot() {
		t.Error("NewPlayer creates humans")
	}
}

func TestTakeDamage(t *testing.T) {
	p := NewPlayer("p1", "Tester", TeamRed, Hulls[0].Stats(0), Guns[0].Stats(0), Vec2{})

	if p.TakeDamage(300) {
		t.Error("300 of 800 should not kill")
	}
	if p.Health != 500 {
		t.Errorf("expected 500, got %d", p.Health)
	}
	if !p.TakeDamage(9999) {
		t.Error("lethal damage should report the kill")
	}
	if p.Health != 0 || p.Alive {
		t.Errorf("expected dead at 0, got alive=%v health=%d", p.Alive, p.Health)
	}
	if p.TakeDamage(10) {
		t.Error("dead players cannot die again")
	}
}

func TestHealCapsAtMax(t *testing.T) {
	p := NewPlayer("p1", "Tester", TeamRed, Hulls[0].Stats(0), Guns[0].Stats(0), Vec2{})
	p.Health = 790
	if got := p.Heal(50); got != 10 {
		t.Errorf("expected 10 applied, got %d", got)
	}
	if p.Health != p.MaxHealth {
		t.Errorf("expected %d, got %d", p.MaxHealth, p.Health)
	}

	p.Alive = false
	if p.Heal(10) != 0 {
		t.Error("dead players cannot be healed")
	}
}

func TestRespawnResets(t *testing.T) {
	p := NewPlayer("p1", "Tester", TeamRed, Hulls[0].Stats(0), Guns[0].Stats(0), Vec2{})
	p.TakeDamage(9999)
	p.HasFlag = true
	p.deathHandled = true
	p.LastShot = time.Second

	p.Respawn(Vec2{X: 100, Y: 400})
	if !p.Alive || p.Health != p.MaxHealth || p.HasFlag || p.deathHandled {
		t.Errorf("respawn should fully reset, got %+v", p)
	}
	if p.Pos != (Vec2{X: 100, Y: 400}) {
		t.Errorf("unexpected position %v", p.Pos)
	}
	if !p.ReloadReady(time.Second) {
		t.Error("reload resets on respawn")
	}
}

func TestToStateRoundsPosition(t *testing.T) {
	p := NewPlayer("p1", "Tester", TeamRed, Hulls[0].Stats(0), Guns[0].Stats(0), Vec2{X: 10.26, Y: 3.14159})
	s := p.ToState()
	if s.Position.X != 10.3 || s.Position.Y != 3.1 {
		t.Errorf("expected one decimal, got %v", s.Position)
	}
	if s.Hull != "wasp" || s.Gun != "smoky" {
		t.Errorf("unexpected loadout %s/%s", s.Hull, s.Gun)
	}
}
