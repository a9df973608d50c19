package main

// Flag is a team's capture objective
type Flag struct {
	Team      Team
	Base      Vec2
	Pos       Vec2
	AtBase    bool
	CarriedBy string // player id, "" when uncarried

	dropSeq uint64 // bumped on every drop; stale auto-return events carry an older value
}

// NewFlag places a flag at its base
func NewFlag(team Team, base Vec2) *Flag {
	return &Flag{Team: team, Base: base, Pos: base, AtBase: true}
}

// Carried reports whether someone holds the flag
func (f *Flag) Carried() bool {
	return f.CarriedBy != ""
}

// Dropped reports whether the flag lies away from base with no carrier
func (f *Flag) Dropped() bool {
	return !f.AtBase && !f.Carried()
}

// PickUp binds the flag to p
func (f *Flag) PickUp(p *Player) {
	f.CarriedBy = p.ID
	f.AtBase = false
	f.Pos = p.Pos
	p.HasFlag = true
}

// Drop releases the flag at pos and returns the drop sequence number
func (f *Flag) Drop(pos Vec2) uint64 {
	f.CarriedBy = ""
	f.AtBase = false
	f.Pos = pos
	f.dropSeq++
	return f.dropSeq
}

// Return puts the flag back at its base
func (f *Flag) Return() {
	f.CarriedBy = ""
	f.AtBase = true
	f.Pos = f.Base
}

// ToState converts to protocol state
func (f *Flag) ToState() FlagState {
	return FlagState{
		ID:        string(f.Team) + "-flag",
		Team:      f.Team,
		Position:  Vec2{X: round1(f.Pos.X), Y: round1(f.Pos.Y)},
		Base:      f.Base,
		IsAtBase:  f.AtBase,
		CarriedBy: f.CarriedBy,
	}
}
