package main

import (
	"math"
	"time"
)

const (
	MaxUpgradeLevel    = 20
	gunDamagePerLevel  = 0.05
	gunReloadPerLevel  = 20 * time.Millisecond
	minReloadTime      = 50 * time.Millisecond
	upgradeBaseCost    = 1000
	upgradeCostGrowth  = 1.5
	plasmaSplashFactor = 0.3
)

// HullUpgrades holds the per-level stat multipliers of a hull
type HullUpgrades struct {
	HealthPerLevel float64 `json:"healthPerLevel"`
	SpeedPerLevel  float64 `json:"speedPerLevel"`
	ArmorPerLevel  float64 `json:"armorPerLevel"`
}

// HullAbilities describes optional hull abilities
type HullAbilities struct {
	CanJump      bool  `json:"canJump"`
	JumpCooldown int64 `json:"jumpCooldown"` // ms
	JumpDistance int   `json:"jumpDistance"`
}

// HullDef is an immutable hull catalog entry
type HullDef struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	BaseHealth   int            `json:"baseHealth"`
	BaseSpeed    float64        `json:"baseSpeed"`
	BaseArmor    float64        `json:"baseArmor"`
	Weight       float64        `json:"weight"`
	Acceleration float64        `json:"acceleration"`
	TurnSpeed    float64        `json:"turnSpeed"`
	Size         float64        `json:"size"`
	Price        int            `json:"price"`
	Color        string         `json:"color"`
	Upgrades     HullUpgrades   `json:"upgrades"`
	Abilities    *HullAbilities `json:"abilities,omitempty"`
}

// HullStats are a hull's stats resolved at one upgrade level
type HullStats struct {
	ID        string  `json:"id"`
	Level     int     `json:"level"`
	MaxHealth int     `json:"maxHealth"`
	Speed     float64 `json:"speed"`
	Armor     float64 `json:"armor"`
}

// Stats resolves the hull at the given upgrade level
func (h *HullDef) Stats(level int) HullStats {
	level = clampLevel(level)
	lv := float64(level)
	return HullStats{
		ID:        h.ID,
		Level:     level,
		MaxHealth: int(math.Floor(float64(h.BaseHealth) * (1 + lv*h.Upgrades.HealthPerLevel))),
		Speed:     math.Floor(h.BaseSpeed * (1 + lv*h.Upgrades.SpeedPerLevel)),
		Armor:     h.BaseArmor * (1 + lv*h.Upgrades.ArmorPerLevel),
	}
}

// GunDef is an immutable gun catalog entry
type GunDef struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	BaseDamage      int           `json:"baseDamage"`
	FireRate        float64       `json:"fireRate"`
	ReloadTime      time.Duration `json:"-"`
	ReloadMS        int64         `json:"reloadTime"`
	ProjectileSpeed float64       `json:"projectileSpeed"`
	Price           int           `json:"price"`
	Effect          ShotEffect    `json:"shotEffect"`
	ShotColor       string        `json:"shotColor"`
	ExplosionRadius float64       `json:"explosionRadius"`
}

// GunStats are a gun's stats resolved at one upgrade level
type GunStats struct {
	ID              string        `json:"id"`
	Level           int           `json:"level"`
	Damage          int           `json:"damage"`
	Reload          time.Duration `json:"-"`
	ProjectileSpeed float64       `json:"projectileSpeed"`
	Effect          ShotEffect    `json:"shotEffect"`
	ExplosionRadius float64       `json:"explosionRadius"`
	ShotColor       string        `json:"shotColor"`
}

// Stats resolves the gun at the given upgrade level
func (g *GunDef) Stats(level int) GunStats {
	level = clampLevel(level)
	reload := g.ReloadTime - time.Duration(level)*gunReloadPerLevel
	if reload < minReloadTime {
		reload = minReloadTime
	}
	return GunStats{
		ID:              g.ID,
		Level:           level,
		Damage:          int(math.Floor(float64(g.BaseDamage) * (1 + float64(level)*gunDamagePerLevel))),
		Reload:          reload,
		ProjectileSpeed: g.ProjectileSpeed,
		Effect:          g.Effect,
		ExplosionRadius: g.ExplosionRadius,
		ShotColor:       g.ShotColor,
	}
}

// UpgradeCost is the price of raising an item from level to level+1
func UpgradeCost(level int) int {
	return int(math.Floor(upgradeBaseCost * math.Pow(upgradeCostGrowth, float64(level))))
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxUpgradeLevel {
		return MaxUpgradeLevel
	}
	return level
}

func gun(id, name, desc string, dmg int, rate float64, reloadMS int64, speed float64, price int, eff ShotEffect, color string, radius float64) *GunDef {
	return &GunDef{
		ID: id, Name: name, Description: desc,
		BaseDamage: dmg, FireRate: rate,
		ReloadTime: time.Duration(reloadMS) * time.Millisecond, ReloadMS: reloadMS,
		ProjectileSpeed: speed, Price: price, Effect: eff, ShotColor: color,
		ExplosionRadius: radius,
	}
}

// Hulls is the hull catalog in shop order
var Hulls = []*HullDef{
	{ID: "wasp", Name: "Wasp", Description: "Light and fast hull, perfect for flag runners. Fragile but agile.",
		BaseHealth: 800, BaseSpeed: 12, BaseArmor: 5, Weight: 50, Acceleration: 0.9, TurnSpeed: 0.12, Size: 0.8,
		Price: 0, Color: "#4ade80", Upgrades: HullUpgrades{0.05, 0.03, 0.04}},
	{ID: "hornet", Name: "Hornet", Description: "Balanced hull with good speed and armor. Great all-rounder.",
		BaseHealth: 1200, BaseSpeed: 10, BaseArmor: 15, Weight: 75, Acceleration: 0.7, TurnSpeed: 0.1, Size: 0.9,
		Price: 5000, Color: "#fbbf24", Upgrades: HullUpgrades{0.05, 0.03, 0.04}},
	{ID: "viking", Name: "Viking", Description: "Heavy tank with high armor but slower speed. A true frontline fighter.",
		BaseHealth: 2000, BaseSpeed: 6, BaseArmor: 30, Weight: 150, Acceleration: 0.4, TurnSpeed: 0.07, Size: 1.1,
		Price: 15000, Color: "#60a5fa", Upgrades: HullUpgrades{0.06, 0.02, 0.05}},
	{ID: "titan", Name: "Titan", Description: "The heaviest hull with maximum protection. Nearly unstoppable.",
		BaseHealth: 3000, BaseSpeed: 4, BaseArmor: 50, Weight: 250, Acceleration: 0.3, TurnSpeed: 0.05, Size: 1.3,
		Price: 50000, Color: "#a855f7", Upgrades: HullUpgrades{0.07, 0.02, 0.06}},
	{ID: "hunter", Name: "Hunter", Description: "Stealth hull with moderate stats. Hard to detect, easy to play.",
		BaseHealth: 1000, BaseSpeed: 11, BaseArmor: 10, Weight: 60, Acceleration: 0.85, TurnSpeed: 0.11, Size: 0.85,
		Price: 8000, Color: "#6b7280", Upgrades: HullUpgrades{0.05, 0.04, 0.03}},
	{ID: "dictator", Name: "Dictator", Description: "Command hull with balanced offensive capabilities. Lead your team.",
		BaseHealth: 1800, BaseSpeed: 7, BaseArmor: 25, Weight: 120, Acceleration: 0.5, TurnSpeed: 0.08, Size: 1.0,
		Price: 25000, Color: "#dc2626", Upgrades: HullUpgrades{0.05, 0.03, 0.05}},
	{ID: "mammoth", Name: "Mammoth", Description: "Massive super-heavy hull. Maximum firepower platform.",
		BaseHealth: 3500, BaseSpeed: 3, BaseArmor: 60, Weight: 300, Acceleration: 0.2, TurnSpeed: 0.04, Size: 1.5,
		Price: 100000, Color: "#0ea5e9", Upgrades: HullUpgrades{0.08, 0.01, 0.07}},
	{ID: "hopper", Name: "Hopper", Description: "Experimental light hull with jump capability. Hit and run specialist.",
		BaseHealth: 600, BaseSpeed: 14, BaseArmor: 3, Weight: 40, Acceleration: 1.0, TurnSpeed: 0.15, Size: 0.7,
		Price: 35000, Color: "#f97316", Upgrades: HullUpgrades{0.04, 0.05, 0.02},
		Abilities: &HullAbilities{CanJump: true, JumpCooldown: 5000, JumpDistance: 200}},
}

// Guns is the gun catalog in shop order
var Guns = []*GunDef{
	gun("smoky", "Smoky", "Standard cannon with consistent damage", 100, 2, 500, 15, 0, EffectNormal, "#fbbf24", 0),
	gun("twins", "Twins", "Dual barrels for rapid fire", 50, 6, 150, 18, 3000, EffectNormal, "#4ade80", 0),
	gun("thunder", "Thunder", "Explosive rounds with area damage", 250, 0.8, 1200, 12, 12000, EffectExplosive, "#f97316", 60),
	gun("railgun", "Railgun", "High-velocity piercing shots", 400, 0.5, 2000, 30, 30000, EffectRailgun, "#3b82f6", 0),
	gun("plasma", "Plasma", "Energy weapon with sustained damage", 80, 4, 250, 20, 20000, EffectPlasma, "#a855f7", 20),
	gun("laser", "Laser", "Continuous beam weapon", 30, 10, 100, 50, 45000, EffectLaser, "#ef4444", 0),
	gun("firebird", "Firebird", "Short-range flamethrower that sets targets alight", 30, 10, 100, 8, 25000, EffectFire, "#ff4500", 0),
	gun("freeze", "Freeze", "Cryo stream that slows targets", 25, 10, 100, 8, 25000, EffectIce, "#00bfff", 0),
	gun("isida", "Isida", "Nano beam that drains enemies and repairs allies", 20, 15, 66, 10, 40000, EffectBeam, "#00ff7f", 0),
}

var (
	hullsByID = indexHulls(Hulls)
	gunsByID  = indexGuns(Guns)
)

func indexHulls(list []*HullDef) map[string]*HullDef {
	m := make(map[string]*HullDef, len(list))
	for _, h := range list {
		m[h.ID] = h
	}
	return m
}

func indexGuns(list []*GunDef) map[string]*GunDef {
	m := make(map[string]*GunDef, len(list))
	for _, g := range list {
		m[g.ID] = g
	}
	return m
}

// HullByID looks up a hull
func HullByID(id string) (*HullDef, bool) {
	h, ok := hullsByID[id]
	return h, ok
}

// GunByID looks up a gun
func GunByID(id string) (*GunDef, bool) {
	g, ok := gunsByID[id]
	return g, ok
}
