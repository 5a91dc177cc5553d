package battle

import "fmt"

// minAttackPeriod is the floor applied when a buff shortens a unit's attack period.
const minAttackPeriod = 0.05

// Faction distinguishes the two squads in a battle.
type Faction int

const (
	FactionPlayer Faction = iota // squad A, the acting side
	FactionEnemy                 // squad B
)

func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

func (f Faction) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// Opponent returns the opposing faction.
func (f Faction) Opponent() Faction {
	if f == FactionPlayer {
		return FactionEnemy
	}
	return FactionPlayer
}

func (f Faction) labelPrefix() string {
	if f == FactionPlayer {
		return "P"
	}
	return "E"
}

// facing is the direction a faction advances in at battle start.
func (f Faction) facing() Vec2 {
	if f == FactionPlayer {
		return Vec2{X: 1}
	}
	return Vec2{X: -1}
}

// LifeStatus is a unit's alive/dead state. Dead is terminal.
type LifeStatus int

const (
	StatusAlive LifeStatus = iota
	StatusDead
)

func (ls LifeStatus) String() string {
	switch ls {
	case StatusAlive:
		return "alive"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

func (ls LifeStatus) MarshalText() ([]byte, error) { return []byte(ls.String()), nil }

// UnitID identifies a unit for the lifetime of one battle.
type UnitID int

// BoundAbility is a unit's special ability. Used flips once per battle and never back.
type BoundAbility struct {
	Type *AbilityType
	Used bool
}

// Unit is one combatant. All mutation goes through the owning Simulation.
type Unit struct {
	id      UnitID
	label   string
	faction Faction
	slot    int
	kind    *UnitType

	pos       Vec2
	health    int
	maxHealth int
	armor     float64
	moveSpeed float64
	minDamage float64
	maxDamage float64

	attackPeriod float64 // seconds between attacks
	attackRange  float64
	cooldown     float64 // seconds until the next attack is allowed

	status     LifeStatus
	ability    *BoundAbility
	projectile *ProjectileType // nil for melee units
}

func newUnit(id UnitID, faction Faction, slot int, kind *UnitType, pos Vec2) *Unit {
	st := kind.Stats
	u := &Unit{
		id:           id,
		label:        fmt.Sprintf("%s%d", faction.labelPrefix(), slot),
		faction:      faction,
		slot:         slot,
		kind:         kind,
		pos:          pos,
		health:       st.Health,
		maxHealth:    st.Health,
		armor:        st.Armor,
		moveSpeed:    st.MoveSpeed,
		minDamage:    st.MinDamage,
		maxDamage:    st.MaxDamage,
		attackPeriod: st.AttackPeriod,
		attackRange:  st.AttackRange,
		status:       StatusAlive,
		projectile:   kind.Projectile,
	}
	if kind.Ability != nil {
		u.ability = &BoundAbility{Type: kind.Ability}
	}
	return u
}

func (u *Unit) ID() UnitID { return u.id }
func (u *Unit) Label() string { return u.label }
func (u *Unit) Faction() Faction { return u.faction }
func (u *Unit) Slot() int { return u.slot }
func (u *Unit) TypeName() string { return u.kind.Name }
func (u *Unit) Position() Vec2 { return u.pos }
func (u *Unit) Health() int { return u.health }
func (u *Unit) MaxHealth() int { return u.maxHealth }
func (u *Unit) Status() LifeStatus { return u.status }
func (u *Unit) Armor() float64 { return u.armor }
func (u *Unit) AttackRange() float64 { return u.attackRange }
func (u *Unit) AttackPeriod() float64 { return u.attackPeriod }

// Ability returns the bound ability, or nil when the unit has none.
func (u *Unit) Ability() *AbilityType {
	if u.ability == nil {
		return nil
	}
	return u.ability.Type
}

// AbilityReady reports whether the unit is alive and still holds an unused ability.
func (u *Unit) AbilityReady() bool {
	return u.Alive() && u.ability != nil && !u.ability.Used
}

// Alive reports whether the unit can still act and be targeted.
func (u *Unit) Alive() bool { return u.status == StatusAlive }

// Ranged reports whether the unit attacks with projectiles.
func (u *Unit) Ranged() bool { return u.projectile != nil }

// applyModifier folds a progression bonus into the unit's base stats.
func (u *Unit) applyModifier(m Modifier) {
	u.minDamage += m.DamageBonus
	u.maxDamage += m.DamageBonus
	u.armor += m.ArmorBonus
}
