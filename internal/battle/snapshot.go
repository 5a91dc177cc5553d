package battle

// Snapshot is a read-only copy of the whole battle. It shares nothing with the
// live simulation, so hosts may keep it after the battle moves on.
type Snapshot struct {
	Time        float64              `json:"time"`
	Tick        int                  `json:"tick"`
	Ended       bool                 `json:"ended"`
	Outcome     Outcome              `json:"outcome"`
	Player      SquadSnapshot        `json:"player"`
	Enemy       SquadSnapshot        `json:"enemy"`
	Projectiles []ProjectileSnapshot `json:"projectiles,omitempty"`
}

// SquadSnapshot lists a squad's units in slot order.
type SquadSnapshot struct {
	Faction Faction        `json:"faction"`
	Alive   int            `json:"alive"`
	Units   []UnitSnapshot `json:"units"`
}

// UnitSnapshot copies every observable field of a unit.
type UnitSnapshot struct {
	ID           UnitID           `json:"id"`
	Label        string           `json:"label"`
	Faction      Faction          `json:"faction"`
	Slot         int              `json:"slot"`
	UnitType     string           `json:"unitType"`
	Position     Vec2             `json:"position"`
	Health       int              `json:"health"`
	MaxHealth    int              `json:"maxHealth"`
	Armor        float64          `json:"armor"`
	MoveSpeed    float64          `json:"moveSpeed"`
	MinDamage    float64          `json:"minDamage"`
	MaxDamage    float64          `json:"maxDamage"`
	AttackPeriod float64          `json:"attackPeriod"`
	AttackRange  float64          `json:"attackRange"`
	Cooldown     float64          `json:"cooldown"`
	Status       LifeStatus       `json:"status"`
	Target       UnitID           `json:"target,omitempty"`
	Projectile   string           `json:"projectile,omitempty"`
	Ability      *AbilitySnapshot `json:"ability,omitempty"`
}

// AbilitySnapshot is a unit's bound ability and whether it has been spent.
type AbilitySnapshot struct {
	Name        string      `json:"name"`
	Kind        AbilityKind `json:"kind"`
	Used        bool        `json:"used"`
	ButtonAsset string      `json:"buttonAsset,omitempty"`
	EffectAsset string      `json:"effectAsset,omitempty"`
}

// ProjectileSnapshot is one projectile in flight.
type ProjectileSnapshot struct {
	ID       ProjectileID `json:"id"`
	FromID   UnitID       `json:"from"`
	TargetID UnitID       `json:"target"`
	Position Vec2         `json:"position"`
	Aim      Vec2         `json:"aim"`
	Damage   int          `json:"damage"`
	Age      float64      `json:"age"`
}

// CurrentState captures both squads and every projectile in flight.
func (s *Simulation) CurrentState() Snapshot {
	snap := Snapshot{
		Time:    s.now,
		Tick:    s.tick,
		Ended:   s.Ended(),
		Outcome: s.Outcome(),
		Player:  s.snapshotSquad(s.player),
		Enemy:   s.snapshotSquad(s.enemy),
	}
	for _, p := range s.projectiles.inFlight {
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:       p.id,
			FromID:   p.from,
			TargetID: p.target.id,
			Position: p.pos,
			Aim:      p.aim,
			Damage:   p.damage,
			Age:      p.age,
		})
	}
	return snap
}

func (s *Simulation) snapshotSquad(sq *Squad) SquadSnapshot {
	out := SquadSnapshot{Faction: sq.Faction, Alive: sq.AliveCount()}
	for _, u := range sq.Units() {
		us := UnitSnapshot{
			ID:           u.id,
			Label:        u.label,
			Faction:      u.faction,
			Slot:         u.slot,
			UnitType:     u.kind.Name,
			Position:     u.pos,
			Health:       u.health,
			MaxHealth:    u.maxHealth,
			Armor:        u.armor,
			MoveSpeed:    u.moveSpeed,
			MinDamage:    u.minDamage,
			MaxDamage:    u.maxDamage,
			AttackPeriod: u.attackPeriod,
			AttackRange:  u.attackRange,
			Cooldown:     u.cooldown,
			Status:       u.status,
			Target:       s.targets[u.id],
		}
		if u.projectile != nil {
			us.Projectile = u.projectile.Name
		}
		if u.ability != nil {
			ab := u.ability.Type
			us.Ability = &AbilitySnapshot{
				Name:        ab.Name,
				Kind:        ab.Kind,
				Used:        u.ability.Used,
				ButtonAsset: ab.ButtonAsset,
				EffectAsset: ab.EffectAsset,
			}
		}
		out.Units = append(out.Units, us)
	}
	return out
}

// Unit returns the snapshot of the unit with id, searching both squads.
func (snap Snapshot) Unit(id UnitID) (UnitSnapshot, bool) {
	for _, sq := range [...]SquadSnapshot{snap.Player, snap.Enemy} {
		for _, u := range sq.Units {
			if u.ID == id {
				return u, true
			}
		}
	}
	return UnitSnapshot{}, false
}
