package battle

import (
	"math"
	"math/rand"
)

// combatResolver owns the battle's damage RNG. One seeded source per battle
// keeps runs reproducible.
type combatResolver struct {
	rng *rand.Rand
}

func newCombatResolver(seed int64) combatResolver {
	return combatResolver{rng: rand.New(rand.NewSource(seed))} // #nosec G404 -- gameplay rng
}

// roll draws raw damage uniformly from the attacker's damage range.
func (c combatResolver) roll(attacker *Unit) float64 {
	spread := attacker.maxDamage - attacker.minDamage
	if spread <= 0 {
		return attacker.minDamage
	}
	return attacker.minDamage + c.rng.Float64()*spread
}

// MitigatedDamage applies armor to a raw roll. Every landed attack deals at
// least one point.
func MitigatedDamage(raw, armor float64) int {
	d := math.Floor(raw - armor)
	if d < 1 {
		return 1
	}
	return int(d)
}

// actUnit runs one unit's turn: cooldown, targeting, then move or attack.
func (s *Simulation) actUnit(u *Unit, dt float64) {
	if u.cooldown > 0 {
		u.cooldown -= dt
		if u.cooldown < timeEpsilon {
			u.cooldown = 0
		}
	}

	target := nearestEnemy(u, s.squad(u.faction.Opponent()))
	if target == nil {
		return
	}
	s.targets[u.id] = target.id

	if !inRange(u, target) {
		approach(u, target, dt)
		return
	}
	if u.cooldown > 0 {
		return
	}
	s.attack(u, target)
}

// attack resolves one attack of u against target and restarts u's cooldown.
func (s *Simulation) attack(u, target *Unit) {
	raw := s.combat.roll(u)
	dmg := MitigatedDamage(raw, target.armor)
	s.log.Debug("attack",
		"attacker", u.label, "target", target.label,
		"raw", raw, "armor", target.armor, "damage", dmg, "ranged", u.Ranged())

	if u.Ranged() {
		p := s.projectiles.spawn(u, target, dmg)
		s.emit(EventProjectileSpawned, ProjectileSpawned{
			ID:     p.id,
			FromID: u.id,
			ToID:   target.id,
			Damage: dmg,
			Origin: p.origin,
			Aim:    p.aim,
		})
	} else {
		s.strike(u.id, target, dmg)
	}
	u.cooldown = u.attackPeriod
}

// strike lands an attack on target's live health and kills it at zero.
// Striking a dead unit is a no-op.
func (s *Simulation) strike(attacker UnitID, target *Unit, dmg int) bool {
	if !s.landHit(attacker, target, dmg, 0) {
		return false
	}
	if target.health == 0 {
		s.kill(target, attacker)
	}
	return true
}

// landHit applies dmg and emits AttackResolved without resolving death.
func (s *Simulation) landHit(attacker UnitID, target *Unit, dmg int, projectile ProjectileID) bool {
	lost, ok := s.wound(target, dmg)
	if !ok {
		return false
	}
	s.emit(EventAttackResolved, AttackResolved{
		AttackerID:      attacker,
		TargetID:        target.id,
		Damage:          dmg,
		HealthLost:      lost,
		ResultingHealth: target.health,
		ProjectileID:    projectile,
	})
	return true
}

// wound subtracts dmg from target's health, clamped at zero, and returns the
// health actually removed. It reports false and changes nothing when target is
// already dead.
func (s *Simulation) wound(target *Unit, dmg int) (int, bool) {
	if !target.Alive() {
		return 0, false
	}
	before := target.health
	target.health -= dmg
	if target.health < 0 {
		target.health = 0
	}
	return before - target.health, true
}

// kill transitions u to Dead, drops every projectile aimed at it and invokes
// the outcome detector.
func (s *Simulation) kill(u *Unit, killer UnitID) {
	if !u.Alive() {
		return
	}
	u.status = StatusDead
	u.cooldown = 0
	delete(s.targets, u.id)
	for id, t := range s.targets {
		if t == u.id {
			delete(s.targets, id)
		}
	}
	s.log.Debug("unit died", "unit", u.label, "killer", killer)
	s.emit(EventUnitDied, UnitDied{UnitID: u.id, Faction: u.faction, KillerID: killer})

	for _, p := range s.projectiles.dropTarget(u.id) {
		s.emit(EventProjectileResolved, ProjectileResolved{ID: p.id, TargetID: u.id})
	}
	s.outcome.observe(s.player, s.enemy)
}
