package battle

import "math"

// ActivationResult reports how ActivateAbility handled a request.
type ActivationResult int

const (
	Activated ActivationResult = iota
	RejectedUnknownUnit
	RejectedDead
	RejectedNoAbility
	RejectedAlreadyUsed
	RejectedBattleOver
)

func (r ActivationResult) String() string {
	switch r {
	case Activated:
		return "activated"
	case RejectedUnknownUnit:
		return "unknown_unit"
	case RejectedDead:
		return "dead"
	case RejectedNoAbility:
		return "no_ability"
	case RejectedAlreadyUsed:
		return "already_used"
	case RejectedBattleOver:
		return "battle_over"
	default:
		return "unknown"
	}
}

// OK reports whether the ability fired.
func (r ActivationResult) OK() bool { return r == Activated }

// ActivateAbility triggers the bound ability of unit id. Rejections leave the
// simulation untouched. A successful activation marks the ability used for the
// rest of the battle, even if its effect later reverts.
func (s *Simulation) ActivateAbility(id UnitID) ActivationResult {
	res := s.activate(id)
	if res != Activated {
		s.log.Debug("ability rejected", "unit", id, "reason", res.String())
	}
	return res
}

func (s *Simulation) activate(id UnitID) ActivationResult {
	if s.outcome.ended() {
		return RejectedBattleOver
	}
	u := s.Unit(id)
	switch {
	case u == nil:
		return RejectedUnknownUnit
	case !u.Alive():
		return RejectedDead
	case u.ability == nil:
		return RejectedNoAbility
	case u.ability.Used:
		return RejectedAlreadyUsed
	}

	ab := u.ability.Type
	u.ability.Used = true
	s.log.Debug("ability activated", "unit", u.label, "ability", ab.Name, "kind", ab.Kind.String())
	s.emit(EventAbilityActivated, AbilityActivated{
		UnitID:      u.id,
		AbilityName: ab.Name,
		Kind:        ab.Kind,
		ButtonAsset: ab.ButtonAsset,
		EffectAsset: ab.EffectAsset,
	})

	switch ab.Kind {
	case AbilityAreaBurst:
		s.areaBurst(u, ab)
	case AbilitySelfBuff:
		s.selfBuff(u, ab)
	case AbilityGlobalNuke:
		s.globalNuke(u, ab)
	}
	s.settleOutcome()
	return Activated
}

// areaBurst damages every living enemy within the radius and pushes the
// survivors away from the caster.
func (s *Simulation) areaBurst(caster *Unit, ab *AbilityType) {
	for _, t := range enemiesWithin(caster.pos, ab.Radius, s.squad(caster.faction.Opponent())) {
		s.abilityHit(caster, t, ab, true)
	}
}

// globalNuke damages every living enemy regardless of distance.
func (s *Simulation) globalNuke(caster *Unit, ab *AbilityType) {
	for _, t := range s.squad(caster.faction.Opponent()).Units() {
		if t.Alive() {
			s.abilityHit(caster, t, ab, false)
		}
	}
}

// abilityHit applies flat ability damage, bypassing armor.
func (s *Simulation) abilityHit(caster, target *Unit, ab *AbilityType, push bool) {
	lost, ok := s.wound(target, ab.Damage)
	if !ok {
		return
	}
	var shift Vec2
	if push && target.health > 0 {
		shift = knockback(target, caster.pos, ab.Knockback)
	}
	s.emit(EventAbilityHit, AbilityHit{
		CasterID:        caster.id,
		TargetID:        target.id,
		AbilityName:     ab.Name,
		Damage:          ab.Damage,
		HealthLost:      lost,
		ResultingHealth: target.health,
		Displacement:    shift,
	})
	if target.health == 0 {
		s.kill(target, caster.id)
	}
}

// selfBuff shifts the caster's attack period and schedules the reversal.
func (s *Simulation) selfBuff(caster *Unit, ab *AbilityType) {
	original := caster.attackPeriod
	caster.attackPeriod = math.Max(minAttackPeriod, original+ab.AttackPeriodDelta)
	s.deferred.schedule(s.now+ab.Duration, caster.id, ab.Name+" expiry", func(u *Unit) {
		u.attackPeriod = original
		s.emit(EventBuffExpired, BuffExpired{UnitID: u.id, AbilityName: ab.Name, AttackPeriod: original})
	})
}
