package battle

import (
	"math"
	"testing"
)

func burstSim(t *testing.T) *TestSim {
	t.Helper()
	caster := meleeStats(100, 1, 1, 1)
	caster.Ability = "Shockwave"
	return NewTestSim(
		WithAbility(AbilityDef{Name: "Shockwave", Kind: AbilityAreaBurst, Radius: 5, Damage: 25, Knockback: 1, ButtonAsset: "btn_shock", EffectAsset: "fx_shock"}),
		WithUnitType("caster", caster),
		WithUnitType("dummy", meleeStats(100, 1, 1, 1)),
		WithPlayerUnit(1, "caster"),
		WithPlayerUnit(2, "dummy"),
		WithEnemyUnit(1, "dummy"),
		WithEnemyUnit(2, "dummy"),
		WithEnemyUnit(3, "dummy"),
		WithPosition(FactionPlayer, 1, 0, 0),
		WithPosition(FactionEnemy, 1, 3, 0),
		WithPosition(FactionEnemy, 2, 0, 3),
		WithPosition(FactionEnemy, 3, 8, 0),
	)
}

// --- AreaBurst ---

func TestAreaBurst_HitsOnlyWithinRadius(t *testing.T) {
	ts := burstSim(t)
	if res := ts.Sim.ActivateAbility(ts.Player(1).ID()); res != Activated {
		t.Fatalf("activation = %s, want activated", res)
	}
	dumpLog(t, ts)

	if h := ts.Enemy(1).Health(); h != 75 {
		t.Errorf("enemy at 3 health = %d, want 75", h)
	}
	if h := ts.Enemy(2).Health(); h != 75 {
		t.Errorf("enemy at 3 health = %d, want 75", h)
	}
	if h := ts.Enemy(3).Health(); h != 100 {
		t.Errorf("enemy at 8 health = %d, want 100", h)
	}
	if p := ts.Enemy(1).Position(); p != (Vec2{X: 4, Y: 0}) {
		t.Errorf("enemy 1 pushed to %+v, want (4,0)", p)
	}
	if p := ts.Enemy(2).Position(); math.Abs(p.X) > 1e-9 || math.Abs(p.Y-4) > 1e-9 {
		t.Errorf("enemy 2 pushed to %+v, want (0,4)", p)
	}
	if n := ts.SimLog.CountCategory("ability", "hit"); n != 2 {
		t.Errorf("ability hits logged = %d, want 2", n)
	}

	act := eventsOf[AbilityActivated](ts.Sim, EventAbilityActivated)
	if len(act) != 1 || act[0].ButtonAsset != "btn_shock" || act[0].EffectAsset != "fx_shock" {
		t.Fatalf("AbilityActivated = %+v, want assets passed through", act)
	}
	if ts.Sim.Tick() != 0 || ts.Sim.Now() != 0 || ts.Sim.PendingTasks() != 0 {
		t.Fatalf("activation advanced the clock or queued work: tick=%d now=%v pending=%d",
			ts.Sim.Tick(), ts.Sim.Now(), ts.Sim.PendingTasks())
	}
}

func TestAreaBurst_OncePerBattle(t *testing.T) {
	ts := burstSim(t)
	id := ts.Player(1).ID()
	if res := ts.Sim.ActivateAbility(id); !res.OK() {
		t.Fatalf("first activation = %s", res)
	}
	if res := ts.Sim.ActivateAbility(id); res != RejectedAlreadyUsed {
		t.Fatalf("second activation = %s, want already_used", res)
	}
	if h := ts.Enemy(1).Health(); h != 75 {
		t.Fatalf("rejected activation changed state: health %d", h)
	}
}

func TestKnockback_ZeroDistanceUsesRetreat(t *testing.T) {
	ts := burstSim(t)
	e := ts.Enemy(1)
	e.pos = Vec2{}
	ts.Sim.ActivateAbility(ts.Player(1).ID())
	if p := e.Position(); p != (Vec2{X: 1, Y: 0}) {
		t.Fatalf("coincident enemy pushed to %+v, want (1,0)", p)
	}
}

// --- Rejections ---

func TestActivateAbility_Rejections(t *testing.T) {
	ts := burstSim(t)

	if res := ts.Sim.ActivateAbility(99); res != RejectedUnknownUnit {
		t.Errorf("unknown unit = %s", res)
	}
	if res := ts.Sim.ActivateAbility(ts.Player(2).ID()); res != RejectedNoAbility {
		t.Errorf("unbound ability = %s", res)
	}
	ts.Sim.strike(ts.Enemy(1).ID(), ts.Player(1), 1000)
	if res := ts.Sim.ActivateAbility(ts.Player(1).ID()); res != RejectedDead {
		t.Errorf("dead caster = %s", res)
	}
	if ts.Player(1).ability.Used {
		t.Error("rejected activation marked the ability used")
	}
}

func TestActivateAbility_RejectedAfterBattleOver(t *testing.T) {
	caster := meleeStats(100, 1, 1, 1)
	caster.Ability = "Meteor"
	ts := NewTestSim(
		WithAbility(AbilityDef{Name: "Meteor", Kind: AbilityGlobalNuke, Damage: 30}),
		WithUnitType("caster", caster),
		WithUnitType("weak", meleeStats(20, 1, 1, 1)),
		WithPlayerUnit(1, "caster"),
		WithPlayerUnit(2, "caster"),
		WithEnemyUnit(1, "weak"),
		WithEnemyUnit(6, "weak"),
		WithPosition(FactionEnemy, 6, 500, 500),
	)

	if res := ts.Sim.ActivateAbility(ts.Player(1).ID()); res != Activated {
		t.Fatalf("nuke = %s", res)
	}
	if ts.Enemy(6).Alive() {
		t.Fatal("distant enemy survived the nuke")
	}
	if got := ts.Sim.Outcome(); got != OutcomeWin {
		t.Fatalf("outcome after nuke = %s, want win", got)
	}
	if res := ts.Sim.ActivateAbility(ts.Player(2).ID()); res != RejectedBattleOver {
		t.Fatalf("activation after end = %s, want battle_over", res)
	}
	if n := len(eventsOf[BattleEnded](ts.Sim, EventBattleEnded)); n != 1 {
		t.Fatalf("BattleEnded fired %d times, want 1", n)
	}
}

func TestRegistry_MissingAbilityLeavesUnitUnbound(t *testing.T) {
	st := meleeStats(10, 1, 1, 1)
	st.Ability = "Nonexistent"
	ts := NewTestSim(
		WithUnitType("odd", st),
		WithPlayerUnit(1, "odd"),
		WithEnemyUnit(1, "odd"),
	)
	if res := ts.Sim.ActivateAbility(ts.Player(1).ID()); res != RejectedNoAbility {
		t.Fatalf("activation = %s, want no_ability", res)
	}
}

// --- SelfBuff ---

func buffSim(t *testing.T, casterHealth int, enemyDamage float64) *TestSim {
	t.Helper()
	caster := meleeStats(casterHealth, 0, 1, 1)
	caster.Ability = "Frenzy"
	return NewTestSim(
		WithTickSeconds(1),
		WithAbility(AbilityDef{Name: "Frenzy", Kind: AbilitySelfBuff, AttackPeriodDelta: -0.9, Duration: 3}),
		WithUnitType("caster", caster),
		WithUnitType("anchor", meleeStats(1000, 0, 0, 1)),
		WithUnitType("foe", meleeStats(1000, enemyDamage, 1, 10)),
		WithPlayerUnit(1, "caster"),
		WithPlayerUnit(2, "anchor"),
		WithEnemyUnit(1, "foe"),
		WithPosition(FactionPlayer, 1, 0, 0),
		WithPosition(FactionPlayer, 2, 100, 100),
		WithPosition(FactionEnemy, 1, 0, 0),
	)
}

func TestSelfBuff_RevertsAfterDuration(t *testing.T) {
	ts := buffSim(t, 1000, 0)
	caster := ts.Player(1)
	if res := ts.Sim.ActivateAbility(caster.ID()); res != Activated {
		t.Fatalf("activation = %s", res)
	}
	if math.Abs(caster.attackPeriod-0.1) > 1e-9 {
		t.Fatalf("buffed period = %.3f, want 0.1", caster.attackPeriod)
	}

	ts.RunTicks(2)
	if math.Abs(caster.attackPeriod-0.1) > 1e-9 {
		t.Fatalf("period reverted early at t=%.0f: %.3f", ts.Sim.Now(), caster.attackPeriod)
	}
	ts.RunTicks(1)
	if caster.attackPeriod != 1 {
		t.Fatalf("period at t=3 = %.3f, want 1", caster.attackPeriod)
	}
	exp := eventsOf[BuffExpired](ts.Sim, EventBuffExpired)
	if len(exp) != 1 || exp[0].AttackPeriod != 1 {
		t.Fatalf("BuffExpired = %+v", exp)
	}
	if res := ts.Sim.ActivateAbility(caster.ID()); res != RejectedAlreadyUsed {
		t.Fatalf("reactivation after revert = %s, want already_used", res)
	}
}

func TestSelfBuff_ReversalDiscardedWhenCasterDead(t *testing.T) {
	ts := buffSim(t, 5, 10)
	caster := ts.Player(1)
	ts.Sim.ActivateAbility(caster.ID())

	ts.RunTicks(1)
	if caster.Alive() {
		t.Fatal("caster should die at t=1")
	}
	if ts.Sim.Ended() {
		t.Fatal("battle ended while the anchor is alive")
	}
	ts.RunTicks(2)
	dumpLog(t, ts)

	if n := len(eventsOf[BuffExpired](ts.Sim, EventBuffExpired)); n != 0 {
		t.Fatalf("BuffExpired fired %d times for a dead caster", n)
	}
	if ts.Sim.PendingTasks() != 0 {
		t.Fatalf("pending tasks = %d, want 0", ts.Sim.PendingTasks())
	}
	if math.Abs(caster.attackPeriod-0.1) > 1e-9 {
		t.Fatalf("dead caster period changed to %.3f", caster.attackPeriod)
	}
}

func TestSelfBuff_ClampsToMinimumPeriod(t *testing.T) {
	caster := meleeStats(10, 1, 1, 0.5)
	caster.Ability = "Haste"
	ts := NewTestSim(
		WithAbility(AbilityDef{Name: "Haste", Kind: AbilitySelfBuff, AttackPeriodDelta: -5, Duration: 1}),
		WithUnitType("caster", caster),
		WithPlayerUnit(1, "caster"),
		WithEnemyUnit(1, "caster"),
	)
	ts.Sim.ActivateAbility(ts.Player(1).ID())
	if got := ts.Player(1).attackPeriod; got != minAttackPeriod {
		t.Fatalf("period = %.3f, want %.3f", got, minAttackPeriod)
	}
}
