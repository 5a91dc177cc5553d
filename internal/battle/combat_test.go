package battle

import "testing"

func TestMitigatedDamage(t *testing.T) {
	cases := []struct {
		raw, armor float64
		want       int
	}{
		{10, 0, 10},
		{10.9, 0, 10},
		{12.2, 2, 10},
		{5, 7, 1},
		{3.5, 3, 1},
		{0, 0, 1},
	}
	for _, c := range cases {
		if got := MitigatedDamage(c.raw, c.armor); got != c.want {
			t.Errorf("MitigatedDamage(%.2f, %.2f) = %d, want %d", c.raw, c.armor, got, c.want)
		}
	}
}

func TestAttack_DamageWithinRolledRange(t *testing.T) {
	ts := NewTestSim(
		WithTickSeconds(0.1),
		WithUnitType("brute", UnitStats{Health: 10, MinDamage: 5, MaxDamage: 15, AttackPeriod: 0.1, AttackRange: 1}),
		WithUnitType("wall", UnitStats{Health: 100000, Armor: 3, MinDamage: 0, MaxDamage: 0, AttackPeriod: 1000, AttackRange: 0}),
		WithPlayerUnit(1, "brute"),
		WithEnemyUnit(1, "wall"),
		WithPosition(FactionPlayer, 1, 0, 0),
		WithPosition(FactionEnemy, 1, 1, 0),
	)
	ts.RunTicks(500)

	hits := eventsOf[AttackResolved](ts.Sim, EventAttackResolved)
	if len(hits) == 0 {
		t.Fatal("no attacks resolved")
	}
	seen := map[int]bool{}
	for _, h := range hits {
		if h.Damage < 2 || h.Damage > 12 {
			t.Fatalf("damage %d outside [2,12]", h.Damage)
		}
		seen[h.Damage] = true
	}
	if len(seen) < 3 {
		t.Fatalf("damage rolls not varied: %v", seen)
	}
}

func TestKill_IsIdempotent(t *testing.T) {
	ts := NewTestSim(
		WithUnitType("dummy", meleeStats(10, 1, 1, 1)),
		WithPlayerUnit(1, "dummy"),
		WithEnemyUnit(1, "dummy"),
		WithEnemyUnit(2, "dummy"),
	)
	e1 := ts.Enemy(1)
	if !ts.Sim.strike(ts.Player(1).ID(), e1, 50) {
		t.Fatal("first strike should land")
	}
	if ts.Sim.strike(ts.Player(1).ID(), e1, 50) {
		t.Fatal("strike on a dead unit should be a no-op")
	}
	if e1.Health() != 0 {
		t.Fatalf("health = %d, want 0", e1.Health())
	}
	if n := len(eventsOf[UnitDied](ts.Sim, EventUnitDied)); n != 1 {
		t.Fatalf("UnitDied fired %d times, want 1", n)
	}
	hits := eventsOf[AttackResolved](ts.Sim, EventAttackResolved)
	if len(hits) != 1 {
		t.Fatalf("AttackResolved fired %d times, want 1", len(hits))
	}
	if hits[0].Damage != 50 || hits[0].HealthLost != 10 {
		t.Fatalf("killing blow damage=%d lost=%d, want 50/10", hits[0].Damage, hits[0].HealthLost)
	}
}

func TestInitialize_AppliesModifiersToPlayerOnly(t *testing.T) {
	ts := NewTestSim(
		WithUnitType("knight", UnitStats{Health: 50, Armor: 1, MinDamage: 4, MaxDamage: 6, AttackPeriod: 1, AttackRange: 1}),
		WithHarnessModifier(Modifier{UnitType: "knight", DamageBonus: 5, ArmorBonus: 3}),
		WithPlayerUnit(1, "knight"),
		WithEnemyUnit(1, "knight"),
	)
	p, e := ts.Player(1), ts.Enemy(1)
	if p.minDamage != 9 || p.maxDamage != 11 || p.armor != 4 {
		t.Fatalf("player knight = %.0f-%.0f armor %.0f, want 9-11 armor 4", p.minDamage, p.maxDamage, p.armor)
	}
	if e.minDamage != 4 || e.armor != 1 {
		t.Fatalf("enemy knight should be unmodified, got %.0f armor %.0f", e.minDamage, e.armor)
	}
}

func TestInitialize_StableIDsAndLabels(t *testing.T) {
	ts := NewTestSim(
		WithUnitType("dummy", meleeStats(10, 1, 1, 1)),
		WithPlayerUnit(4, "dummy"),
		WithPlayerUnit(2, "dummy"),
		WithEnemyUnit(6, "dummy"),
		WithEnemyUnit(1, "dummy"),
	)
	want := []string{"P2", "P4", "E1", "E6"}
	for i, u := range ts.Sim.Units() {
		if u.ID() != UnitID(i+1) || u.Label() != want[i] {
			t.Errorf("unit %d = id %d label %s, want id %d label %s", i, u.ID(), u.Label(), i+1, want[i])
		}
	}
}
