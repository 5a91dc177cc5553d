package autocast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
)

var (
	burst = battle.AbilityDef{Name: "Shockwave", Kind: battle.AbilityAreaBurst, Radius: 5, Damage: 10}
	buff  = battle.AbilityDef{Name: "Frenzy", Kind: battle.AbilitySelfBuff, AttackPeriodDelta: -0.5, Duration: 2}

	caster = battle.UnitStats{Health: 100, MoveSpeed: 1, MinDamage: 1, MaxDamage: 1, AttackPeriod: 1, AttackRange: 1, Ability: "Shockwave"}
	brute  = battle.UnitStats{Health: 100, MoveSpeed: 1, MinDamage: 1, MaxDamage: 1, AttackPeriod: 1, AttackRange: 1, Ability: "Frenzy"}
	dummy  = battle.UnitStats{Health: 100, MoveSpeed: 1, MinDamage: 1, MaxDamage: 1, AttackPeriod: 1, AttackRange: 1}
)

func newSim(enemyX ...float64) *battle.TestSim {
	opts := []battle.SimOption{
		battle.WithAbility(burst),
		battle.WithAbility(buff),
		battle.WithUnitType("Caster", caster),
		battle.WithUnitType("Brute", brute),
		battle.WithUnitType("Dummy", dummy),
		battle.WithPlayerUnit(1, "Caster"),
		battle.WithPlayerUnit(2, "Brute"),
		battle.WithPosition(battle.FactionPlayer, 1, 0, 0),
		battle.WithPosition(battle.FactionPlayer, 2, 0, 20),
	}
	for i, x := range enemyX {
		opts = append(opts,
			battle.WithEnemyUnit(i+1, "Dummy"),
			battle.WithPosition(battle.FactionEnemy, i+1, x, 0))
	}
	return battle.NewTestSim(opts...)
}

func TestCompileRejectsBadRules(t *testing.T) {
	_, err := Compile([]config.AutocastRule{{Ability: "Shockwave", When: "EnemiesInRadius >="}}, nil)
	assert.Error(t, err)

	_, err = Compile([]config.AutocastRule{{Ability: "Shockwave", When: "EnemiesAlive"}}, nil)
	assert.Error(t, err, "non-bool condition")

	_, err = Compile([]config.AutocastRule{{Ability: "Shockwave", When: "Mana > 3"}}, nil)
	assert.Error(t, err, "unknown field")

	_, err = Compile([]config.AutocastRule{{When: "true"}}, nil)
	assert.Error(t, err, "missing ability")
}

func TestRuleFiresWhenConditionHolds(t *testing.T) {
	ts := newSim(2, 3, 30)
	p, err := Compile([]config.AutocastRule{{Ability: "Shockwave", When: "EnemiesInRadius >= 2"}}, nil)
	require.NoError(t, err)

	casts := p.Apply(ts.Sim, battle.FactionPlayer)
	require.Len(t, casts, 1)
	assert.Equal(t, "Shockwave", casts[0].Ability)
	assert.Equal(t, "P1", casts[0].Label)
	assert.True(t, casts[0].Result.OK())
	assert.False(t, ts.Player(1).AbilityReady())
	assert.Equal(t, 90, ts.Enemy(1).Health())
	assert.Equal(t, 100, ts.Enemy(3).Health())

	assert.Empty(t, p.Apply(ts.Sim, battle.FactionPlayer), "ability is spent")
}

func TestRuleHoldsFireWhenConditionFails(t *testing.T) {
	ts := newSim(2, 30)
	p, err := Compile([]config.AutocastRule{{Ability: "Shockwave", When: "EnemiesInRadius >= 2"}}, nil)
	require.NoError(t, err)

	assert.Empty(t, p.Apply(ts.Sim, battle.FactionPlayer))
	assert.True(t, ts.Player(1).AbilityReady())
}

func TestWildcardAndFirstMatch(t *testing.T) {
	ts := newSim(2)
	p, err := Compile([]config.AutocastRule{
		{Ability: "Frenzy", When: "NearestEnemyDistance < 1"},
		{Ability: Wildcard, When: `Kind == "self_buff" && HealthFraction >= 1`},
	}, nil)
	require.NoError(t, err)

	casts := p.Apply(ts.Sim, battle.FactionPlayer)
	require.Len(t, casts, 1)
	assert.Equal(t, "Frenzy", casts[0].Ability)
	assert.Equal(t, 0.5, ts.Player(2).AttackPeriod())
}

func TestApplyOnlyTouchesRequestedSide(t *testing.T) {
	ts := newSim(2, 3)
	p, err := Compile([]config.AutocastRule{{Ability: Wildcard, When: "true"}}, nil)
	require.NoError(t, err)

	assert.Empty(t, p.Apply(ts.Sim, battle.FactionEnemy), "enemy dummies have no abilities")
	assert.True(t, ts.Player(1).AbilityReady())
}

func TestApplyAfterBattleEnds(t *testing.T) {
	ts := newSim(2)
	p, err := Compile([]config.AutocastRule{{Ability: Wildcard, When: "true"}}, nil)
	require.NoError(t, err)

	ts.RunToEnd(20000)
	require.True(t, ts.Sim.Ended())
	assert.Nil(t, p.Apply(ts.Sim, battle.FactionPlayer))
}

func TestEnvReflectsBattle(t *testing.T) {
	ts := newSim(3, 4, 40)
	u := ts.Player(1)
	env := buildEnv(ts.Sim, u, u.Ability(), ts.Sim.Player(), ts.Sim.Enemy())

	assert.Equal(t, "Caster", env.Unit)
	assert.Equal(t, "area_burst", env.Kind)
	assert.Equal(t, 2, env.AlliesAlive)
	assert.Equal(t, 3, env.EnemiesAlive)
	assert.Equal(t, 2, env.EnemiesInRadius)
	assert.InDelta(t, 3.0, env.NearestEnemyDistance, 1e-9)
	assert.InDelta(t, 1.0, env.HealthFraction, 1e-9)
}
