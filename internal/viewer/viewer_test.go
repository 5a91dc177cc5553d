package viewer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Garsondee/squadclash/internal/autocast"
	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
)

func testFactory(t *testing.T) Factory {
	t.Helper()
	stats := battle.UnitStatsTable{
		"Hero":  {Health: 100, MoveSpeed: 2, MinDamage: 5, MaxDamage: 5, AttackPeriod: 1, AttackRange: 1, Ability: "Meteor"},
		"Grunt": {Health: 40, MoveSpeed: 2, MinDamage: 2, MaxDamage: 2, AttackPeriod: 1, AttackRange: 1, Ability: "Frenzy"},
	}
	abilities := battle.AbilityTable{
		"Meteor": {Name: "Meteor", Kind: battle.AbilityGlobalNuke, Damage: 10},
		"Frenzy": {Name: "Frenzy", Kind: battle.AbilitySelfBuff, AttackPeriodDelta: -0.5, Duration: 3},
	}
	return func(seed int64) (*battle.Simulation, error) {
		return battle.Initialize(
			battle.SquadDefinition{{UnitType: "Hero", Slot: 2}},
			battle.SquadDefinition{{UnitType: "Grunt", Slot: 1}, {UnitType: "Grunt", Slot: 3}},
			stats, abilities, battle.WithSeed(seed))
	}
}

func newTestGame(t *testing.T, planner *autocast.Planner) *Game {
	t.Helper()
	g, err := New(Config{Width: 800, Height: 600, TickSeconds: 0.05, Seed: 9, Planner: planner}, testFactory(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// --- Ticking ---

func TestAdvanceFollowsSpeed(t *testing.T) {
	g := newTestGame(t, nil)
	g.advance()
	if g.Sim().Tick() != 1 {
		t.Fatalf("tick = %d at speed 1, want 1", g.Sim().Tick())
	}

	g.changeSpeed(-1) // 0.5
	g.advance()
	g.advance()
	if g.Sim().Tick() != 2 {
		t.Fatalf("tick = %d after two half-speed frames, want 2", g.Sim().Tick())
	}

	g.togglePause()
	g.advance()
	if g.Sim().Tick() != 2 {
		t.Fatalf("paused game ticked to %d", g.Sim().Tick())
	}
	g.togglePause()
	if g.Speed() != 1 {
		t.Fatalf("unpause speed = %v, want 1", g.Speed())
	}
}

func TestSpeedIsClamped(t *testing.T) {
	g := newTestGame(t, nil)
	for i := 0; i < 20; i++ {
		g.changeSpeed(1)
	}
	if g.Speed() != speeds[len(speeds)-1] {
		t.Fatalf("speed = %v, want max", g.Speed())
	}
	for i := 0; i < 20; i++ {
		g.changeSpeed(-1)
	}
	if g.Speed() != 0 {
		t.Fatalf("speed = %v, want 0", g.Speed())
	}
}

func TestAdvanceStopsAtBattleEnd(t *testing.T) {
	g := newTestGame(t, nil)
	for i := 0; i < 20000 && !g.Sim().Ended(); i++ {
		g.advance()
	}
	if !g.Sim().Ended() {
		t.Fatal("battle never ended")
	}
	tick := g.Sim().Tick()
	g.advance()
	if g.Sim().Tick() != tick {
		t.Fatalf("ended battle kept ticking: %d -> %d", tick, g.Sim().Tick())
	}
}

// --- Input actions ---

func TestActivateSlot(t *testing.T) {
	g := newTestGame(t, nil)
	if res := g.activateSlot(1); res != battle.RejectedUnknownUnit {
		t.Fatalf("empty slot result = %v", res)
	}
	if res := g.activateSlot(2); !res.OK() {
		t.Fatalf("hero ability result = %v", res)
	}
	if !strings.Contains(g.status, "Meteor") {
		t.Fatalf("status = %q", g.status)
	}
	if got := g.Sim().Enemy().Unit(1).Health(); got != 30 {
		t.Fatalf("grunt health = %d after nuke, want 30", got)
	}
	if res := g.activateSlot(2); res != battle.RejectedAlreadyUsed {
		t.Fatalf("second activation = %v", res)
	}
}

func TestEnemyAutocast(t *testing.T) {
	planner, err := autocast.Compile([]config.AutocastRule{{Ability: "Frenzy", When: "true"}}, nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	g := newTestGame(t, planner)
	g.advance()
	for _, slot := range []int{1, 3} {
		if g.Sim().Enemy().Unit(slot).AbilityReady() {
			t.Fatalf("enemy slot %d did not autocast", slot)
		}
	}
	if !g.Sim().Player().Unit(2).AbilityReady() {
		t.Fatal("autocast touched the player side")
	}
}

func TestCopyLog(t *testing.T) {
	g := newTestGame(t, nil)
	g.activateSlot(2)
	var got string
	g.copyLog(func(s string) error { got = s; return nil })
	if !strings.Contains(got, "activated") || !strings.Contains(got, "Summary") {
		t.Fatalf("copied text missing log lines:\n%s", got)
	}

	g.copyLog(func(string) error { return errors.New("no clipboard") })
	if g.status != "clipboard unavailable" {
		t.Fatalf("status = %q", g.status)
	}
}

func TestRestartUsesNewSeed(t *testing.T) {
	g := newTestGame(t, nil)
	g.advance()
	if err := g.restart(g.seed + 1); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if g.seed != 10 || g.Sim().Tick() != 0 {
		t.Fatalf("after restart seed=%d tick=%d", g.seed, g.Sim().Tick())
	}
}

// --- Presentation ---

func TestCameraFitsFormations(t *testing.T) {
	g := newTestGame(t, nil)
	snap := g.Sim().CurrentState()
	for _, sq := range []battle.SquadSnapshot{snap.Player, snap.Enemy} {
		for _, u := range sq.Units {
			x, y := g.cam.toScreen(u.Position)
			if x < 0 || y < 0 || x > float32(g.cam.w) || y > float32(g.cam.h) {
				t.Fatalf("%s drawn off screen at (%.0f,%.0f)", u.Label, x, y)
			}
		}
	}
	x0, _ := g.cam.toScreen(snap.Player.Units[0].Position)
	x1, _ := g.cam.toScreen(snap.Enemy.Units[0].Position)
	if x0 >= x1 {
		t.Fatalf("player should be drawn left of enemy: %.0f >= %.0f", x0, x1)
	}
}

func TestHUDLines(t *testing.T) {
	g := newTestGame(t, nil)
	lines := hudLines(g.Sim().CurrentState(), 0, 9, "")
	if !strings.Contains(lines[0], "paused") || !strings.Contains(lines[0], "seed 9") {
		t.Fatalf("status line = %q", lines[0])
	}
	if lines[1] != "2:Meteor" {
		t.Fatalf("ability bar = %q", lines[1])
	}
	g.activateSlot(2)
	lines = hudLines(g.Sim().CurrentState(), 1, 9, "hello")
	if lines[1] != "2:Meteor(used)" || lines[len(lines)-1] != "hello" {
		t.Fatalf("lines = %q", lines)
	}
}
