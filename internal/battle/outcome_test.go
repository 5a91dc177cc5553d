package battle

import "testing"

func TestDetermineOutcome(t *testing.T) {
	cases := []struct {
		player, enemy int
		want          Outcome
		reason        string
	}{
		{3, 0, OutcomeWin, "enemy_eliminated"},
		{0, 2, OutcomeLose, "player_eliminated"},
		{0, 0, OutcomeLose, "mutual_annihilation"},
		{1, 1, OutcomeNone, "in_progress"},
	}
	for _, c := range cases {
		got := DetermineOutcome(c.player, c.enemy)
		if got.Outcome != c.want || got.Description != c.reason {
			t.Errorf("DetermineOutcome(%d, %d) = %s/%s, want %s/%s",
				c.player, c.enemy, got.Outcome, got.Description, c.want, c.reason)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	if OutcomeWin.String() != "win" || OutcomeLose.String() != "lose" || OutcomeNone.String() != "in_progress" {
		t.Fatal("unexpected outcome names")
	}
	if OutcomeNone.Terminal() || !OutcomeWin.Terminal() || !OutcomeLose.Terminal() {
		t.Fatal("unexpected Terminal results")
	}
}

func TestOutcomeDetector_SettlesOnce(t *testing.T) {
	player, enemy := newSquad(FactionPlayer), newSquad(FactionEnemy)
	kind := &UnitType{Name: "dummy", Stats: meleeStats(1, 1, 1, 1)}
	p := newUnit(1, FactionPlayer, 1, kind, Vec2{})
	e := newUnit(2, FactionEnemy, 1, kind, Vec2{})
	player.place(p)
	enemy.place(e)

	var d outcomeDetector
	d.observe(player, enemy)
	if _, ok := d.settle(player, enemy); ok {
		t.Fatal("settled with both squads alive")
	}
	e.status = StatusDead
	d.observe(player, enemy)
	r, ok := d.settle(player, enemy)
	if !ok || r.Outcome != OutcomeWin {
		t.Fatalf("settle = %+v, %v; want win", r, ok)
	}
	if _, ok := d.settle(player, enemy); ok {
		t.Fatal("settled twice")
	}
	if !d.ended() {
		t.Fatal("detector not ended")
	}
}
