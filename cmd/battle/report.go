package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/telemetry"
)

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) %s ---\n", rs.runIndex, rs.seed, rs.label)
	fmt.Printf("outcome=%s reason=%s ticks=%d time=%.2fs\n", rs.outcome, rs.reason, rs.ticks, rs.duration)
	fmt.Printf("phase_markers: first_attack=%d first_death=%d first_ability=%d\n",
		rs.firstAttackTick, rs.firstDeathTick, rs.firstAbilityTick)
	fmt.Printf("event_totals: attacks=%d deaths=%d abilities=%d projectiles=%d fizzled=%d buffs_expired=%d\n",
		rs.attacks, rs.deaths, rs.abilities, rs.projectiles, rs.fizzled, rs.buffsExpired)
	fmt.Printf("survivors: player=%d/%d enemy=%d/%d\n",
		rs.playerSurvivors, rs.playerTotal, rs.enemySurvivors, rs.enemyTotal)
	if len(rs.casts) > 0 {
		parts := make([]string, 0, len(rs.casts))
		for _, c := range rs.casts {
			parts = append(parts, fmt.Sprintf("%s:%s=%s", c.Label, c.Ability, c.Result))
		}
		fmt.Printf("autocast: %s\n", strings.Join(parts, " "))
	}
	fmt.Println()
}

type aggregate struct {
	runs     int
	outcomes map[battle.Outcome]int
	reasons  map[string]int

	avgTicks     float64
	avgAttacks   float64
	avgDeaths    float64
	avgAbilities float64

	firstAttack string
	firstDeath  string

	playerSurvivalRate float64 // percent of player units alive at the end
	enemySurvivalRate  float64
}

func summarize(all []runStats) aggregate {
	ag := aggregate{
		runs:     len(all),
		outcomes: map[battle.Outcome]int{},
		reasons:  map[string]int{},
	}
	var ticks, attacks, deaths, abilities int
	var playerAlive, playerTotal, enemyAlive, enemyTotal int
	attackTicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	for _, rs := range all {
		ag.outcomes[rs.outcome]++
		ag.reasons[rs.reason]++
		ticks += rs.ticks
		attacks += rs.attacks
		deaths += rs.deaths
		abilities += rs.abilities
		playerAlive += rs.playerSurvivors
		playerTotal += rs.playerTotal
		enemyAlive += rs.enemySurvivors
		enemyTotal += rs.enemyTotal
		if rs.firstAttackTick >= 0 {
			attackTicks = append(attackTicks, rs.firstAttackTick)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
	}
	ag.avgTicks = avg(ticks, len(all))
	ag.avgAttacks = avg(attacks, len(all))
	ag.avgDeaths = avg(deaths, len(all))
	ag.avgAbilities = avg(abilities, len(all))
	ag.firstAttack = avgTickString(attackTicks)
	ag.firstDeath = avgTickString(deathTicks)
	ag.playerSurvivalRate = avg(playerAlive, playerTotal) * 100
	ag.enemySurvivalRate = avg(enemyAlive, enemyTotal) * 100
	return ag
}

func printAggregate(all []runStats) {
	ag := summarize(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d win=%d lose=%d unfinished=%d win_rate=%.0f%%\n",
		ag.runs, ag.outcomes[battle.OutcomeWin], ag.outcomes[battle.OutcomeLose], ag.outcomes[battle.OutcomeNone],
		avg(ag.outcomes[battle.OutcomeWin], ag.runs)*100)
	fmt.Printf("avg_per_run: ticks=%.1f attacks=%.1f deaths=%.1f abilities=%.1f\n",
		ag.avgTicks, ag.avgAttacks, ag.avgDeaths, ag.avgAbilities)
	fmt.Printf("phase_marker_avg_ticks: first_attack=%s first_death=%s\n", ag.firstAttack, ag.firstDeath)
	fmt.Printf("survival: player=%.0f%% enemy=%.0f%%\n", ag.playerSurvivalRate, ag.enemySurvivalRate)
	fmt.Printf("reasons: %s\n", joinCounts(ag.reasons))
}

func printTotals(t telemetry.Totals) {
	fmt.Println("\n=== Telemetry ===")
	fmt.Printf("attacks=%d damage=%d\n", t.Attacks, t.Damage)
	fmt.Printf("deaths: %s\n", joinCounts(t.Deaths))
	fmt.Printf("abilities: %s\n", joinCounts(t.Abilities))
	fmt.Printf("projectiles: %s\n", joinCounts(t.Projectiles))
	fmt.Printf("outcomes: %s\n", joinCounts(t.Outcomes))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts[N int | int64](m map[string]N) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}
