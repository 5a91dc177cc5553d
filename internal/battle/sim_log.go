package battle

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded battle event in a human- and test-friendly form.
type SimLogEntry struct {
	Tick     int
	Time     float64
	Unit     string  // label e.g. "P1", "E4", or "--" for battle-wide events
	Side     string  // "player", "enemy", or "--"
	Category string  // combat, ability, projectile, battle
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] P1   combat    attack          -> E2 dmg=9 hp=6
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// SimLog collects structured entries from a battle's event stream. It is
// unbounded and machine-readable; reports and tests query it after a run.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
	labels  map[UnitID]*Unit
}

// NewSimLog creates a SimLog. If verbose is true, per-step position and
// cooldown entries are also recorded via AddVerbose.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose, labels: make(map[UnitID]*Unit)}
}

// Attach subscribes the log to every event of sim.
func (sl *SimLog) Attach(sim *Simulation) {
	for _, u := range sim.Units() {
		sl.labels[u.id] = u
	}
	sim.SubscribeAll(sl)
}

// Verbose reports whether per-step entries are recorded.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, t float64, unit, side, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Time:     t,
		Unit:     unit,
		Side:     side,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, t float64, unit, side, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, t, unit, side, category, key, value, numVal)
}

// OnEvent converts a battle event into a log entry.
func (sl *SimLog) OnEvent(e Event) {
	switch d := e.Data.(type) {
	case AttackResolved:
		unit, side := sl.who(d.AttackerID)
		via := "melee"
		if d.ProjectileID != 0 {
			via = fmt.Sprintf("projectile #%d", d.ProjectileID)
		}
		sl.Add(e.Tick, e.Time, unit, side, "combat", "attack",
			fmt.Sprintf("-> %s dmg=%d hp=%d (%s)", sl.label(d.TargetID), d.Damage, d.ResultingHealth, via),
			float64(d.Damage))
	case UnitDied:
		unit, side := sl.who(d.UnitID)
		sl.Add(e.Tick, e.Time, unit, side, "combat", "death",
			fmt.Sprintf("killed by %s", sl.label(d.KillerID)), 0)
	case AbilityActivated:
		unit, side := sl.who(d.UnitID)
		sl.Add(e.Tick, e.Time, unit, side, "ability", "activated",
			fmt.Sprintf("%s (%s)", d.AbilityName, d.Kind), 0)
	case AbilityHit:
		unit, side := sl.who(d.CasterID)
		sl.Add(e.Tick, e.Time, unit, side, "ability", "hit",
			fmt.Sprintf("%s -> %s dmg=%d hp=%d push=%.2f", d.AbilityName, sl.label(d.TargetID),
				d.Damage, d.ResultingHealth, d.Displacement.Len()),
			float64(d.Damage))
	case BuffExpired:
		unit, side := sl.who(d.UnitID)
		sl.Add(e.Tick, e.Time, unit, side, "ability", "expired",
			fmt.Sprintf("%s period=%.2fs", d.AbilityName, d.AttackPeriod), d.AttackPeriod)
	case ProjectileSpawned:
		unit, side := sl.who(d.FromID)
		sl.Add(e.Tick, e.Time, unit, side, "projectile", "spawned",
			fmt.Sprintf("#%d -> %s dmg=%d", d.ID, sl.label(d.ToID), d.Damage), float64(d.Damage))
	case ProjectileResolved:
		key := "hit"
		switch {
		case !d.Hit:
			key = "fizzled"
		case d.Expired:
			key = "expired"
		}
		sl.Add(e.Tick, e.Time, "--", "--", "projectile", key,
			fmt.Sprintf("#%d -> %s", d.ID, sl.label(d.TargetID)), 0)
	case BattleEnded:
		sl.Add(e.Tick, e.Time, "--", "--", "battle", "ended",
			fmt.Sprintf("%s (%s) survivors player=%d enemy=%d",
				d.Outcome, d.Reason, d.PlayerSurvivors, d.EnemySurvivors), 0)
	}
}

func (sl *SimLog) who(id UnitID) (label, side string) {
	u, ok := sl.labels[id]
	if !ok {
		return "--", "--"
	}
	return u.label, u.faction.String()
}

func (sl *SimLog) label(id UnitID) string {
	l, _ := sl.who(id)
	return l
}

// RecordPositions adds a verbose position/cooldown entry per living unit.
func (sl *SimLog) RecordPositions(sim *Simulation) {
	if !sl.verbose {
		return
	}
	for _, u := range sim.Units() {
		if !u.Alive() {
			continue
		}
		sl.AddVerbose(sim.Tick(), sim.Now(), u.label, u.faction.String(), "move", "position",
			fmt.Sprintf("(%.2f,%.2f)", u.pos.X, u.pos.Y), 0)
		sl.AddVerbose(sim.Tick(), sim.Now(), u.label, u.faction.String(), "stats", "cooldown",
			fmt.Sprintf("%.3f", u.cooldown), u.cooldown)
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for a specific unit label.
func (sl *SimLog) FilterUnit(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the battle state.
func (sl *SimLog) Summary(sim *Simulation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%.2fs) outcome=%s ---\n", sim.Tick(), sim.Now(), sim.Outcome())
	for _, sq := range [...]*Squad{sim.Player(), sim.Enemy()} {
		fmt.Fprintf(&sb, "%s: %d alive\n", sq.Faction, sq.AliveCount())
		for _, u := range sq.Units() {
			fmt.Fprintf(&sb, "  %-3s %-10s hp=%3d/%-3d %s\n", u.label, u.kind.Name, u.health, u.maxHealth, u.status)
		}
	}
	fmt.Fprintf(&sb, "attacks=%d deaths=%d abilities=%d projectiles=%d\n",
		sl.CountCategory("combat", "attack"),
		sl.CountCategory("combat", "death"),
		sl.CountCategory("ability", "activated"),
		sl.CountCategory("projectile", "spawned"))
	return sb.String()
}
