package battle

import "fmt"

const (
	MinSlot      = 1
	MaxSlot      = 6
	FrontRowSize = 3 // slots 1-3 are the front row, 4-6 the back row
)

// FrontRow reports whether slot is in the front row.
func FrontRow(slot int) bool { return slot >= MinSlot && slot <= FrontRowSize }

// Placement is one entry of a SquadDefinition.
type Placement struct {
	UnitType string `yaml:"unit" json:"unit"`
	Slot     int    `yaml:"placement" json:"placement"`
}

// SquadDefinition lists the units a side brings to battle.
type SquadDefinition []Placement

// Validate checks slot range and uniqueness.
func (d SquadDefinition) Validate(side Faction) error {
	if len(d) == 0 {
		return &ConfigurationError{Subject: side.String() + " squad", Reason: "no units"}
	}
	seen := make(map[int]string, len(d))
	for _, p := range d {
		if p.Slot < MinSlot || p.Slot > MaxSlot {
			return &ConfigurationError{
				Subject: fmt.Sprintf("%s squad %q", side, p.UnitType),
				Reason:  fmt.Sprintf("placement slot %d outside %d-%d", p.Slot, MinSlot, MaxSlot),
			}
		}
		if prev, dup := seen[p.Slot]; dup {
			return &ConfigurationError{
				Subject: fmt.Sprintf("%s squad slot %d", side, p.Slot),
				Reason:  fmt.Sprintf("occupied by both %q and %q", prev, p.UnitType),
			}
		}
		seen[p.Slot] = p.UnitType
	}
	return nil
}

// Squad maps placement slots to at most one unit each.
type Squad struct {
	Faction Faction
	slots   [MaxSlot + 1]*Unit
}

func newSquad(f Faction) *Squad {
	return &Squad{Faction: f}
}

func (sq *Squad) place(u *Unit) {
	sq.slots[u.slot] = u
}

// Unit returns the unit in slot, or nil.
func (sq *Squad) Unit(slot int) *Unit {
	if slot < MinSlot || slot > MaxSlot {
		return nil
	}
	return sq.slots[slot]
}

// Units returns the squad's units in ascending slot order, dead ones included.
func (sq *Squad) Units() []*Unit {
	out := make([]*Unit, 0, MaxSlot)
	for _, u := range sq.slots[MinSlot:] {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}

// AliveCount returns the number of living units.
func (sq *Squad) AliveCount() int {
	n := 0
	for _, u := range sq.slots[MinSlot:] {
		if u != nil && u.Alive() {
			n++
		}
	}
	return n
}

// Wiped reports whether the squad has no living units.
func (sq *Squad) Wiped() bool { return sq.AliveCount() == 0 }
