package progress

import (
	"fmt"

	"github.com/Garsondee/squadclash/internal/battle"
)

// mergeOrder lists unit upgrades: two of From become one To. Order matters
// when one grant triggers several merges.
var mergeOrder = []struct{ From, To string }{
	{"Militia", "Soldier"},
	{"Soldier", "Defender"},
	{"Scolar", "Wizard"},
	{"Wizard", "Sorcerer"},
	{"Hunter", "Bower"},
}

// Merge is one upgrade performed by GrantUnit.
type Merge struct {
	From, To string
	Slot     int
}

// GrantUnit adds a unit to the lowest free slot, then merges pairs until
// none remain. The upgraded unit takes the slot of the first of the pair.
func (p *Progress) GrantUnit(name string) ([]Merge, error) {
	slot := p.freeSlot()
	if slot == 0 {
		return nil, fmt.Errorf("%w: cannot add %s", ErrSquadFull, name)
	}
	p.Squad = append(p.Squad, battle.Placement{UnitType: name, Slot: slot})

	var merges []Merge
	for {
		m, ok := p.mergeOnce()
		if !ok {
			return merges, nil
		}
		merges = append(merges, m)
	}
}

func (p *Progress) mergeOnce() (Merge, bool) {
	for _, pair := range mergeOrder {
		first, second := -1, -1
		for i, u := range p.Squad {
			if u.UnitType != pair.From {
				continue
			}
			if first < 0 {
				first = i
			} else {
				second = i
				break
			}
		}
		if second < 0 {
			continue
		}
		slot := p.Squad[first].Slot
		p.Squad[first].UnitType = pair.To
		p.Squad = append(p.Squad[:second], p.Squad[second+1:]...)
		return Merge{From: pair.From, To: pair.To, Slot: slot}, true
	}
	return Merge{}, false
}

func (p *Progress) freeSlot() int {
	used := [battle.MaxSlot + 1]bool{}
	for _, u := range p.Squad {
		if u.Slot >= battle.MinSlot && u.Slot <= battle.MaxSlot {
			used[u.Slot] = true
		}
	}
	for s := battle.MinSlot; s <= battle.MaxSlot; s++ {
		if !used[s] {
			return s
		}
	}
	return 0
}
