package progress

import (
	"fmt"
	"math/rand"

	"github.com/Garsondee/squadclash/internal/defs"
)

var (
	barracksUnits = []string{"Militia", "Hunter", "Scolar"}
	treasureBuffs = []string{BuffArmor, BuffDamage}
)

// Barracks rolls a recruit.
func Barracks(rng *rand.Rand) string { return barracksUnits[rng.Intn(len(barracksUnits))] }

// Treasure rolls a buff.
func Treasure(rng *rand.Rand) string { return treasureBuffs[rng.Intn(len(treasureBuffs))] }

// Reward is what the player received at a node.
type Reward struct {
	Kind   string // node type that produced it
	Name   string // unit or buff name, empty for the end node
	Merges []Merge
	Text   string
}

// ClaimReward grants the reward of the node reached by the last won battle.
// The node type is cleared so a reward is claimed once.
func (p *Progress) ClaimReward(rng *rand.Rand) (Reward, error) {
	kind := p.CurrentNodeType
	p.CurrentNodeType = ""
	switch kind {
	case defs.NodeBarracks:
		unit := Barracks(rng)
		merges, err := p.GrantUnit(unit)
		if err != nil {
			return Reward{Kind: kind, Name: unit, Text: "The squad is already at maximum capacity."}, err
		}
		return Reward{Kind: kind, Name: unit, Merges: merges, Text: fmt.Sprintf("You have received a new unit: %s", unit)}, nil
	case defs.NodeTreasure:
		buff := Treasure(rng)
		if err := p.GrantBuff(buff); err != nil {
			return Reward{}, err
		}
		return Reward{Kind: kind, Name: buff, Text: fmt.Sprintf("You have received a new buff: %s", buff)}, nil
	case defs.NodeEnd:
		p.Completed = true
		return Reward{Kind: kind, Text: "Congratulations! You have completed the map!"}, nil
	default:
		return Reward{Kind: kind}, nil
	}
}
