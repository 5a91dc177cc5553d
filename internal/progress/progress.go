// Package progress holds a player's campaign state between battles: the hero,
// the squad, collected buffs and position on the campaign map. It is an
// explicit value passed to the battle engine and to storage.
package progress

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/defs"
)

// Defaults for a new run.
const (
	DefaultCharacter = "Knight"
	DefaultMap       = "FieldMap"
	StartNode        = 1
)

var (
	ErrSquadFull        = errors.New("squad is full")
	ErrUnknownBuff      = errors.New("unknown buff")
	ErrNotAdjacent      = errors.New("node is not adjacent")
	ErrBattleInProgress = errors.New("battle has not ended")
	ErrNoPendingBattle  = errors.New("no battle pending")
)

// Buff names granted by treasure nodes.
const (
	BuffDamage = "Damage"
	BuffArmor  = "Armor"
)

// Progress is one campaign run.
type Progress struct {
	SelectedCharacter string                 `json:"selectedCharacter"`
	Squad             battle.SquadDefinition `json:"squad"`
	Buffs             []string               `json:"buffs"`
	CurrentMap        string                 `json:"currentMap"`
	CurrentNode       int                    `json:"currentNode"`
	TargetNode        int                    `json:"targetNode,omitempty"` // node behind the pending battle
	CurrentNodeType   string                 `json:"currentNodeType,omitempty"`
	VisitedNodes      []int                  `json:"visitedNodes"`
	VisitedEdges      []string               `json:"visitedEdges"`
	Completed         bool                   `json:"completed,omitempty"`
}

// New starts a run with character alone in slot 1 on the first map.
func New(character string) *Progress {
	if character == "" {
		character = DefaultCharacter
	}
	return &Progress{
		SelectedCharacter: character,
		Squad:             battle.SquadDefinition{{UnitType: character, Slot: 1}},
		CurrentMap:        DefaultMap,
		CurrentNode:       StartNode,
		VisitedNodes:      []int{StartNode},
	}
}

// SquadDefinition returns a copy of the squad ready for battle.Initialize.
func (p *Progress) SquadDefinition() battle.SquadDefinition {
	return slices.Clone(p.Squad)
}

// GrantBuff records a treasure buff. Buffs stack.
func (p *Progress) GrantBuff(name string) error {
	switch name {
	case BuffDamage, BuffArmor:
		p.Buffs = append(p.Buffs, name)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBuff, name)
	}
}

// Modifiers turns the collected buffs into battle bonuses for the hero.
func (p *Progress) Modifiers() []battle.Modifier {
	m := battle.Modifier{UnitType: p.SelectedCharacter}
	for _, b := range p.Buffs {
		switch b {
		case BuffDamage:
			m.DamageBonus += 5
		case BuffArmor:
			m.ArmorBonus += 3
		}
	}
	if m.DamageBonus == 0 && m.ArmorBonus == 0 {
		return nil
	}
	return []battle.Modifier{m}
}

func edgeKey(from, to int) string { return fmt.Sprintf("%d-%d", from, to) }

func (p *Progress) edgeVisited(a, b int) bool {
	return slices.Contains(p.VisitedEdges, edgeKey(a, b)) || slices.Contains(p.VisitedEdges, edgeKey(b, a))
}

func (p *Progress) visit(node int) {
	if !slices.Contains(p.VisitedNodes, node) {
		p.VisitedNodes = append(p.VisitedNodes, node)
	}
}

// Encounter is the result of choosing a node on the map.
type Encounter struct {
	Battle   bool                   // a fight must be won before moving
	Enemy    battle.SquadDefinition // set when Battle is true
	Node     defs.Node
	Previous bool // the edge was crossed before, so the move was immediate
}

// Travel moves toward node to on m. Crossing an edge for the first time with
// a squad on it sets up a battle; otherwise the move happens immediately.
func (p *Progress) Travel(m *defs.Map, to int) (Encounter, error) {
	edge, ok := m.Edge(p.CurrentNode, to)
	if !ok {
		return Encounter{}, fmt.Errorf("%w: %d -> %d on %s", ErrNotAdjacent, p.CurrentNode, to, m.Name)
	}
	node, _ := m.Node(to)

	if p.edgeVisited(p.CurrentNode, to) || len(edge.Squad) == 0 {
		prev := p.edgeVisited(p.CurrentNode, to)
		if !slices.Contains(p.VisitedNodes, to) {
			p.CurrentNodeType = node.Type
		}
		p.CurrentNode = to
		p.visit(to)
		return Encounter{Node: node, Previous: prev}, nil
	}

	p.TargetNode = to
	p.CurrentNodeType = node.Type
	p.visit(to)
	p.VisitedEdges = append(p.VisitedEdges, edgeKey(p.CurrentNode, to))
	return Encounter{Battle: true, Enemy: slices.Clone(edge.Squad), Node: node}, nil
}

// ApplyOutcome settles a finished battle. A win moves the hero to the target
// node; a loss ends the run and starts a new one with the same hero.
func (p *Progress) ApplyOutcome(snap battle.Snapshot) error {
	if !snap.Ended {
		return ErrBattleInProgress
	}
	if p.TargetNode == 0 {
		return ErrNoPendingBattle
	}
	switch snap.Outcome {
	case battle.OutcomeWin:
		p.CurrentNode = p.TargetNode
		p.TargetNode = 0
	case battle.OutcomeLose:
		*p = *New(p.SelectedCharacter)
	}
	return nil
}

// AdvanceMap starts the next map after an end node, keeping squad and buffs.
func (p *Progress) AdvanceMap(name string) {
	p.CurrentMap = name
	p.CurrentNode = StartNode
	p.TargetNode = 0
	p.CurrentNodeType = ""
	p.VisitedNodes = []int{StartNode}
	p.VisitedEdges = nil
	p.Completed = false
}
