package defs

import (
	"fmt"
	"io"

	"github.com/Garsondee/squadclash/internal/battle"
)

// Node types that carry rewards or end the campaign.
const (
	NodeStart    = "start"
	NodeBarracks = "barracks"
	NodeTreasure = "treasure"
	NodeEnd      = "end"
)

// Node is one stop on a campaign map.
type Node struct {
	ID          int     `yaml:"id"`
	Type        string  `yaml:"type"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	RewardsText string  `yaml:"rewardsText,omitempty"`
}

// Edge connects two nodes. A non-empty Squad must be defeated to cross it the
// first time.
type Edge struct {
	From  int                    `yaml:"from"`
	To    int                    `yaml:"to"`
	Squad battle.SquadDefinition `yaml:"squad,omitempty"`
}

// Map is one campaign map.
type Map struct {
	Name        string   `yaml:"name"`
	Background  string   `yaml:"background,omitempty"`
	Arena       string   `yaml:"arena,omitempty"`
	NextMaps    []string `yaml:"nextMaps,omitempty"`
	Nodes       []Node   `yaml:"nodes"`
	Edges       []Edge   `yaml:"edges"`
	FinalReward string   `yaml:"finalReward,omitempty"`
}

// Node returns the node with id.
func (m *Map) Node(id int) (Node, bool) {
	for _, n := range m.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge joining a and b in either direction.
func (m *Map) Edge(a, b int) (Edge, bool) {
	for _, e := range m.Edges {
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return e, true
		}
	}
	return Edge{}, false
}

// Neighbours returns the ids of nodes joined to id, in edge order.
func (m *Map) Neighbours(id int) []int {
	var out []int
	for _, e := range m.Edges {
		switch id {
		case e.From:
			out = append(out, e.To)
		case e.To:
			out = append(out, e.From)
		}
	}
	return out
}

// Validate checks that every edge joins known nodes and every squad is placeable.
func (m *Map) Validate() error {
	ids := make(map[int]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("map %q node %d: %w", m.Name, n.ID, ErrDuplicate)
		}
		ids[n.ID] = true
	}
	for _, e := range m.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("map %q edge %d-%d: unknown node", m.Name, e.From, e.To)
		}
		if len(e.Squad) > 0 {
			if err := e.Squad.Validate(battle.FactionEnemy); err != nil {
				return fmt.Errorf("map %q edge %d-%d: %w", m.Name, e.From, e.To, err)
			}
		}
	}
	return nil
}

// MapConfig is the set of campaign maps.
type MapConfig struct {
	Maps []Map `yaml:"maps"`
}

// Map returns the map called name.
func (c *MapConfig) Map(name string) (*Map, bool) {
	for i := range c.Maps {
		if c.Maps[i].Name == name {
			return &c.Maps[i], true
		}
	}
	return nil, false
}

// ParseMaps decodes and validates a `maps:` list.
func ParseMaps(r io.Reader) (*MapConfig, error) {
	var cfg MapConfig
	if err := decode(r, &cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Maps {
		if err := cfg.Maps[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadMaps reads a campaign map file.
func LoadMaps(path string) (*MapConfig, error) {
	return loadFile(path, ParseMaps)
}
