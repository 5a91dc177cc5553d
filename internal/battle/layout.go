package battle

// Layout converts placement slots into starting positions. The player squad
// stands on the negative X side facing +X, the enemy mirrors it.
type Layout struct {
	FrontOffset float64 // distance from the centre line to the front row
	RowGap      float64 // extra depth of the back row
	ColumnGap   float64 // spacing between the three columns
}

// DefaultLayout returns the standard arena formation.
func DefaultLayout() Layout {
	return Layout{FrontOffset: 4, RowGap: 2, ColumnGap: 2.5}
}

// Position returns the starting position of slot for faction f.
func (l Layout) Position(f Faction, slot int) Vec2 {
	col := (slot - 1) % FrontRowSize
	depth := l.FrontOffset
	if !FrontRow(slot) {
		depth += l.RowGap
	}
	x := -depth
	if f == FactionEnemy {
		x = depth
	}
	return Vec2{X: x, Y: float64(col-1) * l.ColumnGap}
}

// Modifier is a progression bonus applied to every player unit of UnitType
// when the battle is initialized.
type Modifier struct {
	UnitType    string
	DamageBonus float64 // added to both minimum and maximum damage
	ArmorBonus  float64
}
