package battle

// Outcome is the terminal result of a battle from the player's side.
type Outcome int

const (
	OutcomeNone Outcome = iota // battle still in progress
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "in_progress"
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome name for JSON payloads and reports.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Terminal reports whether o ends the battle.
func (o Outcome) Terminal() bool { return o == OutcomeWin || o == OutcomeLose }

// OutcomeReason is an outcome plus the survivor counts that produced it.
type OutcomeReason struct {
	Outcome         Outcome
	PlayerSurvivors int
	EnemySurvivors  int
	Description     string
}

// DetermineOutcome decides the battle result from living unit counts. When
// both factions are wiped the player loses.
func DetermineOutcome(playerAlive, enemyAlive int) OutcomeReason {
	r := OutcomeReason{PlayerSurvivors: playerAlive, EnemySurvivors: enemyAlive}
	switch {
	case playerAlive == 0 && enemyAlive == 0:
		r.Outcome, r.Description = OutcomeLose, "mutual_annihilation"
	case playerAlive == 0:
		r.Outcome, r.Description = OutcomeLose, "player_eliminated"
	case enemyAlive == 0:
		r.Outcome, r.Description = OutcomeWin, "enemy_eliminated"
	default:
		r.Outcome, r.Description = OutcomeNone, "in_progress"
	}
	return r
}

// outcomeDetector latches the first wipe it observes. The owning simulation
// emits BattleEnded from the latched result exactly once.
type outcomeDetector struct {
	pending bool
	settled bool
	result  OutcomeReason
}

// observe is called after every death.
func (d *outcomeDetector) observe(player, enemy *Squad) {
	if d.settled {
		return
	}
	if player.Wiped() || enemy.Wiped() {
		d.pending = true
	}
}

// settle finalizes a pending wipe. It recounts survivors so that deaths later
// in the same step are reflected, and returns false if nothing is pending.
func (d *outcomeDetector) settle(player, enemy *Squad) (OutcomeReason, bool) {
	if d.settled || !d.pending {
		return OutcomeReason{}, false
	}
	d.settled = true
	d.result = DetermineOutcome(player.AliveCount(), enemy.AliveCount())
	return d.result, true
}

func (d *outcomeDetector) ended() bool { return d.settled }
