package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Garsondee/squadclash/internal/battle"
)

var ErrBattleNotFound = errors.New("battle not found")

// BattleRecord is one finished (or abandoned) battle.
type BattleRecord struct {
	ID              string              `gorm:"primaryKey;size:36" json:"id"`
	Seed            int64               `json:"seed"`
	Label           string              `gorm:"size:128" json:"label"`
	Player          datatypes.JSON      `json:"player"`
	Enemy           datatypes.JSON      `json:"enemy"`
	Outcome         string              `gorm:"size:16;index" json:"outcome"`
	Reason          string              `gorm:"size:32" json:"reason"`
	Ticks           int                 `json:"ticks"`
	Duration        float64             `json:"duration"` // simulated seconds
	PlayerSurvivors int                 `json:"playerSurvivors"`
	EnemySurvivors  int                 `json:"enemySurvivors"`
	Events          []BattleEventRecord `gorm:"foreignKey:BattleID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// BattleEventRecord is one engine event in emission order.
type BattleEventRecord struct {
	ID       uint           `gorm:"primarykey" json:"-"`
	BattleID string         `gorm:"size:36;index" json:"battleId"`
	Seq      int            `json:"seq"`
	Tick     int            `json:"tick"`
	Time     float64        `json:"time"`
	Type     string         `gorm:"size:32" json:"type"`
	Payload  datatypes.JSON `json:"payload"`
}

// Recorder buffers a battle's events as a battle.Listener and writes them
// in one transaction on Flush.
type Recorder struct {
	store  *Store
	record BattleRecord
	err    error
}

// NewRecorder starts a record for a battle between player and enemy.
func (s *Store) NewRecorder(label string, seed int64, player, enemy battle.SquadDefinition) (*Recorder, error) {
	p, err := json.Marshal(player)
	if err != nil {
		return nil, fmt.Errorf("encode player squad: %w", err)
	}
	e, err := json.Marshal(enemy)
	if err != nil {
		return nil, fmt.Errorf("encode enemy squad: %w", err)
	}
	return &Recorder{
		store: s,
		record: BattleRecord{
			ID:      uuid.NewString(),
			Seed:    seed,
			Label:   label,
			Player:  datatypes.JSON(p),
			Enemy:   datatypes.JSON(e),
			Outcome: battle.OutcomeNone.String(),
		},
	}, nil
}

// ID is the record's primary key.
func (r *Recorder) ID() string { return r.record.ID }

// Len is the number of buffered events.
func (r *Recorder) Len() int { return len(r.record.Events) }

// OnEvent implements battle.Listener.
func (r *Recorder) OnEvent(e battle.Event) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("encode %s event at tick %d: %w", e.Type, e.Tick, err)
		}
		return
	}
	r.record.Events = append(r.record.Events, BattleEventRecord{
		BattleID: r.record.ID,
		Seq:      len(r.record.Events),
		Tick:     e.Tick,
		Time:     e.Time,
		Type:     string(e.Type),
		Payload:  datatypes.JSON(payload),
	})
	r.record.Ticks = e.Tick
	r.record.Duration = e.Time
	if end, ok := e.Data.(battle.BattleEnded); ok {
		r.record.Outcome = end.Outcome.String()
		r.record.Reason = end.Reason
		r.record.PlayerSurvivors = end.PlayerSurvivors
		r.record.EnemySurvivors = end.EnemySurvivors
	}
}

// Flush writes the battle and its events. A battle that never ended is saved
// with outcome in_progress.
func (r *Recorder) Flush(ctx context.Context, sim *battle.Simulation) error {
	if r.err != nil {
		return r.err
	}
	if sim != nil {
		r.record.Ticks = sim.Tick()
		r.record.Duration = sim.Now()
	}
	err := r.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := r.record.Events
		head := r.record
		head.Events = nil
		if err := tx.Create(&head).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return tx.CreateInBatches(events, 500).Error
	})
	if err != nil {
		return fmt.Errorf("save battle %s: %w", r.record.ID, err)
	}
	r.store.log.Info("battle recorded", "id", r.record.ID, "outcome", r.record.Outcome, "events", len(r.record.Events))
	return nil
}

// Battle loads a recorded battle with its events in order.
func (s *Store) Battle(ctx context.Context, id string) (*BattleRecord, error) {
	var rec BattleRecord
	err := s.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBattleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load battle %s: %w", id, err)
	}
	return &rec, nil
}

// Battles lists recorded battles without events, newest first.
func (s *Store) Battles(ctx context.Context, limit int) ([]BattleRecord, error) {
	var recs []BattleRecord
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	return recs, nil
}

// OutcomeCounts tallies recorded battles by outcome.
func (s *Store) OutcomeCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Outcome string
		N       int
	}
	err := s.db.WithContext(ctx).Model(&BattleRecord{}).
		Select("outcome, count(*) as n").Group("outcome").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Outcome] = r.N
	}
	return out, nil
}
