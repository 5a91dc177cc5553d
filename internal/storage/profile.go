package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Garsondee/squadclash/internal/progress"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is a saved campaign. State holds the full progress.Progress as JSON;
// the other columns are copies for listing.
type Profile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Hero      string         `gorm:"size:64" json:"hero"`
	Map       string         `gorm:"size:64" json:"map"`
	Node      int            `json:"node"`
	SquadSize int            `json:"squadSize"`
	State     datatypes.JSON `json:"state"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// SaveProfile inserts or replaces the profile called name.
func (s *Store) SaveProfile(ctx context.Context, name string, p *progress.Progress) error {
	state, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", name, err)
	}
	row := Profile{
		Name:      name,
		Hero:      p.SelectedCharacter,
		Map:       p.CurrentMap,
		Node:      p.CurrentNode,
		SquadSize: len(p.Squad),
		State:     datatypes.JSON(state),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"hero", "map", "node", "squad_size", "state", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save profile %s: %w", name, err)
	}
	s.log.Debug("profile saved", "name", name, "map", p.CurrentMap, "node", p.CurrentNode)
	return nil
}

// LoadProfile returns the progress saved under name.
func (s *Store) LoadProfile(ctx context.Context, name string) (*progress.Progress, error) {
	var row Profile
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", name, err)
	}
	var p progress.Progress
	if err := json.Unmarshal(row.State, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", name, err)
	}
	return &p, nil
}

// Profiles lists saved profiles, most recently updated first.
func (s *Store) Profiles(ctx context.Context) ([]Profile, error) {
	var rows []Profile
	if err := s.db.WithContext(ctx).Omit("state").Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return rows, nil
}

// DeleteProfile removes the profile called name.
func (s *Store) DeleteProfile(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Where("name = ?", name).Delete(&Profile{})
	if res.Error != nil {
		return fmt.Errorf("delete profile %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}
