package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tinymahjong/internal/move"
)

// Store wraps a gorm DB instance and provides helper methods for the move
// log. A nil *Store is valid and does nothing.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// CreateTable inserts a table row if it does not exist yet.
func (s *Store) CreateTable(ctx context.Context, id uuid.UUID, seats int, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	t := Table{ID: id, Seats: seats, LastSeen: lastSeen}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error
}

// RecordDrop appends an accepted drop to the table's log.
func (s *Store) RecordDrop(ctx context.Context, tableID uuid.UUID, number int, ref string, ev move.Event) error {
	if s == nil {
		return nil
	}
	m := Move{
		TableID:   tableID,
		Number:    number,
		Ref:       ref,
		DraggedID: ev.DraggedID,
		FromZone:  ev.FromID,
		ToZone:    ev.ToID,
		FromList:  joinList(ev.FromList),
		ToList:    joinList(ev.ToList),
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

// LoadMoves returns the table's drops in order.
func (s *Store) LoadMoves(ctx context.Context, tableID uuid.UUID) ([]move.Event, error) {
	if s == nil {
		return nil, nil
	}
	var rows []Move
	if err := s.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("number asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]move.Event, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Event())
	}
	return out, nil
}

// Event converts the row back into the wire event.
func (m Move) Event() move.Event {
	return move.Event{
		DraggedID: m.DraggedID,
		FromID:    m.FromZone,
		ToID:      m.ToZone,
		FromList:  splitList(m.FromList),
		ToList:    splitList(m.ToList),
	}
}

// ResetTable clears the log after a reset and counts it.
func (s *Store) ResetTable(ctx context.Context, tableID uuid.UUID) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", tableID).Delete(&Move{}).Error; err != nil {
			return err
		}
		return tx.Model(&Table{}).Where("id = ?", tableID).
			UpdateColumn("resets", gorm.Expr("resets + ?", 1)).Error
	})
}

// UpdateLastSeen updates the last seen timestamp for a table.
func (s *Store) UpdateLastSeen(ctx context.Context, id uuid.UUID, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&Table{}).Where("id = ?", id).Update("last_seen", lastSeen).Error
}

// Stats represents aggregate counts for the home page.
type Stats struct {
	Tables int64 `json:"tables"`
	Moves  int64 `json:"moves"`
}

// FetchStats aggregates counts for display on the home page.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Table{}).Count(&stats.Tables).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Move{}).Count(&stats.Moves).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
