package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Table is one game table.
type Table struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Seats     int
	Resets    int
	LastSeen  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Moves     []Move
}

// Move stores one accepted drop.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TableID   uuid.UUID `gorm:"type:uuid;index"`
	Number    int
	Ref       string
	DraggedID string
	FromZone  string
	ToZone    string
	// FromList and ToList hold comma separated tile ids; an absent list is
	// stored as NULL.
	FromList  *string
	ToList    *string
	CreatedAt time.Time
}

func joinList(ids []string) *string {
	if ids == nil {
		return nil
	}
	s := strings.Join(ids, ",")
	return &s
}

func splitList(s *string) []string {
	if s == nil {
		return nil
	}
	if *s == "" {
		return []string{}
	}
	return strings.Split(*s, ",")
}
