package domain

import "time"

// NameEntry one registration of a name at a door.
type NameEntry struct {
	ID        string    `db:"name_id" json:"_id"`
	Door      string    `db:"door" json:"door"`
	Name      string    `db:"name" json:"name"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// Aggregate per-door and total counts over the active set.
type Aggregate struct {
	DoorCounts map[string]int `json:"doorCounts"`
	TotalCount int            `json:"totalCount"`
}

// NewAggregate counts entries per door. It is the only way an Aggregate is built
// from entries, so counts always follow the active set.
func NewAggregate(entries []NameEntry) Aggregate {
	agg := Aggregate{DoorCounts: make(map[string]int), TotalCount: len(entries)}
	for _, e := range entries {
		agg.DoorCounts[e.Door]++
	}
	return agg
}
