package domain

import "time"

// Archive a frozen copy of the active set under an event name.
type Archive struct {
	ID        string      `db:"archive_id" json:"_id"`
	EventName string      `db:"event_name" json:"eventName"`
	Timestamp time.Time   `db:"created_at" json:"timestamp"`
	Data      []NameEntry `db:"data" json:"data"`
}

// ArchiveSummary listing row; carries the entry count instead of the data.
type ArchiveSummary struct {
	ID         string    `json:"_id"`
	EventName  string    `json:"eventName"`
	Timestamp  time.Time `json:"timestamp"`
	TotalCount int       `json:"totalCount"`
}

// Summary returns the listing form of a.
func (a *Archive) Summary() ArchiveSummary {
	return ArchiveSummary{
		ID:         a.ID,
		EventName:  a.EventName,
		Timestamp:  a.Timestamp,
		TotalCount: len(a.Data),
	}
}

// CloneEntries deep copies entries so the result shares no backing array with the input.
func CloneEntries(entries []NameEntry) []NameEntry {
	out := make([]NameEntry, len(entries))
	copy(out, entries)
	return out
}
