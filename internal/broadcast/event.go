// Package broadcast fans registration events out to live observers and optional external sinks.
package broadcast

import (
	"context"

	"github.com/rekk2/event-registration/internal/domain"
)

const (
	TopicStatsUpdate       = "statsUpdate"
	TopicNewNameRegistered = "newNameRegistered"
)

// Event one notification. Payload is JSON-encoded by transports.
type Event struct {
	Topic   string `json:"event"`
	Payload any    `json:"data"`
}

// StatsUpdate payload of TopicStatsUpdate.
type StatsUpdate struct {
	DoorCounts map[string]int `json:"doorCounts"`
	TotalCount int            `json:"totalCount"`
}

// NewNameRegistered payload of TopicNewNameRegistered.
type NewNameRegistered struct {
	Entry      domain.NameEntry `json:"entry"`
	DoorCounts map[string]int   `json:"doorCounts"`
	TotalCount int              `json:"totalCount"`
}

// Publisher delivers events. Implementations are best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// RegistrationEvents the two events emitted after every registration, in emission order.
func RegistrationEvents(entry domain.NameEntry, agg domain.Aggregate) []Event {
	return []Event{
		{Topic: TopicStatsUpdate, Payload: StatsUpdate{DoorCounts: agg.DoorCounts, TotalCount: agg.TotalCount}},
		{Topic: TopicNewNameRegistered, Payload: NewNameRegistered{Entry: entry, DoorCounts: agg.DoorCounts, TotalCount: agg.TotalCount}},
	}
}
