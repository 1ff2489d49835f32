package service

import (
	"context"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
)

// currentAggregate recomputes door counts from the whole active set.
func currentAggregate(ctx context.Context, names repository.NamesRepository) (domain.Aggregate, error) {
	agg, err := names.CountByDoor(ctx)
	if err != nil {
		return domain.Aggregate{}, err
	}
	if agg.DoorCounts == nil {
		agg.DoorCounts = map[string]int{}
	}
	return agg, nil
}
