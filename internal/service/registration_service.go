package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rekk2/event-registration/internal/broadcast"
	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/telemetry"

	"go.uber.org/zap"
)

// DefaultRecentLimit entries shown on a door's recent list.
const DefaultRecentLimit = 10

// RegistrationService the name-registration pipeline and the active set.
type RegistrationService interface {
	Register(ctx context.Context, door, name string) (*RegisterResult, error)
	Stats(ctx context.Context) (domain.Aggregate, error)
	RecentByDoor(ctx context.Context, door string, limit int) ([]domain.NameEntry, error)
	AllActive(ctx context.Context) ([]domain.NameEntry, error)
	DeleteEntry(ctx context.Context, nameID string) error
	ClearActive(ctx context.Context) (int64, error)
}

// RegistrationOptions behaviour switches loaded from config.
type RegistrationOptions struct {
	RequireKnownDoor bool
}

// RegisterResult confirmation plus the stored entry and the fresh aggregate.
type RegisterResult struct {
	Message    string           `json:"-"`
	Entry      domain.NameEntry `json:"entry"`
	DoorCounts map[string]int   `json:"doorCounts"`
	TotalCount int              `json:"totalCount"`
}

type registrationService struct {
	names     repository.NamesRepository
	doors     repository.DoorsRepository
	publisher broadcast.Publisher
	opts      RegistrationOptions
	now       func() time.Time
	logger    *zap.Logger
}

// NewRegistrationService publisher may be nil when nothing listens.
func NewRegistrationService(names repository.NamesRepository, doors repository.DoorsRepository, publisher broadcast.Publisher, opts RegistrationOptions, logger *zap.Logger) RegistrationService {
	return &registrationService{
		names:     names,
		doors:     doors,
		publisher: publisher,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Register stores one entry, recounts the active set and broadcasts statsUpdate then
// newNameRegistered. The count and the broadcast are not atomic with the insert; a
// concurrent registration may be reflected in either event.
func (s *registrationService) Register(ctx context.Context, door, name string) (*RegisterResult, error) {
	door = strings.TrimSpace(door)
	name = strings.TrimSpace(name)
	if door == "" || name == "" {
		return nil, domain.NewValidationError("", "Door and name are required")
	}

	if s.opts.RequireKnownDoor {
		ok, err := s.doors.DoorExists(ctx, door)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.NewValidationError("door", fmt.Sprintf("unknown door %q", door))
		}
	}

	entry := &domain.NameEntry{Door: door, Name: name, Timestamp: s.now()}
	if err := s.names.CreateName(ctx, entry); err != nil {
		s.logger.Error("Failed to store registration",
			zap.String("door", door),
			zap.Error(err),
		)
		return nil, err
	}
	telemetry.RegistrationsTotal.WithLabelValues(door).Inc()

	agg, err := currentAggregate(ctx, s.names)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, broadcast.RegistrationEvents(*entry, agg))

	s.logger.Info("Name registered",
		zap.String("door", door),
		zap.String("name_id", entry.ID),
		zap.Int("total_count", agg.TotalCount),
	)

	return &RegisterResult{
		Message:    fmt.Sprintf("Name %s registered at door %s", name, door),
		Entry:      *entry,
		DoorCounts: agg.DoorCounts,
		TotalCount: agg.TotalCount,
	}, nil
}

func (s *registrationService) publish(ctx context.Context, events []broadcast.Event) {
	if s.publisher == nil {
		return
	}
	for _, ev := range events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("Broadcast failed",
				zap.String("topic", ev.Topic),
				zap.Error(err),
			)
		}
	}
}

func (s *registrationService) Stats(ctx context.Context) (domain.Aggregate, error) {
	return currentAggregate(ctx, s.names)
}

// RecentByDoor newest first; limit <= 0 means DefaultRecentLimit.
func (s *registrationService) RecentByDoor(ctx context.Context, door string, limit int) ([]domain.NameEntry, error) {
	door = strings.TrimSpace(door)
	if door == "" {
		return nil, domain.NewValidationError("door", "door is required")
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.names.ListRecentByDoor(ctx, door, limit)
}

// AllActive ordered by door, then timestamp.
func (s *registrationService) AllActive(ctx context.Context) ([]domain.NameEntry, error) {
	entries, err := s.names.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Door != entries[j].Door {
			return entries[i].Door < entries[j].Door
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

func (s *registrationService) DeleteEntry(ctx context.Context, nameID string) error {
	if strings.TrimSpace(nameID) == "" {
		return domain.NewValidationError("id", "id is required")
	}
	return s.names.DeleteName(ctx, nameID)
}

// ClearActive deletes every active entry. Archive first if the data should be kept.
func (s *registrationService) ClearActive(ctx context.Context) (int64, error) {
	n, err := s.names.DeleteAllNames(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Active set cleared", zap.Int64("removed", n))
	return n, nil
}
