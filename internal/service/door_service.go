package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"

	"go.uber.org/zap"
)

// DoorService door definitions. Renaming or deleting a door never touches name entries.
type DoorService interface {
	ListDoors(ctx context.Context) ([]domain.Door, error)
	DoorExists(ctx context.Context, door string) (bool, error)
	CreateDoor(ctx context.Context, door string) (*domain.Door, error)
	RenameDoor(ctx context.Context, doorID, newName string) (*domain.Door, error)
	DeleteDoor(ctx context.Context, doorID string) error
}

type doorService struct {
	doors  repository.DoorsRepository
	logger *zap.Logger
}

func NewDoorService(doors repository.DoorsRepository, logger *zap.Logger) DoorService {
	return &doorService{doors: doors, logger: logger}
}

// ListDoors sorted by label.
func (s *doorService) ListDoors(ctx context.Context) ([]domain.Door, error) {
	doors, err := s.doors.ListDoors(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(doors, func(i, j int) bool { return doors[i].Door < doors[j].Door })
	return doors, nil
}

func (s *doorService) DoorExists(ctx context.Context, door string) (bool, error) {
	door = strings.TrimSpace(door)
	if door == "" {
		return false, nil
	}
	return s.doors.DoorExists(ctx, door)
}

func (s *doorService) CreateDoor(ctx context.Context, door string) (*domain.Door, error) {
	door = strings.TrimSpace(door)
	if door == "" {
		return nil, domain.NewValidationError("door", "door is required")
	}
	created, err := s.doors.CreateDoor(ctx, door)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Door created", zap.String("door_id", created.ID), zap.String("door", door))
	return created, nil
}

func (s *doorService) RenameDoor(ctx context.Context, doorID, newName string) (*domain.Door, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.NewValidationError("newDoorName", "new door name is required")
	}
	if strings.TrimSpace(doorID) == "" {
		return nil, domain.NewValidationError("id", "id is required")
	}
	updated, err := s.doors.RenameDoor(ctx, doorID, newName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Door renamed", zap.String("door_id", doorID), zap.String("door", newName))
	return updated, nil
}

func (s *doorService) DeleteDoor(ctx context.Context, doorID string) error {
	if strings.TrimSpace(doorID) == "" {
		return domain.NewValidationError("id", "id is required")
	}
	if err := s.doors.DeleteDoor(ctx, doorID); err != nil {
		return err
	}
	s.logger.Info("Door deleted", zap.String("door_id", doorID))
	return nil
}
