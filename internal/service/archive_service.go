package service

import (
	"context"
	"strings"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/telemetry"

	"go.uber.org/zap"
)

// ArchiveService event archive lifecycle.
type ArchiveService interface {
	// Archive copies the active set under eventName and leaves the active set as is.
	// A caller that clears afterwards with RegistrationService.ClearActive loses any entry
	// registered between the two calls; ArchiveAndClear has no such gap.
	Archive(ctx context.Context, eventName string) (*domain.ArchiveSummary, error)
	ArchiveAndClear(ctx context.Context, eventName string) (*ArchiveAndClearResult, error)
	ListArchives(ctx context.Context) ([]domain.ArchiveSummary, error)
	GetArchive(ctx context.Context, archiveID string) (*domain.Archive, error)
	DeleteArchive(ctx context.Context, archiveID string) error
}

// ArchiveAndClearResult the new archive and how many active entries were removed.
type ArchiveAndClearResult struct {
	Archive domain.ArchiveSummary `json:"archive"`
	Removed int64                 `json:"removed"`
}

type archiveService struct {
	archives repository.ArchivesRepository
	now      func() time.Time
	logger   *zap.Logger
}

func NewArchiveService(archives repository.ArchivesRepository, logger *zap.Logger) ArchiveService {
	return &archiveService{
		archives: archives,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func normalizeEventName(eventName string) (string, error) {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return "", domain.NewValidationError("eventName", "event name is required")
	}
	return eventName, nil
}

func (s *archiveService) Archive(ctx context.Context, eventName string) (*domain.ArchiveSummary, error) {
	eventName, err := normalizeEventName(eventName)
	if err != nil {
		return nil, err
	}

	archive, err := s.archives.CreateArchive(ctx, eventName, s.now())
	if err != nil {
		s.logger.Error("Failed to archive event data", zap.String("event_name", eventName), zap.Error(err))
		return nil, err
	}
	telemetry.ArchivesCreatedTotal.Inc()

	summary := archive.Summary()
	s.logger.Info("Event data archived",
		zap.String("archive_id", summary.ID),
		zap.String("event_name", eventName),
		zap.Int("total_count", summary.TotalCount),
	)
	return &summary, nil
}

func (s *archiveService) ArchiveAndClear(ctx context.Context, eventName string) (*ArchiveAndClearResult, error) {
	eventName, err := normalizeEventName(eventName)
	if err != nil {
		return nil, err
	}

	archive, removed, err := s.archives.ArchiveAndClear(ctx, eventName, s.now())
	if err != nil {
		s.logger.Error("Failed to archive and clear event data", zap.String("event_name", eventName), zap.Error(err))
		return nil, err
	}
	telemetry.ArchivesCreatedTotal.Inc()

	s.logger.Info("Event data archived and cleared",
		zap.String("archive_id", archive.ID),
		zap.String("event_name", eventName),
		zap.Int64("removed", removed),
	)
	return &ArchiveAndClearResult{Archive: archive.Summary(), Removed: removed}, nil
}

func (s *archiveService) ListArchives(ctx context.Context) ([]domain.ArchiveSummary, error) {
	return s.archives.ListArchives(ctx)
}

func (s *archiveService) GetArchive(ctx context.Context, archiveID string) (*domain.Archive, error) {
	if strings.TrimSpace(archiveID) == "" {
		return nil, domain.NewValidationError("id", "id is required")
	}
	return s.archives.GetArchive(ctx, archiveID)
}

func (s *archiveService) DeleteArchive(ctx context.Context, archiveID string) error {
	if strings.TrimSpace(archiveID) == "" {
		return domain.NewValidationError("id", "id is required")
	}
	if err := s.archives.DeleteArchive(ctx, archiveID); err != nil {
		return err
	}
	s.logger.Info("Archive deleted", zap.String("archive_id", archiveID))
	return nil
}
