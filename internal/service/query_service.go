package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
)

// SearchScope which entries a search covers.
type SearchScope string

const (
	ScopeActive    SearchScope = "active"
	ScopeAllEvents SearchScope = "all-events"
)

// ParseSearchScope maps the allEvents query flag to a scope.
func ParseSearchScope(allEvents string) SearchScope {
	if strings.EqualFold(strings.TrimSpace(allEvents), "true") {
		return ScopeAllEvents
	}
	return ScopeActive
}

// QueryService name search over the active set or the archives.
type QueryService interface {
	Search(ctx context.Context, pattern string, scope SearchScope) ([]domain.NameEntry, error)
}

// QueryOptions behaviour switches loaded from config.
type QueryOptions struct {
	// AllEventsIncludeActive adds the active set to all-events searches.
	AllEventsIncludeActive bool
}

type queryService struct {
	names    repository.NamesRepository
	archives repository.ArchivesRepository
	opts     QueryOptions
}

func NewQueryService(names repository.NamesRepository, archives repository.ArchivesRepository, opts QueryOptions) QueryService {
	return &queryService{names: names, archives: archives, opts: opts}
}

// Search matches pattern as a literal, case-insensitive substring of the name and returns
// hits in display order. Surrounding whitespace is part of the pattern. all-events covers archives only unless configured otherwise.
func (s *queryService) Search(ctx context.Context, pattern string, scope SearchScope) ([]domain.NameEntry, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, domain.NewValidationError("name", "search pattern is required")
	}

	var results []domain.NameEntry
	switch scope {
	case ScopeActive, "":
		active, err := s.names.SearchNames(ctx, pattern)
		if err != nil {
			return nil, err
		}
		results = active
	case ScopeAllEvents:
		archived, err := s.archives.SearchArchives(ctx, pattern)
		if err != nil {
			return nil, err
		}
		results = archived
		if s.opts.AllEventsIncludeActive {
			active, err := s.names.SearchNames(ctx, pattern)
			if err != nil {
				return nil, err
			}
			results = append(results, active...)
		}
	default:
		return nil, domain.NewValidationError("scope", fmt.Sprintf("unknown search scope %q", scope))
	}

	if results == nil {
		results = []domain.NameEntry{}
	}
	SortForDisplay(results)
	return results, nil
}
