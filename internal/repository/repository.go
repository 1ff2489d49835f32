package repository

import (
	"context"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
)

// DoorsRepository door definitions.
type DoorsRepository interface {
	ListDoors(ctx context.Context) ([]domain.Door, error)
	// DoorExists reports whether a door with exactly this label exists.
	DoorExists(ctx context.Context, door string) (bool, error)
	// CreateDoor and RenameDoor return *domain.ConflictError when the label is taken.
	CreateDoor(ctx context.Context, door string) (*domain.Door, error)
	// RenameDoor changes the label only; existing name entries keep the old string.
	RenameDoor(ctx context.Context, doorID, newName string) (*domain.Door, error)
	DeleteDoor(ctx context.Context, doorID string) error
}

// NamesRepository the active set.
type NamesRepository interface {
	// CreateName fills entry.ID (and entry.Timestamp when zero) on success.
	CreateName(ctx context.Context, entry *domain.NameEntry) error
	// ListNames returns every active entry ordered by door, then timestamp.
	ListNames(ctx context.Context) ([]domain.NameEntry, error)
	// ListRecentByDoor returns at most limit entries for door, newest first.
	ListRecentByDoor(ctx context.Context, door string, limit int) ([]domain.NameEntry, error)
	// SearchNames case-insensitive literal substring match on name.
	SearchNames(ctx context.Context, pattern string) ([]domain.NameEntry, error)
	// CountByDoor aggregate over the whole active set, computed on every call.
	CountByDoor(ctx context.Context) (domain.Aggregate, error)
	DeleteName(ctx context.Context, nameID string) error
	// DeleteAllNames clears the active set and returns the number of removed entries.
	DeleteAllNames(ctx context.Context) (int64, error)
}

// ArchivesRepository event archives.
type ArchivesRepository interface {
	// CreateArchive copies the whole active set, read in a single statement, into a new archive.
	// The active set is left untouched.
	CreateArchive(ctx context.Context, eventName string, at time.Time) (*domain.Archive, error)
	// ArchiveAndClear snapshots and clears the active set atomically.
	ArchiveAndClear(ctx context.Context, eventName string, at time.Time) (*domain.Archive, int64, error)
	// ListArchives newest first, without entry data.
	ListArchives(ctx context.Context) ([]domain.ArchiveSummary, error)
	GetArchive(ctx context.Context, archiveID string) (*domain.Archive, error)
	DeleteArchive(ctx context.Context, archiveID string) error
	// SearchArchives matches entries of every archive, oldest archive first.
	SearchArchives(ctx context.Context, pattern string) ([]domain.NameEntry, error)
}

// UsersRepository accounts for the access layer.
type UsersRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// CreateUser fills user.ID. Duplicate usernames return *domain.ConflictError.
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, userID string) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// Store bundles every collection; both the Postgres and the memory backends satisfy it.
type Store interface {
	DoorsRepository
	NamesRepository
	ArchivesRepository
	UsersRepository
}
