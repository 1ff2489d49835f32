package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rekk2/event-registration/internal/domain"
)

// MemoryStore keeps every collection in process memory. Used when DB_ENABLED=false and in tests.
// Slices preserve insertion order, which stands in for the creation order Postgres sorts on.
type MemoryStore struct {
	mu       sync.RWMutex
	doors    []domain.Door
	names    []domain.NameEntry
	archives []domain.Archive
	users    []domain.User
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

// ---- doors ----

func (s *MemoryStore) ListDoors(_ context.Context) ([]domain.Door, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Door, len(s.doors))
	copy(out, s.doors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Door < out[j].Door })
	return out, nil
}

func (s *MemoryStore) DoorExists(_ context.Context, door string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doors {
		if d.Door == door {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateDoor(_ context.Context, door string) (*domain.Door, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doorLabelFree(door, ""); err != nil {
		return nil, err
	}
	d := domain.Door{ID: uuid.NewString(), Door: door}
	s.doors = append(s.doors, d)
	return &d, nil
}

func (s *MemoryStore) RenameDoor(_ context.Context, doorID, newName string) (*domain.Door, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doorLabelFree(newName, doorID); err != nil {
		return nil, err
	}
	for i := range s.doors {
		if s.doors[i].ID == doorID {
			s.doors[i].Door = newName
			d := s.doors[i]
			return &d, nil
		}
	}
	return nil, domain.NewNotFoundError("door", doorID)
}

// doorLabelFree caller holds s.mu.
func (s *MemoryStore) doorLabelFree(label, exceptID string) error {
	for _, d := range s.doors {
		if d.Door == label && d.ID != exceptID {
			return doorConflict(label)
		}
	}
	return nil
}

func (s *MemoryStore) DeleteDoor(_ context.Context, doorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doors {
		if s.doors[i].ID == doorID {
			s.doors = append(s.doors[:i], s.doors[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("door", doorID)
}

// ---- names ----

func (s *MemoryStore) CreateName(_ context.Context, entry *domain.NameEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	s.names = append(s.names, *entry)
	return nil
}

func (s *MemoryStore) ListNames(_ context.Context) ([]domain.NameEntry, error) {
	s.mu.RLock()
	out := domain.CloneEntries(s.names)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Door != out[j].Door {
			return out[i].Door < out[j].Door
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) ListRecentByDoor(_ context.Context, door string, limit int) ([]domain.NameEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.NameEntry{}
	for i := len(s.names) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.names[i].Door == door {
			out = append(out, s.names[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) SearchNames(_ context.Context, pattern string) ([]domain.NameEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.NameEntry{}
	for _, e := range s.names {
		if containsFold(e.Name, pattern) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountByDoor(_ context.Context) (domain.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewAggregate(s.names), nil
}

func (s *MemoryStore) DeleteName(_ context.Context, nameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.names {
		if s.names[i].ID == nameID {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("name", nameID)
}

func (s *MemoryStore) DeleteAllNames(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.names))
	s.names = nil
	return n, nil
}

// ---- archives ----

func (s *MemoryStore) CreateArchive(_ context.Context, eventName string, at time.Time) (*domain.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.snapshotLocked(eventName, at)
	return &a, nil
}

func (s *MemoryStore) ArchiveAndClear(_ context.Context, eventName string, at time.Time) (*domain.Archive, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.snapshotLocked(eventName, at)
	n := int64(len(s.names))
	s.names = nil
	return &a, n, nil
}

// snapshotLocked stores and returns a deep copy of the active set. Caller holds s.mu.
func (s *MemoryStore) snapshotLocked(eventName string, at time.Time) domain.Archive {
	data := domain.CloneEntries(s.names)
	sort.SliceStable(data, func(i, j int) bool {
		if data[i].Door != data[j].Door {
			return data[i].Door < data[j].Door
		}
		return data[i].Timestamp.Before(data[j].Timestamp)
	})
	a := domain.Archive{ID: uuid.NewString(), EventName: eventName, Timestamp: at, Data: data}
	s.archives = append(s.archives, a)

	out := a
	out.Data = domain.CloneEntries(a.Data)
	return out
}

func (s *MemoryStore) ListArchives(_ context.Context) ([]domain.ArchiveSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ArchiveSummary, 0, len(s.archives))
	for i := len(s.archives) - 1; i >= 0; i-- {
		out = append(out, s.archives[i].Summary())
	}
	return out, nil
}

func (s *MemoryStore) GetArchive(_ context.Context, archiveID string) (*domain.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.archives {
		if a.ID == archiveID {
			a.Data = domain.CloneEntries(a.Data)
			return &a, nil
		}
	}
	return nil, domain.NewNotFoundError("archive", archiveID)
}

func (s *MemoryStore) DeleteArchive(_ context.Context, archiveID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.archives {
		if s.archives[i].ID == archiveID {
			s.archives = append(s.archives[:i], s.archives[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("archive", archiveID)
}

func (s *MemoryStore) SearchArchives(_ context.Context, pattern string) ([]domain.NameEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.NameEntry{}
	for _, a := range s.archives {
		for _, e := range a.Data {
			if containsFold(e.Name, pattern) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// ---- users ----

func (s *MemoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", userID)
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.NewNotFoundError("user", username)
}

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return &domain.ConflictError{Message: fmt.Sprintf("username %q already exists", user.Username)}
		}
	}
	user.ID = uuid.NewString()
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, u := range s.users {
		if u.ID == user.ID {
			idx = i
		} else if strings.EqualFold(u.Username, user.Username) {
			return &domain.ConflictError{Message: fmt.Sprintf("username %q already exists", user.Username)}
		}
	}
	if idx < 0 {
		return domain.NewNotFoundError("user", user.ID)
	}
	s.users[idx] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == userID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return domain.NewNotFoundError("user", userID)
}

func (s *MemoryStore) CountByRole(_ context.Context, role domain.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
